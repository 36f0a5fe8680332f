package analytics

import (
	"sort"

	"cybermap/core/threats"
)

// AttackTypeStats ranks filtered incidents by attack category. The diversity
// index measures how spread the observed attacks are across the closed
// taxonomy; top-3 coverage is the percentage share of the three largest
// buckets. Both are reporting aids, never filter inputs.
type AttackTypeStats struct {
	Buckets        []Bucket `json:"buckets"`
	Total          int      `json:"total"`
	DistinctTypes  int      `json:"distinctTypes"`
	DiversityIndex float64  `json:"diversityIndex"`
	Top3Coverage   float64  `json:"top3Coverage"`
}

func AttackTypeBreakdown(list []threats.Incident) AttackTypeStats {
	total := len(list)
	if total == 0 {
		return AttackTypeStats{Buckets: []Bucket{}}
	}
	counts := make(map[threats.AttackType]int)
	order := make([]threats.AttackType, 0)
	for _, in := range list {
		if _, seen := counts[in.AttackType]; !seen {
			order = append(order, in.AttackType)
		}
		counts[in.AttackType]++
	}
	buckets := make([]Bucket, 0, len(order))
	for _, at := range order {
		buckets = append(buckets, Bucket{
			Key:        string(at),
			Count:      counts[at],
			Percentage: 100 * float64(counts[at]) / float64(total),
		})
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Count > buckets[j].Count })
	stats := AttackTypeStats{
		Buckets:        buckets,
		Total:          total,
		DistinctTypes:  len(buckets),
		DiversityIndex: 100 * float64(len(buckets)) / float64(threats.AttackTypeCount),
	}
	for i := 0; i < len(buckets) && i < 3; i++ {
		stats.Top3Coverage += buckets[i].Percentage
	}
	return stats
}
