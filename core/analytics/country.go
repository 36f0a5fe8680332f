package analytics

import (
	"sort"

	"cybermap/core/threats"
)

// Bucket is one aggregation group. Percentage is of the filtered total.
type Bucket struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CountryStats ranks filtered incidents by exact location.country match.
// No normalization of casing or aliases: "USA" and "usa" are distinct
// buckets.
type CountryStats struct {
	Buckets   []Bucket `json:"buckets"`
	Countries int      `json:"countries"`
	Total     int      `json:"total"`
	MaxCount  int      `json:"maxCount"`
}

// CountryBreakdown returns the full ranked list, sorted descending by count
// with ties kept in first-encountered order. Top-N truncation is the
// caller's concern.
func CountryBreakdown(list []threats.Incident) CountryStats {
	total := len(list)
	if total == 0 {
		return CountryStats{Buckets: []Bucket{}}
	}
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, in := range list {
		country := in.Location.Country
		if _, seen := counts[country]; !seen {
			order = append(order, country)
		}
		counts[country]++
	}
	buckets := make([]Bucket, 0, len(order))
	for _, country := range order {
		buckets = append(buckets, Bucket{
			Key:        country,
			Count:      counts[country],
			Percentage: 100 * float64(counts[country]) / float64(total),
		})
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Count > buckets[j].Count })
	return CountryStats{
		Buckets:   buckets,
		Countries: len(buckets),
		Total:     total,
		MaxCount:  buckets[0].Count,
	}
}
