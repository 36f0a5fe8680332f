package analytics

import "cybermap/core/threats"

type SeverityEntry struct {
	Severity   threats.Severity `json:"severity"`
	Count      int              `json:"count"`
	Percentage float64          `json:"percentage"`
}

// SeverityStats always carries exactly four entries in the canonical risk
// ordering (critical, high, medium, low), zero counts included, so consumers
// can render a consistent severity ladder regardless of data.
type SeverityStats struct {
	Entries            []SeverityEntry `json:"entries"`
	Total              int             `json:"total"`
	CriticalCount      int             `json:"criticalCount"`
	CriticalPercentage float64         `json:"criticalPercentage"`
	Elevated           bool            `json:"elevated"`
}

func SeverityBreakdown(list []threats.Incident) SeverityStats {
	counts := make(map[threats.Severity]int, len(threats.SeverityOrder))
	for _, in := range list {
		counts[in.Severity]++
	}
	total := len(list)
	entries := make([]SeverityEntry, 0, len(threats.SeverityOrder))
	for _, sev := range threats.SeverityOrder {
		entry := SeverityEntry{Severity: sev, Count: counts[sev]}
		if total > 0 {
			entry.Percentage = 100 * float64(entry.Count) / float64(total)
		}
		entries = append(entries, entry)
	}
	stats := SeverityStats{
		Entries:       entries,
		Total:         total,
		CriticalCount: counts[threats.SeverityCritical],
	}
	if total > 0 {
		stats.CriticalPercentage = 100 * float64(stats.CriticalCount) / float64(total)
	}
	stats.Elevated = stats.CriticalCount > 0
	return stats
}
