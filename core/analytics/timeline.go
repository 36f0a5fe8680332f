package analytics

import (
	"sort"
	"time"

	"cybermap/core/threats"
)

type HourBucket struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type DayBucket struct {
	Label string `json:"label"`
	Date  string `json:"date"`
	Count int    `json:"count"`
}

const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
)

// TimelineStats is anchored to the reference instant the aggregation was
// invoked with.
type TimelineStats struct {
	Hourly       []HourBucket       `json:"hourly"`
	Daily        []DayBucket        `json:"daily"`
	Recent       []threats.Incident `json:"recent"`
	Last24h      int                `json:"last24h"`
	Last7d       int                `json:"last7d"`
	Last30d      int                `json:"last30d"`
	PeakHour     HourBucket         `json:"peakHour"`
	Trend        string             `json:"trend"`
	DailyAverage float64            `json:"dailyAverage"`
	WeeklyGrowth *float64           `json:"weeklyGrowth,omitempty"`
}

// TimelineBreakdown derives the time-based view of the filtered set.
//
// Hourly buckets group by hour-of-day among incidents inside the trailing 24h
// window, not by hours-ago: two incidents 20 hours apart land in the same
// bucket when they share hour-of-day. That rule is kept deliberately; fixing
// it would silently change observable statistics.
func TimelineBreakdown(list []threats.Incident, now time.Time) TimelineStats {
	loc := now.Location()
	start24 := now.Add(-24 * time.Hour)
	start7d := now.Add(-7 * 24 * time.Hour)
	start30d := now.Add(-30 * 24 * time.Hour)

	stats := TimelineStats{
		Hourly: make([]HourBucket, 24),
		Daily:  make([]DayBucket, 7),
		Recent: []threats.Incident{},
	}
	for h := range stats.Hourly {
		stats.Hourly[h].Hour = h
	}
	// Oldest to newest: Daily[0] is six days ago, Daily[6] is today.
	for d := 0; d < 7; d++ {
		day := now.AddDate(0, 0, d-6)
		stats.Daily[d].Label = day.In(loc).Format("Mon")
		stats.Daily[d].Date = day.In(loc).Format("2006-01-02")
	}

	for _, in := range list {
		ts := in.Timestamp.In(loc)
		if !ts.Before(start24) {
			stats.Last24h++
			stats.Hourly[ts.Hour()].Count++
			stats.Recent = append(stats.Recent, in)
		}
		if !ts.Before(start7d) {
			stats.Last7d++
		}
		if !ts.Before(start30d) {
			stats.Last30d++
		}
		for d := 0; d < 7; d++ {
			day := now.In(loc).AddDate(0, 0, d-6)
			if sameDate(ts, day) {
				stats.Daily[d].Count++
				break
			}
		}
	}

	sort.SliceStable(stats.Recent, func(i, j int) bool {
		return stats.Recent[i].Timestamp.After(stats.Recent[j].Timestamp)
	})
	if len(stats.Recent) > 5 {
		stats.Recent = stats.Recent[:5]
	}

	// First occurrence wins under a left-to-right scan, so the lowest hour
	// number takes a tie.
	stats.PeakHour = stats.Hourly[0]
	for _, hb := range stats.Hourly[1:] {
		if hb.Count > stats.PeakHour.Count {
			stats.PeakHour = hb
		}
	}

	stats.DailyAverage = float64(stats.Last7d) / 7
	if float64(stats.Last24h) > stats.DailyAverage {
		stats.Trend = TrendIncreasing
	} else {
		// Covers Last7d == 0: with no baseline there is nothing to rise from.
		stats.Trend = TrendDecreasing
	}
	if stats.Last7d > 0 {
		growth := (float64(stats.Last24h)*7/float64(stats.Last7d) - 1) * 100
		stats.WeeklyGrowth = &growth
	}
	return stats
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
