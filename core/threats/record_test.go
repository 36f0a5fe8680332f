package threats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() Record {
	return Record{
		ID:          "inc-1",
		Title:       "Ransomware Campaign",
		Description: "New variant spreading",
		Severity:    "high",
		AttackType:  "Ransomware",
		Location:    RecordLocation{Lat: 51.5, Lng: -0.12, Country: "UK", City: "London"},
		Timestamp:   "2026-08-20T10:30:00Z",
		Source:      "Security Vendor",
	}
}

func TestParseSeverity(t *testing.T) {
	for _, raw := range []string{"low", "medium", "high", "critical"} {
		sev, err := ParseSeverity(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, string(sev))
	}
	_, err := ParseSeverity("catastrophic")
	assert.Error(t, err)
	_, err = ParseSeverity("High")
	assert.Error(t, err, "severity values are case-sensitive")
}

func TestSeverityRankOrdering(t *testing.T) {
	assert.Greater(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Greater(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Greater(t, SeverityMedium.Rank(), SeverityLow.Rank())
}

func TestParseAttackType(t *testing.T) {
	known := []string{
		"Malware", "Phishing", "DDoS", "Exploit", "InsiderThreat", "Physical",
		"SupplyChain", "WebAttack", "AccountCompromise", "DataBreach", "Ransomware",
	}
	require.Len(t, known, AttackTypeCount)
	for _, raw := range known {
		at, err := ParseAttackType(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, string(at))
	}
	_, err := ParseAttackType("APT")
	assert.Error(t, err)
}

func TestParseRecordValid(t *testing.T) {
	in, err := ParseRecord(validRecord())
	require.NoError(t, err)
	assert.Equal(t, "inc-1", in.ID)
	assert.Equal(t, SeverityHigh, in.Severity)
	assert.Equal(t, AttackRansomware, in.AttackType)
	assert.Equal(t, "London", in.Location.City)
	assert.Equal(t, time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC), in.Timestamp.UTC())
}

func TestParseRecordCityDefaultsToUnknown(t *testing.T) {
	rec := validRecord()
	rec.Location.City = "  "
	in, err := ParseRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, UnknownCity, in.Location.City)
}

func TestParseRecordRejections(t *testing.T) {
	cases := map[string]func(*Record){
		"missing id":         func(r *Record) { r.ID = "" },
		"missing source":     func(r *Record) { r.Source = "" },
		"unknown severity":   func(r *Record) { r.Severity = "urgent" },
		"unknown attackType": func(r *Record) { r.AttackType = "ZeroDay" },
		"lat too high":       func(r *Record) { r.Location.Lat = 90.5 },
		"lat too low":        func(r *Record) { r.Location.Lat = -91 },
		"lng too high":       func(r *Record) { r.Location.Lng = 181 },
		"lng too low":        func(r *Record) { r.Location.Lng = -180.1 },
		"bad timestamp":      func(r *Record) { r.Timestamp = "yesterday" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			rec := validRecord()
			mutate(&rec)
			_, err := ParseRecord(rec)
			assert.Error(t, err)
		})
	}
}

func TestParseBatchDropsOnlyBadRecords(t *testing.T) {
	good := validRecord()
	bad := validRecord()
	bad.ID = "inc-2"
	bad.Severity = "unknown"
	other := validRecord()
	other.ID = "inc-3"

	incidents, rejected, reasons := ParseBatch([]Record{good, bad, other})
	require.Len(t, incidents, 2)
	assert.Equal(t, 1, rejected)
	assert.NotEmpty(t, reasons)
	assert.Equal(t, "inc-1", incidents[0].ID)
	assert.Equal(t, "inc-3", incidents[1].ID)
}

func TestParseBatchRejectsDuplicateIDs(t *testing.T) {
	first := validRecord()
	dup := validRecord()
	dup.Title = "Different title, same id"

	incidents, rejected, _ := ParseBatch([]Record{first, dup})
	require.Len(t, incidents, 1)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, first.Title, incidents[0].Title)
}

func TestSampleIncidents(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	incidents, err := SampleIncidents(now)
	require.NoError(t, err)
	require.NotEmpty(t, incidents)

	seen := map[string]struct{}{}
	for _, in := range incidents {
		_, dup := seen[in.ID]
		assert.False(t, dup, "duplicate sample id %s", in.ID)
		seen[in.ID] = struct{}{}
		assert.False(t, in.Timestamp.After(now))
		assert.NotEmpty(t, in.Source)
	}
}
