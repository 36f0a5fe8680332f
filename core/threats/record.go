package threats

import (
	"fmt"
	"strings"
	"time"
)

// Record is the loosely typed wire shape of one incident as delivered by the
// feed (HTTP or NATS) and by the embedded sample file. Enumerations and
// coordinates are validated when the record is parsed into an Incident.
type Record struct {
	ID              string         `json:"id" yaml:"id"`
	Title           string         `json:"title" yaml:"title"`
	Description     string         `json:"description" yaml:"description"`
	Severity        string         `json:"severity" yaml:"severity"`
	AttackType      string         `json:"attackType" yaml:"attack_type"`
	Location        RecordLocation `json:"location" yaml:"location"`
	Timestamp       string         `json:"timestamp" yaml:"timestamp"`
	AffectedSystems []string       `json:"affectedSystems" yaml:"affected_systems"`
	Source          string         `json:"source" yaml:"source"`
}

type RecordLocation struct {
	Lat     float64 `json:"lat" yaml:"lat"`
	Lng     float64 `json:"lng" yaml:"lng"`
	Country string  `json:"country" yaml:"country"`
	City    string  `json:"city" yaml:"city"`
}

// ParseRecord validates one wire record and builds the immutable Incident.
// A failing record is rejected individually; callers keep the rest of the
// batch.
func ParseRecord(rec Record) (Incident, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return Incident{}, ErrMissingID
	}
	if strings.TrimSpace(rec.Source) == "" {
		return Incident{}, fmt.Errorf("%w (id=%s)", ErrMissingSource, rec.ID)
	}
	severity, err := ParseSeverity(rec.Severity)
	if err != nil {
		return Incident{}, err
	}
	attackType, err := ParseAttackType(rec.AttackType)
	if err != nil {
		return Incident{}, err
	}
	if rec.Location.Lat < -90 || rec.Location.Lat > 90 {
		return Incident{}, fmt.Errorf("threats: latitude %v out of range (id=%s)", rec.Location.Lat, rec.ID)
	}
	if rec.Location.Lng < -180 || rec.Location.Lng > 180 {
		return Incident{}, fmt.Errorf("threats: longitude %v out of range (id=%s)", rec.Location.Lng, rec.ID)
	}
	ts, err := time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		return Incident{}, fmt.Errorf("threats: bad timestamp %q (id=%s): %w", rec.Timestamp, rec.ID, err)
	}
	city := strings.TrimSpace(rec.Location.City)
	if city == "" {
		city = UnknownCity
	}
	systems := make([]string, len(rec.AffectedSystems))
	copy(systems, rec.AffectedSystems)
	return Incident{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Severity:    severity,
		AttackType:  attackType,
		Location: Location{
			Lat:     rec.Location.Lat,
			Lng:     rec.Location.Lng,
			Country: rec.Location.Country,
			City:    city,
		},
		Timestamp:       ts,
		AffectedSystems: systems,
		Source:          rec.Source,
	}, nil
}

// ParseBatch parses a whole wire batch, dropping invalid records and records
// whose id duplicates an earlier one in the same snapshot. It returns the
// accepted incidents in wire order, the number of rejected records, and the
// first few rejection reasons for logging.
func ParseBatch(recs []Record) ([]Incident, int, []error) {
	incidents := make([]Incident, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	var rejected int
	var reasons []error
	for _, rec := range recs {
		in, err := ParseRecord(rec)
		if err == nil {
			if _, dup := seen[in.ID]; dup {
				err = fmt.Errorf("threats: duplicate id %q in snapshot", in.ID)
			}
		}
		if err != nil {
			rejected++
			if len(reasons) < 5 {
				reasons = append(reasons, err)
			}
			continue
		}
		seen[in.ID] = struct{}{}
		incidents = append(incidents, in)
	}
	return incidents, rejected, reasons
}
