package threats

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"gopkg.in/yaml.v3"
)

//go:embed sample_incidents.yaml
var sampleYAML []byte

type sampleFile struct {
	Incidents []sampleRecord `yaml:"incidents"`
}

type sampleRecord struct {
	ID              string         `yaml:"id"`
	Title           string         `yaml:"title"`
	Description     string         `yaml:"description"`
	Severity        string         `yaml:"severity"`
	AttackType      string         `yaml:"attack_type"`
	Location        RecordLocation `yaml:"location"`
	Age             sampleAge      `yaml:"age"`
	AffectedSystems []string       `yaml:"affected_systems"`
	Source          string         `yaml:"source"`
}

// sampleAge decodes Go duration strings ("30m", "26h") from YAML.
type sampleAge time.Duration

func (a *sampleAge) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("threats: bad age %q: %w", raw, err)
	}
	*a = sampleAge(d)
	return nil
}

// SampleIncidents materializes the embedded fallback snapshot with timestamps
// anchored to now. The file is validated through the same per-record path as
// feed data, so a broken sample entry surfaces as an error instead of leaking
// past ingestion checks.
func SampleIncidents(now time.Time) ([]Incident, error) {
	var file sampleFile
	if err := yaml.Unmarshal(sampleYAML, &file); err != nil {
		return nil, fmt.Errorf("threats: sample snapshot: %w", err)
	}
	incidents := make([]Incident, 0, len(file.Incidents))
	for _, sr := range file.Incidents {
		id := sr.ID
		if id == "" {
			id = uuid.Must(uuid.NewV4()).String()
		}
		in, err := ParseRecord(Record{
			ID:              id,
			Title:           sr.Title,
			Description:     sr.Description,
			Severity:        sr.Severity,
			AttackType:      sr.AttackType,
			Location:        sr.Location,
			Timestamp:       now.Add(-time.Duration(sr.Age)).Format(time.RFC3339),
			AffectedSystems: sr.AffectedSystems,
			Source:          sr.Source,
		})
		if err != nil {
			return nil, fmt.Errorf("threats: sample snapshot: %w", err)
		}
		incidents = append(incidents, in)
	}
	return incidents, nil
}
