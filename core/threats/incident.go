package threats

import (
	"errors"
	"fmt"
	"time"
)

// Severity of an incident. The set is closed; anything else is rejected at
// ingestion.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityOrder is the canonical risk ordering, highest first. Consumers
// rendering a severity ladder rely on this exact order.
var SeverityOrder = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

func ParseSeverity(raw string) (Severity, error) {
	switch Severity(raw) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(raw), nil
	}
	return "", fmt.Errorf("threats: unknown severity %q", raw)
}

// Rank returns the position in the risk ordering; critical is highest.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// AttackType taxonomy. Closed enumeration of size AttackTypeCount.
type AttackType string

const (
	AttackMalware           AttackType = "Malware"
	AttackPhishing          AttackType = "Phishing"
	AttackDDoS              AttackType = "DDoS"
	AttackExploit           AttackType = "Exploit"
	AttackInsiderThreat     AttackType = "InsiderThreat"
	AttackPhysical          AttackType = "Physical"
	AttackSupplyChain       AttackType = "SupplyChain"
	AttackWebAttack         AttackType = "WebAttack"
	AttackAccountCompromise AttackType = "AccountCompromise"
	AttackDataBreach        AttackType = "DataBreach"
	AttackRansomware        AttackType = "Ransomware"
)

// AttackTypeCount is the size of the closed taxonomy, used by the diversity
// index.
const AttackTypeCount = 11

var attackTypes = map[AttackType]struct{}{
	AttackMalware:           {},
	AttackPhishing:          {},
	AttackDDoS:              {},
	AttackExploit:           {},
	AttackInsiderThreat:     {},
	AttackPhysical:          {},
	AttackSupplyChain:       {},
	AttackWebAttack:         {},
	AttackAccountCompromise: {},
	AttackDataBreach:        {},
	AttackRansomware:        {},
}

func ParseAttackType(raw string) (AttackType, error) {
	if _, ok := attackTypes[AttackType(raw)]; ok {
		return AttackType(raw), nil
	}
	return "", fmt.Errorf("threats: unknown attack type %q", raw)
}

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Country string  `json:"country"`
	City    string  `json:"city"`
}

// Incident is one reported security event. Incidents are immutable once
// built; a new fetch replaces the whole snapshot instead of mutating records.
type Incident struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Severity        Severity   `json:"severity"`
	AttackType      AttackType `json:"attackType"`
	Location        Location   `json:"location"`
	Timestamp       time.Time  `json:"timestamp"`
	AffectedSystems []string   `json:"affectedSystems"`
	Source          string     `json:"source"`
}

var (
	ErrMissingID     = errors.New("threats: record has no id")
	ErrMissingSource = errors.New("threats: record has no source")
)

// UnknownCity is substituted when a record arrives without a city.
const UnknownCity = "Unknown"
