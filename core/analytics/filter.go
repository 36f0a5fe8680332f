package analytics

import (
	"fmt"
	"strings"

	"cybermap/core/threats"
)

// All is the selector wildcard for severity and attack type.
const All = "all"

// Criteria is the user-selected filter. Owned by the dashboard service,
// mutated only through explicit user input.
type Criteria struct {
	SearchTerm string `json:"searchTerm"`
	Severity   string `json:"severity"`
	AttackType string `json:"attackType"`
}

// Normalize fills empty selectors with the wildcard so a zero Criteria
// matches everything.
func (c Criteria) Normalize() Criteria {
	if strings.TrimSpace(c.Severity) == "" {
		c.Severity = All
	}
	if strings.TrimSpace(c.AttackType) == "" {
		c.AttackType = All
	}
	return c
}

// Validate rejects selector values outside the closed enumerations.
func (c Criteria) Validate() error {
	c = c.Normalize()
	if c.Severity != All {
		if _, err := threats.ParseSeverity(c.Severity); err != nil {
			return fmt.Errorf("analytics: bad severity selector: %w", err)
		}
	}
	if c.AttackType != All {
		if _, err := threats.ParseAttackType(c.AttackType); err != nil {
			return fmt.Errorf("analytics: bad attack type selector: %w", err)
		}
	}
	return nil
}

// Matches reports whether one incident passes the criteria. The text test is
// a case-insensitive substring match against title, country, attack type and
// description independently; an empty term always passes.
func (c Criteria) Matches(in threats.Incident) bool {
	c = c.Normalize()
	if c.Severity != All && string(in.Severity) != c.Severity {
		return false
	}
	if c.AttackType != All && string(in.AttackType) != c.AttackType {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(c.SearchTerm))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(in.Title), term) ||
		strings.Contains(strings.ToLower(in.Location.Country), term) ||
		strings.Contains(strings.ToLower(string(in.AttackType)), term) ||
		strings.Contains(strings.ToLower(in.Description), term)
}

// Filter returns the subsequence of raw passing the criteria, preserving the
// relative order of raw. Pure and reentrant.
func Filter(raw []threats.Incident, c Criteria) []threats.Incident {
	filtered := make([]threats.Incident, 0, len(raw))
	for _, in := range raw {
		if c.Matches(in) {
			filtered = append(filtered, in)
		}
	}
	return filtered
}
