package mapview

import "cybermap/core/threats"

// SeverityColor maps a severity to its marker color.
func SeverityColor(s threats.Severity) string {
	switch s {
	case threats.SeverityCritical:
		return "#dc2626"
	case threats.SeverityHigh:
		return "#ea580c"
	case threats.SeverityMedium:
		return "#ca8a04"
	case threats.SeverityLow:
		return "#16a34a"
	}
	return "#0891b2"
}

var attackGlyphs = map[threats.AttackType]string{
	threats.AttackMalware:           "🦠",
	threats.AttackPhishing:          "🎣",
	threats.AttackDDoS:              "💥",
	threats.AttackExploit:           "⚡",
	threats.AttackInsiderThreat:     "👤",
	threats.AttackPhysical:          "🔒",
	threats.AttackSupplyChain:       "🔗",
	threats.AttackWebAttack:         "🌐",
	threats.AttackAccountCompromise: "🔑",
	threats.AttackDataBreach:        "📊",
	threats.AttackRansomware:        "🔐",
}

// AttackGlyph maps an attack type to its marker glyph.
func AttackGlyph(at threats.AttackType) string {
	if g, ok := attackGlyphs[at]; ok {
		return g
	}
	return "❗"
}

// StyleFor builds the full visual encoding for one incident.
func StyleFor(in threats.Incident) MarkerStyle {
	return MarkerStyle{
		Color: SeverityColor(in.Severity),
		Glyph: AttackGlyph(in.AttackType),
	}
}
