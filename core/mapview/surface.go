package mapview

import "cybermap/core/threats"

// Handle identifies one placed marker on the external surface.
type Handle string

// MarkerStyle is the visual encoding of an incident: severity drives the
// color/halo, attack type drives the glyph.
type MarkerStyle struct {
	Color string `json:"color"`
	Glyph string `json:"glyph"`
}

// Marker is one placement request handed to the surface.
type Marker struct {
	IncidentID string
	Lat        float64
	Lng        float64
	Severity   threats.Severity
	AttackType threats.AttackType
	Style      MarkerStyle
	OnClick    func()
}

// Surface is the capability the external map exposes: place a marker at a
// coordinate, remove everything, and report readiness or failure. Rendering
// and projection stay on the other side of this interface. OnReady and
// OnError replace any previously registered callback, so re-initialization
// after a failure does not stack handlers.
type Surface interface {
	PlaceMarker(m Marker) (Handle, error)
	RemoveAllMarkers()
	OnReady(fn func())
	OnError(fn func(error))
}
