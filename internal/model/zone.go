package model

// ZoneSubtype labels a zone's rank within its site type.
type ZoneSubtype string

const (
	SubtypePrimary   ZoneSubtype = "primary"
	SubtypeSecondary ZoneSubtype = "secondary"
	SubtypeEscape    ZoneSubtype = "escape"
	SubtypeEmergency ZoneSubtype = "emergency"
)

// Zone is a labeled, scored candidate location returned to the caller.
// Zones for a single request are immutable and returned together; they are
// not persisted.
type Zone struct {
	ID         string        `json:"id"`
	Type       SiteType      `json:"type"`
	Subtype    ZoneSubtype   `json:"subtype"`
	Candidate  SiteCandidate `json:"candidate"`
	Confidence float64       `json:"confidence"`
}

// PredictionResult is the complete output of one prediction request.
type PredictionResult struct {
	Zones []Zone `json:"zones"`
	// Confidence is the request-level confidence, 0-1.
	Confidence float64 `json:"confidence"`
	// UsedFallbackData is true when any feature input came from region
	// defaults instead of a live source.
	UsedFallbackData bool `json:"used_fallback_data"`
	// RejectionReasons explains, per site type, why no zone could be
	// generated. "no bedding zone here" is a valid biological answer,
	// not an error.
	RejectionReasons map[string]string `json:"rejection_reasons,omitempty"`
	// NearbyObservations is the number of persisted scouting observations
	// inside the search radius.
	NearbyObservations int `json:"nearby_observations"`
}
