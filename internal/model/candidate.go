package model

// SiteType classifies what a candidate location is scored for.
type SiteType int

const (
	SiteBedding SiteType = iota
	SiteFeeding
	SiteStand
	SiteCamera
)

func (t SiteType) String() string {
	switch t {
	case SiteBedding:
		return "bedding"
	case SiteFeeding:
		return "feeding"
	case SiteStand:
		return "stand"
	case SiteCamera:
		return "camera"
	}
	return "unknown"
}

// ScoreResult is the output of the suitability scorer for one feature record.
type ScoreResult struct {
	// Score is the overall weighted score, 0-100.
	Score float64
	// Passed is true when every required criterion passed (or was covered
	// by a named compensation rule) and Score met the configured minimum.
	Passed bool
	// Breakdown maps criterion name to its 0-100 sub-score.
	Breakdown map[string]float64
	// FailedCriteria lists the required criteria that disqualified the
	// record, each with the observed value, for rejection reporting.
	FailedCriteria []CriterionFailure
}

// CriterionFailure records one required criterion that a record failed.
type CriterionFailure struct {
	Criterion string  `json:"criterion"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}

// SiteCandidate is a scored location produced by the primary scorer or the
// fallback search.
type SiteCandidate struct {
	Point           GeoPoint           `json:"point"`
	SiteType        SiteType           `json:"site_type"`
	Score           float64            `json:"score"`
	Breakdown       map[string]float64 `json:"criteria_breakdown"`
	PassedRequired  bool               `json:"passed_required_criteria"`
	SourceTier      int                `json:"source_tier"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	Feature         FeatureRecord      `json:"-"`
}
