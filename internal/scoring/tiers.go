package scoring

import (
	"fmt"

	"huntcore/internal/model"
)

// Tier is one relaxation level of the fallback search. A tier relaxes the
// magnitude of thresholds, never the semantic requirement itself: the
// aspect band may widen only inside the semantic floor, and the canopy
// threshold never drops below the biological minimum.
type Tier struct {
	Level           int
	Aspect          AspectBand
	CanopyThreshold float64
	MinOverallScore float64
}

// DefaultTiers returns the relaxation ladder used when the primary point
// fails. The widest band is deliberately capped at the semantic floor
// (120-240): a tier that accepted east- or west-facing ground would accept
// sites the domain considers invalid.
func DefaultTiers(siteType model.SiteType) []Tier {
	switch siteType {
	case model.SiteBedding, model.SiteFeeding:
		return []Tier{
			{Level: 1, Aspect: AspectBand{MinDeg: 160, MaxDeg: 200}, CanopyThreshold: 0.45, MinOverallScore: 70},
			{Level: 2, Aspect: AspectBand{MinDeg: 135, MaxDeg: 225}, CanopyThreshold: 0.40, MinOverallScore: 65},
			{Level: 3, Aspect: AspectBand{MinDeg: 120, MaxDeg: 240}, CanopyThreshold: 0.35, MinOverallScore: 60},
		}
	default:
		return []Tier{
			{Level: 1, Aspect: AspectBand{MinDeg: 135, MaxDeg: 225}, CanopyThreshold: 0.30, MinOverallScore: 65},
			{Level: 2, Aspect: AspectBand{MinDeg: 120, MaxDeg: 240}, CanopyThreshold: 0.30, MinOverallScore: 55},
		}
	}
}

// ValidateTiers rejects tier ladders that loosen semantics instead of
// magnitude. Returns an error naming the offending tier.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("empty tier list")
	}

	semantic := AspectBand{MinDeg: SemanticAspectMinDeg, MaxDeg: SemanticAspectMaxDeg}

	for i, t := range tiers {
		if i > 0 && t.Level <= tiers[i-1].Level {
			return fmt.Errorf("tier %d: levels must ascend", t.Level)
		}
		if !semantic.ContainsBand(t.Aspect) {
			return fmt.Errorf("tier %d: aspect band %.0f-%.0f exceeds the semantic floor %.0f-%.0f",
				t.Level, t.Aspect.MinDeg, t.Aspect.MaxDeg, semantic.MinDeg, semantic.MaxDeg)
		}
		if i > 0 && !t.Aspect.ContainsBand(tiers[i-1].Aspect) {
			return fmt.Errorf("tier %d: aspect band must contain the previous tier's band", t.Level)
		}
		if t.CanopyThreshold < SemanticCanopyFloor {
			return fmt.Errorf("tier %d: canopy threshold %.2f below biological minimum %.2f",
				t.Level, t.CanopyThreshold, SemanticCanopyFloor)
		}
		if i > 0 && t.CanopyThreshold > tiers[i-1].CanopyThreshold {
			return fmt.Errorf("tier %d: canopy threshold must not tighten", t.Level)
		}
		if t.MinOverallScore < SemanticMinScoreFloor {
			return fmt.Errorf("tier %d: min overall score %.0f below floor %.0f",
				t.Level, t.MinOverallScore, SemanticMinScoreFloor)
		}
		if i > 0 && t.MinOverallScore > tiers[i-1].MinOverallScore {
			return fmt.Errorf("tier %d: min overall score must not tighten", t.Level)
		}
	}
	return nil
}

// WithTier derives the config obtained by applying a tier's relaxed
// thresholds to the given site type. The receiver is not mutated.
func (c Config) WithTier(siteType model.SiteType, t Tier) Config {
	out := c.clone()
	out.MinOverallScore = t.MinOverallScore

	crits := out.Criteria[siteType]
	for i := range crits {
		switch crits[i].Field {
		case FieldAspect:
			band := t.Aspect
			crits[i].Band = &band
		case FieldCanopy:
			if crits[i].Required {
				crits[i].Threshold = t.CanopyThreshold
			}
		}
	}
	return out
}
