package scoring

import (
	"fmt"

	"huntcore/internal/model"
)

// Field names the feature a criterion reads. Criteria form a closed, typed
// set so invalid rule combinations are caught when a config is built, not
// when a cell is scored.
type Field int

const (
	FieldCanopy Field = iota
	FieldSlope
	FieldAspect
	FieldIsolation
	FieldForage
	FieldConifer
)

func (f Field) String() string {
	switch f {
	case FieldCanopy:
		return "canopy"
	case FieldSlope:
		return "slope"
	case FieldAspect:
		return "aspect"
	case FieldIsolation:
		return "isolation"
	case FieldForage:
		return "forage"
	case FieldConifer:
		return "conifer"
	}
	return "unknown"
}

// AspectBand is an inclusive compass band of acceptable aspects.
type AspectBand struct {
	MinDeg float64 `json:"min_deg"`
	MaxDeg float64 `json:"max_deg"`
}

func (b AspectBand) Center() float64    { return (b.MinDeg + b.MaxDeg) / 2 }
func (b AspectBand) HalfWidth() float64 { return (b.MaxDeg - b.MinDeg) / 2 }

// Contains reports whether an aspect falls inside the band.
func (b AspectBand) Contains(deg float64) bool {
	return deg >= b.MinDeg && deg <= b.MaxDeg
}

// ContainsBand reports whether the other band lies entirely inside this one.
func (b AspectBand) ContainsBand(other AspectBand) bool {
	return b.MinDeg <= other.MinDeg && b.MaxDeg >= other.MaxDeg
}

// Criterion is one typed scoring factor for a site type.
type Criterion struct {
	Name     string
	Field    Field
	Required bool
	Weight   float64

	// Sub-score ramps linearly from 0 at Floor to 100 at Ideal. With
	// LowerBetter set the ramp runs the other way (slope).
	Floor float64
	Ideal float64
	// LowerBetter marks criteria where smaller values score higher.
	LowerBetter bool
	// Threshold is the required pass boundary, on the Ideal side of which
	// the value must fall. Ignored for compensable criteria.
	Threshold float64
	// Band applies to aspect criteria only: pass requires the aspect
	// inside the band.
	Band *AspectBand
}

// CompensationRule names one criterion pair where surplus in the donor may
// offset a shortfall in the recipient. Rules are explicit per pair, never
// generic.
type CompensationRule struct {
	Donor     string
	Recipient string
	// DonorMin is the donor value that unlocks the rule.
	DonorMin float64
	// RecipientFloor is how far the recipient may fall below its
	// threshold and still pass under this rule.
	RecipientFloor float64
}

// Config is the explicit, versioned scoring configuration passed into every
// pure function. Nothing in the scorer reads process-wide state.
type Config struct {
	Version string
	Phase   model.HuntPhase

	// MinOverallScore is the weighted-score floor for a passing verdict.
	MinOverallScore float64
	// AspectSlopeMinDeg is the slope below which terrain counts as flat
	// and aspect requirements are waived (solar exposure and thermal
	// drafts need a slope to matter).
	AspectSlopeMinDeg float64

	Criteria     map[model.SiteType][]Criterion
	Compensation []CompensationRule
}

// Semantic floors. Tiers may relax thresholds but never step outside these;
// a wider aspect band than 120-240 would accept east/west-facing ground for
// south-preferring site types, which the domain considers invalid.
const (
	SemanticAspectMinDeg  = 120.0
	SemanticAspectMaxDeg  = 240.0
	SemanticCanopyFloor   = 0.30
	SemanticMinScoreFloor = 50.0
)

// DefaultConfig returns the baseline criteria set for all site types.
func DefaultConfig() Config {
	southBand := AspectBand{MinDeg: 135, MaxDeg: 225}

	return Config{
		Version:           "2026.2",
		MinOverallScore:   70,
		AspectSlopeMinDeg: 5,
		Criteria: map[model.SiteType][]Criterion{
			model.SiteBedding: {
				{Name: "canopy", Field: FieldCanopy, Required: true, Weight: 0.30, Floor: 0.2, Ideal: 0.8, Threshold: 0.45},
				{Name: "slope", Field: FieldSlope, Required: true, Weight: 0.15, Floor: 35, Ideal: 8, LowerBetter: true, Threshold: 30},
				{Name: "aspect", Field: FieldAspect, Required: true, Weight: 0.15, Band: &southBand},
				{Name: "isolation", Field: FieldIsolation, Weight: 0.25, Floor: 100, Ideal: 500},
				{Name: "conifer", Field: FieldConifer, Weight: 0.15, Floor: 0, Ideal: 0.6},
			},
			model.SiteFeeding: {
				{Name: "forage", Field: FieldForage, Required: true, Weight: 0.30, Floor: 0.2, Ideal: 0.7, Threshold: 0.30},
				{Name: "aspect", Field: FieldAspect, Required: true, Weight: 0.20, Band: &southBand},
				{Name: "slope", Field: FieldSlope, Required: true, Weight: 0.20, Floor: 30, Ideal: 5, LowerBetter: true, Threshold: 25},
				{Name: "isolation", Field: FieldIsolation, Weight: 0.20, Floor: 100, Ideal: 400},
				{Name: "canopy", Field: FieldCanopy, Weight: 0.10, Floor: 0, Ideal: 0.5},
			},
			model.SiteStand: {
				{Name: "canopy", Field: FieldCanopy, Required: true, Weight: 0.30, Floor: 0.1, Ideal: 0.7, Threshold: 0.30},
				{Name: "slope", Field: FieldSlope, Required: true, Weight: 0.20, Floor: 40, Ideal: 10, LowerBetter: true, Threshold: 35},
				{Name: "isolation", Field: FieldIsolation, Weight: 0.30, Floor: 50, Ideal: 300},
				{Name: "conifer", Field: FieldConifer, Weight: 0.20, Floor: 0, Ideal: 0.5},
			},
			model.SiteCamera: {
				{Name: "canopy", Field: FieldCanopy, Required: true, Weight: 0.35, Floor: 0.05, Ideal: 0.6, Threshold: 0.20},
				{Name: "slope", Field: FieldSlope, Required: true, Weight: 0.25, Floor: 45, Ideal: 12, LowerBetter: true, Threshold: 40},
				{Name: "isolation", Field: FieldIsolation, Weight: 0.40, Floor: 50, Ideal: 250},
			},
		},
		Compensation: []CompensationRule{
			// Deep isolation buys thinner canopy: past 600 m from the
			// nearest road, canopy may fall to 0.35 and still qualify.
			{Donor: "isolation", Recipient: "canopy", DonorMin: 600, RecipientFloor: 0.35},
		},
	}
}

// Season and pressure enums used by request parameters.
type Season string

const (
	SeasonEarly Season = "early"
	SeasonRut   Season = "rut"
	SeasonLate  Season = "late"
)

type Pressure string

const (
	PressureLow    Pressure = "low"
	PressureMedium Pressure = "medium"
	PressureHigh   Pressure = "high"
)

// ForConditions derives a config adjusted for season and hunting pressure.
// The receiver is not mutated.
func (c Config) ForConditions(season Season, pressure Pressure) Config {
	out := c.clone()

	for siteType, crits := range out.Criteria {
		for i := range crits {
			switch crits[i].Field {
			case FieldIsolation:
				// Pressured animals bed farther from access.
				if pressure == PressureHigh {
					crits[i].Weight *= 1.4
					crits[i].Ideal *= 1.5
				}
			case FieldCanopy:
				// Late season strips deciduous cover; demand more of
				// what remains.
				if season == SeasonLate && siteType == model.SiteBedding {
					crits[i].Ideal = 0.9
				}
			case FieldConifer:
				if season == SeasonLate {
					crits[i].Weight *= 1.3
				}
			}
		}
		normalizeWeights(crits)
	}

	return out
}

// Validate checks the config for rule combinations the scorer cannot honor.
func (c Config) Validate() error {
	if c.MinOverallScore < 0 || c.MinOverallScore > 100 {
		return fmt.Errorf("min overall score %f out of range", c.MinOverallScore)
	}
	for siteType, crits := range c.Criteria {
		if len(crits) == 0 {
			return fmt.Errorf("%s: empty criteria list", siteType)
		}
		names := map[string]bool{}
		for _, crit := range crits {
			if names[crit.Name] {
				return fmt.Errorf("%s: duplicate criterion %q", siteType, crit.Name)
			}
			names[crit.Name] = true

			if crit.Weight <= 0 {
				return fmt.Errorf("%s/%s: weight must be positive", siteType, crit.Name)
			}
			if crit.Field == FieldAspect {
				if crit.Band == nil {
					return fmt.Errorf("%s/%s: aspect criterion needs a band", siteType, crit.Name)
				}
				if crit.Band.MinDeg >= crit.Band.MaxDeg {
					return fmt.Errorf("%s/%s: inverted aspect band", siteType, crit.Name)
				}
			} else {
				if crit.Band != nil {
					return fmt.Errorf("%s/%s: band on a non-aspect criterion", siteType, crit.Name)
				}
				if crit.Floor == crit.Ideal {
					return fmt.Errorf("%s/%s: degenerate ramp", siteType, crit.Name)
				}
			}
		}
		for _, rule := range c.Compensation {
			if rule.Donor == rule.Recipient {
				return fmt.Errorf("compensation rule cannot pair %q with itself", rule.Donor)
			}
		}
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	out.Criteria = make(map[model.SiteType][]Criterion, len(c.Criteria))
	for k, v := range c.Criteria {
		crits := make([]Criterion, len(v))
		copy(crits, v)
		for i := range crits {
			if crits[i].Band != nil {
				band := *crits[i].Band
				crits[i].Band = &band
			}
		}
		out.Criteria[k] = crits
	}
	out.Compensation = append([]CompensationRule(nil), c.Compensation...)
	return out
}

func normalizeWeights(crits []Criterion) {
	total := 0.0
	for _, c := range crits {
		total += c.Weight
	}
	if total == 0 {
		return
	}
	for i := range crits {
		crits[i].Weight /= total
	}
}
