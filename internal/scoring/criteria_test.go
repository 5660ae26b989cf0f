package scoring

import (
	"testing"

	"huntcore/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsBrokenConfigs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Criteria[model.SiteBedding][0].Weight = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Criteria[model.SiteBedding] = append(cfg.Criteria[model.SiteBedding],
		Criterion{Name: "canopy", Field: FieldCanopy, Weight: 1, Floor: 0, Ideal: 1})
	assert.Error(t, cfg.Validate(), "duplicate criterion names must be rejected")

	cfg = DefaultConfig()
	band := AspectBand{MinDeg: 135, MaxDeg: 225}
	cfg.Criteria[model.SiteBedding][0].Band = &band
	assert.Error(t, cfg.Validate(), "band on a non-aspect criterion must be rejected")
}

func TestDefaultTiersValidate(t *testing.T) {
	for _, siteType := range []model.SiteType{model.SiteBedding, model.SiteFeeding, model.SiteStand, model.SiteCamera} {
		require.NoError(t, ValidateTiers(DefaultTiers(siteType)), siteType.String())
	}
}

func TestTiersNeverLoosenSemantics(t *testing.T) {
	// The historically observed 90-270 widening accepted east/west-facing
	// ground; that ladder must be rejected as a defect.
	tiers := DefaultTiers(model.SiteBedding)
	tiers[len(tiers)-1].Aspect = AspectBand{MinDeg: 90, MaxDeg: 270}
	assert.Error(t, ValidateTiers(tiers))

	tiers = DefaultTiers(model.SiteBedding)
	tiers[len(tiers)-1].CanopyThreshold = 0.1
	assert.Error(t, ValidateTiers(tiers), "canopy below the biological minimum must be rejected")

	tiers = DefaultTiers(model.SiteBedding)
	tiers[1].Aspect = AspectBand{MinDeg: 170, MaxDeg: 190}
	assert.Error(t, ValidateTiers(tiers), "a shrinking band must be rejected")
}

func TestTierOrderingIsSupersetByMagnitude(t *testing.T) {
	tiers := DefaultTiers(model.SiteFeeding)
	for i := 1; i < len(tiers); i++ {
		assert.True(t, tiers[i].Aspect.ContainsBand(tiers[i-1].Aspect),
			"tier %d band must contain tier %d band", tiers[i].Level, tiers[i-1].Level)
		assert.LessOrEqual(t, tiers[i].CanopyThreshold, tiers[i-1].CanopyThreshold)
		assert.LessOrEqual(t, tiers[i].MinOverallScore, tiers[i-1].MinOverallScore)
	}

	// A true north-facing aspect fails at every tier.
	for _, tier := range tiers {
		assert.False(t, tier.Aspect.Contains(0), "tier %d accepts north-facing ground", tier.Level)
		assert.False(t, tier.Aspect.Contains(90), "tier %d accepts east-facing ground", tier.Level)
	}
}

func TestWithTierAppliesRelaxation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Phase = model.PhaseAM
	tiers := DefaultTiers(model.SiteBedding)
	widest := tiers[len(tiers)-1]

	relaxed := cfg.WithTier(model.SiteBedding, widest)

	// The original config is untouched.
	for _, crit := range cfg.Criteria[model.SiteBedding] {
		if crit.Field == FieldAspect {
			assert.Equal(t, 135.0, crit.Band.MinDeg)
		}
	}

	rec := model.FeatureRecord{
		SlopeDeg: 10, AspectDeg: 125, CanopyPct: 0.37, ConiferPct: 0.6,
		NDVI: 0.5, DistanceToRoadM: 800,
	}
	strict := Score(rec, model.SiteBedding, cfg)
	loose := Score(rec, model.SiteBedding, relaxed)

	assert.False(t, strict.Passed, "aspect 125 must fail the base band")
	assert.True(t, loose.Passed, "aspect 125 must pass the widest band: %v", loose.FailedCriteria)
}

func TestForConditionsAdjustsWeights(t *testing.T) {
	base := DefaultConfig()
	high := base.ForConditions(SeasonLate, PressureHigh)

	var baseIso, highIso Criterion
	for _, c := range base.Criteria[model.SiteBedding] {
		if c.Name == "isolation" {
			baseIso = c
		}
	}
	for _, c := range high.Criteria[model.SiteBedding] {
		if c.Name == "isolation" {
			highIso = c
		}
	}

	// Weights are renormalized, so compare relative share instead.
	assert.Greater(t, highIso.Weight, baseIso.Weight/sumWeights(base.Criteria[model.SiteBedding])*0.99)
	assert.Greater(t, highIso.Ideal, baseIso.Ideal)

	require.NoError(t, high.Validate())
}

func sumWeights(crits []Criterion) float64 {
	total := 0.0
	for _, c := range crits {
		total += c.Weight
	}
	return total
}
