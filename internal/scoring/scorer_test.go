package scoring

import (
	"testing"

	"huntcore/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRecord() model.FeatureRecord {
	return model.FeatureRecord{
		ElevationM:      1500,
		SlopeDeg:        10,
		AspectDeg:       180,
		CanopyPct:       0.7,
		ConiferPct:      0.5,
		NDVI:            0.5,
		DistanceToRoadM: 500,
		WindDirDeg:      270,
		WindSpeedMPH:    5,
	}
}

func amConfig() Config {
	cfg := DefaultConfig()
	cfg.Phase = model.PhaseAM
	return cfg
}

func TestScoreFlatTimberBedding(t *testing.T) {
	// Flat terrain, heavy canopy, deep isolation, south aspect.
	rec := baseRecord()
	rec.SlopeDeg = 0
	rec.CanopyPct = 0.8
	rec.DistanceToRoadM = 500

	res := Score(rec, model.SiteBedding, amConfig())

	require.True(t, res.Passed, "failures: %v", res.FailedCriteria)
	assert.GreaterOrEqual(t, res.Score, 90.0)
	// Flat ground: aspect must be waived, not scored.
	assert.NotContains(t, res.Breakdown, "aspect")
}

func TestScoreDeterministic(t *testing.T) {
	rec := baseRecord()
	cfg := amConfig()

	first := Score(rec, model.SiteBedding, cfg)
	for i := 0; i < 5; i++ {
		again := Score(rec, model.SiteBedding, cfg)
		assert.Equal(t, first.Score, again.Score)
		assert.Equal(t, first.Passed, again.Passed)
		assert.Equal(t, first.Breakdown, again.Breakdown)
	}
}

func TestRequiredCriteriaMonotonicity(t *testing.T) {
	// Walking a required criterion down through its threshold flips Passed
	// from true to false exactly once, never back.
	cfg := amConfig()
	passedBefore := true
	for canopy := 0.9; canopy >= 0.0; canopy -= 0.05 {
		rec := baseRecord()
		rec.CanopyPct = canopy
		rec.DistanceToRoadM = 400 // below the isolation compensation trigger

		res := Score(rec, model.SiteBedding, cfg)
		if res.Passed && !passedBefore {
			t.Fatalf("Passed flipped back to true at canopy %.2f", canopy)
		}
		passedBefore = res.Passed
	}
	if passedBefore {
		t.Fatal("canopy 0 must not pass")
	}
}

func TestRequiredFailureDisqualifiesDespiteScore(t *testing.T) {
	rec := baseRecord()
	rec.CanopyPct = 0.1 // everything else is excellent
	rec.DistanceToRoadM = 500

	res := Score(rec, model.SiteBedding, amConfig())

	assert.False(t, res.Passed)
	require.Len(t, res.FailedCriteria, 1)
	assert.Equal(t, "canopy", res.FailedCriteria[0].Criterion)
	assert.InDelta(t, 0.1, res.FailedCriteria[0].Value, 1e-9)
}

func TestIsolationCompensatesThinCanopy(t *testing.T) {
	// Named rule: isolation past 600 m may carry canopy down to 0.35.
	rec := baseRecord()
	rec.CanopyPct = 0.38
	rec.DistanceToRoadM = 700

	res := Score(rec, model.SiteBedding, amConfig())

	require.True(t, res.Passed, "failures: %v", res.FailedCriteria)
	assert.Contains(t, res.Breakdown, "canopy_compensated_by_isolation")

	// Below the rule's floor the shortfall is no longer compensable.
	rec.CanopyPct = 0.30
	res = Score(rec, model.SiteBedding, amConfig())
	assert.False(t, res.Passed)
}

func TestCompensationNeverRescuesAspect(t *testing.T) {
	rec := baseRecord()
	rec.AspectDeg = 70 // east-facing
	rec.DistanceToRoadM = 2000

	res := Score(rec, model.SiteBedding, amConfig())

	assert.False(t, res.Passed)
	require.NotEmpty(t, res.FailedCriteria)
	assert.Equal(t, "aspect", res.FailedCriteria[0].Criterion)
}

func TestFeedingAspectWaivedInEvening(t *testing.T) {
	// North-facing slope, PM hunt: thermal movement dominates, aspect is
	// waived and the site can still pass.
	rec := baseRecord()
	rec.AspectDeg = 0
	rec.SlopeDeg = 12
	rec.DistanceToRoadM = 400

	pm := DefaultConfig()
	pm.Phase = model.PhasePM

	res := Score(rec, model.SiteFeeding, pm)

	require.True(t, res.Passed, "failures: %v", res.FailedCriteria)
	assert.NotContains(t, res.Breakdown, "aspect")
}

func TestFeedingAspectEnforcedInMorning(t *testing.T) {
	rec := baseRecord()
	rec.AspectDeg = 0
	rec.SlopeDeg = 12

	res := Score(rec, model.SiteFeeding, amConfig())

	assert.False(t, res.Passed)
	require.NotEmpty(t, res.FailedCriteria)
	assert.Equal(t, "aspect", res.FailedCriteria[0].Criterion)
	// The south band still scores, it just fails the requirement.
	assert.Contains(t, res.Breakdown, "aspect")
}

func TestGrassFieldFailsBeddingOnCanopyAndAspect(t *testing.T) {
	rec := baseRecord()
	rec.AspectDeg = 70
	rec.CanopyPct = 0.2
	rec.SlopeDeg = 8

	res := Score(rec, model.SiteBedding, amConfig())

	assert.False(t, res.Passed)
	failed := map[string]bool{}
	for _, f := range res.FailedCriteria {
		failed[f.Criterion] = true
	}
	assert.True(t, failed["canopy"], "canopy must be cited")
	assert.True(t, failed["aspect"], "aspect must be cited")
}

func TestAspectSubScoreShape(t *testing.T) {
	band := AspectBand{MinDeg: 135, MaxDeg: 225}

	assert.InDelta(t, 100, aspectSubScore(band, 180), 1e-9)
	assert.InDelta(t, 70, aspectSubScore(band, 135), 1e-9)
	assert.InDelta(t, 70, aspectSubScore(band, 225), 1e-9)
	assert.Equal(t, 0.0, aspectSubScore(band, 0))

	// Monotone decay away from center.
	prev := 101.0
	for a := 180.0; a <= 300; a += 10 {
		s := aspectSubScore(band, a)
		assert.LessOrEqual(t, s, prev)
		prev = s
	}
}

func TestBreakdownCoversEveryScoredCriterion(t *testing.T) {
	rec := baseRecord()
	res := Score(rec, model.SiteBedding, amConfig())

	for _, name := range []string{"canopy", "slope", "aspect", "isolation", "conifer"} {
		assert.Contains(t, res.Breakdown, name)
	}
}
