package placement

import (
	"testing"

	"huntcore/internal/model"
	"huntcore/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = model.GeoPoint{Lat: 46.8, Lon: -113.9}

func slopedRecord() model.FeatureRecord {
	return model.FeatureRecord{
		SlopeDeg:     12,
		AspectDeg:    180,
		WindDirDeg:   270,
		WindSpeedMPH: 5,
		ThermalPhase: model.ThermalMorningUpslope,
	}
}

func bearingTo(p model.GeoPoint) float64 {
	return util.InitialBearing(anchor.Lat, anchor.Lon, p.Lat, p.Lon)
}

func distanceTo(p model.GeoPoint) float64 {
	return util.HaversineDistance(anchor.Lat, anchor.Lon, p.Lat, p.Lon)
}

func TestComputeBearings(t *testing.T) {
	rec := slopedRecord()
	b := ComputeBearings(rec)

	assert.InDelta(t, 0, b.Uphill, 1e-9)
	assert.InDelta(t, 180, b.Downhill, 1e-9)
	assert.InDelta(t, 0, b.Crosswind, 1e-9)
	assert.InDelta(t, 0, b.ThermalAligned, 1e-9, "morning thermals drift uphill")

	rec.ThermalPhase = model.ThermalEveningDownslope
	assert.InDelta(t, 180, ComputeBearings(rec).ThermalAligned, 1e-9)

	rec.ThermalPhase = model.ThermalMiddayTransition
	assert.InDelta(t, 0, ComputeBearings(rec).ThermalAligned, 1e-9, "transition falls back to crosswind")
}

func TestBeddingUphillOnSlope(t *testing.T) {
	cfg := DefaultConfig()
	p, err := PlaceRelatedSites(anchor, slopedRecord(), 8, cfg)
	require.NoError(t, err)
	require.Len(t, p.Bedding, 1)

	assert.Less(t, util.AngularDiff(bearingTo(p.Bedding[0]), 0), 0.5, "bedding must sit uphill")
	assert.InDelta(t, cfg.BeddingDistanceM, distanceTo(p.Bedding[0]), 1.0)
}

func TestBeddingLeewardOnFlat(t *testing.T) {
	rec := slopedRecord()
	rec.SlopeDeg = 2

	p, err := PlaceRelatedSites(anchor, rec, 8, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, p.Bedding, 1)

	// Wind from 270: leeward is 90, east of the anchor.
	assert.Less(t, util.AngularDiff(bearingTo(p.Bedding[0]), 90), 0.5)
}

func TestMorningStandStrictlyBeyondBedding(t *testing.T) {
	cfg := DefaultConfig()
	p, err := PlaceRelatedSites(anchor, slopedRecord(), 8, cfg)
	require.NoError(t, err)
	require.Len(t, p.Stands, 1)

	stand := p.Stands[0]
	bedding := p.Bedding[0]

	assert.Less(t, util.AngularDiff(bearingTo(stand), bearingTo(bedding)), 0.5,
		"morning stand must lie on the bedding line")
	assert.Greater(t, distanceTo(stand), distanceTo(bedding),
		"morning stand must be farther uphill than bedding")
	assert.InDelta(t, cfg.BeddingDistanceM+cfg.StandDistanceM, distanceTo(stand), 1.0)
}

func TestEveningStandDownhillOppositeBedding(t *testing.T) {
	p, err := PlaceRelatedSites(anchor, slopedRecord(), 18, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, p.Stands, 1)

	standBearing := bearingTo(p.Stands[0])
	assert.Less(t, util.AngularDiff(standBearing, 180), 0.5, "evening stand sits downhill")
	assert.Greater(t, util.AngularDiff(standBearing, bearingTo(p.Bedding[0])), 179.0,
		"evening stand and bedding must straddle the anchor")
}

func TestEveningFeedingOverridesAspect(t *testing.T) {
	// North-facing slope: aspect would disqualify feeding in the morning,
	// but evening placement follows the downslope thermal regardless.
	rec := slopedRecord()
	rec.AspectDeg = 0
	rec.ThermalPhase = model.ThermalEveningDownslope

	p, err := PlaceRelatedSites(anchor, rec, 18, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, p.Feeding, 1)
	assert.False(t, p.FeedingNeedsSearch)

	assert.Less(t, util.AngularDiff(bearingTo(p.Feeding[0]), 0), 0.5, "downhill on a north face is due north")
}

func TestMorningFeedingRequiresSouthAspect(t *testing.T) {
	rec := slopedRecord()
	rec.AspectDeg = 0

	p, err := PlaceRelatedSites(anchor, rec, 8, DefaultConfig())
	require.NoError(t, err)

	assert.True(t, p.FeedingNeedsSearch, "north-facing morning feeding must defer to the search")
	assert.Empty(t, p.Feeding)
}

func TestMorningFeedingPlacedOnSouthFace(t *testing.T) {
	cfg := DefaultConfig()
	p, err := PlaceRelatedSites(anchor, slopedRecord(), 8, cfg)
	require.NoError(t, err)
	require.Len(t, p.Feeding, 1)
	assert.False(t, p.FeedingNeedsSearch)

	assert.Less(t, util.AngularDiff(bearingTo(p.Feeding[0]), 180), 0.5)
	assert.InDelta(t, cfg.FeedingDistanceM, distanceTo(p.Feeding[0]), 1.0)
}

func TestMorningFeedingFlatGroundSkipsAspectCheck(t *testing.T) {
	rec := slopedRecord()
	rec.SlopeDeg = 2
	rec.AspectDeg = 0

	p, err := PlaceRelatedSites(anchor, rec, 8, DefaultConfig())
	require.NoError(t, err)

	assert.False(t, p.FeedingNeedsSearch, "aspect carries no meaning on flat ground")
	assert.Len(t, p.Feeding, 1)
}

func TestAllDayStandUsesOffsetBearing(t *testing.T) {
	p, err := PlaceRelatedSites(anchor, slopedRecord(), 13, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, p.Stands, 1)

	assert.Less(t, util.AngularDiff(bearingTo(p.Stands[0]), 45), 0.5,
		"all-day stand covers the uphill+45 approach")
}

func TestCameraCrosswind(t *testing.T) {
	cfg := DefaultConfig()
	p, err := PlaceRelatedSites(anchor, slopedRecord(), 8, cfg)
	require.NoError(t, err)
	require.Len(t, p.Cameras, 1)

	assert.Less(t, util.AngularDiff(bearingTo(p.Cameras[0]), 0), 0.5)
	assert.InDelta(t, cfg.CameraDistanceM, distanceTo(p.Cameras[0]), 1.0)
}

func TestPlacementDeterministic(t *testing.T) {
	first, err := PlaceRelatedSites(anchor, slopedRecord(), 8, DefaultConfig())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := PlaceRelatedSites(anchor, slopedRecord(), 8, DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGeometryHoldsAcrossAspectSweep(t *testing.T) {
	// The consistency check must pass for every aspect and hunt phase; a
	// failure here means the bearing roles contradict each other.
	for aspect := 0.0; aspect < 360; aspect += 30 {
		for _, hour := range []int{8, 13, 18} {
			rec := slopedRecord()
			rec.AspectDeg = aspect
			if hour >= 15 {
				rec.ThermalPhase = model.ThermalEveningDownslope
			}

			if _, err := PlaceRelatedSites(anchor, rec, hour, DefaultConfig()); err != nil {
				t.Fatalf("aspect %.0f hour %d: %v", aspect, hour, err)
			}
		}
	}
}
