package terrain

import (
	"huntcore/internal/fetch"
	"huntcore/internal/model"
	"huntcore/internal/util"
)

// Region fallback defaults, used whenever an upstream source failed. Tuned
// for mid-elevation northern-Rockies timber country.
const (
	DefaultElevationM   = 1500.0
	DefaultSlopeDeg     = 8.0
	DefaultAspectDeg    = 180.0
	DefaultCanopyPct    = 0.55
	DefaultConiferPct   = 0.40
	DefaultNDVI         = 0.45
	DefaultRoadDistM    = 800.0
	DefaultWindDirDeg   = 270.0
	DefaultWindSpeedMPH = 5.0
)

// slope artifact correction bounds. 10m elevation tiles report cliff-edge
// artifacts above 45 degrees on terrain that walks like 30-45.
const (
	slopeArtifactFloor = 45.0
	slopeArtifactCap   = 90.0
)

// ThermalPhaseForHour maps an hour of day (0-23) to the convective draft
// phase on a slope.
func ThermalPhaseForHour(hour int) model.ThermalPhase {
	switch {
	case hour < 12:
		return model.ThermalMorningUpslope
	case hour >= 15:
		return model.ThermalEveningDownslope
	default:
		return model.ThermalMiddayTransition
	}
}

// Normalize converts raw collaborator payloads into a canonical feature
// record. Failed sources are filled from region defaults and the record is
// marked as a fallback estimate so confidence scoring can discount it.
// Pure transformation, no side effects.
func Normalize(
	t fetch.Result[fetch.TerrainSample],
	v fetch.Result[fetch.VegetationSample],
	road fetch.Result[float64],
	w fetch.Result[fetch.WeatherSample],
	hour int,
) model.FeatureRecord {
	rec := model.FeatureRecord{
		ThermalPhase: ThermalPhaseForHour(hour),
		DataSource:   model.DataSourceSatellite,
	}

	if t.Usable() {
		rec.ElevationM = t.Value.ElevationM
		rec.SlopeDeg = CorrectSlope(t.Value.SlopeDeg)
		rec.AspectDeg = util.NormalizeBearing(t.Value.AspectDeg)
	} else {
		rec.ElevationM = DefaultElevationM
		rec.SlopeDeg = DefaultSlopeDeg
		rec.AspectDeg = DefaultAspectDeg
		rec.DataSource = model.DataSourceFallback
	}

	if v.Usable() {
		rec.CanopyPct = clamp01(v.Value.CanopyPct)
		rec.ConiferPct = clamp01(v.Value.ConiferPct)
		rec.NDVI = clampRange(v.Value.NDVI, -1, 1)
	} else {
		rec.CanopyPct = DefaultCanopyPct
		rec.ConiferPct = DefaultConiferPct
		rec.NDVI = DefaultNDVI
		rec.DataSource = model.DataSourceFallback
	}

	if road.Usable() && road.Value >= 0 {
		rec.DistanceToRoadM = road.Value
	} else {
		rec.DistanceToRoadM = DefaultRoadDistM
		rec.DataSource = model.DataSourceFallback
	}

	if w.Usable() {
		rec.WindDirDeg = util.NormalizeBearing(w.Value.WindDirDeg)
		rec.WindSpeedMPH = clampRange(w.Value.WindSpeedMPH, 0, 150)
	} else {
		rec.WindDirDeg = DefaultWindDirDeg
		rec.WindSpeedMPH = DefaultWindSpeedMPH
		rec.DataSource = model.DataSourceFallback
	}

	// Any non-OK terrain or vegetation read taints provenance even when a
	// value was carried, so downstream discounting still applies.
	if t.Status == fetch.StatusFallback || v.Status == fetch.StatusFallback ||
		road.Status == fetch.StatusFallback || w.Status == fetch.StatusFallback {
		rec.DataSource = model.DataSourceFallback
	}

	return rec
}

// DefaultFeature returns a record built entirely from region defaults.
func DefaultFeature(hour int) model.FeatureRecord {
	none := fetch.Err[fetch.TerrainSample]("unavailable")
	return Normalize(
		none,
		fetch.Err[fetch.VegetationSample]("unavailable"),
		fetch.Err[float64]("unavailable"),
		fetch.Err[fetch.WeatherSample]("unavailable"),
		hour,
	)
}

// CorrectSlope clamps slope into [0, 90] and compresses the artifact band.
// Readings above 45 degrees are usually cliff-edge artifacts of coarse
// elevation tiles on terrain that walks like 30-45; the curve ramps (45, 90]
// linearly down onto [30, 45), continuous at the threshold, so a reading
// just past 45 corrects to nearly 45 while an extreme artifact lands at 30.
func CorrectSlope(slope float64) float64 {
	if slope < 0 {
		return 0
	}
	if slope > slopeArtifactCap {
		slope = slopeArtifactCap
	}
	if slope <= slopeArtifactFloor {
		return slope
	}
	return slopeArtifactFloor - (slope-slopeArtifactFloor)/3.0
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
