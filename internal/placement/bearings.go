package placement

import (
	"huntcore/internal/model"
	"huntcore/internal/util"
)

// Bearings are the four reference directions derived from one feature
// record. Aspect is the compass direction the slope faces, so downhill
// equals aspect and uphill is its reciprocal.
type Bearings struct {
	Uphill    float64
	Downhill  float64
	Crosswind float64
	// ThermalAligned is the direction of air drift for the record's
	// thermal phase: uphill during morning heating, downhill during
	// evening cooling, crosswind while the thermals switch over.
	ThermalAligned float64
}

// ComputeBearings derives the reference bearings from slope aspect, wind
// direction, and thermal phase. Pure function.
func ComputeBearings(rec model.FeatureRecord) Bearings {
	b := Bearings{
		Uphill:    util.NormalizeBearing(rec.AspectDeg + 180),
		Downhill:  util.NormalizeBearing(rec.AspectDeg),
		Crosswind: util.NormalizeBearing(rec.WindDirDeg + 90),
	}

	switch rec.ThermalPhase {
	case model.ThermalMorningUpslope:
		b.ThermalAligned = b.Uphill
	case model.ThermalEveningDownslope:
		b.ThermalAligned = b.Downhill
	default:
		b.ThermalAligned = b.Crosswind
	}
	return b
}

// Leeward returns the wind-protection bearing, directly downwind of the
// prevailing wind. Used in place of uphill on flat terrain.
func Leeward(windDirDeg float64) float64 {
	return util.NormalizeBearing(windDirDeg + 180)
}
