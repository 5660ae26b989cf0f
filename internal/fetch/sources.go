package fetch

import (
	"context"

	"huntcore/internal/model"
)

// TerrainSample is the raw payload of the terrain/elevation service.
type TerrainSample struct {
	ElevationM float64 `json:"elevation_m"`
	SlopeDeg   float64 `json:"slope_deg"`
	AspectDeg  float64 `json:"aspect_deg"`
}

// VegetationSample is the raw payload of the vegetation/imagery service.
type VegetationSample struct {
	CanopyPct   float64 `json:"canopy_pct"`
	NDVI        float64 `json:"ndvi"`
	ConiferPct  float64 `json:"conifer_pct"`
	ResolutionM float64 `json:"resolution_m"`
}

// WeatherSample is the raw payload of the weather service.
type WeatherSample struct {
	WindDirDeg   float64 `json:"wind_dir_deg"`
	WindSpeedMPH float64 `json:"wind_speed_mph"`
	Temperature  float64 `json:"temperature"`
}

// TerrainSource provides elevation, slope and aspect for batches of points.
type TerrainSource interface {
	FetchBatch(ctx context.Context, pts []model.GeoPoint) []Result[TerrainSample]
}

// VegetationSource provides canopy, NDVI and conifer fraction for batches
// of points.
type VegetationSource interface {
	FetchBatch(ctx context.Context, pts []model.GeoPoint) []Result[VegetationSample]
}

// RoadSource provides distance in meters to the nearest road or motorized
// trail for a single point.
type RoadSource interface {
	Fetch(ctx context.Context, pt model.GeoPoint) Result[float64]
}

// WeatherSource provides current wind and temperature for a point. Weather
// is treated as uniform over a search neighborhood and fetched once per
// request.
type WeatherSource interface {
	Fetch(ctx context.Context, pt model.GeoPoint) Result[WeatherSample]
}

// errBatch builds a batch of identical error results, one per input point.
func errBatch[T any](n int, reason string) []Result[T] {
	out := make([]Result[T], n)
	for i := range out {
		out[i] = Err[T](reason)
	}
	return out
}
