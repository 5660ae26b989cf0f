package grid

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"

	"huntcore/internal/config"
	"huntcore/internal/fetch"
	"huntcore/internal/model"
	"huntcore/internal/terrain"
	"huntcore/internal/util"

	"golang.org/x/sync/semaphore"
)

const interpolatedReason = "interpolated from neighboring cells"

// Cache stores raw upstream layer payloads keyed by (coordinates, radius,
// data version). Computed grids are never cached; they stay request-scoped.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// Sampler produces feature grids by querying the external feature sources
// in bounded-concurrency batches and interpolating whatever cells did not
// return data. Output is deterministic for identical upstream data; batch
// ordering and concurrency degree affect only latency.
type Sampler struct {
	Terrain    fetch.TerrainSource
	Vegetation fetch.VegetationSource
	Roads      fetch.RoadSource
	Weather    fetch.WeatherSource

	BatchSize      int
	MaxConcurrency int64
	DataVersion    string
	Cache          Cache
}

// NewSampler builds a sampler with the default batch tuning.
func NewSampler(t fetch.TerrainSource, v fetch.VegetationSource, r fetch.RoadSource, w fetch.WeatherSource) *Sampler {
	return &Sampler{
		Terrain:        t,
		Vegetation:     v,
		Roads:          r,
		Weather:        w,
		BatchSize:      64,
		MaxConcurrency: config.MaxFetchConcurrency,
		DataVersion:    "v1",
	}
}

// rawLayers is the cacheable bundle of static upstream payloads. Weather is
// excluded: it changes hourly.
type rawLayers struct {
	Terrain    []fetch.Result[fetch.TerrainSample]    `json:"terrain"`
	Vegetation []fetch.Result[fetch.VegetationSample] `json:"vegetation"`
	Roads      []fetch.Result[float64]                `json:"roads"`
}

// GridPoints computes gridSize×gridSize evenly spaced coordinates covering a
// square of side 2×radiusM centered on center. Row 0 is the southern edge,
// column 0 the western edge.
func GridPoints(center model.GeoPoint, radiusM float64, gridSize int) [][]model.GeoPoint {
	step := 2 * radiusM / float64(gridSize-1)
	mid := float64(gridSize-1) / 2

	points := make([][]model.GeoPoint, gridSize)
	for r := 0; r < gridSize; r++ {
		points[r] = make([]model.GeoPoint, gridSize)
		northM := (float64(r) - mid) * step
		for c := 0; c < gridSize; c++ {
			eastM := (float64(c) - mid) * step
			points[r][c] = offsetPoint(center, northM, eastM)
		}
	}
	return points
}

func offsetPoint(origin model.GeoPoint, northM, eastM float64) model.GeoPoint {
	lat, lon := origin.Lat, origin.Lon
	if northM != 0 {
		bearing := 0.0
		if northM < 0 {
			bearing = 180
		}
		lat, lon = util.DestinationPoint(lat, lon, bearing, math.Abs(northM))
	}
	if eastM != 0 {
		bearing := 90.0
		if eastM < 0 {
			bearing = 270
		}
		lat, lon = util.DestinationPoint(lat, lon, bearing, math.Abs(eastM))
	}
	return model.GeoPoint{Lat: lat, Lon: lon}
}

// SampleGrid builds the feature grid for one prediction request. It never
// fails hard on upstream trouble: a fully unavailable source degrades to
// region defaults and the grid is flagged Fallback.
func (s *Sampler) SampleGrid(ctx context.Context, center model.GeoPoint, radiusM float64, gridSize int, hour int) (*model.FeatureGrid, error) {
	if gridSize < 2 {
		return nil, fmt.Errorf("grid size must be at least 2, got %d", gridSize)
	}
	if radiusM <= 0 {
		return nil, fmt.Errorf("radius must be positive, got %f", radiusM)
	}

	points := GridPoints(center, radiusM, gridSize)
	flat := make([]model.GeoPoint, 0, gridSize*gridSize)
	for _, row := range points {
		flat = append(flat, row...)
	}

	weather := s.fetchWeather(ctx, center)
	layers := s.fetchLayers(ctx, center, radiusM, gridSize, flat)

	terrainAvail := interpolateTerrain(gridSize, layers.Terrain)
	vegAvail := interpolateVegetation(gridSize, layers.Vegetation)
	roadsAvail := interpolateRoads(gridSize, layers.Roads)

	grid := &model.FeatureGrid{
		Center:   center,
		RadiusM:  radiusM,
		Size:     gridSize,
		Points:   points,
		Cells:    make([][]model.FeatureRecord, gridSize),
		Fallback: !terrainAvail || !vegAvail || !roadsAvail || !weather.Usable(),
	}

	for r := 0; r < gridSize; r++ {
		grid.Cells[r] = make([]model.FeatureRecord, gridSize)
		for c := 0; c < gridSize; c++ {
			idx := r*gridSize + c
			grid.Cells[r][c] = terrain.Normalize(
				layers.Terrain[idx], layers.Vegetation[idx], layers.Roads[idx], weather, hour)
		}
	}

	if grid.Fallback {
		log.Printf("Grid sampler degraded to fallback data for (%.5f, %.5f): terrain=%v vegetation=%v roads=%v weather=%v",
			center.Lat, center.Lon, terrainAvail, vegAvail, roadsAvail, weather.Usable())
	}

	return grid, nil
}

func (s *Sampler) fetchWeather(ctx context.Context, center model.GeoPoint) fetch.Result[fetch.WeatherSample] {
	if s.Weather == nil {
		return fetch.Err[fetch.WeatherSample]("weather source not wired")
	}
	return s.Weather.Fetch(ctx, center)
}

// fetchLayers loads the static layers, through the cache when possible.
func (s *Sampler) fetchLayers(ctx context.Context, center model.GeoPoint, radiusM float64, gridSize int, flat []model.GeoPoint) rawLayers {
	key := fmt.Sprintf("feature:%s:%.5f:%.5f:%.0f:%d", s.DataVersion, center.Lat, center.Lon, radiusM, gridSize)

	if s.Cache != nil {
		if raw, ok := s.Cache.Get(key); ok {
			var cached rawLayers
			if err := json.Unmarshal([]byte(raw), &cached); err == nil && len(cached.Terrain) == len(flat) {
				return cached
			}
			log.Printf("Discarding malformed feature cache entry %s", key)
		}
	}

	layers := s.fetchLayersRemote(ctx, flat)

	if s.Cache != nil && layersFullyLive(layers) {
		if raw, err := json.Marshal(layers); err == nil {
			s.Cache.Set(key, string(raw))
		}
	}

	return layers
}

func layersFullyLive(l rawLayers) bool {
	for _, r := range l.Terrain {
		if !r.OK() {
			return false
		}
	}
	for _, r := range l.Vegetation {
		if !r.OK() {
			return false
		}
	}
	for _, r := range l.Roads {
		if !r.OK() {
			return false
		}
	}
	return true
}

// fetchLayersRemote issues the batched source calls. Batches run under a
// bounded semaphore; each batch writes only its own slice segment, so the
// concurrency degree cannot change output values.
func (s *Sampler) fetchLayersRemote(ctx context.Context, flat []model.GeoPoint) rawLayers {
	n := len(flat)
	layers := rawLayers{
		Terrain:    make([]fetch.Result[fetch.TerrainSample], n),
		Vegetation: make([]fetch.Result[fetch.VegetationSample], n),
		Roads:      make([]fetch.Result[float64], n),
	}

	batch := s.BatchSize
	if batch <= 0 {
		batch = 64
	}
	maxConc := s.MaxConcurrency
	if maxConc <= 0 {
		maxConc = 1
	}

	sem := semaphore.NewWeighted(maxConc)
	var wg sync.WaitGroup

	for start := 0; start < n; start += batch {
		end := start + batch
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				// Request cancelled: leave the segment as errors so the
				// normalizer degrades it to defaults.
				reason := "fetch cancelled: " + err.Error()
				for i := start; i < end; i++ {
					layers.Terrain[i] = fetch.Err[fetch.TerrainSample](reason)
					layers.Vegetation[i] = fetch.Err[fetch.VegetationSample](reason)
					layers.Roads[i] = fetch.Err[float64](reason)
				}
				return
			}
			defer sem.Release(1)

			segment := flat[start:end]

			if s.Terrain != nil {
				copy(layers.Terrain[start:end], s.Terrain.FetchBatch(ctx, segment))
			} else {
				for i := start; i < end; i++ {
					layers.Terrain[i] = fetch.Err[fetch.TerrainSample]("terrain source not wired")
				}
			}

			if s.Vegetation != nil {
				copy(layers.Vegetation[start:end], s.Vegetation.FetchBatch(ctx, segment))
			} else {
				for i := start; i < end; i++ {
					layers.Vegetation[i] = fetch.Err[fetch.VegetationSample]("vegetation source not wired")
				}
			}

			for i := start; i < end; i++ {
				if s.Roads != nil {
					layers.Roads[i] = s.Roads.Fetch(ctx, flat[i])
				} else {
					layers.Roads[i] = fetch.Err[float64]("road source not wired")
				}
			}
		}(start, end)
	}

	wg.Wait()
	return layers
}

// interpolateTerrain fills missing terrain cells from returned neighbors.
// Reports whether the layer had any live data at all.
func interpolateTerrain(size int, results []fetch.Result[fetch.TerrainSample]) bool {
	n := size * size
	ok := make([]bool, n)
	elev := make([]float64, n)
	slope := make([]float64, n)
	aspect := make([]float64, n)

	live := 0
	for i, r := range results {
		if r.Usable() {
			ok[i] = true
			elev[i] = r.Value.ElevationM
			slope[i] = r.Value.SlopeDeg
			aspect[i] = r.Value.AspectDeg
			live++
		}
	}
	if live == 0 {
		return false
	}
	if live == n {
		return true
	}

	FillLinear(size, elev, ok)
	FillLinear(size, slope, ok)
	FillNearest(size, aspect, ok)

	for i := range results {
		if !results[i].Usable() {
			results[i] = fetch.Fallback(fetch.TerrainSample{
				ElevationM: elev[i],
				SlopeDeg:   slope[i],
				AspectDeg:  aspect[i],
			}, interpolatedReason)
		}
	}
	return true
}

func interpolateVegetation(size int, results []fetch.Result[fetch.VegetationSample]) bool {
	n := size * size
	ok := make([]bool, n)
	canopy := make([]float64, n)
	ndvi := make([]float64, n)
	conifer := make([]float64, n)

	live := 0
	for i, r := range results {
		if r.Usable() {
			ok[i] = true
			canopy[i] = r.Value.CanopyPct
			ndvi[i] = r.Value.NDVI
			conifer[i] = r.Value.ConiferPct
			live++
		}
	}
	if live == 0 {
		return false
	}
	if live == n {
		return true
	}

	FillLinear(size, canopy, ok)
	FillLinear(size, ndvi, ok)
	FillLinear(size, conifer, ok)

	for i := range results {
		if !results[i].Usable() {
			results[i] = fetch.Fallback(fetch.VegetationSample{
				CanopyPct:  canopy[i],
				NDVI:       ndvi[i],
				ConiferPct: conifer[i],
			}, interpolatedReason)
		}
	}
	return true
}

func interpolateRoads(size int, results []fetch.Result[float64]) bool {
	n := size * size
	ok := make([]bool, n)
	dist := make([]float64, n)

	live := 0
	for i, r := range results {
		if r.Usable() {
			ok[i] = true
			dist[i] = r.Value
			live++
		}
	}
	if live == 0 {
		return false
	}
	if live == n {
		return true
	}

	FillLinear(size, dist, ok)
	for i := range results {
		if !results[i].Usable() {
			results[i] = fetch.Fallback(dist[i], interpolatedReason)
		}
	}
	return true
}
