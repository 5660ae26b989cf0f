package fetch

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"huntcore/internal/model"
	pg "huntcore/internal/postgres"
	"huntcore/internal/util"

	"gorm.io/gorm"
)

const (
	// roadSearchBoxDeg is the half-width of the bounding box used when
	// querying the local road index, roughly 5.5 km of latitude.
	roadSearchBoxDeg = 0.05

	// maxRoadDistanceM caps reported distance. Anything farther than this
	// is equally good isolation for scoring purposes.
	maxRoadDistanceM = 5000.0
)

// RoadDistanceSource answers distance-to-nearest-road queries. It prefers the local
// road_points index built by cmd/osm-road-indexer and falls back to the
// remote map-data service when the index is empty.
type RoadDistanceSource struct {
	DB      *gorm.DB
	BaseURL string
	Client  *http.Client

	// indexCheck runs the road_points presence check once per process, not
	// once per cell. Fetch is called from concurrent batch goroutines.
	indexCheck  sync.Once
	indexUsable bool
}

func NewRoadDistanceSource(db *gorm.DB, baseURL string) *RoadDistanceSource {
	return &RoadDistanceSource{DB: db, BaseURL: baseURL}
}

type roadDistanceResponse struct {
	DistanceToNearestRoadM float64 `json:"distance_to_nearest_road_m"`
}

// Fetch returns the distance in meters from pt to the nearest known road.
func (s *RoadDistanceSource) Fetch(ctx context.Context, pt model.GeoPoint) Result[float64] {
	if s.localIndexUsable() {
		return s.fetchLocal(ctx, pt)
	}
	return s.fetchRemote(ctx, pt)
}

func (s *RoadDistanceSource) localIndexUsable() bool {
	if s.DB == nil {
		return false
	}
	s.indexCheck.Do(func() {
		var count int64
		if err := s.DB.Model(&pg.RoadPointPG{}).Limit(1).Count(&count).Error; err == nil {
			s.indexUsable = count > 0
		}
	})
	return s.indexUsable
}

func (s *RoadDistanceSource) fetchLocal(ctx context.Context, pt model.GeoPoint) Result[float64] {
	var points []pg.RoadPointPG
	err := s.DB.WithContext(ctx).
		Where("lat BETWEEN ? AND ?", pt.Lat-roadSearchBoxDeg, pt.Lat+roadSearchBoxDeg).
		Where("lon BETWEEN ? AND ?", pt.Lon-roadSearchBoxDeg, pt.Lon+roadSearchBoxDeg).
		Find(&points).Error
	if err != nil {
		return Err[float64](fmt.Sprintf("road index query failed: %v", err))
	}

	if len(points) == 0 {
		// No road inside the search box means the point is at least the
		// cap away from any mapped road.
		return Ok(maxRoadDistanceM)
	}

	nearest := maxRoadDistanceM
	for _, rp := range points {
		d := util.HaversineDistance(pt.Lat, pt.Lon, rp.Lat, rp.Lon)
		if d < nearest {
			nearest = d
		}
	}
	return Ok(nearest)
}

func (s *RoadDistanceSource) fetchRemote(ctx context.Context, pt model.GeoPoint) Result[float64] {
	if s.BaseURL == "" {
		return Err[float64]("road service not configured and road index empty")
	}

	var resp roadDistanceResponse
	url := fmt.Sprintf("%s/v1/roads/distance?lat=%f&lon=%f", s.BaseURL, pt.Lat, pt.Lon)
	if err := doJSON(ctx, s.Client, http.MethodGet, url, nil, &resp); err != nil {
		return Err[float64]("road service unavailable: " + err.Error())
	}

	d := resp.DistanceToNearestRoadM
	if d > maxRoadDistanceM {
		d = maxRoadDistanceM
	}
	return Ok(d)
}
