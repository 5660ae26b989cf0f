package observation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"huntcore/internal/model"
	pg "huntcore/internal/postgres"
	redis_client "huntcore/internal/redis"
	"huntcore/internal/service/storage"
	"huntcore/internal/util"

	"github.com/dhconnelly/rtreego"
	"gorm.io/gorm"
)

const ObservationRedisKey = "observation"

// pointExtentDeg is the degenerate-rectangle size used to index a point
// observation in the R-tree.
const pointExtentDeg = 1e-6

// ObservationSpatial wraps an observation for R-tree indexing.
type ObservationSpatial struct {
	ID  string
	Obs *model.Observation
}

// Bounds implements the rtreego.Spatial interface
func (o *ObservationSpatial) Bounds() rtreego.Rect {
	rect, _ := rtreego.NewRect(
		rtreego.Point{o.Obs.Lon, o.Obs.Lat},
		[]float64{pointExtentDeg, pointExtentDeg},
	)
	return rect
}

// ObservationService keeps field scouting observations in memory, indexed
// spatially, with write-behind persistence to Redis and PostgreSQL.
// Observations near a prediction point feed the confidence bonus.
type ObservationService struct {
	storage      storage.Storage[string, *model.Observation]
	spatialIndex *rtreego.Rtree
	indexMutex   sync.RWMutex
	initialized  bool
	initMutex    sync.RWMutex
}

var (
	observationServiceInstance *ObservationService
	observationServiceOnce     sync.Once
)

// GetObservationService returns the singleton instance of the ObservationService.
func GetObservationService() *ObservationService {
	observationServiceOnce.Do(func() {
		observationServiceInstance = &ObservationService{
			storage:      storage.NewMemoryStorage[string, *model.Observation](),
			spatialIndex: rtreego.NewTree(2, 25, 50),
		}
	})
	return observationServiceInstance
}

// InitService loads observations from PostgreSQL, overlays newer Redis
// entries, and builds the spatial index.
func (s *ObservationService) InitService(ctx context.Context) error {
	s.initMutex.Lock()
	defer s.initMutex.Unlock()

	if s.initialized {
		return nil
	}

	log.Println("Initializing ObservationService...")
	startTime := time.Now()

	pgObservations, err := s.loadAllObservationsFromPG()
	if err != nil {
		return fmt.Errorf("failed to load observations from PostgreSQL: %w", err)
	}
	log.Printf("Loaded %d observations from PostgreSQL in %v", len(pgObservations), time.Since(startTime))

	redisObservations, err := s.loadAllObservationsFromRedis(ctx)
	if err != nil {
		return fmt.Errorf("failed to load observations from Redis: %w", err)
	}
	log.Printf("Loaded %d observation updates from Redis", len(redisObservations))

	merged := s.mergeObservationsIntoMemory(pgObservations, redisObservations)
	log.Printf("Merged %d newer observations from Redis", merged)

	s.rebuildSpatialIndex()

	log.Printf("Initialization complete: %d observations in memory, took %v",
		s.storage.Count(), time.Since(startTime))

	s.initialized = true
	return nil
}

func (s *ObservationService) loadAllObservationsFromPG() ([]*model.Observation, error) {
	db := pg.GetDB()
	var pgObservations []*model.ObservationPG

	result := db.Find(&pgObservations)
	if result.Error != nil {
		return nil, result.Error
	}

	observations := make([]*model.Observation, len(pgObservations))
	for i, pgObs := range pgObservations {
		observations[i] = model.ObservationFromPG(pgObs)
	}
	return observations, nil
}

func (s *ObservationService) loadAllObservationsFromRedis(ctx context.Context) (map[string]*model.Observation, error) {
	if !redis_client.Available() {
		return make(map[string]*model.Observation), nil
	}

	client := redis_client.GetClient()
	var cursor uint64
	var keys []string
	pattern := fmt.Sprintf("%s:*", ObservationRedisKey)

	for {
		batch, nextCursor, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return make(map[string]*model.Observation), nil
	}

	jsonData, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	observations := make(map[string]*model.Observation)
	for _, data := range jsonData {
		if data == nil {
			continue
		}
		jsonStr, ok := data.(string)
		if !ok || jsonStr == "" {
			continue
		}

		obs := &model.Observation{}
		if err := json.Unmarshal([]byte(jsonStr), obs); err != nil {
			continue
		}
		observations[obs.ID] = obs
	}
	return observations, nil
}

// mergeObservationsIntoMemory overlays Redis entries onto the PostgreSQL
// snapshot; Redis wins when its UpdatedAt is newer. The note survives from
// the PG copy because the Redis light version drops it.
func (s *ObservationService) mergeObservationsIntoMemory(pgObservations []*model.Observation, redisObservations map[string]*model.Observation) int {
	for _, obs := range pgObservations {
		s.storage.Set(obs.ID, obs)
	}

	mergedCount := 0
	for id, redisObs := range redisObservations {
		existing, exists := s.storage.Get(id)
		if !exists || redisObs.UpdatedAt.After(existing.UpdatedAt) {
			if exists {
				redisObs.Note = existing.Note
				redisObs.CreatedAt = existing.CreatedAt
			}
			s.storage.Set(id, redisObs)
			mergedCount++
		}
	}
	return mergedCount
}

func (s *ObservationService) rebuildSpatialIndex() {
	s.indexMutex.Lock()
	defer s.indexMutex.Unlock()

	s.spatialIndex = rtreego.NewTree(2, 25, 50)
	s.storage.ForEach(func(id string, obs *model.Observation) bool {
		s.spatialIndex.Insert(&ObservationSpatial{ID: id, Obs: obs})
		return true
	})
}

// AddObservation stores a new observation and indexes it. An empty ID is
// assigned.
func (s *ObservationService) AddObservation(obs *model.Observation) (*model.Observation, error) {
	if !(model.GeoPoint{Lat: obs.Lat, Lon: obs.Lon}).Valid() {
		return nil, fmt.Errorf("invalid observation coordinates (%f, %f)", obs.Lat, obs.Lon)
	}

	if obs.ID == "" {
		id, err := util.GenerateUniqueID(8)
		if err != nil {
			return nil, fmt.Errorf("failed to generate observation id: %w", err)
		}
		obs.ID = id
	}
	now := time.Now()
	if obs.CreatedAt.IsZero() {
		obs.CreatedAt = now
	}
	obs.UpdatedAt = now

	s.storage.Set(obs.ID, obs)

	s.indexMutex.Lock()
	s.spatialIndex.Insert(&ObservationSpatial{ID: obs.ID, Obs: obs})
	s.indexMutex.Unlock()

	return obs, nil
}

// DeleteObservation removes an observation from memory and the index. The
// persistence workers propagate the deletion on their next flush.
func (s *ObservationService) DeleteObservation(id string) bool {
	obs, exists := s.storage.Get(id)
	if !exists {
		return false
	}
	s.storage.Delete(id)

	s.indexMutex.Lock()
	s.spatialIndex.DeleteWithComparator(&ObservationSpatial{ID: id, Obs: obs},
		func(obj1, obj2 rtreego.Spatial) bool {
			return obj1.(*ObservationSpatial).ID == obj2.(*ObservationSpatial).ID
		})
	s.indexMutex.Unlock()

	return true
}

// GetObservation returns one observation by ID.
func (s *ObservationService) GetObservation(id string) (*model.Observation, bool) {
	return s.storage.Get(id)
}

// GetObservationsNear returns observations within radiusM of a point,
// closest first.
func (s *ObservationService) GetObservationsNear(pt model.GeoPoint, radiusM float64) []*model.Observation {
	radiusDeg := radiusM / 111320.0

	searchRect, err := rtreego.NewRect(
		rtreego.Point{pt.Lon - radiusDeg, pt.Lat - radiusDeg},
		[]float64{2 * radiusDeg, 2 * radiusDeg},
	)
	if err != nil {
		return nil
	}

	s.indexMutex.RLock()
	hits := s.spatialIndex.SearchIntersect(searchRect)
	s.indexMutex.RUnlock()

	type scored struct {
		obs  *model.Observation
		dist float64
	}
	within := make([]scored, 0, len(hits))
	for _, hit := range hits {
		spatial := hit.(*ObservationSpatial)
		d := util.HaversineDistance(pt.Lat, pt.Lon, spatial.Obs.Lat, spatial.Obs.Lon)
		if d <= radiusM {
			within = append(within, scored{obs: spatial.Obs, dist: d})
		}
	}

	sort.Slice(within, func(i, j int) bool { return within[i].dist < within[j].dist })

	out := make([]*model.Observation, len(within))
	for i, sc := range within {
		out[i] = sc.obs
	}
	return out
}

// CountNear returns how many observations lie within radiusM of a point.
func (s *ObservationService) CountNear(pt model.GeoPoint, radiusM float64) int {
	return len(s.GetObservationsNear(pt, radiusM))
}

// SaveDirtyObservationsToRedis flushes modified observations to Redis.
func (s *ObservationService) SaveDirtyObservationsToRedis() error {
	if !redis_client.Available() {
		return nil
	}

	dirty := s.storage.GetDirty()
	if len(dirty) == 0 {
		return nil
	}

	client := redis_client.GetClient()
	ctx := context.Background()
	pipe := client.Pipeline()

	keys := make([]string, 0, len(dirty))
	for id, obs := range dirty {
		obsKey := fmt.Sprintf("%s:%s", ObservationRedisKey, id)
		obsJSON, err := json.Marshal(obs.ToLightVersion())
		if err != nil {
			return err
		}
		pipe.Set(ctx, obsKey, obsJSON, 0)
		keys = append(keys, id)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	// Clear flags only after successful save
	s.storage.ClearDirty(keys)

	log.Printf("Saved %d observations to Redis", len(dirty))
	return nil
}

// SaveAllObservationsToPG saves all observations to PostgreSQL in batches.
func (s *ObservationService) SaveAllObservationsToPG() error {
	all := s.storage.GetAllValues()
	if len(all) == 0 {
		return nil
	}

	db := pg.GetDB()
	batchSize := 1000

	for i := 0; i < len(all); i += batchSize {
		end := i + batchSize
		if end > len(all) {
			end = len(all)
		}
		batch := all[i:end]

		err := db.Transaction(func(tx *gorm.DB) error {
			for _, obs := range batch {
				if result := tx.Save(obs.ToPG()); result.Error != nil {
					return result.Error
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	log.Printf("Saved %d observations to PostgreSQL", len(all))
	return nil
}
