package prediction

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"huntcore/internal/config"
	"huntcore/internal/grid"
	"huntcore/internal/model"
	"huntcore/internal/placement"
	pg "huntcore/internal/postgres"
	"huntcore/internal/scoring"
	"huntcore/internal/search"
	"huntcore/internal/service/observation"
	"huntcore/internal/util"
)

// Request carries one prediction request, already validated at the API
// boundary.
type Request struct {
	Point    model.GeoPoint
	Hour     int
	Season   scoring.Season
	Pressure scoring.Pressure

	RadiusM    float64
	GridSize   int
	SiteTypes  []model.SiteType
	MaxPerType int
}

func (r *Request) applyDefaults() {
	if r.RadiusM <= 0 {
		r.RadiusM = config.DefaultSearchRadiusM
	}
	if r.GridSize <= 0 {
		r.GridSize = config.DefaultGridSize
	}
	if len(r.SiteTypes) == 0 {
		r.SiteTypes = []model.SiteType{model.SiteBedding, model.SiteFeeding, model.SiteStand}
	}
	if r.MaxPerType <= 0 {
		r.MaxPerType = 3
	}
}

// PredictionService runs the full pipeline: sample the neighborhood, score
// the primary point, search tiers for alternatives, derive placement
// geometry, aggregate zones, and write an audit row.
type PredictionService struct {
	sampler      *grid.Sampler
	base         scoring.Config
	placementCfg placement.Config
	observations *observation.ObservationService

	initialized bool
	initMutex   sync.RWMutex
}

var (
	predictionServiceInstance *PredictionService
	predictionServiceOnce     sync.Once
)

// GetPredictionService returns the singleton instance of the PredictionService.
func GetPredictionService() *PredictionService {
	predictionServiceOnce.Do(func() {
		predictionServiceInstance = &PredictionService{
			base:         scoring.DefaultConfig(),
			placementCfg: placement.DefaultConfig(),
		}
	})
	return predictionServiceInstance
}

// InitService wires the sampler and the observation service.
func (s *PredictionService) InitService(sampler *grid.Sampler, obs *observation.ObservationService) error {
	s.initMutex.Lock()
	defer s.initMutex.Unlock()

	if s.initialized {
		return nil
	}
	if sampler == nil {
		return fmt.Errorf("prediction service needs a grid sampler")
	}
	if err := s.base.Validate(); err != nil {
		return fmt.Errorf("invalid scoring config: %w", err)
	}

	s.sampler = sampler
	s.observations = obs
	s.initialized = true
	log.Printf("PredictionService initialized with scoring config %s", s.base.Version)
	return nil
}

// Predict runs one request through the pipeline and returns the complete
// zone set. A request with no viable sites returns an empty list with
// structured reasons, not an error.
func (s *PredictionService) Predict(ctx context.Context, req Request) (*model.PredictionResult, error) {
	req.applyDefaults()
	if !req.Point.Valid() {
		return nil, fmt.Errorf("invalid coordinates (%f, %f)", req.Point.Lat, req.Point.Lon)
	}
	if req.Hour < 0 || req.Hour > 23 {
		return nil, fmt.Errorf("time of day %d out of range", req.Hour)
	}

	startTime := time.Now()

	cfg := s.base.ForConditions(req.Season, req.Pressure)
	cfg.Phase = model.PhaseForHour(req.Hour)

	g, err := s.sampler.SampleGrid(ctx, req.Point, req.RadiusM, req.GridSize, req.Hour)
	if err != nil {
		return nil, fmt.Errorf("grid sampling failed: %w", err)
	}

	candidates := make(map[model.SiteType][]model.SiteCandidate)
	requested := make(map[model.SiteType]int)
	rejections := make(map[string]string)

	for _, siteType := range req.SiteTypes {
		requested[siteType] = req.MaxPerType

		found, reason := s.findSites(g, siteType, cfg, req.MaxPerType)
		if len(found) == 0 {
			rejections[siteType.String()] = reason
			continue
		}
		candidates[siteType] = found
	}

	s.deriveAnchoredSites(g, cfg, req, candidates, requested, rejections)

	nearbyObs := 0
	if s.observations != nil {
		nearbyObs = s.observations.CountNear(req.Point, req.RadiusM)
	}

	zones, confidence := Aggregate(AggregateInput{
		Candidates:         candidates,
		Requested:          requested,
		UsedFallbackData:   g.Fallback,
		NearbyObservations: nearbyObs,
	})

	result := &model.PredictionResult{
		Zones:              zones,
		Confidence:         confidence,
		UsedFallbackData:   g.Fallback,
		RejectionReasons:   rejections,
		NearbyObservations: nearbyObs,
	}

	s.writeAuditLog(req, result)

	log.Printf("Prediction for (%.5f, %.5f): %d zones, confidence %.2f, fallback=%v, took %v",
		req.Point.Lat, req.Point.Lon, len(zones), confidence, g.Fallback, time.Since(startTime))

	return result, nil
}

// findSites scores the primary point first, then fills the remaining slots
// from the tiered neighborhood search.
func (s *PredictionService) findSites(g *model.FeatureGrid, siteType model.SiteType, cfg scoring.Config, maxResults int) ([]model.SiteCandidate, string) {
	centerPt, centerRec := g.CenterCell()

	var found []model.SiteCandidate
	res := scoring.Score(centerRec, siteType, cfg)
	if res.Passed {
		found = append(found, model.SiteCandidate{
			Point:          centerPt,
			SiteType:       siteType,
			Score:          res.Score,
			Breakdown:      res.Breakdown,
			PassedRequired: true,
			SourceTier:     0,
			Feature:        centerRec,
		})
	}

	remaining := maxResults - len(found)
	if remaining > 0 {
		alternatives, err := search.ScanGrid(g, siteType, cfg, scoring.DefaultTiers(siteType), maxResults)
		if err != nil {
			if len(found) == 0 {
				return nil, err.Error()
			}
		}
		for _, alt := range alternatives {
			if len(found) >= maxResults {
				break
			}
			if len(found) > 0 && samePoint(alt.Point, found[0].Point) {
				continue
			}
			found = append(found, alt)
		}
	}

	if len(found) == 0 {
		return nil, summarizeFailures(res)
	}
	return found, ""
}

// deriveAnchoredSites replaces searched stand and camera candidates with
// placement-derived geometry anchored on the best bedding zone, keeping each
// site on the correct side of bedding for the hunt phase. Without a bedding
// anchor the searched candidates stand as-is.
func (s *PredictionService) deriveAnchoredSites(g *model.FeatureGrid, cfg scoring.Config, req Request, candidates map[model.SiteType][]model.SiteCandidate, requested map[model.SiteType]int, rejections map[string]string) {
	_, wantStands := requested[model.SiteStand]
	_, wantCameras := requested[model.SiteCamera]
	if !wantStands && !wantCameras {
		return
	}
	bedding := candidates[model.SiteBedding]
	if len(bedding) == 0 {
		return
	}
	anchor := bedding[0]

	placed, err := placement.PlaceRelatedSites(anchor.Point, anchor.Feature, req.Hour, s.placementCfg)
	if err != nil {
		// Geometry inconsistency is a programming error; surface it loudly
		// and keep the searched candidates.
		log.Printf("ERROR: placement geometry check failed: %v", err)
		rejections["placement"] = err.Error()
		return
	}

	if wantStands {
		mergeDerived(g, cfg, req, candidates, rejections, model.SiteStand, placed.Stands)
	}
	if wantCameras {
		mergeDerived(g, cfg, req, candidates, rejections, model.SiteCamera, placed.Cameras)
	}
}

// mergeDerived scores placement-derived points against their nearest grid
// cell and puts them ahead of the searched candidates; searched candidates
// backfill the quota.
func mergeDerived(g *model.FeatureGrid, cfg scoring.Config, req Request, candidates map[model.SiteType][]model.SiteCandidate, rejections map[string]string, siteType model.SiteType, points []model.GeoPoint) {
	derived := make([]model.SiteCandidate, 0, len(points))
	for _, pt := range points {
		rec := nearestCell(g, pt)
		res := scoring.Score(rec, siteType, cfg)
		derived = append(derived, model.SiteCandidate{
			Point:          pt,
			SiteType:       siteType,
			Score:          res.Score,
			Breakdown:      res.Breakdown,
			PassedRequired: res.Passed,
			SourceTier:     0,
			Feature:        rec,
		})
	}
	sort.SliceStable(derived, func(i, j int) bool { return derived[i].Score > derived[j].Score })

	merged := derived
	for _, cand := range candidates[siteType] {
		if len(merged) >= req.MaxPerType {
			break
		}
		merged = append(merged, cand)
	}
	if len(merged) > req.MaxPerType {
		merged = merged[:req.MaxPerType]
	}
	candidates[siteType] = merged
	delete(rejections, siteType.String())
}

// nearestCell returns the feature record of the grid cell closest to a
// point. Grids are small enough that a full scan is cheaper than keeping a
// second spatial index per request.
func nearestCell(g *model.FeatureGrid, pt model.GeoPoint) model.FeatureRecord {
	bestDist := -1.0
	var best model.FeatureRecord
	g.ForEachCell(func(row, col int, cellPt model.GeoPoint, rec model.FeatureRecord) {
		d := util.HaversineDistance(pt.Lat, pt.Lon, cellPt.Lat, cellPt.Lon)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = rec
		}
	})
	return best
}

func samePoint(a, b model.GeoPoint) bool {
	return util.HaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon) < 1
}

func summarizeFailures(res model.ScoreResult) string {
	if len(res.FailedCriteria) == 0 {
		return fmt.Sprintf("overall score %.1f below minimum", res.Score)
	}
	parts := make([]string, 0, len(res.FailedCriteria))
	for _, f := range res.FailedCriteria {
		parts = append(parts, fmt.Sprintf("%s=%.2f (needs %.2f)", f.Criterion, f.Value, f.Threshold))
	}
	return strings.Join(parts, "; ")
}

// writeAuditLog persists the prediction_logs row. Best-effort: a failure is
// logged and never fails the request.
func (s *PredictionService) writeAuditLog(req Request, result *model.PredictionResult) {
	db := pg.GetDB()
	if db == nil {
		return
	}

	id, err := util.GenerateUniqueID(12)
	if err != nil {
		log.Printf("Failed to generate audit log id: %v", err)
		return
	}

	summary := make([]string, 0, len(result.RejectionReasons))
	for siteType, reason := range result.RejectionReasons {
		summary = append(summary, siteType+": "+reason)
	}
	sort.Strings(summary)

	row := pg.PredictionLogPG{
		ID:                 id,
		Lat:                req.Point.Lat,
		Lon:                req.Point.Lon,
		TimeOfDay:          req.Hour,
		Season:             string(req.Season),
		HuntingPressure:    string(req.Pressure),
		RadiusM:            req.RadiusM,
		ZoneCount:          len(result.Zones),
		Confidence:         result.Confidence,
		UsedFallbackData:   result.UsedFallbackData,
		NearbyObservations: result.NearbyObservations,
		RejectionSummary:   strings.Join(summary, " | "),
	}
	if err := db.Create(&row).Error; err != nil {
		log.Printf("Failed to write prediction audit log: %v", err)
	}
}
