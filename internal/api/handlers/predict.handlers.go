package routes

import (
	"fmt"
	"log"
	"net/http"

	"huntcore/internal/model"
	"huntcore/internal/scoring"
	"huntcore/internal/service/prediction"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// PredictRequest is the JSON body of POST /api/predict.
type PredictRequest struct {
	Lat       float64  `json:"lat" binding:"required"`
	Lon       float64  `json:"lon" binding:"required"`
	TimeOfDay int      `json:"time_of_day"`
	Season    string   `json:"season"`
	Pressure  string   `json:"pressure"`
	RadiusM   float64  `json:"radius_m"`
	GridSize  int      `json:"grid_size"`
	MaxSites  int      `json:"max_per_type"`
	SiteTypes []string `json:"site_types"`
}

// SetupPredictHandlers registers the prediction endpoints
func SetupPredictHandlers(router *gin.RouterGroup) {
	router.POST("/predict", Predict)
}

// Predict handles POST /api/predict. Malformed input is rejected here,
// before any scoring work begins.
func Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("coordinates (%f, %f) out of range", req.Lat, req.Lon)})
		return
	}
	if req.TimeOfDay < 0 || req.TimeOfDay > 23 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("time_of_day %d out of range 0-23", req.TimeOfDay)})
		return
	}
	if req.RadiusM < 0 || req.RadiusM > 5000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "radius_m must be between 0 and 5000"})
		return
	}
	if req.GridSize < 0 || req.GridSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "grid_size must be between 0 and 100"})
		return
	}

	season, err := parseSeason(req.Season)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pressure, err := parsePressure(req.Pressure)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	siteTypes, err := parseSiteTypes(req.SiteTypes)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := prediction.GetPredictionService().Predict(c.Request.Context(), prediction.Request{
		Point:      model.GeoPoint{Lat: req.Lat, Lon: req.Lon},
		Hour:       req.TimeOfDay,
		Season:     season,
		Pressure:   pressure,
		RadiusM:    req.RadiusM,
		GridSize:   req.GridSize,
		SiteTypes:  siteTypes,
		MaxPerType: req.MaxSites,
	})
	if err != nil {
		log.Printf("Prediction failed for (%f, %f): %v", req.Lat, req.Lon, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"zones":               zonesToGeoJSON(result.Zones),
		"confidence":          result.Confidence,
		"used_fallback_data":  result.UsedFallbackData,
		"rejection_reasons":   result.RejectionReasons,
		"nearby_observations": result.NearbyObservations,
	})
}

// zonesToGeoJSON encodes the zone set as a GeoJSON FeatureCollection with
// the full properties bag, including the criteria breakdown needed to
// reconstruct why each zone passed.
func zonesToGeoJSON(zones []model.Zone) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		f := geojson.NewFeature(orb.Point{z.Candidate.Point.Lon, z.Candidate.Point.Lat})
		f.ID = z.ID
		f.Properties = geojson.Properties{
			"type":               z.Type.String(),
			"subtype":            string(z.Subtype),
			"score":              z.Candidate.Score,
			"confidence":         z.Confidence,
			"criteria_breakdown": z.Candidate.Breakdown,
			"canopy_coverage":    z.Candidate.Feature.CanopyPct,
			"aspect":             z.Candidate.Feature.AspectDeg,
			"slope":              z.Candidate.Feature.SlopeDeg,
			"source_tier":        z.Candidate.SourceTier,
		}
		if z.Candidate.RejectionReason != "" {
			f.Properties["rejection_reason"] = z.Candidate.RejectionReason
		}
		fc.Append(f)
	}
	return fc
}

func parseSeason(s string) (scoring.Season, error) {
	switch s {
	case "", "early":
		return scoring.SeasonEarly, nil
	case "rut":
		return scoring.SeasonRut, nil
	case "late":
		return scoring.SeasonLate, nil
	}
	return "", fmt.Errorf("unknown season %q", s)
}

func parsePressure(s string) (scoring.Pressure, error) {
	switch s {
	case "", "low":
		return scoring.PressureLow, nil
	case "medium":
		return scoring.PressureMedium, nil
	case "high":
		return scoring.PressureHigh, nil
	}
	return "", fmt.Errorf("unknown pressure %q", s)
}

func parseSiteTypes(names []string) ([]model.SiteType, error) {
	out := make([]model.SiteType, 0, len(names))
	for _, name := range names {
		switch name {
		case "bedding":
			out = append(out, model.SiteBedding)
		case "feeding":
			out = append(out, model.SiteFeeding)
		case "stand":
			out = append(out, model.SiteStand)
		case "camera":
			out = append(out, model.SiteCamera)
		default:
			return nil, fmt.Errorf("unknown site type %q", name)
		}
	}
	return out, nil
}
