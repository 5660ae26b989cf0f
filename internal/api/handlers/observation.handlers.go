package routes

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"huntcore/internal/model"
	"huntcore/internal/service/observation"

	"github.com/gin-gonic/gin"
)

// ObservationRequest is the JSON body of POST /api/observations.
type ObservationRequest struct {
	Kind       string    `json:"kind" binding:"required"`
	Lat        float64   `json:"lat" binding:"required"`
	Lon        float64   `json:"lon" binding:"required"`
	Note       string    `json:"note"`
	ObservedAt time.Time `json:"observed_at"`
}

// SetupObservationHandlers registers the scouting observation endpoints
func SetupObservationHandlers(router *gin.RouterGroup) {
	obsGroup := router.Group("/observations")

	obsGroup.POST("", AddObservation)
	obsGroup.GET("/near", ObservationsNear)
	obsGroup.DELETE("/:id", DeleteObservation)
}

// AddObservation handles POST /api/observations
func AddObservation(c *gin.Context) {
	var req ObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	kind, err := parseObservationKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	observedAt := req.ObservedAt
	if observedAt.IsZero() {
		observedAt = time.Now()
	}

	obs, err := observation.GetObservationService().AddObservation(&model.Observation{
		Kind:       kind,
		Lat:        req.Lat,
		Lon:        req.Lon,
		Note:       req.Note,
		ObservedAt: observedAt,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, obs)
}

// ObservationsNear handles GET /api/observations/near?lat=..&lon=..&radius_m=..
func ObservationsNear(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon query parameters are required"})
		return
	}

	radiusM := 800.0
	if raw := c.Query("radius_m"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r <= 0 || r > 10000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radius_m must be a positive number up to 10000"})
			return
		}
		radiusM = r
	}

	pt := model.GeoPoint{Lat: lat, Lon: lon}
	if !pt.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("coordinates (%f, %f) out of range", lat, lon)})
		return
	}

	observations := observation.GetObservationService().GetObservationsNear(pt, radiusM)
	c.JSON(http.StatusOK, gin.H{
		"observations": observations,
		"count":        len(observations),
	})
}

// DeleteObservation handles DELETE /api/observations/:id
func DeleteObservation(c *gin.Context) {
	id := c.Param("id")
	if !observation.GetObservationService().DeleteObservation(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "observation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func parseObservationKind(s string) (model.ObservationKind, error) {
	switch s {
	case "sighting":
		return model.ObservationSighting, nil
	case "bed":
		return model.ObservationBed, nil
	case "rub":
		return model.ObservationRub, nil
	case "scrape":
		return model.ObservationScrape, nil
	case "trail":
		return model.ObservationTrail, nil
	case "trackset":
		return model.ObservationTrackset, nil
	}
	return 0, fmt.Errorf("unknown observation kind %q", s)
}
