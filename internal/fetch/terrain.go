package fetch

import (
	"context"
	"net/http"

	"huntcore/internal/model"
)

// HTTPTerrainSource fetches elevation, slope and aspect from the terrain
// service's batch endpoint.
type HTTPTerrainSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPTerrainSource(baseURL string) *HTTPTerrainSource {
	return &HTTPTerrainSource{BaseURL: baseURL}
}

type terrainBatchRequest struct {
	Points []model.GeoPoint `json:"points"`
}

type terrainBatchResponse struct {
	Results []TerrainSample `json:"results"`
}

// FetchBatch returns one result per input point, in input order.
func (s *HTTPTerrainSource) FetchBatch(ctx context.Context, pts []model.GeoPoint) []Result[TerrainSample] {
	if s.BaseURL == "" {
		return errBatch[TerrainSample](len(pts), "terrain service not configured")
	}

	var resp terrainBatchResponse
	err := doJSON(ctx, s.Client, http.MethodPost, s.BaseURL+"/v1/terrain/batch",
		terrainBatchRequest{Points: pts}, &resp)
	if err != nil {
		return errBatch[TerrainSample](len(pts), "terrain service unavailable: "+err.Error())
	}
	if len(resp.Results) != len(pts) {
		return errBatch[TerrainSample](len(pts), "terrain service returned short batch")
	}

	out := make([]Result[TerrainSample], len(pts))
	for i, sample := range resp.Results {
		out[i] = Ok(sample)
	}
	return out
}
