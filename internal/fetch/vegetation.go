package fetch

import (
	"context"
	"net/http"

	"huntcore/internal/model"
)

// HTTPVegetationSource fetches canopy, NDVI and conifer fraction from the
// vegetation/imagery service's batch endpoint.
type HTTPVegetationSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPVegetationSource(baseURL string) *HTTPVegetationSource {
	return &HTTPVegetationSource{BaseURL: baseURL}
}

type vegetationBatchRequest struct {
	Points []model.GeoPoint `json:"points"`
}

type vegetationBatchResponse struct {
	Results []VegetationSample `json:"results"`
}

// FetchBatch returns one result per input point, in input order.
func (s *HTTPVegetationSource) FetchBatch(ctx context.Context, pts []model.GeoPoint) []Result[VegetationSample] {
	if s.BaseURL == "" {
		return errBatch[VegetationSample](len(pts), "vegetation service not configured")
	}

	var resp vegetationBatchResponse
	err := doJSON(ctx, s.Client, http.MethodPost, s.BaseURL+"/v1/vegetation/batch",
		vegetationBatchRequest{Points: pts}, &resp)
	if err != nil {
		return errBatch[VegetationSample](len(pts), "vegetation service unavailable: "+err.Error())
	}
	if len(resp.Results) != len(pts) {
		return errBatch[VegetationSample](len(pts), "vegetation service returned short batch")
	}

	out := make([]Result[VegetationSample], len(pts))
	for i, sample := range resp.Results {
		out[i] = Ok(sample)
	}
	return out
}
