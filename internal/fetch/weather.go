package fetch

import (
	"context"
	"fmt"
	"net/http"

	"huntcore/internal/model"
)

// HTTPWeatherSource fetches current wind and temperature from the weather
// service.
type HTTPWeatherSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPWeatherSource(baseURL string) *HTTPWeatherSource {
	return &HTTPWeatherSource{BaseURL: baseURL}
}

// Fetch returns current conditions at pt.
func (s *HTTPWeatherSource) Fetch(ctx context.Context, pt model.GeoPoint) Result[WeatherSample] {
	if s.BaseURL == "" {
		return Err[WeatherSample]("weather service not configured")
	}

	var sample WeatherSample
	url := fmt.Sprintf("%s/v1/weather/current?lat=%f&lon=%f", s.BaseURL, pt.Lat, pt.Lon)
	if err := doJSON(ctx, s.Client, http.MethodGet, url, nil, &sample); err != nil {
		return Err[WeatherSample]("weather service unavailable: " + err.Error())
	}
	return Ok(sample)
}
