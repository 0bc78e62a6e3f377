// Package openweather fetches current air pollution measurements from the
// OpenWeatherMap air_pollution endpoint.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mkraev/aqwatch/internal/models"
)

// Client issues authenticated requests against the air pollution endpoint.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewClient builds a Client with the given credential and request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// FetchCurrent retrieves the current air pollution payload for a coordinate pair.
func (c *Client) FetchCurrent(ctx context.Context, lat, lon float64) (models.AirPollutionResponse, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return models.AirPollutionResponse{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return models.AirPollutionResponse{}, fmt.Errorf("request air pollution endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.AirPollutionResponse{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload models.AirPollutionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.AirPollutionResponse{}, fmt.Errorf("decode payload: %w", err)
	}

	return payload, nil
}
