// Package httpclient implements geocode.Client against a generic place
// index HTTP endpoint (e.g. an AWS Location Service place index, addressed
// by region + index name per spec §4.6).
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"healthroute/internal/geocode"
)

// Client calls an external place-index geocoder over HTTP.
type Client struct {
	baseURL string
	region  string
	index   string
	apiKey  string
	client  *http.Client
}

// New builds a Client. baseURL, region, and index identify the place
// index to query; apiKey authenticates the request.
func New(httpClient *http.Client, baseURL, region, index, apiKey string) *Client {
	return &Client{baseURL: baseURL, region: region, index: index, apiKey: apiKey, client: httpClient}
}

type searchResponse struct {
	Results []struct {
		Place struct {
			Geometry struct {
				Point []float64 `json:"Point"` // [lng, lat]
			} `json:"Geometry"`
		} `json:"Place"`
		Relevance float64 `json:"Relevance"`
	} `json:"Results"`
}

// Geocode implements geocode.Client.
func (c *Client) Geocode(ctx context.Context, query string) ([]geocode.Result, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid geocoder base URL: %w", err)
	}
	q := u.Query()
	q.Set("region", c.region)
	q.Set("index", c.index)
	q.Set("text", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call geocoder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	results := make([]geocode.Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if len(r.Place.Geometry.Point) != 2 {
			continue
		}
		results = append(results, geocode.Result{
			Longitude: r.Place.Geometry.Point[0],
			Latitude:  r.Place.Geometry.Point[1],
			Relevance: r.Relevance,
		})
	}
	return results, nil
}
