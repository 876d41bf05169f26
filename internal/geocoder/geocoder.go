// Package geocoder is a thin client for a forward-geocoding HTTP API
// (MapQuest-compatible response shape). It resolves bootcamp
// addresses and radius-search zipcodes to coordinates.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://www.mapquestapi.com/geocoding/v1/address"

// Location is a geocoded point.
type Location struct {
	Lat float64
	Lng float64
}

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New builds a client. An empty baseURL selects the default provider;
// an empty key disables geocoding (Geocode returns ErrDisabled).
func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = fmt.Errorf("geocoder: no api key configured")

type response struct {
	Results []struct {
		Locations []struct {
			LatLng struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

// Geocode resolves a free-form address or zipcode to coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (Location, error) {
	if c.APIKey == "" {
		return Location{}, ErrDisabled
	}

	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("location", address)
	q.Set("maxResults", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Location{}, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geocoder: unexpected status %d", resp.StatusCode)
	}
	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, err
	}
	if len(body.Results) == 0 || len(body.Results[0].Locations) == 0 {
		return Location{}, fmt.Errorf("geocoder: no match for %q", address)
	}
	ll := body.Results[0].Locations[0].LatLng
	return Location{Lat: ll.Lat, Lng: ll.Lng}, nil
}
