package location

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	NominatimURL     = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "fresque-scraper/1.0 (github.com/pfrederiksen/fresque-scraper)"
	GeocoderTimeout  = 10 * time.Second

	// GeocoderInterval is the minimum spacing between two requests. The
	// public Nominatim usage policy allows one request per second.
	GeocoderInterval = time.Second
)

// Place is one raw geocoder hit. Address holds the detailed address
// components keyed the way Nominatim names them (road, postcode, city,
// ISO3166-2-lvl4, ...).
type Place struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Address     map[string]string `json:"address"`
}

// Geocoder turns free text into a place. A nil place with a nil error means
// the backend had no result for the query.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Place, error)
}

// Nominatim queries an OpenStreetMap Nominatim search endpoint
type Nominatim struct {
	client  *resty.Client
	baseURL string
	limiter *rate.Limiter
}

// NewNominatim creates a Nominatim client. Empty arguments fall back to the
// public instance, the default user agent, GeocoderTimeout and
// GeocoderInterval.
func NewNominatim(baseURL, userAgent string, timeout, interval time.Duration) *Nominatim {
	if baseURL == "" {
		baseURL = NominatimURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = GeocoderTimeout
	}
	if interval <= 0 {
		interval = GeocoderInterval
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	return &Nominatim{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Geocode returns the best match for query with address details
func (n *Nominatim) Geocode(ctx context.Context, query string) (*Place, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for geocoder slot: %w", err)
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":              query,
			"format":         "jsonv2",
			"addressdetails": "1",
			"limit":          "1",
		}).
		Get(n.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("querying geocoder: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode())
	}

	var places []Place
	if err := json.Unmarshal(resp.Body(), &places); err != nil {
		return nil, fmt.Errorf("parsing geocoder response: %w", err)
	}

	if len(places) == 0 {
		return nil, nil
	}
	return &places[0], nil
}
