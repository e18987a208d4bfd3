package location

import (
	"context"
	"strings"

	"github.com/pfrederiksen/fresque-scraper/internal/logger"
	"github.com/pfrederiksen/fresque-scraper/internal/metrics"
	"github.com/pfrederiksen/fresque-scraper/internal/reject"
)

// Supported country codes
const (
	CountryFrance      = "fr"
	CountrySwitzerland = "ch"
)

// Address is a fully resolved location. It is only ever returned complete.
type Address struct {
	LocationName string `json:"location_name"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Department   string `json:"department"`
	ZipCode      string `json:"zip_code"`
	CountryCode  string `json:"country_code"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
}

// Resolver maps free-text venue strings to addresses. It owns its geocoder
// cache, so two resolvers never share answers.
type Resolver struct {
	geocoder Geocoder
	cache    *Cache
	metrics  *metrics.Metrics
}

// NewResolver creates a resolver backed by geocoder. m may be nil.
func NewResolver(geocoder Geocoder, m *metrics.Metrics) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		cache:    NewCache(),
		metrics:  m,
	}
}

// Cache returns the resolver's run cache
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Resolve geocodes fullLocation and validates the result. Failures are
// logged here and returned as *reject.Error.
func (r *Resolver) Resolve(ctx context.Context, fullLocation string) (*Address, error) {
	addr, err := r.resolve(ctx, fullLocation)
	if err != nil {
		kind, _ := reject.KindOf(err)
		logger.Error("Address resolution failed", logger.Fields{
			"location": fullLocation,
			"kind":     kind.String(),
		}, err)
		return nil, err
	}
	return addr, nil
}

func (r *Resolver) resolve(ctx context.Context, fullLocation string) (*Address, error) {
	if strings.TrimSpace(fullLocation) == "" {
		return nil, reject.New(reject.AddressNotFound, fullLocation)
	}

	place := r.lookup(ctx, fullLocation)
	if place == nil {
		return nil, reject.New(reject.AddressNotFound, fullLocation)
	}

	return fromPlace(place, fullLocation)
}

// lookup tries the full string, then the text after the first comma (drops a
// venue name prefix), then every line after the first.
func (r *Resolver) lookup(ctx context.Context, fullLocation string) *Place {
	if place := r.geocode(ctx, fullLocation); place != nil {
		return place
	}

	if _, rest, found := strings.Cut(fullLocation, ","); found {
		if place := r.geocode(ctx, strings.TrimSpace(rest)); place != nil {
			return place
		}
	}

	lines := splitLines(fullLocation)
	if len(lines) > 1 {
		return r.geocode(ctx, strings.TrimSpace(strings.Join(lines[1:], "")))
	}
	return nil
}

func (r *Resolver) geocode(ctx context.Context, query string) *Place {
	if query == "" {
		return nil
	}

	if place, ok := r.cache.Get(query); ok {
		r.metrics.GeocoderLookup(true)
		return place
	}

	logger.Info("Calling geocoder", logger.Fields{"query": query})
	r.metrics.GeocoderLookup(false)

	place, err := r.geocoder.Geocode(ctx, query)
	if err != nil {
		// Not cached: a transient backend failure should not poison the run.
		logger.Warn("Geocoder request failed", logger.Fields{"query": query, "error": err.Error()})
		return nil
	}

	r.cache.Set(query, place)
	return place
}

// splitLines splits s after each newline, keeping the terminators, and drops
// the empty tail left by a trailing newline.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func fromPlace(place *Place, fullLocation string) (*Address, error) {
	components := place.Address

	country := components["country_code"]
	if country != CountryFrance && country != CountrySwitzerland {
		return nil, reject.New(reject.CountryNotSupported, fullLocation).WithDetail(country)
	}

	road, ok := firstOf(components, "road", "square", "park")
	if !ok {
		return nil, reject.NewField(reject.AddressBadFormat, fullLocation, "road")
	}
	if number := components["house_number"]; number != "" {
		road = number + " " + road
	}

	city, ok := firstOf(components, "city", "town", "village")
	if !ok {
		return nil, reject.NewField(reject.AddressBadFormat, fullLocation, "city")
	}

	department, err := departmentOf(components, country, fullLocation)
	if err != nil {
		return nil, err
	}

	postcode, ok := components["postcode"]
	if !ok || postcode == "" {
		return nil, reject.NewField(reject.AddressIncomplete, fullLocation, "postcode")
	}

	return &Address{
		LocationName: place.Name,
		Address:      road,
		City:         city,
		Department:   department,
		ZipCode:      postcode,
		CountryCode:  country,
		Latitude:     place.Lat,
		Longitude:    place.Lon,
	}, nil
}

func departmentOf(components map[string]string, country, fullLocation string) (string, error) {
	if country == CountrySwitzerland {
		// Canton codes are the ISO 3166-2:CH subdivision without its prefix.
		iso := components["ISO3166-2-lvl4"]
		canton, found := strings.CutPrefix(iso, "CH-")
		if !found || canton == "" {
			return "", reject.NewField(reject.AddressBadFormat, fullLocation, "department")
		}
		return canton, nil
	}

	name, ok := firstOf(components, "state_district", "county", "city_district", "state")
	if !ok {
		return "", reject.NewField(reject.AddressBadFormat, fullLocation, "department")
	}
	code, ok := DepartmentCode(name)
	if !ok {
		return "", reject.New(reject.DepartmentNotFound, fullLocation).WithDetail(name)
	}
	return code, nil
}

func firstOf(components map[string]string, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := components[key]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}
