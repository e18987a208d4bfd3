// Package record assembles the canonical output record of a scraping run.
package record

import (
	"errors"
	"strings"
	"time"

	"github.com/pfrederiksen/fresque-scraper/internal/event"
	"github.com/pfrederiksen/fresque-scraper/internal/location"
)

// isoLayout renders offsets as +01:00 even for UTC, never "Z"
const isoLayout = "2006-01-02T15:04:05-07:00"

// DefaultLanguage is used when a source page declares no language
const DefaultLanguage = "fr"

// ErrMissingAddress is returned when an in-person candidate reaches the
// builder without a resolved address.
var ErrMissingAddress = errors.New("record: in-person event without resolved address")

// Record is one normalized workshop session. Records are built once and
// never modified afterwards.
type Record struct {
	ID           string  `json:"id"`
	WorkshopType int     `json:"workshop_type"`
	Title        string  `json:"title"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	FullLocation string  `json:"full_location"`
	LocationName string  `json:"location_name"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	Department   *string `json:"department"`
	ZipCode      string  `json:"zip_code"`
	CountryCode  string  `json:"country_code"`
	Latitude     string  `json:"latitude"`
	Longitude    string  `json:"longitude"`
	LanguageCode string  `json:"language_code"`
	Online       bool    `json:"online"`
	Training     bool    `json:"training"`
	SoldOut      bool    `json:"sold_out"`
	Kids         bool    `json:"kids"`
	SourceLink   string  `json:"source_link"`
	TicketsLink  string  `json:"tickets_link"`
	Description  string  `json:"description"`
	ScrapeDate   string  `json:"scrape_date"`
}

// Builder stamps records with the configured origin timezone
type Builder struct {
	loc *time.Location
	now func() time.Time
}

// NewBuilder creates a builder for the given origin timezone
func NewBuilder(loc *time.Location) *Builder {
	return &Builder{loc: loc, now: time.Now}
}

// Location returns the builder's origin timezone
func (b *Builder) Location() *time.Location {
	return b.loc
}

// Build assembles the record for c. addr must be nil for online candidates
// and non-nil otherwise; callers enforce this before building.
func (b *Builder) Build(c event.Candidate, span event.Span, addr *location.Address) (*Record, error) {
	if !c.Online && addr == nil {
		return nil, ErrMissingAddress
	}

	rec := &Record{
		ID:           c.RecordID(),
		WorkshopType: c.WorkshopType,
		Title:        strings.TrimSpace(c.Title),
		StartDate:    b.stamp(span.Start),
		EndDate:      b.stamp(span.End),
		LanguageCode: languageOrDefault(c.LanguageCode),
		Online:       c.Online,
		Training:     event.IsTraining(c.Title),
		SoldOut:      c.SoldOut,
		Kids:         event.IsForKids(c.Title),
		SourceLink:   c.Link,
		TicketsLink:  c.TicketsLink,
		Description:  strings.TrimSpace(c.Description),
		ScrapeDate:   b.now().In(b.loc).Format(isoLayout),
	}

	if !c.Online {
		department := addr.Department
		rec.FullLocation = c.LocationText
		rec.LocationName = strings.TrimSpace(addr.LocationName)
		rec.Address = strings.TrimSpace(addr.Address)
		rec.City = strings.TrimSpace(addr.City)
		rec.Department = &department
		rec.ZipCode = addr.ZipCode
		rec.CountryCode = addr.CountryCode
		rec.Latitude = addr.Latitude
		rec.Longitude = addr.Longitude
	}

	return rec, nil
}

// stamp reinterprets a wall-clock time in the origin timezone
func (b *Builder) stamp(t time.Time) string {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, b.loc).Format(isoLayout)
}

func languageOrDefault(code string) string {
	if code = strings.TrimSpace(code); code != "" {
		return code
	}
	return DefaultLanguage
}
