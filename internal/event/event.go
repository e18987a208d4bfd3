package event

import "fmt"

// Family identifies a source-site layout
type Family string

const (
	// FamilyFEC is the Wix community site of La Fresque de l'Économie Circulaire
	FamilyFEC Family = "fec"
	// FamilyBilletweb covers workshops ticketed on billetweb.fr
	FamilyBilletweb Family = "billetweb"
)

// Valid reports whether f is a supported family
func (f Family) Valid() bool {
	return f == FamilyFEC || f == FamilyBilletweb
}

// Candidate is one event as scraped from a source page, before any
// normalization. LocationText is empty when Online is set.
type Candidate struct {
	Family       Family
	SourceID     int
	WorkshopType int
	PageID       string
	Title        string
	DateText     string
	LocationText string
	Online       bool
	SoldOut      bool
	Description  string
	LanguageCode string
	Link         string
	TicketsLink  string
}

// RecordID derives the stable record identifier: the source id followed
// by the page identifier. Reprocessing a page always yields the same ID.
func (c *Candidate) RecordID() string {
	return fmt.Sprintf("%d-%s", c.SourceID, c.PageID)
}
