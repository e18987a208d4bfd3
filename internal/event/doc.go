// Package event defines the candidate events handed over by the site
// extractors and turns their free-text fields into typed values.
//
// A Candidate is everything scraped from one source page. Its date text is
// parsed by the extractor of its site family into a Span of wall-clock
// times with no zone attached; the configured origin timezone is applied
// later, when the record is built. The keyword helpers derive the boolean
// flags (training, kids, online, sold out) from titles and location text.
package event
