// Package scraper fetches workshop listing pages and turns each linked
// event page into an event.Candidate.
//
// Two site families are supported. FEC is the Wix community site of La
// Fresque de l'Économie Circulaire, where event cards carry data-hook
// attributes. Billetweb listings are embedded in an iframe whose event
// links point at billetweb.fr ticket pages. Pages are fetched statically,
// so listings that paginate through a "load more" button only yield their
// first page of events.
package scraper
