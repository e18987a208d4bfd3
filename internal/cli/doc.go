// Package cli implements the command-line interface for fresque-scraper.
//
// The cli package provides the Cobra-based CLI: scrape runs every configured
// source through the normalization pipeline and writes the run output,
// geocode resolves a single venue string the way scrape would, and
// workshops prints the workshop catalog. It coordinates the config,
// scraper, pipeline, storage and metrics packages.
package cli
