// Package storage writes the records of a scraping run to disk.
//
// Each run produces one JSON array in the output directory, named after the
// run start time (records_YYYYMMDD-HHMMSS.json). A run that emits nothing
// still writes an empty array. The default output location is
// ~/.local/share/fresque-scraper/.
package storage
