package cli

import (
	"sort"
	"time"

	"github.com/pfrederiksen/fresque-scraper/internal/record"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone       SortOrder = ""
	SortByDate     SortOrder = "date"
	SortByWorkshop SortOrder = "workshop"
	SortByID       SortOrder = "id"
)

// Valid reports whether o is a known sort order
func (o SortOrder) Valid() bool {
	switch o {
	case SortNone, SortByDate, SortByWorkshop, SortByID:
		return true
	}
	return false
}

// sortRecords sorts records in place. The sort is stable, so SortNone and
// ties keep scrape order.
func sortRecords(records []*record.Record, order SortOrder) {
	switch order {
	case SortByDate:
		sort.SliceStable(records, func(i, j int) bool {
			return startsBefore(records[i], records[j])
		})
	case SortByWorkshop:
		sort.SliceStable(records, func(i, j int) bool {
			if records[i].WorkshopType != records[j].WorkshopType {
				return records[i].WorkshopType < records[j].WorkshopType
			}
			// If workshops are equal, sort by date
			return startsBefore(records[i], records[j])
		})
	case SortByID:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].ID < records[j].ID
		})
	}
}

// startsBefore compares start instants, so records stamped with different
// offsets still order chronologically.
func startsBefore(a, b *record.Record) bool {
	ta, errA := time.Parse(time.RFC3339, a.StartDate)
	tb, errB := time.Parse(time.RFC3339, b.StartDate)
	if errA != nil || errB != nil {
		return a.StartDate < b.StartDate
	}
	return ta.Before(tb)
}
