// Package calendar renders workshop records as an iCalendar feed.
package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/fresque-scraper/internal/record"
)

const prodID = "-//Fresque Scraper//fresque-scraper//FR"

// WriteICS writes one VCALENDAR holding a VEVENT per record. Records whose
// start or end date cannot be parsed are skipped and counted in the result.
func WriteICS(w io.Writer, records []*record.Record, stamp time.Time) (int, error) {
	var ics strings.Builder
	skipped := 0

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:" + prodID + "\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	for _, rec := range records {
		if !writeEvent(&ics, rec, stamp) {
			skipped++
		}
	}

	ics.WriteString("END:VCALENDAR\r\n")

	if _, err := io.WriteString(w, ics.String()); err != nil {
		return skipped, fmt.Errorf("writing calendar: %w", err)
	}
	return skipped, nil
}

func writeEvent(ics *strings.Builder, rec *record.Record, stamp time.Time) bool {
	start, err := time.Parse(time.RFC3339, rec.StartDate)
	if err != nil {
		return false
	}
	end, err := time.Parse(time.RFC3339, rec.EndDate)
	if err != nil {
		return false
	}

	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s@fresque-scraper\r\n", rec.ID))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(stamp)))
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(start)))
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(end)))

	summary := fmt.Sprintf("%s - %s", record.WorkshopName(rec.WorkshopType), rec.Title)
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(summary)))

	description := rec.Description
	if rec.TicketsLink != "" {
		description = fmt.Sprintf("%s\n\nTickets: %s", description, rec.TicketsLink)
	}
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description)))

	if loc := eventLocation(rec); loc != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(loc)))
	}
	if rec.Latitude != "" && rec.Longitude != "" {
		ics.WriteString(fmt.Sprintf("GEO:%s;%s\r\n", rec.Latitude, rec.Longitude))
	}
	if rec.SourceLink != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", rec.SourceLink))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
	return true
}

// eventLocation joins the venue parts, or labels online sessions
func eventLocation(rec *record.Record) string {
	if rec.Online {
		return "En ligne"
	}
	parts := make([]string, 0, 4)
	for _, p := range []string{rec.LocationName, rec.Address, rec.ZipCode, rec.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
