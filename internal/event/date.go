package event

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pfrederiksen/fresque-scraper/internal/reject"
)

// Span is an event's start and end as wall-clock times. The location of
// both values is UTC but carries no meaning: the origin timezone is stamped
// on when the record is built.
type Span struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start
func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

var errDayOutOfRange = errors.New("day out of range for month")

// French month abbreviations as rendered by the FEC site
var frenchMonths = map[string]time.Month{
	"janv.": time.January,
	"févr.": time.February,
	"mars":  time.March,
	"avr.":  time.April,
	"mai":   time.May,
	"juin":  time.June,
	"juil.": time.July,
	"août":  time.August,
	"sept.": time.September,
	"oct.":  time.October,
	"nov.":  time.November,
	"déc.":  time.December,
}

// Offsets accepted after "UTC": Paris standard and daylight time
var acceptedOffsets = map[string]bool{
	"+1": true,
	"+2": true,
}

// ParseDates dispatches to the extractor of the candidate's site family.
// now supplies the year when the text omits it.
func ParseDates(family Family, text string, now time.Time) (Span, error) {
	switch family {
	case FamilyBilletweb:
		return ParseBilletwebDates(text)
	default:
		return ParseFECDates(text, now)
	}
}

// ParseFECDates parses "<day> <month>[ <year>], <start> – <end>[ UTC<offset>]",
// where the year may also stand in its own comma-separated segment,
// for example "12 mars, 09:00 – 12:00 UTC+1". An empty text means the page
// had no date element.
func ParseFECDates(text string, now time.Time) (Span, error) {
	if strings.TrimSpace(text) == "" {
		return Span{}, reject.New(reject.DateNotFound, text)
	}

	// "<day> <month>, <times>" or "<day> <month>, <year>, <times>"
	segments := strings.Split(text, ",")
	var tokens []string
	var clock string
	switch len(segments) {
	case 2:
		tokens, clock = strings.Fields(segments[0]), segments[1]
	case 3:
		tokens = append(strings.Fields(segments[0]), strings.Fields(segments[1])...)
		clock = segments[2]
	default:
		return Span{}, reject.New(reject.DateBadFormat, text)
	}

	var dayStr, monthStr string
	year := now.Year()
	switch len(tokens) {
	case 2:
		dayStr, monthStr = tokens[0], tokens[1]
	case 3:
		dayStr, monthStr = tokens[0], tokens[1]
		y, err := strconv.Atoi(tokens[2])
		if err != nil {
			return Span{}, reject.New(reject.DateBadFormat, text)
		}
		year = y
	default:
		return Span{}, reject.New(reject.DateBadFormat, text)
	}

	times, offset, hasOffset := strings.Cut(clock, " UTC")
	if hasOffset && !acceptedOffsets[strings.TrimSpace(offset)] {
		return Span{}, reject.New(reject.DateDifferentTimezone, text)
	}

	startStr, endStr, found := strings.Cut(times, "–")
	if !found {
		return Span{}, reject.New(reject.DateBadFormat, text)
	}

	month, ok := frenchMonths[strings.ToLower(monthStr)]
	if !ok {
		return Span{}, reject.New(reject.DateBadFormat, text)
	}
	dayNum, err := strconv.Atoi(dayStr)
	if err != nil {
		return Span{}, reject.New(reject.DateBadFormat, text)
	}

	start, err := wallClock(year, month, dayNum, startStr)
	if err != nil {
		return Span{}, reject.New(reject.DateBadFormat, text)
	}
	end, err := wallClock(year, month, dayNum, endStr)
	if err != nil {
		return Span{}, reject.New(reject.DateBadFormat, text)
	}

	return spanning(start, end), nil
}

// spanning builds a span from same-day clock times. An end earlier than the
// start belongs to the next day (22:00 – 01:00).
func spanning(start, end time.Time) Span {
	if end.Before(start) {
		end = end.AddDate(0, 0, 1)
	}
	return Span{Start: start, End: end}
}

// wallClock builds a time from a date and an "HH:MM" clock, rejecting
// values time.Date would silently normalize (31 avr., 25:00).
func wallClock(year int, month time.Month, day int, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, err
	}
	out := time.Date(year, month, day, t.Hour(), t.Minute(), 0, 0, time.UTC)
	if out.Day() != day || out.Month() != month {
		return time.Time{}, errDayOutOfRange
	}
	return out, nil
}

// ParseBilletwebDates parses "<date> from <start> to <end>" or
// "<date> at <time>" (a session with no end time starts and ends at once).
// The date part is free-form and handed to dateparse together with each
// clock time.
func ParseBilletwebDates(text string) (Span, error) {
	if strings.TrimSpace(text) == "" {
		return Span{}, reject.New(reject.DateNotFound, text)
	}

	var date, startStr, endStr string
	if i := indexFold(text, " from "); i >= 0 {
		date = text[:i]
		rest := text[i+len(" from "):]
		j := indexFold(rest, " to ")
		if j < 0 {
			return Span{}, reject.New(reject.DateBadFormat, text)
		}
		startStr, endStr = rest[:j], rest[j+len(" to "):]
	} else if i := indexFold(text, " at "); i >= 0 {
		date = text[:i]
		startStr = text[i+len(" at "):]
		endStr = startStr
	} else {
		return Span{}, reject.New(reject.DateBadFormat, text)
	}

	start, err := parseFreeForm(date, startStr)
	if err != nil {
		return Span{}, reject.New(reject.DateBadFormat, text)
	}
	end, err := parseFreeForm(date, endStr)
	if err != nil {
		return Span{}, reject.New(reject.DateBadFormat, text)
	}

	return spanning(start, end), nil
}

func parseFreeForm(date, clock string) (time.Time, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(date)+", "+strings.TrimSpace(clock), time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}

// indexFold is a case-insensitive strings.Index for ASCII separators
func indexFold(s, sep string) int {
	for i := 0; i+len(sep) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(sep)], sep) {
			return i
		}
	}
	return -1
}
