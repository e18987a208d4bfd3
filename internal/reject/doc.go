// Package reject classifies the ways a candidate event fails to become a record.
//
// Every failure raised while extracting dates, resolving an address or reading
// a ticketing page is a *Error carrying a Kind plus the offending raw input and,
// where relevant, the field that was missing or malformed. Callers treat the
// whole family the same way (log, skip the candidate, continue with the next)
// and only look at the Kind to decide what to report:
//
//	if errors.Is(err, reject.DateDifferentTimezone) {
//	    ...
//	}
//	if reject.IsRejection(err) {
//	    continue
//	}
package reject
