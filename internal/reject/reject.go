package reject

import (
	"errors"
	"fmt"
)

// Kind identifies one rejection reason
type Kind int

const (
	AddressNotFound Kind = iota + 1
	AddressBadFormat
	AddressIncomplete
	CountryNotSupported
	DepartmentNotFound
	DateNotFound
	DateBadFormat
	DateDifferentTimezone
	EventTooLong
	MissingField
	NotAnEvent
)

var kindNames = map[Kind]string{
	AddressNotFound:       "address_not_found",
	AddressBadFormat:      "address_bad_format",
	AddressIncomplete:     "address_incomplete",
	CountryNotSupported:   "country_not_supported",
	DepartmentNotFound:    "department_not_found",
	DateNotFound:          "date_not_found",
	DateBadFormat:         "date_bad_format",
	DateDifferentTimezone: "date_different_timezone",
	EventTooLong:          "event_too_long",
	MissingField:          "missing_field",
	NotAnEvent:            "not_an_event",
}

// String returns the snake_case name used in logs and metric labels
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error lets a Kind be used as an errors.Is target.
func (k Kind) Error() string {
	return k.String()
}

// Kinds returns every known kind in declaration order
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := AddressNotFound; k <= NotAnEvent; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Error is a rejected candidate. Input is the raw text that could not be
// used, Field names the missing or malformed component and Detail holds any
// extra context (the unsupported country code, for example).
type Error struct {
	Kind   Kind
	Input  string
	Field  string
	Detail string
}

// New creates a rejection for the given raw input
func New(kind Kind, input string) *Error {
	return &Error{Kind: kind, Input: input}
}

// NewField creates a rejection naming the offending field
func NewField(kind Kind, input, field string) *Error {
	return &Error{Kind: kind, Input: input, Field: field}
}

// WithDetail returns a copy of e with Detail set
func (e *Error) WithDetail(detail string) *Error {
	cp := *e
	cp.Detail = detail
	return &cp
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Field != "" {
		msg += fmt.Sprintf(" (%s)", e.Field)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Input != "" {
		msg += fmt.Sprintf(" [input %q]", e.Input)
	}
	return msg
}

// Is matches a bare Kind target
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the rejection kind wrapped in err, if any
func KindOf(err error) (Kind, bool) {
	var rej *Error
	if errors.As(err, &rej) {
		return rej.Kind, true
	}
	return 0, false
}

// IsRejection reports whether err belongs to the rejection family.
// Anything else (I/O, configuration) should abort the run instead.
func IsRejection(err error) bool {
	_, ok := KindOf(err)
	return ok
}
