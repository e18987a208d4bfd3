package reject

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Is(t *testing.T) {
	err := NewField(AddressBadFormat, "Somewhere", "road")

	if !errors.Is(err, AddressBadFormat) {
		t.Error("expected errors.Is to match AddressBadFormat")
	}
	if errors.Is(err, AddressIncomplete) {
		t.Error("expected errors.Is not to match AddressIncomplete")
	}

	wrapped := fmt.Errorf("processing candidate: %w", err)
	if !errors.Is(wrapped, AddressBadFormat) {
		t.Error("expected wrapped error to match AddressBadFormat")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantOK   bool
	}{
		{
			name:     "direct rejection",
			err:      New(DateNotFound, ""),
			wantKind: DateNotFound,
			wantOK:   true,
		},
		{
			name:     "wrapped rejection",
			err:      fmt.Errorf("page: %w", New(EventTooLong, "x")),
			wantKind: EventTooLong,
			wantOK:   true,
		},
		{
			name:   "plain error",
			err:    errors.New("connection refused"),
			wantOK: false,
		},
		{
			name:   "nil",
			err:    nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := KindOf(tt.err)
			if ok != tt.wantOK {
				t.Fatalf("KindOf() ok = %v, want %v", ok, tt.wantOK)
			}
			if kind != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v", kind, tt.wantKind)
			}
			if IsRejection(tt.err) != tt.wantOK {
				t.Errorf("IsRejection() = %v, want %v", !tt.wantOK, tt.wantOK)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := NewField(AddressIncomplete, "1 Rue X", "postcode")
	msg := err.Error()

	for _, want := range []string{"address_incomplete", "(postcode)", `"1 Rue X"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}

	detailed := New(CountryNotSupported, "Berlin").WithDetail("de")
	if !strings.Contains(detailed.Error(), ": de") {
		t.Errorf("Error() = %q, want detail", detailed.Error())
	}
	if err.Detail != "" {
		t.Error("WithDetail should not modify the receiver")
	}
}

func TestKinds(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != len(kindNames) {
		t.Fatalf("Kinds() returned %d kinds, want %d", len(kinds), len(kindNames))
	}
	for _, k := range kinds {
		if strings.HasPrefix(k.String(), "kind(") {
			t.Errorf("kind %d has no name", int(k))
		}
	}
	if Kind(99).String() != "kind(99)" {
		t.Errorf("unknown kind String() = %q", Kind(99).String())
	}
}
