package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// RunID identifies one smoke run. Resources created by a run embed it so
// concurrent runs against the same service never collide.
type RunID struct {
	value string
}

// NewRunID creates a random RunID.
func NewRunID() RunID {
	return RunID{value: uuid.NewString()}
}

// ParseRunID validates raw as a UUID and wraps it in canonical form, so
// braced, URN and unhyphenated inputs name the same run as the hyphenated one.
func ParseRunID(raw string) (RunID, error) {
	if raw == "" {
		return RunID{}, ErrInvalidInput
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return RunID{}, ErrInvalidInput
	}
	return RunID{value: u.String()}, nil
}

func (id RunID) String() string { return id.value }
func (id RunID) IsZero() bool   { return id.value == "" }

// Short returns the first UUID group, compact enough for resource names
// and dictionary version strings.
func (id RunID) Short() string {
	short, _, _ := strings.Cut(id.value, "-")
	return short
}

// Numeric returns the first UUID group as a number, for identifiers the
// service requires to be numeric such as the patch part of a version.
// The zero RunID has no number.
func (id RunID) Numeric() (uint32, error) {
	short := id.Short()
	if len(short) != 8 {
		return 0, fmt.Errorf("%w: run id %q", ErrInvalidInput, id.value)
	}
	n, err := strconv.ParseUint(short, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: run id %q: %w", ErrInvalidInput, id.value, err)
	}
	return uint32(n), nil
}
