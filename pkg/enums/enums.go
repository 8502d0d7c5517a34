// Package enums holds the persisted string enumerations. Values are stored
// verbatim in the database and exchanged verbatim over the API.
package enums

import (
	"fmt"
	"slices"
)

func parseKnown[T ~string](kind, value string, known []T) (T, error) {
	if candidate := T(value); slices.Contains(known, candidate) {
		return candidate, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, value)
}
