package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
)

// optionalQuery parses key with parse, returning nil when the parameter is
// absent so callers can tell "not filtered" from a zero value.
func optionalQuery[T any](r *http.Request, key, kind string, parse func(string) (T, error)) (*T, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "query parameter "+key+" must be "+kind).
			WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

// ParseQueryInt falls back to defaultVal when key is absent and rejects
// values outside [min, max].
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	value, err := optionalQuery(r, key, "numeric", strconv.Atoi)
	if err != nil || value == nil {
		return defaultVal, err
	}
	if *value < min || *value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").
			WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return *value, nil
}

func ParseQueryBool(r *http.Request, key string) (*bool, error) {
	return optionalQuery(r, key, "a boolean", strconv.ParseBool)
}

func ParseQueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	return optionalQuery(r, key, "a uuid", uuid.Parse)
}
