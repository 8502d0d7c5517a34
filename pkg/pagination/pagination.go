// Package pagination implements keyset paging over (created_at, id) for the
// admin and storefront listings. Cursors are opaque to clients.
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
)

var ErrInvalidCursor = errors.New("invalid cursor")

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

const cursorSep = "|"

type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the sort key of the last row on a page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

func (c Cursor) String() string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + cursorSep + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// NormalizeLimit clamps limit into [1, MaxLimit], using DefaultLimit for zero
// or negative values.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// ParseCursor returns nil for a blank value.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	stamp, id, ok := strings.Cut(string(raw), cursorSep)
	if !ok {
		return nil, fmt.Errorf("%w: missing separator", ErrInvalidCursor)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp: %v", ErrInvalidCursor, err)
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %v", ErrInvalidCursor, err)
	}
	return &Cursor{CreatedAt: createdAt, ID: parsedID}, nil
}

// Find runs query newest first starting after params.Cursor. It fetches one
// extra row to learn whether a next page exists and returns that page's
// cursor, or "" on the last page.
func Find[T any](query *gorm.DB, params Params, cursorOf func(T) Cursor) ([]T, string, error) {
	cursor, err := ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	size := NormalizeLimit(params.Limit)

	var rows []T
	if err := query.Order("created_at DESC").Order("id DESC").Limit(size + 1).Find(&rows).Error; err != nil {
		return nil, "", err
	}
	if len(rows) <= size {
		return rows, "", nil
	}
	rows = rows[:size]
	return rows, cursorOf(rows[size-1]).String(), nil
}

// WrapListError maps a bad cursor to a validation error and anything else to
// an internal one.
func WrapListError(err error, message string) error {
	if errors.Is(err, ErrInvalidCursor) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, message)
}
