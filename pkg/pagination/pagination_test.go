package pagination_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/detailshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/pagination"
)

func customerCursor(c models.Customer) pagination.Cursor {
	return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
}

func TestCursorRoundTrip(t *testing.T) {
	want := pagination.Cursor{CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 123, time.UTC), ID: uuid.New()}
	got, err := pagination.ParseCursor(want.String())
	require.NoError(t, err)
	require.True(t, got.CreatedAt.Equal(want.CreatedAt))
	require.Equal(t, want.ID, got.ID)

	blank, err := pagination.ParseCursor("  ")
	require.NoError(t, err)
	require.Nil(t, blank)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	for _, value := range []string{"not base64!", "bm9waXBl", "MjAyNnx4"} {
		_, err := pagination.ParseCursor(value)
		require.ErrorIs(t, err, pagination.ErrInvalidCursor, value)
	}
}

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, pagination.DefaultLimit, pagination.NormalizeLimit(0))
	require.Equal(t, pagination.DefaultLimit, pagination.NormalizeLimit(-3))
	require.Equal(t, pagination.MaxLimit, pagination.NormalizeLimit(500))
	require.Equal(t, 7, pagination.NormalizeLimit(7))
}

func TestFindWalksPagesNewestFirst(t *testing.T) {
	conn := dbtest.Open(t)
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	var created []uuid.UUID
	for i := 0; i < 5; i++ {
		c := &models.Customer{Name: "Cliente", Phone: "1199999000" + string(rune('0'+i)), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, conn.Create(c).Error)
		created = append(created, c.ID)
	}
	query := func() *gorm.DB { return conn.WithContext(context.Background()).Model(&models.Customer{}) }

	var seen []uuid.UUID
	cursor := ""
	for page := 0; page < 3; page++ {
		rows, next, err := pagination.Find(query(), pagination.Params{Limit: 2, Cursor: cursor}, customerCursor)
		require.NoError(t, err)
		for _, r := range rows {
			seen = append(seen, r.ID)
		}
		cursor = next
		if next == "" {
			require.Equal(t, 2, page, "last page should be the third")
			break
		}
	}
	require.Equal(t, []uuid.UUID{created[4], created[3], created[2], created[1], created[0]}, seen)
}

func TestFindRejectsBadCursor(t *testing.T) {
	conn := dbtest.Open(t)
	_, _, err := pagination.Find(conn.Model(&models.Customer{}), pagination.Params{Cursor: "%%%"}, customerCursor)
	require.ErrorIs(t, err, pagination.ErrInvalidCursor)
}

func TestWrapListError(t *testing.T) {
	_, cursorErr := pagination.ParseCursor("bm9waXBl")
	require.True(t, pkgerrors.IsCode(pagination.WrapListError(cursorErr, "list"), pkgerrors.CodeValidation))
	require.True(t, pkgerrors.IsCode(pagination.WrapListError(errors.New("db gone"), "list"), pkgerrors.CodeInternal))
}
