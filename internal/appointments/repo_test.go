package appointments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/detailshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
)

func TestRepositoryUpdateWritesMergedRow(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Appointment{CustomerName: "Ana", CustomerPhone: "1", AdminNotes: strPtr("call first")})
	require.NoError(t, err)

	created.Status = enums.AppointmentStatusScheduled
	created.AdminNotes = nil
	_, err = repo.Update(ctx, created)
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, enums.AppointmentStatusScheduled, stored.Status)
	require.Nil(t, stored.AdminNotes)
	require.Equal(t, "Ana", stored.CustomerName)
}

func TestRepositoryUpdateDoesNotResurrectDeletedRow(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Appointment{CustomerName: "Ana", CustomerPhone: "1"})
	require.NoError(t, err)
	loaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	loaded.AdminNotes = strPtr("too late")
	_, err = repo.Update(ctx, loaded)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, conn.Model(&models.Appointment{}).Where("id = ?", created.ID).Count(&count).Error)
	require.Zero(t, count)

	_, err = repo.Update(ctx, &models.Appointment{ID: uuid.New(), CustomerName: "Bia", CustomerPhone: "2"})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
