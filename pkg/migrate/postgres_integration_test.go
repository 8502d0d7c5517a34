//go:build integration

package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "detailshop",
				"POSTGRES_PASSWORD": "detailshop",
				"POSTGRES_DB":       "detailshop",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://detailshop:detailshop@%s:%s/detailshop?sslmode=disable", host, port.Port())
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx))
	return db
}

func TestPostgresMigrationsRoundTrip(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	runner, err := NewRunner(db, Dialect("postgres"), Embedded(), nil)
	require.NoError(t, err)

	require.NoError(t, runner.Up(ctx))

	var tables int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT count(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name IN ('orders', 'appointments', 'site_settings')`,
	).Scan(&tables))
	require.Equal(t, 3, tables)

	_, err = db.ExecContext(ctx, `INSERT INTO customers (id, name, phone) VALUES ('5b0c3f4e-2a57-4c4b-9d0e-1f1b8f8a0a01', 'Ana', '11999990000')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO customers (id, name, phone, email) VALUES
		('5b0c3f4e-2a57-4c4b-9d0e-1f1b8f8a0a02', 'Bia', '11999990001', 'bia@example.com'),
		('5b0c3f4e-2a57-4c4b-9d0e-1f1b8f8a0a03', 'Bia', '11999990001', 'bia@example.com')`)
	require.NoError(t, err, "guest records may share an email")
	_, err = db.ExecContext(ctx, `UPDATE customers SET is_registered = TRUE WHERE email = 'bia@example.com'`)
	require.Error(t, err, "registered emails are unique")

	require.NoError(t, runner.ToVersion(ctx, "20260301090000"))
	require.NoError(t, runner.Up(ctx))
}
