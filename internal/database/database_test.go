package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"sheetdash/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	base := config.DatabaseConfig{Host: "db", Port: "5432", User: "sheet", Name: "sheetdash"}

	tests := []struct {
		name    string
		mutate  func(c *config.DatabaseConfig)
		want    string
		wantErr string
	}{
		{
			name: "password and sslmode",
			mutate: func(c *config.DatabaseConfig) {
				c.Password = "s3cret"
				c.SSLMode = "disable"
			},
			want: "postgres://sheet:s3cret@db:5432/sheetdash?application_name=sheetdash&sslmode=disable",
		},
		{
			name: "no password, no sslmode",
			want: "postgres://sheet@db:5432/sheetdash?application_name=sheetdash",
		},
		{
			name:    "missing host and user",
			mutate:  func(c *config.DatabaseConfig) { c.Host, c.User = "", "" },
			wantErr: "missing host, user",
		},
		{
			name:    "missing name",
			mutate:  func(c *config.DatabaseConfig) { c.Name = "" },
			wantErr: "missing name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			if tt.mutate != nil {
				tt.mutate(&c)
			}
			got, err := BuildPostgresDSN(c)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// stubOpen makes NewPostgres use db and restores sql.Open afterwards.
func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return db, err }
	t.Cleanup(func() { sqlOpen = orig })
}

func TestNewPostgres(t *testing.T) {
	conf := config.DatabaseConfig{
		Host:            "db",
		Port:            "5432",
		User:            "sheet",
		Name:            "sheetdash",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnectAttempts: 3,
	}

	t.Run("ready on first ping", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)

		mock.ExpectPing()

		got, err := NewPostgres(context.Background(), conf)
		require.NoError(t, err)
		assert.Same(t, db, got)
		assert.Equal(t, 10, got.Stats().MaxOpenConnections)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("retries until ready", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)

		mock.ExpectPing().WillReturnError(errors.New("starting up"))
		mock.ExpectPing()

		_, err = NewPostgres(context.Background(), conf)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up after attempts", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)

		for i := 0; i < conf.ConnectAttempts; i++ {
			mock.ExpectPing().WillReturnError(errors.New("ping failed"))
		}
		mock.ExpectClose()

		got, err := NewPostgres(context.Background(), conf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db ping: ping failed")
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)
		mock.ExpectClose()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		slow := conf
		slow.ConnectBackoff = time.Hour

		_, err = NewPostgres(ctx, slow)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("sql open error", func(t *testing.T) {
		stubOpen(t, nil, errors.New("open error"))

		got, err := NewPostgres(context.Background(), conf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sql open: open error")
		assert.Nil(t, got)
	})

	t.Run("invalid config", func(t *testing.T) {
		got, err := NewPostgres(context.Background(), config.DatabaseConfig{})
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}
