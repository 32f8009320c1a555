package migration

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/agentmarket/config"
)

func TestParseDatabaseType(t *testing.T) {
	tests := []struct {
		input    string
		expected DatabaseType
		wantErr  bool
	}{
		{"postgres", DatabaseTypePostgres, false},
		{"postgresql", DatabaseTypePostgres, false},
		{"pg", DatabaseTypePostgres, false},
		{"mysql", DatabaseTypeMySQL, false},
		{"mariadb", DatabaseTypeMySQL, false},
		{"sqlite", DatabaseTypeSQLite, false},
		{"sqlite3", DatabaseTypeSQLite, false},
		{"POSTGRES", DatabaseTypePostgres, false},
		{"oracle", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseDatabaseType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAvailableMigrations(t *testing.T) {
	for _, dbType := range []DatabaseType{DatabaseTypePostgres, DatabaseTypeMySQL, DatabaseTypeSQLite} {
		t.Run(string(dbType), func(t *testing.T) {
			files, err := availableMigrations(dbType)
			require.NoError(t, err)
			require.NotEmpty(t, files)
			assert.Equal(t, uint(1), files[0].version)
			assert.Equal(t, "create_users", files[0].name)
			for i := 1; i < len(files); i++ {
				assert.Greater(t, files[i].version, files[i-1].version)
			}
		})
	}
}

func newSQLiteMigrator(t *testing.T) *DefaultMigrator {
	t.Helper()
	cfg := config.DefaultConfig().Database
	cfg.Driver = "sqlite"
	cfg.Name = filepath.Join(t.TempDir(), "migrate.db")

	m, err := NewMigratorFromConfig(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestMigrator_SQLiteLifecycle(t *testing.T) {
	ctx := context.Background()
	m := newSQLiteMigrator(t)

	version, dirty, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, m.Up(ctx))
	require.NoError(t, m.Up(ctx), "second up is a no-op")

	info, err := m.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(1), info.CurrentVersion)
	assert.Equal(t, info.TotalMigrations, info.AppliedMigrations)
	assert.Zero(t, info.PendingMigrations)

	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Applied)

	require.NoError(t, m.Down(ctx))
	version, _, err = m.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestNewMigrator_Errors(t *testing.T) {
	_, err := NewMigrator(nil, DatabaseTypeSQLite, nil)
	assert.Error(t, err)

	cfg := config.DefaultConfig().Database
	cfg.Driver = "oracle"
	_, err = NewMigratorFromConfig(cfg, nil)
	assert.Error(t, err)
}

func TestCLI_Output(t *testing.T) {
	ctx := context.Background()
	m := newSQLiteMigrator(t)
	cli := NewCLI(m)
	var buf bytes.Buffer
	cli.SetOutput(&buf)

	require.NoError(t, cli.Run(ctx, "version", 0))
	assert.Contains(t, buf.String(), "No migrations applied yet")

	buf.Reset()
	require.NoError(t, cli.Run(ctx, "up", 0))
	assert.Contains(t, buf.String(), "Current version: 1")

	buf.Reset()
	require.NoError(t, cli.Run(ctx, "status", 0))
	assert.Contains(t, buf.String(), "000001")
	assert.Contains(t, buf.String(), "create_users")
	assert.Contains(t, buf.String(), "Applied")

	assert.Error(t, cli.Run(ctx, "sideways", 0))
}

type failingMigrator struct{ Migrator }

func (failingMigrator) Up(context.Context) error { return errors.New("boom") }

func TestCLI_PropagatesErrors(t *testing.T) {
	cli := NewCLI(failingMigrator{})
	cli.SetOutput(&bytes.Buffer{})
	err := cli.RunUp(context.Background())
	assert.ErrorContains(t, err, "boom")
}
