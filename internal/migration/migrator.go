package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// =============================================================================
// Embedded Migration Files
// =============================================================================

//go:embed migrations/postgres/*.sql migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// MigrationsTable golang-migrate 版本表名
const MigrationsTable = "schema_migrations"

// DatabaseType 数据库类型
type DatabaseType string

const (
	DatabaseTypePostgres DatabaseType = "postgres"
	DatabaseTypeMySQL    DatabaseType = "mysql"
	DatabaseTypeSQLite   DatabaseType = "sqlite"
)

// ParseDatabaseType 解析数据库类型字符串
func ParseDatabaseType(s string) (DatabaseType, error) {
	switch strings.ToLower(s) {
	case "postgres", "postgresql", "pg":
		return DatabaseTypePostgres, nil
	case "mysql", "mariadb":
		return DatabaseTypeMySQL, nil
	case "sqlite", "sqlite3":
		return DatabaseTypeSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", s)
	}
}

func (t DatabaseType) dir() string {
	return "migrations/" + string(t)
}

// MigrationStatus 单个迁移的状态
type MigrationStatus struct {
	Version uint
	Name    string
	Applied bool
	Dirty   bool
}

// MigrationInfo 迁移摘要
type MigrationInfo struct {
	CurrentVersion    uint
	Dirty             bool
	TotalMigrations   int
	AppliedMigrations int
	PendingMigrations int
}

// Migrator 用户库 Schema 迁移接口
type Migrator interface {
	Up(ctx context.Context) error
	Down(ctx context.Context) error
	Force(ctx context.Context, version int) error
	Version(ctx context.Context) (uint, bool, error)
	Status(ctx context.Context) ([]MigrationStatus, error)
	Info(ctx context.Context) (*MigrationInfo, error)
	Close() error
}

// =============================================================================
// Default Migrator Implementation
// =============================================================================

// DefaultMigrator 基于 golang-migrate 的 Migrator 实现
type DefaultMigrator struct {
	dbType  DatabaseType
	migrate *migrate.Migrate
	logger  *zap.Logger
	onClose func() error
}

// NewMigrator 在已打开的连接上创建迁移器。
// 迁移器接管 db 的所有权，Close 时一并关闭。
func NewMigrator(db *sql.DB, dbType DatabaseType, logger *zap.Logger) (*DefaultMigrator, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dbDriver, err := databaseDriver(db, dbType)
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, dbType.dir())
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, string(dbType), dbDriver)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &DefaultMigrator{
		dbType:  dbType,
		migrate: m,
		logger:  logger.With(zap.String("component", "migration"), zap.String("driver", string(dbType))),
	}, nil
}

func databaseDriver(db *sql.DB, dbType DatabaseType) (database.Driver, error) {
	switch dbType {
	case DatabaseTypePostgres:
		return postgres.WithInstance(db, &postgres.Config{MigrationsTable: MigrationsTable})
	case DatabaseTypeMySQL:
		return mysql.WithInstance(db, &mysql.Config{MigrationsTable: MigrationsTable})
	case DatabaseTypeSQLite:
		return sqlite3.WithInstance(db, &sqlite3.Config{MigrationsTable: MigrationsTable})
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// Up 执行全部未应用的迁移
func (m *DefaultMigrator) Up(ctx context.Context) error {
	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Debug("schema already up to date")
			return nil
		}
		return fmt.Errorf("migration up failed: %w", err)
	}
	m.logger.Info("migrations applied")
	return nil
}

// Down 回滚最近一次迁移
func (m *DefaultMigrator) Down(ctx context.Context) error {
	if err := m.migrate.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// Force 直接设置版本号而不执行迁移
func (m *DefaultMigrator) Force(ctx context.Context, version int) error {
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("migration force failed: %w", err)
	}
	m.logger.Warn("migration version forced", zap.Int("version", version))
	return nil
}

// Version 返回当前版本与 dirty 标记；未应用任何迁移时返回 0
func (m *DefaultMigrator) Version(ctx context.Context) (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get version: %w", err)
	}
	return version, dirty, nil
}

// Status 返回全部内嵌迁移的状态
func (m *DefaultMigrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	current, dirty, err := m.Version(ctx)
	if err != nil {
		return nil, err
	}
	files, err := availableMigrations(m.dbType)
	if err != nil {
		return nil, err
	}
	statuses := make([]MigrationStatus, 0, len(files))
	for _, f := range files {
		statuses = append(statuses, MigrationStatus{
			Version: f.version,
			Name:    f.name,
			Applied: f.version <= current,
			Dirty:   dirty && f.version == current,
		})
	}
	return statuses, nil
}

// Info 返回迁移摘要
func (m *DefaultMigrator) Info(ctx context.Context) (*MigrationInfo, error) {
	statuses, err := m.Status(ctx)
	if err != nil {
		return nil, err
	}
	current, dirty, err := m.Version(ctx)
	if err != nil {
		return nil, err
	}
	applied := 0
	for _, s := range statuses {
		if s.Applied {
			applied++
		}
	}
	return &MigrationInfo{
		CurrentVersion:    current,
		Dirty:             dirty,
		TotalMigrations:   len(statuses),
		AppliedMigrations: applied,
		PendingMigrations: len(statuses) - applied,
	}, nil
}

// Close 释放迁移源与数据库连接
func (m *DefaultMigrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	var ownerErr error
	if m.onClose != nil {
		ownerErr = m.onClose()
	}
	return errors.Join(srcErr, dbErr, ownerErr)
}

type migrationFile struct {
	version uint
	name    string
}

// availableMigrations 解析形如 000001_create_users.up.sql 的文件名
func availableMigrations(dbType DatabaseType) ([]migrationFile, error) {
	entries, err := fs.ReadDir(migrationsFS, dbType.dir())
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []migrationFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, rest, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		version, err := strconv.ParseUint(prefix, 10, 32)
		if err != nil {
			continue
		}
		files = append(files, migrationFile{
			version: uint(version),
			name:    strings.TrimSuffix(rest, ".up.sql"),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}
