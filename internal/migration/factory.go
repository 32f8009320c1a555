package migration

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/agentmarket/config"
	"github.com/BaSui01/agentmarket/internal/database"
)

// NewMigratorFromConfig 为配置中的数据库打开一条独立连接并创建迁移器
func NewMigratorFromConfig(cfg config.DatabaseConfig, logger *zap.Logger) (*DefaultMigrator, error) {
	dbType, err := ParseDatabaseType(cfg.Driver)
	if err != nil {
		return nil, err
	}
	pm, err := database.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	m, err := NewMigrator(pm.SQLDB(), dbType, logger)
	if err != nil {
		_ = pm.Close()
		return nil, fmt.Errorf("failed to initialize migrator: %w", err)
	}
	m.onClose = pm.Close
	return m, nil
}
