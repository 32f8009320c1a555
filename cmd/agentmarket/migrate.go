package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/BaSui01/agentmarket/internal/migration"
)

// =============================================================================
// 🗄️ Database Migration Commands
// =============================================================================

// runMigrate 处理 migrate 命令及其子命令
func runMigrate(args []string) {
	if len(args) < 1 {
		printMigrateUsage()
		os.Exit(1)
	}

	action := args[0]
	if action == "help" || action == "-h" || action == "--help" {
		printMigrateUsage()
		return
	}

	forceVersion, rest, err := parseMigrateArgs(action, args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		printMigrateUsage()
		os.Exit(1)
	}

	fs := flag.NewFlagSet("migrate "+action, flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	_ = fs.Parse(rest)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	m, err := migration.NewMigratorFromConfig(cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to create migrator", zap.Error(err))
		os.Exit(1)
	}
	defer m.Close()

	if err := migration.NewCLI(m).Run(context.Background(), action, forceVersion); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = m.Close()
		os.Exit(1)
	}
}

// parseMigrateArgs 校验子命令并取出 force 的版本号参数，返回剩余的 flag 参数
func parseMigrateArgs(action string, args []string) (int, []string, error) {
	switch action {
	case "up", "down", "status", "version":
		return 0, args, nil
	case "force":
		if len(args) < 1 {
			return 0, nil, fmt.Errorf("migrate force requires a version argument")
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return 0, nil, fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return v, args[1:], nil
	default:
		return 0, nil, fmt.Errorf("unknown migrate subcommand: %s", action)
	}
}

// printMigrateUsage 打印 migrate 命令帮助
func printMigrateUsage() {
	fmt.Println(`Database Migration Commands

Usage:
  agentmarket migrate <subcommand> [options]

Subcommands:
  up          Apply all pending migrations
  down        Rollback the last migration
  status      Show migration status
  version     Show current migration version
  force <v>   Force set migration version (use with caution)
  help        Show this help message

Options:
  --config <path>   Path to configuration file (YAML)

Examples:
  agentmarket migrate up
  agentmarket migrate up --config /etc/agentmarket/config.yaml
  agentmarket migrate status
  agentmarket migrate force 1`)
}
