// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 migration 管理用户库的 Schema 迁移，支持 PostgreSQL、MySQL 与 SQLite，
基于 golang-migrate 实现。

# 概述

各方言的 SQL 迁移文件通过 embed.FS 内嵌（migrations/<driver>/），
NewMigrator 在已打开的 *sql.DB 上通过 WithInstance 创建 golang-migrate 实例。
serve 启动时在 database.auto_migrate 为 true 时自动执行 Up，
agentmarket migrate 子命令通过 CLI 暴露 up/down/version/status/force。

# 核心类型

  - Migrator / DefaultMigrator：Up、Down、Force、Version、Status、Info、Close。
  - DatabaseType：postgres / mysql / sqlite。
  - CLI：终端格式化输出。
*/
package migration
