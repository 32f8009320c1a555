// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 database 负责打开用户库（postgres / mysql / sqlite）并管理连接池。

# 核心类型

  - PoolManager：持有 GORM 实例与底层 sql.DB，提供 DB()、SQLDB()、
    Ping()、GetStats()、Close()。后台健康检查定时探活。
  - PoolConfig：最大空闲连接数、最大打开连接数、连接生命周期与健康检查间隔。

Open 根据 config.DatabaseConfig 选择方言：postgres 使用 gorm.io/driver/postgres，
mysql 使用 gorm.io/driver/mysql，sqlite 使用纯 Go 实现的 github.com/glebarez/sqlite。
*/
package database
