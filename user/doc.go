// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package user 实现 AgentMarket 的用户注册与登录。

  - User：gorm 模型，对应 users 表。
  - Store：按邮箱 / ID 查询与创建，邮箱唯一。
  - TokenIssuer：HS256 access / refresh Token，refresh 携带 jti 以支持吊销。
  - Service：Register、Login、Refresh、Logout、Profile。

失败以 *types.Error 返回，HTTPStatus 字段决定 HTTP 状态码。
*/
package user
