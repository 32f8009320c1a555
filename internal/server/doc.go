// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 提供 HTTP 服务器生命周期管理：非阻塞启动、
优雅关闭与异步错误传播。

# 核心类型

  - Manager：封装 net/http.Server 与 net.Listener，提供
    Start/Run/Shutdown 生命周期方法。API 服务与 /metrics
    服务各使用一个 Manager。
  - Config：监听地址、读写超时、空闲超时、最大请求头与关闭超时，
    由 ConfigFor 从 config.ServerConfig 生成。

# 主要能力

  - 非阻塞启动：Start 在后台 goroutine 中运行服务。
  - Run：阻塞至 ctx 结束或服务异常退出，随后在关闭超时内排空请求，
    适合放入 errgroup 与信号 ctx 配合使用。
  - 错误传播：Errors() 返回异步错误通道。
*/
package server
