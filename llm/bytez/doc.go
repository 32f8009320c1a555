// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package bytez 提供上游 Bytez Provider 的 HTTP 适配器。

Client.Request 对 <base_url>/<endpoint> 发起带 Bearer 认证的 JSON 请求，
并将所有传输层故障转换为 {"error": ...} 值：

  - 超时：Request timeout. Please try again with a smaller request.
  - 连接失败 / 非 2xx / 非法 JSON：Request failed: <detail>
  - 其他内部故障：Unexpected error: <detail>

ModelEndpoint 返回文本与代码模型调用使用的 models/v2/<model> 路径。
*/
package bytez
