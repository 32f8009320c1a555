// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

// Package tlsutil 为出站 Provider 请求提供统一的 TLS 加固 Transport。
package tlsutil
