package agent

import (
	"regexp"
	"strings"
)

var (
	thinkBlock    = regexp.MustCompile(`(?s)<think>.*?</think>`)
	thinkTrailing = regexp.MustCompile(`(?s)<think>.*$`)
)

// CleanOutput 去除模型输出中的 <think>...</think> 推理片段（包括末尾未闭合的片段），并去掉首尾空白。
func CleanOutput(text string) string {
	if text == "" {
		return ""
	}
	cleaned := thinkBlock.ReplaceAllString(text, "")
	cleaned = thinkTrailing.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
