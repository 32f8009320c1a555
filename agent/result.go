package agent

// Result Agent 的统一输出。
// 成功时包含 success=true 及各模态字段；失败时仅包含 error。
type Result map[string]any

// Failure 构造失败结果
func Failure(msg any) Result {
	return Result{"error": msg}
}

// ErrorMessage 返回 error 字段的文本形式。
// 字段缺失或为空值时 failed 为 false，与上游 {"error": null} 的情况一致。
func (r Result) ErrorMessage() (msg string, failed bool) {
	v, ok := r["error"]
	if !ok || !truthy(v) {
		return "", false
	}
	return stringify(v), true
}

// Success 报告结果是否为成功结果
func (r Result) Success() bool {
	ok, _ := r["success"].(bool)
	return ok
}
