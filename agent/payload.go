package agent

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// Payload 入站请求参数，结构因 Agent 而异
type Payload map[string]any

// Raw 返回字段原始值；字段缺失或为 null 时返回 def
func (p Payload) Raw(key string, def any) any {
	if v, ok := p[key]; ok && v != nil {
		return v
	}
	return def
}

// String 返回字符串字段；缺失或为 null 时返回 def，非字符串值按其文本形式返回
func (p Payload) String(key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return stringify(v)
}

// Float 返回数值字段；缺失、为 null 或不是数字时返回 def
func (p Payload) Float(key string, def float64) float64 {
	if f, ok := toFloat(p[key]); ok {
		return f
	}
	return def
}

// Int 返回整数字段；缺失、为 null、不是数字或超出 int 范围时返回 def，小数部分截断
func (p Payload) Int(key string, def int) int {
	f, ok := toFloat(p[key])
	if !ok || math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return def
	}
	return int(f)
}

// Clamp 返回限制在 [lo, hi] 内的整数字段，在浮点域比较后再转换；
// 缺失、为 null、不是数字或为 NaN 时返回 def（同样受区间限制）
func (p Payload) Clamp(key string, def, lo, hi int) int {
	f, ok := toFloat(p[key])
	if !ok || math.IsNaN(f) {
		f = float64(def)
	}
	return int(math.Max(float64(lo), math.Min(f, float64(hi))))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Validate 依次检查必填字段，返回第一个缺失或为空的字段对应的错误消息；全部通过时返回空串。
// null、false、0、空字符串、空数组、空对象都视为空。
func Validate(p Payload, fields ...string) string {
	for _, f := range fields {
		v, ok := p[f]
		if !ok || !truthy(v) {
			return "Missing required field: " + f
		}
	}
	return ""
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// stringify 字符串原样返回，其余值序列化为 JSON，失败时退回 fmt 格式
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprint(v)
}
