package types

// ErrorResponse 统一错误响应.
type ErrorResponse struct {
	Error string `json:"error"`
	// 字段级校验错误，key 为字段名，value 为违反的规则
	Fields map[string]string `json:"fields,omitempty"`
}
