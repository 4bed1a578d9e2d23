package gateway

import (
	"fmt"
	"sort"
	"strings"
)

// AuthorizationError - операция требует аутентифицированного пользователя (или права).
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "unauthorized: " + e.Reason
}

// ErrUnauthorized возвращается, когда пользователь не определён.
var ErrUnauthorized = &AuthorizationError{Reason: "not authenticated"}

// Forbidden строит ошибку авторизации для недостающего права.
func Forbidden(format string, args ...any) error {
	return &AuthorizationError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError - некорректные аргументы операции: поле -> сообщение.
type ValidationError struct {
	Fields map[string]string
}

// Add добавляет сообщение для поля. Первое сообщение для поля сохраняется.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Err возвращает nil, если ни одно поле не добавлено.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Invalid - сокращение для ошибки с одним полем.
func Invalid(field, msg string) error {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}
