package graph

import (
	"context"
	"errors"

	"github.com/UkralStul/hub-graphql-service/internal/gateway"
	"github.com/UkralStul/hub-graphql-service/internal/pubsub"
)

// Коды ошибок в extensions.code.
const (
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// Error - ошибка для клиента: сообщение и extensions (graphql-go gqlerrors.ExtendedError).
type Error struct {
	Message string
	Code    string
	Fields  map[string]string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.Code}
	if len(e.Fields) > 0 {
		ext["fields"] = e.Fields
	}
	return ext
}

// present переводит ошибку сервиса в ошибку для клиента.
// Ошибки хранилища, включая отсутствие документа, непрозрачны: подробности только в логе.
func (r *Resolver) present(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		verr *gateway.ValidationError
		aerr *gateway.AuthorizationError
	)
	switch {
	case errors.As(err, &verr):
		return &Error{Message: verr.Error(), Code: CodeBadUserInput, Fields: verr.Fields}
	case errors.Is(err, gateway.ErrUnauthorized):
		return &Error{Message: "not authenticated", Code: CodeUnauthenticated}
	case errors.As(err, &aerr):
		return &Error{Message: aerr.Reason, Code: CodeForbidden}
	case errors.Is(err, pubsub.ErrUnknownTopic):
		r.Logger.ErrorContext(ctx, "unknown topic", "operation", op, "error", err)
		return &Error{Message: "subscription is not available", Code: CodeInternal}
	default:
		r.Logger.ErrorContext(ctx, "operation failed", "operation", op, "error", err)
		return &Error{Message: "operation failed", Code: CodeInternal}
	}
}

// ack - результат Boolean-мутации: без пользователя false без ошибки,
// остальные ошибки передаются клиенту.
func (r *Resolver) ack(ctx context.Context, op string, err error) (interface{}, error) {
	if errors.Is(err, gateway.ErrUnauthorized) {
		return false, nil
	}
	if err != nil {
		return nil, r.present(ctx, op, err)
	}
	return true, nil
}
