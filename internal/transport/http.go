package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
)

const (
	maxBodyBytes      = 1 << 20
	multipartMemory   = 32 << 20
	defaultKeepAlive  = 10 * time.Second
	defaultInitWindow = 10 * time.Second
)

// Authenticator определяет пользователя по токену из connection_init.
type Authenticator interface {
	FromToken(ctx context.Context, token string) *domain.Viewer
}

type Options struct {
	// MaxUploadBytes - предел размера multipart-запроса целиком.
	MaxUploadBytes int64
	// KeepAlive - период ping и "ka" по websocket. 0 - значение по умолчанию.
	KeepAlive time.Duration
	// InitTimeout - сколько ждать connection_init.
	InitTimeout time.Duration
	CheckOrigin func(r *http.Request) bool
	Auth        Authenticator
	// PerOperation дополняет контекст query и mutation, пришедших по websocket
	// (например, свежими лоадерами). Подписки его не получают.
	PerOperation func(ctx context.Context) context.Context
}

// Handler обслуживает GraphQL по HTTP (GET, JSON, multipart) и по websocket.
type Handler struct {
	schema   graphql.Schema
	opts     Options
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func New(schema graphql.Schema, opts Options, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.KeepAlive == 0 {
		opts.KeepAlive = defaultKeepAlive
	}
	if opts.InitTimeout == 0 {
		opts.InitTimeout = defaultInitWindow
	}
	if opts.MaxUploadBytes == 0 {
		opts.MaxUploadBytes = multipartMemory
	}
	logger = logger.With("component", "transport")
	return &Handler{
		schema: schema,
		opts:   opts,
		upgrader: websocket.Upgrader{
			Subprotocols: []string{protocolTransportWS, protocolGraphQLWS},
			CheckOrigin: func(r *http.Request) bool {
				if opts.CheckOrigin != nil {
					return opts.CheckOrigin(r)
				}
				logger.Debug("websocket origin", "origin", r.Header.Get("Origin"), "host", r.Host)
				return true
			},
		},
		logger: logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		h.serveWebsocket(w, r)
		return
	}

	req, files, err := h.parse(w, r)
	defer files.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if err != nil {
		h.fail(w, err)
		return
	}

	op, err := req.Operation()
	if err != nil {
		h.fail(w, err)
		return
	}
	switch {
	case op == ast.Subscription:
		h.fail(w, badRequest("subscriptions are served over websocket"))
		return
	case op == ast.Mutation && r.Method == http.MethodGet:
		w.Header().Set("Allow", http.MethodPost)
		h.fail(w, ErrMethodNotAllowed)
		return
	}

	res := h.execute(r.Context(), req)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) (*Request, uploads, error) {
	switch r.Method {
	case http.MethodGet:
		req, err := fromQuery(r)
		return req, nil, err
	case http.MethodPost:
		if isMultipart(r) {
			r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
			return fromMultipart(r, multipartMemory)
		}
		req, err := fromJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		return req, nil, err
	default:
		w.Header().Set("Allow", "GET, POST")
		return nil, nil, ErrMethodNotAllowed
	}
}

func (h *Handler) execute(ctx context.Context, req *Request) *graphql.Result {
	start := time.Now()
	res := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	h.logger.DebugContext(ctx, "operation executed",
		"operation", req.OperationName,
		"errors", len(res.Errors),
		"duration", time.Since(start))
	return res
}

// fail отвечает ошибкой разбора запроса в формате GraphQL.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, ErrMethodNotAllowed):
		status = http.StatusMethodNotAllowed
	default:
		h.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]interface{}{
		"errors": []map[string]string{{"message": err.Error()}},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
