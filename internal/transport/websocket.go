package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/UkralStul/hub-graphql-service/internal/auth"
)

// Поддерживаются два подпротокола: graphql-transport-ws (graphql-ws 5+)
// и устаревший graphql-ws (subscriptions-transport-ws).
const (
	protocolTransportWS = "graphql-transport-ws"
	protocolGraphQLWS   = "graphql-ws"
)

const (
	msgConnectionInit      = "connection_init"
	msgConnectionAck       = "connection_ack"
	msgConnectionError     = "connection_error"
	msgConnectionTerminate = "connection_terminate"
	msgKeepAlive           = "ka"
	msgPing                = "ping"
	msgPong                = "pong"
	msgSubscribe           = "subscribe"
	msgStart               = "start"
	msgNext                = "next"
	msgData                = "data"
	msgError               = "error"
	msgComplete            = "complete"
	msgStop                = "stop"
)

// Коды закрытия graphql-transport-ws.
const (
	closeBadRequest   = 4400
	closeUnauthorized = 4401
	closeForbidden    = 4403
	closeInitTimeout  = 4408
	closeDuplicateID  = 4409
	closeTooManyInits = 4429
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10
	sendBufferSize = 64
)

type message struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outMessage struct {
	ID      string      `json:"id,omitempty"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// session - одно websocket-соединение и его операции.
type session struct {
	h      *Handler
	conn   *websocket.Conn
	legacy bool
	logger *slog.Logger

	// ctx меняется только в readPump (connection_init)
	ctx    context.Context
	cancel context.CancelFunc
	done   <-chan struct{}
	acked  atomic.Bool

	send chan outMessage

	mu  sync.Mutex
	ops map[string]context.CancelFunc
}

func (h *Handler) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	ctx, cancel := context.WithCancel(auth.WithoutSession(r.Context()))
	s := &session{
		h:      h,
		conn:   conn,
		legacy: conn.Subprotocol() == protocolGraphQLWS,
		logger: h.logger.With("remote_addr", conn.RemoteAddr().String(), "protocol", conn.Subprotocol()),
		ctx:    ctx,
		cancel: cancel,
		done:   ctx.Done(),
		send:   make(chan outMessage, sendBufferSize),
		ops:    make(map[string]context.CancelFunc),
	}
	s.logger.Debug("websocket connected")

	go s.writePump()
	s.readPump()
}

func (s *session) readPump() {
	defer func() {
		s.cancel()
		s.conn.Close()
		s.logger.Debug("websocket closed")
	}()
	s.conn.SetReadLimit(maxMessageSize)

	initTimer := time.AfterFunc(s.h.opts.InitTimeout, func() {
		if !s.acked.Load() {
			s.close(closeInitTimeout, "Connection initialisation timeout")
		}
	})
	defer initTimer.Stop()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				s.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.close(closeBadRequest, "Invalid message received")
			return
		}
		if !s.handle(msg) {
			return
		}
	}
}

// handle обрабатывает одно сообщение клиента. false - соединение закрывается.
func (s *session) handle(msg message) bool {
	switch msg.Type {
	case msgConnectionInit:
		return s.init(msg.Payload)

	case msgPing:
		s.write(outMessage{Type: msgPong})
	case msgPong:

	case msgSubscribe, msgStart:
		if !s.acked.Load() {
			if s.legacy {
				s.write(outMessage{ID: msg.ID, Type: msgError, Payload: errorsPayload("connection is not initialised")})
				return true
			}
			s.close(closeUnauthorized, "Unauthorized")
			return false
		}
		var req Request
		if msg.ID == "" || json.Unmarshal(msg.Payload, &req) != nil {
			s.close(closeBadRequest, "Invalid subscribe message")
			return false
		}
		if !s.start(msg.ID, &req) {
			if s.legacy {
				s.write(outMessage{ID: msg.ID, Type: msgError, Payload: errorsPayload("operation id is already in use")})
				return true
			}
			s.close(closeDuplicateID, fmt.Sprintf("Subscriber for %s already exists", msg.ID))
			return false
		}

	case msgComplete, msgStop:
		s.stop(msg.ID)

	case msgConnectionTerminate:
		s.close(websocket.CloseNormalClosure, "")
		return false

	default:
		if s.legacy {
			s.write(outMessage{Type: msgConnectionError, Payload: map[string]string{"message": "unknown message type " + msg.Type}})
			return true
		}
		s.close(closeBadRequest, "Unknown message type")
		return false
	}
	return true
}

// init принимает connection_init. Токен из payload (authToken или
// Authorization) заменяет пользователя, определённого при upgrade.
func (s *session) init(payload json.RawMessage) bool {
	if s.acked.Load() {
		s.close(closeTooManyInits, "Too many initialisation requests")
		return false
	}

	var params map[string]interface{}
	if len(payload) > 0 {
		json.Unmarshal(payload, &params)
	}
	if token := initToken(params); token != "" && s.h.opts.Auth != nil {
		v := s.h.opts.Auth.FromToken(s.ctx, token)
		if v == nil {
			if s.legacy {
				s.write(outMessage{Type: msgConnectionError, Payload: map[string]string{"message": "invalid token"}})
				return true
			}
			s.close(closeForbidden, "Forbidden")
			return false
		}
		s.ctx = auth.WithViewer(s.ctx, v)
	}

	s.acked.Store(true)
	s.write(outMessage{Type: msgConnectionAck})
	if s.legacy {
		s.write(outMessage{Type: msgKeepAlive})
	}
	viewer := ""
	if v := auth.ViewerFrom(s.ctx); v != nil {
		viewer = v.ID
	}
	s.logger.Debug("websocket initialised", "viewer", viewer)
	return true
}

func initToken(params map[string]interface{}) string {
	for _, key := range []string{"authToken", "Authorization", "authorization", "token"} {
		if v, ok := params[key].(string); ok && v != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// start запускает операцию. false - id уже занят.
func (s *session) start(id string, req *Request) bool {
	s.mu.Lock()
	if _, busy := s.ops[id]; busy {
		s.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.ops[id] = cancel
	s.mu.Unlock()

	go func() {
		op, err := req.Operation()
		if err != nil {
			s.finish(id, s.result(id, &graphql.Result{Errors: graphqlErrors(err)}))
			return
		}

		if op != ast.Subscription {
			if s.h.opts.PerOperation != nil {
				ctx = s.h.opts.PerOperation(ctx)
			}
			s.finish(id, s.result(id, s.h.execute(ctx, req)))
			return
		}

		results := graphql.Subscribe(graphql.Params{
			Schema:         s.h.schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        ctx,
		})
		ok := true
		for res := range results {
			// после stop клиент уже не ждёт next
			if ok && s.active(id) {
				ok = s.result(id, res)
			}
		}
		s.finish(id, ok)
	}()
	return true
}

// result отправляет результат операции. Результат без данных с ошибками
// завершает операцию сообщением error; тогда возвращается false.
func (s *session) result(id string, res *graphql.Result) bool {
	if res.Data == nil && len(res.Errors) > 0 {
		s.write(outMessage{ID: id, Type: msgError, Payload: res.Errors})
		return false
	}
	typ := msgNext
	if s.legacy {
		typ = msgData
	}
	s.write(outMessage{ID: id, Type: typ, Payload: res})
	return true
}

// finish снимает операцию. complete не отправляется, если клиент
// сам остановил операцию или она завершилась ошибкой.
func (s *session) finish(id string, complete bool) {
	s.mu.Lock()
	cancel, ok := s.ops[id]
	delete(s.ops, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	cancel()
	if complete {
		s.write(outMessage{ID: id, Type: msgComplete})
	}
}

func (s *session) active(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ops[id]
	return ok
}

func (s *session) stop(id string) {
	s.mu.Lock()
	cancel, ok := s.ops[id]
	delete(s.ops, id)
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

func (s *session) write(m outMessage) bool {
	select {
	case s.send <- m:
		return true
	case <-s.done:
		return false
	}
}

// close отправляет кадр закрытия с кодом протокола и обрывает соединение.
func (s *session) close(code int, reason string) {
	s.logger.Debug("websocket closing", "code", code, "reason", reason)
	s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	s.cancel()
	s.conn.Close()
}

// writePump - единственный писатель в соединение.
func (s *session) writePump() {
	ticker := time.NewTicker(s.h.opts.KeepAlive)
	defer ticker.Stop()
	for {
		select {
		case m := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(m); err != nil {
				s.logger.Debug("websocket write failed", "error", err)
				s.cancel()
				return
			}
		case <-ticker.C:
			if s.legacy && s.acked.Load() {
				s.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := s.conn.WriteJSON(outMessage{Type: msgKeepAlive}); err != nil {
					s.cancel()
					return
				}
			}
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.cancel()
				return
			}
		case <-s.done:
			return
		}
	}
}

func errorsPayload(msg string) []map[string]string {
	return []map[string]string{{"message": msg}}
}

func graphqlErrors(err error) []gqlerrors.FormattedError {
	return []gqlerrors.FormattedError{{Message: err.Error()}}
}
