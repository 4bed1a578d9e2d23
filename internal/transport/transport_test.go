package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/hub-graphql-service/graph"
	"github.com/UkralStul/hub-graphql-service/internal/auth"
	"github.com/UkralStul/hub-graphql-service/internal/broadcast"
	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/gateway"
	"github.com/UkralStul/hub-graphql-service/internal/pubsub"
	"github.com/UkralStul/hub-graphql-service/internal/service"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
	"github.com/UkralStul/hub-graphql-service/internal/storage/inmemory"
	"github.com/UkralStul/hub-graphql-service/internal/upload"
)

// tokens - Authenticator для тестов: токен равен имени пользователя.
type tokens map[string]*domain.Viewer

func (t tokens) FromToken(_ context.Context, token string) *domain.Viewer { return t[token] }

type fixture struct {
	server   *httptest.Server
	store    *storage.Store
	registry *pubsub.Registry
	alice    *domain.Viewer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.New(inmemory.New())
	registry := pubsub.NewRegistry(service.Topics())
	t.Cleanup(registry.Close)

	files, err := upload.NewDisk(t.TempDir(), "/uploads", 1<<20, []string{"image/*"})
	require.NoError(t, err)
	gw := gateway.New(registry, broadcast.New(registry, logger), logger)
	schema, err := graph.NewSchema(graph.NewResolver(service.New(store, gw, files, logger), logger))
	require.NoError(t, err)

	u, err := store.Users.Create(context.Background(), &domain.User{Name: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	alice := &domain.Viewer{ID: u.ID, Name: u.Name}

	h := New(schema, Options{
		KeepAlive:   time.Second,
		InitTimeout: 200 * time.Millisecond,
		Auth:        tokens{"alice": alice},
	}, logger)

	// HTTP-запросы с заголовком X-User выполняются от имени alice
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-User") == "alice" {
			r = r.WithContext(auth.WithViewer(r.Context(), alice))
		}
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return &fixture{server: srv, store: store, registry: registry, alice: alice}
}

type response struct {
	Data   map[string]interface{}   `json:"data"`
	Errors []map[string]interface{} `json:"errors"`
}

func (f *fixture) send(t *testing.T, req *http.Request) (int, response) {
	t.Helper()
	req.Header.Set("X-User", "alice")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var out response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func (f *fixture) post(t *testing.T, body string) (int, response) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.server.URL, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return f.send(t, req)
}

func (f *fixture) get(t *testing.T, query string) (int, response) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.server.URL+"?query="+url.QueryEscape(query), nil)
	require.NoError(t, err)
	return f.send(t, req)
}

func TestPostJSON(t *testing.T) {
	f := newFixture(t)

	status, res := f.post(t, `{"query":"mutation($t: String!) { addHub(title: $t, description: \"d\", slogan: \"s\", status: PUBLISHED) }","variables":{"t":"Go"}}`)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, res.Errors)
	assert.Equal(t, true, res.Data["addHub"])

	status, res = f.post(t, `{"query":"{ allHubs { title } }"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{map[string]interface{}{"title": "Go"}}, res.Data["allHubs"])
}

func TestGetQuery(t *testing.T) {
	f := newFixture(t)

	status, res := f.get(t, `{ countUsers }`)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, res.Data["countUsers"])
}

func TestGetMutationIsNotAllowed(t *testing.T) {
	f := newFixture(t)

	status, res := f.get(t, `mutation { logout }`)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	require.Len(t, res.Errors, 1)
}

func TestSubscriptionOverHTTPIsRejected(t *testing.T) {
	f := newFixture(t)

	status, res := f.post(t, `{"query":"subscription { users { id } }"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0]["message"], "websocket")
}

func TestMalformedBody(t *testing.T) {
	f := newFixture(t)

	status, _ := f.post(t, `{"query":`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.post(t, `{"query":"{ allUsers { id "}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMultipartUpload(t *testing.T) {
	f := newFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("operations", `{"query":"mutation($f: Upload!) { addImage(file: $f) }","variables":{"f":null}}`))
	require.NoError(t, mw.WriteField("map", `{"0":["variables.f"]}`))
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="0"; filename="dot.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, f.server.URL, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	status, res := f.send(t, req)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, res.Errors)
	assert.Equal(t, true, res.Data["addImage"])

	img, err := f.store.Images.FindOne(context.Background(), storage.Filter{"name": "dot.png"})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.Mimetype)
}

func TestPlaceUploadInList(t *testing.T) {
	req := &Request{Variables: map[string]interface{}{"files": []interface{}{nil, nil}}}

	require.NoError(t, req.place("variables.files.1", nil))
	assert.ErrorIs(t, req.place("variables.files.5", nil), ErrBadRequest)
	assert.ErrorIs(t, req.place("files.0", nil), ErrBadRequest)
}

func TestOperation(t *testing.T) {
	req := &Request{Query: `query A { allUsers { id } } subscription B { users { id } }`, OperationName: "B"}
	op, err := req.Operation()
	require.NoError(t, err)
	assert.EqualValues(t, "subscription", op)

	req.OperationName = ""
	_, err = req.Operation()
	assert.ErrorIs(t, err, ErrBadRequest)
}

// === websocket ===

func (f *fixture) dial(t *testing.T, protocol string) *websocket.Conn {
	t.Helper()
	d := websocket.Dialer{Subprotocols: []string{protocol}}
	conn, _, err := d.Dial("ws"+strings.TrimPrefix(f.server.URL, "http"), nil)
	require.NoError(t, err)
	require.Equal(t, protocol, conn.Subprotocol())
	t.Cleanup(func() { conn.Close() })
	return conn
}

type wsMessage struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func read(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m wsMessage
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func write(t *testing.T, conn *websocket.Conn, id, typ string, payload interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"id": id, "type": typ, "payload": payload}))
}

func TestWebsocketSubscription(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, protocolTransportWS)

	write(t, conn, "", msgConnectionInit, map[string]string{"authToken": "alice"})
	assert.Equal(t, msgConnectionAck, read(t, conn).Type)

	write(t, conn, "1", msgSubscribe, Request{Query: `subscription { users { name } }`})
	require.Eventually(t, func() bool { return f.registry.Len(service.TopicUsers) == 1 }, time.Second, 5*time.Millisecond)

	write(t, conn, "2", msgSubscribe, Request{
		Query: `mutation($in: RegisterInput!) { register(registerInput: $in) { name } }`,
		Variables: map[string]interface{}{"in": map[string]interface{}{
			"name": "carol", "email": "carol@example.com", "password": "secret", "confirmPassword": "secret",
		}},
	})

	// сообщения разных операций приходят в произвольном порядке
	var names []interface{}
	var registered, completed bool
	for !(registered && completed && names != nil) {
		m := read(t, conn)
		switch {
		case m.ID == "2" && m.Type == msgNext:
			var res response
			require.NoError(t, json.Unmarshal(m.Payload, &res))
			assert.Equal(t, map[string]interface{}{"name": "carol"}, res.Data["register"])
			registered = true
		case m.ID == "2" && m.Type == msgComplete:
			completed = true
		case m.ID == "1" && m.Type == msgNext:
			var res response
			require.NoError(t, json.Unmarshal(m.Payload, &res))
			for _, u := range res.Data["users"].([]interface{}) {
				names = append(names, u.(map[string]interface{})["name"])
			}
		default:
			t.Fatalf("unexpected message %+v", m)
		}
	}
	assert.ElementsMatch(t, []interface{}{"alice", "carol"}, names)

	write(t, conn, "1", msgComplete, nil)
	require.Eventually(t, func() bool { return f.registry.Len(service.TopicUsers) == 0 }, time.Second, 5*time.Millisecond)
}

func TestWebsocketSubscribeBeforeInit(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, protocolTransportWS)

	write(t, conn, "1", msgSubscribe, Request{Query: `subscription { users { id } }`})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, closeUnauthorized), "got %v", err)
}

func TestWebsocketForbiddenToken(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, protocolTransportWS)

	write(t, conn, "", msgConnectionInit, map[string]string{"authToken": "mallory"})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, closeForbidden), "got %v", err)
}

func TestWebsocketInitTimeout(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, protocolTransportWS)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, closeInitTimeout), "got %v", err)
}

func TestWebsocketDuplicateID(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, protocolTransportWS)

	write(t, conn, "", msgConnectionInit, map[string]string{"authToken": "alice"})
	require.Equal(t, msgConnectionAck, read(t, conn).Type)

	write(t, conn, "1", msgSubscribe, Request{Query: `subscription { users { id } }`})
	write(t, conn, "1", msgSubscribe, Request{Query: `subscription { users { id } }`})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, closeDuplicateID), "got %v", err)
}

func TestWebsocketLegacyProtocol(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, protocolGraphQLWS)

	write(t, conn, "", msgConnectionInit, nil)
	assert.Equal(t, msgConnectionAck, read(t, conn).Type)
	assert.Equal(t, msgKeepAlive, read(t, conn).Type)

	// анонимная подписка - один пустой результат и завершение
	write(t, conn, "1", msgStart, Request{Query: `subscription { users { id } }`})
	m := read(t, conn)
	for m.Type == msgKeepAlive {
		m = read(t, conn)
	}
	require.Equal(t, msgData, m.Type)
	assert.JSONEq(t, `{"data":{"users":null}}`, string(m.Payload))

	m = read(t, conn)
	for m.Type == msgKeepAlive {
		m = read(t, conn)
	}
	assert.Equal(t, msgComplete, m.Type)
	assert.Equal(t, "1", m.ID)
}
