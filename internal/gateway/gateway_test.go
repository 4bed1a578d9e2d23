package gateway

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/hub-graphql-service/internal/broadcast"
	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/pubsub"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
	"github.com/UkralStul/hub-graphql-service/internal/storage/storagetest"
)

// syncBuffer - буфер для логов, безопасный для конкурентной записи
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	gw       *Gateway
	registry *pubsub.Registry
	backend  *storagetest.Mock
	store    *storage.Store
	logs     *syncBuffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logs := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	backend := storagetest.NewMock()
	registry := pubsub.NewRegistry([]string{"hubs"})
	t.Cleanup(registry.Close)

	return &fixture{
		gw:       New(registry, broadcast.New(registry, logger), logger),
		registry: registry,
		backend:  backend,
		store:    storage.New(backend),
		logs:     logs,
	}
}

type hubInput struct{ Title string }

func (in hubInput) Validate() error {
	if in.Title == "" {
		return Invalid("title", "required")
	}
	return nil
}

func (f *fixture) createHub(title string) Mutation[*domain.Hub] {
	return Mutation[*domain.Hub]{
		Name:  "addHub",
		Input: hubInput{Title: title},
		Write: func(ctx context.Context) (*domain.Hub, error) {
			return f.store.Hubs.Create(ctx, &domain.Hub{Title: title})
		},
		Affects: func(*domain.Hub) []broadcast.Refresh {
			return []broadcast.Refresh{broadcast.Refetch("hubs", f.store.Hubs, nil)}
		},
	}
}

func TestExecute_NoViewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub, err := f.registry.Subscribe("hubs", nil)
	require.NoError(t, err)

	_, err = Execute(ctx, f.gw, nil, f.createHub("Go"))

	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Zero(t, f.backend.Writes())
	assert.Zero(t, f.backend.Reads())
	select {
	case v := <-sub.C():
		t.Fatalf("unexpected publish %v", v)
	default:
	}
}

func TestExecute_ValidationStopsWrite(t *testing.T) {
	f := newFixture(t)

	_, err := Execute(context.Background(), f.gw, &domain.Viewer{ID: "u1"}, f.createHub(""))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "required", ve.Fields["title"])
	assert.Zero(t, f.backend.Writes())
}

func TestExecute_ReadYourWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub, err := f.registry.Subscribe("hubs", nil)
	require.NoError(t, err)

	hub, err := Execute(ctx, f.gw, &domain.Viewer{ID: "u1"}, f.createHub("Go"))
	require.NoError(t, err)

	select {
	case v := <-sub.C():
		hubs := v.([]*domain.Hub)
		require.Len(t, hubs, 1)
		assert.Equal(t, hub.ID, hubs[0].ID)
	case <-time.After(time.Second):
		t.Fatal("no view published")
	}
}

func TestExecute_StoreErrorPropagatesWithoutPublish(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("connection refused")
	f.backend.FailInsert(storage.Hubs, boom)

	sub, err := f.registry.Subscribe("hubs", nil)
	require.NoError(t, err)

	_, err = Execute(context.Background(), f.gw, &domain.Viewer{ID: "u1"}, f.createHub("Go"))
	require.ErrorIs(t, err, boom)

	var se *storage.Error
	assert.ErrorAs(t, err, &se)
	select {
	case v := <-sub.C():
		t.Fatalf("unexpected publish %v", v)
	default:
	}
}

func TestExecute_PublishErrorIsLoggedNotReturned(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.Subscribe("hubs", nil)
	require.NoError(t, err)

	f.backend.FailFind(storage.Hubs, errors.New("refetch failed"))

	hub, err := Execute(context.Background(), f.gw, &domain.Viewer{ID: "u1"}, f.createHub("Go"))
	require.NoError(t, err)
	require.NotNil(t, hub)

	assert.Contains(t, f.logs.String(), "broadcast failed")
	assert.Contains(t, f.logs.String(), "refetch failed")

	// запись не откатывается
	n, err := storage.New(f.backend.Backend).Hubs.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSubscribe_NoViewerReturnsNilStream(t *testing.T) {
	f := newFixture(t)

	ch, err := f.gw.Subscribe(context.Background(), nil, "hubs", nil)
	require.NoError(t, err)
	assert.Nil(t, ch)
	assert.Zero(t, f.registry.Len("hubs"))
}

func TestSubscribe_UnknownTopic(t *testing.T) {
	f := newFixture(t)

	_, err := f.gw.Subscribe(context.Background(), &domain.Viewer{ID: "u1"}, "ghost", nil)
	require.ErrorIs(t, err, pubsub.ErrUnknownTopic)
	assert.Contains(t, f.logs.String(), "subscribe failed")
}

func TestSubscribe_CancelUnregisters(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := f.gw.Subscribe(ctx, &domain.Viewer{ID: "u1"}, "hubs", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.registry.Len("hubs"))

	_, err = f.registry.Publish("hubs", "v1")
	require.NoError(t, err)
	assert.Equal(t, "v1", <-ch)

	cancel()
	assert.Eventually(t, func() bool { return f.registry.Len("hubs") == 0 }, time.Second, 10*time.Millisecond)

	_, open := <-ch
	assert.False(t, open)
}
