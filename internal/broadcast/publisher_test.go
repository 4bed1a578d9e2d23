package broadcast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/pubsub"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
	"github.com/UkralStul/hub-graphql-service/internal/storage/inmemory"
)

func TestNotify_RefetchesAndPublishes(t *testing.T) {
	ctx := context.Background()
	store := storage.New(inmemory.New())
	registry := pubsub.NewRegistry([]string{"hubs"})
	p := New(registry, nil)

	sub, err := registry.Subscribe("hubs", nil)
	require.NoError(t, err)

	hub, err := store.Hubs.Create(ctx, &domain.Hub{Title: "Go"})
	require.NoError(t, err)

	require.NoError(t, p.Notify(ctx, Refetch("hubs", store.Hubs, nil)))

	select {
	case v := <-sub.C():
		hubs := v.([]*domain.Hub)
		require.Len(t, hubs, 1)
		assert.Equal(t, hub.ID, hubs[0].ID)
	case <-time.After(time.Second):
		t.Fatal("no view published")
	}
}

func TestNotify_FailedLoadDoesNotStopOtherTopics(t *testing.T) {
	ctx := context.Background()
	registry := pubsub.NewRegistry([]string{"a", "b"})
	p := New(registry, nil)

	subB, err := registry.Subscribe("b", nil)
	require.NoError(t, err)
	_, err = registry.Subscribe("a", nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = p.Notify(ctx,
		Refresh{Topic: "a", Load: func(context.Context) (any, error) { return nil, boom }},
		Refresh{Topic: "b", Load: func(context.Context) (any, error) { return "fresh", nil }},
	)
	require.Error(t, err)

	var pe *PublishError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "a", pe.Topic)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, "fresh", <-subB.C())
}

func TestNotify_UnknownTopic(t *testing.T) {
	p := New(pubsub.NewRegistry(nil), nil)

	err := p.Notify(context.Background(), Refresh{Topic: "ghost", Load: func(context.Context) (any, error) { return nil, nil }})
	assert.ErrorIs(t, err, pubsub.ErrUnknownTopic)
}

func TestNotify_SkipsTopicsWithoutSubscribers(t *testing.T) {
	p := New(pubsub.NewRegistry([]string{"users"}), nil)

	called := false
	err := p.Notify(context.Background(), Refresh{Topic: "users", Load: func(context.Context) (any, error) {
		called = true
		return nil, nil
	}})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestNotify_RefetchForIsScoped(t *testing.T) {
	ctx := context.Background()
	store := storage.New(inmemory.New())
	topic := pubsub.Keyed[domain.Comment]("comments", func(c *domain.Comment) string { return c.PostID })
	registry := pubsub.NewRegistry([]string{topic.Name})
	p := New(registry, nil)

	onP1, err := registry.Subscribe(topic.Name, topic.For("p1"))
	require.NoError(t, err)
	onP2, err := registry.Subscribe(topic.Name, topic.For("p2"))
	require.NoError(t, err)

	_, err = store.Comments.Create(ctx, &domain.Comment{PostID: "p1", Text: "first"})
	require.NoError(t, err)

	require.NoError(t, p.Notify(ctx, RefetchFor(topic.Name, "p1", store.Comments, storage.Filter{"post": "p1"})))

	got := (<-onP1.C()).([]*domain.Comment)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Text)

	select {
	case v := <-onP2.C():
		t.Fatalf("p2 subscriber got %v", v)
	default:
	}
}
