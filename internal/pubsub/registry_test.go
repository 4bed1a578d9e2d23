package pubsub

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Owner string
	Text  string
}

func receive(t *testing.T, sub *Subscription) any {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("no value delivered")
		return nil
	}
}

func assertEmpty(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case v := <-sub.C():
		t.Fatalf("unexpected value %v", v)
	default:
	}
}

func TestRegistry_SubscribeUnknownTopic(t *testing.T) {
	r := NewRegistry([]string{"users"})

	_, err := r.Subscribe("nope", nil)
	require.ErrorIs(t, err, ErrUnknownTopic)

	_, err = r.Publish("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownTopic)
}

func TestRegistry_PublishDeliversToTopicOnly(t *testing.T) {
	r := NewRegistry([]string{"users", "hubs"})

	users, err := r.Subscribe("users", nil)
	require.NoError(t, err)
	hubs, err := r.Subscribe("hubs", nil)
	require.NoError(t, err)

	n, err := r.Publish("users", "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, "v1", receive(t, users))
	assertEmpty(t, hubs)
}

func TestRegistry_UnsubscribeIsIdempotent(t *testing.T) {
	r := NewRegistry([]string{"users"})

	sub, err := r.Subscribe("users", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len("users"))

	r.Unsubscribe(sub)
	assert.NotPanics(t, func() { r.Unsubscribe(sub) })
	assert.Equal(t, 0, r.Len("users"))

	_, ok := <-sub.C()
	assert.False(t, ok)

	n, err := r.Publish("users", "after")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRegistry_KeyedFilter(t *testing.T) {
	topic := Keyed[item]("comments", func(it *item) string { return it.Owner })
	r := NewRegistry([]string{topic.Name})

	s1, err := r.Subscribe(topic.Name, topic.For("k1"))
	require.NoError(t, err)
	s2, err := r.Subscribe(topic.Name, topic.For("k2"))
	require.NoError(t, err)

	view := []*item{{Owner: "k1", Text: "a"}, {Owner: "k2", Text: "b"}, {Owner: "k1", Text: "c"}}
	_, err = r.Publish(topic.Name, view)
	require.NoError(t, err)

	got1 := receive(t, s1).([]*item)
	got2 := receive(t, s2).([]*item)
	require.Len(t, got1, 2)
	require.Len(t, got2, 1)
	for _, it := range got1 {
		assert.Equal(t, "k1", it.Owner)
	}
	assert.Equal(t, "b", got2[0].Text)
}

func TestRegistry_KeyedFilter_EmptyViewStillDelivered(t *testing.T) {
	topic := Keyed[item]("comments", func(it *item) string { return it.Owner })
	r := NewRegistry([]string{topic.Name})

	sub, err := r.Subscribe(topic.Name, topic.For("k3"))
	require.NoError(t, err)

	_, err = r.Publish(topic.Name, []*item{{Owner: "k1"}})
	require.NoError(t, err)
	assert.Empty(t, receive(t, sub))
}

func TestRegistry_FilterSkipsForeignViewType(t *testing.T) {
	r := NewRegistry([]string{"posts"})

	sub, err := r.Subscribe("posts", Match(func(*item) bool { return true }))
	require.NoError(t, err)

	n, err := r.Publish("posts", "not a slice")
	require.NoError(t, err)
	assert.Zero(t, n)
	assertEmpty(t, sub)
}

func TestRegistry_SlowConsumerGetsLatest(t *testing.T) {
	r := NewRegistry([]string{"users"}, WithBuffer(1))

	sub, err := r.Subscribe("users", nil)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		_, err := r.Publish("users", i)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, receive(t, sub))
	assertEmpty(t, sub)
}

func TestRegistry_PreservesPublishOrder(t *testing.T) {
	r := NewRegistry([]string{"users"}, WithBuffer(100))

	sub, err := r.Subscribe("users", nil)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		_, err := r.Publish("users", i)
		require.NoError(t, err)
	}
	for i := 0; i < 50; i++ {
		assert.Equal(t, i, receive(t, sub))
	}
}

func TestRegistry_ConcurrentSubscribePublish(t *testing.T) {
	r := NewRegistry([]string{"users"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub, err := r.Subscribe("users", nil)
			if err != nil {
				return
			}
			r.Unsubscribe(sub)
		}()
		go func(i int) {
			defer wg.Done()
			_, _ = r.Publish("users", i)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len("users"))
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry([]string{"users"})

	sub, err := r.Subscribe("users", nil)
	require.NoError(t, err)

	r.Close()
	r.Close()

	_, ok := <-sub.C()
	assert.False(t, ok)

	_, err = r.Subscribe("users", nil)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = r.Publish("users", 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRegistry_ScopedPublishReachesOnlyItsKey(t *testing.T) {
	topic := Keyed[item]("messages", func(it *item) string { return it.Owner })
	r := NewRegistry([]string{topic.Name})

	s1, err := r.Subscribe(topic.Name, topic.For("c1"))
	require.NoError(t, err)
	s2, err := r.Subscribe(topic.Name, topic.For("c2"))
	require.NoError(t, err)

	n, err := r.Publish(topic.Name, Scoped{Key: "c1", View: []*item{{Owner: "c1", Text: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got := receive(t, s1).([]*item)
	require.Len(t, got, 1)
	assert.Equal(t, "hi", got[0].Text)
	assertEmpty(t, s2)
}

func TestKeyedTopic_Where(t *testing.T) {
	topic := Keyed[item]("user-posts", func(it *item) string { return it.Owner })
	filter := topic.Where("u1", func(it *item) bool { return it.Text == "article" })

	v, ok := filter([]*item{{Owner: "u1", Text: "article"}, {Owner: "u1", Text: "offer"}, {Owner: "u2", Text: "article"}})
	require.True(t, ok)
	require.Len(t, v.([]*item), 1)
	assert.Equal(t, "u1", topic.Key(v.([]*item)[0]))
}
