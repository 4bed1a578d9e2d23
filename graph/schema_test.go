package graph

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/hub-graphql-service/internal/auth"
	"github.com/UkralStul/hub-graphql-service/internal/broadcast"
	"github.com/UkralStul/hub-graphql-service/internal/dataloader"
	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/gateway"
	"github.com/UkralStul/hub-graphql-service/internal/pubsub"
	"github.com/UkralStul/hub-graphql-service/internal/service"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
	"github.com/UkralStul/hub-graphql-service/internal/storage/inmemory"
)

type fixture struct {
	schema   graphql.Schema
	store    *storage.Store
	registry *pubsub.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.New(inmemory.New())
	registry := pubsub.NewRegistry(service.Topics())
	t.Cleanup(registry.Close)

	gw := gateway.New(registry, broadcast.New(registry, logger), logger)
	schema, err := NewSchema(NewResolver(service.New(store, gw, nil, logger), logger))
	require.NoError(t, err)
	return &fixture{schema: schema, store: store, registry: registry}
}

func (f *fixture) user(t *testing.T, name string) *domain.Viewer {
	t.Helper()
	u, err := f.store.Users.Create(context.Background(), &domain.User{Name: name, Email: name + "@example.com"})
	require.NoError(t, err)
	return &domain.Viewer{ID: u.ID, Name: u.Name}
}

func (f *fixture) do(ctx context.Context, query string, vars map[string]interface{}) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         f.schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        ctx,
	})
}

func as(v *domain.Viewer) context.Context {
	return auth.WithViewer(context.Background(), v)
}

func data(t *testing.T, res *graphql.Result) map[string]interface{} {
	t.Helper()
	require.Empty(t, res.Errors)
	m, ok := res.Data.(map[string]interface{})
	require.True(t, ok, "data: %#v", res.Data)
	return m
}

func TestQueriesWithoutViewerAreNull(t *testing.T) {
	f := newFixture(t)
	got := data(t, f.do(context.Background(), `{ allUsers { id } allStatus countUsers getPost(id: "x") { id } }`, nil))

	assert.Nil(t, got["allUsers"])
	assert.Nil(t, got["allStatus"])
	assert.Nil(t, got["countUsers"])
	assert.Nil(t, got["getPost"])
}

func TestMutationWithoutViewerIsFalse(t *testing.T) {
	f := newFixture(t)
	got := data(t, f.do(context.Background(),
		`mutation { addHub(title: "Go", description: "d", slogan: "s", status: PUBLISHED) }`, nil))

	assert.Equal(t, false, got["addHub"])
	n, err := f.store.Hubs.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestValidationErrorCarriesFields(t *testing.T) {
	f := newFixture(t)
	v := f.user(t, "alice")

	res := f.do(as(v), `mutation { addHub(title: "", description: "d", slogan: "s", status: PUBLISHED) }`, nil)
	require.Len(t, res.Errors, 1)
	ext := res.Errors[0].Extensions
	assert.Equal(t, CodeBadUserInput, ext["code"])
	assert.Contains(t, ext["fields"], "title")
}

func TestMutationThenQueryWithRelations(t *testing.T) {
	f := newFixture(t)
	v := f.user(t, "alice")
	ctx := as(v)

	got := data(t, f.do(ctx, `mutation { addHub(title: "Go", description: "d", slogan: "s", status: PUBLISHED) }`, nil))
	require.Equal(t, true, got["addHub"])
	hub, err := f.store.Hubs.FindOne(ctx, storage.Filter{"title": "Go"})
	require.NoError(t, err)

	got = data(t, f.do(ctx, `mutation($hub: ID) { addPost(type: ARTICLE, title: "Hello", hub: $hub) }`,
		map[string]interface{}{"hub": hub.ID}))
	require.Equal(t, true, got["addPost"])

	// лоадеры запроса и прямое чтение дают одинаковый результат
	for _, qctx := range []context.Context{ctx, dataloader.WithLoaders(ctx, dataloader.New(f.store))} {
		got = data(t, f.do(qctx, `{ allPosts(type: ARTICLE) { title status createdAt author { name } hub { title } } }`, nil))
		posts := got["allPosts"].([]interface{})
		require.Len(t, posts, 1)
		post := posts[0].(map[string]interface{})
		assert.Equal(t, "Hello", post["title"])
		assert.Equal(t, "MODERATION", post["status"])
		assert.NotEmpty(t, post["createdAt"])
		assert.Equal(t, map[string]interface{}{"name": "alice"}, post["author"])
		assert.Equal(t, map[string]interface{}{"title": "Go"}, post["hub"])
	}
}

func TestEmptyListIsNotNull(t *testing.T) {
	f := newFixture(t)
	v := f.user(t, "alice")

	got := data(t, f.do(as(v), `{ allHubs { id } }`, nil))
	assert.Equal(t, []interface{}{}, got["allHubs"])
}

func TestOpenUserChat(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.user(t, "bob")

	got := data(t, f.do(as(alice), `mutation { openUserChat(name: "bob") { status interlocutor { name } chat { type } } }`, nil))
	assert.Equal(t, map[string]interface{}{
		"status":       "OPEN_CHAT",
		"interlocutor": map[string]interface{}{"name": "bob"},
		"chat":         map[string]interface{}{"type": "USER_CHAT"},
	}, got["openUserChat"])

	res := f.do(as(alice), `mutation { openUserChat(name: "alice") { id } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeBadUserInput, res.Errors[0].Extensions["code"])
}

func TestSubscriptionDeliversRefetchedView(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	post, err := f.store.Posts.Create(context.Background(), &domain.Post{AuthorID: alice.ID, Title: "p", Type: domain.PostArticle})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(as(alice))
	defer cancel()
	results := graphql.Subscribe(graphql.Params{
		Schema:         f.schema,
		RequestString:  `subscription($id: ID!) { comments(id: $id) { text user { name } } }`,
		VariableValues: map[string]interface{}{"id": post.ID},
		Context:        ctx,
	})
	require.Eventually(t, func() bool { return f.registry.Len("comments") == 1 }, time.Second, 5*time.Millisecond)

	got := data(t, f.do(as(alice), `mutation($id: ID!) { addComment(post: $id, text: "hi") }`,
		map[string]interface{}{"id": post.ID}))
	require.Equal(t, true, got["addComment"])

	select {
	case res := <-results:
		assert.Equal(t, []interface{}{
			map[string]interface{}{"text": "hi", "user": map[string]interface{}{"name": "alice"}},
		}, data(t, res)["comments"])
	case <-time.After(time.Second):
		t.Fatal("no subscription result")
	}

	cancel()
	for range results {
	}
	require.Eventually(t, func() bool { return f.registry.Len("comments") == 0 }, time.Second, 5*time.Millisecond)
}

func TestSubscriptionWithoutViewerIsSingleNull(t *testing.T) {
	f := newFixture(t)
	for field, query := range map[string]string{
		"users":     `subscription { users { id } }`,
		"languages": `subscription { languages { code flag { name } } }`,
		"comments":  `subscription { comments(id: "p1") { text } }`,
	} {
		t.Run(field, func(t *testing.T) {
			results := graphql.Subscribe(graphql.Params{
				Schema:        f.schema,
				RequestString: query,
				Context:       context.Background(),
			})

			var all []*graphql.Result
			for res := range results {
				all = append(all, res)
			}
			require.Len(t, all, 1)
			got := data(t, all[0])
			assert.Contains(t, got, field)
			assert.Nil(t, got[field])
		})
	}
	assert.Zero(t, f.registry.Len("users"))
	assert.Zero(t, f.registry.Len("comments"))
}

func TestLanguageWithFlag(t *testing.T) {
	f := newFixture(t)
	v := f.user(t, "alice")
	flag, err := f.store.Icons.Create(context.Background(), &domain.Icon{Name: "de", Path: "/uploads/de.svg", Type: domain.IconFlag})
	require.NoError(t, err)

	got := data(t, f.do(as(v), `mutation($flag: ID!) { addLanguage(code: "de", title: "Deutsch", flag: $flag) }`,
		map[string]interface{}{"flag": flag.ID}))
	require.Equal(t, true, got["addLanguage"])

	got = data(t, f.do(as(v), `{ allLanguages { code title flag { name } } }`, nil))
	assert.Equal(t, []interface{}{
		map[string]interface{}{"code": "de", "title": "Deutsch", "flag": map[string]interface{}{"name": "de"}},
	}, got["allLanguages"])

	got = data(t, f.do(context.Background(), `{ allLanguages { code } }`, nil))
	assert.Nil(t, got["allLanguages"])
}

func TestEditMissingEntityIsOpaqueFailure(t *testing.T) {
	f := newFixture(t)
	v := f.user(t, "alice")

	res := f.do(as(v), `mutation { editHub(id: "missing", title: "Go") }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "operation failed", res.Errors[0].Message)
	assert.Equal(t, CodeInternal, res.Errors[0].Extensions["code"])
}

func TestChatMessagesHiddenFromOutsiders(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.user(t, "bob")
	eve := f.user(t, "eve")

	got := data(t, f.do(as(alice), `mutation { openUserChat(name: "bob") { chat { id } } }`, nil))
	chatID := got["openUserChat"].(map[string]interface{})["chat"].(map[string]interface{})["id"]
	vars := map[string]interface{}{"id": chatID}
	got = data(t, f.do(as(alice), `mutation($id: ID!) { addUserChatMessage(id: $id, text: "hi") }`, vars))
	require.Equal(t, true, got["addUserChatMessage"])

	got = data(t, f.do(as(alice), `query($id: ID!) { allChatMessages(id: $id) { text } }`, vars))
	assert.Equal(t, []interface{}{map[string]interface{}{"text": "hi"}}, got["allChatMessages"])

	res := f.do(as(eve), `query($id: ID!) { allChatMessages(id: $id) { text } }`, vars)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeForbidden, res.Errors[0].Extensions["code"])

	// список чатов виден всем, переписка - только участникам
	got = data(t, f.do(as(eve), `{ allChats { messages { text } } }`, nil))
	assert.Equal(t, []interface{}{map[string]interface{}{"messages": nil}}, got["allChats"])
}
