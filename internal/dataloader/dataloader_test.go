package dataloader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/graph-gophers/dataloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
	"github.com/UkralStul/hub-graphql-service/internal/storage/storagetest"
)

func TestLoadBatchesKeys(t *testing.T) {
	ctx := context.Background()
	backend := storagetest.NewMock()
	store := storage.New(backend)

	var ids []string
	for i := 0; i < 3; i++ {
		u, err := store.Users.Create(ctx, &domain.User{Name: randomdata.SillyName()})
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}
	ids = append(ids, "missing")

	loaders := New(store, dataloader.WithWait(50*time.Millisecond))
	reads := backend.Reads()

	data, errs := loaders.Users.LoadMany(ctx, dataloader.NewKeysFromStrings(ids))()
	assert.Empty(t, errs)
	require.Len(t, data, len(ids))
	for i := 0; i < 3; i++ {
		u, ok := data[i].(*domain.User)
		require.True(t, ok)
		assert.Equal(t, ids[i], u.ID)
	}
	assert.Nil(t, data[3])

	// повторная загрузка берётся из кэша лоадера
	u, err := Load[domain.User](ctx, loaders.Users, ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], u.ID)
	assert.Equal(t, reads+1, backend.Reads())
}

func TestLoadEmptyID(t *testing.T) {
	loaders := New(storage.New(storagetest.NewMock()))
	h, err := Load[domain.Hub](context.Background(), loaders.Hubs, "")
	assert.NoError(t, err)
	assert.Nil(t, h)
}

func TestLoadError(t *testing.T) {
	backend := storagetest.NewMock()
	backend.FailFind(storage.Hubs, errors.New("offline"))
	loaders := New(storage.New(backend))

	_, err := Load[domain.Hub](context.Background(), loaders.Hubs, "h1")
	assert.ErrorContains(t, err, "offline")
}

func TestMiddleware(t *testing.T) {
	store := storage.New(storagetest.NewMock())
	assert.Nil(t, For(context.Background()))

	var seen *Loaders
	h := Middleware(store, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = For(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/query", nil))
	require.NotNil(t, seen)
	assert.NotNil(t, seen.Users)
}
