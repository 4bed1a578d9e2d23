package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

func TestToBSON(t *testing.T) {
	got := toBSON(storage.Filter{
		"id":     storage.In{"a", "b"},
		"user":   "u1",
		"status": domain.ChatOpen,
	})

	assert.Equal(t, bson.M{"$in": []string{"a", "b"}}, got["_id"])
	assert.Equal(t, "u1", got["user"])
	assert.Equal(t, domain.ChatOpen, got["status"])
	_, hasID := got["id"]
	assert.False(t, hasID)
}

func TestToBSON_Empty(t *testing.T) {
	assert.Empty(t, toBSON(nil))
}

func TestEntityEncoding(t *testing.T) {
	uc := &domain.UserChat{
		Base:   domain.Base{ID: "uc1"},
		ChatID: "c1",
		UserID: "u1",
		Status: domain.ChatClosed,
	}
	raw, err := bson.Marshal(uc)
	assert.NoError(t, err)

	var m bson.M
	assert.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, "uc1", m["_id"])
	assert.Equal(t, "c1", m["chat"])
	assert.Equal(t, string(domain.ChatClosed), m["status"])

	var back domain.UserChat
	assert.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, uc.ID, back.ID)
	assert.Equal(t, uc.Status, back.Status)
}
