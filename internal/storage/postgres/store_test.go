package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

// newDryRunDB собирает SQL без подключения к базе
func newDryRunDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(postgres.Open("host=localhost user=test dbname=test sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestWhere_BuildsJSONBConditions(t *testing.T) {
	db := newDryRunDB(t)

	q, err := where(db.Model(&document{}), storage.UserChats, storage.Filter{"user": "u1"})
	require.NoError(t, err)

	var rows []document
	stmt := q.Find(&rows).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, "collection = $1")
	assert.Contains(t, sql, "data -> $2 @> $3::jsonb")
	assert.Equal(t, []any{storage.UserChats, "user", `"u1"`}, stmt.Vars)
}

func TestWhere_InAndID(t *testing.T) {
	db := newDryRunDB(t)

	q, err := where(db.Model(&document{}), storage.Users, storage.Filter{"id": storage.In{"a", "b"}})
	require.NoError(t, err)

	var rows []document
	sql := q.Find(&rows).Statement.SQL.String()
	assert.Contains(t, sql, "id IN ($2,$3)")
}
