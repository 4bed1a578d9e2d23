package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// Sessions - серверные сессии: id сессии -> id пользователя.
// Срок жизни продлевается при каждом обращении.
type Sessions struct {
	cache *ttlcache.Cache[string, string]
}

func NewSessions(ttl time.Duration) *Sessions {
	cache := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
	)
	go cache.Start()
	return &Sessions{cache: cache}
}

// Create открывает сессию и возвращает её id.
func (s *Sessions) Create(userID string) string {
	id := uuid.NewString()
	s.cache.Set(id, userID, ttlcache.DefaultTTL)
	return id
}

// Lookup возвращает пользователя сессии.
func (s *Sessions) Lookup(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	item := s.cache.Get(id)
	if item == nil {
		return "", false
	}
	return item.Value(), true
}

func (s *Sessions) Revoke(id string) {
	s.cache.Delete(id)
}

// Len - число активных сессий.
func (s *Sessions) Len() int {
	return s.cache.Len()
}

func (s *Sessions) Stop() {
	s.cache.Stop()
}
