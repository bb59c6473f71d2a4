package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"stacks-trivia-service/internal/game"
)

// SessionStore is a Redis-aware implementation of game.SessionStore.
// Notes:
//   - Sessions themselves stay in-process: the engine's timers and broadcast
//     channels cannot be serialized, so Redis only marks session liveness.
//   - The liveness keys let operators inspect live sessions and could be
//     extended to route cross-instance pub/sub.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*game.Session),
	}
}

func (s *SessionStore) Put(session *game.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()), "1", s.ttl).Err()
}

func (s *SessionStore) Get(id string) (*game.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	_ = s.client.Del(context.Background(), s.key(id)).Err()
	return true
}

func (s *SessionStore) key(id string) string {
	return "trivia:session:" + id
}
