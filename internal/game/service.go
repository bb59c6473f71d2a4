package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"stacks-trivia-service/internal/domain"
)

// sessionIDLength gives ~64^8 possible tokens, unguessable at any realistic
// session count.
const sessionIDLength = 8

// SessionStore abstracts how live sessions are tracked (in-memory, Redis
// liveness, etc). Implementations must be safe for concurrent use.
type SessionStore interface {
	Put(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string) bool
}

// BankRepository loads the canonical question bank (from cache/backing store).
type BankRepository interface {
	Bank(ctx context.Context) ([]domain.Question, error)
}

// Config carries the process-wide game settings.
type Config struct {
	// AdminSecret authorizes session creation. Exact-match comparison is the
	// entire trust boundary for the host role.
	AdminSecret string
	Timings     Timings
}

// Service is the session registry: it owns session identity and existence
// and hands out engine handles.
type Service struct {
	store SessionStore
	bank  BankRepository
	cfg   Config
	now   func() time.Time
	newID func() (string, error)
}

func NewService(store SessionStore, bank BankRepository, cfg Config) *Service {
	return NewServiceWithClock(store, bank, cfg, time.Now)
}

// NewServiceWithClock allows deterministic timestamps in tests.
func NewServiceWithClock(store SessionStore, bank BankRepository, cfg Config, now func() time.Time) *Service {
	return &Service{
		store: store,
		bank:  bank,
		cfg:   cfg,
		now:   now,
		newID: func() (string, error) { return gonanoid.New(sessionIDLength) },
	}
}

// CreateSession verifies the admin secret, shuffles a fresh copy of the
// question bank and registers a new lobby under an unguessable token.
func (s *Service) CreateSession(ctx context.Context, hostID, secret string) (*Session, error) {
	if secret != s.cfg.AdminSecret {
		return nil, domain.ErrUnauthorized
	}

	questions, err := s.bank.Bank(ctx)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	session := NewSessionWithClock(id, hostID, shuffled(questions), s.cfg.Timings, s.now)
	s.store.Put(session)
	return session, nil
}

// Session is a pure lookup; absence is not an error.
func (s *Service) Session(id string) (*Session, bool) {
	return s.store.Get(id)
}

// DestroySession stops the session's timers and removes it. Idempotent;
// reports whether the session existed.
func (s *Service) DestroySession(id string) bool {
	if session, ok := s.store.Get(id); ok {
		session.Close()
	}
	return s.store.Delete(id)
}

// Join adds a participant to a lobby and returns the updated roster.
func (s *Service) Join(sessionID, participantID, address string) ([]domain.PlayerInfo, error) {
	session, ok := s.store.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Join(participantID, address)
}

// Start begins the question sequence; only the session's host may call it.
// Returns the total question count.
func (s *Service) Start(sessionID, callerID string) (int, error) {
	session, ok := s.store.Get(sessionID)
	if !ok {
		return 0, domain.ErrSessionNotFound
	}
	return session.Start(callerID)
}

// SubmitAnswer scores an answer against the session's active question.
func (s *Service) SubmitAnswer(sessionID, participantID string, answerIndex int) (domain.AnswerResult, error) {
	session, ok := s.store.Get(sessionID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}
	return session.SubmitAnswer(participantID, answerIndex)
}

// Subscribe returns a channel of broadcasts for a session. The caller must
// invoke the returned cancel function.
func (s *Service) Subscribe(sessionID string) (<-chan Event, func(), error) {
	session, ok := s.store.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Leaderboard returns the current ranking; chiefly meaningful once finished.
func (s *Service) Leaderboard(sessionID string) ([]domain.LeaderboardEntry, error) {
	session, ok := s.store.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Leaderboard(), nil
}

// shuffled returns a uniformly shuffled copy; the bank itself is never
// reordered.
func shuffled(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, j := range rand.Perm(len(questions)) {
		out[i] = questions[j]
	}
	return out
}
