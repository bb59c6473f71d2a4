package game_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"stacks-trivia-service/internal/domain"
	"stacks-trivia-service/internal/game"
	"stacks-trivia-service/internal/infra/memory"
)

const testSecret = "test-secret"

func newTestService(clock *fakeClock, questions []domain.Question) *game.Service {
	store := memory.NewSessionStore()
	bank := memory.NewBankRepository(memory.NewStaticBankLoader(questions), 5*time.Minute)
	cfg := game.Config{AdminSecret: testSecret, Timings: manualTimings()}
	return game.NewServiceWithClock(store, bank, cfg, clock.Now)
}

func TestCreateSessionChecksSecret(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newFakeClock(), testQuestions(2))

	if _, err := service.CreateSession(ctx, "host", "wrong"); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	session, err := service.CreateSession(ctx, "host", testSecret)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(session.ID()) != 8 {
		t.Fatalf("expected 8-char session token, got %q", session.ID())
	}
	if session.State() != game.StateLobby || session.CurrentIndex() != -1 {
		t.Fatalf("new session not in lobby: state=%s index=%d", session.State(), session.CurrentIndex())
	}
	if session.QuestionCount() != 2 {
		t.Fatalf("expected full bank copy, got %d questions", session.QuestionCount())
	}
	if session.HostID() != "host" {
		t.Fatalf("host identity not bound: %q", session.HostID())
	}
}

func TestConcurrentCreatesAreIndependent(t *testing.T) {
	const n = 10
	ctx := context.Background()
	service := newTestService(newFakeClock(), testQuestions(1))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		sessions []*game.Session
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session, err := service.CreateSession(ctx, fmt.Sprintf("host-%d", i), testSecret)
			if err != nil {
				t.Errorf("create %d: %v", i, err)
				return
			}
			mu.Lock()
			sessions = append(sessions, session)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	ids := make(map[string]struct{}, n)
	for _, session := range sessions {
		ids[session.ID()] = struct{}{}
	}
	if len(ids) != n {
		t.Fatalf("expected %d distinct session ids, got %d", n, len(ids))
	}

	// Each session progresses on its own; scoring one must not leak into
	// the others.
	first := sessions[0]
	if _, err := first.Join("p1", "addr-1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := first.Start(first.HostID()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := first.SubmitAnswer("p1", 1); err != nil {
		t.Fatalf("submit: %v", err)
	}
	for _, other := range sessions[1:] {
		if other.State() != game.StateLobby {
			t.Fatalf("unrelated session left lobby: %s", other.State())
		}
		if len(other.Leaderboard()) != 0 {
			t.Fatalf("score leaked across sessions")
		}
	}
}

func TestDestroySessionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newFakeClock(), testQuestions(1))

	session, err := service.CreateSession(ctx, "host", testSecret)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := session.ID()

	if !service.DestroySession(id) {
		t.Fatalf("expected destroy to report existing session")
	}
	if service.DestroySession(id) {
		t.Fatalf("expected second destroy to report absence")
	}
	if _, ok := service.Session(id); ok {
		t.Fatalf("destroyed session still resolvable")
	}
	if _, err := service.Join(id, "p1", "addr-1"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := service.SubmitAnswer(id, "p1", 0); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestEndToEndTwoPlayerGame(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	service := newTestService(clock, testQuestions(2))

	session, err := service.CreateSession(ctx, "host", testSecret)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := session.ID()

	if _, err := service.Join(id, "alice", "addr-alice"); err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if _, err := service.Join(id, "bob", "addr-bob"); err != nil {
		t.Fatalf("join bob: %v", err)
	}

	events, cancel, err := service.Subscribe(id)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	total, err := service.Start(id, "host")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 questions, got %d", total)
	}

	// Question 1: the correct index differs per shuffle, so read it back
	// from the broadcast and answer through the engine's own view.
	q1 := drainUntil(t, events, game.EventQuestionStarted)
	correct1 := correctIndex(t, testQuestions(2), q1.Question)

	clock.Advance(200 * time.Millisecond)
	res, err := service.SubmitAnswer(id, "alice", correct1)
	if err != nil {
		t.Fatalf("alice submit: %v", err)
	}
	if !res.Correct || res.Points != 198 {
		t.Fatalf("alice at 200ms: want 198 points, got %+v", res)
	}
	aliceTotal := res.Points

	if res, err = service.SubmitAnswer(id, "bob", wrongIndex(correct1)); err != nil {
		t.Fatalf("bob submit: %v", err)
	}
	if res.Correct || res.Points != 0 {
		t.Fatalf("bob's wrong answer scored: %+v", res)
	}

	session.Advance()

	q2 := drainUntil(t, events, game.EventQuestionStarted)
	if q2.QuestionNumber != 2 {
		t.Fatalf("expected question number 2, got %d", q2.QuestionNumber)
	}
	correct2 := correctIndex(t, testQuestions(2), q2.Question)

	if res, err = service.SubmitAnswer(id, "alice", correct2); err != nil {
		t.Fatalf("alice submit q2: %v", err)
	}
	aliceTotal += res.Points

	clock.Advance(time.Second)
	if res, err = service.SubmitAnswer(id, "bob", correct2); err != nil {
		t.Fatalf("bob submit q2: %v", err)
	}
	bobTotal := res.Points

	session.Advance()

	over := drainUntilGameOver(t, events)
	lb := over.Leaderboard
	if len(lb) != 2 {
		t.Fatalf("expected 2 leaderboard rows, got %d", len(lb))
	}
	if lb[0].Address != "addr-alice" || lb[0].Rank != 1 || lb[0].Score != aliceTotal {
		t.Fatalf("alice row wrong: %+v (want score %d)", lb[0], aliceTotal)
	}
	if lb[1].Address != "addr-bob" || lb[1].Rank != 2 || lb[1].Score != bobTotal {
		t.Fatalf("bob row wrong: %+v (want score %d)", lb[1], bobTotal)
	}
}

// drainUntil reads events until one of the wanted type appears.
func drainUntil(t *testing.T, events <-chan game.Event, wantType string) game.QuestionStarted {
	t.Helper()
	for {
		select {
		case ev := <-events:
			if ev.Type == wantType {
				payload, ok := ev.Payload.(game.QuestionStarted)
				if !ok {
					t.Fatalf("unexpected payload type %T", ev.Payload)
				}
				return payload
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", wantType)
		}
	}
}

func drainUntilGameOver(t *testing.T, events <-chan game.Event) game.GameOver {
	t.Helper()
	for {
		select {
		case ev := <-events:
			if ev.Type == game.EventGameOver {
				payload, ok := ev.Payload.(game.GameOver)
				if !ok {
					t.Fatalf("unexpected payload type %T", ev.Payload)
				}
				return payload
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for game-over")
		}
	}
}

// correctIndex maps a broadcast question back to its bank entry to recover
// the correct option, which broadcasts intentionally omit.
func correctIndex(t *testing.T, bank []domain.Question, public domain.PublicQuestion) int {
	t.Helper()
	for _, q := range bank {
		if q.Text == public.Text {
			return q.CorrectAnswer
		}
	}
	t.Fatalf("broadcast question %q not found in bank", public.Text)
	return -1
}

func wrongIndex(correct int) int {
	return (correct + 1) % 4
}
