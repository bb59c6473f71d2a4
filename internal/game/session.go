package game

import (
	"sort"
	"sync"
	"time"

	"stacks-trivia-service/internal/domain"
)

// State is the lifecycle state of a session.
type State string

const (
	// StateLobby accepts joins and nothing else.
	StateLobby State = "LOBBY"
	// StateQuestion has one question open for answers.
	StateQuestion State = "QUESTION"
	// StateFinished is terminal; the leaderboard is final.
	StateFinished State = "FINISHED"
)

// Outbound broadcast types, delivered to every subscriber of a session.
const (
	EventPlayerJoined    = "player-joined"
	EventGameStarted     = "game-started"
	EventQuestionStarted = "question-started"
	EventGameOver        = "game-over"
)

// Event is a broadcast to all members of a session. Payload is one of the
// payload structs below, keyed by Type.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// PlayerJoined carries the full roster after a successful join.
type PlayerJoined struct {
	Players   []domain.PlayerInfo `json:"players"`
	NewPlayer domain.PlayerInfo   `json:"newPlayer"`
}

// GameStarted announces the transition out of the lobby.
type GameStarted struct {
	TotalQuestions int `json:"totalQuestions"`
}

// QuestionStarted opens a question for answers. QuestionNumber is 1-based.
type QuestionStarted struct {
	QuestionNumber int                   `json:"questionNumber"`
	Question       domain.PublicQuestion `json:"question"`
}

// GameOver carries the final ranking.
type GameOver struct {
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

// Timings groups the fixed presentation timings of a game.
type Timings struct {
	// QuestionWindow is how long each question stays open. A zero window
	// disables the auto-advance timer; an external scheduler must call
	// Advance instead.
	QuestionWindow time.Duration
	// StartDelay is the pause between the game-started announcement and the
	// first question. Zero reveals the first question synchronously.
	StartDelay time.Duration
}

// DefaultTimings matches the product defaults: 10s per question, 2s lead-in.
func DefaultTimings() Timings {
	return Timings{
		QuestionWindow: 10 * time.Second,
		StartDelay:     2 * time.Second,
	}
}

const (
	basePoints   = 100
	maxTimeBonus = 100
	// bonusDecayMs is how many elapsed milliseconds cost one bonus point.
	bonusDecayMs = 100
)

// Session is one complete run of the trivia competition, from lobby to
// finished leaderboard. All mutating operations serialize on a single mutex
// so join, start, submit and advance never interleave.
type Session struct {
	id        string
	hostID    string
	questions []domain.Question
	timings   Timings
	now       func() time.Time
	createdAt time.Time

	mu            sync.Mutex
	state         State
	current       int // -1 before start, len(questions) when finished
	questionStart time.Time
	participants  map[string]*domain.Participant
	joinOrder     []string
	subscribers   map[chan Event]struct{}
	revealTimer   *time.Timer
	advanceTimer  *time.Timer
	closed        bool
}

// NewSession builds a session in the lobby state. The questions slice is
// owned by the session and must already be shuffled.
func NewSession(id, hostID string, questions []domain.Question, timings Timings) *Session {
	return NewSessionWithClock(id, hostID, questions, timings, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id, hostID string, questions []domain.Question, timings Timings, now func() time.Time) *Session {
	return &Session{
		id:           id,
		hostID:       hostID,
		questions:    questions,
		timings:      timings,
		now:          now,
		createdAt:    now(),
		state:        StateLobby,
		current:      -1,
		participants: make(map[string]*domain.Participant),
		subscribers:  make(map[chan Event]struct{}),
	}
}

// ID returns the session token.
func (s *Session) ID() string { return s.id }

// HostID returns the identity bound at creation.
func (s *Session) HostID() string { return s.hostID }

// CreatedAt returns when the session was registered.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentIndex returns the active question index: -1 before start,
// len(questions) once finished.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// QuestionCount returns the length of the fixed question sequence.
func (s *Session) QuestionCount() int { return len(s.questions) }

// Join registers a participant while the session is in the lobby and
// broadcasts the updated roster. Joining twice with the same identity
// refreshes the address instead of adding a second entry.
func (s *Session) Join(participantID, address string) ([]domain.PlayerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLobby {
		return nil, domain.ErrSessionNotJoinable
	}

	if p, ok := s.participants[participantID]; ok {
		p.Address = address
	} else {
		s.participants[participantID] = &domain.Participant{
			ID:       participantID,
			Address:  address,
			JoinedAt: s.now(),
		}
		s.joinOrder = append(s.joinOrder, participantID)
	}

	roster := s.rosterLocked()
	s.broadcastLocked(Event{Type: EventPlayerJoined, Payload: PlayerJoined{
		Players:   roster,
		NewPlayer: domain.PlayerInfo{ID: participantID, Address: address},
	}})
	return roster, nil
}

// Start transitions the session out of the lobby, announces the game and
// schedules the reveal of the first question. Only the host may start.
func (s *Session) Start(callerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if callerID != s.hostID {
		return 0, domain.ErrUnauthorized
	}
	if s.state != StateLobby {
		return 0, domain.ErrInvalidState
	}

	s.state = StateQuestion
	s.current = 0
	s.questionStart = s.now()

	s.broadcastLocked(Event{Type: EventGameStarted, Payload: GameStarted{
		TotalQuestions: len(s.questions),
	}})

	if s.timings.StartDelay <= 0 {
		s.revealLocked()
	} else {
		s.revealTimer = time.AfterFunc(s.timings.StartDelay, s.revealFirst)
	}
	return len(s.questions), nil
}

func (s *Session) revealFirst() {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Superseded if the session moved on or was destroyed while waiting.
	if s.closed || s.state != StateQuestion || s.current != 0 {
		return
	}
	s.revealLocked()
}

func (s *Session) revealLocked() {
	s.broadcastLocked(Event{Type: EventQuestionStarted, Payload: QuestionStarted{
		QuestionNumber: s.current + 1,
		Question:       s.questions[s.current].Public(),
	}})
	s.armAdvanceLocked()
}

func (s *Session) armAdvanceLocked() {
	if s.timings.QuestionWindow <= 0 {
		return
	}
	expect := s.current
	s.advanceTimer = time.AfterFunc(s.timings.QuestionWindow, func() {
		s.advanceFrom(expect)
	})
}

// advanceFrom is the timer entry point. The expected-index guard absorbs
// duplicate firings and firings against a session that already moved on.
func (s *Session) advanceFrom(expect int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StateQuestion || s.current != expect {
		return
	}
	s.advanceLocked()
}

// Advance moves to the next question, or to the finished state at the end of
// the sequence. It is driven by the session's own timer but may equally be
// called by an external scheduler; calls against a finished or destroyed
// session are silently absorbed.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StateQuestion {
		return
	}
	if s.advanceTimer != nil {
		s.advanceTimer.Stop()
	}
	s.advanceLocked()
}

func (s *Session) advanceLocked() {
	s.current++
	if s.current >= len(s.questions) {
		s.state = StateFinished
		s.broadcastLocked(Event{Type: EventGameOver, Payload: GameOver{
			Leaderboard: s.leaderboardLocked(),
		}})
		return
	}
	s.questionStart = s.now()
	s.revealLocked()
}

// SubmitAnswer scores a participant's answer to the active question. The
// first submission per question wins; later ones fail with
// ErrDuplicateAnswer and leave score and history untouched.
func (s *Session) SubmitAnswer(participantID string, answerIndex int) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateQuestion {
		return domain.AnswerResult{}, domain.ErrInvalidState
	}
	p, ok := s.participants[participantID]
	if !ok {
		return domain.AnswerResult{}, domain.ErrUnknownParticipant
	}

	question := s.questions[s.current]
	for _, rec := range p.Answers {
		if rec.QuestionID == question.ID {
			return domain.AnswerResult{}, domain.ErrDuplicateAnswer
		}
	}

	elapsed := s.now().Sub(s.questionStart).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	correct := answerIndex == question.CorrectAnswer
	points := 0
	if correct {
		bonus := maxTimeBonus - int(elapsed/bonusDecayMs)
		if bonus < 0 {
			bonus = 0
		}
		points = basePoints + bonus
	}

	p.Answers = append(p.Answers, domain.AnswerRecord{
		QuestionID:   question.ID,
		AnswerIndex:  answerIndex,
		TimeMs:       elapsed,
		Correct:      correct,
		PointsEarned: points,
	})
	if correct {
		p.Score += points
	}

	return domain.AnswerResult{Correct: correct, Points: points}, nil
}

// Leaderboard ranks all participants, score descending, ties broken by join
// order. Rank is assigned by position: tied scores get distinct ranks, the
// earlier join ranking higher.
func (s *Session) Leaderboard() []domain.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaderboardLocked()
}

func (s *Session) leaderboardLocked() []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(s.joinOrder))
	for _, id := range s.joinOrder {
		p := s.participants[id]
		entries = append(entries, domain.LeaderboardEntry{
			Address: p.Address,
			Score:   p.Score,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func (s *Session) rosterLocked() []domain.PlayerInfo {
	roster := make([]domain.PlayerInfo, 0, len(s.joinOrder))
	for _, id := range s.joinOrder {
		p := s.participants[id]
		roster = append(roster, domain.PlayerInfo{ID: p.ID, Address: p.Address})
	}
	return roster
}

// Subscribe returns a channel that receives every broadcast for this session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(ev Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest update rather than let a slow client block
			// everyone in the room.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// Close stops the session's timers and disconnects all subscribers. Used by
// the registry when a session is destroyed; any timer firing that slips
// through is absorbed by the closed flag.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.revealTimer != nil {
		s.revealTimer.Stop()
	}
	if s.advanceTimer != nil {
		s.advanceTimer.Stop()
	}
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}
