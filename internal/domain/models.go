package domain

import "time"

// Question is one multiple-choice trivia question. The bank is loaded once
// at startup and never mutated.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Category      string   `json:"category"`
}

// PublicQuestion is the participant-facing view of a question. The correct
// option index is never sent over the wire.
type PublicQuestion struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// Public strips the question down to what participants may see.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{Text: q.Text, Options: q.Options}
}

// AnswerRecord captures a single submission. At most one exists per
// (participant, question); appended, never mutated.
type AnswerRecord struct {
	QuestionID   string `json:"questionId"`
	AnswerIndex  int    `json:"answerIndex"`
	TimeMs       int64  `json:"timeMs"`
	Correct      bool   `json:"correct"`
	PointsEarned int    `json:"pointsEarned"`
}

// Participant is one joined competitor within a session.
type Participant struct {
	ID       string
	Address  string
	Score    int
	Answers  []AnswerRecord
	JoinedAt time.Time
}

// PlayerInfo is the roster view of a participant: identity and address only,
// no scores.
type PlayerInfo struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

// AnswerResult is returned to the submitting participant only.
type AnswerResult struct {
	Correct bool `json:"correct"`
	Points  int  `json:"points"`
}

// LeaderboardEntry is one row of the final ranking.
type LeaderboardEntry struct {
	Address string `json:"address"`
	Score   int    `json:"score"`
	Rank    int    `json:"rank"`
}
