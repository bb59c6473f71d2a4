package domain

import "errors"

var (
	// ErrUnauthorized is returned for a wrong admin secret or a non-host
	// calling a host-only operation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionNotFound is returned when no live session has the given id.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrSessionNotJoinable is returned for a join attempted after the lobby.
	ErrSessionNotJoinable = errors.New("game already started")
	// ErrInvalidState is returned when an operation is attempted outside its
	// valid state.
	ErrInvalidState = errors.New("operation not valid in current state")
	// ErrUnknownParticipant is returned when a submitter never joined.
	ErrUnknownParticipant = errors.New("participant not found in session")
	// ErrDuplicateAnswer is returned for a second submission to the same
	// question; the first submission wins.
	ErrDuplicateAnswer = errors.New("answer already submitted for this question")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
)
