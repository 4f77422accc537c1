package domain

import "errors"

var (
	// ErrParticipantNotFound is returned when a code does not resolve to an active participant.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrChallengeNotFound indicates an explicitly supplied challenge ID is invalid.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrNoActiveChallenge is returned when an operation needs an active challenge and none exists.
	ErrNoActiveChallenge = errors.New("no active challenge")
	// ErrQuestionNotFound indicates a question ID has no stored answer.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidGameType indicates an unknown game type tag on a bulk submission.
	ErrInvalidGameType = errors.New("invalid game type")
	// ErrEmptyAnswerList indicates a bulk submission with no answers.
	ErrEmptyAnswerList = errors.New("answer list is empty")
)
