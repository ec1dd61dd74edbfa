package game

import (
	"errors"
	"fmt"
)

// Category errors. Specific errors below wrap one of these, so callers can
// match either the exact failure or its category with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrGuard       = errors.New("guard violation")
	ErrNotFound    = errors.New("not found")
	ErrCapacity    = errors.New("capacity exceeded")
	ErrPersistence = errors.New("persistence failure")
)

var (
	ErrScriptNotFound    = fmt.Errorf("script %w", ErrNotFound)
	ErrSessionNotFound   = fmt.Errorf("session %w", ErrNotFound)
	ErrPlayerNotFound    = fmt.Errorf("player %w", ErrNotFound)
	ErrCharacterNotFound = fmt.Errorf("character %w", ErrNotFound)

	ErrSessionFull     = fmt.Errorf("%w: session is full", ErrCapacity)
	ErrBelowMinPlayers = fmt.Errorf("%w: below minimum player count", ErrCapacity)

	ErrSessionAlreadyStarted = fmt.Errorf("%w: session already started", ErrGuard)
	ErrSessionNotStarted     = fmt.Errorf("%w: session not started", ErrGuard)
	ErrSessionEnded          = fmt.Errorf("%w: session has ended", ErrGuard)
	ErrNotAllReady           = fmt.Errorf("%w: not all players are ready", ErrGuard)
	ErrAccusationsPending    = fmt.Errorf("%w: not all players have accused", ErrGuard)

	ErrEmptyAccusation  = fmt.Errorf("%w: accused character name is required", ErrValidation)
	ErrInvalidRound     = fmt.Errorf("%w: invalid round", ErrValidation)
	ErrRoundNotReached  = fmt.Errorf("%w: round not reached yet", ErrValidation)
	ErrCharacterTaken   = fmt.Errorf("%w: character already taken", ErrValidation)
	ErrNotVirtualPlayer = fmt.Errorf("%w: player is not virtual", ErrValidation)

	ErrCodeGeneration = fmt.Errorf("%w: could not generate a unique session code", ErrPersistence)
)
