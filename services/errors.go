package services

import (
	"errors"
	"fmt"
)

// Categories. Every error returned by the services wraps exactly one of them,
// and handlers map them to HTTP status codes.
var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrValidationFailed   = errors.New("validation failed")
	ErrConflict           = errors.New("conflict with the current state")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
)

var (
	// Validation
	ErrInvalidMatchDate    = fmt.Errorf("%w: match date is required and must be YYYY-MM-DD", ErrValidationFailed)
	ErrInvalidStartTime    = fmt.Errorf("%w: start time must be HH:MM", ErrValidationFailed)
	ErrInvalidStatusFilter = fmt.Errorf("%w: unknown match status", ErrValidationFailed)
	ErrOpponentRequired    = fmt.Errorf("%w: an away player is required", ErrValidationFailed)
	ErrSelfPairing         = fmt.Errorf("%w: a player cannot play against themselves", ErrValidationFailed)
	ErrPlayerNotRegistered = fmt.Errorf("%w: player is not registered in this division", ErrValidationFailed)
	ErrNoValidSets         = fmt.Errorf("%w: at least one set with both scores is required", ErrValidationFailed)
	ErrInvalidSetScore     = fmt.Errorf("%w: set scores must be non-negative", ErrValidationFailed)
	ErrAnecdoteTooLong     = fmt.Errorf("%w: anecdote is limited to %d words", ErrValidationFailed, MaxAnecdoteWords)
	ErrInvalidDrinkCount   = fmt.Errorf("%w: drink counts must be non-negative", ErrValidationFailed)
	ErrCannotClaimOwnMatch = fmt.Errorf("%w: the home player cannot claim their own match", ErrValidationFailed)
	ErrInvalidPlayerID     = fmt.Errorf("%w: player ids must be positive", ErrValidationFailed)

	// Conflicts
	ErrDuplicatePairing    = fmt.Errorf("%w: duplicate pairing", ErrConflict)
	ErrMatchAlreadyClaimed = fmt.Errorf("%w: match already claimed", ErrConflict)
	ErrMatchNotEditable    = fmt.Errorf("%w: match is no longer editable", ErrConflict)

	// Lookups
	ErrMatchNotFound    = fmt.Errorf("%w: match", ErrNotFound)
	ErrPlayerNotFound   = fmt.Errorf("%w: player", ErrNotFound)
	ErrDivisionNotFound = fmt.Errorf("%w: division", ErrNotFound)
)
