package services

import (
	"errors"
	"fmt"

	"github.com/Nikman800/GambaGame/brackets"
	"github.com/Nikman800/GambaGame/repositories"
)

// Errors returned by services. Handlers map them to HTTP statuses.
var (
	ErrNotFound          = errors.New("requested resource not found")
	ErrForbidden         = errors.New("operation not allowed for the current user")
	ErrInvalidState      = errors.New("operation not allowed in the current bracket state")
	ErrInsufficientFunds = errors.New("insufficient points")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrValidationFailed  = errors.New("validation failed")
	ErrConflict          = errors.New("resource already exists")
)

// classify wraps lower-level errors into the service taxonomy, keeping the cause.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrBracketNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repositories.ErrBracketConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, brackets.ErrAdminCannotJoin),
		errors.Is(err, brackets.ErrAdminCannotBet):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	case errors.Is(err, brackets.ErrInsufficientFunds):
		return fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
	case errors.Is(err, brackets.ErrInvalidAmount):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	case errors.Is(err, brackets.ErrUnsupportedType),
		errors.Is(err, brackets.ErrNotEnoughParticipants),
		errors.Is(err, brackets.ErrNotStarted),
		errors.Is(err, brackets.ErrNotCompleted),
		errors.Is(err, brackets.ErrNoPendingMatch),
		errors.Is(err, brackets.ErrInvalidWinner),
		errors.Is(err, brackets.ErrResultAlreadyRecorded),
		errors.Is(err, brackets.ErrNoMatchAvailable),
		errors.Is(err, brackets.ErrBettingClosed),
		errors.Is(err, brackets.ErrInvalidPlayer),
		errors.Is(err, brackets.ErrNotAGambler):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return err
}
