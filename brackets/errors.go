package brackets

import "errors"

// State machine and ledger errors. Callers classify them; none of them is retried.
var (
	ErrUnsupportedType       = errors.New("only single elimination brackets can be started")
	ErrNotEnoughParticipants = errors.New("a bracket needs at least two participants")
	ErrNotStarted            = errors.New("bracket is not started")
	ErrNotCompleted          = errors.New("bracket is not completed")
	ErrNoPendingMatch        = errors.New("no match is pending")
	ErrInvalidWinner         = errors.New("winner is not a player of the pending match")
	ErrResultAlreadyRecorded = errors.New("a result is already recorded for this match")
	ErrNoMatchAvailable      = errors.New("no pairing left in the current round")
	ErrBettingClosed         = errors.New("betting is closed for the pending match")
	ErrInvalidPlayer         = errors.New("player is not in the pending match")
	ErrInvalidAmount         = errors.New("bet amount must be positive")
	ErrInsufficientFunds     = errors.New("bet amount exceeds available points")
	ErrNotAGambler           = errors.New("user has not joined this bracket")
	ErrAdminCannotJoin       = errors.New("the bracket admin cannot join as a spectator")
	ErrAdminCannotBet        = errors.New("the bracket admin cannot bet")
)
