package dice

import "errors"

// Sentinel errors for malformed roll requests. These indicate a bad request
// from the caller, not a game-rule rejection, and are returned immediately
// without touching the random source.
var (
	// ErrInvalidDieSize is returned when a die has fewer than one side.
	ErrInvalidDieSize = errors.New("dice: invalid die size")
	// ErrTooManyDice is returned when a roll exceeds the configured dice cap.
	ErrTooManyDice = errors.New("dice: too many dice")
	// ErrDieTooLarge is returned when a die exceeds the configured sides cap.
	ErrDieTooLarge = errors.New("dice: die too large")
	// ErrInvalidNotation is returned when a notation string does not match
	// the grammar <int>d<int>[(+|-)<int>].
	ErrInvalidNotation = errors.New("dice: invalid notation")
)
