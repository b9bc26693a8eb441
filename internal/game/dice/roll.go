// Package dice implements the randomness core for the combat engine: strict
// notation parsing, capped multi-die rolls, d20 checks with advantage and
// disadvantage, and exact outcome distributions for small pools.
package dice

import "fmt"

// Limits caps the size of a single roll request. Requests beyond the caps are
// rejected as malformed input rather than clamped.
type Limits struct {
	MaxDice  int
	MaxSides int
}

// DefaultLimits returns the standard caps: 100 dice of up to 1000 sides.
func DefaultLimits() Limits {
	return Limits{MaxDice: 100, MaxSides: 1000}
}

// RollResult holds the full audit trail for one evaluated roll.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Notation string // original notation, e.g. "2d6+3"
	Dice     []int  // individual die results before modifier
	Modifier int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string, e.g. "2d6+3 → [4 5] +3 = 12".
func (r RollResult) String() string {
	return fmt.Sprintf("%s → %v %+d = %d", r.Notation, r.Dice, r.Modifier, r.Total())
}

// RollDie rolls a single die with the given number of sides.
//
// Precondition: src must be non-nil.
// Postcondition: result in [1, sides], or an error wrapping ErrInvalidDieSize.
func RollDie(src Source, sides int) (int, error) {
	if sides < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDieSize, sides)
	}
	return src.Intn(sides) + 1, nil
}

// RollMultiple rolls count dice of the given size, enforcing lim.
//
// Precondition: src must be non-nil.
// Postcondition: returns exactly count results each in [1, sides], or an
// error wrapping ErrInvalidDieSize, ErrTooManyDice, or ErrDieTooLarge.
func RollMultiple(src Source, count, sides int, lim Limits) ([]int, error) {
	if sides < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDieSize, sides)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: count %d must be >= 1", ErrTooManyDice, count)
	}
	if count > lim.MaxDice {
		return nil, fmt.Errorf("%w: %d exceeds cap %d", ErrTooManyDice, count, lim.MaxDice)
	}
	if sides > lim.MaxSides {
		return nil, fmt.Errorf("%w: %d exceeds cap %d", ErrDieTooLarge, sides, lim.MaxSides)
	}

	rolls := make([]int, count)
	for i := range rolls {
		rolls[i] = src.Intn(sides) + 1
	}
	return rolls, nil
}

// Roll parses notation and evaluates it under DefaultLimits.
//
// Precondition: src must be non-nil.
// Postcondition: returns a RollResult carrying the individual rolls and the
// signed modifier, or a parse/cap error.
func Roll(src Source, notation string) (RollResult, error) {
	n, err := Parse(notation)
	if err != nil {
		return RollResult{}, err
	}
	return RollParsed(src, n)
}

// RollParsed evaluates an already-parsed Notation under DefaultLimits.
func RollParsed(src Source, n Notation) (RollResult, error) {
	rolls, err := RollMultiple(src, n.Count, n.Sides, DefaultLimits())
	if err != nil {
		return RollResult{}, err
	}
	return RollResult{Notation: n.Raw, Dice: rolls, Modifier: n.Modifier}, nil
}
