package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// notationRegex matches the supported grammar: <int>d<int>[(+|-)<int>],
// e.g. "2d6", "1d20+5", "4d8-2". Matching is done case-insensitively by
// lowercasing the input first.
var notationRegex = regexp.MustCompile(`^(\d+)d(\d+)([+-]\d+)?$`)

// Notation is a parsed dice expression ready to be rolled.
//
// Invariant after a successful Parse: Count >= 1 and Sides >= 1.
type Notation struct {
	Raw      string // original input string
	Count    int    // number of dice
	Sides    int    // faces per die
	Modifier int    // flat modifier (may be negative, zero when absent)
}

// String returns the canonical lowercase form of the notation, e.g. "2d6+3".
func (n Notation) String() string {
	if n.Modifier != 0 {
		return fmt.Sprintf("%dd%d%+d", n.Count, n.Sides, n.Modifier)
	}
	return fmt.Sprintf("%dd%d", n.Count, n.Sides)
}

// Parse parses a dice notation string of the exact grammar
// <int>d<int>[(+|-)<int>], case-insensitive. Whitespace is not tolerated.
//
// Precondition: expr must be non-empty.
// Postcondition: returns a Notation with Count >= 1 and Sides >= 1, or an
// error wrapping ErrInvalidNotation.
func Parse(expr string) (Notation, error) {
	s := strings.ToLower(expr)
	m := notationRegex.FindStringSubmatch(s)
	if m == nil {
		return Notation{}, fmt.Errorf("%w: %q (expected <count>d<sides>[+/-<mod>])", ErrInvalidNotation, expr)
	}

	count, err := strconv.Atoi(m[1])
	if err != nil {
		return Notation{}, fmt.Errorf("%w: bad die count in %q", ErrInvalidNotation, expr)
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil {
		return Notation{}, fmt.Errorf("%w: bad die sides in %q", ErrInvalidNotation, expr)
	}
	if count < 1 {
		return Notation{}, fmt.Errorf("%w: die count must be >= 1 in %q", ErrInvalidNotation, expr)
	}
	if sides < 1 {
		return Notation{}, fmt.Errorf("%w: die sides must be >= 1 in %q", ErrInvalidNotation, expr)
	}

	modifier := 0
	if m[3] != "" {
		modifier, err = strconv.Atoi(m[3])
		if err != nil {
			return Notation{}, fmt.Errorf("%w: bad modifier in %q", ErrInvalidNotation, expr)
		}
	}

	return Notation{Raw: expr, Count: count, Sides: sides, Modifier: modifier}, nil
}

// MustParse parses expr and panics on error. Useful for package-level constants.
//
// Precondition: expr must be a valid dice notation.
func MustParse(expr string) Notation {
	n, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for notation " + expr + ": " + err.Error())
	}
	return n
}
