package combat

import "fmt"

// InvalidStateError reports a fatal internal-invariant violation, e.g. a
// turn index out of range or an active encounter with no living entries. It
// should never occur under correct Manager usage; callers must log/abort
// rather than continue with corrupted state.
type InvalidStateError struct {
	CombatID string
	Detail   string
}

// Error implements the error interface.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("combat %s: invalid state: %s", e.CombatID, e.Detail)
}
