package dice

// Default critical thresholds for d20 checks.
const (
	DefaultCritSuccessAt = 20
	DefaultCritFailureAt = 1
)

// CheckOptions configures a d20 check. The zero value is a plain single roll
// with the default critical thresholds.
type CheckOptions struct {
	// Advantage rolls two d20s and keeps the higher.
	Advantage bool
	// Disadvantage rolls two d20s and keeps the lower. Requesting both
	// Advantage and Disadvantage cancels to a single roll.
	Disadvantage bool
	// CritSuccessAt is the natural roll at or above which the check is a
	// critical success. Zero means DefaultCritSuccessAt.
	CritSuccessAt int
	// CritFailureAt is the natural roll at or below which the check is a
	// critical failure. Zero means DefaultCritFailureAt.
	CritFailureAt int
}

// CheckResult holds the outcome of a d20 check.
//
// Invariant: Kept is an element of Rolls; Total == Kept + Modifier.
type CheckResult struct {
	Rolls        []int // one entry, or two under advantage/disadvantage
	Kept         int   // the natural d20 result that counts
	Modifier     int   // ability modifier + proficiency bonus
	Total        int   // Kept + Modifier
	CritSuccess  bool  // natural roll >= the success threshold
	CritFailure  bool  // natural roll <= the failure threshold
	Advantage    bool  // true when two dice were rolled keeping the higher
	Disadvantage bool  // true when two dice were rolled keeping the lower
}

// Meets reports whether the check total meets or beats dc. Critical
// classification is independent of the DC comparison.
func (r CheckResult) Meets(dc int) bool {
	return r.Total >= dc
}

// D20Check rolls a d20 check with the given ability modifier and proficiency
// bonus. Under advantage (or disadvantage) two dice are rolled and the max
// (or min) is kept; simultaneous advantage and disadvantage cancel to a
// single die. Critical success/failure is classified from the kept natural
// roll against the configured thresholds, never from the modified total.
//
// Precondition: src must be non-nil.
// Postcondition: CheckResult invariant holds.
func D20Check(src Source, abilityMod, proficiency int, opts CheckOptions) CheckResult {
	critAt := opts.CritSuccessAt
	if critAt == 0 {
		critAt = DefaultCritSuccessAt
	}
	fumbleAt := opts.CritFailureAt
	if fumbleAt == 0 {
		fumbleAt = DefaultCritFailureAt
	}

	advantage := opts.Advantage && !opts.Disadvantage
	disadvantage := opts.Disadvantage && !opts.Advantage

	rolls := []int{src.Intn(20) + 1}
	if advantage || disadvantage {
		rolls = append(rolls, src.Intn(20)+1)
	}

	kept := rolls[0]
	if advantage {
		kept = max(rolls[0], rolls[1])
	} else if disadvantage {
		kept = min(rolls[0], rolls[1])
	}

	modifier := abilityMod + proficiency
	return CheckResult{
		Rolls:        rolls,
		Kept:         kept,
		Modifier:     modifier,
		Total:        kept + modifier,
		CritSuccess:  kept >= critAt,
		CritFailure:  kept <= fumbleAt,
		Advantage:    advantage,
		Disadvantage: disadvantage,
	}
}
