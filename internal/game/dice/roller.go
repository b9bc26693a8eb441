package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every roll leaves a debug-level audit
// trail with notation, individual dice, modifier, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source exposes the underlying randomness source for callers that roll
// directly, e.g. initiative.
func (r *Roller) Source() Source { return r.src }

// Roll evaluates notation and logs the result.
func (r *Roller) Roll(notation string) (RollResult, error) {
	result, err := Roll(r.src, notation)
	if err != nil {
		return RollResult{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("notation", result.Notation),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result, nil
}

// Check performs a d20 check and logs the result.
func (r *Roller) Check(abilityMod, proficiency int, opts CheckOptions) CheckResult {
	result := D20Check(r.src, abilityMod, proficiency, opts)
	r.logger.Debug("d20 check",
		zap.Ints("rolls", result.Rolls),
		zap.Int("kept", result.Kept),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total),
		zap.Bool("advantage", result.Advantage),
		zap.Bool("disadvantage", result.Disadvantage),
		zap.Bool("crit_success", result.CritSuccess),
		zap.Bool("crit_failure", result.CritFailure),
	)
	return result
}
