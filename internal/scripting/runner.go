package scripting

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/dice"
)

// Runner executes the Lua effect hooks declared on item and spell
// definitions. A hook is a short script that reads and reassigns the global
// `amount` (the rolled hit point magnitude); the engine.* helpers expose the
// dice roller to it.
//
// Each execution gets a fresh sandboxed VM, so a misbehaving hook can never
// poison later ones. Runner is safe for concurrent use.
type Runner struct {
	roller    *dice.Roller
	logger    *zap.Logger
	instLimit int
}

// NewRunner creates a Runner.
//
// Precondition: roller and logger must be non-nil.
func NewRunner(roller *dice.Roller, logger *zap.Logger, instLimit int) *Runner {
	return &Runner{
		roller:    roller,
		logger:    logger,
		instLimit: instLimit,
	}
}

// AdjustAmount runs script with the global `amount` set and returns the
// value the script left in it, floored at zero. On any script failure the
// original amount is returned alongside the error so the caller can keep
// resolving.
//
// Postcondition: the returned amount is >= 0 even when err is non-nil.
func (r *Runner) AdjustAmount(script string, amount int) (int, error) {
	L := NewSandboxedState(r.instLimit)
	defer L.Close()

	r.registerEngine(L)
	L.SetGlobal("amount", lua.LNumber(amount))

	if err := L.DoString(script); err != nil {
		return amount, fmt.Errorf("scripting: hook failed: %w", err)
	}

	v := L.GetGlobal("amount")
	n, ok := v.(lua.LNumber)
	if !ok {
		return amount, fmt.Errorf("scripting: hook left a non-numeric amount (%s)", v.Type())
	}
	adjusted := int(math.Floor(float64(n)))
	if adjusted < 0 {
		adjusted = 0
	}
	r.logger.Debug("effect hook ran",
		zap.Int("amount", amount),
		zap.Int("adjusted", adjusted),
	)
	return adjusted, nil
}

// registerEngine installs the engine.* helper table:
//
//	engine.roll("2d6+1") -> total of a fresh dice roll, or 0 on bad notation
func (r *Runner) registerEngine(L *lua.LState) {
	engine := L.NewTable()
	L.SetFuncs(engine, map[string]lua.LGFunction{
		"roll": func(L *lua.LState) int {
			notation := L.CheckString(1)
			result, err := r.roller.Roll(notation)
			if err != nil {
				r.logger.Warn("effect hook rolled bad notation",
					zap.String("notation", notation),
					zap.Error(err),
				)
				L.Push(lua.LNumber(0))
				return 1
			}
			L.Push(lua.LNumber(result.Total()))
			return 1
		},
	})
	L.SetGlobal("engine", engine)
}
