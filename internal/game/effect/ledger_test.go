package effect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/effect"
)

// TestLedger_AddAndActiveFor verifies effects get ids and come back in
// application order.
func TestLedger_AddAndActiveFor(t *testing.T) {
	l := effect.NewLedger()
	first := l.Add("pc-1", effect.ActiveEffect{Source: "Bless", Kind: effect.KindStatus, Status: "blessed", RoundsRemaining: 10})
	second := l.Add("pc-1", effect.ActiveEffect{Source: "Poison", Kind: effect.KindDamage, Amount: 2, RoundsRemaining: 3})

	require.NotEmpty(t, first.ID)
	require.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)

	active := l.ActiveFor("pc-1")
	require.Len(t, active, 2)
	assert.Equal(t, "Bless", active[0].Source)
	assert.Equal(t, "Poison", active[1].Source)

	assert.Empty(t, l.ActiveFor("pc-2"), "other owners are unaffected")
}

// TestLedger_Remove verifies removal by id and the not-found result.
func TestLedger_Remove(t *testing.T) {
	l := effect.NewLedger()
	e := l.Add("pc-1", effect.ActiveEffect{Source: "Shield of Faith", Kind: effect.KindStatus, Status: "shielded", RoundsRemaining: -1})

	assert.False(t, l.Remove("pc-1", "no-such-effect"))
	assert.True(t, l.Remove("pc-1", e.ID))
	assert.False(t, l.Remove("pc-1", e.ID), "second removal reports false")
	assert.Empty(t, l.ActiveFor("pc-1"))
}

// TestLedger_TickRound verifies finite durations count down and expire while
// permanent effects persist.
func TestLedger_TickRound(t *testing.T) {
	l := effect.NewLedger()
	l.Add("pc-1", effect.ActiveEffect{Source: "Poison", Kind: effect.KindDamage, Amount: 2, RoundsRemaining: 2})
	l.Add("pc-1", effect.ActiveEffect{Source: "Mage Armor", Kind: effect.KindStatus, Status: "armored", RoundsRemaining: -1})

	expired := l.TickRound("pc-1")
	assert.Empty(t, expired)
	require.Len(t, l.ActiveFor("pc-1"), 2)

	expired = l.TickRound("pc-1")
	require.Len(t, expired, 1)
	assert.Equal(t, "Poison", expired[0].Source)

	active := l.ActiveFor("pc-1")
	require.Len(t, active, 1)
	assert.Equal(t, "Mage Armor", active[0].Source)

	// Permanent effects survive arbitrary further ticks.
	for i := 0; i < 5; i++ {
		assert.Empty(t, l.TickRound("pc-1"))
	}
	assert.Len(t, l.ActiveFor("pc-1"), 1)
}

// TestLedger_HasStatus verifies status lookup ignores non-status kinds.
func TestLedger_HasStatus(t *testing.T) {
	l := effect.NewLedger()
	l.Add("pc-1", effect.ActiveEffect{Source: "Regeneration", Kind: effect.KindHealing, Amount: 3, Status: "regen", RoundsRemaining: 5})
	l.Add("pc-1", effect.ActiveEffect{Source: "Haste", Kind: effect.KindStatus, Status: "hasted", RoundsRemaining: 10})

	assert.True(t, l.HasStatus("pc-1", "hasted"))
	assert.False(t, l.HasStatus("pc-1", "regen"), "healing effects are not status tags")
	assert.False(t, l.HasStatus("pc-2", "hasted"))
}

// TestLedger_Clear verifies Clear drops everything for one owner only.
func TestLedger_Clear(t *testing.T) {
	l := effect.NewLedger()
	l.Add("pc-1", effect.ActiveEffect{Source: "Bless", Kind: effect.KindStatus, Status: "blessed", RoundsRemaining: 10})
	l.Add("npc-1", effect.ActiveEffect{Source: "Rage", Kind: effect.KindStatus, Status: "raging", RoundsRemaining: 10})

	l.Clear("pc-1")
	assert.Empty(t, l.ActiveFor("pc-1"))
	assert.Len(t, l.ActiveFor("npc-1"), 1)
}

// TestLedger_TickRound_Property verifies an effect with duration n expires on
// exactly the nth tick, for arbitrary n.
func TestLedger_TickRound_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 25).Draw(rt, "duration")

		l := effect.NewLedger()
		l.Add("pc-1", effect.ActiveEffect{Source: "Slow", Kind: effect.KindStatus, Status: "slowed", RoundsRemaining: n})

		for i := 0; i < n-1; i++ {
			require.Empty(rt, l.TickRound("pc-1"), "tick %d of %d must not expire", i+1, n)
		}
		expired := l.TickRound("pc-1")
		require.Len(rt, expired, 1)
		assert.Empty(rt, l.ActiveFor("pc-1"))
	})
}
