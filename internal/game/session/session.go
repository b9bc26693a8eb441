// Package session runs an interactive encounter: it owns the read/eval loop
// for the player's turns and plays the hostile side automatically.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/combat"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/command"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/spell"
)

// Config assembles a Session.
type Config struct {
	// Manager must hold an already-initiated encounter.
	Manager *combat.Manager
	Spells  *spell.Catalog
	// PlayerID is the combatant the human controls.
	PlayerID string
	Input    io.Reader
	Output   io.Writer
	Logger   *zap.Logger
}

// Session drives one encounter to completion: player turns come from Input
// line by line, NPC turns are resolved automatically, and everything the
// player should see goes to Output.
type Session struct {
	manager    *combat.Manager
	dispatcher *command.Dispatcher
	playerID   string
	in         *bufio.Scanner
	out        io.Writer
	logger     *zap.Logger
}

// New creates a Session from cfg.
//
// Precondition: cfg.Manager has an active encounter that includes
// cfg.PlayerID.
func New(cfg Config) (*Session, error) {
	if cfg.Manager == nil {
		return nil, errors.New("session requires a combat manager")
	}
	state := cfg.Manager.State()
	if state == nil || state.Status != combat.StatusActive {
		return nil, errors.New("session requires an active encounter")
	}
	if state.EntryFor(cfg.PlayerID) == nil {
		return nil, fmt.Errorf("combatant %s is not part of the encounter", cfg.PlayerID)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		manager:    cfg.Manager,
		dispatcher: command.NewDispatcher(cfg.Manager, cfg.Spells, logger),
		playerID:   cfg.PlayerID,
		in:         bufio.NewScanner(cfg.Input),
		out:        cfg.Output,
		logger:     logger,
	}, nil
}

// Manager exposes the underlying combat manager, mainly for persistence of
// the finished encounter.
func (s *Session) Manager() *combat.Manager { return s.manager }

// Run plays the encounter until it ends, the player quits, or ctx is
// cancelled. NPC turns resolve without input; the player is prompted on
// theirs.
//
// Postcondition: the encounter is no longer Active unless ctx was cancelled
// or Input ran dry.
func (s *Session) Run(ctx context.Context) error {
	s.printOpening()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		state := s.manager.State()
		if state.Status != combat.StatusActive {
			break
		}

		current := state.CurrentEntry()
		if current == nil {
			return &combat.InvalidStateError{CombatID: state.ID, Detail: "active encounter has no current entry"}
		}

		if current.Combatant.ID == s.playerID {
			done, err := s.playerTurn()
			if err != nil {
				if errors.Is(err, command.ErrQuit) {
					if abortErr := s.manager.Abort("the player withdraws"); abortErr != nil {
						return abortErr
					}
					s.printf("You withdraw from the fight.\n")
					return nil
				}
				return err
			}
			if done {
				// Input exhausted mid-encounter.
				return nil
			}
			continue
		}

		if err := s.npcTurn(current); err != nil {
			return err
		}
	}

	return nil
}

func (s *Session) printOpening() {
	reply, err := s.dispatcher.Dispatch(s.playerID, "look")
	if err == nil && reply != "" {
		s.printf("%s\n", reply)
	}
}

// playerTurn reads and dispatches one line. done reports that Input is
// exhausted.
func (s *Session) playerTurn() (done bool, err error) {
	s.printf("> ")
	if !s.in.Scan() {
		if scanErr := s.in.Err(); scanErr != nil {
			return false, fmt.Errorf("reading player input: %w", scanErr)
		}
		s.logger.Info("input closed, ending session")
		return true, nil
	}

	reply, err := s.dispatcher.Dispatch(s.playerID, s.in.Text())
	if err != nil {
		return false, err
	}
	if reply != "" {
		s.printf("%s\n", reply)
	}
	return false, nil
}

// npcTurn plays one hostile turn: attack the first standing player with the
// first equipped weapon, then end the turn.
func (s *Session) npcTurn(entry *combat.InitiativeEntry) error {
	npc := entry.Combatant
	target := s.firstStandingPlayer()
	if target != nil {
		weapon := ""
		if len(npc.Equipped) > 0 {
			weapon = npc.Equipped[0]
		}
		report, err := s.manager.ResolveAttack(npc.ID, target.Combatant.ID, weapon)
		if err != nil {
			return err
		}
		if report.Rejection != nil {
			s.logger.Warn("npc attack rejected",
				zap.String("npc", npc.ID),
				zap.String("reason", report.Rejection.Reason),
			)
		} else if report.Hit {
			s.printf("%s hits %s for %d damage.\n", npc.Name, target.Combatant.Name, report.Damage)
			if report.TargetDefeated {
				s.printf("%s falls!\n", target.Combatant.Name)
			}
		} else {
			s.printf("%s attacks %s and misses.\n", npc.Name, target.Combatant.Name)
		}
		if report.EncounterOver {
			s.printf("%s\n", s.outcome())
			return nil
		}
	}

	turn, err := s.manager.AdvanceTurn()
	if err != nil {
		return err
	}
	// Round-wrap effect ticks can finish the encounter on their own.
	if s.manager.State().Status != combat.StatusActive {
		s.printf("%s\n", s.outcome())
		return nil
	}
	if turn.Rejection == nil && turn.NewRound {
		s.printf("Round %d begins.\n", turn.Round)
	}
	return nil
}

func (s *Session) firstStandingPlayer() *combat.InitiativeEntry {
	for _, e := range s.manager.State().Entries {
		if e.IsPlayer && !e.Defeated() {
			return e
		}
	}
	return nil
}

func (s *Session) outcome() string {
	state := s.manager.State()
	switch {
	case state.Status == combat.StatusAborted:
		return "The encounter is over."
	case state.PlayersStanding():
		return "Victory! The encounter is over."
	default:
		return "The party has fallen."
	}
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
