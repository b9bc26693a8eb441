package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/combat"
)

// ErrEncounterNotFound is returned when an encounter lookup yields no results.
var ErrEncounterNotFound = errors.New("encounter not found")

// EncounterRecord is the persisted snapshot of a finished (or aborted)
// encounter: outcome and log, not live turn state.
type EncounterRecord struct {
	ID              string
	LocationID      string
	Status          string
	Rounds          int
	Victor          string
	XP              int
	PlayerInitiated bool
	Log             []string
	CreatedAt       time.Time
}

// EncounterRepository persists encounter outcomes for session history.
type EncounterRepository struct {
	db *pgxpool.Pool
}

// NewEncounterRepository creates an EncounterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEncounterRepository(db *pgxpool.Pool) *EncounterRepository {
	return &EncounterRepository{db: db}
}

// Save stores the outcome of state. Victor is "players", "hostiles", or
// empty for an aborted encounter.
//
// Precondition: state must be Completed or Aborted.
func (r *EncounterRepository) Save(ctx context.Context, state *combat.CombatState, victor string, xp int) error {
	if state.Status == combat.StatusActive || state.Status == combat.StatusNotStarted {
		return fmt.Errorf("encounter %s is still %s; only finished encounters are persisted", state.ID, state.Status)
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO encounters
			(id, location, status, rounds, victor, xp, player_initiated, log)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		state.ID, state.LocationID, state.Status.String(), state.Round,
		victor, xp, state.PlayerInitiated, state.Log,
	)
	if err != nil {
		return fmt.Errorf("inserting encounter: %w", err)
	}
	return nil
}

// GetByID retrieves a persisted encounter.
//
// Postcondition: Returns the record or ErrEncounterNotFound.
func (r *EncounterRepository) GetByID(ctx context.Context, id string) (*EncounterRecord, error) {
	var rec EncounterRecord
	err := r.db.QueryRow(ctx, `
		SELECT id, location, status, rounds, victor, xp, player_initiated, log, created_at
		FROM encounters WHERE id = $1`, id,
	).Scan(
		&rec.ID, &rec.LocationID, &rec.Status, &rec.Rounds,
		&rec.Victor, &rec.XP, &rec.PlayerInitiated, &rec.Log, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEncounterNotFound
		}
		return nil, fmt.Errorf("querying encounter: %w", err)
	}
	return &rec, nil
}

// ListRecent returns the most recent encounters, newest first.
//
// Precondition: limit must be >= 1.
func (r *EncounterRepository) ListRecent(ctx context.Context, limit int) ([]*EncounterRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, location, status, rounds, victor, xp, player_initiated, log, created_at
		FROM encounters ORDER BY created_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing encounters: %w", err)
	}
	defer rows.Close()

	records := make([]*EncounterRecord, 0)
	for rows.Next() {
		var rec EncounterRecord
		if err := rows.Scan(
			&rec.ID, &rec.LocationID, &rec.Status, &rec.Rounds,
			&rec.Victor, &rec.XP, &rec.PlayerInitiated, &rec.Log, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning encounter row: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
