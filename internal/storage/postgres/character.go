package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/character"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterNameTaken is returned when creating a character with a name that already exists.
var ErrCharacterNameTaken = errors.New("character name already taken")

const characterColumns = `id, name, race, class, level, experience, location,
	strength, dexterity, constitution, intelligence, wisdom, charisma,
	max_hp, current_hp, armor_class, speed,
	spells, equipped, inventory, gold, created_at, updated_at`

// CharacterRepository provides character persistence operations.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var c character.Character
	err := row.Scan(
		&c.ID, &c.Name, &c.Race, &c.Class, &c.Level, &c.Experience, &c.Location,
		&c.Abilities.Strength, &c.Abilities.Dexterity, &c.Abilities.Constitution,
		&c.Abilities.Intelligence, &c.Abilities.Wisdom, &c.Abilities.Charisma,
		&c.MaxHP, &c.CurrentHP, &c.ArmorClass, &c.Speed,
		&c.Spells, &c.Equipped, &c.Inventory, &c.Gold, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new character and returns it with ID and timestamps set.
//
// Precondition: c.Name must be non-empty.
// Postcondition: Returns the created character with ID set, or ErrCharacterNameTaken on duplicate.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	out, err := scanCharacter(r.db.QueryRow(ctx, `
		INSERT INTO characters
			(name, race, class, level, experience, location,
			 strength, dexterity, constitution, intelligence, wisdom, charisma,
			 max_hp, current_hp, armor_class, speed,
			 spells, equipped, inventory, gold)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING `+characterColumns,
		c.Name, c.Race, c.Class, c.Level, c.Experience, c.Location,
		c.Abilities.Strength, c.Abilities.Dexterity, c.Abilities.Constitution,
		c.Abilities.Intelligence, c.Abilities.Wisdom, c.Abilities.Charisma,
		c.MaxHP, c.CurrentHP, c.ArmorClass, c.Speed,
		c.Spells, c.Equipped, c.Inventory, c.Gold,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return out, nil
}

// GetByID retrieves a character by its primary key.
//
// Precondition: id must be > 0.
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return c, nil
}

// GetByName retrieves a character by its unique name.
//
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByName(ctx context.Context, name string) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character by name: %w", err)
	}
	return c, nil
}

// List returns all characters ordered by creation time.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) List(ctx context.Context) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+characterColumns+` FROM characters ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// SaveState persists the character fields that change during play: location,
// hit points, experience, level, carried items, and gold. Abilities and
// identity never change here.
//
// Precondition: c.ID must be > 0.
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row updated.
func (r *CharacterRepository) SaveState(ctx context.Context, c *character.Character) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE characters
		SET location = $2, max_hp = $3, current_hp = $4,
		    level = $5, experience = $6,
		    spells = $7, equipped = $8, inventory = $9, gold = $10,
		    updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Location, c.MaxHP, c.CurrentHP,
		c.Level, c.Experience,
		c.Spells, c.Equipped, c.Inventory, c.Gold,
	)
	if err != nil {
		return fmt.Errorf("saving character state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

// Delete removes a character permanently.
//
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row deleted.
func (r *CharacterRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM characters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
