// Package spell provides the read-only spell catalog: levels, damage and
// healing formulas, and status effects the combat engine applies on a cast.
package spell

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxLevel is the highest spell level.
const MaxLevel = 9

// Def defines the static properties of a spell loaded from YAML.
type Def struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	School      string `yaml:"school"`
	Description string `yaml:"description"`
	// Level is the spell level, 0 (cantrip) through 9.
	Level      int    `yaml:"level"`
	DamageDice string `yaml:"damage_dice"`
	HealDice   string `yaml:"heal_dice"`
	// SaveAbility names the defender's saving throw ability; empty means the
	// spell uses an attack roll against AC instead.
	SaveAbility string `yaml:"save_ability"`
	// Status and StatusRounds describe a temporary effect applied on a hit;
	// empty Status means none.
	Status       string `yaml:"status"`
	StatusRounds int    `yaml:"status_rounds"`
	// MaxTargets caps how many targets one cast may name; 0 means 1.
	MaxTargets int `yaml:"max_targets"`
	// OnCast is an optional Lua hook body evaluated when the spell resolves;
	// it may adjust the rolled effect amount.
	OnCast string `yaml:"lua_on_cast"`
}

// TargetCap returns the effective maximum target count (at least 1).
func (d *Def) TargetCap() int {
	if d.MaxTargets < 1 {
		return 1
	}
	return d.MaxTargets
}

// Validate checks that the Def satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if d.Level < 0 || d.Level > MaxLevel {
		errs = append(errs, fmt.Errorf("Level must be in [0, %d]; got %d", MaxLevel, d.Level))
	}
	if d.DamageDice == "" && d.HealDice == "" && d.Status == "" {
		errs = append(errs, errors.New("spell must have at least one of damage_dice, heal_dice, status"))
	}
	if d.Status != "" && d.StatusRounds == 0 {
		errs = append(errs, errors.New("StatusRounds is required when Status is set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("spell %q validation failed: %v", d.ID, errs)
	}
	return nil
}

// Catalog holds all known spell Defs keyed by ID.
type Catalog struct {
	defs map[string]*Def
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]*Def)}
}

// Register adds def to the catalog, overwriting any existing entry.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (c *Catalog) Register(def *Def) {
	c.defs[def.ID] = def
}

// Get returns the Def for id, or (nil, false) if not found.
func (c *Catalog) Get(id string) (*Def, bool) {
	d, ok := c.defs[id]
	return d, ok
}

// GetByName returns the first Def whose Name matches name case-insensitively.
func (c *Catalog) GetByName(name string) (*Def, bool) {
	for _, d := range c.defs {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return nil, false
}

// All returns a snapshot slice of all registered Defs.
func (c *Catalog) All() []*Def {
	out := make([]*Def, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d)
	}
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses and validates each as
// a Def, and returns a populated Catalog.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns a non-nil Catalog, or an error if any file fails to
// parse or validate.
func LoadDirectory(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading spell dir %q: %w", dir, err)
	}
	cat := NewCatalog()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		cat.Register(&def)
	}
	return cat, nil
}
