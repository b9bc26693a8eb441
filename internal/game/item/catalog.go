// Package item provides the read-only item catalog the combat engine
// consults for damage formulas, usability flags, and properties.
package item

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind constants for Def.Kind.
const (
	KindWeapon     = "weapon"
	KindConsumable = "consumable"
	KindGear       = "gear"
)

// validKinds is the set of valid item kinds.
var validKinds = map[string]bool{
	KindWeapon:     true,
	KindConsumable: true,
	KindGear:       true,
}

// Def defines the static properties of an item loaded from YAML.
type Def struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Kind        string   `yaml:"kind"`
	DamageDice  string   `yaml:"damage_dice"` // weapons: e.g. "1d8+0" handled via wielder mods
	HealDice    string   `yaml:"heal_dice"`   // consumables: e.g. "2d4+2"
	Properties  []string `yaml:"properties"`  // e.g. "finesse", "two-handed"
	// CombatUsable marks consumables/gear that may be activated as a combat
	// action. Weapons are always combat-usable via attacks.
	CombatUsable bool    `yaml:"combat_usable"`
	Equippable   bool    `yaml:"equippable"`
	Value        int     `yaml:"value"` // gold pieces
	Weight       float64 `yaml:"weight"`
	// OnUse is an optional Lua hook body evaluated when the item is used;
	// it may adjust the rolled effect amount.
	OnUse string `yaml:"lua_on_use"`
}

// IsWeapon reports whether the item is a weapon.
func (d *Def) IsWeapon() bool { return d.Kind == KindWeapon }

// HasProperty reports whether the item carries the named property.
func (d *Def) HasProperty(p string) bool {
	for _, prop := range d.Properties {
		if prop == p {
			return true
		}
	}
	return false
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
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("Kind must be one of weapon, consumable, gear; got %q", d.Kind))
	}
	if d.Kind == KindWeapon && d.DamageDice == "" {
		errs = append(errs, errors.New("DamageDice is required when Kind is weapon"))
	}
	if d.Weight < 0 {
		errs = append(errs, errors.New("Weight must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q validation failed: %v", d.ID, errs)
	}
	return nil
}

// Catalog holds all known item Defs keyed by ID. It is read-only reference
// data once loaded.
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
// Name lookups serve the command layer, which sees display names, not ids.
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
		return nil, fmt.Errorf("reading item dir %q: %w", dir, err)
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
