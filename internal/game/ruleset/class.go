// Package ruleset defines the class and race content loaded from YAML at
// startup. Definitions are data, not behavior: character creation and the
// combat engine consume them read-only.
package ruleset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClassFeature describes a single class feature gained at a specific level.
type ClassFeature struct {
	Name        string `yaml:"name"`
	Level       int    `yaml:"level"`
	Description string `yaml:"description"`
}

// Class defines a playable character class for character creation.
//
// Precondition: ID, Name, KeyAbility, and HitDie must be non-zero after loading.
type Class struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// KeyAbility is the ability the class leans on, e.g. "strength".
	KeyAbility string `yaml:"key_ability"`
	// HitDie is the hit die size: 6, 8, 10, or 12.
	HitDie int `yaml:"hit_die"`
	// SpellAbility names the spellcasting ability; empty for martial classes.
	SpellAbility string `yaml:"spell_ability"`
	// StartingSpells lists spell IDs known at level 1.
	StartingSpells []string `yaml:"starting_spells"`
	// StartingEquipment lists item IDs equipped at creation.
	StartingEquipment []string `yaml:"starting_equipment"`
	// StartingInventory lists item IDs carried at creation.
	StartingInventory []string       `yaml:"starting_inventory"`
	Features          []ClassFeature `yaml:"features"`
}

// Spellcaster reports whether the class casts spells.
func (c *Class) Spellcaster() bool { return c.SpellAbility != "" }

// Validate checks the loaded class invariants.
func (c *Class) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("class: id must not be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("class %q: name must not be empty", c.ID)
	}
	if c.KeyAbility == "" {
		return fmt.Errorf("class %q: key_ability must not be empty", c.ID)
	}
	switch c.HitDie {
	case 6, 8, 10, 12:
	default:
		return fmt.Errorf("class %q: hit_die must be 6, 8, 10, or 12; got %d", c.ID, c.HitDie)
	}
	if len(c.StartingSpells) > 0 && c.SpellAbility == "" {
		return fmt.Errorf("class %q: starting_spells requires spell_ability", c.ID)
	}
	return nil
}

// LoadClasses reads all .yaml files in dir and parses each as a Class.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed classes (may be empty slice) or a non-nil error.
func LoadClasses(dir string) ([]*Class, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	classes := make([]*Class, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var c Class
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parsing class file %s: %w", path, err)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("class file %s: %w", path, err)
		}
		classes = append(classes, &c)
	}
	return classes, nil
}
