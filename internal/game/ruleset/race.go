package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Race defines a playable race for character creation.
//
// Precondition: ID and Name must be non-empty after loading.
type Race struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Article     string `yaml:"article"`
	Description string `yaml:"description"`
	// Bonuses maps ability names to creation-time score adjustments.
	Bonuses map[string]int `yaml:"bonuses"`
	// Speed is the base walking speed in feet.
	Speed  int      `yaml:"speed"`
	Traits []string `yaml:"traits"`
}

// DisplayName returns the human-readable race name with its grammatical
// article. If Article is empty, returns Name alone.
//
// Precondition: Name must be non-empty.
// Postcondition: Returns a non-empty string.
func (r *Race) DisplayName() string {
	if r.Article == "" {
		return r.Name
	}
	return r.Article + " " + r.Name
}

// Validate checks the loaded race invariants.
func (r *Race) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("race: id must not be empty")
	}
	if r.Name == "" {
		return fmt.Errorf("race %q: name must not be empty", r.ID)
	}
	if r.Speed <= 0 {
		return fmt.Errorf("race %q: speed must be positive; got %d", r.ID, r.Speed)
	}
	return nil
}

// LoadRaces reads all .yaml files in dir and parses each as a Race.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed races (may be empty slice) or a non-nil error.
func LoadRaces(dir string) ([]*Race, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	races := make([]*Race, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var r Race
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("parsing race file %s: %w", path, err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("race file %s: %w", path, err)
		}
		races = append(races, &r)
	}
	return races, nil
}

// yamlFiles returns the sorted .yaml file paths directly under dir.
func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
