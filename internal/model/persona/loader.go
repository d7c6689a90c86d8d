package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadDir reads every *.yaml profile in dir, sorted by file name so the
// canonical roster order is stable across restarts.
func LoadDir(dir string) ([]Persona, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list profiles in %s: %w", dir, err)
	}
	sort.Strings(entries)

	personas := make([]Persona, 0, len(entries))
	for _, path := range entries {
		p, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		personas = append(personas, p)
	}

	if len(personas) == 0 {
		return nil, fmt.Errorf("no persona profiles found in %s", dir)
	}
	return personas, nil
}

func loadFile(path string) (Persona, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Persona{}, fmt.Errorf("read profile %s: %w", path, err)
	}

	var p Persona
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Persona{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if p.ID == "" || p.Name == "" {
		return Persona{}, fmt.Errorf("profile %s missing id or name", path)
	}
	return p, nil
}
