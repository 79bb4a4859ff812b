package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Vocabulary is the closed set of values a task field may take.
// InitialStatus is assigned to new tasks and is the only status the task wheel picks from.
// TerminalStatus is the status coupled to a non-nil completedAt.
type Vocabulary struct {
	Name            string   `yaml:"name"`
	Categories      []string `yaml:"categories"`
	Statuses        []string `yaml:"statuses"`
	InitialStatus   string   `yaml:"initial_status"`
	TerminalStatus  string   `yaml:"terminal_status"`
	Priorities      []string `yaml:"priorities"`
	DefaultPriority string   `yaml:"default_priority"`
}

// ClassicVocabulary has six categories, a "Completed" terminal status and priorities.
func ClassicVocabulary() Vocabulary {
	return Vocabulary{
		Name:            "classic",
		Categories:      []string{"Work", "Personal", "Health", "Learning", "Entertainment", "Other"},
		Statuses:        []string{"Pending", "In Progress", "Completed"},
		InitialStatus:   "Pending",
		TerminalStatus:  "Completed",
		Priorities:      []string{"Low", "Medium", "High"},
		DefaultPriority: "Medium",
	}
}

// ExtendedVocabulary has ten categories, a "Done" terminal status and no priorities.
func ExtendedVocabulary() Vocabulary {
	return Vocabulary{
		Name: "extended",
		Categories: []string{
			"Art and Craft", "Work", "Personal", "Health", "Learning",
			"Entertainment", "Nature", "Family", "Friends", "Meditation",
		},
		Statuses:       []string{"Pending", "In Progress", "Done"},
		InitialStatus:  "Pending",
		TerminalStatus: "Done",
	}
}

// Presets returns the built-in vocabularies by name.
func Presets() map[string]Vocabulary {
	classic, extended := ClassicVocabulary(), ExtendedVocabulary()
	return map[string]Vocabulary{
		classic.Name:  classic,
		extended.Name: extended,
	}
}

// LoadVocabulary reads a vocabulary from a YAML file and validates it.
func LoadVocabulary(path string) (Vocabulary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary file: %w", err)
	}
	var v Vocabulary
	if err := yaml.Unmarshal(b, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary file %s: %w", path, err)
	}
	if v.Name == "" {
		v.Name = "custom"
	}
	if err := v.Validate(); err != nil {
		return Vocabulary{}, fmt.Errorf("vocabulary file %s: %w", path, err)
	}
	return v, nil
}

// Validate checks that the vocabulary is usable by the task engine.
func (v Vocabulary) Validate() error {
	var errs []error
	if len(v.Categories) == 0 {
		errs = append(errs, errors.New("at least one category is required"))
	}
	if slices.Contains(v.Categories, "All") || slices.Contains(v.Statuses, "All") {
		errs = append(errs, errors.New(`"All" is reserved and cannot be a category or status`))
	}
	if !v.HasStatus(v.InitialStatus) {
		errs = append(errs, fmt.Errorf("initial status %q is not a configured status", v.InitialStatus))
	}
	if !v.HasStatus(v.TerminalStatus) {
		errs = append(errs, fmt.Errorf("terminal status %q is not a configured status", v.TerminalStatus))
	}
	if v.InitialStatus != "" && v.InitialStatus == v.TerminalStatus {
		errs = append(errs, errors.New("initial and terminal status must differ"))
	}
	if v.PrioritiesEnabled() && !v.HasPriority(v.DefaultPriority) {
		errs = append(errs, fmt.Errorf("default priority %q is not a configured priority", v.DefaultPriority))
	}
	return errors.Join(errs...)
}

// HasCategory reports whether c is a configured category.
func (v Vocabulary) HasCategory(c string) bool {
	return c != "" && slices.Contains(v.Categories, c)
}

// HasStatus reports whether s is a configured status.
func (v Vocabulary) HasStatus(s string) bool {
	return s != "" && slices.Contains(v.Statuses, s)
}

// HasPriority reports whether p is a configured priority.
func (v Vocabulary) HasPriority(p string) bool {
	return p != "" && slices.Contains(v.Priorities, p)
}

// PrioritiesEnabled reports whether tasks carry a priority at all.
func (v Vocabulary) PrioritiesEnabled() bool {
	return len(v.Priorities) > 0
}
