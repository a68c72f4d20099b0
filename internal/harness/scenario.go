package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/entity"
)

// Scenario defines one conformance scenario: a content directory, a
// character record, and assertions over the settled result.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Content is the content package directory, relative to the scenario
	// file unless absolute.
	Content string `yaml:"content"`

	// Character is the inline entity record to evaluate.
	Character entity.Character `yaml:"character"`

	// Selections are applied to the character before evaluation, keyed by
	// selection path hash. A convenience over authoring operationData.
	Selections map[string]string `yaml:"selections,omitempty"`

	// Assertions validate the settled variable state and pass result.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one fact about a settled build.
type Assertion struct {
	// Type specifies the assertion type:
	//   - "variable": variable's rendered value equals Value
	//   - "total": a compiled total (variable breakdown) equals Total
	//   - "pending_count": number of pending selections equals Count
	//   - "history_count": history entries on Variable equal Count
	//   - "hp" / "ac" / "speed": the named sheet total equals Total
	Type string `yaml:"type"`

	Variable string `yaml:"variable,omitempty"`
	Value    string `yaml:"value,omitempty"`
	Total    int64  `yaml:"total,omitempty"`
	Count    int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertVariable     = "variable"
	AssertTotal        = "total"
	AssertPendingCount = "pending_count"
	AssertHistoryCount = "history_count"
	AssertHP           = "hp"
	AssertAC           = "ac"
	AssertSpeed        = "speed"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected (catches typos like "assertion:"), and the
// content path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if !filepath.IsAbs(scenario.Content) {
		scenario.Content = filepath.Join(filepath.Dir(path), scenario.Content)
	}

	for path, value := range scenario.Selections {
		scenario.Character.SetSelection(path, value)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarioDir loads every *.yaml scenario under dir, sorted by file
// name for deterministic test ordering.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	var out []*Scenario
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Content == "" {
		return fmt.Errorf("content directory is required")
	}
	if _, err := os.Stat(s.Content); os.IsNotExist(err) {
		return fmt.Errorf("content directory not found: %s", s.Content)
	}
	if s.Character.ID == "" {
		return fmt.Errorf("character.id is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertVariable:
		if a.Variable == "" {
			return fmt.Errorf("assertions[%d]: variable is required for %s", index, a.Type)
		}
	case AssertTotal, AssertHistoryCount:
		if a.Variable == "" {
			return fmt.Errorf("assertions[%d]: variable is required for %s", index, a.Type)
		}
	case AssertPendingCount, AssertHP, AssertAC, AssertSpeed:
		// No extra fields required.
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
