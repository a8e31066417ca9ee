// Package templates loads the static task and prenup catalog and expands it
// into per-user records.
package templates

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"weddingplan/internal/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is an ordered set of templates. Order is preserved on expansion.
type Catalog struct {
	Tasks  []models.TaskTemplate   `yaml:"tasks"`
	Prenup []models.PrenupTemplate `yaml:"prenup"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	seen := map[string]bool{}
	for _, t := range c.Tasks {
		switch {
		case t.TaskID == "":
			return fmt.Errorf("catalog: task template without task_id")
		case seen[t.TaskID]:
			return fmt.Errorf("catalog: duplicate task_id %q", t.TaskID)
		case !t.CategoryID.Valid():
			return fmt.Errorf("catalog: %s: unknown category %q", t.TaskID, t.CategoryID)
		case !t.PhaseID.Valid():
			return fmt.Errorf("catalog: %s: unknown phase %q", t.TaskID, t.PhaseID)
		case t.MonthsBefore < 0:
			return fmt.Errorf("catalog: %s: months_before must not be negative", t.TaskID)
		case t.BudgetEstimateMin > t.BudgetEstimateMax:
			return fmt.Errorf("catalog: %s: budget_estimate_min exceeds max", t.TaskID)
		}
		seen[t.TaskID] = true
	}
	seen = map[string]bool{}
	for _, p := range c.Prenup {
		switch {
		case p.ID == "":
			return fmt.Errorf("catalog: prenup template without id")
		case seen[p.ID]:
			return fmt.Errorf("catalog: duplicate prenup id %q", p.ID)
		case !p.SectionID.Valid():
			return fmt.Errorf("catalog: %s: unknown section %q", p.ID, p.SectionID)
		}
		seen[p.ID] = true
	}
	return nil
}
