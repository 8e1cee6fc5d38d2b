package planner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/harrison/shipshape/internal/filelock"
	"github.com/harrison/shipshape/internal/models"
)

// SavePlan writes the plan as YAML, atomically, so a crashed write never
// leaves a half-formed plan behind.
func SavePlan(plan *models.FixPlan, path string) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := filelock.AtomicWrite(path, data); err != nil {
		return fmt.Errorf("write plan file: %w", err)
	}
	return nil
}

// LoadPlan reads a plan file and re-validates it. A plan edited by hand is
// held to the same invariants as a freshly built one.
func LoadPlan(path string) (*models.FixPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}

	var plan models.FixPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan file %s: %w", path, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan file %s: %w", path, err)
	}
	return &plan, nil
}
