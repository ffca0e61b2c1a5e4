package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Veraticus/portfolio-optimizer/internal/common"
	"gopkg.in/yaml.v3"
)

// Plan is an operator's prepared answers for a run: thresholds, prices,
// skipped prices and manual assignments.
type Plan struct {
	DefaultThreshold *float64          `yaml:"default_threshold,omitempty"`
	Thresholds       map[string]float64 `yaml:"thresholds,omitempty"`
	Prices           map[string]float64 `yaml:"prices,omitempty"`
	SkipPrices       []string           `yaml:"skip_prices,omitempty"`
	Assignments      []Assignment       `yaml:"assignments,omitempty"`
	AcceptAutoPrices bool               `yaml:"accept_auto_prices"`
}

// Assignment places unassigned campaigns into a product's groupings.
// An empty campaign list selects every unassigned campaign.
type Assignment struct {
	Product   string   `yaml:"product"`
	Campaigns []string `yaml:"campaigns,omitempty"`
}

// LoadPlan reads and validates a plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read plan %s: %w", path, err)
	}
	plan, err := ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	return plan, nil
}

// ParsePlan decodes and validates plan YAML. Unknown keys are rejected.
func ParsePlan(data []byte) (*Plan, error) {
	plan := &Plan{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(plan); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// Validate checks value ranges.
func (p *Plan) Validate() error {
	if p.DefaultThreshold != nil {
		if err := checkThreshold("default_threshold", *p.DefaultThreshold); err != nil {
			return err
		}
	}
	for _, product := range sortedKeys(p.Thresholds) {
		if err := checkThreshold(product, p.Thresholds[product]); err != nil {
			return err
		}
	}
	for _, product := range sortedKeys(p.Prices) {
		if p.Prices[product] <= 0 {
			return fmt.Errorf("%w: price for %q must be positive", common.ErrInvalidConfig, product)
		}
	}
	for i, a := range p.Assignments {
		if a.Product == "" {
			return fmt.Errorf("%w: assignment %d has no product", common.ErrInvalidConfig, i+1)
		}
	}
	return nil
}

// Threshold returns the product's threshold, falling back to the default.
func (p *Plan) Threshold(product string) (float64, bool) {
	if t, ok := p.Thresholds[product]; ok {
		return t, true
	}
	if p.DefaultThreshold != nil {
		return *p.DefaultThreshold, true
	}
	return 0, false
}

// Skipped reports whether the plan skips a product's price.
func (p *Plan) Skipped(product string) bool {
	for _, s := range p.SkipPrices {
		if s == product {
			return true
		}
	}
	return false
}

func checkThreshold(name string, t float64) error {
	if t < 0 || t > 100 {
		return fmt.Errorf("%w: threshold %.2f for %q must be between 0 and 100", common.ErrInvalidConfig, t, name)
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
