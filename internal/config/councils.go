package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/foodregister/regnotify/internal/registration"
)

// CouncilRegister holds the per-council contact configuration, keyed by the
// council's registration URL slug.
type CouncilRegister struct {
	councils map[string]registration.CouncilContactConfig
}

// NewCouncilRegister builds a register from an in-memory council map.
func NewCouncilRegister(councils map[string]registration.CouncilContactConfig) *CouncilRegister {
	if councils == nil {
		councils = make(map[string]registration.CouncilContactConfig)
	}
	return &CouncilRegister{councils: councils}
}

// Find returns the contact configuration for the given council URL slug.
func (r *CouncilRegister) Find(councilURL string) (registration.CouncilContactConfig, bool) {
	cfg, ok := r.councils[councilURL]
	return cfg, ok
}

// Slugs returns the configured council URL slugs in sorted order.
func (r *CouncilRegister) Slugs() []string {
	out := make([]string, 0, len(r.councils))
	for k := range r.councils {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LoadCouncilRegister reads the council register YAML file at filePath and
// returns a populated CouncilRegister. If the file does not exist, an empty
// register is returned (not an error).
func LoadCouncilRegister(filePath string) (*CouncilRegister, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // path is from admin-configured data dir
	if err != nil {
		if os.IsNotExist(err) {
			return &CouncilRegister{councils: make(map[string]registration.CouncilContactConfig)}, nil
		}
		return nil, fmt.Errorf("reading council register %q: %w", filePath, err)
	}

	var raw map[string]registration.CouncilContactConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing council register %q: %w", filePath, err)
	}

	for slug, cfg := range raw {
		if err := validateCouncil(cfg); err != nil {
			return nil, fmt.Errorf("council %q: %w", slug, err)
		}
	}

	if raw == nil {
		raw = make(map[string]registration.CouncilContactConfig)
	}
	return &CouncilRegister{councils: raw}, nil
}

// validateCouncil checks that a council entry is either a combined contact
// or a complete hygiene/standards pair.
func validateCouncil(cfg registration.CouncilContactConfig) error {
	if cfg.HygieneAndStandards != nil {
		if cfg.Hygiene != nil || cfg.Standards != nil {
			return fmt.Errorf("combined contact cannot be mixed with a hygiene/standards split")
		}
		return nil
	}
	if cfg.Hygiene == nil || cfg.Standards == nil {
		return fmt.Errorf("split configuration requires both hygiene and standards contacts")
	}
	return nil
}
