package subscription

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// LevelSpec describes a single entitlement level.
type LevelSpec struct {
	// TemplateIDs maps a payment provider to the product/price template
	// that represents this level within the provider.
	TemplateIDs map[PaymentProvider]string `yaml:"templateIds"`

	// TransitionsTo lists the levels a subscription at this level may move
	// to. Staying on the same level is always permitted (it is the no-op
	// path) and does not need to be listed.
	TransitionsTo []int64 `yaml:"transitionsTo"`
}

// LevelsConfig is the operator-provided mapping of entitlement levels to
// provider templates and permitted transitions. It is loaded once at
// startup and treated as immutable afterwards.
type LevelsConfig struct {
	Levels map[int64]LevelSpec `yaml:"levels"`
}

// ParseLevelsConfig decodes and validates a YAML levels configuration.
func ParseLevelsConfig(r io.Reader) (LevelsConfig, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg LevelsConfig
	if err := dec.Decode(&cfg); err != nil {
		return LevelsConfig{}, errors.Join(ErrInvalidLevelsConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return LevelsConfig{}, err
	}
	return cfg, nil
}

// LoadLevelsConfig reads a YAML levels configuration from a file.
func LoadLevelsConfig(path string) (LevelsConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return LevelsConfig{}, errors.Join(ErrInvalidLevelsConfig, err)
	}
	defer f.Close()
	return ParseLevelsConfig(f)
}

func (c LevelsConfig) validate() error {
	if len(c.Levels) == 0 {
		return errors.Join(ErrInvalidLevelsConfig, errors.New("no levels configured"))
	}
	for level, spec := range c.Levels {
		if level < 0 {
			return errors.Join(ErrInvalidLevelsConfig, fmt.Errorf("negative level %d", level))
		}
		if len(spec.TemplateIDs) == 0 {
			return errors.Join(ErrInvalidLevelsConfig, fmt.Errorf("level %d has no template ids", level))
		}
		for provider, templateID := range spec.TemplateIDs {
			if templateID == "" {
				return errors.Join(ErrInvalidLevelsConfig,
					fmt.Errorf("level %d has an empty template id for provider %s", level, provider))
			}
		}
		for _, target := range spec.TransitionsTo {
			if _, known := c.Levels[target]; !known {
				return errors.Join(ErrInvalidLevelsConfig,
					fmt.Errorf("level %d allows transition to unknown level %d", level, target))
			}
		}
	}
	return nil
}

// TemplateID resolves the provider template for a level.
func (c LevelsConfig) TemplateID(level int64, provider PaymentProvider) (string, bool) {
	spec, ok := c.Levels[level]
	if !ok {
		return "", false
	}
	id, ok := spec.TemplateIDs[provider]
	return id, ok
}

// TransitionValidator builds the default transition validator from the
// configured transitions: a change is valid when the target level appears
// in the current level's TransitionsTo list. Same-level requests are valid
// by definition, and an unknown current level permits nothing.
func (c LevelsConfig) TransitionValidator() TransitionValidator {
	return func(oldLevel, newLevel int64) bool {
		if oldLevel == newLevel {
			return true
		}
		spec, ok := c.Levels[oldLevel]
		if !ok {
			return false
		}
		return slices.Contains(spec.TransitionsTo, newLevel)
	}
}
