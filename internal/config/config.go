package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jdavenport/fairroster/pkg/core/difficulty"
)

// RecurringConstraint declares a repeating unavailability for a worker,
// e.g. "every Sunday". The rrule is expanded into concrete constraint
// intervals for the period being assigned.
type RecurringConstraint struct {
	WorkerID      string  `yaml:"workerID" validate:"required"`
	RRule         string  `yaml:"rrule" validate:"required"`
	StartTime     string  `yaml:"startTime,omitempty"` // HH:MM, defaults to 00:00
	DurationHours float64 `yaml:"durationHours" validate:"required,gt=0"`
}

// GeneratorConfig tunes the slot generator's safety valves
type GeneratorConfig struct {
	MaxIterationsPerRole int `yaml:"maxIterationsPerRole,omitempty" validate:"omitempty,min=1"`
	MaxDegenerateRuns    int `yaml:"maxDegenerateRuns,omitempty" validate:"omitempty,min=1"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// Alpha blends objective base difficulty with subjective ratings;
	// defaults to the recommended 0.5 when omitted
	Alpha *float64 `yaml:"alpha,omitempty" validate:"omitempty,min=0,max=1"`

	// StrictCompleteness makes a run successful only when every slot was
	// assigned; defaults to true
	StrictCompleteness *bool `yaml:"strictCompleteness,omitempty"`

	// RatingPolicy selects the anti-gaming strategy for flagged rating
	// sets: discard (default) or normalize
	RatingPolicy string `yaml:"ratingPolicy,omitempty" validate:"omitempty,oneof=discard normalize"`

	Generator GeneratorConfig `yaml:"generator,omitempty"`

	RecurringConstraints []RecurringConstraint `yaml:"recurringConstraints,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// AlphaValue returns the configured blend factor or the recommended default
func (c *Config) AlphaValue() float64 {
	if c.Alpha == nil {
		return difficulty.DefaultAlpha
	}
	return *c.Alpha
}

// Strict reports whether unassigned slots should fail the run
func (c *Config) Strict() bool {
	if c.StrictCompleteness == nil {
		return true
	}
	return *c.StrictCompleteness
}

// Policy returns the configured rating screening policy
func (c *Config) Policy() difficulty.RatingPolicy {
	if c.RatingPolicy == "" {
		return difficulty.PolicyDiscard
	}
	return difficulty.RatingPolicy(c.RatingPolicy)
}

// LoadWithEnv loads and validates the configuration for the given
// environment, e.g. test_fairroster_config.yaml
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(fmt.Sprintf("%s_fairroster_config.yaml", env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, rule := range cfg.RecurringConstraints {
		if _, err := rrule.StrToRRule(rule.RRule); err != nil {
			return fmt.Errorf("invalid rrule in recurringConstraints[%d]: %w", i, err)
		}
	}

	return nil
}

// findConfigFile searches for the config file in the current directory and
// the user's home directory
func findConfigFile(configFileName string) (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", configFileName)
}
