// Package config defines the data structures related to configuration and
// includes functions for loading it and turning it into validated loan terms.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/mortgage-schedule/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for mortgage-schedule.
type Configuration struct {
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
	Simulator SimulatorConfig `yaml:"simulator,omitempty"`
	Loan      *LoanConfig     `yaml:"loan,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// SimulatorConfig bounds the input the simulator accepts.
type SimulatorConfig struct {
	MaxAttempts int `yaml:"maxAttempts,omitempty"` // tries per prompted value
	MinPeriods  int `yaml:"minPeriods,omitempty"`
	MaxPeriods  int `yaml:"maxPeriods,omitempty"`
}

// DefaultSimulatorConfig returns the limits of the original simulator: three
// attempts per value and terms between 12 and 360 months.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		MaxAttempts: constants.DefaultMaxAttempts,
		MinPeriods:  constants.MinPeriodCount,
		MaxPeriods:  constants.MaxPeriodCount,
	}
}

// Normalize fills unset or inconsistent limits with defaults.
func (s SimulatorConfig) Normalize() SimulatorConfig {
	defaults := DefaultSimulatorConfig()
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = defaults.MaxAttempts
	}
	if s.MinPeriods <= 0 {
		s.MinPeriods = defaults.MinPeriods
	}
	if s.MaxPeriods <= 0 {
		s.MaxPeriods = defaults.MaxPeriods
	}
	if s.MinPeriods > s.MaxPeriods {
		s.MinPeriods, s.MaxPeriods = defaults.MinPeriods, defaults.MaxPeriods
	}
	return s
}

// DefaultConfiguration is used when no configuration file is present.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Output:    OutputConfig{Format: constants.OutputFormatPretty},
		Simulator: DefaultSimulatorConfig(),
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSimulatorConfig()
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("simulator.maxAttempts", defaults.MaxAttempts)
	v.SetDefault("simulator.minPeriods", defaults.MinPeriods)
	v.SetDefault("simulator.maxPeriods", defaults.MaxPeriods)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. MORTGAGE_* environment variables override file values,
// e.g. MORTGAGE_SIMULATOR_MAXATTEMPTS.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.Simulator = configuration.Simulator.Normalize()
	return &configuration, nil
}
