package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the scheduling engine
type Config struct {
	// Hard-rule parameters
	Rules RulesConfig `mapstructure:"rules"`

	// Default soft-constraint weights (a request may override them)
	Weights WeightsConfig `mapstructure:"weights"`

	// Default search budget (a request may override it)
	Search SearchConfig `mapstructure:"search"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`
}

// RulesConfig holds the parameters of the hard constraint templates
type RulesConfig struct {
	// DefaultMinDoctorsPerSlot is the headcount floor applied to slots that
	// carry no explicit requirement.
	DefaultMinDoctorsPerSlot int `mapstructure:"default_min_doctors_per_slot"`
	// MaxConsecutiveShifts bounds the length of a run of consecutive slots
	// assigned to the same doctor.
	MaxConsecutiveShifts int `mapstructure:"max_consecutive_shifts"`
	// MaxConsecutiveDaysOff bounds unassigned-day stretches not covered by
	// approved leave.
	MaxConsecutiveDaysOff int `mapstructure:"max_consecutive_days_off"`
	// MinShiftsPerDoctor / MaxShiftsPerDoctor form the default shift-count
	// band; a doctor's explicit target band overrides it.
	MinShiftsPerDoctor int `mapstructure:"min_shifts_per_doctor"`
	MaxShiftsPerDoctor int `mapstructure:"max_shifts_per_doctor"`
	// AvoidSingleDayOff forbids a gap of exactly one unassigned day between
	// two assigned days.
	AvoidSingleDayOff bool `mapstructure:"avoid_single_day_off"`
	// MinRestHours below 12 disables the night-to-day rest rule; at 12 or
	// above a night slot and the immediately following day slot cannot both
	// be worked by the same doctor.
	MinRestHours int `mapstructure:"min_rest_hours"`
}

// WeightsConfig holds the default soft-constraint weights
type WeightsConfig struct {
	RequestFulfilled float64 `mapstructure:"request_fulfilled"`
	HolidayBalance   float64 `mapstructure:"holiday_balance"`
	WeekStartCover   float64 `mapstructure:"week_start_cover"`
	RunShape         float64 `mapstructure:"run_shape"`
}

// SearchConfig holds the default search budget
type SearchConfig struct {
	MaxNodes         int64 `mapstructure:"max_nodes"`
	TimeLimitSeconds int   `mapstructure:"time_limit_seconds"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/rota-scheduler")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Override with environment variables
	overrideWithEnv(&config)

	// Validate configuration
	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the built-in configuration without touching files or the
// environment. Used by tests and by callers embedding the engine directly.
func Default() *Config {
	return &Config{
		Rules: RulesConfig{
			DefaultMinDoctorsPerSlot: 2,
			MaxConsecutiveShifts:     4,
			MaxConsecutiveDaysOff:    5,
			MinShiftsPerDoctor:       14,
			MaxShiftsPerDoctor:       16,
			AvoidSingleDayOff:        true,
			MinRestHours:             0,
		},
		Weights: WeightsConfig{
			RequestFulfilled: 10,
			HolidayBalance:   5,
			WeekStartCover:   2,
			RunShape:         3,
		},
		Search: SearchConfig{
			MaxNodes:         2000000,
			TimeLimitSeconds: 300,
		},
		LogLevel: "info",
	}
}

// setDefaults sets default configuration values
func setDefaults() {
	d := Default()

	viper.SetDefault("rules.default_min_doctors_per_slot", d.Rules.DefaultMinDoctorsPerSlot)
	viper.SetDefault("rules.max_consecutive_shifts", d.Rules.MaxConsecutiveShifts)
	viper.SetDefault("rules.max_consecutive_days_off", d.Rules.MaxConsecutiveDaysOff)
	viper.SetDefault("rules.min_shifts_per_doctor", d.Rules.MinShiftsPerDoctor)
	viper.SetDefault("rules.max_shifts_per_doctor", d.Rules.MaxShiftsPerDoctor)
	viper.SetDefault("rules.avoid_single_day_off", d.Rules.AvoidSingleDayOff)
	viper.SetDefault("rules.min_rest_hours", d.Rules.MinRestHours)

	viper.SetDefault("weights.request_fulfilled", d.Weights.RequestFulfilled)
	viper.SetDefault("weights.holiday_balance", d.Weights.HolidayBalance)
	viper.SetDefault("weights.week_start_cover", d.Weights.WeekStartCover)
	viper.SetDefault("weights.run_shape", d.Weights.RunShape)

	viper.SetDefault("search.max_nodes", d.Search.MaxNodes)
	viper.SetDefault("search.time_limit_seconds", d.Search.TimeLimitSeconds)

	viper.SetDefault("log_level", d.LogLevel)
}

// overrideWithEnv overrides configuration with environment variables
func overrideWithEnv(config *Config) {
	if limit := os.Getenv("SOLVER_TIME_LIMIT_SECONDS"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			config.Search.TimeLimitSeconds = v
		}
	}

	if nodes := os.Getenv("SOLVER_MAX_NODES"); nodes != "" {
		if v, err := strconv.ParseInt(nodes, 10, 64); err == nil {
			config.Search.MaxNodes = v
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.LogLevel = logLevel
	}
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.Rules.DefaultMinDoctorsPerSlot < 1 {
		return fmt.Errorf("default_min_doctors_per_slot must be at least 1, got %d", config.Rules.DefaultMinDoctorsPerSlot)
	}

	if config.Rules.MaxConsecutiveShifts < 1 {
		return fmt.Errorf("max_consecutive_shifts must be at least 1, got %d", config.Rules.MaxConsecutiveShifts)
	}

	if config.Rules.MaxConsecutiveDaysOff < 1 {
		return fmt.Errorf("max_consecutive_days_off must be at least 1, got %d", config.Rules.MaxConsecutiveDaysOff)
	}

	if config.Rules.MinShiftsPerDoctor < 0 || config.Rules.MaxShiftsPerDoctor < config.Rules.MinShiftsPerDoctor {
		return fmt.Errorf("invalid shift-count band [%d, %d]", config.Rules.MinShiftsPerDoctor, config.Rules.MaxShiftsPerDoctor)
	}

	if config.Weights.RequestFulfilled < 0 || config.Weights.HolidayBalance < 0 ||
		config.Weights.WeekStartCover < 0 || config.Weights.RunShape < 0 {
		return fmt.Errorf("soft-constraint weights must not be negative")
	}

	if config.Search.MaxNodes < 0 || config.Search.TimeLimitSeconds < 0 {
		return fmt.Errorf("search budget must not be negative")
	}

	return nil
}
