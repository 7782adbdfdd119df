package config

import (
	"os"
	"strconv"
	"time"

	"lcgwalk/domain/sequence"
	"lcgwalk/internal/agent"
	"lcgwalk/internal/errors"
	"lcgwalk/internal/validation"
)

// Config represents the complete application configuration
type Config struct {
	Generator  GeneratorConfig
	Validation ValidationConfig
	Walk       WalkConfig
	Report     ReportConfig
	Database   DatabaseConfig
	Server     ServerConfig
}

// GeneratorConfig holds the LCG recurrence parameters
type GeneratorConfig struct {
	Multiplier int64
	Increment  int64
	Modulus    int64
	Seed       int64
}

// ValidationConfig holds the hypothesis-test and retry settings
type ValidationConfig struct {
	SampleCount       int
	SignificanceLevel float64
	MaxAttempts       int
}

// WalkConfig holds the random-walk consumer settings
type WalkConfig struct {
	StepDuration       time.Duration
	DirectionThreshold float64
	WalkSpeed          float64
	PursuitSpeed       float64
	DetectionRadius    float64
	FadeDuration       time.Duration
}

// ReportConfig holds the persisted artifact settings
type ReportConfig struct {
	OutputFile string
	Decimals   int
	ExcelFile  string
}

// DatabaseConfig holds database connection settings. An empty URL selects the
// in-memory session store.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string

	// Per-request ceilings for the validate and survey endpoints
	MaxSampleCount int
	MaxAttempts    int
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	gen := sequence.DefaultGeneratorConfig()
	return &Config{
		Generator: GeneratorConfig{
			Multiplier: gen.Multiplier,
			Increment:  gen.Increment,
			Modulus:    gen.Modulus,
			Seed:       gen.Seed,
		},
		Validation: ValidationConfig{
			SampleCount:       100,
			SignificanceLevel: 0.05,
			MaxAttempts:       100,
		},
		Walk: WalkConfig{
			StepDuration:       1500 * time.Millisecond,
			DirectionThreshold: 0.25,
			WalkSpeed:          1.5,
			PursuitSpeed:       2.0,
			DetectionRadius:    8.0,
			FadeDuration:       5 * time.Second,
		},
		Report: ReportConfig{
			OutputFile: "ri_numbers.txt",
			Decimals:   5,
		},
		Server: ServerConfig{
			Port:           "8080",
			GinMode:        "release",
			MaxSampleCount: 100000,
			MaxAttempts:    10000,
		},
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	def := Default()
	config := &Config{
		Generator:  loadGeneratorConfig(def.Generator),
		Validation: loadValidationConfig(def.Validation),
		Walk:       loadWalkConfig(def.Walk),
		Report:     loadReportConfig(def.Report),
		Database:   DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")},
		Server: ServerConfig{
			Port:           getEnvOrDefault("PORT", def.Server.Port),
			GinMode:        getEnvOrDefault("GIN_MODE", def.Server.GinMode),
			MaxSampleCount: getEnvIntOrDefault("MAX_REQUEST_SAMPLES", def.Server.MaxSampleCount),
			MaxAttempts:    getEnvIntOrDefault("MAX_REQUEST_ATTEMPTS", def.Server.MaxAttempts),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Sequence converts the generator block into the domain type
func (c *Config) Sequence() sequence.GeneratorConfig {
	return sequence.GeneratorConfig{
		Multiplier: c.Generator.Multiplier,
		Increment:  c.Generator.Increment,
		Modulus:    c.Generator.Modulus,
		Seed:       c.Generator.Seed,
	}
}

// Search returns the orchestrator settings
func (c *Config) Search() validation.ValidationConfig {
	return validation.ValidationConfig{
		Generator:         c.Sequence(),
		SampleCount:       c.Validation.SampleCount,
		SignificanceLevel: c.Validation.SignificanceLevel,
		MaxAttempts:       c.Validation.MaxAttempts,
	}
}

// Agent returns the walker settings
func (c *Config) Agent() agent.Config {
	return agent.Config{
		Validation:   c.Search(),
		StepDuration: c.Walk.StepDuration,
		Threshold:    c.Walk.DirectionThreshold,
		WalkSpeed:    c.Walk.WalkSpeed,
		PursuitSpeed: c.Walk.PursuitSpeed,
	}
}

// Validate checks every configuration block
func (c *Config) Validate() error {
	if c.Generator.Modulus <= 0 {
		return errors.ConfigInvalidf("LCG_MODULUS must be > 0, got %d", c.Generator.Modulus)
	}
	if c.Validation.SampleCount <= 1 {
		return errors.ConfigInvalidf("SAMPLE_COUNT must be > 1, got %d", c.Validation.SampleCount)
	}
	if c.Validation.SignificanceLevel <= 0 || c.Validation.SignificanceLevel >= 1 {
		return errors.ConfigInvalidf("SIGNIFICANCE_LEVEL must lie in (0,1), got %v", c.Validation.SignificanceLevel)
	}
	if c.Validation.MaxAttempts <= 0 {
		return errors.ConfigInvalidf("MAX_ATTEMPTS must be > 0, got %d", c.Validation.MaxAttempts)
	}
	if c.Walk.StepDuration <= 0 {
		return errors.ConfigInvalidf("STEP_DURATION must be > 0, got %s", c.Walk.StepDuration)
	}
	if t := c.Walk.DirectionThreshold; t <= 0 || 3*t >= 1 {
		return errors.ConfigInvalidf("DIRECTION_THRESHOLD must satisfy 0 < t < 1/3, got %v", t)
	}
	if c.Report.Decimals < 0 {
		return errors.ConfigInvalidf("REPORT_DECIMALS must be >= 0, got %d", c.Report.Decimals)
	}
	if c.Server.MaxSampleCount < c.Validation.SampleCount {
		return errors.ConfigInvalidf("MAX_REQUEST_SAMPLES must be >= SAMPLE_COUNT, got %d", c.Server.MaxSampleCount)
	}
	if c.Server.MaxAttempts < c.Validation.MaxAttempts {
		return errors.ConfigInvalidf("MAX_REQUEST_ATTEMPTS must be >= MAX_ATTEMPTS, got %d", c.Server.MaxAttempts)
	}
	if c.Report.OutputFile == "" {
		return errors.ConfigInvalid("REPORT_FILE is required")
	}
	return nil
}

func loadGeneratorConfig(def GeneratorConfig) GeneratorConfig {
	return GeneratorConfig{
		Multiplier: getEnvInt64OrDefault("LCG_MULTIPLIER", def.Multiplier),
		Increment:  getEnvInt64OrDefault("LCG_INCREMENT", def.Increment),
		Modulus:    getEnvInt64OrDefault("LCG_MODULUS", def.Modulus),
		Seed:       getEnvInt64OrDefault("LCG_SEED", def.Seed),
	}
}

func loadValidationConfig(def ValidationConfig) ValidationConfig {
	return ValidationConfig{
		SampleCount:       getEnvIntOrDefault("SAMPLE_COUNT", def.SampleCount),
		SignificanceLevel: getEnvFloatOrDefault("SIGNIFICANCE_LEVEL", def.SignificanceLevel),
		MaxAttempts:       getEnvIntOrDefault("MAX_ATTEMPTS", def.MaxAttempts),
	}
}

func loadWalkConfig(def WalkConfig) WalkConfig {
	return WalkConfig{
		StepDuration:       getEnvDurationOrDefault("STEP_DURATION", def.StepDuration),
		DirectionThreshold: getEnvFloatOrDefault("DIRECTION_THRESHOLD", def.DirectionThreshold),
		WalkSpeed:          getEnvFloatOrDefault("WALK_SPEED", def.WalkSpeed),
		PursuitSpeed:       getEnvFloatOrDefault("PURSUIT_SPEED", def.PursuitSpeed),
		DetectionRadius:    getEnvFloatOrDefault("DETECTION_RADIUS", def.DetectionRadius),
		FadeDuration:       getEnvDurationOrDefault("FADE_DURATION", def.FadeDuration),
	}
}

func loadReportConfig(def ReportConfig) ReportConfig {
	return ReportConfig{
		OutputFile: getEnvOrDefault("REPORT_FILE", def.OutputFile),
		Decimals:   getEnvIntOrDefault("REPORT_DECIMALS", def.Decimals),
		ExcelFile:  getEnvOrDefault("REPORT_XLSX", def.ExcelFile),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
