package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the search settings. Environment variables (optionally from a
// .env file) override the defaults; command-line flags override both.
type Config struct {
	// ChunkDataPath is a directory of per-level CSV tables or a JSON catalog.
	ChunkDataPath string `validate:"required"`
	// KeepBest is how many of the fastest seeds the leaderboard keeps.
	KeepBest int `validate:"min=1,max=100000"`
	// ReportInterval is the minimum time between two progress reports.
	ReportInterval time.Duration `validate:"min=1s"`
	// Verbose enables debug logging.
	Verbose bool
}

// DefaultConfig returns the settings the cruncher uses without overrides.
func DefaultConfig() Config {
	return Config{
		ChunkDataPath:  "chunk_data",
		KeepBest:       50,
		ReportInterval: 10 * time.Second,
	}
}

// Environment keys read by LoadConfig.
const (
	envChunkData      = "SEED_CRUNCHER_CHUNK_DATA"
	envKeepBest       = "SEED_CRUNCHER_KEEP_BEST"
	envReportInterval = "SEED_CRUNCHER_REPORT_INTERVAL"
	envVerbose        = "SEED_CRUNCHER_VERBOSE"
)

// LoadConfig applies environment overrides to the defaults. A missing .env
// file is not an error.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	d := DefaultConfig()
	keep, err := getIntEnv(envKeepBest, d.KeepBest)
	if err != nil {
		return Config{}, err
	}
	interval, err := getDurationEnv(envReportInterval, d.ReportInterval)
	if err != nil {
		return Config{}, err
	}
	verbose, err := getBoolEnv(envVerbose, d.Verbose)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		ChunkDataPath:  getEnv(envChunkData, d.ChunkDataPath),
		KeepBest:       keep,
		ReportInterval: interval,
		Verbose:        verbose,
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every setting and reports all invalid ones at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), validationMessage(fe)))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func getBoolEnv(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}
