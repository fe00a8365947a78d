package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"goeda/domain/table"
	"goeda/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Limits    LimitsConfig
	Analysis  AnalysisConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig holds how uploaded files are read and exported
type DataConfig struct {
	Separator       string
	Decimal         string
	NullTokens      []string // blank cells are null regardless
	TimeLayouts     []string
	InferTimestamps bool
	ExportFilename  string
}

// LimitsConfig bounds memory and concurrency of the HTTP surface
type LimitsConfig struct {
	MaxUploadMB          int
	MaxSessions          int
	MaxConcurrentUploads int
	PreviewRows          int
}

// AnalysisConfig holds statistics thresholds
type AnalysisConfig struct {
	MinGroupSize    int
	HighCardinality int
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Data:      *loadDataConfig(),
		Limits:    *loadLimitsConfig(),
		Analysis:  *loadAnalysisConfig(),
		Profiling: *loadProfilingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Separator:       getEnvOrDefault("EDA_SEPARATOR", ","),
		Decimal:         getEnvOrDefault("EDA_DECIMAL", "."),
		NullTokens:      getEnvListOrDefault("EDA_NULL_TOKENS", table.DefaultNullTokens),
		TimeLayouts:     getEnvListOrDefault("EDA_TIMESTAMP_LAYOUTS", table.DefaultTimeLayouts),
		InferTimestamps: getEnvBoolOrDefault("EDA_INFER_TIMESTAMPS", true),
		ExportFilename:  getEnvOrDefault("EDA_EXPORT_FILENAME", "data.csv"),
	}
}

func loadLimitsConfig() *LimitsConfig {
	return &LimitsConfig{
		MaxUploadMB:          getEnvIntOrDefault("EDA_MAX_UPLOAD_MB", 200),
		MaxSessions:          getEnvIntOrDefault("EDA_MAX_SESSIONS", 16),
		MaxConcurrentUploads: getEnvIntOrDefault("EDA_MAX_CONCURRENT_UPLOADS", 2),
		PreviewRows:          getEnvIntOrDefault("EDA_PREVIEW_ROWS", 20),
	}
}

func loadAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		MinGroupSize:    getEnvIntOrDefault("EDA_MIN_GROUP_SIZE", 2),
		HighCardinality: getEnvIntOrDefault("EDA_HIGH_CARDINALITY", 50),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if utf8.RuneCountInString(config.Data.Decimal) != 1 {
		return errors.ConfigInvalid(fmt.Sprintf("EDA_DECIMAL must be a single character, got %q", config.Data.Decimal))
	}
	if config.Data.Decimal == config.Data.Separator {
		return errors.ConfigInvalid("EDA_DECIMAL and EDA_SEPARATOR must differ")
	}
	if len(config.Data.TimeLayouts) == 0 {
		return errors.ConfigInvalid("at least one timestamp layout is required")
	}
	if config.Limits.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("EDA_MAX_UPLOAD_MB must be positive")
	}
	if config.Limits.MaxConcurrentUploads <= 0 {
		return errors.ConfigInvalid("EDA_MAX_CONCURRENT_UPLOADS must be positive")
	}
	if config.Limits.MaxSessions < 0 {
		return errors.ConfigInvalid("EDA_MAX_SESSIONS cannot be negative")
	}
	if config.Analysis.MinGroupSize < 1 {
		return errors.ConfigInvalid("EDA_MIN_GROUP_SIZE must be at least 1")
	}
	if strings.TrimSpace(config.Data.ExportFilename) == "" {
		return errors.ConfigInvalid("EDA_EXPORT_FILENAME cannot be blank")
	}
	return nil
}

// Parser builds the cell parser described by the data settings.
func (c DataConfig) Parser() table.Parser {
	dec, size := utf8.DecodeRuneInString(c.Decimal)
	if size == 0 {
		dec = '.'
	}
	return table.Parser{
		Decimal:     dec,
		TimeLayouts: c.TimeLayouts,
		NullTokens:  c.NullTokens,
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a '|'-separated list. Commas are common inside
// null tokens and layouts, so they cannot be the delimiter. An explicitly
// set but empty entry list keeps the empty string as a token.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	parts := strings.Split(value, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
