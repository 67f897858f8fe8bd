package config

import (
	"fmt"
	"os"
	"strings"

	"ocrtool/internal/logger"
	"ocrtool/internal/ocr"
)

type Config struct {
	// OCR Engine Configuration
	Engine         string
	TessdataPrefix string

	// Google Cloud Configuration
	GoogleCloudProject           string
	GoogleCloudLocation          string
	DocumentAIProcessorID        string
	GoogleCredentials            string
	GoogleApplicationCredentials string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		Engine:                       strings.ToLower(getEnv("OCR_ENGINE", ocr.EngineTesseract)),
		TessdataPrefix:               getEnv("TESSDATA_PREFIX", ""),
		GoogleCloudProject:           getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:          getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:        getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		GoogleCredentials:            getEnv("GOOGLE_CREDENTIALS", ""),
		GoogleApplicationCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		LogLevel:                     getEnv("LOG_LEVEL", "warn"),
		LogFormat:                    getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:                getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                    getEnv("LOG_OUTPUT", "stderr"),
	}

	// The populated config is returned even when validation fails so callers
	// keep the credentials and logging settings. Engine-specific settings are
	// checked when the engine is opened.
	if err := config.validate(); err != nil {
		return config, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if !ocr.IsEngine(c.Engine) {
		return fmt.Errorf("OCR_ENGINE must be one of %s, got %q", strings.Join(ocr.Engines(), ", "), c.Engine)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// EngineConfig returns the engine settings from the main config
func (c *Config) EngineConfig() ocr.Config {
	return ocr.Config{
		TessdataPrefix:  c.TessdataPrefix,
		ProjectID:       c.GoogleCloudProject,
		Location:        c.GoogleCloudLocation,
		ProcessorID:     c.DocumentAIProcessorID,
		CredentialsJSON: c.GoogleCredentials,
		CredentialsFile: c.GoogleApplicationCredentials,
	}
}

// Default returns the configuration used before main has loaded the
// environment: tesseract with default logging.
func Default() *Config {
	def := logger.DefaultConfig()
	return &Config{
		Engine:              ocr.EngineTesseract,
		GoogleCloudLocation: "us",
		LogLevel:            def.Level,
		LogFormat:           def.Format,
		LogTimeFormat:       def.TimeFormat,
		LogOutput:           def.Output,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
