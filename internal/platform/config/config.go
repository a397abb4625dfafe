package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config holds process-level settings. Application documents (games, backends)
// live in the settings store, not here.
type Config struct {
	DBPath            string        `env:"YAGT_DB_PATH" default:"data/yagt.db"`
	LogLevel          string        `env:"YAGT_LOG_LEVEL" default:"info"`
	LogFormat         string        `env:"YAGT_LOG_FORMAT" default:"console"`
	ExtractorPath     string        `env:"YAGT_EXTRACTOR_PATH" default:"TextractorCLI.exe"`
	ExtractorEncoding string        `env:"YAGT_EXTRACTOR_ENCODING" default:"utf-16le"`
	AttachTimeout     time.Duration `env:"YAGT_ATTACH_TIMEOUT" default:"3s"`
	LivenessInterval  time.Duration `env:"YAGT_LIVENESS_INTERVAL" default:"1s"`
	ReadyDelay        time.Duration `env:"YAGT_READY_DELAY" default:"2s"`
	TeardownTimeout   time.Duration `env:"YAGT_TEARDOWN_TIMEOUT" default:"10s"`
	WrapperTimeout    time.Duration `env:"YAGT_WRAPPER_TIMEOUT" default:"15s"`
	TargetLanguage    string        `env:"YAGT_TARGET_LANGUAGE" default:"en"`
	TranslateWorkers  int           `env:"YAGT_TRANSLATE_WORKERS" default:"4"`
	TranslateTimeout  time.Duration `env:"YAGT_TRANSLATE_TIMEOUT" default:"15s"`
	CaptureBuffer     int           `env:"YAGT_CAPTURE_BUFFER" default:"256"`
	MetricsAddr       string        `env:"YAGT_METRICS_ADDR"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DBPath == "" {
		return errors.New("YAGT_DB_PATH must not be empty")
	}
	if cfg.LivenessInterval <= 0 {
		return errors.New("YAGT_LIVENESS_INTERVAL must be positive")
	}
	if cfg.TranslateWorkers < 1 {
		return fmt.Errorf("YAGT_TRANSLATE_WORKERS must be >= 1, got %d", cfg.TranslateWorkers)
	}
	if cfg.CaptureBuffer < 1 {
		return fmt.Errorf("YAGT_CAPTURE_BUFFER must be >= 1, got %d", cfg.CaptureBuffer)
	}
	return nil
}
