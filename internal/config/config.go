package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Weather WeatherConfig
	Sheets  SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	UploadMaxBytes int64
}

// LogConfig selects the minimum log level.
type LogConfig struct {
	Level string
}

// WeatherConfig contains options for the OpenWeather API. The API key is not
// part of it: growers type their own key into the dashboard form.
type WeatherConfig struct {
	BaseURL     string
	Timeout     time.Duration
	Units       string
	Language    string
	DefaultCity string
}

// SheetsConfig contains the optional Google Sheets harvest source.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether a Sheets harvest source was configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine; the environment may carry everything.
		_ = godotenv.Load()
	}

	uploadMax, err := getenvInt64("UPLOAD_MAX_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}

	timeout, err := getenvDuration("OPENWEATHER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			UploadMaxBytes: uploadMax,
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Weather: WeatherConfig{
			BaseURL:     getenvWithDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
			Timeout:     timeout,
			Units:       getenvWithDefault("OPENWEATHER_UNITS", "metric"),
			Language:    getenvWithDefault("OPENWEATHER_LANG", "pt_br"),
			DefaultCity: getenvWithDefault("DEFAULT_CITY", "Londrina"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Server.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}

	switch {
	case c.Weather.BaseURL == "":
		return errors.New("OPENWEATHER_BASE_URL must not be empty")
	case c.Weather.Timeout <= 0:
		return errors.New("OPENWEATHER_TIMEOUT must be positive")
	case c.Weather.Units == "":
		return errors.New("OPENWEATHER_UNITS must not be empty")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt64(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
