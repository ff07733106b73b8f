package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	Port     string
	DBConn   string
	LogLevel string
	CBRURL   string

	// OpenAIKey is the forecasting service credential. Empty disables the AI forecaster.
	OpenAIKey     string
	OpenAIURL     string
	OpenAIModel   string
	OpenAITimeout time.Duration

	RatesRefreshSpec string
}

// NewConfig loads configuration from environment variables.
// Values from a .env file in the working directory are used when present;
// real environment variables take precedence.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBConn:           getEnv("DB_CONN", "host=localhost port=5432 user=firefly password=firefly dbname=firefly sslmode=disable"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		CBRURL:           getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIURL:        getEnv("OPENAI_URL", "https://api.openai.com/v1"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-5.2"),
		OpenAITimeout:    getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		RatesRefreshSpec: getEnv("RATES_REFRESH_SPEC", "@every 1h"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid PORT %q", c.Port))
	}
	if c.DBConn == "" {
		problems = append(problems, "DB_CONN is required")
	}
	if _, err := url.ParseRequestURI(c.CBRURL); err != nil {
		problems = append(problems, fmt.Sprintf("invalid CBR_URL %q: %v", c.CBRURL, err))
	}
	if _, err := url.ParseRequestURI(c.OpenAIURL); err != nil {
		problems = append(problems, fmt.Sprintf("invalid OPENAI_URL %q: %v", c.OpenAIURL, err))
	}
	if c.OpenAITimeout <= 0 {
		problems = append(problems, "OPENAI_TIMEOUT must be positive")
	}
	if _, err := cron.ParseStandard(c.RatesRefreshSpec); err != nil {
		problems = append(problems, fmt.Sprintf("invalid RATES_REFRESH_SPEC %q: %v", c.RatesRefreshSpec, err))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// AIEnabled reports whether a forecasting service credential is configured
func (c *Config) AIEnabled() bool {
	return c.OpenAIKey != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return -1
	}
	return d
}
