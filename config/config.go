package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sjsage522/streamyardchat/internal/scraper"
	"sjsage522/streamyardchat/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Target page
	URL string

	// Chat selectors; empty values fall back to the built-in defaults
	ContainerSelector string
	MessageSelector   string
	NicknameSelector  string
	TextSelector      string

	// Output
	OutputPath         string
	IncludeMessageTime bool
	WriteCSV           bool

	// Session timing
	PollInterval time.Duration
	ReadyTimeout time.Duration
	ExtractMode  string

	// Browser host
	BrowserControlURL  string
	BrowserBin         string
	BrowserUserDataDir string
	BrowserHeadless    bool

	// Redis stream configuration; an empty address disables live publishing
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int
	RedisPublishTimeout  time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	pollIntervalMs, _ := strconv.Atoi(getEnv("POLL_INTERVAL_MS", "1000"))
	readyTimeout, _ := strconv.Atoi(getEnv("READY_TIMEOUT_SECONDS", "20"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "10000"))
	redisPublishTimeoutMs, _ := strconv.Atoi(getEnv("REDIS_PUBLISH_TIMEOUT_MS", "500"))

	return &Config{
		URL:                  getEnv("STREAMYARD_URL", "https://streamyard.studio/?v=UnchainedPodcasts"),
		ContainerSelector:    getEnv("CHAT_CONTAINER_SELECTOR", ""),
		MessageSelector:      getEnv("CHAT_MESSAGE_SELECTOR", ""),
		NicknameSelector:     getEnv("CHAT_NICKNAME_SELECTOR", ""),
		TextSelector:         getEnv("CHAT_TEXT_SELECTOR", ""),
		OutputPath:           getEnv("OUTPUT_PATH", "output/streamyard_chat.xlsx"),
		IncludeMessageTime:   getBool("INCLUDE_MESSAGE_TIME", false),
		WriteCSV:             getBool("WRITE_CSV", false),
		PollInterval:         time.Duration(pollIntervalMs) * time.Millisecond,
		ReadyTimeout:         time.Duration(readyTimeout) * time.Second,
		ExtractMode:          getEnv("EXTRACT_MODE", scraper.ExtractModeScript),
		BrowserControlURL:    getEnv("BROWSER_CONTROL_URL", ""),
		BrowserBin:           getEnv("BROWSER_BIN", ""),
		BrowserUserDataDir:   getEnv("BROWSER_USER_DATA_DIR", ""),
		BrowserHeadless:      getBool("BROWSER_HEADLESS", false),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "streamyard:chat"),
		RedisStreamMaxLength: redisStreamMaxLength,
		RedisPublishTimeout:  time.Duration(redisPublishTimeoutMs) * time.Millisecond,
		Environment:          getEnv("CHAT_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the session cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return errors.NewValidation("url is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.NewValidation("url must be an absolute http(s) address: " + c.URL)
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return errors.NewValidation("output path is required")
	}
	if c.WriteCSV && strings.EqualFold(filepath.Ext(c.OutputPath), ".csv") {
		return errors.NewValidation("output path must not end in .csv when the CSV copy is enabled: " + c.OutputPath)
	}
	if c.PollInterval <= 0 {
		return errors.NewValidation("poll interval must be positive")
	}
	if c.ReadyTimeout <= 0 {
		return errors.NewValidation("ready timeout must be positive")
	}
	switch c.ExtractMode {
	case scraper.ExtractModeScript, scraper.ExtractModeDocument:
	default:
		return errors.NewValidation("unknown extract mode: " + c.ExtractMode)
	}
	if c.RedisAddr != "" && c.RedisStream == "" {
		return errors.NewValidation("redis stream is required when redis is enabled")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}
