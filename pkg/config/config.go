package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the downloader reads
const EnvPrefix = "PINITDOWN_"

// MaxConcurrent caps the number of links processed in parallel
const MaxConcurrent = 8

// DefaultUserAgent mimics a desktop browser; pin pages served to unknown
// agents carry no media URLs
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Config holds all configuration options for the pin downloader
type Config struct {
	// Outbound HTTP behaviour
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Batch settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Terminal presentation
	UI UIConfig `yaml:"ui" json:"ui"`
}

// HTTPConfig holds the page and asset fetcher settings
type HTTPConfig struct {
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	Referer      string        `yaml:"referer" json:"referer"`
	PageTimeout  time.Duration `yaml:"page_timeout" json:"page_timeout"`
	AssetTimeout time.Duration `yaml:"asset_timeout" json:"asset_timeout"`
	// InsecureSkipVerify disables TLS certificate checks. Off unless asked for.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" json:"insecure_skip_verify"`
	// RequestsPerMinute paces outbound requests, 0 disables pacing
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	// MaxAssetBytes rejects larger assets, 0 means no limit
	MaxAssetBytes int64 `yaml:"max_asset_bytes" json:"max_asset_bytes"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// DownloadConfig holds batch settings
type DownloadConfig struct {
	Concurrent int `yaml:"concurrent" json:"concurrent"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format"`
}

// UIConfig holds terminal output preferences
type UIConfig struct {
	Color         bool `yaml:"color" json:"color"`
	Notifications bool `yaml:"notifications" json:"notifications"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			UserAgent:         DefaultUserAgent,
			Referer:           "https://www.pinterest.com/",
			PageTimeout:       20 * time.Second,
			AssetTimeout:      30 * time.Second,
			RequestsPerMinute: 60,
		},
		Output: OutputConfig{
			Directory: "./downloads",
		},
		Download: DownloadConfig{
			Concurrent: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		UI: UIConfig{
			Color:         true,
			Notifications: true,
		},
	}
}

// LoadFromEnv loads configuration from PINITDOWN_* environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv(EnvPrefix + "USER_AGENT"); v != "" {
		c.HTTP.UserAgent = v
	}
	if v := os.Getenv(EnvPrefix + "REFERER"); v != "" {
		c.HTTP.Referer = v
	}
	if v := os.Getenv(EnvPrefix + "PAGE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPAGE_TIMEOUT: %w", EnvPrefix, err))
		} else {
			c.HTTP.PageTimeout = d
		}
	}
	if v := os.Getenv(EnvPrefix + "ASSET_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sASSET_TIMEOUT: %w", EnvPrefix, err))
		} else {
			c.HTTP.AssetTimeout = d
		}
	}
	if v := os.Getenv(EnvPrefix + "INSECURE"); v != "" {
		c.HTTP.InsecureSkipVerify = parseBool(v)
	}
	if v := os.Getenv(EnvPrefix + "REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sREQUESTS_PER_MINUTE: %w", EnvPrefix, err))
		} else {
			c.HTTP.RequestsPerMinute = n
		}
	}

	if v := os.Getenv(EnvPrefix + "OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}

	if v := os.Getenv(EnvPrefix + "CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sCONCURRENT: %w", EnvPrefix, err))
		} else {
			c.Download.Concurrent = n
		}
	}

	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(EnvPrefix + "NO_COLOR"); v != "" {
		c.UI.Color = !parseBool(v)
	}
	if v := os.Getenv(EnvPrefix + "NOTIFICATIONS"); v != "" {
		c.UI.Notifications = parseBool(v)
	}

	return errors.Join(errs...)
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// DefaultPath is where `config init` writes a new file
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "pinitdown", "config.yaml")
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".pinitdown.yaml",
		".pinitdown.yml",
		filepath.Join(home, ".config", "pinitdown", "config.yaml"),
		filepath.Join(home, ".config", "pinitdown", "config.yml"),
		filepath.Join(home, ".pinitdown.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.HTTP.PageTimeout <= 0 {
		errs = append(errs, errors.New("page timeout must be positive"))
	}
	if c.HTTP.AssetTimeout <= 0 {
		errs = append(errs, errors.New("asset timeout must be positive"))
	}
	if c.HTTP.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if c.HTTP.MaxAssetBytes < 0 {
		errs = append(errs, errors.New("max asset bytes cannot be negative"))
	}

	if strings.TrimSpace(c.Output.Directory) == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Download.Concurrent <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.Concurrent > MaxConcurrent {
		errs = append(errs, fmt.Errorf("concurrent downloads should not exceed %d", MaxConcurrent))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, errors.New("log format must be console or json"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only flags the user actually set should be present in the map.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if concurrent, ok := flags["concurrent"].(int); ok && concurrent > 0 {
		c.Download.Concurrent = concurrent
	}
	if insecure, ok := flags["insecure"].(bool); ok {
		c.HTTP.InsecureSkipVerify = insecure
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
	if noColor, ok := flags["no-color"].(bool); ok && noColor {
		c.UI.Color = false
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".pinitdown.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
