package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the asana-mailer configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the asana-mailer configuration directory
const ConfigDirName = ".asana-mailer"

// AccessTokenEnvVar is the environment variable consulted for the Asana
// personal access token when the config file does not set one.
const AccessTokenEnvVar = "ASANA_ACCESS_TOKEN"

// Config holds all asana-mailer configuration
type Config struct {
	Asana     AsanaConfig     `yaml:"asana"`
	Report    ReportConfig    `yaml:"report"`
	Templates TemplatesConfig `yaml:"templates"`
	Mail      MailConfig      `yaml:"mail"`
	Cache     CacheConfig     `yaml:"cache"`
}

// AsanaConfig holds configuration for the Asana API client
type AsanaConfig struct {
	AccessToken    string `yaml:"access_token"`
	ProjectID      string `yaml:"project_id"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ReportConfig holds configuration for report assembly and filtering
type ReportConfig struct {
	CompletedLookbackHours int      `yaml:"completed_lookback_hours"`
	TagFilters             []string `yaml:"tag_filters"`
	SectionFilters         []string `yaml:"section_filters"`
	SkipInlineCSS          bool     `yaml:"skip_inline_css"`
	Workers                int      `yaml:"workers"`
}

// TemplatesConfig holds configuration for custom report templates
type TemplatesConfig struct {
	Dir  string `yaml:"dir"`
	HTML string `yaml:"html"`
	Text string `yaml:"text"`
}

// MailConfig holds configuration for SMTP delivery
type MailConfig struct {
	Server   string   `yaml:"server"`
	Port     int      `yaml:"port"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
	Cc       []string `yaml:"cc"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
}

// CacheConfig holds configuration for the local story cache
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .asana-mailer/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults. The
// ASANA_ACCESS_TOKEN environment variable fills in a missing access token.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		// No config dir found, return defaults
		return applyEnv(DefaultConfig()), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(DefaultConfig()), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Merge with defaults
	merged := applyEnv(Merge(loaded, DefaultConfig()))

	// Validate the merged config
	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// applyEnv fills in values that come from the environment rather than the
// config file. The file value wins when both are set.
func applyEnv(cfg *Config) *Config {
	if cfg.Asana.AccessToken == "" {
		cfg.Asana.AccessToken = os.Getenv(AccessTokenEnvVar)
	}
	return cfg
}

// FindConfigDir locates the .asana-mailer directory by walking up from startDir.
// Returns the path to the .asana-mailer directory if found.
func FindConfigDir(startDir string) (string, error) {
	// Get absolute path
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		// Move to parent directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, config not found
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .asana-mailer directory if it doesn't exist.
// Returns the path to the .asana-mailer directory.
func EnsureConfigDir(workDir string) (string, error) {
	// Get absolute path
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	// Check if it already exists
	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	// Create the directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	// Validate API timeout (should be positive)
	if cfg.Asana.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: timeout_seconds must be positive, got %d",
			ErrInvalidConfig, cfg.Asana.TimeoutSeconds)
	}

	// Validate lookback (should be non-negative; zero means none)
	if cfg.Report.CompletedLookbackHours < 0 {
		return fmt.Errorf("%w: completed_lookback_hours must be non-negative, got %d",
			ErrInvalidConfig, cfg.Report.CompletedLookbackHours)
	}

	// Validate workers (should be positive)
	if cfg.Report.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d",
			ErrInvalidConfig, cfg.Report.Workers)
	}

	// Validate SMTP port (should be a valid port number when set)
	if cfg.Mail.Port < 0 || cfg.Mail.Port > 65535 {
		return fmt.Errorf("%w: mail port must be between 0 and 65535, got %d",
			ErrInvalidConfig, cfg.Mail.Port)
	}

	// From and To are required together: mail delivery needs both
	fromSet := cfg.Mail.From != ""
	toSet := len(cfg.Mail.To) > 0
	if fromSet != toSet {
		return fmt.Errorf("%w: mail from and to addresses must be set together",
			ErrInvalidConfig)
	}

	return nil
}

// SaveDefault writes the default configuration to .asana-mailer/config.yaml
// in workDir. Creates the .asana-mailer directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	// Add header comment
	header := "# asana-mailer configuration\n# The Asana access token may also be set via ASANA_ACCESS_TOKEN\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
