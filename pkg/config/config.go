// Package config loads assistant settings from the environment, with an
// optional YAML file providing values underneath the environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every externally provided setting the assistant needs.
type Config struct {
	// Azure OpenAI connection settings. All four are required.
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	APIVersion string `yaml:"api_version"`
	Deployment string `yaml:"deployment"`

	// DataDir contains the knowledge JSON files and the transcript.
	DataDir string `yaml:"data_dir"`

	// MaxMessageLength is the user input ceiling in characters.
	MaxMessageLength int `yaml:"max_message_length"`

	// Completion request tuning.
	MaxTokens          int64         `yaml:"max_tokens"`
	Temperature        float64       `yaml:"temperature"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	MaxAttempts        int           `yaml:"max_attempts"`
	RetryBaseDelay     time.Duration `yaml:"retry_base_delay"`
	MinRequestInterval time.Duration `yaml:"min_request_interval"`
}

// Default returns the built-in configuration before file and environment
// values are applied.
func Default() *Config {
	return &Config{
		DataDir:            "data",
		MaxMessageLength:   5000,
		MaxTokens:          1000,
		Temperature:        0.7,
		RequestTimeout:     30 * time.Second,
		MaxAttempts:        3,
		RetryBaseDelay:     1 * time.Second,
		MinRequestInterval: 100 * time.Millisecond,
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// finally the environment. A missing file at the default path is not an
// error; an explicitly given path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Endpoint, "AZURE_OPENAI_ENDPOINT")
	setString(&c.APIKey, "AZURE_OPENAI_API_KEY")
	setString(&c.APIVersion, "AZURE_OPENAI_API_VERSION")
	setString(&c.Deployment, "AZURE_OPENAI_DEPLOYMENT_NAME")
	setString(&c.DataDir, "ONBOARDING_DATA_DIR")
	setInt(&c.MaxMessageLength, "ONBOARDING_MAX_MESSAGE_LENGTH")
	setInt(&c.MaxAttempts, "ONBOARDING_MAX_ATTEMPTS")
	setDuration(&c.RequestTimeout, "ONBOARDING_REQUEST_TIMEOUT")
}

func setString(dst *string, key string) {
	if value, ok := os.LookupEnv(key); ok {
		*dst = value
	}
}

func setInt(dst *int, key string) {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			*dst = d
		}
	}
}

// Validate checks that every required credential is present and reports all
// missing keys at once so a misconfigured deployment fails fast with a
// complete picture.
func (c *Config) Validate() error {
	var missing []string
	if c.Endpoint == "" {
		missing = append(missing, "AZURE_OPENAI_ENDPOINT")
	}
	if c.APIKey == "" {
		missing = append(missing, "AZURE_OPENAI_API_KEY")
	}
	if c.APIVersion == "" {
		missing = append(missing, "AZURE_OPENAI_API_VERSION")
	}
	if c.Deployment == "" {
		missing = append(missing, "AZURE_OPENAI_DEPLOYMENT_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.MaxAttempts < 1 {
		return errors.New("max_attempts must be at least 1")
	}
	if c.MaxMessageLength < 1 {
		return errors.New("max_message_length must be at least 1")
	}
	return nil
}

// MemberInfoPath returns the member collection file inside DataDir.
func (c *Config) MemberInfoPath() string {
	return filepath.Join(c.DataDir, "member_info.json")
}

// ProcessInfoPath returns the process collection file inside DataDir.
func (c *Config) ProcessInfoPath() string {
	return filepath.Join(c.DataDir, "processes.json")
}

// TechStackInfoPath returns the tech stack collection file inside DataDir.
func (c *Config) TechStackInfoPath() string {
	return filepath.Join(c.DataDir, "techstack.json")
}

// TranscriptPath returns the chat transcript file inside DataDir.
func (c *Config) TranscriptPath() string {
	return filepath.Join(c.DataDir, "chat_history.txt")
}
