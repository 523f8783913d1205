// Package config loads process configuration once at startup: from a
// .env file if present, an optional YAML file, and the environment,
// with the environment taking precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8000"

// Config holds everything the process needs to talk to the tracker
// and the model endpoint.
type Config struct {
	Addr string `yaml:"addr"`

	JiraBaseURL  string `yaml:"jira_base_url"`
	JiraEmail    string `yaml:"jira_email"`
	JiraAPIToken string `yaml:"jira_api_token"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	Model           string `yaml:"model"`
}

// Load reads configuration. A .env file in the working directory is
// loaded into the environment first (missing is fine). If yamlPath is
// non-empty the file must exist and parse. Environment variables
// override YAML values.
func Load(yamlPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{Addr: DefaultAddr}

	if yamlPath != "" {
		raw, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", yamlPath, err)
		}
		if cfg.Addr == "" {
			cfg.Addr = DefaultAddr
		}
	}

	setFromEnv(&cfg.JiraBaseURL, "JIRA_BASE_URL")
	setFromEnv(&cfg.JiraEmail, "JIRA_EMAIL")
	setFromEnv(&cfg.JiraAPIToken, "JIRA_API_TOKEN")
	setFromEnv(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setFromEnv(&cfg.Model, "JIRA_AI_MODEL")
	setFromEnv(&cfg.Addr, "JIRA_AI_ADDR")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// validate reports every missing required setting in one error so a
// misconfigured deployment fails startup with the full picture.
func (c *Config) validate() error {
	var missing []string
	if c.JiraBaseURL == "" {
		missing = append(missing, "JIRA_BASE_URL")
	}
	if c.JiraEmail == "" {
		missing = append(missing, "JIRA_EMAIL")
	}
	if c.JiraAPIToken == "" {
		missing = append(missing, "JIRA_API_TOKEN")
	}
	if c.AnthropicAPIKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
