package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	LogLevel        string `mapstructure:"log_level"`
	Prefix          string `mapstructure:"prefix"`
	GithubToken     string `mapstructure:"github_token"`
	GithubOwner     string `mapstructure:"github_owner"`
	GithubRepo      string `mapstructure:"github_repo"`
	PypiToken       string `mapstructure:"pypi_token"`
	NpmToken        string `mapstructure:"npm_token"`
	DockerUser      string `mapstructure:"docker_user"`
	DockerToken     string `mapstructure:"docker_token"`
	DockerNamespace string `mapstructure:"docker_namespace"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Prefix:   "/tmp/devtools",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %q", c.LogLevel)
	}
	if c.Prefix == "" {
		return fmt.Errorf("prefix cannot be empty")
	}
	if strings.Contains(c.Prefix, "..") {
		return fmt.Errorf("prefix contains invalid path traversal")
	}
	// GitHub token is optional - only validate if provided
	if c.GithubToken != "" {
		if err := ValidateGitHubToken(c.GithubToken); err != nil {
			return fmt.Errorf("invalid github_token: %w", err)
		}
	}
	if c.GithubOwner != "" || c.GithubRepo != "" {
		if err := ValidateGitHubOwnerRepo(c.GithubOwner, c.GithubRepo); err != nil {
			return fmt.Errorf("invalid github configuration: %w", err)
		}
	}
	return nil
}

// ValidateForGitHubOperations validates that GitHub settings are present for
// operations that require them
func (c *Config) ValidateForGitHubOperations() error {
	if c.GithubToken == "" {
		return fmt.Errorf("github_token is required for GitHub operations")
	}
	if c.GithubOwner == "" || c.GithubRepo == "" {
		return fmt.Errorf("github_owner and github_repo are required for GitHub operations")
	}
	return c.Validate()
}

// ValidateGitHubToken validates GitHub token format (exported for reuse)
func ValidateGitHubToken(token string) error {
	token = strings.TrimSpace(token)
	if len(token) < 40 {
		return fmt.Errorf("token too short: expected at least 40 characters")
	}
	// Validate token format patterns
	classicPAT := regexp.MustCompile(`^[a-fA-F0-9]{40}$`)
	fineGrainedPAT := regexp.MustCompile(`^github_pat_[a-zA-Z0-9_]{82}$`)
	appToken := regexp.MustCompile(`^ghs_[a-zA-Z0-9]{36}$`)
	oauthToken := regexp.MustCompile(`^gho_[a-zA-Z0-9]{36}$`)
	if !classicPAT.MatchString(token) &&
		!fineGrainedPAT.MatchString(token) &&
		!appToken.MatchString(token) &&
		!oauthToken.MatchString(token) {
		return fmt.Errorf("invalid token format")
	}
	return nil
}

// ValidateGitHubOwnerRepo validates GitHub owner and repository names (exported for reuse)
func ValidateGitHubOwnerRepo(owner, repo string) error {
	if owner == "" {
		return fmt.Errorf("owner cannot be empty")
	}
	if repo == "" {
		return fmt.Errorf("repository cannot be empty")
	}
	validName := regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-_.]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)
	if !validName.MatchString(owner) {
		return fmt.Errorf("invalid owner format: %s", owner)
	}
	if len(owner) > 39 {
		return fmt.Errorf("owner too long: maximum 39 characters")
	}
	if !validName.MatchString(repo) {
		return fmt.Errorf("invalid repository format: %s", repo)
	}
	if len(repo) > 100 {
		return fmt.Errorf("repository too long: maximum 100 characters")
	}
	return nil
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".devtools")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	// Configure environment variables
	viper.SetEnvPrefix("DEVTOOLS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Explicitly bind environment variables
	// BindEnv allows multiple env vars - it will check them in order
	bindings := map[string][]string{
		"log_level":        {"DEVTOOLS_LOG_LEVEL"},
		"prefix":           {"DEVTOOLS_PREFIX"},
		"github_token":     {"GITHUB_TOKEN", "DEVTOOLS_GITHUB_TOKEN"},
		"github_owner":     {"GITHUB_REPOSITORY_OWNER", "DEVTOOLS_GITHUB_OWNER"},
		"github_repo":      {"GITHUB_REPOSITORY_NAME", "DEVTOOLS_GITHUB_REPO"},
		"pypi_token":       {"PYPI_TOKEN", "DEVTOOLS_PYPI_TOKEN"},
		"npm_token":        {"NPM_TOKEN", "DEVTOOLS_NPM_TOKEN"},
		"docker_user":      {"DOCKER_USER", "DEVTOOLS_DOCKER_USER"},
		"docker_token":     {"DOCKER_TOKEN", "DEVTOOLS_DOCKER_TOKEN"},
		"docker_namespace": {"DOCKER_NAMESPACE", "DEVTOOLS_DOCKER_NAMESPACE"},
	}
	for key, envs := range bindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s env: %w", key, err)
		}
	}
	// Set defaults
	defaults := DefaultConfig()
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("prefix", defaults.Prefix)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}
