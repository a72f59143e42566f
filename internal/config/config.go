package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Feed holds the RSS channel metadata. Everything here has a default, so the
// YAML file is optional.
type Feed struct {
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
	// JobBaseURL is the public careers page; item permalinks are <JobBaseURL>/<id>.
	JobBaseURL string `yaml:"job_base_url"`
}

type Config struct {
	// APIToken is the upstream bearer token. Required; we refuse to start without it.
	APIToken string

	// BaseURL is the upstream ATS API root, without trailing slash.
	BaseURL string

	// PageSize is the limit query parameter sent on listing calls.
	PageSize int

	Port string

	Feed Feed
}

var ErrMissingToken = errors.New("CAREERS_API_TOKEN is not set")

// Load reads configuration from the environment. godotenv runs in main before
// this, so a local .env file works too.
func Load() (*Config, error) {
	cfg := &Config{
		APIToken: os.Getenv("CAREERS_API_TOKEN"),
		BaseURL:  os.Getenv("CAREERS_API_BASE_URL"),
		Port:     os.Getenv("PORT"),
	}

	if v := os.Getenv("CAREERS_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("CAREERS_PAGE_SIZE %q: %w", v, err)
		}
		cfg.PageSize = n
	}

	if path := os.Getenv("FEED_CONFIG"); path != "" {
		feed, err := LoadFeedFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Feed = feed
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFeedFile reads RSS channel metadata from a YAML file.
func LoadFeedFile(path string) (Feed, error) {
	var f Feed
	b, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read feed config: %w", err)
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("parse feed config: %w", err)
	}
	return f, nil
}

func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.resumatorapi.com/v1"
	}
	if c.PageSize == 0 {
		c.PageSize = 100
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.Feed.Title == "" {
		c.Feed.Title = "Open Positions"
	}
	if c.Feed.Link == "" {
		c.Feed.Link = "https://example.com/careers"
	}
	if c.Feed.Description == "" {
		c.Feed.Description = "Current job openings"
	}
	if c.Feed.Language == "" {
		c.Feed.Language = "en-us"
	}
	if c.Feed.JobBaseURL == "" {
		c.Feed.JobBaseURL = c.Feed.Link
	}
}

// Validate checks required fields. The token is a hard requirement: a missing
// credential is a configuration error, never silently ignored.
func (c *Config) Validate() error {
	if c.APIToken == "" {
		return ErrMissingToken
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	return nil
}
