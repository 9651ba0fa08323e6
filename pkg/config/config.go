package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"gopkg.in/ini.v1"
)

const (
	// DefaultPath is used when neither SALESFORCE_CONFIG nor an explicit path is given.
	DefaultPath = "salesforce_config.ini"

	// Section is the INI section holding the connection settings.
	Section = "Salesforce"

	DefaultVersion     = "60.0"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 1
)

// INI keys.
const (
	KeyVersion        = "SalesforceVersionNumber"
	KeyConsumerKey    = "CONSUMER_KEY"
	KeyConsumerSecret = "CONSUMER_SECRET"
	KeyUsername       = "USERNAME"
	KeyPassword       = "PASSWORD"
	KeyToken          = "TOKEN"
	KeyEndpoint       = "ENDPOINT"
	KeyTimeout        = "TIMEOUT"
	KeyMaxAttempts    = "MAX_ATTEMPTS"
)

var (
	// ErrConfigCreated is returned when the config file did not exist and a
	// placeholder file was written in its place. The operator has to edit it.
	ErrConfigCreated = errors.New("config file created with placeholder values")

	// ErrPlaceholder is returned when a value still holds its placeholder.
	ErrPlaceholder = errors.New("value still holds its placeholder")
)

// placeholders are written to a freshly created file, in this order.
var placeholders = []struct{ key, value string }{
	{KeyVersion, DefaultVersion},
	{KeyConsumerKey, "ConsumerKey"},
	{KeyConsumerSecret, "ConsumerSecret"},
	{KeyUsername, "LoginUsername"},
	{KeyPassword, "LoginPassword"},
	{KeyToken, "SecurityToken"},
	{KeyEndpoint, "salesforceinstanceurl"},
}

type Config struct {
	Path string

	VersionNumber  string
	ConsumerKey    string
	ConsumerSecret string
	Username       string
	Password       string
	SecurityToken  string
	Endpoint       string

	Timeout     time.Duration
	MaxAttempts int
}

// Load reads the file named by SALESFORCE_CONFIG, or DefaultPath.
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	path := os.Getenv("SALESFORCE_CONFIG")
	if path == "" {
		path = DefaultPath
	}
	return load(path)
}

// LoadFile reads the INI file at path, applies SALESFORCE_* environment
// overrides and validates the result. A missing file is created with
// placeholder values and ErrConfigCreated is returned.
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()
	return load(path)
}

func load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := WritePlaceholders(path); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: edit %s before running again", ErrConfigCreated, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	// passwords and secrets may contain '#' or ';'
	file, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	section, err := file.GetSection(Section)
	if err != nil {
		return nil, fmt.Errorf("section [%s] missing in %s", Section, path)
	}

	cfg := &Config{
		Path:           path,
		VersionNumber:  section.Key(KeyVersion).MustString(DefaultVersion),
		ConsumerKey:    section.Key(KeyConsumerKey).String(),
		ConsumerSecret: section.Key(KeyConsumerSecret).String(),
		Username:       section.Key(KeyUsername).String(),
		Password:       section.Key(KeyPassword).String(),
		SecurityToken:  section.Key(KeyToken).String(),
		Endpoint:       section.Key(KeyEndpoint).String(),
		Timeout:        DefaultTimeout,
		MaxAttempts:    DefaultMaxAttempts,
	}

	if key := section.Key(KeyTimeout); key.String() != "" {
		if cfg.Timeout, err = key.Duration(); err != nil {
			return nil, fmt.Errorf("%s: %w", KeyTimeout, err)
		}
	}
	if key := section.Key(KeyMaxAttempts); key.String() != "" {
		if cfg.MaxAttempts, err = key.Int(); err != nil {
			return nil, fmt.Errorf("%s: %w", KeyMaxAttempts, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WritePlaceholders creates path with the placeholder section.
func WritePlaceholders(path string) error {
	file := ini.Empty()
	section, err := file.NewSection(Section)
	if err != nil {
		return fmt.Errorf("failed to create section: %w", err)
	}
	for _, p := range placeholders {
		if _, err := section.NewKey(p.key, p.value); err != nil {
			return fmt.Errorf("failed to add key %s: %w", p.key, err)
		}
	}
	if err := file.SaveTo(path); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"SALESFORCE_VERSION":         &c.VersionNumber,
		"SALESFORCE_CONSUMER_KEY":    &c.ConsumerKey,
		"SALESFORCE_CONSUMER_SECRET": &c.ConsumerSecret,
		"SALESFORCE_USERNAME":        &c.Username,
		"SALESFORCE_PASSWORD":        &c.Password,
		"SALESFORCE_TOKEN":           &c.SecurityToken,
		"SALESFORCE_ENDPOINT":        &c.Endpoint,
	}
	for name, field := range overrides {
		if v, ok := os.LookupEnv(name); ok {
			*field = v
		}
	}

	if v := os.Getenv("SALESFORCE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SALESFORCE_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("SALESFORCE_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SALESFORCE_MAX_ATTEMPTS: %w", err)
		}
		c.MaxAttempts = n
	}
	return nil
}

func (c *Config) Validate() error {
	required := []struct {
		key, value string
	}{
		{KeyConsumerKey, c.ConsumerKey},
		{KeyConsumerSecret, c.ConsumerSecret},
		{KeyUsername, c.Username},
		{KeyPassword, c.Password},
		{KeyEndpoint, c.Endpoint},
		{KeyVersion, c.VersionNumber},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}

	// TOKEN may be empty when the org trusts the caller's IP range
	for _, p := range placeholders {
		if p.key == KeyVersion {
			continue
		}
		if c.value(p.key) == p.value {
			return fmt.Errorf("%s: %w (%q)", p.key, ErrPlaceholder, p.value)
		}
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyTimeout)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%s must be at least 1", KeyMaxAttempts)
	}
	return nil
}

func (c *Config) value(key string) string {
	switch key {
	case KeyConsumerKey:
		return c.ConsumerKey
	case KeyConsumerSecret:
		return c.ConsumerSecret
	case KeyUsername:
		return c.Username
	case KeyPassword:
		return c.Password
	case KeyToken:
		return c.SecurityToken
	case KeyEndpoint:
		return c.Endpoint
	case KeyVersion:
		return c.VersionNumber
	}
	return ""
}

// Credentials projects the config onto the values needed for the token exchange.
func (c *Config) Credentials() sfrest.Credentials {
	return sfrest.Credentials{
		ConsumerKey:    c.ConsumerKey,
		ConsumerSecret: c.ConsumerSecret,
		Username:       c.Username,
		Password:       c.Password,
		SecurityToken:  c.SecurityToken,
		Endpoint:       c.Endpoint,
	}
}

// Salesforce builds the client configuration.
func (c *Config) Salesforce() *sfrest.Config {
	return &sfrest.Config{
		Credentials: c.Credentials(),
		APIVersion:  c.VersionNumber,
		Timeout:     c.Timeout,
		MaxAttempts: c.MaxAttempts,
	}
}
