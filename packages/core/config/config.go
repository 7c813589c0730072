package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/hitclient/packages/core/env"
	"github.com/abdul-hamid-achik/hitclient/packages/http"
)

//go:embed schema.json
var schemaJSON string

// Config represents the hitclient configuration
type Config struct {
	URL             string            `json:"url,omitempty" yaml:"url,omitempty"`
	Host            string            `json:"host,omitempty" yaml:"host,omitempty"`
	Port            int               `json:"port,omitempty" yaml:"port,omitempty"`
	Path            string            `json:"path,omitempty" yaml:"path,omitempty"`
	Query           string            `json:"query,omitempty" yaml:"query,omitempty"`
	Scheme          string            `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	Username        string            `json:"username,omitempty" yaml:"username,omitempty"`
	Password        string            `json:"password,omitempty" yaml:"password,omitempty"`
	AuthType        string            `json:"authType,omitempty" yaml:"authType,omitempty"`
	Timeout         int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // milliseconds
	FollowRedirects *bool             `json:"followRedirects,omitempty" yaml:"followRedirects,omitempty"`
	MaxRedirects    int               `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`
	ValidateSSL     *bool             `json:"validateSSL,omitempty" yaml:"validateSSL,omitempty"`
	Proxy           string            `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	Headers         map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	RateLimit       float64           `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"` // requests per second
	LogLevel        string            `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	LogFormat       string            `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`
	History         string            `json:"history,omitempty" yaml:"history,omitempty"` // journal database path
	Output          string            `json:"output,omitempty" yaml:"output,omitempty"`
	NoColor         *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// ConfigFilenames contains the possible config file names, in lookup order
var ConfigFilenames = []string{
	".hitclient.json",
	"hitclient.config.json",
	".hitclient.yaml",
	".hitclient.yml",
	"hitclient.yaml",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory.
// Defaults are returned when none exists.
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

// FindConfigPath returns the first config file present in dir, or "".
func FindConfigPath(dir string) string {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}
	return ""
}

// loadConfigFromFile decodes path (JSON or YAML by extension), expands
// ${VAR} references, validates against the schema and applies it over the defaults.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	env.ExpandValue(doc)

	if err := validateDocument(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// the document is plain JSON-compatible data at this point
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	if err := json.Unmarshal(normalized, config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return config, nil
}

// ValidationError lists every schema violation in a config document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

func validateDocument(doc map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{}
	for _, desc := range result.Errors() {
		verr.Problems = append(verr.Problems, desc.String())
	}
	return verr
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.URL != "" {
		result.URL = other.URL
	}
	if other.Host != "" {
		result.Host = other.Host
	}
	if other.Port > 0 {
		result.Port = other.Port
	}
	if other.Path != "" {
		result.Path = other.Path
	}
	if other.Query != "" {
		result.Query = other.Query
	}
	if other.Scheme != "" {
		result.Scheme = other.Scheme
	}
	if other.Username != "" {
		result.Username = other.Username
	}
	if other.Password != "" {
		result.Password = other.Password
	}
	if other.AuthType != "" {
		result.AuthType = other.AuthType
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.RateLimit > 0 {
		result.RateLimit = other.RateLimit
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		result.LogFormat = other.LogFormat
	}
	if other.History != "" {
		result.History = other.History
	}
	if other.Output != "" {
		result.Output = other.Output
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// ClientConfig converts c into the initialization record of an http.Client.
func (c *Config) ClientConfig() (*http.Config, error) {
	authType, err := http.ParseAuthType(c.AuthType)
	if err != nil {
		return nil, err
	}
	followRedirects := c.GetFollowRedirects()
	validateSSL := c.GetValidateSSL()

	return &http.Config{
		URL:             c.URL,
		Host:            c.Host,
		Port:            c.Port,
		Path:            c.Path,
		Query:           c.Query,
		Scheme:          c.Scheme,
		Username:        c.Username,
		Password:        c.Password,
		AuthType:        authType,
		Timeout:         time.Duration(c.Timeout) * time.Millisecond,
		FollowRedirects: &followRedirects,
		MaxRedirects:    c.MaxRedirects,
		ValidateSSL:     &validateSSL,
		Proxy:           c.Proxy,
		Headers:         c.Headers,
		RateLimit:       c.RateLimit,
	}, nil
}

// SaveConfig saves the configuration to a file, as YAML when the extension says so
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
