package config

import (
	"fmt"
	"strings"
)

// Config holds all configuration options for the OData client CLI
type Config struct {
	// Service configuration
	ServiceURL string `mapstructure:"service_url"`

	// Authentication
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// Default headers sent on every request, "Name: Value" form
	Headers       []string          `mapstructure:"headers"`
	ParsedHeaders map[string]string // Parsed from Headers

	// UI annotation document (EDMX/CSDL XML) for the annotations command
	AnnotationsFile string `mapstructure:"annotations_file"`

	// Output and debugging
	Verbose bool `mapstructure:"verbose"`

	// HTTP transport
	TimeoutSeconds int `mapstructure:"timeout"`
}

// HasBasicAuth returns true if username and password are configured
func (c *Config) HasBasicAuth() bool {
	return c.Username != "" && c.Password != ""
}

// ParseHeaders splits the raw "Name: Value" header flags into ParsedHeaders
func (c *Config) ParseHeaders() error {
	if len(c.Headers) == 0 {
		return nil
	}
	c.ParsedHeaders = make(map[string]string, len(c.Headers))
	for _, raw := range c.Headers {
		name, value, ok := strings.Cut(raw, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("invalid header %q, expected 'Name: Value'", raw)
		}
		c.ParsedHeaders[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return nil
}
