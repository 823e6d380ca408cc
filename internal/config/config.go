// Package config provides configuration loading and validation for dnsmark.
// It reads either the INI layout inherited from earlier deployments or a YAML
// document, and normalizes both into the same Config value.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/lc/dnsmark/internal/filesys"
)

var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNoConfig is returned when the configuration file is not found.
	ErrNoConfig = errors.New("configuration file not found")
)

const (
	// DefaultConfigPath is used when no path is given on the command line.
	DefaultConfigPath = "config.ini"
	// DefaultDNSTimeout bounds a single nameserver query.
	DefaultDNSTimeout = 5 * time.Second
	// DefaultFallbackEncoding is tried when an output file is not valid UTF-8.
	DefaultFallbackEncoding = "gbk"
)

// Config holds the application configuration.
type Config struct {
	Query   QueryConfig    `yaml:"dns_query"`
	Outputs []OutputConfig `yaml:"output_files"`
	Options OptionsConfig  `yaml:"options"`
}

// QueryConfig describes what to resolve and where to ask.
type QueryConfig struct {
	Domain string `yaml:"domain"`
	// Nameservers is the raw comma-separated list; see Config.NameserverList.
	Nameservers string        `yaml:"nameservers"`
	Timeout     time.Duration `yaml:"timeout"`
}

// OutputConfig is one output target.
type OutputConfig struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
	Marker string `yaml:"marker"`
}

// OptionsConfig tunes how output files are read and written.
type OptionsConfig struct {
	FallbackEncoding string `yaml:"fallback_encoding"`
	AtomicWrite      bool   `yaml:"atomic_write"`
}

// Provider defines the interface for loading configuration.
type Provider interface {
	Load() (*Config, error)
}

// FSProvider implements Provider using the local filesystem.
type FSProvider struct {
	fs   filesys.ReadWriteFS
	path string
}

// Verify FSProvider implements Provider interface.
var _ Provider = (*FSProvider)(nil)

// New creates a provider for path on the OS filesystem. An empty path means
// DefaultConfigPath in the working directory.
func New(path string) Provider {
	if path == "" {
		path = DefaultConfigPath
	}
	return NewWithPath(filesys.OS(), path)
}

// NewWithPath creates a new provider with a specific filesystem and path.
func NewWithPath(fs filesys.ReadWriteFS, path string) Provider {
	return &FSProvider{
		fs:   fs,
		path: path,
	}
}

// Load reads, parses, defaults and validates the configuration.
func (p *FSProvider) Load() (*Config, error) {
	data, err := p.fs.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoConfig, p.path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(p.path)) {
	case ".yaml", ".yml":
		cfg, err = parseYAML(data)
	default:
		cfg, err = parseINI(data)
	}
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Query.Timeout == 0 {
		c.Query.Timeout = DefaultDNSTimeout
	}
	if strings.TrimSpace(c.Options.FallbackEncoding) == "" {
		c.Options.FallbackEncoding = DefaultFallbackEncoding
	}
	for i := range c.Outputs {
		if c.Outputs[i].Name == "" {
			c.Outputs[i].Name = fmt.Sprintf("output_%d", i+1)
		}
	}
}

// NameserverList splits the comma-separated nameserver setting, trimming
// whitespace and dropping empty entries. Order is preserved.
func (c *Config) NameserverList() []string {
	var out []string
	for _, ns := range strings.Split(c.Query.Nameservers, ",") {
		if ns = strings.TrimSpace(ns); ns != "" {
			out = append(out, ns)
		}
	}
	return out
}

// Validate checks the configuration to ensure all required fields are set.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Query.Domain) == "" {
		return errors.New("domain cannot be empty")
	}
	if len(c.NameserverList()) == 0 {
		return errors.New("at least one nameserver is required")
	}
	if c.Query.Timeout < time.Second {
		return errors.New("DNS timeout must be at least 1 second")
	}
	if _, err := htmlindex.Get(c.Options.FallbackEncoding); err != nil {
		return fmt.Errorf("unknown fallback encoding %q", c.Options.FallbackEncoding)
	}

	seen := make(map[string]string, len(c.Outputs))
	for _, o := range c.Outputs {
		if strings.TrimSpace(o.Path) == "" {
			return fmt.Errorf("output %s: path cannot be empty", o.Name)
		}
		if strings.TrimSpace(o.Marker) == "" {
			return fmt.Errorf("output %s: marker cannot be empty", o.Name)
		}
		key := filepath.Clean(o.Path) + "\x00" + o.Marker
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("output %s: marker %q already used for %s by %s", o.Name, o.Marker, o.Path, prev)
		}
		seen[key] = o.Name
	}
	return nil
}
