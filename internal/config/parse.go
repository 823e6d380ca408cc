package config

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// INI section names. Section names are matched case-insensitively.
const (
	querySection   = "dns_query"
	optionsSection = "options"
	outputPrefix   = "output_file_"
)

func parseYAML(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config file: %w", err)
	}
	return &cfg, nil
}

func parseINI(data []byte) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive: true,
		// templates such as "IP={IP};" must reach the engine verbatim,
		// quotes and semicolons included
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("decoding config file: %w", err)
	}

	q, err := f.GetSection(querySection)
	if err != nil {
		return nil, fmt.Errorf("decoding config file: missing [%s] section", strings.ToUpper(querySection))
	}

	var cfg Config
	cfg.Query.Domain = strings.TrimSpace(q.Key("domain").String())
	cfg.Query.Nameservers = q.Key("nameservers").String()
	if q.HasKey("timeout") {
		d, err := q.Key("timeout").Duration()
		if err != nil {
			return nil, fmt.Errorf("decoding config file: timeout: %w", err)
		}
		cfg.Query.Timeout = d
	}

	if o, err := f.GetSection(optionsSection); err == nil {
		cfg.Options.FallbackEncoding = strings.TrimSpace(o.Key("fallback_encoding").String())
		if o.HasKey("atomic_write") {
			b, err := o.Key("atomic_write").Bool()
			if err != nil {
				return nil, fmt.Errorf("decoding config file: atomic_write: %w", err)
			}
			cfg.Options.AtomicWrite = b
		}
	}

	// Sections() keeps file order, which becomes processing order.
	for _, sec := range f.Sections() {
		if !strings.HasPrefix(sec.Name(), outputPrefix) {
			continue
		}
		cfg.Outputs = append(cfg.Outputs, OutputConfig{
			Name:   strings.ToUpper(sec.Name()),
			Path:   strings.TrimSpace(sec.Key("path").String()),
			Format: sec.Key("format").String(),
			Marker: strings.TrimSpace(sec.Key("marker").String()),
		})
	}
	return &cfg, nil
}
