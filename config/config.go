// Package config loads the note server configuration file.
//
// Example:
//
//	listen_addr: 0.0.0.0:3000
//	metrics_addr: 127.0.0.1:8090
//	note_store: sqlite:///var/lib/myprivatenote/notes.db
//	counters_backends:
//	  - file:///var/lib/myprivatenote
//	  - s3://stats-bucket/myprivatenote?region=eu-west-1
//	id_length: 16
//	cors_origins: ["https://notes.example.com"]
//	log:
//	  json: true
//	  service: myprivatenote
//
// Command line flags that are set explicitly override the file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/interfaces"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/noteid"
)

// LogConfig mirrors the logging flags.
type LogConfig struct {
	JSON    bool   `yaml:"json"`
	Debug   bool   `yaml:"debug"`
	UID     bool   `yaml:"uid"`
	Service string `yaml:"service"`
}

// Config is the server configuration.
type Config struct {
	ListenAddr       string    `yaml:"listen_addr"`
	MetricsAddr      string    `yaml:"metrics_addr"`
	NoteStore        string    `yaml:"note_store"`
	CountersBackends []string  `yaml:"counters_backends"`
	IDLength         int       `yaml:"id_length"`
	CORSOrigins      []string  `yaml:"cors_origins"`
	Pprof            bool      `yaml:"pprof"`
	DrainSeconds     int64     `yaml:"drain_seconds"`
	Log              LogConfig `yaml:"log"`
}

// DefaultConfig returns the configuration used when neither a file nor flags
// say otherwise.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:       "127.0.0.1:3000",
		MetricsAddr:      "127.0.0.1:8090",
		NoteStore:        "memory://",
		CountersBackends: []string{"file://./data"},
		IDLength:         noteid.DefaultLength,
		DrainSeconds:     45,
		Log: LogConfig{
			Service: "myprivatenote",
		},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(body, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise only fail once the server starts.
func (c *Config) Validate() error {
	var errs []error

	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen_addr is required"))
	}
	if c.NoteStore == "" {
		errs = append(errs, errors.New("note_store is required"))
	}
	if c.IDLength < noteid.MinLength || c.IDLength > noteid.MaxLength {
		errs = append(errs, fmt.Errorf("id_length must be between %d and %d", noteid.MinLength, noteid.MaxLength))
	}
	if len(c.CountersBackends) == 0 {
		errs = append(errs, errors.New("at least one counters backend is required"))
	}
	for _, uri := range c.CountersBackends {
		if _, err := interfaces.NewStorageBackendLocation(uri); err != nil {
			errs = append(errs, fmt.Errorf("counters backend %q: %w", uri, err))
		}
	}
	if c.DrainSeconds < 0 {
		errs = append(errs, errors.New("drain_seconds must not be negative"))
	}

	return errors.Join(errs...)
}

// CountersLocations parses CountersBackends.
func (c *Config) CountersLocations() ([]interfaces.StorageBackendLocation, error) {
	locations := make([]interfaces.StorageBackendLocation, 0, len(c.CountersBackends))
	for _, uri := range c.CountersBackends {
		location, err := interfaces.NewStorageBackendLocation(uri)
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, nil
}
