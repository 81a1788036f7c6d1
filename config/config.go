// Package config handles dynamic.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jhump/protoreflect/desc"

	"github.com/chazu/dynamic/diag"
	"github.com/chazu/dynamic/foundation"
	"github.com/chazu/dynamic/protort"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "dynamic.toml"

// Config represents a dynamic.toml configuration.
type Config struct {
	Logging   Logging   `toml:"logging"`
	Process   Process   `toml:"process"`
	Defaults  Defaults  `toml:"defaults"`
	Formatter Formatter `toml:"formatter"`
	Protobuf  Protobuf  `toml:"protobuf"`

	// Dir is the directory containing the dynamic.toml file (set at load time).
	Dir string `toml:"-"`
}

// Logging configures dispatch diagnostics.
type Logging struct {
	Enabled   bool   `toml:"enabled"`
	Verbosity int    `toml:"verbosity"`
	Path      string `toml:"path"`
}

// Process overrides what NSProcessInfo reports.
type Process struct {
	Name        string            `toml:"name"`
	Arguments   []string          `toml:"arguments"`
	Environment map[string]string `toml:"environment"`
}

// Defaults configures NSUserDefaults persistence. An empty path keeps
// defaults in memory.
type Defaults struct {
	Path string `toml:"path"`
}

// Formatter configures NSDateFormatter.
type Formatter struct {
	TimeZone string `toml:"time-zone"`
}

// Protobuf lists the message schemas exposed by the protobuf runtime.
type Protobuf struct {
	ImportPaths    []string `toml:"import-paths"`
	Files          []string `toml:"files"`
	DescriptorSets []string `toml:"descriptor-sets"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Logging.Verbosity == 0 {
		c.Logging.Verbosity = 1
	}
	if c.Formatter.TimeZone == "" {
		c.Formatter.TimeZone = "UTC"
	}
}

// Load parses a dynamic.toml file from the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses the configuration file at path. Relative paths inside
// the file resolve against its directory.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	c.applyDefaults()
	return &c, nil
}

// FindAndLoad walks up from startDir to find a dynamic.toml file, then
// loads it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Resolve returns p joined to the configuration directory unless it is
// already absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// Location returns the formatter time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Formatter.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("formatter time-zone: %w", err)
	}
	return loc, nil
}

// Logger returns a diagnostic tree when logging is enabled and diag.Nop
// otherwise. The commonlog backend is configured as a side effect.
func (c *Config) Logger() diag.Logger {
	if !c.Logging.Enabled {
		return diag.Nop
	}
	var path *string
	if c.Logging.Path != "" {
		p := c.Resolve(c.Logging.Path)
		path = &p
	}
	diag.Configure(c.Logging.Verbosity, path)
	return diag.NewTree(nil)
}

// FoundationOptions translates the configuration into class library
// options. A configured defaults path opens a SQLite store that the
// Foundation closes.
func (c *Config) FoundationOptions() ([]foundation.Option, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	opts := []foundation.Option{foundation.WithTimeZone(loc)}

	if c.Process.Name != "" {
		opts = append(opts, foundation.WithProcessName(c.Process.Name))
	}
	if c.Process.Arguments != nil {
		opts = append(opts, foundation.WithArguments(c.Process.Arguments))
	}
	if c.Process.Environment != nil {
		opts = append(opts, foundation.WithEnvironment(c.Process.Environment))
	}
	if c.Defaults.Path != "" {
		store, err := foundation.OpenSQLiteStore(c.Resolve(c.Defaults.Path))
		if err != nil {
			return nil, err
		}
		opts = append(opts, foundation.WithDefaultsStore(store))
	}
	return opts, nil
}

// ProtoFiles loads the configured schemas. It returns nil when none are
// configured.
func (c *Config) ProtoFiles() ([]*desc.FileDescriptor, error) {
	var fds []*desc.FileDescriptor
	if len(c.Protobuf.Files) > 0 {
		paths := make([]string, len(c.Protobuf.ImportPaths))
		for i, p := range c.Protobuf.ImportPaths {
			paths[i] = c.Resolve(p)
		}
		if len(paths) == 0 {
			paths = []string{c.Dir}
		}
		parsed, err := protort.ParseProtoFiles(paths, c.Protobuf.Files...)
		if err != nil {
			return nil, err
		}
		fds = append(fds, parsed...)
	}
	for _, set := range c.Protobuf.DescriptorSets {
		loaded, err := protort.LoadDescriptorSet(c.Resolve(set))
		if err != nil {
			return nil, err
		}
		fds = append(fds, loaded...)
	}
	return fds, nil
}
