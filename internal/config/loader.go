package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/onionmonitor/internal/directory"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name looked up in the
// current and home directories.
const DefaultConfigFile = ".onionmonitor"

// File is the structure of the .onionmonitor YAML file. Every field is
// optional; zero values keep the defaults.
type File struct {
	// DataFile is the snapshot path. A leading "~/" is the home directory.
	DataFile string `yaml:"data_file,omitempty"`

	// DBDir is the history database directory.
	DBDir string `yaml:"db_dir,omitempty"`

	// Dialect forces nginx or apache for check-config.
	Dialect string `yaml:"dialect,omitempty"`

	List   ListSection   `yaml:"list,omitempty"`
	Import ImportSection `yaml:"import,omitempty"`
}

// ListSection configures the list command.
type ListSection struct {
	// Status is the default status filter: all, online, offline or unknown.
	Status string `yaml:"status,omitempty"`
}

// ImportSection configures the import command.
type ImportSection struct {
	// Concurrency is the number of project files read in parallel.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Record stores a history snapshot after each import. Nil keeps the default.
	Record *bool `yaml:"record,omitempty"`
}

// LoadConfigFile reads a configuration file. A missing file returns
// ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &f, nil
}

// Apply copies the values set in f onto c.
func (f *File) Apply(c *Config) {
	if f.DataFile != "" {
		c.DataFile = expandHome(f.DataFile)
	}
	if f.DBDir != "" {
		c.DBDir = expandHome(f.DBDir)
	}
	if f.Dialect != "" {
		c.Dialect = f.Dialect
	}
	if f.List.Status != "" {
		c.DefaultFilter = directory.FilterTag(strings.ToLower(f.List.Status))
	}
	if f.Import.Concurrency != 0 {
		c.ImportConcurrency = f.Import.Concurrency
	}
	if f.Import.Record != nil {
		c.RecordHistory = *f.Import.Record
	}
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// FindConfigFile returns the configuration file to load:
//  1. configPath, if given and present
//  2. .onionmonitor in the current directory
//  3. .onionmonitor in the home directory
//  4. config.yaml in the XDG config directory
//
// It returns "" when none exists.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
