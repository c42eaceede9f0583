package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/nao1215/onionmonitor/internal/directory"
	"github.com/nao1215/onionmonitor/internal/onionlocation"
)

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "onionmonitor"

	// DataFileName is the snapshot file name inside the data directory.
	DataFileName = "services.json"

	// DefaultImportConcurrency bounds the files read at once by import.
	DefaultImportConcurrency = directory.DefaultImportConcurrency
)

// Config holds every option a command may need. It is built from
// NewConfig, then the configuration file, then command-line flags.
type Config struct {
	// DataFile is the snapshot the directory is loaded from.
	DataFile string

	// DBDir is the directory of the snapshot history database.
	DBDir string

	// Dialect forces the server configuration dialect. Empty means detect
	// it from the file name and content.
	Dialect string

	// DefaultFilter is the status filter list uses when -s is not given.
	DefaultFilter directory.FilterTag

	// ImportConcurrency is the number of project files read in parallel.
	ImportConcurrency int

	// RecordHistory stores a snapshot in the history database after import.
	RecordHistory bool

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport and MarkdownReport select the report format. Neither set
	// means the terminal format.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile receives the report instead of stdout when set.
	ReportFile string

	// ConfigFilePath is the configuration file that was loaded, if any.
	ConfigFilePath string
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	return &Config{
		DataFile:          DefaultDataFile(),
		DBDir:             XDGDataDir(),
		DefaultFilter:     directory.FilterAll,
		ImportConcurrency: DefaultImportConcurrency,
		RecordHistory:     true,
	}
}

// XDGDataDir returns the data directory, e.g. ~/.local/share/onionmonitor.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the config directory, e.g. ~/.config/onionmonitor.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultDataFile returns the default snapshot path.
func DefaultDataFile() string {
	return filepath.Join(XDGDataDir(), DataFileName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return ErrNoDataFile
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.ImportConcurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if _, err := directory.ParseFilterTag(string(c.DefaultFilter)); err != nil {
		return fmt.Errorf("invalid default filter: %w", err)
	}
	if c.Dialect != "" {
		if _, err := onionlocation.ParseDialect(c.Dialect); err != nil {
			return err
		}
	}
	return nil
}
