package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nao1215/onionmonitor/internal/model"
	"github.com/tidwall/jsonc"
	"golang.org/x/sync/errgroup"
)

// DefaultImportConcurrency is the number of project files read in parallel.
const DefaultImportConcurrency = 4

// Project is one entry of a project data file, as published by ecosystem
// lists: a JSON array of projects, some of which have an onion mirror.
type Project struct {
	Name        string   `json:"name"`
	Onion       *string  `json:"onion"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Website     string   `json:"website,omitempty"`
	GitHub      string   `json:"github,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Importer builds service records from a directory of project files.
type Importer struct {
	// concurrency bounds how many files are read at once.
	concurrency int

	// logger reports skipped files.
	logger *slog.Logger
}

// ImportOption configures an Importer.
type ImportOption func(*Importer)

// WithImportConcurrency sets the maximum number of files read in parallel.
func WithImportConcurrency(n int) ImportOption {
	return func(im *Importer) {
		if n > 0 {
			im.concurrency = n
		}
	}
}

// WithImportLogger sets a custom logger.
func WithImportLogger(logger *slog.Logger) ImportOption {
	return func(im *Importer) {
		im.logger = logger
	}
}

// NewImporter creates an Importer.
func NewImporter(opts ...ImportOption) *Importer {
	im := &Importer{concurrency: DefaultImportConcurrency}
	for _, opt := range opts {
		opt(im)
	}
	if im.logger == nil {
		im.logger = slog.Default()
	}
	return im
}

// ImportDir reads every *.json file in dir (non-recursive, sorted by file
// name) and converts the projects that carry an onion address into service
// records. Output order follows file order, then entry order.
//
// Unreadable files abort the import. Files that are not a JSON array of
// projects are skipped with a warning, so one malformed list does not hide
// the others.
func (im *Importer) ImportDir(ctx context.Context, dir string) ([]model.Service, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read project directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	im.logger.Debug("importing project files", "dir", dir, "files", len(files))

	perFile := make([][]model.Service, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			data, err := os.ReadFile(path) //nolint:gosec // files come from the chosen directory
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			var projects []Project
			if err := json.Unmarshal(jsonc.ToJSON(data), &projects); err != nil {
				im.logger.Warn("skipping project file", "file", path, "error", err)
				return nil
			}

			perFile[i] = ProjectsToServices(projects)
			im.logger.Debug("parsed project file", "file", path, "services", len(perFile[i]))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var services []model.Service
	for _, s := range perFile {
		services = append(services, s...)
	}
	im.logger.Info("imported projects", "dir", dir, "services", len(services))
	return services, nil
}

// ProjectsToServices converts projects with a usable onion address.
func ProjectsToServices(projects []Project) []model.Service {
	services := make([]model.Service, 0, len(projects))
	for _, p := range projects {
		if s, ok := ServiceFromProject(p); ok {
			services = append(services, s)
		}
	}
	return services
}

// ServiceFromProject builds a never-checked service record from p.
// It returns false when p has no onion address or only the ".onion"
// placeholder used for entries that are still being set up.
func ServiceFromProject(p Project) (model.Service, bool) {
	if p.Onion == nil {
		return model.Service{}, false
	}
	onion := strings.TrimSpace(*p.Onion)
	if onion == "" || onion == model.OnionSuffix {
		return model.Service{}, false
	}

	var tags []string
	if len(p.Tags) > 0 {
		tags = append(tags, p.Tags...)
	}

	return model.Service{
		Title:           p.Name,
		Name:            KebabName(p.Name),
		OnionAddress:    NormalizeOnionURL(onion),
		Status:          model.StatusUnknown,
		PrevStatus:      model.StatusUnknown,
		LastChecked:     nil,
		Category:        model.StringPtr(p.Category),
		Description:     model.StringPtr(p.Description),
		OfficialWebsite: model.StringPtr(p.Website),
		GitHub:          model.StringPtr(p.GitHub),
		Tags:            tags,
	}, true
}

// KebabName derives a record name from a project title: lower-cased, with
// spaces and underscores replaced by hyphens.
func KebabName(title string) string {
	name := strings.ToLower(title)
	name = strings.ReplaceAll(name, " ", "-")
	return strings.ReplaceAll(name, "_", "-")
}

// NormalizeOnionURL prefixes http:// when onion has no http(s) scheme.
// Plain http is the default because many onion services do not serve TLS.
func NormalizeOnionURL(onion string) string {
	if strings.HasPrefix(onion, "http://") || strings.HasPrefix(onion, "https://") {
		return onion
	}
	return "http://" + onion
}
