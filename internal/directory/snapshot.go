package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/onionmonitor/internal/model"
	"github.com/tidwall/jsonc"
)

// ErrDuplicateName is returned when two records share the same name.
var ErrDuplicateName = errors.New("duplicate service name")

// LoadSnapshot reads a snapshot file: a JSON array of service records.
// Comments and trailing commas are tolerated so that hand-maintained files
// stay loadable. A missing or unreadable file is returned as an error
// (errors.Is(err, fs.ErrNotExist) holds for a missing file); there is no
// fallback snapshot.
func LoadSnapshot(path string) ([]model.Service, error) {
	data, err := os.ReadFile(path) //nolint:gosec // snapshot path is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	services, err := ParseSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return services, nil
}

// ParseSnapshot decodes snapshot bytes and enforces unique names.
func ParseSnapshot(data []byte) ([]model.Service, error) {
	var services []model.Service
	if err := json.Unmarshal(jsonc.ToJSON(data), &services); err != nil {
		return nil, err
	}
	if services == nil {
		services = []model.Service{}
	}
	if err := checkUniqueNames(services); err != nil {
		return nil, err
	}
	return services, nil
}

// SaveSnapshot writes services as pretty-printed JSON, creating parent
// directories as needed. The file is replaced atomically via rename.
func SaveSnapshot(path string, services []model.Service) error {
	if err := checkUniqueNames(services); err != nil {
		return err
	}
	if services == nil {
		services = []model.Service{}
	}

	data, err := json.MarshalIndent(services, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// checkUniqueNames returns ErrDuplicateName for the first repeated name.
func checkUniqueNames(services []model.Service) error {
	seen := make(map[string]struct{}, len(services))
	for _, s := range services {
		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}
