package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cstaulbee/quickscope/pkg/flow"
)

// flowExtensions are the file extensions recognized as flow documents.
var flowExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// Source serves flow documents from a directory; the flow id is the
// file name without its extension.
type Source struct {
	Dir string
}

// NewSource creates a Source over the given directory.
func NewSource(dir string) *Source {
	return &Source{Dir: dir}
}

// Flow reads the raw document for an id.
func (s *Source) Flow(id string) ([]byte, error) {
	for ext := range flowExtensions {
		data, err := os.ReadFile(filepath.Join(s.Dir, id+ext))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read flow document: %w", err)
		}
	}
	return nil, fmt.Errorf("%w: %s", flow.ErrFlowNotFound, id)
}

// List returns the ids of all flow documents in the directory.
func (s *Source) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list flow documents: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if flowExtensions[ext] {
			ids = append(ids, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	sort.Strings(ids)
	return ids, nil
}
