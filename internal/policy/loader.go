package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadRegoFiles reads every .rego module in dir, keyed by filename.
// Subdirectories are not descended into.
func LoadRegoFiles(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read policy dir %s: %w", dir, err)
	}

	modules := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".rego") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read policy module %s: %w", entry.Name(), err)
		}
		modules[entry.Name()] = string(data)
	}
	return modules, nil
}
