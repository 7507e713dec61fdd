package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// RunManager lays out audit logs on disk as <dir>/<scenario>/<run>/log.jsonl.
type RunManager struct {
	Dir string
}

// NewRunManager returns a manager rooted at dir.
func NewRunManager(dir string) *RunManager {
	return &RunManager{Dir: dir}
}

// ScenarioName derives a directory name from a script path.
func ScenarioName(scriptPath string) string {
	return strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath))
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// RunPath returns the directory of one run.
func (m *RunManager) RunPath(scenario, run string) string {
	return filepath.Join(m.Dir, scenario, run)
}

// LogPath returns the JSONL log path of one run.
func (m *RunManager) LogPath(scenario, run string) string {
	return filepath.Join(m.RunPath(scenario, run), "log.jsonl")
}

// Create makes the run directory and returns its log path.
func (m *RunManager) Create(scenario, run string) (string, error) {
	path := m.RunPath(scenario, run)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return m.LogPath(scenario, run), nil
}

// Load checks the run exists and returns its log path.
func (m *RunManager) Load(scenario, run string) (string, error) {
	path := m.LogPath(scenario, run)
	if stat, err := os.Stat(path); err != nil || stat.IsDir() {
		return "", fmt.Errorf("run %s of %s not found under %s", run, scenario, m.Dir)
	}
	return path, nil
}

// Runs lists the runs recorded for scenario.
func (m *RunManager) Runs(scenario string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(m.Dir, scenario))
	if err != nil {
		return nil, fmt.Errorf("failed to list runs of %s: %w", scenario, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
