package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/suderio/scenario-engine/internal/world"
)

// JSONLStore keeps one delta per line.
type JSONLStore struct {
	file *os.File
}

// OpenJSONL opens or creates a JSONL audit log at path.
func OpenJSONL(path string) (*JSONLStore, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &JSONLStore{file: file}, nil
}

// Append writes d as one line and syncs the file.
func (s *JSONLStore) Append(d world.Delta) error {
	wrapper, err := wrapDelta(d)
	if err != nil {
		return err
	}
	line, err := json.Marshal(wrapper)
	if err != nil {
		return fmt.Errorf("failed to marshal wrapper: %w", err)
	}
	if _, err := s.file.Write(append(line, '\n')); err != nil {
		return err
	}
	return s.file.Sync()
}

// Load reads every delta from the start of the log.
func (s *JSONLStore) Load() ([]world.Delta, error) {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var deltas []world.Delta
	scanner := bufio.NewScanner(s.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var wrapper DeltaWrapper
		if err := json.Unmarshal(scanner.Bytes(), &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode delta wrapper: %w", err)
		}
		d, err := unmarshalDelta(wrapper.Type, wrapper.Data)
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, d)
	}
	return deltas, scanner.Err()
}

// Close closes the underlying file.
func (s *JSONLStore) Close() error {
	return s.file.Close()
}
