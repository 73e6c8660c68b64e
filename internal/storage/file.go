package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// FileKV stores all keys in one JSON document on disk. Every Set rewrites
// the whole file.
type FileKV struct {
	filePath string
	logger   *zap.Logger
	mu       sync.Mutex
}

// fileData represents the JSON structure on disk
type fileData struct {
	Entries map[string]string `json:"entries"`
	Version string            `json:"version"`
}

// NewFileKV creates a file-backed store at filePath
func NewFileKV(filePath string) *FileKV {
	return &FileKV{filePath: filePath, logger: zap.NewNop()}
}

// WithLogger sets the logger used to report a replaced store file
func (s *FileKV) WithLogger(logger *zap.Logger) *FileKV {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Path returns the backing file path
func (s *FileKV) Path() string {
	return s.filePath
}

// Get loads the file and returns the value stored under key
func (s *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return "", false, err
	}
	value, ok := data.Entries[key]
	return value, ok, nil
}

// Set stores value under key and writes the file
func (s *FileKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		// A corrupted file is replaced rather than blocking writes
		s.logger.Warn("store file unreadable, replacing it",
			zap.String("path", s.filePath),
			zap.Error(err))
		data = fileData{Entries: map[string]string{}}
	}
	data.Entries[key] = value
	data.Version = "1.0"

	if err := ensureDir(s.filePath); err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	if err := os.WriteFile(s.filePath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}

	return nil
}

// Close is a no-op for file storage
func (s *FileKV) Close() error {
	return nil
}

func (s *FileKV) load() (fileData, error) {
	data := fileData{Entries: map[string]string{}}

	raw, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return data, fmt.Errorf("failed to read store file: %w", err)
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return fileData{Entries: map[string]string{}}, fmt.Errorf("failed to parse store file: %w", err)
	}
	if data.Entries == nil {
		data.Entries = map[string]string{}
	}
	return data, nil
}
