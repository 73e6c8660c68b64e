// Package storage persists small string values under fixed keys. It backs
// the favorites entry, which is a single key holding a JSON array of ids.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// KV is a minimal key-value store. Get reports ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	FilePath   string
	SQLitePath string
	RedisAddr  string
	Logger     *zap.Logger
}

// Open returns the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		return NewFileKV(opts.FilePath).WithLogger(opts.Logger), nil
	case BackendSQLite:
		return NewSQLiteKV(opts.SQLitePath)
	case BackendRedis:
		return NewRedisKV(ctx, opts.RedisAddr)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}
