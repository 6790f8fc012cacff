package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/newthinker/folio/internal/core"
)

// Backend types
const (
	TypeLocalFS = "localfs"
	TypeS3      = "s3"
	TypeRedis   = "redis"
	TypeMemory  = "memory"
)

// Config selects and configures a backend
type Config struct {
	Type  string
	Path  string
	S3    S3Config
	Redis RedisConfig
}

// Open builds the backend named by cfg.Type.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case "", TypeLocalFS:
		path, err := expandHome(cfg.Path)
		if err != nil {
			return nil, err
		}
		return NewLocalFS(path)
	case TypeS3:
		return NewS3(cfg.S3)
	case TypeRedis:
		return NewRedis(ctx, cfg.Redis)
	case TypeMemory:
		return NewMemory(), nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown storage type %q", cfg.Type))
	}
}

func expandHome(path string) (string, error) {
	if path == "" {
		path = "~/.folio"
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
