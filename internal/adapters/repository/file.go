package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

// FileGateway keeps the snapshot in a single JSON file.
type FileGateway struct {
	path string
	opts options
	mu   sync.Mutex
}

// NewFileGateway creates a gateway writing to path. The parent directory is
// created on first save.
func NewFileGateway(path string, opts ...Option) (*FileGateway, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: snapshot path is required", ErrPersistence)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &FileGateway{path: filepath.Clean(path), opts: o}, nil
}

// Path returns the snapshot file location.
func (g *FileGateway) Path() string { return g.path }

// Load reads and decodes the snapshot file.
func (g *FileGateway) Load(ctx context.Context) (model.State, error) {
	if err := ctx.Err(); err != nil {
		return model.State{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := os.ReadFile(g.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.State{}, ErrNoSnapshot
	}
	if err != nil {
		return model.State{}, fmt.Errorf("%w: read %s: %v", ErrPersistence, g.path, err)
	}
	return decode(data)
}

// Save writes the snapshot to a temporary file and renames it over the
// previous one, so readers never see a partial snapshot.
func (g *FileGateway) Save(ctx context.Context, state model.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(state)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrPersistence, dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(g.path)+".*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrPersistence, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("%w: write snapshot: %v", ErrPersistence, err)
	}
	if err := tmp.Chmod(g.opts.perm); err != nil {
		cleanup()
		return fmt.Errorf("%w: chmod snapshot: %v", ErrPersistence, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("%w: sync snapshot: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close snapshot: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmpName, g.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: replace snapshot: %v", ErrPersistence, err)
	}

	g.opts.log.Debug(ctx, "snapshot written",
		logger.String("path", g.path),
		logger.Int("bytes", len(data)),
		logger.Int("results", len(state.Results)),
	)
	return nil
}

// Close is a no-op for files.
func (g *FileGateway) Close() error { return nil }
