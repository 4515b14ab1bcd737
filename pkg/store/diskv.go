package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"
)

// Diskv is a Backend storing each key as a file under a base directory,
// with diskv's in-memory read cache in front.
type Diskv struct {
	d *diskv.Diskv
}

// NewDiskv opens (creating when needed) a flat diskv store under dir. A
// leading ~ in dir is expanded to the user's home directory.
func NewDiskv(dir string) (*Diskv, error) {
	if dir == "" {
		return nil, errors.New("store: diskv requires a directory")
	}
	base, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("store: expand %s: %w", dir, err)
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", base, err)
	}
	return &Diskv{d: diskv.New(diskv.Options{
		BasePath:          base,
		AdvancedTransform: flatTransform,
		InverseTransform:  flatInverseTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}, nil
}

func flatTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{Path: []string{}, FileName: key}
}

func flatInverseTransform(pk *diskv.PathKey) string {
	return pk.FileName
}

func (s *Diskv) Get(_ context.Context, key string) ([]byte, error) {
	v, err := s.d.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return v, err
}

func (s *Diskv) Set(_ context.Context, key string, value []byte) error {
	return s.d.Write(key, value)
}

// Close is a no-op; diskv holds no open files between calls.
func (s *Diskv) Close() error {
	return nil
}
