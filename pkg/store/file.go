package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
)

// File is a Backend writing one JSON file per key into a directory of an
// afero filesystem. Writes go to a temporary file that is renamed over the
// target, so a crash mid-write leaves the previous value intact.
type File struct {
	fs  afero.Fs
	dir string
}

// NewFile returns a File backend rooted at dir on fsys. A nil fsys selects
// the operating system filesystem, in which case a leading ~ in dir is
// expanded.
func NewFile(fsys afero.Fs, dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("store: file backend requires a directory")
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
		d, err := homedir.Expand(dir)
		if err != nil {
			return nil, fmt.Errorf("store: expand %s: %w", dir, err)
		}
		dir = d
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &File{fs: fsys, dir: dir}, nil
}

func (f *File) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("store: invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	b, err := afero.ReadFile(f.fs, p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, value, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := f.fs.Rename(tmp, p); err != nil {
		return fmt.Errorf("store: rename %s: %w", tmp, err)
	}
	return nil
}

func (f *File) Close() error {
	return nil
}
