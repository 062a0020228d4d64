package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// DirStorage writes files below a root directory
type DirStorage struct {
	fs   afero.Fs
	root string
}

// NewDirStorage uses fs rooted at root. Pass afero.NewOsFs() for the real disk.
func NewDirStorage(fs afero.Fs, root string) (*DirStorage, error) {
	err := fs.MkdirAll(root, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &DirStorage{fs: fs, root: root}, nil
}

func (d *DirStorage) full(p string) string {
	return filepath.Join(d.root, filepath.Clean("/"+p))
}

// Save writes through a temporary file; a failed copy leaves nothing at p
func (d *DirStorage) Save(ctx context.Context, p string, file io.Reader) error {
	target := d.full(p)
	err := d.fs.MkdirAll(filepath.Dir(target), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := target + ".part"
	f, err := d.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	_, err = io.Copy(f, file)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		_ = d.fs.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", p, err)
	}

	err = d.fs.Rename(tmp, target)
	if err != nil {
		return fmt.Errorf("failed to move %s into place: %w", p, err)
	}
	return nil
}

func (d *DirStorage) Delete(ctx context.Context, p string) error {
	err := d.fs.Remove(d.full(p))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", p, err)
	}
	return nil
}

func (d *DirStorage) URL(p string) string {
	return d.full(p)
}
