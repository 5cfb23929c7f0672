package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local stores files in a directory served statically under Prefix.
type Local struct {
	dir    string
	prefix string
}

// NewLocal creates dir if needed and verifies it is writable.
func NewLocal(dir, prefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return nil, fmt.Errorf("upload dir not writable: %w", err)
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	return &Local{dir: dir, prefix: "/" + strings.Trim(prefix, "/")}, nil
}

func (l *Local) Dir() string    { return l.dir }
func (l *Local) Prefix() string { return l.prefix }

func (l *Local) Save(_ context.Context, name, _ string, r io.Reader) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

func (l *Local) Remove(_ context.Context, name string) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) URL(baseURL, name string) string {
	return strings.TrimRight(baseURL, "/") + l.prefix + "/" + name
}

func (l *Local) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(l.dir, name), nil
}
