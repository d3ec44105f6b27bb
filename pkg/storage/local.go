package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Local is the local-filesystem driver.
type Local struct {
	root    string
	baseURL string
}

// NewLocal roots the disk at root (relative paths resolve against the
// working directory) and serves files under baseURL.
func NewLocal(root, baseURL string) (*Local, error) {
	if !filepath.IsAbs(root) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = filepath.Join(cwd, root)
	}
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (d *Local) Root() string { return d.root }

// abs resolves path inside root; paths escaping it are rejected.
func (d *Local) abs(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("storage/local: empty path")
	}
	return filepath.Join(d.root, clean), nil
}

func (d *Local) Put(_ context.Context, path string, r io.Reader, _ string) error {
	full, err := d.abs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return wrap("local", "mkdir", path, err)
	}
	f, err := os.Create(full)
	if err != nil {
		return wrap("local", "create", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return wrap("local", "write", path, err)
	}
	return nil
}

func (d *Local) Get(_ context.Context, path string) ([]byte, error) {
	full, err := d.abs(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap("local", "read", path, err)
	}
	return b, nil
}

func (d *Local) Exists(_ context.Context, path string) bool {
	full, err := d.abs(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

func (d *Local) Delete(_ context.Context, path string) error {
	full, err := d.abs(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return wrap("local", "delete", path, err)
	}
	return nil
}

func (d *Local) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Handler serves the disk's files, meant to be mounted at the URL prefix.
func (d *Local) Handler(prefix string) http.Handler {
	return http.StripPrefix(strings.TrimRight(prefix, "/"), http.FileServer(noDirFS{http.Dir(d.root)}))
}

// noDirFS hides directory listings.
type noDirFS struct{ fs http.FileSystem }

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
