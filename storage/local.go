package storage

import (
	"io"
	"os"
	"path"
	"path/filepath"
)

type LocalProvider struct {
	// RootPath is the directory files are written to.
	RootPath string
	// PublicPrefix is the URL path RootPath is served under.
	PublicPrefix string
}

func NewLocalProvider(root, publicPrefix string) (*LocalProvider, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &LocalProvider{RootPath: root, PublicPrefix: publicPrefix}, nil
}

func (l *LocalProvider) Put(key string, body io.ReadSeeker, contentType string) error {
	p := filepath.Join(l.RootPath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, body)
	return err
}

func (l *LocalProvider) Delete(key string) error {
	return os.Remove(filepath.Join(l.RootPath, filepath.FromSlash(key)))
}

func (l *LocalProvider) URL(key string) string {
	return path.Join(l.PublicPrefix, key)
}
