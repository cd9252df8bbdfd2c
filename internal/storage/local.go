package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Local keeps blobs as files under a root directory. Writes go to a temp
// file first and are renamed into place, so a failed upload never leaves
// a readable blob.
type Local struct {
	root   string
	signer *Signer
}

func NewLocal(root string, signer *Signer) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: root, signer: signer}, nil
}

func (l *Local) path(key string) string {
	// Keys are generated server-side, but never trust them as paths.
	return filepath.Join(l.root, filepath.Base(key))
}

func (l *Local) Save(_ context.Context, key string, r io.Reader) error {
	tmp, err := os.CreateTemp(l.root, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), l.path(key))
}

func (l *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return os.Open(l.path(key))
}

func (l *Local) Remove(_ context.Context, key string) error {
	err := os.Remove(l.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) SignedURL(key, fileName string, ttl time.Duration) (string, error) {
	return l.signer.Sign(key, fileName, ttl)
}
