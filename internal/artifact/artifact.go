// Package artifact renders ticket QR images and stores them on the local
// filesystem under a stable, publicly served path convention.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

// Render encodes a code payload into a PNG image. Rendering the same payload
// twice yields an artifact that decodes to the same payload, which is what
// makes regeneration safe.
func Render(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Low, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// FileStore writes artifacts to a directory and maps keys to the public URL
// they are served under.
type FileStore struct {
	dir          string
	publicPrefix string
}

// NewFileStore creates the backing directory if needed.
func NewFileStore(dir, publicPrefix string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FileStore{dir: dir, publicPrefix: publicPrefix}, nil
}

// Write persists an artifact under its key, replacing any previous content.
func (s *FileStore) Write(key string, data []byte) error {
	if err := os.WriteFile(filepath.Join(s.dir, key), data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", key, err)
	}
	return nil
}

// Exists reports whether an artifact is present in the store.
func (s *FileStore) Exists(key string) bool {
	_, err := os.Stat(filepath.Join(s.dir, key))
	return err == nil
}

// PublicPath returns the URL path an artifact is served under. It is derived
// from the key alone and valid whether or not the file currently exists.
func (s *FileStore) PublicPath(key string) string {
	return s.publicPrefix + "/" + key
}

// FilePath returns the on-disk location of an artifact.
func (s *FileStore) FilePath(key string) string {
	return filepath.Join(s.dir, key)
}

// Dir returns the backing directory, for mounting as a static file root.
func (s *FileStore) Dir() string {
	return s.dir
}
