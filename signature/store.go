// Package signature stores signature images on the local filesystem and
// serves them under a public base URL.
package signature

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"Gin_postgres_redis_loan_inventory/loans"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const MaxImageSize = 5 << 20

var (
	ErrUnsupportedImage = fmt.Errorf("%w: signature must be a PNG or JPEG image", loans.ErrValidation)
	ErrImageTooLarge    = fmt.Errorf("%w: signature image exceeds 5MB", loans.ErrValidation)
	ErrForeignURL       = errors.New("url does not belong to this signature store")
)

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

type FileStore struct {
	dir     string
	baseURL string
}

// NewFileStore creates dir if needed. baseURL is the prefix returned URLs
// start with, e.g. "/uploads/signatures".
func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create signature dir: %w", err)
	}
	return &FileStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Save(ctx context.Context, image []byte) (string, error) {
	if len(image) > MaxImageSize {
		return "", ErrImageTooLarge
	}
	ext, ok := extensions[mimetype.Detect(image).String()]
	if !ok {
		return "", ErrUnsupportedImage
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), image, 0o644); err != nil {
		return "", fmt.Errorf("write signature: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// Delete removes the file behind url. A file that is already gone is not an
// error.
func (s *FileStore) Delete(_ context.Context, url string) error {
	name, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || name == "" || name != path.Base(name) {
		return fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
