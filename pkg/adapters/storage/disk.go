// Package storage keeps receipt images uploaded with submissions.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"github.com/wadjakorntonsri/paylinks/pkg/ports"
	_ "golang.org/x/image/webp" // WebP decoder
)

const (
	maxUploadBytes = 10 << 20
	maxDimension   = 1600
	jpegQuality    = 85
)

var storedName = regexp.MustCompile(`^[0-9a-f-]{36}\.jpg$`)

// DiskStore normalizes every upload to a bounded JPEG on local disk
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save decodes JPEG, PNG, GIF or WebP, fits it into maxDimension and stores it under a fresh name
func (s *DiskStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	img, err := imaging.Decode(io.LimitReader(r, maxUploadBytes), imaging.AutoOrientation(true))
	if err != nil {
		return "", domain.Invalid("image could not be read")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)

	name := uuid.NewString() + ".jpg"
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create attachment %s: %w", filename, err)
	}
	defer f.Close()

	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("encode attachment: %w", err)
	}
	return name, nil
}

// Open returns a stored attachment and its content type. Names not produced by Save are not found.
func (s *DiskStore) Open(name string) (io.ReadCloser, string, error) {
	if !storedName.MatchString(name) {
		return nil, "", domain.ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, "", domain.ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return f, "image/jpeg", nil
}

var _ ports.AttachmentStore = (*DiskStore)(nil)
