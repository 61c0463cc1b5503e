// Package storage keeps complaint photo attachments on local disk and hands
// out the public paths they are served under.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/Fraol-12/WhisperBox/internal/apperr"
	"github.com/Fraol-12/WhisperBox/internal/model"
)

// PublicPrefix is the URL path photos are served under.
const PublicPrefix = "/uploads"

type PhotoStore struct {
	dir      string
	maxBytes int64
}

// NewPhotoStore creates dir if needed.
func NewPhotoStore(dir string, maxBytes int64) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &PhotoStore{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the directory files are written to.
func (s *PhotoStore) Dir() string { return s.dir }

// Save validates and writes the uploaded photos and returns their public
// references in upload order. Either every file is kept or none is.
func (s *PhotoStore) Save(files []*multipart.FileHeader) ([]string, error) {
	if len(files) > model.MaxPhotos {
		return nil, apperr.Validation("TOO_MANY_PHOTOS", "At most 4 photos are allowed")
	}
	for _, fh := range files {
		if fh.Size > s.maxBytes {
			return nil, apperr.Validation("PHOTO_TOO_LARGE", fmt.Sprintf("Photo %q exceeds %d bytes", fh.Filename, s.maxBytes))
		}
		if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
			return nil, apperr.Validation("INVALID_PHOTO", "Only image files are allowed")
		}
	}

	refs := make([]string, 0, len(files))
	for _, fh := range files {
		ref, err := s.saveOne(fh)
		if err != nil {
			s.Remove(refs)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (s *PhotoStore) saveOne(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", apperr.Persistence("Failed to read upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return "", apperr.Persistence("Failed to read upload", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", apperr.Validation("PHOTO_TOO_LARGE", fmt.Sprintf("Photo %q exceeds %d bytes", fh.Filename, s.maxBytes))
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", apperr.Validation("INVALID_PHOTO", "Only image files are allowed")
	}

	name := uuid.NewString() + mt.Extension()
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", apperr.Persistence("Failed to store upload", err)
	}
	return path.Join(PublicPrefix, name), nil
}

// Remove deletes previously saved photos. Unknown or foreign references are
// ignored.
func (s *PhotoStore) Remove(refs []string) {
	for _, ref := range refs {
		name := strings.TrimPrefix(ref, PublicPrefix+"/")
		if name == ref || name == "" || strings.ContainsAny(name, `/\`) {
			continue
		}
		_ = os.Remove(filepath.Join(s.dir, name))
	}
}
