// Package media stores uploaded post attachments and hands back opaque
// references.
package media

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/AHMED-techNOP/01BLOG/internal/middleware"
	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"github.com/google/uuid"
)

// Store persists media blobs and returns stable references for them.
type Store interface {
	// Save writes the blob and returns its public reference
	// ("/uploads/<name>"). The original filename only contributes its
	// extension.
	Save(r io.Reader, originalName string) (string, error)
	// Delete removes the blob behind ref. Failures are logged, never
	// propagated: a dangling file must not abort a post delete.
	Delete(ref string)
}

// allowed upload extensions: common image and video formats.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".mp4":  true,
	".webm": true,
}

const refPrefix = "/uploads/"

type diskStore struct {
	dir string
}

// NewDiskStore returns a Store writing under dir, creating it if needed.
func NewDiskStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, models.NewDependencyError("media store", err)
	}
	return &diskStore{dir: dir}, nil
}

func (s *diskStore) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", models.NewValidationError(fmt.Sprintf("Unsupported media type %q", ext))
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", models.NewDependencyError("media store", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", models.NewDependencyError("media store", err)
	}

	return refPrefix + name, nil
}

func (s *diskStore) Delete(ref string) {
	if !strings.HasPrefix(ref, refPrefix) {
		return
	}
	name := strings.TrimPrefix(ref, refPrefix)
	if name == "" {
		return
	}
	// Refuse anything that could escape the store directory.
	if name != filepath.Base(name) {
		middleware.Logger.Warn("refusing suspicious media reference", slog.String("ref", ref))
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		middleware.Logger.Warn("failed to remove media blob", slog.String("ref", ref), slog.String("error", err.Error()))
	}
}
