// Package service contains the application's business logic.
package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"quill/internal/config"
	"quill/internal/models"
	"quill/internal/observability"

	"github.com/google/uuid"
)

const (
	DefaultImageUploadDir       = "uploads/featured_images"
	DefaultImageMaxUploadSizeMB = 100
)

// allowedImageExts is the exact allow-list for featured images.
var allowedImageExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// ImageService persists featured images under a dedicated directory.
// Stored names never contain path components, so records only ever
// reference plain filenames.
type ImageService struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

// ImageUpload carries an uploaded file as received from the form.
type ImageUpload struct {
	Filename string
	Content  []byte
}

// NewImageService creates an ImageService from configuration.
func NewImageService(cfg *config.Config) *ImageService {
	uploadDir := DefaultImageUploadDir
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB

	if cfg != nil {
		if cfg.ImageUploadDir != "" {
			uploadDir = cfg.ImageUploadDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}

	return &ImageService{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// UploadDir returns the directory featured images are written to.
func (s *ImageService) UploadDir() string {
	return s.uploadDir
}

// SaveFeaturedImage validates and writes an uploaded image, returning the
// stored filename. Validation failures come back as validation errors and
// write failures as storage errors; nothing is persisted in either case.
func (s *ImageService) SaveFeaturedImage(in ImageUpload) (string, error) {
	if len(in.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(in.Filename)))
	if _, ok := allowedImageExts[ext]; !ok {
		observability.ImageUploads.WithLabelValues("rejected_extension").Inc()
		return "", models.NewValidationError("Invalid file type. Please upload PNG, JPG, JPEG, or GIF.")
	}

	filename := sanitizeFilename(in.Filename)
	// A short random prefix keeps concurrent uploads of same-named files apart.
	filename = uuid.New().String()[:8] + "_" + filename

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		observability.ImageUploads.WithLabelValues("write_failed").Inc()
		return "", models.NewStorageError(err)
	}
	if err := os.WriteFile(filepath.Join(s.uploadDir, filename), in.Content, 0o644); err != nil {
		observability.ImageUploads.WithLabelValues("write_failed").Inc()
		return "", models.NewStorageError(err)
	}

	observability.ImageUploads.WithLabelValues("saved").Inc()
	return filename, nil
}

// Exists reports whether a stored image file is present on disk. The feed
// exposes only images that still exist; a missing file becomes a nil
// reference rather than a broken link.
func (s *ImageService) Exists(filename string) bool {
	if filename == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(s.uploadDir, filepath.Base(filename)))
	return err == nil
}

// Remove deletes a stored image file, used to undo a save when the rest of
// a post submission fails.
func (s *ImageService) Remove(filename string) {
	if filename == "" {
		return
	}
	_ = os.Remove(filepath.Join(s.uploadDir, filepath.Base(filename)))
}

// sanitizeFilename strips path components and anything outside a
// conservative character set, preventing traversal through stored names.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		out = "upload"
	}
	return out
}
