// internal/domain/prescription/service.go
package prescription

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/config"
)

// Service stores prescription files uploaded during checkout
type Service struct {
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new prescription service
func NewService(cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		config: cfg,
		logger: logger,
	}
}

// Store validates and saves an uploaded prescription file, returning
// the stored relative path. Filenames are randomized so uploads cannot
// collide or escape the upload directory.
func (s *Service) Store(file *multipart.FileHeader) (string, error) {
	if err := s.validate(file); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.config.Upload.LocalPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	dst := filepath.Join(s.config.Upload.LocalPath, name)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"filename": name,
		"size":     file.Size,
	}).Info("Prescription stored")

	return name, nil
}

// Remove deletes a previously stored prescription file
func (s *Service) Remove(name string) error {
	if name == "" {
		return nil
	}
	// Stored names are generated by Store; reject anything with path
	// separators to keep deletes inside the upload directory
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid prescription filename")
	}
	err := os.Remove(filepath.Join(s.config.Upload.LocalPath, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// Path returns the filesystem path for a stored prescription
func (s *Service) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid prescription filename")
	}
	return filepath.Join(s.config.Upload.LocalPath, name), nil
}

func (s *Service) validate(file *multipart.FileHeader) error {
	if file.Size > s.config.Upload.MaxSize {
		return fmt.Errorf("file too large: maximum size is %d bytes", s.config.Upload.MaxSize)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	for _, allowed := range s.config.Upload.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("file type .%s not allowed: use %s", ext, strings.Join(s.config.Upload.AllowedExtensions, ", "))
}
