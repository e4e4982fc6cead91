package utils

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// Base directory for storing uploaded files
	uploadBaseDir = "uploads"
	// Base URL for serving files
	baseURL = "/uploads"
	// Maximum file size (10MB)
	maxFileSize = 10 * 1024 * 1024
	// Images wider than this are scaled down
	maxImageWidth = 1200
)

var (
	// Allowed image extensions
	allowedImageExts = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
	}
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)
)

// cleanFilename removes any potentially dangerous characters from the filename
func cleanFilename(filename string) string {
	filename = filepath.Base(filename)
	return unsafeFilenameChars.ReplaceAllString(filename, "")
}

// ValidateImageFile checks the extension and size of an uploaded image
func ValidateImageFile(filename string, size int) error {
	if size > maxFileSize {
		return fmt.Errorf("file too large. Maximum size is %d MB", maxFileSize/(1024*1024))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return fmt.Errorf("unsupported image format. Allowed formats: jpg, jpeg, png, gif")
	}
	return nil
}

// LocalImageStorage stores normalised images on local disk under uploads/
type LocalImageStorage struct {
	baseDir  string
	baseURL  string
	maxWidth int
}

// NewLocalImageStorage creates a storage rooted at baseDir and served from urlPrefix.
// Empty values fall back to "uploads" and "/uploads".
func NewLocalImageStorage(baseDir, urlPrefix string) *LocalImageStorage {
	if baseDir == "" {
		baseDir = uploadBaseDir
	}
	if urlPrefix == "" {
		urlPrefix = baseURL
	}
	return &LocalImageStorage{
		baseDir:  baseDir,
		baseURL:  strings.TrimRight(urlPrefix, "/"),
		maxWidth: maxImageWidth,
	}
}

// BaseDir returns the directory files are written to
func (s *LocalImageStorage) BaseDir() string {
	return s.baseDir
}

// SaveImage decodes the image, scales it down to the maximum width keeping the
// aspect ratio, re-encodes it and returns its public URL
func (s *LocalImageStorage) SaveImage(ctx context.Context, folder, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	filename = cleanFilename(filename)
	if err := ValidateImageFile(filename, len(data)); err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Dx() > s.maxWidth {
		img = imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return "", fmt.Errorf("unsupported image format: %w", err)
	}

	folder = cleanFilename(folder)
	dir := filepath.Join(s.baseDir, folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.New().String() + ext
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, folder, name), nil
}
