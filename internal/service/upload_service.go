package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/emldov7/evMonde--sub000/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileNotFound    = errors.New("file not found")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadService defines the interface for event image uploads
type UploadService interface {
	SaveImage(ctx context.Context, userID int64, header *multipart.FileHeader) (string, error)
	DeleteImage(ctx context.Context, userID int64, name string) error
}

// uploadService implements UploadService
type uploadService struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewUploadService creates a new UploadService
func NewUploadService(dir, baseURL string, maxBytes int64) (UploadService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &uploadService{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

// SaveImage stores an uploaded image under the caller's namespace and
// returns its public URL. The content type is sniffed from the bytes,
// not trusted from the request.
func (s *uploadService) SaveImage(ctx context.Context, userID int64, header *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && header.Size > s.maxBytes {
		return "", ErrFileTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	sniff := make([]byte, 512)
	n, err := io.ReadFull(src, sniff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	sniff = sniff[:n]

	ext, ok := imageExtensions[http.DetectContentType(sniff)]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := fmt.Sprintf("%d_%s%s", userID, uuid.NewString(), ext)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := dst.Write(sniff); err != nil {
		os.Remove(path)
		return "", err
	}
	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return "", err
	}
	if s.maxBytes > 0 && int64(len(sniff))+written > s.maxBytes {
		os.Remove(path)
		return "", ErrFileTooLarge
	}

	logger.InfoCtx(ctx, "image uploaded",
		zap.Int64("user_id", userID),
		zap.String("file", name))
	return s.baseURL + "/uploads/" + name, nil
}

// DeleteImage removes an uploaded image. Callers may only delete files
// from their own namespace.
func (s *uploadService) DeleteImage(ctx context.Context, userID int64, name string) error {
	name = filepath.Base(name)
	if !strings.HasPrefix(name, fmt.Sprintf("%d_", userID)) {
		return ErrFileNotFound
	}
	path := filepath.Join(s.dir, name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrFileNotFound
		}
		return err
	}
	return nil
}
