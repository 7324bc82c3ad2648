package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"

	"campus_exchange/internal/config"
	"campus_exchange/internal/domain"
	apperrors "campus_exchange/pkg/errors"
	"campus_exchange/pkg/logger"
)

// StoredFile describes an upload after it has been written to storage.
type StoredFile struct {
	URL         string
	Name        string
	Size        int64
	ContentType string

	path string
}

// MessageType is image for image/* uploads and file otherwise.
func (f *StoredFile) MessageType() string {
	if strings.HasPrefix(f.ContentType, "image/") {
		return domain.MessageTypeImage
	}
	return domain.MessageTypeFile
}

type StorageService interface {
	Save(ctx context.Context, header *multipart.FileHeader) (*StoredFile, error)
	// Remove deletes a file returned by Save whose message was never recorded.
	Remove(ctx context.Context, file *StoredFile) error
}

type localStorage struct {
	cfg config.UploadConfig
	log logger.Logger
}

// NewLocalStorage stores uploads on the local filesystem under cfg.Dir.
func NewLocalStorage(cfg config.UploadConfig, log logger.Logger) StorageService {
	return &localStorage{cfg: cfg, log: log}
}

func (s *localStorage) Save(ctx context.Context, header *multipart.FileHeader) (*StoredFile, error) {
	if header.Size > s.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %s exceeds the %s limit", apperrors.ErrFileTooLarge,
			humanize.Bytes(uint64(header.Size)), humanize.Bytes(uint64(s.cfg.MaxBytes)))
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable upload", apperrors.ErrBadRequest)
	}
	defer src.Close()

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		s.log.Error("Failed to create upload dir", "error", err, "dir", s.cfg.Dir)
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := ulid.Make().String() + strings.ToLower(filepath.Ext(header.Filename))
	dstPath := filepath.Join(s.cfg.Dir, name)
	written, err := s.write(dstPath, src)
	if err != nil {
		return nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	s.log.Info("Upload stored", "name", name, "size", humanize.Bytes(uint64(written)))

	return &StoredFile{
		path:        dstPath,
		URL:         strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + name,
		Name:        filepath.Base(header.Filename),
		Size:        written,
		ContentType: contentType,
	}, nil
}

// write copies src to path, capped at MaxBytes. Nothing is left on disk
// when it fails.
func (s *localStorage) write(path string, src io.Reader) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		s.log.Error("Failed to create upload file", "error", err)
		return 0, fmt.Errorf("create upload: %w", err)
	}

	// Copy one byte past the limit so a lying Content-Length is still caught.
	written, err := io.Copy(dst, io.LimitReader(src, s.cfg.MaxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		s.log.Error("Failed to write upload", "error", err)
		return 0, fmt.Errorf("write upload: %w", err)
	}
	if written > s.cfg.MaxBytes {
		_ = os.Remove(path)
		return 0, fmt.Errorf("%w: upload exceeds the %s limit", apperrors.ErrFileTooLarge,
			humanize.Bytes(uint64(s.cfg.MaxBytes)))
	}

	return written, nil
}

func (s *localStorage) Remove(ctx context.Context, file *StoredFile) error {
	if file == nil || file.path == "" {
		return nil
	}
	if err := os.Remove(file.path); err != nil && !os.IsNotExist(err) {
		s.log.Error("Failed to remove upload", "error", err, "path", file.path)
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
