package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/mapper"
	"github.com/autoline-panel/shop-api/internal/repository"
	"github.com/autoline-panel/shop-api/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// allowedImageTypes are the sniffed content types accepted for damage photos
var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// purgeBatchSize bounds how many uploads one janitor pass removes
const purgeBatchSize = 200

// ImageFile is one file of a multipart upload
type ImageFile struct {
	Filename string
	Data     io.Reader
}

// UploadService stores customer damage images and tracks them until a quote claims them
type UploadService struct {
	uploadRepo *repository.UploadRepository
	storage    storage.Storage
	maxBytes   int64
	maxImages  int
	logger     *zap.Logger
	now        func() time.Time
}

// NewUploadService creates a new UploadService
func NewUploadService(
	uploadRepo *repository.UploadRepository,
	store storage.Storage,
	maxBytes int64,
	maxImages int,
	logger *zap.Logger,
) *UploadService {
	return &UploadService{
		uploadRepo: uploadRepo,
		storage:    store,
		maxBytes:   maxBytes,
		maxImages:  maxImages,
		logger:     logger,
		now:        time.Now,
	}
}

// UploadImages validates and stores every file. The content type is sniffed
// from the bytes, never taken from the client.
func (s *UploadService) UploadImages(ctx context.Context, files []ImageFile) ([]domain.UploadDTO, error) {
	if len(files) == 0 {
		return nil, ErrNoImages
	}
	if s.maxImages > 0 && len(files) > s.maxImages {
		return nil, fmt.Errorf("%w: at most %d images", ErrTooManyImages, s.maxImages)
	}

	// Read and check everything first so a bad file stores nothing
	payloads := make([][]byte, len(files))
	types := make([]string, len(files))
	for i, f := range files {
		data, err := io.ReadAll(io.LimitReader(f.Data, s.maxBytes+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Filename, err)
		}
		if int64(len(data)) > s.maxBytes {
			return nil, fmt.Errorf("%w: %s is larger than %d MB", ErrImageTooLarge, f.Filename, s.maxBytes>>20)
		}

		mtype := mimetype.Detect(data)
		if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
			return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedImageType, f.Filename, mtype.String())
		}
		payloads[i] = data
		types[i] = mtype.String()
	}

	dtos := make([]domain.UploadDTO, 0, len(files))
	for i, f := range files {
		storagePath, size, err := s.storage.Upload(ctx, f.Filename, types[i], bytes.NewReader(payloads[i]))
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}

		upload := &domain.Upload{
			StoragePath:      storagePath,
			URL:              s.storage.URL(storagePath),
			ContentType:      types[i],
			Size:             size,
			OriginalFilename: f.Filename,
		}
		if err := s.uploadRepo.Create(ctx, upload); err != nil {
			if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
				s.logger.Warn("failed to remove orphaned image", zap.String("path", storagePath), zap.Error(delErr))
			}
			return nil, fmt.Errorf("failed to record upload: %w", err)
		}

		s.logger.Info("image uploaded",
			zap.String("upload_id", upload.ID.String()),
			zap.String("content_type", upload.ContentType),
			zap.Int64("size", upload.Size))

		dtos = append(dtos, mapper.ToUploadDTO(upload))
	}

	return dtos, nil
}

// Open returns a stored image and its content type. Only paths recorded as
// uploads are served.
func (s *UploadService) Open(ctx context.Context, storagePath string) (io.ReadCloser, string, error) {
	upload, err := s.uploadRepo.GetByStoragePath(ctx, storagePath)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUploadNotFound
		}
		return nil, "", fmt.Errorf("failed to get upload: %w", err)
	}

	body, err := s.storage.Download(ctx, upload.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, "", ErrUploadNotFound
		}
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	return body, upload.ContentType, nil
}

// PurgeUnclaimed deletes uploads that no quote claimed within the retention window.
// It returns how many were removed.
func (s *UploadService) PurgeUnclaimed(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := s.now().Add(-retention)
	uploads, err := s.uploadRepo.ListUnclaimedBefore(ctx, cutoff, purgeBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list unclaimed uploads: %w", err)
	}

	removed := 0
	for i := range uploads {
		upload := &uploads[i]
		if err := s.storage.Delete(ctx, upload.StoragePath); err != nil {
			s.logger.Warn("failed to delete unclaimed image",
				zap.String("upload_id", upload.ID.String()),
				zap.Error(err))
			continue
		}
		if err := s.uploadRepo.Delete(ctx, upload.ID); err != nil {
			return removed, fmt.Errorf("failed to delete upload record: %w", err)
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("purged unclaimed uploads", zap.Int("count", removed), zap.Time("cutoff", cutoff))
	}
	return removed, nil
}
