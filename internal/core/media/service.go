package media

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

// maxParallelUploads bounds the bulk upload fan-out
const maxParallelUploads = 4

type mediaService struct {
	uploader Uploader
	logger   *slog.Logger
	limits   Limits
}

// NewMediaService creates a media service over a storage backend.
// Zero limits fall back to the defaults.
func NewMediaService(uploader Uploader, limits Limits, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if limits.MaxFileBytes <= 0 {
		limits.MaxFileBytes = DefaultMaxFileBytes
	}
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = DefaultMaxFiles
	}
	return &mediaService{
		uploader: uploader,
		limits:   limits,
		logger:   logger,
	}
}

func (s *mediaService) Limits() Limits {
	return s.limits
}

// Upload validates and stores one file. Images are decoded to record their dimensions.
func (s *mediaService) Upload(ctx context.Context, file File, opts UploadOptions) (*UploadResult, error) {
	resourceType, err := s.validate(file, opts)
	if err != nil {
		return nil, err
	}
	opts.ResourceType = resourceType

	result, err := s.uploader.Upload(ctx, file, opts)
	if err != nil {
		if errs.KindOf(err) != errs.KindUnknown {
			return nil, err
		}
		return nil, errs.Persistence(fmt.Sprintf("upload %s", file.Filename), err)
	}

	if result.ResourceType == ResourceImage && result.Width == 0 {
		width, height, dimErr := ImageDimensions(file)
		if dimErr != nil {
			s.logger.Warn("failed to read image dimensions",
				"filename", file.Filename,
				"public_id", result.PublicID,
				"error", dimErr)
		} else {
			result.Width, result.Height = width, height
		}
	}

	return result, nil
}

// UploadAll uploads files in parallel, preserving input order in the result.
// The first failure cancels the remaining uploads; objects already stored are
// not removed.
func (s *mediaService) UploadAll(ctx context.Context, files []File, opts UploadOptions) ([]*UploadResult, error) {
	if len(files) > s.limits.MaxFiles {
		return nil, errs.Detail(ErrTooManyFiles, "got %d, max %d", len(files), s.limits.MaxFiles)
	}
	for _, f := range files {
		if _, err := s.validate(f, opts); err != nil {
			return nil, err
		}
	}

	results := make([]*UploadResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)

	for i, f := range files {
		g.Go(func() error {
			result, err := s.Upload(gctx, f, opts)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var stored []string
		for _, r := range results {
			if r != nil {
				stored = append(stored, r.PublicID)
			}
		}
		if len(stored) > 0 {
			s.logger.Warn("bulk upload aborted with stored objects left behind",
				"folder", opts.Folder,
				"stored", stored,
				"error", err)
		}
		return nil, err
	}

	return results, nil
}

// Delete removes a stored object
func (s *mediaService) Delete(ctx context.Context, publicID string, resourceType ResourceType) (*DeleteResult, error) {
	if strings.TrimSpace(publicID) == "" {
		return nil, ErrInvalidPublicID
	}
	result, err := s.uploader.Delete(ctx, publicID, resourceType)
	if err != nil {
		if errs.KindOf(err) != errs.KindUnknown {
			return nil, err
		}
		return nil, errs.Persistence(fmt.Sprintf("delete %s", publicID), err)
	}
	return result, nil
}

func (s *mediaService) validate(file File, opts UploadOptions) (ResourceType, error) {
	if file.Open == nil || file.Size <= 0 {
		return "", errs.Detail(ErrEmptyFile, "%s", file.Filename)
	}
	if file.Size > s.limits.MaxFileBytes {
		return "", errs.Detail(ErrFileTooLarge, "%s is %d bytes, max %d", file.Filename, file.Size, s.limits.MaxFileBytes)
	}
	resourceType, err := ResourceTypeFor(file.ContentType)
	if err != nil {
		return "", err
	}
	if opts.ResourceType != "" && opts.ResourceType != resourceType {
		return "", errs.Detail(ErrUnsupportedMediaType, "%s is not %s", file.Filename, opts.ResourceType)
	}
	return resourceType, nil
}
