package media

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

// ResourceType is the storage class of an uploaded file
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
)

// File is an upload source. Open may be called more than once.
type File struct {
	Open        func() (io.ReadCloser, error)
	Filename    string
	ContentType string
	Size        int64
}

// UploadOptions selects where and how a file is stored
type UploadOptions struct {
	Folder       string
	ResourceType ResourceType // empty means derive from the content type
}

// UploadResult describes a stored object
type UploadResult struct {
	PublicID     string       `json:"publicId"`
	URL          string       `json:"url"`
	SecureURL    string       `json:"secureUrl"`
	ResourceType ResourceType `json:"resourceType"`
	Format       string       `json:"format"`
	Filename     string       `json:"filename"`
	ContentType  string       `json:"contentType"`
	Bytes        int64        `json:"bytes"`
	Duration     float64      `json:"duration,omitempty"`
	Width        int          `json:"width,omitempty"`
	Height       int          `json:"height,omitempty"`
}

// DeleteResult reports the outcome of a delete. Result is "ok" or "not found".
type DeleteResult struct {
	Result   string `json:"result"`
	PublicID string `json:"publicId"`
}

const (
	DeleteOK       = "ok"
	DeleteNotFound = "not found"
)

// Uploader is a storage backend
type Uploader interface {
	Upload(ctx context.Context, file File, opts UploadOptions) (*UploadResult, error)
	Delete(ctx context.Context, publicID string, resourceType ResourceType) (*DeleteResult, error)
}

// Service validates files and fans bulk uploads out to an Uploader
type Service interface {
	Upload(ctx context.Context, file File, opts UploadOptions) (*UploadResult, error)
	UploadAll(ctx context.Context, files []File, opts UploadOptions) ([]*UploadResult, error)
	Delete(ctx context.Context, publicID string, resourceType ResourceType) (*DeleteResult, error)
	Limits() Limits
}

// Limits bound a single request
type Limits struct {
	MaxFileBytes int64
	MaxFiles     int
}

const (
	DefaultMaxFileBytes = 100 * 1024 * 1024
	DefaultMaxFiles     = 10
)

// Errors
var (
	ErrUnsupportedMediaType = errs.Validation("unsupported media type (allowed: image/*, video/*)")
	ErrFileTooLarge         = errs.Validation("file exceeds the maximum size")
	ErrEmptyFile            = errs.Validation("file is empty")
	ErrTooManyFiles         = errs.Validation("too many files")
	ErrInvalidPublicID      = errs.Validation("public id is required")
)

// IsValidationError checks if an error is an upload validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrUnsupportedMediaType) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrTooManyFiles) ||
		errors.Is(err, ErrInvalidPublicID)
}

// ResourceTypeFor maps a MIME type to a resource type
func ResourceTypeFor(contentType string) (ResourceType, error) {
	ct := normalizeMimeType(contentType)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return ResourceImage, nil
	case strings.HasPrefix(ct, "video/"):
		return ResourceVideo, nil
	default:
		return "", errs.Detail(ErrUnsupportedMediaType, "%q", contentType)
	}
}

// normalizeMimeType lowercases, strips parameters and fixes common aliases
func normalizeMimeType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	switch mimeType {
	case "image/jpg":
		return "image/jpeg"
	default:
		return mimeType
	}
}

// extensionFor picks a file extension from the original name, falling back to the MIME subtype
func extensionFor(filename, contentType string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	ct := normalizeMimeType(contentType)
	if i := strings.Index(ct, "/"); i >= 0 && i < len(ct)-1 {
		sub := ct[i+1:]
		if j := strings.IndexAny(sub, "+."); j > 0 {
			sub = sub[:j]
		}
		return "." + sub
	}
	return ""
}

// formatFor returns the extension without its dot, "jpg" becoming "jpeg"
func formatFor(filename, contentType string) string {
	ext := strings.TrimPrefix(extensionFor(filename, contentType), ".")
	if ext == "jpg" {
		return "jpeg"
	}
	return ext
}

// contentTypeForKey guesses a MIME type from an object key
func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4v"):
		return "video/mp4"
	case strings.HasSuffix(s, ".webm"):
		return "video/webm"
	case strings.HasSuffix(s, ".mov"):
		return "video/quicktime"
	default:
		return ""
	}
}
