package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GCSConfig configures the Google Cloud Storage backend
type GCSConfig struct {
	Bucket          string
	CredentialsFile string // optional, application default credentials otherwise
	PublicBaseURL   string // optional CDN or custom domain
}

// GCSUploader stores media in a Google Cloud Storage bucket
type GCSUploader struct {
	client *storage.Client
	cfg    GCSConfig
}

var _ Uploader = (*GCSUploader)(nil)

// NewGCSUploader opens a storage client for cfg.Bucket
func NewGCSUploader(ctx context.Context, cfg GCSConfig) (*GCSUploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("GCS bucket name is required")
	}

	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSUploader{client: client, cfg: cfg}, nil
}

// Close releases the storage client
func (u *GCSUploader) Close() error {
	return u.client.Close()
}

// Upload writes the file under opts.Folder with a random object name
func (u *GCSUploader) Upload(ctx context.Context, file File, opts UploadOptions) (*UploadResult, error) {
	key := objectKey(opts.Folder, file)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			log.Printf("Warning: failed to close upload reader: %v", closeErr)
		}
	}()

	w := u.client.Bucket(u.cfg.Bucket).Object(key).NewWriter(ctx)
	w.ContentType = normalizeMimeType(file.ContentType)
	if w.ContentType == "" {
		w.ContentType = contentTypeForKey(key)
	}
	written, err := io.Copy(w, rc)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close GCS writer: %w", err)
	}

	url := u.publicURL(key)
	return &UploadResult{
		PublicID:     key,
		URL:          url,
		SecureURL:    url,
		ResourceType: opts.ResourceType,
		Format:       formatFor(file.Filename, file.ContentType),
		Filename:     file.Filename,
		ContentType:  w.ContentType,
		Bytes:        written,
	}, nil
}

// Delete removes an object. A missing object is reported, not treated as an error.
func (u *GCSUploader) Delete(ctx context.Context, publicID string, _ ResourceType) (*DeleteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := u.client.Bucket(u.cfg.Bucket).Object(publicID).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return &DeleteResult{Result: DeleteNotFound, PublicID: publicID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", publicID, u.cfg.Bucket, err)
	}
	return &DeleteResult{Result: DeleteOK, PublicID: publicID}, nil
}

func (u *GCSUploader) publicURL(key string) string {
	if u.cfg.PublicBaseURL != "" {
		return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.cfg.Bucket, key)
}

// objectKey builds folder/<uuid><ext>
func objectKey(folder string, file File) string {
	name := uuid.NewString() + extensionFor(file.Filename, file.ContentType)
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
