package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// DiskUploader stores media on the local filesystem, for development and tests
type DiskUploader struct {
	root    string
	baseURL string
}

var _ Uploader = (*DiskUploader)(nil)

// NewDiskUploader stores files under root and serves them from baseURL
func NewDiskUploader(root, baseURL string) (*DiskUploader, error) {
	if root == "" {
		return nil, fmt.Errorf("media directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &DiskUploader{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (u *DiskUploader) Upload(ctx context.Context, file File, opts UploadOptions) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := objectKey(opts.Folder, file)
	dest, err := u.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media folder: %w", err)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			log.Printf("Warning: failed to close upload reader: %v", closeErr)
		}
	}()

	out, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to create media file: %w", err)
	}
	written, err := io.Copy(out, rc)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return nil, fmt.Errorf("failed to write media file: %w", err)
	}

	url := u.baseURL + "/" + key
	return &UploadResult{
		PublicID:     key,
		URL:          url,
		SecureURL:    url,
		ResourceType: opts.ResourceType,
		Format:       formatFor(file.Filename, file.ContentType),
		Filename:     file.Filename,
		ContentType:  normalizeMimeType(file.ContentType),
		Bytes:        written,
	}, nil
}

func (u *DiskUploader) Delete(ctx context.Context, publicID string, _ ResourceType) (*DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := u.resolve(publicID)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &DeleteResult{Result: DeleteNotFound, PublicID: publicID}, nil
		}
		return nil, fmt.Errorf("failed to delete media file: %w", err)
	}
	return &DeleteResult{Result: DeleteOK, PublicID: publicID}, nil
}

// resolve maps a key to a path under root, rejecting traversal
func (u *DiskUploader) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	path := filepath.Join(u.root, clean)
	rel, err := filepath.Rel(u.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return path, nil
}
