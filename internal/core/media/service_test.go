package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

// fakeUploader records uploads and can fail on a given filename
type fakeUploader struct {
	failOn  string
	uploads []string
	mu      sync.Mutex
}

func (f *fakeUploader) Upload(ctx context.Context, file File, opts UploadOptions) (*UploadResult, error) {
	if file.Filename == f.failOn {
		return nil, errors.New("backend unavailable")
	}
	f.mu.Lock()
	f.uploads = append(f.uploads, file.Filename)
	f.mu.Unlock()
	return &UploadResult{
		PublicID:     opts.Folder + "/" + file.Filename,
		URL:          "https://cdn.test/" + opts.Folder + "/" + file.Filename,
		ResourceType: opts.ResourceType,
		Bytes:        file.Size,
		Filename:     file.Filename,
	}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, publicID string, _ ResourceType) (*DeleteResult, error) {
	return &DeleteResult{Result: DeleteOK, PublicID: publicID}, nil
}

func bytesFile(name, contentType string, data []byte) File {
	return File{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResourceTypeFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        ResourceType
		wantErr     bool
	}{
		{"image/png", ResourceImage, false},
		{"IMAGE/JPG", ResourceImage, false},
		{"video/mp4; codecs=avc1", ResourceVideo, false},
		{"application/pdf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got, err := ResourceTypeFor(tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedMediaType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpload_ReadsImageDimensions(t *testing.T) {
	svc := NewMediaService(&fakeUploader{}, Limits{}, nil)

	result, err := svc.Upload(context.Background(), bytesFile("a.png", "image/png", pngBytes(t, 40, 30)), UploadOptions{Folder: "publications/x"})
	require.NoError(t, err)
	assert.Equal(t, ResourceImage, result.ResourceType)
	assert.Equal(t, 40, result.Width)
	assert.Equal(t, 30, result.Height)
}

func TestUpload_RejectsOversizedAndUnsupported(t *testing.T) {
	svc := NewMediaService(&fakeUploader{}, Limits{MaxFileBytes: 10}, nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, bytesFile("big.png", "image/png", make([]byte, 11)), UploadOptions{})
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = svc.Upload(ctx, bytesFile("doc.pdf", "application/pdf", []byte("x")), UploadOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)

	_, err = svc.Upload(ctx, File{Filename: "empty.png", ContentType: "image/png"}, UploadOptions{})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestUploadAll_PreservesOrder(t *testing.T) {
	up := &fakeUploader{}
	svc := NewMediaService(up, Limits{}, nil)

	files := []File{
		bytesFile("1.mp4", "video/mp4", []byte("one")),
		bytesFile("2.mp4", "video/mp4", []byte("two")),
		bytesFile("3.mp4", "video/mp4", []byte("three")),
	}
	results, err := svc.UploadAll(context.Background(), files, UploadOptions{Folder: "f"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, files[i].Filename, r.Filename)
		assert.Equal(t, ResourceVideo, r.ResourceType)
	}
	assert.Len(t, up.uploads, 3)
}

func TestUploadAll_FirstFailureAborts(t *testing.T) {
	svc := NewMediaService(&fakeUploader{failOn: "2.mp4"}, Limits{}, nil)

	files := []File{
		bytesFile("1.mp4", "video/mp4", []byte("one")),
		bytesFile("2.mp4", "video/mp4", []byte("two")),
	}
	results, err := svc.UploadAll(context.Background(), files, UploadOptions{})
	assert.Nil(t, results)
	require.Error(t, err)
	assert.Equal(t, errs.KindPersistence, errs.KindOf(err))
}

func TestUploadAll_TooManyFiles(t *testing.T) {
	svc := NewMediaService(&fakeUploader{}, Limits{MaxFiles: 1}, nil)
	files := []File{
		bytesFile("1.png", "image/png", []byte("1")),
		bytesFile("2.png", "image/png", []byte("2")),
	}
	_, err := svc.UploadAll(context.Background(), files, UploadOptions{})
	assert.ErrorIs(t, err, ErrTooManyFiles)
}

func TestUnconfigured_FailsLoudly(t *testing.T) {
	svc := NewMediaService(Unconfigured{}, Limits{}, nil)

	_, err := svc.Upload(context.Background(), bytesFile("a.png", "image/png", []byte("x")), UploadOptions{})
	assert.Equal(t, errs.KindUnimplemented, errs.KindOf(err))

	_, err = svc.Delete(context.Background(), "a", ResourceImage)
	assert.Equal(t, errs.KindUnimplemented, errs.KindOf(err))
}

func TestDiskUploader_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	up, err := NewDiskUploader(dir, "http://localhost:8080/media/")
	require.NoError(t, err)
	ctx := context.Background()

	result, err := up.Upload(ctx, bytesFile("clip.MP4", "video/mp4", []byte("data")), UploadOptions{Folder: "publications/abc", ResourceType: ResourceVideo})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.PublicID, "publications/abc/"))
	assert.True(t, strings.HasSuffix(result.PublicID, ".mp4"))
	assert.Equal(t, "http://localhost:8080/media/"+result.PublicID, result.URL)
	assert.Equal(t, int64(4), result.Bytes)
	assert.Equal(t, "mp4", result.Format)

	stored, err := os.ReadFile(filepath.Join(dir, result.PublicID))
	require.NoError(t, err)
	assert.Equal(t, "data", string(stored))

	del, err := up.Delete(ctx, result.PublicID, ResourceVideo)
	require.NoError(t, err)
	assert.Equal(t, DeleteOK, del.Result)

	del, err = up.Delete(ctx, result.PublicID, ResourceVideo)
	require.NoError(t, err)
	assert.Equal(t, DeleteNotFound, del.Result)
}

func TestDiskUploader_KeepsKeysUnderRoot(t *testing.T) {
	up, err := NewDiskUploader(t.TempDir(), "")
	require.NoError(t, err)

	path, err := up.resolve("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, up.root))
}
