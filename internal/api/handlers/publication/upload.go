package publication

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/wilber023/poust-microservicio/internal/core/media"
)

// multipartMemory is held in memory before spilling parts to temp files
const multipartMemory = 32 << 20

var errUploadTooLarge = errors.New("upload exceeds the allowed size")

// parseMultipart reads form values and the uploaded files. Files may be sent
// as "files" or "files[]". The caller must call cleanup.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) (map[string]string, []media.File, func(), error) {
	maxBody := h.limits.MaxFileBytes*int64(h.limits.MaxFiles) + multipartMemory
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, func() {}, errUploadTooLarge
		}
		return nil, nil, func() {}, fmt.Errorf("invalid multipart body: %w", err)
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	values := make(map[string]string, len(r.MultipartForm.Value))
	for key, v := range r.MultipartForm.Value {
		if len(v) > 0 {
			values[key] = v[0]
		}
	}

	var headers []*multipart.FileHeader
	headers = append(headers, r.MultipartForm.File["files"]...)
	headers = append(headers, r.MultipartForm.File["files[]"]...)
	if h.limits.MaxFiles > 0 && len(headers) > h.limits.MaxFiles {
		cleanup()
		return nil, nil, func() {}, fmt.Errorf("%w: at most %d files", media.ErrTooManyFiles, h.limits.MaxFiles)
	}

	files := make([]media.File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, fileFromHeader(fh))
	}
	return values, files, cleanup, nil
}

func fileFromHeader(fh *multipart.FileHeader) media.File {
	return media.File{
		Open:        func() (io.ReadCloser, error) { return fh.Open() },
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
}
