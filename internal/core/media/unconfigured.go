package media

import (
	"context"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

// Unconfigured is the backend used when no storage is set up.
// Every call fails with an unimplemented-capability error.
type Unconfigured struct{}

var _ Uploader = Unconfigured{}

func (Unconfigured) Upload(context.Context, File, UploadOptions) (*UploadResult, error) {
	return nil, errs.Unimplemented("media upload")
}

func (Unconfigured) Delete(context.Context, string, ResourceType) (*DeleteResult, error) {
	return nil, errs.Unimplemented("media delete")
}
