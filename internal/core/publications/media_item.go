package publications

import (
	"math"
	"strings"
	"time"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

// MediaType is the kind of an attached file
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// ParseMediaType accepts "image" or "video"
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(s) {
	case MediaImage, MediaVideo:
		return MediaType(s), nil
	default:
		return "", errs.Detail(ErrInvalidMediaType, "%q", s)
	}
}

// Metadata keys written by SetDimensions and SetDuration
const (
	MetaWidth    = "width"
	MetaHeight   = "height"
	MetaDuration = "duration"
	MetaFormat   = "format"
)

// MediaItem is a file attached to one Publication
type MediaItem struct {
	createdAt     time.Time
	metadata      map[string]any
	id            string
	publicationID string
	url           string
	filename      string
	publicID      string
	mediaType     MediaType
	size          int64
	order         int
}

// NewMediaItem validates and creates a media item
func NewMediaItem(id, publicationID string, mediaType MediaType, url, filename string, size int64, order int, now time.Time) (*MediaItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errs.Detail(ErrInvalidMediaItem, "id is required")
	}
	if strings.TrimSpace(publicationID) == "" {
		return nil, errs.Detail(ErrInvalidMediaItem, "publication id is required")
	}
	if _, err := ParseMediaType(string(mediaType)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(url) == "" {
		return nil, errs.Detail(ErrInvalidMediaItem, "url is required")
	}
	if strings.TrimSpace(filename) == "" {
		return nil, errs.Detail(ErrInvalidMediaItem, "filename is required")
	}
	if size <= 0 {
		return nil, errs.Detail(ErrInvalidMediaItem, "size must be greater than 0")
	}
	if order < 0 {
		return nil, errs.Detail(ErrInvalidMediaItem, "order must be >= 0")
	}

	return &MediaItem{
		id:            id,
		publicationID: publicationID,
		mediaType:     mediaType,
		url:           url,
		filename:      filename,
		size:          size,
		order:         order,
		createdAt:     now,
		metadata:      map[string]any{},
	}, nil
}

func (m *MediaItem) ID() string            { return m.id }
func (m *MediaItem) PublicationID() string { return m.publicationID }
func (m *MediaItem) Type() MediaType       { return m.mediaType }
func (m *MediaItem) URL() string           { return m.url }
func (m *MediaItem) Filename() string      { return m.filename }
func (m *MediaItem) Size() int64           { return m.size }
func (m *MediaItem) Order() int            { return m.order }
func (m *MediaItem) CreatedAt() time.Time  { return m.createdAt }
func (m *MediaItem) PublicID() string      { return m.publicID }
func (m *MediaItem) IsImage() bool         { return m.mediaType == MediaImage }
func (m *MediaItem) IsVideo() bool         { return m.mediaType == MediaVideo }

// Metadata returns a copy of the metadata map
func (m *MediaItem) Metadata() map[string]any {
	return copyMetadata(m.metadata)
}

// SetStorageData records the remote object id and merges metadata over the current values
func (m *MediaItem) SetStorageData(publicID string, metadata map[string]any) error {
	if strings.TrimSpace(publicID) == "" {
		return ErrPublicIDRequired
	}
	m.publicID = publicID
	for k, v := range metadata {
		m.metadata[k] = v
	}
	return nil
}

// UpdateOrder moves the item within the publication
func (m *MediaItem) UpdateOrder(order int) error {
	if order < 0 {
		return errs.Detail(ErrInvalidMediaItem, "order must be >= 0")
	}
	m.order = order
	return nil
}

// SetDimensions is only valid for images
func (m *MediaItem) SetDimensions(width, height int) error {
	if !m.IsImage() {
		return errs.Detail(ErrMediaTypeMismatch, "only images have dimensions")
	}
	m.metadata[MetaWidth] = width
	m.metadata[MetaHeight] = height
	return nil
}

// SetDuration is only valid for videos
func (m *MediaItem) SetDuration(seconds float64) error {
	if !m.IsVideo() {
		return errs.Detail(ErrMediaTypeMismatch, "only videos have a duration")
	}
	m.metadata[MetaDuration] = seconds
	return nil
}

// SizeInMB returns the size in mebibytes rounded to two decimals
func (m *MediaItem) SizeInMB() float64 {
	return math.Round(float64(m.size)/(1024*1024)*100) / 100
}

func (m *MediaItem) Equals(other *MediaItem) bool {
	return other != nil && m.id == other.id
}

func (m *MediaItem) clone() *MediaItem {
	cp := *m
	cp.metadata = copyMetadata(m.metadata)
	return &cp
}

func copyMetadata(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
