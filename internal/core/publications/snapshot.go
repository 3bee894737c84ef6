package publications

import (
	"strings"
	"time"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

// Snapshot is the flat, storage facing form of a Publication.
// Repositories persist snapshots and rebuild aggregates with RestorePublication.
type Snapshot struct {
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ID         string
	AuthorID   string
	Text       string
	Type       PublicationType
	Status     Status
	Visibility Visibility
	MediaItems []MediaItemSnapshot
	Comments   []CommentSnapshot
	Likes      []string
	Version    int64
}

// CommentSnapshot is the storage form of a Comment
type CommentSnapshot struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ID              string
	AuthorID        string
	Text            string
	ParentCommentID string
	Status          CommentStatus
	LikesCount      int
	IsEdited        bool
}

// MediaItemSnapshot is the storage form of a MediaItem
type MediaItemSnapshot struct {
	CreatedAt time.Time
	Metadata  map[string]any
	ID        string
	Type      MediaType
	URL       string
	Filename  string
	PublicID  string
	Size      int64
	Order     int
}

// Snapshot captures the aggregate state. The result shares no memory with p.
func (p *Publication) Snapshot() Snapshot {
	s := Snapshot{
		ID:         p.id.String(),
		AuthorID:   p.authorID,
		Text:       p.text.Text(),
		Type:       p.pubType,
		Status:     p.status,
		Visibility: p.visibility,
		CreatedAt:  p.createdAt,
		UpdatedAt:  p.updatedAt,
		Likes:      p.Likes(),
		Version:    p.version,
	}
	for _, c := range p.Comments() {
		s.Comments = append(s.Comments, CommentSnapshot{
			ID:              c.id,
			AuthorID:        c.authorID,
			Text:            c.text,
			ParentCommentID: c.parentCommentID,
			Status:          c.status,
			LikesCount:      c.likesCount,
			IsEdited:        c.isEdited,
			CreatedAt:       c.createdAt,
			UpdatedAt:       c.updatedAt,
		})
	}
	for _, m := range p.MediaItems() {
		s.MediaItems = append(s.MediaItems, MediaItemSnapshot{
			ID:        m.id,
			Type:      m.mediaType,
			URL:       m.url,
			Filename:  m.filename,
			PublicID:  m.publicID,
			Size:      m.size,
			Order:     m.order,
			CreatedAt: m.createdAt,
			Metadata:  m.Metadata(),
		})
	}
	return s
}

// RestorePublication rebuilds an aggregate from stored state. Stored text is
// trusted and skips moderation; the type is re-derived rather than read.
func RestorePublication(s Snapshot, opts ...Option) (*Publication, error) {
	id, err := ParsePublicationID(s.ID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.AuthorID) == "" {
		return nil, ErrAuthorRequired
	}
	status, err := ParseStatus(string(s.Status))
	if err != nil {
		return nil, err
	}
	visibility, err := ParseVisibility(string(s.Visibility))
	if err != nil {
		return nil, err
	}

	p := newEmptyPublication(opts)
	p.id = id
	p.authorID = s.AuthorID
	p.text = restoreContent(s.Text)
	p.status = status
	p.visibility = visibility
	p.createdAt = s.CreatedAt
	p.updatedAt = s.UpdatedAt
	p.version = s.Version

	for _, userID := range s.Likes {
		p.likes[userID] = struct{}{}
	}

	for _, cs := range s.Comments {
		if !cs.Status.valid() {
			return nil, errs.Detail(ErrInvalidComment, "status %q", cs.Status)
		}
		p.comments[cs.ID] = &Comment{
			id:              cs.ID,
			authorID:        cs.AuthorID,
			text:            cs.Text,
			publicationID:   s.ID,
			parentCommentID: cs.ParentCommentID,
			status:          cs.Status,
			likesCount:      cs.LikesCount,
			isEdited:        cs.IsEdited,
			createdAt:       cs.CreatedAt,
			updatedAt:       cs.UpdatedAt,
		}
	}

	for _, ms := range s.MediaItems {
		item, err := NewMediaItem(ms.ID, s.ID, ms.Type, ms.URL, ms.Filename, ms.Size, ms.Order, ms.CreatedAt)
		if err != nil {
			return nil, err
		}
		item.publicID = ms.PublicID
		for k, v := range ms.Metadata {
			item.metadata[k] = v
		}
		p.mediaItems[item.id] = item
	}

	p.updateType()
	return p, nil
}
