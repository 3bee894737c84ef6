package publications

import (
	"encoding/json"
	"time"
)

// PublicationView is the serialized form of a Publication.
// Only active comments are included.
type PublicationView struct {
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	ID              string           `json:"id"`
	AuthorID        string           `json:"authorId"`
	Text            string           `json:"text"`
	Type            PublicationType  `json:"type"`
	Status          Status           `json:"status"`
	Visibility      Visibility       `json:"visibility"`
	MediaItems      []*MediaItemView `json:"mediaItems"`
	Comments        []*CommentView   `json:"comments"`
	LikesCount      int              `json:"likesCount"`
	CommentsCount   int              `json:"commentsCount"`
	MediaItemsCount int              `json:"mediaItemsCount"`
	HasLiked        *bool            `json:"hasLiked,omitempty"`
}

// CommentView is the serialized form of a Comment
type CommentView struct {
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	ID              string         `json:"id"`
	AuthorID        string         `json:"authorId"`
	Text            string         `json:"text"`
	PublicationID   string         `json:"publicationId"`
	ParentCommentID *string        `json:"parentCommentId"`
	Status          CommentStatus  `json:"status"`
	Replies         []*CommentView `json:"replies,omitempty"`
	LikesCount      int            `json:"likesCount"`
	IsEdited        bool           `json:"isEdited"`
}

// MediaItemView is the serialized form of a MediaItem
type MediaItemView struct {
	CreatedAt     time.Time      `json:"createdAt"`
	Metadata      map[string]any `json:"metadata"`
	PublicID      *string        `json:"publicId"`
	ID            string         `json:"id"`
	PublicationID string         `json:"publicationId"`
	Type          MediaType      `json:"type"`
	URL           string         `json:"url"`
	Filename      string         `json:"filename"`
	Size          int64          `json:"size"`
	Order         int            `json:"order"`
}

// View builds the serialized form
func (p *Publication) View() *PublicationView {
	v := &PublicationView{
		ID:              p.id.String(),
		AuthorID:        p.authorID,
		Text:            p.text.Text(),
		Type:            p.pubType,
		Status:          p.status,
		Visibility:      p.visibility,
		CreatedAt:       p.createdAt,
		UpdatedAt:       p.updatedAt,
		LikesCount:      p.LikesCount(),
		CommentsCount:   p.CommentsCount(),
		MediaItemsCount: p.MediaItemsCount(),
		MediaItems:      make([]*MediaItemView, 0, len(p.mediaItems)),
		Comments:        make([]*CommentView, 0, len(p.comments)),
	}
	for _, m := range p.orderedMedia() {
		v.MediaItems = append(v.MediaItems, NewMediaItemView(m))
	}
	for _, c := range p.ActiveComments() {
		v.Comments = append(v.Comments, NewCommentView(c))
	}
	return v
}

// ViewFor builds the serialized form with the viewer's like state
func (p *Publication) ViewFor(viewerID string) *PublicationView {
	v := p.View()
	if viewerID != "" {
		liked := p.HasLikedBy(viewerID)
		v.HasLiked = &liked
	}
	return v
}

// MarshalJSON serializes the aggregate through View
func (p *Publication) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.View())
}

// NewCommentView converts a comment
func NewCommentView(c *Comment) *CommentView {
	v := &CommentView{
		ID:            c.id,
		AuthorID:      c.authorID,
		Text:          c.text,
		PublicationID: c.publicationID,
		Status:        c.status,
		LikesCount:    c.likesCount,
		IsEdited:      c.isEdited,
		CreatedAt:     c.createdAt,
		UpdatedAt:     c.updatedAt,
	}
	if c.parentCommentID != "" {
		parent := c.parentCommentID
		v.ParentCommentID = &parent
	}
	return v
}

// NewMediaItemView converts a media item
func NewMediaItemView(m *MediaItem) *MediaItemView {
	v := &MediaItemView{
		ID:            m.id,
		PublicationID: m.publicationID,
		Type:          m.mediaType,
		URL:           m.url,
		Filename:      m.filename,
		Size:          m.size,
		Order:         m.order,
		CreatedAt:     m.createdAt,
		Metadata:      m.Metadata(),
	}
	if m.publicID != "" {
		publicID := m.publicID
		v.PublicID = &publicID
	}
	return v
}

// NestComments arranges flat comment views into reply trees. Replies whose
// parent is not in the list are dropped, matching the active-only listing.
func NestComments(flat []*CommentView) []*CommentView {
	byID := make(map[string]*CommentView, len(flat))
	for _, c := range flat {
		cp := *c
		cp.Replies = nil
		byID[c.ID] = &cp
	}

	roots := make([]*CommentView, 0)
	for _, c := range flat {
		node := byID[c.ID]
		if c.ParentCommentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := byID[*c.ParentCommentID]; ok {
			parent.Replies = append(parent.Replies, node)
		}
	}
	return roots
}
