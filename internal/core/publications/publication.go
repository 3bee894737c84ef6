package publications

import (
	"sort"
	"strings"
	"time"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/moderation"
)

// PublicationType is derived from the text and media present
type PublicationType string

const (
	TypeText      PublicationType = "text"
	TypeImage     PublicationType = "image"
	TypeVideo     PublicationType = "video"
	TypeTextImage PublicationType = "text_image"
)

// ParsePublicationType accepts text, image, video or text_image
func ParsePublicationType(s string) (PublicationType, error) {
	switch PublicationType(s) {
	case TypeText, TypeImage, TypeVideo, TypeTextImage:
		return PublicationType(s), nil
	default:
		return "", errs.Detail(ErrInvalidType, "%q", s)
	}
}

// Status is the publishing lifecycle
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// ParseStatus accepts draft, published or archived
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusPublished, StatusArchived:
		return Status(s), nil
	default:
		return "", errs.Detail(ErrInvalidStatus, "%q", s)
	}
}

// Visibility controls who may read a publication
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
	VisibilityFriends Visibility = "friends"
)

// ParseVisibility accepts public, private or friends
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityPrivate, VisibilityFriends:
		return Visibility(s), nil
	default:
		return "", errs.Detail(ErrInvalidVisibility, "got %q", s)
	}
}

// Option configures a Publication at construction or restore time
type Option func(*Publication)

// WithModerationPolicy replaces the default content denylist
func WithModerationPolicy(policy moderation.Policy) Option {
	return func(p *Publication) {
		if policy != nil {
			p.policy = policy
		}
	}
}

// WithClock replaces time.Now for timestamps
func WithClock(clock func() time.Time) Option {
	return func(p *Publication) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// Publication is the aggregate root for a post, its comments, media and likes.
// It is not safe for concurrent use; each request loads its own instance.
type Publication struct {
	createdAt  time.Time
	updatedAt  time.Time
	policy     moderation.Policy
	clock      func() time.Time
	mediaItems map[string]*MediaItem
	comments   map[string]*Comment
	likes      map[string]struct{}
	id         PublicationID
	authorID   string
	text       Content
	pubType    PublicationType
	status     Status
	visibility Visibility
	version    int64
}

func newEmptyPublication(opts []Option) *Publication {
	p := &Publication{
		policy:     moderation.DefaultContentPolicy(),
		clock:      time.Now,
		mediaItems: make(map[string]*MediaItem),
		comments:   make(map[string]*Comment),
		likes:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewPublication creates a published, public publication
func NewPublication(id, authorID, text string, opts ...Option) (*Publication, error) {
	pubID, err := ParsePublicationID(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(authorID) == "" {
		return nil, ErrAuthorRequired
	}

	p := newEmptyPublication(opts)
	content, err := NewContent(text, p.policy)
	if err != nil {
		return nil, err
	}

	now := p.now()
	p.id = pubID
	p.authorID = authorID
	p.text = content
	p.status = StatusPublished
	p.visibility = VisibilityPublic
	p.createdAt = now
	p.updatedAt = now
	p.updateType()
	return p, nil
}

// Configure applies options to a loaded aggregate, e.g. after RestorePublication
func (p *Publication) Configure(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *Publication) now() time.Time {
	return p.clock().UTC()
}

func (p *Publication) touch() time.Time {
	p.updatedAt = p.now()
	return p.updatedAt
}

func (p *Publication) ID() PublicationID            { return p.id }
func (p *Publication) AuthorID() string             { return p.authorID }
func (p *Publication) Text() Content                { return p.text }
func (p *Publication) Type() PublicationType        { return p.pubType }
func (p *Publication) Status() Status               { return p.status }
func (p *Publication) Visibility() Visibility       { return p.visibility }
func (p *Publication) CreatedAt() time.Time         { return p.createdAt }
func (p *Publication) UpdatedAt() time.Time         { return p.updatedAt }
func (p *Publication) LikesCount() int              { return len(p.likes) }
func (p *Publication) MediaItemsCount() int         { return len(p.mediaItems) }
func (p *Publication) HasMedia() bool               { return len(p.mediaItems) > 0 }
func (p *Publication) IsOwnedBy(userID string) bool { return p.authorID == userID }

// Version is the optimistic concurrency token loaded from storage. Zero means never saved.
func (p *Publication) Version() int64 {
	return p.version
}

// MarkSaved is called by repositories after a successful save
func (p *Publication) MarkSaved(version int64) {
	p.version = version
}

// CommentsCount counts active comments
func (p *Publication) CommentsCount() int {
	n := 0
	for _, c := range p.comments {
		if c.IsActive() {
			n++
		}
	}
	return n
}

// HasLikedBy reports whether userID likes the publication
func (p *Publication) HasLikedBy(userID string) bool {
	_, ok := p.likes[userID]
	return ok
}

// Likes returns the liking user ids, sorted
func (p *Publication) Likes() []string {
	out := make([]string, 0, len(p.likes))
	for userID := range p.likes {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out
}

// Comments returns copies of every comment, including soft-deleted ones,
// ordered by creation time.
func (p *Publication) Comments() []*Comment {
	return p.sortedComments(func(*Comment) bool { return true })
}

// ActiveComments returns copies of the active comments ordered by creation time
func (p *Publication) ActiveComments() []*Comment {
	return p.sortedComments((*Comment).IsActive)
}

// Replies returns the active replies to commentID
func (p *Publication) Replies(commentID string) []*Comment {
	return p.sortedComments(func(c *Comment) bool {
		return c.IsActive() && c.parentCommentID == commentID
	})
}

// Comment returns a copy of one comment
func (p *Publication) Comment(commentID string) (*Comment, bool) {
	c, ok := p.comments[commentID]
	if !ok {
		return nil, false
	}
	return c.clone(), true
}

func (p *Publication) sortedComments(keep func(*Comment) bool) []*Comment {
	out := make([]*Comment, 0, len(p.comments))
	for _, c := range p.comments {
		if keep(c) {
			out = append(out, c.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].createdAt.Equal(out[j].createdAt) {
			return out[i].createdAt.Before(out[j].createdAt)
		}
		return out[i].id < out[j].id
	})
	return out
}

// MediaItems returns copies of the media items ordered by their order field
func (p *Publication) MediaItems() []*MediaItem {
	items := p.orderedMedia()
	out := make([]*MediaItem, len(items))
	for i, m := range items {
		out[i] = m.clone()
	}
	return out
}

// MediaItem returns a copy of one media item
func (p *Publication) MediaItem(mediaItemID string) (*MediaItem, bool) {
	m, ok := p.mediaItems[mediaItemID]
	if !ok {
		return nil, false
	}
	return m.clone(), true
}

// orderedMedia sorts the live items by order, then creation time, then id
func (p *Publication) orderedMedia() []*MediaItem {
	items := make([]*MediaItem, 0, len(p.mediaItems))
	for _, m := range p.mediaItems {
		items = append(items, m)
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.order != b.order {
			return a.order < b.order
		}
		if !a.createdAt.Equal(b.createdAt) {
			return a.createdAt.Before(b.createdAt)
		}
		return a.id < b.id
	})
	return items
}

// CanBeViewedBy applies visibility rules. isFriend reports whether the author
// has the viewer in their friends set.
func (p *Publication) CanBeViewedBy(viewerID string, isFriend bool) bool {
	if viewerID != "" && viewerID == p.authorID {
		return true
	}
	switch p.visibility {
	case VisibilityPublic:
		return true
	case VisibilityFriends:
		return isFriend
	default:
		return false
	}
}

// AddComment adds a top level comment or, with parentCommentID set, a reply
func (p *Publication) AddComment(authorID, text, parentCommentID string) (CommentAdded, error) {
	if strings.TrimSpace(authorID) == "" {
		return CommentAdded{}, ErrAuthorRequired
	}

	now := p.now()
	comment, err := NewComment(newEntityID(), authorID, text, p.id.String(), parentCommentID, now)
	if err != nil {
		return CommentAdded{}, err
	}
	if parentCommentID != "" {
		if _, ok := p.comments[parentCommentID]; !ok {
			return CommentAdded{}, errs.Detail(ErrParentCommentNotFound, "%s", parentCommentID)
		}
	}

	p.comments[comment.id] = comment
	p.updatedAt = now

	return CommentAdded{
		Type:            EventCommentAdded,
		PublicationID:   p.id.String(),
		CommentID:       comment.id,
		AuthorID:        authorID,
		ParentCommentID: parentCommentID,
		Timestamp:       now,
	}, nil
}

// EditComment lets the comment author replace the text of an active comment
func (p *Publication) EditComment(commentID, userID, text string) (CommentEdited, error) {
	comment, ok := p.comments[commentID]
	if !ok {
		return CommentEdited{}, ErrCommentNotFound
	}
	if comment.authorID != userID {
		return CommentEdited{}, ErrNotAuthorized
	}
	if !comment.IsActive() {
		return CommentEdited{}, ErrCommentNotActive
	}

	now := p.now()
	if err := comment.UpdateText(text, now); err != nil {
		return CommentEdited{}, err
	}
	p.updatedAt = now

	return CommentEdited{
		Type:          EventCommentEdited,
		PublicationID: p.id.String(),
		CommentID:     commentID,
		EditedBy:      userID,
		Timestamp:     now,
	}, nil
}

// DeleteComment soft-deletes a comment. Only the comment author or the
// publication author may delete.
func (p *Publication) DeleteComment(commentID, userID string) (CommentDeleted, error) {
	comment, ok := p.comments[commentID]
	if !ok {
		return CommentDeleted{}, ErrCommentNotFound
	}
	if userID == "" || (comment.authorID != userID && p.authorID != userID) {
		return CommentDeleted{}, ErrCommentDeleteNotAuthorized
	}
	if comment.status == CommentStatusDeleted {
		return CommentDeleted{}, ErrCommentAlreadyDeleted
	}

	now := p.now()
	comment.MarkAsDeleted(now)
	p.updatedAt = now

	return CommentDeleted{
		Type:          EventCommentDeleted,
		PublicationID: p.id.String(),
		CommentID:     commentID,
		DeletedBy:     userID,
		Timestamp:     now,
	}, nil
}

// HideComment lets the publication author hide an active comment
func (p *Publication) HideComment(commentID, userID string) (CommentHidden, error) {
	comment, ok := p.comments[commentID]
	if !ok {
		return CommentHidden{}, ErrCommentNotFound
	}
	if p.authorID != userID {
		return CommentHidden{}, ErrNotAuthorized
	}
	if !comment.IsActive() {
		return CommentHidden{}, ErrCommentNotActive
	}

	now := p.now()
	comment.Hide(now)
	p.updatedAt = now

	return CommentHidden{
		Type:          EventCommentHidden,
		PublicationID: p.id.String(),
		CommentID:     commentID,
		HiddenBy:      userID,
		Timestamp:     now,
	}, nil
}

// Like records userID's like
func (p *Publication) Like(userID string) (PublicationLiked, error) {
	if strings.TrimSpace(userID) == "" {
		return PublicationLiked{}, ErrUserRequired
	}
	if userID == p.authorID {
		return PublicationLiked{}, ErrSelfLike
	}
	if p.HasLikedBy(userID) {
		return PublicationLiked{}, ErrAlreadyLiked
	}

	p.likes[userID] = struct{}{}
	now := p.touch()

	return PublicationLiked{
		Type:          EventPublicationLiked,
		PublicationID: p.id.String(),
		UserID:        userID,
		Timestamp:     now,
	}, nil
}

// Unlike removes userID's like
func (p *Publication) Unlike(userID string) (PublicationUnliked, error) {
	if !p.HasLikedBy(userID) {
		return PublicationUnliked{}, ErrNotLiked
	}

	delete(p.likes, userID)
	now := p.touch()

	return PublicationUnliked{
		Type:          EventPublicationUnliked,
		PublicationID: p.id.String(),
		UserID:        userID,
		Timestamp:     now,
	}, nil
}

// AddMediaItem attaches a file. A nil order appends after the current items.
func (p *Publication) AddMediaItem(mediaType MediaType, url, filename string, size int64, order *int) (MediaItemAdded, error) {
	itemOrder := len(p.mediaItems)
	if order != nil {
		itemOrder = *order
	}

	now := p.now()
	item, err := NewMediaItem(newEntityID(), p.id.String(), mediaType, url, filename, size, itemOrder, now)
	if err != nil {
		return MediaItemAdded{}, err
	}

	p.mediaItems[item.id] = item
	p.updateType()
	p.updatedAt = now

	return MediaItemAdded{
		Type:          EventMediaItemAdded,
		PublicationID: p.id.String(),
		MediaItemID:   item.id,
		MediaType:     mediaType,
		Timestamp:     now,
	}, nil
}

// AttachStorageData records the remote object id and metadata of a media item.
// width and height are recorded for images, durationSeconds for videos, when non-zero.
func (p *Publication) AttachStorageData(mediaItemID, publicID string, metadata map[string]any, width, height int, durationSeconds float64) error {
	item, ok := p.mediaItems[mediaItemID]
	if !ok {
		return ErrMediaItemNotFound
	}

	// Validate against a copy so a failure leaves the item untouched
	staged := item.clone()
	if err := staged.SetStorageData(publicID, metadata); err != nil {
		return err
	}
	if staged.IsImage() && width > 0 && height > 0 {
		if err := staged.SetDimensions(width, height); err != nil {
			return err
		}
	}
	if staged.IsVideo() && durationSeconds > 0 {
		if err := staged.SetDuration(durationSeconds); err != nil {
			return err
		}
	}

	p.mediaItems[mediaItemID] = staged
	p.touch()
	return nil
}

// RemoveMediaItem detaches a file and renumbers the rest 0..n-1
func (p *Publication) RemoveMediaItem(mediaItemID string) (MediaItemRemoved, error) {
	if _, ok := p.mediaItems[mediaItemID]; !ok {
		return MediaItemRemoved{}, ErrMediaItemNotFound
	}

	delete(p.mediaItems, mediaItemID)
	for i, item := range p.orderedMedia() {
		item.order = i
	}
	p.updateType()
	now := p.touch()

	return MediaItemRemoved{
		Type:          EventMediaItemRemoved,
		PublicationID: p.id.String(),
		MediaItemID:   mediaItemID,
		Timestamp:     now,
	}, nil
}

// UpdateText replaces the publication text
func (p *Publication) UpdateText(text string) error {
	content, err := NewContent(text, p.policy)
	if err != nil {
		return err
	}
	p.text = content
	p.updateType()
	p.touch()
	return nil
}

// ChangeVisibility accepts public, private or friends
func (p *Publication) ChangeVisibility(visibility string) error {
	v, err := ParseVisibility(visibility)
	if err != nil {
		return err
	}
	p.visibility = v
	p.touch()
	return nil
}

// Publish moves a draft to published
func (p *Publication) Publish() error {
	if p.status != StatusDraft {
		return errs.Detail(ErrInvalidStatusTransition, "%s -> %s", p.status, StatusPublished)
	}
	p.status = StatusPublished
	p.touch()
	return nil
}

// Archive moves a published publication to archived
func (p *Publication) Archive() error {
	if p.status != StatusPublished {
		return errs.Detail(ErrInvalidStatusTransition, "%s -> %s", p.status, StatusArchived)
	}
	p.status = StatusArchived
	p.touch()
	return nil
}

// updateType derives the type: text_image when both text and media exist,
// else the first media item's type, else text.
func (p *Publication) updateType() {
	hasText := !p.text.IsEmpty()
	items := p.orderedMedia()

	switch {
	case hasText && len(items) > 0:
		p.pubType = TypeTextImage
	case len(items) > 0:
		p.pubType = PublicationType(items[0].mediaType)
	default:
		p.pubType = TypeText
	}
}
