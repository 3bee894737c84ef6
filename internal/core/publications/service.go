package publications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/media"
	"github.com/wilber023/poust-microservicio/internal/core/paging"
)

type publicationService struct {
	repo    Repository
	queries QueryRepository
	media   MediaStore
	friends FriendLookup
	logger  *slog.Logger
	opts    []Option
}

// NewPublicationService creates a new publication service.
// friends can be nil, in which case friends-only publications are visible to their author only.
func NewPublicationService(
	repo Repository,
	queries QueryRepository,
	mediaStore MediaStore,
	friends FriendLookup, // Optional: can be nil
	logger *slog.Logger,
	opts ...Option,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &publicationService{
		repo:    repo,
		queries: queries,
		media:   mediaStore,
		friends: friends,
		logger:  logger,
		opts:    opts,
	}
}

// CreatePublication creates a publication with optional media
// Flow:
// 1. Validate text/file presence and file count
// 2. Build the aggregate (moderation runs here)
// 3. Upload files in parallel to publications/{id}
// 4. Attach one media item per upload
// 5. Save; on failure remove the uploaded objects
func (s *publicationService) CreatePublication(ctx context.Context, req CreatePublicationRequest) (*PublicationView, error) {
	if strings.TrimSpace(req.AuthorID) == "" {
		return nil, ErrAuthorRequired
	}
	if strings.TrimSpace(req.Text) == "" && len(req.Files) == 0 {
		return nil, ErrEmptyPublication
	}
	if limit := s.maxFiles(); len(req.Files) > limit {
		return nil, fmt.Errorf("%w: at most %d files per publication", ErrTooManyFiles, limit)
	}

	p, err := NewPublication(NewPublicationID().String(), req.AuthorID, req.Text, s.opts...)
	if err != nil {
		return nil, err
	}
	if req.Visibility != "" {
		if err := p.ChangeVisibility(req.Visibility); err != nil {
			return nil, err
		}
	}

	uploads, err := s.attachUploads(ctx, p, req.Files)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		s.discardUploads(ctx, uploads)
		return nil, err
	}

	s.logger.Info("publication created",
		"publication_id", p.ID().String(),
		"author_id", p.AuthorID(),
		"type", p.Type(),
		"media_items", p.MediaItemsCount())
	return p.ViewFor(req.AuthorID), nil
}

// GetPublication returns a publication the viewer is allowed to see
func (s *publicationService) GetPublication(ctx context.Context, id, viewerID string) (*PublicationView, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureVisible(ctx, p, viewerID); err != nil {
		return nil, err
	}
	return p.ViewFor(viewerID), nil
}

// ListPublications lists published publications. Non-public listings are
// restricted to the viewer's own publications; an owner asking for
// VisibilityAll also gets drafts and archived publications.
func (s *publicationService) ListPublications(ctx context.Context, req ListPublicationsRequest) (*PublicationPage, error) {
	visibility := req.Visibility
	switch visibility {
	case "", string(VisibilityPublic):
		visibility = string(VisibilityPublic)
	case VisibilityAll:
	default:
		if _, err := ParseVisibility(visibility); err != nil {
			return nil, err
		}
	}
	if visibility != string(VisibilityPublic) && (req.AuthorID == "" || req.AuthorID != req.ViewerID) {
		return nil, ErrNotVisible
	}
	if visibility == VisibilityAll {
		return s.queries.FindByAuthor(ctx, req.AuthorID, req.Page.Normalize())
	}

	return s.queries.List(ctx, ListFilter{AuthorID: req.AuthorID, Visibility: visibility}, req.Page.Normalize())
}

// SearchPublications matches public publication text case-insensitively
func (s *publicationService) SearchPublications(ctx context.Context, req SearchRequest) (*PublicationPage, error) {
	req.Criteria.Query = strings.TrimSpace(req.Criteria.Query)
	if req.Criteria.Type != "" {
		if _, err := ParsePublicationType(string(req.Criteria.Type)); err != nil {
			return nil, err
		}
	}
	return s.queries.Search(ctx, req.Criteria, req.Page.Normalize())
}

// UpdatePublication changes text and/or visibility
func (s *publicationService) UpdatePublication(ctx context.Context, req UpdatePublicationRequest) (*PublicationView, error) {
	p, err := s.loadOwned(ctx, req.PublicationID, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Text != nil {
		if err := p.UpdateText(*req.Text); err != nil {
			return nil, err
		}
	}
	if req.Visibility != nil {
		if err := p.ChangeVisibility(*req.Visibility); err != nil {
			return nil, err
		}
	}
	if p.Text().IsEmpty() && !p.HasMedia() {
		return nil, ErrEmptyPublication
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("publication updated", "publication_id", p.ID().String(), "user_id", req.UserID)
	return p.ViewFor(req.UserID), nil
}

// ArchivePublication moves a published publication to archived
func (s *publicationService) ArchivePublication(ctx context.Context, id, userID string) (*PublicationView, error) {
	p, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := p.Archive(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("publication archived", "publication_id", p.ID().String(), "user_id", userID)
	return p.ViewFor(userID), nil
}

// DeletePublication removes the publication and, best effort, its stored media
func (s *publicationService) DeletePublication(ctx context.Context, id, userID string) error {
	p, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, p.ID()); err != nil {
		return err
	}
	for _, item := range p.MediaItems() {
		s.deleteRemote(ctx, item)
	}

	s.logger.Info("publication deleted", "publication_id", p.ID().String(), "user_id", userID)
	return nil
}

// LikePublication records a like by userID
func (s *publicationService) LikePublication(ctx context.Context, id, userID string) (*LikeResult, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureVisible(ctx, p, userID); err != nil {
		return nil, err
	}

	ev, err := p.Like(userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logEvent(ev)

	return &LikeResult{Event: ev, PublicationID: id, LikesCount: p.LikesCount(), HasLiked: true}, nil
}

// UnlikePublication removes userID's like
func (s *publicationService) UnlikePublication(ctx context.Context, id, userID string) (*LikeResult, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	ev, err := p.Unlike(userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logEvent(ev)

	return &LikeResult{Event: ev, PublicationID: id, LikesCount: p.LikesCount(), HasLiked: false}, nil
}

// GetLikes lists likes on a publication the viewer can see
func (s *publicationService) GetLikes(ctx context.Context, id, viewerID string, page paging.Request) (*LikePage, error) {
	p, err := s.loadVisible(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	return s.queries.GetLikes(ctx, p.ID(), page.Normalize())
}

func (s *publicationService) GetLikedByUser(ctx context.Context, userID string, page paging.Request) (*PublicationPage, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserRequired
	}
	return s.queries.GetLikedByUser(ctx, userID, page.Normalize())
}

// HasUserLiked reports whether userID likes the publication
func (s *publicationService) HasUserLiked(ctx context.Context, id, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, ErrUserRequired
	}
	pubID, err := ParsePublicationID(id)
	if err != nil {
		return false, err
	}
	if err := s.ensureExists(ctx, pubID); err != nil {
		return false, err
	}
	return s.queries.HasUserLiked(ctx, pubID, userID)
}

// AddComment adds a comment or reply
func (s *publicationService) AddComment(ctx context.Context, req AddCommentRequest) (*CommentResult, error) {
	p, err := s.load(ctx, req.PublicationID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureVisible(ctx, p, req.AuthorID); err != nil {
		return nil, err
	}

	ev, err := p.AddComment(req.AuthorID, req.Text, req.ParentCommentID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logEvent(ev)

	return s.commentResult(p, ev, ev.CommentID), nil
}

// EditComment replaces the text of the caller's comment
func (s *publicationService) EditComment(ctx context.Context, req EditCommentRequest) (*CommentResult, error) {
	p, err := s.load(ctx, req.PublicationID)
	if err != nil {
		return nil, err
	}

	ev, err := p.EditComment(req.CommentID, req.UserID, req.Text)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logEvent(ev)

	return s.commentResult(p, ev, ev.CommentID), nil
}

// DeleteComment soft-deletes a comment
func (s *publicationService) DeleteComment(ctx context.Context, id, commentID, userID string) (*CommentResult, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	ev, err := p.DeleteComment(commentID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logEvent(ev)

	return s.commentResult(p, ev, ev.CommentID), nil
}

// HideComment hides a comment on the caller's publication
func (s *publicationService) HideComment(ctx context.Context, id, commentID, userID string) (*CommentResult, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	ev, err := p.HideComment(commentID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logEvent(ev)

	return s.commentResult(p, ev, ev.CommentID), nil
}

// GetComments lists active comments. Hierarchical mode nests replies and
// paginates over top level comments.
func (s *publicationService) GetComments(ctx context.Context, req GetCommentsRequest) (*CommentsResponse, error) {
	page := req.Page.Normalize()

	p, err := s.loadVisible(ctx, req.PublicationID, req.ViewerID)
	if err != nil {
		return nil, err
	}

	if req.Hierarchical && req.ParentID == "" {
		active := p.ActiveComments()
		flat := make([]*CommentView, 0, len(active))
		for _, c := range active {
			flat = append(flat, NewCommentView(c))
		}
		roots := NestComments(flat)
		return &CommentsResponse{
			PublicationID: req.PublicationID,
			Comments:      paging.Slice(roots, page),
			Pagination:    paging.NewInfo(page, len(roots)),
			CommentsCount: p.CommentsCount(),
		}, nil
	}

	var result *CommentPage
	if req.ParentID != "" {
		result, err = s.queries.GetCommentReplies(ctx, p.ID(), req.ParentID, page)
	} else {
		result, err = s.queries.GetComments(ctx, p.ID(), page)
	}
	if err != nil {
		return nil, err
	}

	return &CommentsResponse{
		PublicationID: req.PublicationID,
		Comments:      result.Comments,
		Pagination:    result.Pagination,
		CommentsCount: p.CommentsCount(),
	}, nil
}

// AddMedia uploads files and appends them to the publication
func (s *publicationService) AddMedia(ctx context.Context, req AddMediaRequest) (*PublicationView, error) {
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("%w: at least one file is required", ErrInvalidMediaItem)
	}
	p, err := s.loadOwned(ctx, req.PublicationID, req.UserID)
	if err != nil {
		return nil, err
	}
	if limit := s.maxFiles(); p.MediaItemsCount()+len(req.Files) > limit {
		return nil, fmt.Errorf("%w: at most %d files per publication", ErrTooManyFiles, limit)
	}

	uploads, err := s.attachUploads(ctx, p, req.Files)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		s.discardUploads(ctx, uploads)
		return nil, err
	}

	s.logger.Info("publication media added",
		"publication_id", p.ID().String(),
		"user_id", req.UserID,
		"count", len(uploads))
	return p.ViewFor(req.UserID), nil
}

// RemoveMedia detaches a media item and deletes its stored object
func (s *publicationService) RemoveMedia(ctx context.Context, id, mediaItemID, userID string) (*PublicationView, error) {
	p, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	item, ok := p.MediaItem(mediaItemID)
	if !ok {
		return nil, ErrMediaItemNotFound
	}

	ev, err := p.RemoveMediaItem(mediaItemID)
	if err != nil {
		return nil, err
	}
	if p.Text().IsEmpty() && !p.HasMedia() {
		return nil, ErrEmptyPublication
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logEvent(ev)
	s.deleteRemote(ctx, item)

	return p.ViewFor(userID), nil
}

func (s *publicationService) GetPublicationStats(ctx context.Context, id, viewerID string) (*PublicationStats, error) {
	p, err := s.loadVisible(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	return s.queries.GetPublicationStats(ctx, p.ID())
}

func (s *publicationService) GetAuthorStats(ctx context.Context, authorID string) (*AuthorStats, error) {
	if strings.TrimSpace(authorID) == "" {
		return nil, ErrAuthorRequired
	}
	return s.queries.GetAuthorStats(ctx, authorID)
}

func (s *publicationService) load(ctx context.Context, id string) (*Publication, error) {
	pubID, err := ParsePublicationID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, pubID)
	if err != nil {
		return nil, err
	}
	p.Configure(s.opts...)
	return p, nil
}

// loadVisible loads the publication and fails with ErrNotVisible when
// viewerID may not see it
func (s *publicationService) loadVisible(ctx context.Context, id, viewerID string) (*Publication, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureVisible(ctx, p, viewerID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *publicationService) loadOwned(ctx context.Context, id, userID string) (*Publication, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserRequired
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(userID) {
		return nil, ErrNotAuthorized
	}
	return p, nil
}

func (s *publicationService) ensureExists(ctx context.Context, id PublicationID) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrPublicationNotFound
	}
	return nil
}

func (s *publicationService) ensureVisible(ctx context.Context, p *Publication, viewerID string) error {
	isFriend := false
	if p.Visibility() == VisibilityFriends && viewerID != "" && viewerID != p.AuthorID() && s.friends != nil {
		var err error
		isFriend, err = s.friends.IsFriend(ctx, p.AuthorID(), viewerID)
		if err != nil {
			return fmt.Errorf("failed to check friendship: %w", err)
		}
	}
	if !p.CanBeViewedBy(viewerID, isFriend) {
		return ErrNotVisible
	}
	return nil
}

// attachUploads uploads files and adds a media item per result, in request order
func (s *publicationService) attachUploads(ctx context.Context, p *Publication, files []media.File) ([]*media.UploadResult, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if s.media == nil {
		return nil, errs.Unimplemented("media upload")
	}

	uploads, err := s.media.UploadAll(ctx, files, media.UploadOptions{Folder: "publications/" + p.ID().String()})
	if err != nil {
		return nil, err
	}

	for _, up := range uploads {
		if err := attachUpload(p, up); err != nil {
			s.discardUploads(ctx, uploads)
			return nil, err
		}
	}
	return uploads, nil
}

func attachUpload(p *Publication, up *media.UploadResult) error {
	mediaType, err := ParseMediaType(string(up.ResourceType))
	if err != nil {
		return err
	}
	url := up.SecureURL
	if url == "" {
		url = up.URL
	}

	ev, err := p.AddMediaItem(mediaType, url, up.Filename, up.Bytes, nil)
	if err != nil {
		return err
	}

	metadata := map[string]any{}
	if up.Format != "" {
		metadata[MetaFormat] = up.Format
	}
	return p.AttachStorageData(ev.MediaItemID, up.PublicID, metadata, up.Width, up.Height, up.Duration)
}

func (s *publicationService) discardUploads(ctx context.Context, uploads []*media.UploadResult) {
	for _, up := range uploads {
		if _, err := s.media.Delete(ctx, up.PublicID, up.ResourceType); err != nil {
			s.logger.Warn("failed to remove orphaned upload", "public_id", up.PublicID, "error", err)
		}
	}
}

func (s *publicationService) deleteRemote(ctx context.Context, item *MediaItem) {
	if s.media == nil || item.PublicID() == "" {
		return
	}
	if _, err := s.media.Delete(ctx, item.PublicID(), media.ResourceType(item.Type())); err != nil {
		s.logger.Warn("failed to delete stored media",
			"media_item_id", item.ID(),
			"public_id", item.PublicID(),
			"error", err)
	}
}

func (s *publicationService) maxFiles() int {
	if s.media == nil {
		return media.DefaultMaxFiles
	}
	if limit := s.media.Limits().MaxFiles; limit > 0 {
		return limit
	}
	return media.DefaultMaxFiles
}

func (s *publicationService) commentResult(p *Publication, ev Event, commentID string) *CommentResult {
	result := &CommentResult{Event: ev, CommentsCount: p.CommentsCount()}
	if c, ok := p.Comment(commentID); ok {
		result.Comment = NewCommentView(c)
	}
	return result
}

// logEvent records a domain event as an audit line
func (s *publicationService) logEvent(ev Event) {
	attrs := []any{
		"event_type", ev.EventType(),
		"publication_id", ev.AggregateID(),
		"occurred_at", ev.OccurredAt(),
	}
	switch e := ev.(type) {
	case CommentAdded:
		attrs = append(attrs, "comment_id", e.CommentID, "user_id", e.AuthorID)
	case CommentEdited:
		attrs = append(attrs, "comment_id", e.CommentID, "user_id", e.EditedBy)
	case CommentDeleted:
		attrs = append(attrs, "comment_id", e.CommentID, "user_id", e.DeletedBy)
	case CommentHidden:
		attrs = append(attrs, "comment_id", e.CommentID, "user_id", e.HiddenBy)
	case PublicationLiked:
		attrs = append(attrs, "user_id", e.UserID)
	case PublicationUnliked:
		attrs = append(attrs, "user_id", e.UserID)
	case MediaItemAdded:
		attrs = append(attrs, "media_item_id", e.MediaItemID)
	case MediaItemRemoved:
		attrs = append(attrs, "media_item_id", e.MediaItemID)
	}
	s.logger.Info("publication event", attrs...)
}
