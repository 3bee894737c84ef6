package publications

import (
	"time"

	"github.com/wilber023/poust-microservicio/internal/core/media"
	"github.com/wilber023/poust-microservicio/internal/core/paging"
)

// PublicationSummary is the list projection of a publication. Comments are
// represented by their count only.
type PublicationSummary struct {
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	ID            string           `json:"id"`
	AuthorID      string           `json:"authorId"`
	Text          string           `json:"text"`
	Type          PublicationType  `json:"type"`
	Status        Status           `json:"status"`
	Visibility    Visibility       `json:"visibility"`
	MediaItems    []*MediaItemView `json:"mediaItems"`
	LikesCount    int              `json:"likesCount"`
	CommentsCount int              `json:"commentsCount"`
}

// PublicationPage is a page of summaries
type PublicationPage struct {
	Publications []*PublicationSummary `json:"publications"`
	Pagination   paging.Info           `json:"pagination"`
}

// CommentPage is a page of comments
type CommentPage struct {
	Comments   []*CommentView `json:"comments"`
	Pagination paging.Info    `json:"pagination"`
}

// LikeView is one like on a publication
type LikeView struct {
	CreatedAt time.Time `json:"createdAt"`
	UserID    string    `json:"userId"`
}

// LikePage is a page of likes, newest first
type LikePage struct {
	Likes      []*LikeView `json:"likes"`
	Pagination paging.Info `json:"pagination"`
}

// PublicationStats summarizes engagement on one publication
type PublicationStats struct {
	LastCommentAt   *time.Time `json:"lastCommentAt,omitempty"`
	PublicationID   string     `json:"publicationId"`
	LikesCount      int        `json:"likesCount"`
	CommentsCount   int        `json:"commentsCount"`
	RepliesCount    int        `json:"repliesCount"`
	MediaItemsCount int        `json:"mediaItemsCount"`
}

// AuthorStats summarizes an author's publications
type AuthorStats struct {
	LastPublishedAt   *time.Time `json:"lastPublishedAt,omitempty"`
	AuthorID          string     `json:"authorId"`
	PublicationsCount int        `json:"publicationsCount"`
	TotalLikes        int        `json:"totalLikes"`
	TotalComments     int        `json:"totalComments"`
	MediaItemsCount   int        `json:"mediaItemsCount"`
}

// VisibilityAll disables the visibility filter in ListFilter
const VisibilityAll = "all"

// ListFilter narrows List. Only published publications are listed.
type ListFilter struct {
	AuthorID   string
	Visibility string // empty means public, VisibilityAll means any
}

// SearchCriteria narrows Search. Query matches text case-insensitively.
type SearchCriteria struct {
	From     *time.Time
	To       *time.Time
	Query    string
	AuthorID string
	Type     PublicationType
}

// CreatePublicationRequest is the input for CreatePublication
type CreatePublicationRequest struct {
	AuthorID   string       `json:"-"`
	Text       string       `json:"text"`
	Visibility string       `json:"visibility,omitempty"`
	Files      []media.File `json:"-"`
}

// UpdatePublicationRequest changes text and/or visibility. Nil fields are left alone.
type UpdatePublicationRequest struct {
	Text          *string `json:"text,omitempty"`
	Visibility    *string `json:"visibility,omitempty"`
	PublicationID string  `json:"-"`
	UserID        string  `json:"-"`
}

// ListPublicationsRequest is the input for ListPublications
type ListPublicationsRequest struct {
	AuthorID   string
	Visibility string
	ViewerID   string
	Page       paging.Request
}

// SearchRequest is the input for SearchPublications
type SearchRequest struct {
	Criteria SearchCriteria
	Page     paging.Request
}

// AddCommentRequest is the input for AddComment
type AddCommentRequest struct {
	PublicationID   string `json:"-"`
	AuthorID        string `json:"-"`
	Text            string `json:"text"`
	ParentCommentID string `json:"parentCommentId,omitempty"`
}

// EditCommentRequest is the input for EditComment
type EditCommentRequest struct {
	PublicationID string `json:"-"`
	CommentID     string `json:"-"`
	UserID        string `json:"-"`
	Text          string `json:"text"`
}

// GetCommentsRequest is the input for GetComments
type GetCommentsRequest struct {
	PublicationID string
	ViewerID      string // empty for anonymous readers
	ParentID      string // non-empty lists replies to this comment
	Page          paging.Request
	Hierarchical  bool
}

// CommentsResponse is the output of GetComments
type CommentsResponse struct {
	PublicationID string         `json:"publicationId"`
	Comments      []*CommentView `json:"comments"`
	Pagination    paging.Info    `json:"pagination"`
	CommentsCount int            `json:"commentsCount"`
}

// AddMediaRequest attaches uploaded files to an existing publication
type AddMediaRequest struct {
	PublicationID string
	UserID        string
	Files         []media.File
}

// LikeResult is the output of LikePublication and UnlikePublication
type LikeResult struct {
	Event         Event  `json:"event"`
	PublicationID string `json:"publicationId"`
	LikesCount    int    `json:"likesCount"`
	HasLiked      bool   `json:"hasLiked"`
}

// CommentResult is the output of comment mutations
type CommentResult struct {
	Event         Event        `json:"event"`
	Comment       *CommentView `json:"comment"`
	CommentsCount int          `json:"commentsCount"`
}
