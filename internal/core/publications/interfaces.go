package publications

import (
	"context"

	"github.com/wilber023/poust-microservicio/internal/core/media"
	"github.com/wilber023/poust-microservicio/internal/core/paging"
)

// Repository persists Publication aggregates
type Repository interface {
	// FindByID loads the full aggregate, including soft-deleted comments.
	// Returns ErrPublicationNotFound when absent.
	FindByID(ctx context.Context, id PublicationID) (*Publication, error)

	// Save upserts the root and reconciles comments, media items and likes
	// atomically. It fails with ErrConcurrentModification when the stored
	// version no longer matches p.Version(); on success p's version advances.
	Save(ctx context.Context, p *Publication) error

	Delete(ctx context.Context, id PublicationID) error
	Exists(ctx context.Context, id PublicationID) (bool, error)
}

// QueryRepository serves read models built from denormalized projections
type QueryRepository interface {
	List(ctx context.Context, filter ListFilter, page paging.Request) (*PublicationPage, error)
	// FindByAuthor lists every publication of the author, in any status or visibility
	FindByAuthor(ctx context.Context, authorID string, page paging.Request) (*PublicationPage, error)
	Search(ctx context.Context, criteria SearchCriteria, page paging.Request) (*PublicationPage, error)
	GetLikedByUser(ctx context.Context, userID string, page paging.Request) (*PublicationPage, error)

	// GetComments returns the active comments of a publication, oldest first
	GetComments(ctx context.Context, id PublicationID, page paging.Request) (*CommentPage, error)
	GetCommentReplies(ctx context.Context, id PublicationID, commentID string, page paging.Request) (*CommentPage, error)

	GetLikes(ctx context.Context, id PublicationID, page paging.Request) (*LikePage, error)
	HasUserLiked(ctx context.Context, id PublicationID, userID string) (bool, error)
	GetPublicationStats(ctx context.Context, id PublicationID) (*PublicationStats, error)
	GetAuthorStats(ctx context.Context, authorID string) (*AuthorStats, error)
}

// FriendLookup reports whether ownerID has friendID in their friends set
type FriendLookup interface {
	IsFriend(ctx context.Context, ownerID, friendID string) (bool, error)
}

// Service defines publication use cases
type Service interface {
	CreatePublication(ctx context.Context, req CreatePublicationRequest) (*PublicationView, error)
	GetPublication(ctx context.Context, id, viewerID string) (*PublicationView, error)
	ListPublications(ctx context.Context, req ListPublicationsRequest) (*PublicationPage, error)
	SearchPublications(ctx context.Context, req SearchRequest) (*PublicationPage, error)
	UpdatePublication(ctx context.Context, req UpdatePublicationRequest) (*PublicationView, error)
	ArchivePublication(ctx context.Context, id, userID string) (*PublicationView, error)
	DeletePublication(ctx context.Context, id, userID string) error

	LikePublication(ctx context.Context, id, userID string) (*LikeResult, error)
	UnlikePublication(ctx context.Context, id, userID string) (*LikeResult, error)
	GetLikes(ctx context.Context, id, viewerID string, page paging.Request) (*LikePage, error)
	GetLikedByUser(ctx context.Context, userID string, page paging.Request) (*PublicationPage, error)
	HasUserLiked(ctx context.Context, id, userID string) (bool, error)

	AddComment(ctx context.Context, req AddCommentRequest) (*CommentResult, error)
	EditComment(ctx context.Context, req EditCommentRequest) (*CommentResult, error)
	DeleteComment(ctx context.Context, id, commentID, userID string) (*CommentResult, error)
	HideComment(ctx context.Context, id, commentID, userID string) (*CommentResult, error)
	GetComments(ctx context.Context, req GetCommentsRequest) (*CommentsResponse, error)

	AddMedia(ctx context.Context, req AddMediaRequest) (*PublicationView, error)
	RemoveMedia(ctx context.Context, id, mediaItemID, userID string) (*PublicationView, error)

	GetPublicationStats(ctx context.Context, id, viewerID string) (*PublicationStats, error)
	GetAuthorStats(ctx context.Context, authorID string) (*AuthorStats, error)
}

// MediaStore is the subset of media.Service used by publication use cases
type MediaStore interface {
	UploadAll(ctx context.Context, files []media.File, opts media.UploadOptions) ([]*media.UploadResult, error)
	Delete(ctx context.Context, publicID string, resourceType media.ResourceType) (*media.DeleteResult, error)
	Limits() media.Limits
}
