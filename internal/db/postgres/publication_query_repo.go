package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/paging"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

type postgresPublicationQueryRepo struct {
	*feedRepoBase
}

var _ publications.QueryRepository = (*postgresPublicationQueryRepo)(nil)

// NewPublicationQueryRepository creates the read model repository for publications
func NewPublicationQueryRepository(db *sql.DB) publications.QueryRepository {
	return &postgresPublicationQueryRepo{feedRepoBase: newFeedRepoBase(db)}
}

// List returns published publications, newest first
func (r *postgresPublicationQueryRepo) List(ctx context.Context, filter publications.ListFilter, page paging.Request) (*publications.PublicationPage, error) {
	q := newListQuery("recent")
	q.published()
	if filter.AuthorID != "" {
		q.filter("p.author_id = %s", q.bind(filter.AuthorID))
	}
	switch filter.Visibility {
	case publications.VisibilityAll:
	case "":
		q.filter("p.visibility = 'public'")
	default:
		q.filter("p.visibility = %s", q.bind(filter.Visibility))
	}
	return r.listPublications(ctx, q, page)
}

func (r *postgresPublicationQueryRepo) FindByAuthor(ctx context.Context, authorID string, page paging.Request) (*publications.PublicationPage, error) {
	q := newListQuery("recent")
	q.filter("p.author_id = %s", q.bind(authorID))
	return r.listPublications(ctx, q, page)
}

// Search matches public, published publications. The query is a
// case-insensitive substring of the text.
func (r *postgresPublicationQueryRepo) Search(ctx context.Context, c publications.SearchCriteria, page paging.Request) (*publications.PublicationPage, error) {
	q := newListQuery("recent")
	q.published()
	q.filter("p.visibility = 'public'")
	if c.Query != "" {
		q.filter("p.text ILIKE %s", q.bind("%"+escapeLike(c.Query)+"%"))
	}
	if c.AuthorID != "" {
		q.filter("p.author_id = %s", q.bind(c.AuthorID))
	}
	if c.Type != "" {
		q.filter("p.type = %s", q.bind(string(c.Type)))
	}
	if c.From != nil {
		q.filter("p.created_at >= %s", q.bind(*c.From))
	}
	if c.To != nil {
		q.filter("p.created_at <= %s", q.bind(*c.To))
	}
	return r.listPublications(ctx, q, page)
}

// GetLikedByUser lists publications the user liked that the user can still
// see, most recently liked first
func (r *postgresPublicationQueryRepo) GetLikedByUser(ctx context.Context, userID string, page paging.Request) (*publications.PublicationPage, error) {
	q := newListQuery("liked")
	u := q.bind(userID)
	q.joins = "INNER JOIN publication_likes l ON l.publication_id = p.id AND l.user_id = " + u
	q.published()
	q.visibleTo(userID)
	return r.listPublications(ctx, q, page)
}

func (r *postgresPublicationQueryRepo) GetComments(ctx context.Context, id publications.PublicationID, page paging.Request) (*publications.CommentPage, error) {
	return r.commentPage(ctx, id.String(), "", page)
}

func (r *postgresPublicationQueryRepo) GetCommentReplies(ctx context.Context, id publications.PublicationID, commentID string, page paging.Request) (*publications.CommentPage, error) {
	if commentID == "" {
		return nil, publications.ErrCommentNotFound
	}
	return r.commentPage(ctx, id.String(), commentID, page)
}

// commentPage lists active comments oldest first. An empty parentID lists
// every active comment; otherwise only direct replies to parentID.
func (r *postgresPublicationQueryRepo) commentPage(ctx context.Context, publicationID, parentID string, page paging.Request) (*publications.CommentPage, error) {
	page = page.Normalize()
	where := `publication_id = $1 AND status = 'active' AND ($2 = '' OR parent_comment_id::text = $2)`

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE `+where, publicationID, parentID).Scan(&total); err != nil {
		return nil, errs.Persistence("count comments", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, author_id, parent_comment_id, text, likes_count, is_edited, status, created_at, updated_at
		FROM comments
		WHERE `+where+`
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4
	`, publicationID, parentID, page.Limit, page.Offset())
	if err != nil {
		return nil, errs.Persistence("list comments", err)
	}
	defer closeRows(rows)

	comments := make([]*publications.CommentView, 0, page.Limit)
	for rows.Next() {
		var c publications.CommentView
		var parent sql.NullString
		var status string
		if err := rows.Scan(
			&c.ID, &c.AuthorID, &parent, &c.Text, &c.LikesCount, &c.IsEdited,
			&status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, errs.Persistence("scan comment", err)
		}
		c.PublicationID = publicationID
		c.ParentCommentID = nullStringPtr(parent)
		c.Status = publications.CommentStatus(status)
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence("iterate comments", err)
	}

	return &publications.CommentPage{Comments: comments, Pagination: paging.NewInfo(page, total)}, nil
}

// GetLikes lists likes newest first
func (r *postgresPublicationQueryRepo) GetLikes(ctx context.Context, id publications.PublicationID, page paging.Request) (*publications.LikePage, error) {
	page = page.Normalize()

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM publication_likes WHERE publication_id = $1`, id.String(),
	).Scan(&total); err != nil {
		return nil, errs.Persistence("count likes", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, created_at
		FROM publication_likes
		WHERE publication_id = $1
		ORDER BY created_at DESC, user_id
		LIMIT $2 OFFSET $3
	`, id.String(), page.Limit, page.Offset())
	if err != nil {
		return nil, errs.Persistence("list likes", err)
	}
	defer closeRows(rows)

	likes := make([]*publications.LikeView, 0, page.Limit)
	for rows.Next() {
		var l publications.LikeView
		if err := rows.Scan(&l.UserID, &l.CreatedAt); err != nil {
			return nil, errs.Persistence("scan like", err)
		}
		likes = append(likes, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence("iterate likes", err)
	}

	return &publications.LikePage{Likes: likes, Pagination: paging.NewInfo(page, total)}, nil
}

func (r *postgresPublicationQueryRepo) HasUserLiked(ctx context.Context, id publications.PublicationID, userID string) (bool, error) {
	var liked bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM publication_likes WHERE publication_id = $1 AND user_id = $2)`,
		id.String(), userID,
	).Scan(&liked)
	if err != nil {
		return false, errs.Persistence("check like", err)
	}
	return liked, nil
}

// GetPublicationStats returns ErrPublicationNotFound when the publication is absent
func (r *postgresPublicationQueryRepo) GetPublicationStats(ctx context.Context, id publications.PublicationID) (*publications.PublicationStats, error) {
	query := `
		SELECT
			p.likes_count,
			p.comments_count,
			(SELECT COUNT(*) FROM comments c
				WHERE c.publication_id = p.id AND c.status = 'active' AND c.parent_comment_id IS NOT NULL),
			(SELECT COUNT(*) FROM media_items m WHERE m.publication_id = p.id AND m.deleted_at IS NULL),
			(SELECT MAX(c.created_at) FROM comments c WHERE c.publication_id = p.id AND c.status = 'active')
		FROM publications p
		WHERE p.id = $1 AND p.deleted_at IS NULL
	`

	stats := publications.PublicationStats{PublicationID: id.String()}
	var lastComment sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&stats.LikesCount, &stats.CommentsCount, &stats.RepliesCount, &stats.MediaItemsCount, &lastComment,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, publications.ErrPublicationNotFound
	}
	if err != nil {
		return nil, errs.Persistence("get publication stats", err)
	}
	stats.LastCommentAt = timePtr(lastComment)
	return &stats, nil
}

// GetAuthorStats aggregates over the author's published publications
func (r *postgresPublicationQueryRepo) GetAuthorStats(ctx context.Context, authorID string) (*publications.AuthorStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(p.likes_count), 0),
			COALESCE(SUM(p.comments_count), 0),
			(SELECT COUNT(*) FROM media_items m
				INNER JOIN publications mp ON mp.id = m.publication_id
				WHERE mp.author_id = $1 AND mp.status = 'published' AND mp.deleted_at IS NULL AND m.deleted_at IS NULL),
			MAX(p.created_at)
		FROM publications p
		WHERE p.author_id = $1 AND p.status = 'published' AND p.deleted_at IS NULL
	`

	stats := publications.AuthorStats{AuthorID: authorID}
	var lastPublished sql.NullTime
	err := r.db.QueryRowContext(ctx, query, authorID).Scan(
		&stats.PublicationsCount, &stats.TotalLikes, &stats.TotalComments, &stats.MediaItemsCount, &lastPublished,
	)
	if err != nil {
		return nil, errs.Persistence("get author stats", err)
	}
	stats.LastPublishedAt = timePtr(lastPublished)
	return &stats, nil
}
