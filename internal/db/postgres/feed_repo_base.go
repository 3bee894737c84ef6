package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/paging"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

// feedRepoBase contains the listing logic shared by the publication read
// models, the timeline and discover.
//
// DATABASE INDEXES REQUIRED (001_create_publications.sql):
//
// 1. idx_publications_feed ON publications(status, visibility, created_at DESC) WHERE deleted_at IS NULL
//   - Used by: List, discover, timeline
//
// 2. idx_publications_author ON publications(author_id, created_at DESC) WHERE deleted_at IS NULL
//   - Used by: FindByAuthor, author filters, feed and timeline author sets
//
// 3. idx_media_items_publication ON media_items(publication_id, order_position) WHERE deleted_at IS NULL
//   - Used by: attachMedia, one query per page (no N+1)
//
// Popular ordering uses likes_count + comments_count, kept current by Save.
type feedRepoBase struct {
	db *sql.DB
}

func newFeedRepoBase(db *sql.DB) *feedRepoBase {
	return &feedRepoBase{db: db}
}

// sortClauses maps listing orders to safe SQL ORDER BY clauses
var sortClauses = map[string]string{
	"recent":  `p.created_at DESC, p.id DESC`,
	"popular": `(p.likes_count + p.comments_count) DESC, p.created_at DESC, p.id DESC`,
	"liked":   `l.created_at DESC, p.id DESC`,
}

const publicationSummaryColumns = `
	p.id, p.author_id, p.text, p.type, p.status, p.visibility,
	p.likes_count, p.comments_count, p.created_at, p.updated_at`

// listQuery accumulates joins, filters and positional arguments
type listQuery struct {
	joins string
	where []string
	args  []any
	sort  string
}

func newListQuery(sort string) *listQuery {
	return &listQuery{where: []string{"p.deleted_at IS NULL"}, sort: sort}
}

// bind appends an argument and returns its placeholder
func (q *listQuery) bind(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

func (q *listQuery) filter(format string, args ...any) {
	q.where = append(q.where, fmt.Sprintf(format, args...))
}

func (q *listQuery) published() {
	q.filter("p.status = 'published'")
}

// visibleTo keeps publications the viewer may see: public ones, the
// viewer's own, and friends-only ones whose author has friended the viewer
func (q *listQuery) visibleTo(viewerID string) {
	v := q.bind(viewerID)
	q.filter(`(p.visibility = 'public' OR p.author_id = %[1]s OR (p.visibility = 'friends' AND EXISTS (
		SELECT 1 FROM friendships f WHERE f.user_id::text = p.author_id AND f.friend_id = %[1]s
	)))`, v)
}

// listPublications runs the count and page queries and attaches media items
func (b *feedRepoBase) listPublications(ctx context.Context, q *listQuery, page paging.Request) (*publications.PublicationPage, error) {
	page = page.Normalize()
	orderBy := sortClauses[q.sort]
	if orderBy == "" {
		orderBy = sortClauses["recent"]
	}
	where := strings.Join(q.where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM publications p %s WHERE %s`, q.joins, where)
	if err := b.db.QueryRowContext(ctx, countQuery, q.args...).Scan(&total); err != nil {
		return nil, errs.Persistence("count publications", err)
	}

	args := append([]any{}, q.args...)
	args = append(args, page.Limit, page.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM publications p %s
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, publicationSummaryColumns, q.joins, where, orderBy, len(args)-1, len(args))

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Persistence("list publications", err)
	}
	defer closeRows(rows)

	summaries := make([]*publications.PublicationSummary, 0, page.Limit)
	for rows.Next() {
		s, err := scanPublicationSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence("iterate publications", err)
	}

	if err := b.attachMedia(ctx, summaries); err != nil {
		return nil, err
	}

	return &publications.PublicationPage{
		Publications: summaries,
		Pagination:   paging.NewInfo(page, total),
	}, nil
}

func scanPublicationSummary(rows *sql.Rows) (*publications.PublicationSummary, error) {
	var s publications.PublicationSummary
	var pubType, status, visibility string
	err := rows.Scan(
		&s.ID, &s.AuthorID, &s.Text, &pubType, &status, &visibility,
		&s.LikesCount, &s.CommentsCount, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, errs.Persistence("scan publication", err)
	}
	s.Type = publications.PublicationType(pubType)
	s.Status = publications.Status(status)
	s.Visibility = publications.Visibility(visibility)
	s.MediaItems = []*publications.MediaItemView{}
	return &s, nil
}

// attachMedia loads the live media items of a page in a single query
func (b *feedRepoBase) attachMedia(ctx context.Context, summaries []*publications.PublicationSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	byID := make(map[string]*publications.PublicationSummary, len(summaries))
	ids := make([]string, 0, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}

	rows, err := b.db.QueryContext(ctx, `
		SELECT publication_id, id, type, url, filename, size, order_position, public_id, metadata, created_at
		FROM media_items
		WHERE publication_id = ANY($1::uuid[]) AND deleted_at IS NULL
		ORDER BY publication_id, order_position, created_at, id
	`, pq.Array(ids))
	if err != nil {
		return errs.Persistence("load media items", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var publicationID string
		m, err := scanMediaItem(rows, &publicationID)
		if err != nil {
			return err
		}
		if s, ok := byID[publicationID]; ok {
			s.MediaItems = append(s.MediaItems, mediaItemView(publicationID, m))
		}
	}
	if err := rows.Err(); err != nil {
		return errs.Persistence("iterate media items", err)
	}
	return nil
}

func mediaItemView(publicationID string, m publications.MediaItemSnapshot) *publications.MediaItemView {
	v := &publications.MediaItemView{
		ID:            m.ID,
		PublicationID: publicationID,
		Type:          m.Type,
		URL:           m.URL,
		Filename:      m.Filename,
		Size:          m.Size,
		Order:         m.Order,
		CreatedAt:     m.CreatedAt,
		Metadata:      m.Metadata,
	}
	if m.PublicID != "" {
		publicID := m.PublicID
		v.PublicID = &publicID
	}
	return v
}
