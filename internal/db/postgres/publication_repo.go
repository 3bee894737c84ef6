package postgres

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/lib/pq"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

type postgresPublicationRepo struct {
	db *sql.DB
}

var _ publications.Repository = (*postgresPublicationRepo)(nil)

// NewPublicationRepository creates a new PostgreSQL publication repository
func NewPublicationRepository(db *sql.DB) publications.Repository {
	return &postgresPublicationRepo{db: db}
}

// FindByID loads the root row and every child collection. Soft-deleted media
// items are left out; comments are loaded in all states.
func (r *postgresPublicationRepo) FindByID(ctx context.Context, id publications.PublicationID) (*publications.Publication, error) {
	query := `
		SELECT id, author_id, text, status, visibility, version, created_at, updated_at
		FROM publications
		WHERE id = $1 AND deleted_at IS NULL
	`

	var s publications.Snapshot
	var status, visibility string
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&s.ID, &s.AuthorID, &s.Text, &status, &visibility,
		&s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, publications.ErrPublicationNotFound
	}
	if err != nil {
		return nil, errs.Persistence("get publication", err)
	}
	s.Status = publications.Status(status)
	s.Visibility = publications.Visibility(visibility)
	s.CreatedAt = dbTime(s.CreatedAt)
	s.UpdatedAt = dbTime(s.UpdatedAt)

	comments, err := loadCommentRows(ctx, r.db, s.ID)
	if err != nil {
		return nil, err
	}
	s.Comments = orderedComments(comments)

	items, err := loadMediaRows(ctx, r.db, s.ID)
	if err != nil {
		return nil, err
	}
	s.MediaItems = orderedMedia(items)

	s.Likes, err = loadLikeRows(ctx, r.db, s.ID)
	if err != nil {
		return nil, err
	}

	return publications.RestorePublication(s)
}

// Save writes the aggregate in one transaction:
// 1. Lock the root row and compare its version with the loaded version
// 2. Insert or update the root with version + 1
// 3. Reconcile comments, media items and likes against the stored rows
// 4. Refresh the denormalized counters
// The aggregate's version only advances after a successful commit.
func (r *postgresPublicationRepo) Save(ctx context.Context, p *publications.Publication) error {
	s := normalizePublicationSnapshot(p.Snapshot())
	next := s.Version + 1

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockPublicationVersion(ctx, tx, s.ID, s.Version); err != nil {
			return err
		}
		if err := writePublicationRoot(ctx, tx, s, next); err != nil {
			return err
		}
		if err := reconcileComments(ctx, tx, s); err != nil {
			return err
		}
		if err := reconcileMedia(ctx, tx, s); err != nil {
			return err
		}
		if err := reconcileLikes(ctx, tx, s); err != nil {
			return err
		}
		return refreshPublicationCounters(ctx, tx, s.ID)
	})
	if err != nil {
		if errs.KindOf(err) != errs.KindUnknown {
			return err
		}
		return errs.Persistence("save publication", err)
	}

	p.MarkSaved(next)
	return nil
}

// Delete removes the root row; children are removed by ON DELETE CASCADE
func (r *postgresPublicationRepo) Delete(ctx context.Context, id publications.PublicationID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM publications WHERE id = $1`, id.String())
	if err != nil {
		return errs.Persistence("delete publication", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errs.Persistence("delete publication", err)
	}
	if rowsAffected == 0 {
		return publications.ErrPublicationNotFound
	}
	return nil
}

func (r *postgresPublicationRepo) Exists(ctx context.Context, id publications.PublicationID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM publications WHERE id = $1 AND deleted_at IS NULL)`,
		id.String(),
	).Scan(&exists)
	if err != nil {
		return false, errs.Persistence("check publication exists", err)
	}
	return exists, nil
}

func lockPublicationVersion(ctx context.Context, tx *sql.Tx, id string, loaded int64) error {
	var stored int64
	err := tx.QueryRowContext(ctx, `SELECT version FROM publications WHERE id = $1 FOR UPDATE`, id).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if loaded != 0 {
			return errs.Detail(publications.ErrConcurrentModification, "publication %s no longer exists", id)
		}
		return nil
	case err != nil:
		return errs.Persistence("lock publication", err)
	case stored != loaded:
		return errs.Detail(publications.ErrConcurrentModification,
			"publication %s is at version %d, loaded version %d", id, stored, loaded)
	}
	return nil
}

func writePublicationRoot(ctx context.Context, tx *sql.Tx, s publications.Snapshot, next int64) error {
	if s.Version == 0 {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO publications (
				id, author_id, text, type, status, visibility, version, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			s.ID, s.AuthorID, s.Text, string(s.Type), string(s.Status), string(s.Visibility),
			next, s.CreatedAt, s.UpdatedAt,
		)
		if isUniqueViolation(err, "publications_pkey") {
			return errs.Detail(publications.ErrConcurrentModification, "publication %s was created concurrently", s.ID)
		}
		if err != nil {
			return errs.Persistence("insert publication", err)
		}
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE publications
		SET text = $2, type = $3, status = $4, visibility = $5, version = $6, updated_at = $7
		WHERE id = $1
	`,
		s.ID, s.Text, string(s.Type), string(s.Status), string(s.Visibility), next, s.UpdatedAt,
	)
	if err != nil {
		return errs.Persistence("update publication", err)
	}
	return nil
}

func reconcileComments(ctx context.Context, q querier, s publications.Snapshot) error {
	stored, err := loadCommentRows(ctx, q, s.ID)
	if err != nil {
		return err
	}
	d := diffRows(stored, s.Comments, commentKey, commentEqual)

	for _, c := range parentsFirst(d.Insert) {
		_, err := q.ExecContext(ctx, `
			INSERT INTO comments (
				id, publication_id, author_id, parent_comment_id, text,
				likes_count, is_edited, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			c.ID, s.ID, c.AuthorID, nullString(c.ParentCommentID), c.Text,
			c.LikesCount, c.IsEdited, string(c.Status), c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return errs.Persistence("insert comment", err)
		}
	}
	for _, c := range d.Update {
		_, err := q.ExecContext(ctx, `
			UPDATE comments
			SET text = $2, likes_count = $3, is_edited = $4, status = $5, updated_at = $6
			WHERE id = $1
		`,
			c.ID, c.Text, c.LikesCount, c.IsEdited, string(c.Status), c.UpdatedAt,
		)
		if err != nil {
			return errs.Persistence("update comment", err)
		}
	}
	// comments only change state, so d.Removed is always empty
	return nil
}

func reconcileMedia(ctx context.Context, q querier, s publications.Snapshot) error {
	rows, err := loadMediaRows(ctx, q, s.ID)
	if err != nil {
		return err
	}
	current := make([]mediaRow, 0, len(s.MediaItems))
	for _, m := range s.MediaItems {
		row, err := newMediaRow(m)
		if err != nil {
			return err
		}
		current = append(current, row)
	}
	d := diffRows(rows, current, mediaKey, mediaEqual)

	for _, m := range d.Insert {
		_, err := q.ExecContext(ctx, `
			INSERT INTO media_items (
				id, publication_id, type, url, filename, size, order_position,
				public_id, metadata, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		`,
			m.snapshot.ID, s.ID, string(m.snapshot.Type), m.snapshot.URL, m.snapshot.Filename,
			m.snapshot.Size, m.snapshot.Order, nullString(m.snapshot.PublicID), m.metadata, m.snapshot.CreatedAt,
		)
		if err != nil {
			return errs.Persistence("insert media item", err)
		}
	}
	for _, m := range d.Update {
		_, err := q.ExecContext(ctx, `
			UPDATE media_items
			SET order_position = $2, public_id = $3, metadata = $4, updated_at = $5
			WHERE id = $1
		`,
			m.snapshot.ID, m.snapshot.Order, nullString(m.snapshot.PublicID), m.metadata, s.UpdatedAt,
		)
		if err != nil {
			return errs.Persistence("update media item", err)
		}
	}
	if len(d.Removed) > 0 {
		_, err := q.ExecContext(ctx, `
			UPDATE media_items
			SET deleted_at = $2, updated_at = $2
			WHERE publication_id = $1 AND id = ANY($3)
		`, s.ID, s.UpdatedAt, pq.Array(d.Removed))
		if err != nil {
			return errs.Persistence("soft delete media items", err)
		}
	}
	return nil
}

func reconcileLikes(ctx context.Context, q querier, s publications.Snapshot) error {
	stored, err := loadLikeRows(ctx, q, s.ID)
	if err != nil {
		return err
	}
	added, removed := diffSet(stored, s.Likes)

	if len(added) > 0 {
		_, err := q.ExecContext(ctx, `
			INSERT INTO publication_likes (publication_id, user_id, created_at)
			SELECT $1, unnest($2::text[]), $3
			ON CONFLICT DO NOTHING
		`, s.ID, pq.Array(added), s.UpdatedAt)
		if err != nil {
			return errs.Persistence("insert likes", err)
		}
	}
	if len(removed) > 0 {
		_, err := q.ExecContext(ctx,
			`DELETE FROM publication_likes WHERE publication_id = $1 AND user_id = ANY($2)`,
			s.ID, pq.Array(removed),
		)
		if err != nil {
			return errs.Persistence("delete likes", err)
		}
	}
	return nil
}

func refreshPublicationCounters(ctx context.Context, q querier, id string) error {
	_, err := q.ExecContext(ctx, `
		UPDATE publications SET
			likes_count = (SELECT COUNT(*) FROM publication_likes WHERE publication_id = $1),
			comments_count = (SELECT COUNT(*) FROM comments WHERE publication_id = $1 AND status = 'active')
		WHERE id = $1
	`, id)
	if err != nil {
		return errs.Persistence("refresh publication counters", err)
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadCommentRows(ctx context.Context, q querier, publicationID string) (map[string]publications.CommentSnapshot, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, author_id, parent_comment_id, text, likes_count, is_edited, status, created_at, updated_at
		FROM comments
		WHERE publication_id = $1
	`, publicationID)
	if err != nil {
		return nil, errs.Persistence("load comments", err)
	}
	defer closeRows(rows)

	out := make(map[string]publications.CommentSnapshot)
	for rows.Next() {
		var c publications.CommentSnapshot
		var parentID sql.NullString
		var status string
		if err := rows.Scan(
			&c.ID, &c.AuthorID, &parentID, &c.Text, &c.LikesCount, &c.IsEdited,
			&status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, errs.Persistence("scan comment", err)
		}
		c.ParentCommentID = parentID.String
		c.Status = publications.CommentStatus(status)
		c.CreatedAt = dbTime(c.CreatedAt)
		c.UpdatedAt = dbTime(c.UpdatedAt)
		out[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence("iterate comments", err)
	}
	return out, nil
}

// orderedComments returns comments oldest first so parents precede replies
func orderedComments(m map[string]publications.CommentSnapshot) []publications.CommentSnapshot {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b publications.CommentSnapshot) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.ID, b.ID))
	})
	return out
}

// parentsFirst reorders comments inserted in the same save so each reply
// follows its parent. Otherwise the input order is kept.
func parentsFirst(rows []publications.CommentSnapshot) []publications.CommentSnapshot {
	byID := make(map[string]publications.CommentSnapshot, len(rows))
	for _, c := range rows {
		byID[c.ID] = c
	}
	out := make([]publications.CommentSnapshot, 0, len(rows))
	placed := make(map[string]struct{}, len(rows))
	var place func(c publications.CommentSnapshot)
	place = func(c publications.CommentSnapshot) {
		if _, ok := placed[c.ID]; ok {
			return
		}
		placed[c.ID] = struct{}{}
		if parent, ok := byID[c.ParentCommentID]; ok {
			place(parent)
		}
		out = append(out, c)
	}
	for _, c := range rows {
		place(c)
	}
	return out
}

func orderedMedia(m map[string]mediaRow) []publications.MediaItemSnapshot {
	out := make([]publications.MediaItemSnapshot, 0, len(m))
	for _, row := range m {
		out = append(out, row.snapshot)
	}
	slices.SortFunc(out, func(a, b publications.MediaItemSnapshot) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.ID, b.ID))
	})
	return out
}

// mediaRow pairs a media snapshot with its canonical JSON metadata
type mediaRow struct {
	snapshot publications.MediaItemSnapshot
	metadata []byte
}

func newMediaRow(m publications.MediaItemSnapshot) (mediaRow, error) {
	metadata := m.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return mediaRow{}, errs.Persistence("encode media metadata", err)
	}
	return mediaRow{snapshot: m, metadata: raw}, nil
}

func loadMediaRows(ctx context.Context, q querier, publicationID string) (map[string]mediaRow, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, type, url, filename, size, order_position, public_id, metadata, created_at
		FROM media_items
		WHERE publication_id = $1 AND deleted_at IS NULL
		ORDER BY order_position, created_at, id
	`, publicationID)
	if err != nil {
		return nil, errs.Persistence("load media items", err)
	}
	defer closeRows(rows)

	out := make(map[string]mediaRow)
	for rows.Next() {
		m, err := scanMediaItem(rows, nil)
		if err != nil {
			return nil, err
		}
		row, err := newMediaRow(m)
		if err != nil {
			return nil, err
		}
		out[m.ID] = row
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence("iterate media items", err)
	}
	return out, nil
}

// scanMediaItem reads the media columns in loadMediaRows order. When
// publicationID is non-nil a leading publication_id column is read into it.
func scanMediaItem(rows *sql.Rows, publicationID *string) (publications.MediaItemSnapshot, error) {
	var m publications.MediaItemSnapshot
	var mediaType string
	var publicID sql.NullString
	var rawMetadata []byte

	dest := []any{&m.ID, &mediaType, &m.URL, &m.Filename, &m.Size, &m.Order, &publicID, &rawMetadata, &m.CreatedAt}
	if publicationID != nil {
		dest = append([]any{publicationID}, dest...)
	}
	if err := rows.Scan(dest...); err != nil {
		return m, errs.Persistence("scan media item", err)
	}

	m.Type = publications.MediaType(mediaType)
	m.PublicID = publicID.String
	m.CreatedAt = dbTime(m.CreatedAt)
	m.Metadata = map[string]any{}
	if len(rawMetadata) > 0 {
		if err := json.Unmarshal(rawMetadata, &m.Metadata); err != nil {
			return m, errs.Persistence("decode media metadata", err)
		}
	}
	return m, nil
}

func loadLikeRows(ctx context.Context, q querier, publicationID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT user_id FROM publication_likes WHERE publication_id = $1 ORDER BY user_id`,
		publicationID,
	)
	if err != nil {
		return nil, errs.Persistence("load likes", err)
	}
	defer closeRows(rows)

	var out []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, errs.Persistence("scan like", err)
		}
		out = append(out, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence("iterate likes", err)
	}
	return out, nil
}

func commentKey(c publications.CommentSnapshot) string { return c.ID }
func mediaKey(m mediaRow) string                       { return m.snapshot.ID }

func commentEqual(a, b publications.CommentSnapshot) bool {
	return a.Text == b.Text &&
		a.Status == b.Status &&
		a.LikesCount == b.LikesCount &&
		a.IsEdited == b.IsEdited &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}

func mediaEqual(a, b mediaRow) bool {
	return a.snapshot.Order == b.snapshot.Order &&
		a.snapshot.PublicID == b.snapshot.PublicID &&
		string(a.metadata) == string(b.metadata)
}

// normalizePublicationSnapshot rounds timestamps to storage precision and
// round-trips media metadata through JSON so it compares equal to stored rows
func normalizePublicationSnapshot(s publications.Snapshot) publications.Snapshot {
	s.CreatedAt = dbTime(s.CreatedAt)
	s.UpdatedAt = dbTime(s.UpdatedAt)
	for i := range s.Comments {
		s.Comments[i].CreatedAt = dbTime(s.Comments[i].CreatedAt)
		s.Comments[i].UpdatedAt = dbTime(s.Comments[i].UpdatedAt)
	}
	for i := range s.MediaItems {
		s.MediaItems[i].CreatedAt = dbTime(s.MediaItems[i].CreatedAt)
		s.MediaItems[i].Metadata = jsonRoundTrip(s.MediaItems[i].Metadata)
	}
	return s
}

func jsonRoundTrip(m map[string]any) map[string]any {
	out := map[string]any{}
	raw, err := json.Marshal(m)
	if err != nil {
		return maps.Clone(m)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return maps.Clone(m)
	}
	return out
}
