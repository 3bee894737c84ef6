package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/paging"
	"github.com/wilber023/poust-microservicio/internal/core/profiles"
)

type postgresProfileQueryRepo struct {
	db *sql.DB
}

var _ profiles.QueryRepository = (*postgresProfileQueryRepo)(nil)

// NewProfileQueryRepository creates the read model repository for profiles
func NewProfileQueryRepository(db *sql.DB) profiles.QueryRepository {
	return &postgresProfileQueryRepo{db: db}
}

const profileSummaryColumns = `
	u.id, u.username, u.bio, u.created_at,
	(SELECT COUNT(*) FROM friendships fc WHERE fc.user_id = u.id),
	(SELECT COUNT(*) FROM interests ic WHERE ic.user_id = u.id)`

func (r *postgresProfileQueryRepo) IsUsernameAvailable(ctx context.Context, username, excludeUserID string) (bool, error) {
	var available bool
	err := r.db.QueryRowContext(ctx, `
		SELECT NOT EXISTS(
			SELECT 1 FROM user_profiles WHERE username = $1 AND ($2 = '' OR id::text <> $2)
		)
	`, username, excludeUserID).Scan(&available)
	if err != nil {
		return false, errs.Persistence("check username", err)
	}
	return available, nil
}

func (r *postgresProfileQueryRepo) IsFriend(ctx context.Context, ownerID, friendID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM friendships WHERE user_id::text = $1 AND friend_id = $2)`,
		ownerID, friendID,
	).Scan(&ok)
	if err != nil {
		return false, errs.Persistence("check friendship", err)
	}
	return ok, nil
}

// GetFriends lists the profiles in the user's friends set, by username
func (r *postgresProfileQueryRepo) GetFriends(ctx context.Context, userID string, page paging.Request) (*profiles.ProfilePage, error) {
	return r.profilePage(ctx,
		`INNER JOIN friendships rel ON rel.friend_id = u.id::text AND rel.user_id::text = $1`,
		"", page, userID)
}

func (r *postgresProfileQueryRepo) GetBlockedUsers(ctx context.Context, userID string, page paging.Request) (*profiles.ProfilePage, error) {
	return r.profilePage(ctx,
		`INNER JOIN blocked_users rel ON rel.blocked_user_id = u.id::text AND rel.user_id::text = $1`,
		"", page, userID)
}

// Search matches username or bio case-insensitively. An empty query lists all profiles.
func (r *postgresProfileQueryRepo) Search(ctx context.Context, query string, page paging.Request) (*profiles.ProfilePage, error) {
	if query == "" {
		return r.profilePage(ctx, "", "", page)
	}
	return r.profilePage(ctx, "", `WHERE u.username ILIKE $1 OR u.bio ILIKE $1`, page, "%"+escapeLike(query)+"%")
}

func (r *postgresProfileQueryRepo) profilePage(ctx context.Context, join, where string, page paging.Request, args ...any) (*profiles.ProfilePage, error) {
	page = page.Normalize()

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM user_profiles u %s %s`, join, where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, errs.Persistence("count profiles", err)
	}

	n := len(args)
	query := fmt.Sprintf(`
		SELECT %s
		FROM user_profiles u %s %s
		ORDER BY u.username
		LIMIT $%d OFFSET $%d
	`, profileSummaryColumns, join, where, n+1, n+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, errs.Persistence("list profiles", err)
	}
	defer closeRows(rows)

	summaries := make([]*profiles.ProfileSummary, 0, page.Limit)
	for rows.Next() {
		var s profiles.ProfileSummary
		if err := scanProfileSummary(rows, &s); err != nil {
			return nil, err
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence("iterate profiles", err)
	}

	return &profiles.ProfilePage{Profiles: summaries, Pagination: paging.NewInfo(page, total)}, nil
}

func scanProfileSummary(rows *sql.Rows, s *profiles.ProfileSummary, extra ...any) error {
	var bio sql.NullString
	dest := append([]any{&s.ID, &s.Username, &bio, &s.CreatedAt, &s.FriendsCount, &s.InterestsCount}, extra...)
	if err := rows.Scan(dest...); err != nil {
		return errs.Persistence("scan profile", err)
	}
	if bio.Valid && bio.String != "" {
		s.Bio = &bio.String
	}
	return nil
}

// GetFriendSuggestions ranks profiles outside the user's friends and blocks
// by mutual friends, then shared interest names, then newest profile
func (r *postgresProfileQueryRepo) GetFriendSuggestions(ctx context.Context, userID string, limit int) ([]*profiles.Suggestion, error) {
	query := `
		WITH my_friends AS (
			SELECT friend_id FROM friendships WHERE user_id::text = $1
		), my_interests AS (
			SELECT DISTINCT lower(name) AS name FROM interests WHERE user_id::text = $1
		)
		SELECT ` + profileSummaryColumns + `,
			(SELECT COUNT(*) FROM friendships f
				WHERE f.user_id = u.id AND f.friend_id IN (SELECT friend_id FROM my_friends)) AS mutual_friends,
			(SELECT COUNT(DISTINCT lower(i.name)) FROM interests i
				WHERE i.user_id = u.id AND lower(i.name) IN (SELECT name FROM my_interests)) AS shared_interests
		FROM user_profiles u
		WHERE u.id::text <> $1
			AND u.id::text NOT IN (SELECT friend_id FROM my_friends)
			AND NOT EXISTS (
				SELECT 1 FROM blocked_users b WHERE b.user_id::text = $1 AND b.blocked_user_id = u.id::text
			)
		ORDER BY mutual_friends DESC, shared_interests DESC, u.created_at DESC, u.id
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, errs.Persistence("get friend suggestions", err)
	}
	defer closeRows(rows)

	suggestions := make([]*profiles.Suggestion, 0, limit)
	for rows.Next() {
		var s profiles.Suggestion
		if err := scanProfileSummary(rows, &s.ProfileSummary, &s.MutualFriends, &s.SharedInterests); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence("iterate friend suggestions", err)
	}
	return suggestions, nil
}

// GetProfileStats returns ErrProfileNotFound when the profile is absent
func (r *postgresProfileQueryRepo) GetProfileStats(ctx context.Context, userID string) (*profiles.ProfileStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM friendships WHERE user_id = u.id),
			(SELECT COUNT(*) FROM blocked_users WHERE user_id = u.id),
			(SELECT COUNT(*) FROM interests WHERE user_id = u.id),
			(SELECT COUNT(*) FROM publications p
				WHERE p.author_id = u.id::text AND p.status = 'published' AND p.deleted_at IS NULL),
			(SELECT COALESCE(SUM(p.likes_count), 0) FROM publications p
				WHERE p.author_id = u.id::text AND p.deleted_at IS NULL)
		FROM user_profiles u
		WHERE u.id::text = $1
	`

	stats := profiles.ProfileStats{UserID: userID}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.FriendsCount, &stats.BlockedUsersCount, &stats.InterestsCount,
		&stats.PublicationsCount, &stats.LikesReceived,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, profiles.ErrProfileNotFound
	}
	if err != nil {
		return nil, errs.Persistence("get profile stats", err)
	}
	return &stats, nil
}
