package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/profiles"
)

const usernameConstraint = "user_profiles_username_key"

type postgresProfileRepo struct {
	db *sql.DB
}

var _ profiles.Repository = (*postgresProfileRepo)(nil)

// NewProfileRepository creates a new PostgreSQL user profile repository
func NewProfileRepository(db *sql.DB) profiles.Repository {
	return &postgresProfileRepo{db: db}
}

func (r *postgresProfileRepo) FindByID(ctx context.Context, id profiles.UserID) (*profiles.UserProfile, error) {
	return r.find(ctx, `WHERE id = $1`, id.String())
}

func (r *postgresProfileRepo) FindByUsername(ctx context.Context, username string) (*profiles.UserProfile, error) {
	return r.find(ctx, `WHERE username = $1`, username)
}

func (r *postgresProfileRepo) find(ctx context.Context, where string, arg any) (*profiles.UserProfile, error) {
	query := `
		SELECT id, username, bio, version, created_at, updated_at
		FROM user_profiles
	` + where

	var s profiles.Snapshot
	var bio sql.NullString
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&s.ID, &s.Username, &bio, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, profiles.ErrProfileNotFound
	}
	if err != nil {
		return nil, errs.Persistence("get profile", err)
	}
	s.Bio = bio.String
	s.CreatedAt = dbTime(s.CreatedAt)
	s.UpdatedAt = dbTime(s.UpdatedAt)

	interests, err := loadInterestRows(ctx, r.db, s.ID)
	if err != nil {
		return nil, err
	}
	s.Interests = interests

	if s.Friends, err = loadMemberRows(ctx, r.db, `SELECT friend_id FROM friendships WHERE user_id = $1 ORDER BY friend_id`, s.ID); err != nil {
		return nil, err
	}
	if s.BlockedUsers, err = loadMemberRows(ctx, r.db, `SELECT blocked_user_id FROM blocked_users WHERE user_id = $1 ORDER BY blocked_user_id`, s.ID); err != nil {
		return nil, err
	}

	return profiles.RestoreUserProfile(s)
}

// Save writes the profile in one transaction: version check, root upsert,
// then interests, friendships and blocks are reconciled against the stored rows.
// A duplicate username fails with ErrUsernameTaken.
func (r *postgresProfileRepo) Save(ctx context.Context, u *profiles.UserProfile) error {
	s := normalizeProfileSnapshot(u.Snapshot())
	next := s.Version + 1

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockProfileVersion(ctx, tx, s.ID, s.Version); err != nil {
			return err
		}
		if err := writeProfileRoot(ctx, tx, s, next); err != nil {
			return err
		}
		if err := reconcileInterests(ctx, tx, s); err != nil {
			return err
		}
		if err := reconcileMembers(ctx, tx, s.ID, s.Friends, memberTable{
			name: "friendships", column: "friend_id",
		}); err != nil {
			return err
		}
		return reconcileMembers(ctx, tx, s.ID, s.BlockedUsers, memberTable{
			name: "blocked_users", column: "blocked_user_id",
		})
	})
	if err != nil {
		if errs.KindOf(err) != errs.KindUnknown {
			return err
		}
		return errs.Persistence("save profile", err)
	}

	u.MarkSaved(next)
	return nil
}

func (r *postgresProfileRepo) Delete(ctx context.Context, id profiles.UserID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_profiles WHERE id = $1`, id.String())
	if err != nil {
		return errs.Persistence("delete profile", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errs.Persistence("delete profile", err)
	}
	if rowsAffected == 0 {
		return profiles.ErrProfileNotFound
	}
	return nil
}

func (r *postgresProfileRepo) Exists(ctx context.Context, id profiles.UserID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM user_profiles WHERE id = $1)`, id.String()).Scan(&exists)
	if err != nil {
		return false, errs.Persistence("check profile exists", err)
	}
	return exists, nil
}

func lockProfileVersion(ctx context.Context, tx *sql.Tx, id string, loaded int64) error {
	var stored int64
	err := tx.QueryRowContext(ctx, `SELECT version FROM user_profiles WHERE id = $1 FOR UPDATE`, id).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if loaded != 0 {
			return errs.Detail(profiles.ErrConcurrentModification, "profile %s no longer exists", id)
		}
		return nil
	case err != nil:
		return errs.Persistence("lock profile", err)
	case stored != loaded:
		return errs.Detail(profiles.ErrConcurrentModification,
			"profile %s is at version %d, loaded version %d", id, stored, loaded)
	}
	return nil
}

func writeProfileRoot(ctx context.Context, tx *sql.Tx, s profiles.Snapshot, next int64) error {
	var err error
	if s.Version == 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_profiles (id, username, bio, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, s.ID, s.Username, nullString(s.Bio), next, s.CreatedAt, s.UpdatedAt)
		if isUniqueViolation(err, "user_profiles_pkey") {
			return profiles.ErrProfileExists
		}
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE user_profiles
			SET username = $2, bio = $3, version = $4, updated_at = $5
			WHERE id = $1
		`, s.ID, s.Username, nullString(s.Bio), next, s.UpdatedAt)
	}
	if isUniqueViolation(err, usernameConstraint) {
		return errs.Detail(profiles.ErrUsernameTaken, "username %q is taken", s.Username)
	}
	if err != nil {
		return errs.Persistence("write profile", err)
	}
	return nil
}

func reconcileInterests(ctx context.Context, q querier, s profiles.Snapshot) error {
	stored := make(map[string]profiles.InterestSnapshot)
	rows, err := loadInterestRows(ctx, q, s.ID)
	if err != nil {
		return err
	}
	for _, i := range rows {
		stored[i.ID] = i
	}
	d := diffRows(stored, s.Interests, interestKey, interestEqual)

	if len(d.Removed) > 0 {
		if _, err := q.ExecContext(ctx,
			`DELETE FROM interests WHERE user_id = $1 AND id = ANY($2::uuid[])`,
			s.ID, pq.Array(d.Removed),
		); err != nil {
			return errs.Persistence("delete interests", err)
		}
	}
	for _, i := range d.Insert {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO interests (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`,
			i.ID, s.ID, i.Name, i.CreatedAt,
		); err != nil {
			return errs.Persistence("insert interest", err)
		}
	}
	for _, i := range d.Update {
		if _, err := q.ExecContext(ctx, `UPDATE interests SET name = $2 WHERE id = $1`, i.ID, i.Name); err != nil {
			return errs.Persistence("update interest", err)
		}
	}
	return nil
}

// memberTable names a (user_id, member) membership table. Both values are
// constants, never user input.
type memberTable struct {
	name   string
	column string
}

func reconcileMembers(ctx context.Context, q querier, userID string, current []string, t memberTable) error {
	stored, err := loadMemberRows(ctx, q, `SELECT `+t.column+` FROM `+t.name+` WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	added, removed := diffSet(stored, current)

	if len(added) > 0 {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO `+t.name+` (user_id, `+t.column+`)
			SELECT $1, unnest($2::text[])
			ON CONFLICT DO NOTHING
		`, userID, pq.Array(added)); err != nil {
			return errs.Persistence("insert "+t.name, err)
		}
	}
	if len(removed) > 0 {
		if _, err := q.ExecContext(ctx,
			`DELETE FROM `+t.name+` WHERE user_id = $1 AND `+t.column+` = ANY($2)`,
			userID, pq.Array(removed),
		); err != nil {
			return errs.Persistence("delete "+t.name, err)
		}
	}
	return nil
}

func loadInterestRows(ctx context.Context, q querier, userID string) ([]profiles.InterestSnapshot, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM interests
		WHERE user_id = $1
		ORDER BY created_at, name, id
	`, userID)
	if err != nil {
		return nil, errs.Persistence("load interests", err)
	}
	defer closeRows(rows)

	var out []profiles.InterestSnapshot
	for rows.Next() {
		var i profiles.InterestSnapshot
		if err := rows.Scan(&i.ID, &i.Name, &i.CreatedAt); err != nil {
			return nil, errs.Persistence("scan interest", err)
		}
		i.CreatedAt = dbTime(i.CreatedAt)
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence("iterate interests", err)
	}
	return out, nil
}

func loadMemberRows(ctx context.Context, q querier, query, userID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errs.Persistence("load relationships", err)
	}
	defer closeRows(rows)

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errs.Persistence("scan relationship", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence("iterate relationships", err)
	}
	return out, nil
}

func interestKey(i profiles.InterestSnapshot) string { return i.ID }

func interestEqual(a, b profiles.InterestSnapshot) bool {
	return a.Name == b.Name
}

func normalizeProfileSnapshot(s profiles.Snapshot) profiles.Snapshot {
	s.CreatedAt = dbTime(s.CreatedAt)
	s.UpdatedAt = dbTime(s.UpdatedAt)
	for i := range s.Interests {
		s.Interests[i].CreatedAt = dbTime(s.Interests[i].CreatedAt)
	}
	return s
}
