package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/paging"
	"github.com/wilber023/poust-microservicio/internal/core/profiles"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

type profileRepo struct {
	s *Store
}

var _ profiles.Repository = (*profileRepo)(nil)

// NewProfileRepository creates an in-memory profile repository
func NewProfileRepository(s *Store) profiles.Repository {
	return &profileRepo{s: s}
}

func (r *profileRepo) FindByID(ctx context.Context, id profiles.UserID) (*profiles.UserProfile, error) {
	r.s.mu.RLock()
	snap, ok := r.s.profiles[id.String()]
	r.s.mu.RUnlock()
	if !ok {
		return nil, profiles.ErrProfileNotFound
	}
	return profiles.RestoreUserProfile(snap)
}

func (r *profileRepo) FindByUsername(ctx context.Context, username string) (*profiles.UserProfile, error) {
	r.s.mu.RLock()
	var found *profiles.Snapshot
	for _, p := range r.s.profiles {
		if p.Username == username {
			found = &p
			break
		}
	}
	r.s.mu.RUnlock()
	if found == nil {
		return nil, profiles.ErrProfileNotFound
	}
	return profiles.RestoreUserProfile(*found)
}

// Save enforces the version check and username uniqueness
func (r *profileRepo) Save(ctx context.Context, u *profiles.UserProfile) error {
	snap := u.Snapshot()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.profiles[snap.ID]
	switch {
	case !ok && snap.Version != 0:
		return errs.Detail(profiles.ErrConcurrentModification, "profile %s no longer exists", snap.ID)
	case ok && snap.Version == 0:
		return profiles.ErrProfileExists
	case ok && stored.Version != snap.Version:
		return errs.Detail(profiles.ErrConcurrentModification,
			"profile %s is at version %d, loaded version %d", snap.ID, stored.Version, snap.Version)
	}
	for id, p := range r.s.profiles {
		if id != snap.ID && p.Username == snap.Username {
			return errs.Detail(profiles.ErrUsernameTaken, "username %q is taken", snap.Username)
		}
	}

	snap.Version++
	r.s.profiles[snap.ID] = snap
	u.MarkSaved(snap.Version)
	return nil
}

func (r *profileRepo) Delete(ctx context.Context, id profiles.UserID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.profiles[id.String()]; !ok {
		return profiles.ErrProfileNotFound
	}
	delete(r.s.profiles, id.String())
	return nil
}

func (r *profileRepo) Exists(ctx context.Context, id profiles.UserID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.profiles[id.String()]
	return ok, nil
}

type profileQueryRepo struct {
	s *Store
}

var _ profiles.QueryRepository = (*profileQueryRepo)(nil)

// NewProfileQueryRepository creates the in-memory profile read models
func NewProfileQueryRepository(s *Store) profiles.QueryRepository {
	return &profileQueryRepo{s: s}
}

func (r *profileQueryRepo) IsUsernameAvailable(ctx context.Context, username, excludeUserID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for id, p := range r.s.profiles {
		if p.Username == username && id != excludeUserID {
			return false, nil
		}
	}
	return true, nil
}

func (r *profileQueryRepo) IsFriend(ctx context.Context, ownerID, friendID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.isFriend(ownerID, friendID), nil
}

func (r *profileQueryRepo) GetFriends(ctx context.Context, userID string, page paging.Request) (*profiles.ProfilePage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.members(r.s.profiles[userID].Friends, page), nil
}

func (r *profileQueryRepo) GetBlockedUsers(ctx context.Context, userID string, page paging.Request) (*profiles.ProfilePage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.members(r.s.profiles[userID].BlockedUsers, page), nil
}

// members pages the existing profiles among ids. Callers hold s.mu.
func (r *profileQueryRepo) members(ids []string, page paging.Request) *profiles.ProfilePage {
	matched := make([]profiles.Snapshot, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.profiles[id]; ok {
			matched = append(matched, p)
		}
	}
	return profilePage(matched, page)
}

func (r *profileQueryRepo) Search(ctx context.Context, query string, page paging.Request) (*profiles.ProfilePage, error) {
	query = strings.ToLower(query)

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]profiles.Snapshot, 0)
	for _, p := range r.s.profiles {
		if query == "" ||
			strings.Contains(strings.ToLower(p.Username), query) ||
			strings.Contains(strings.ToLower(p.Bio), query) {
			matched = append(matched, p)
		}
	}
	return profilePage(matched, page), nil
}

func (r *profileQueryRepo) GetFriendSuggestions(ctx context.Context, userID string, limit int) ([]*profiles.Suggestion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	me := r.s.profiles[userID]
	myFriends := make(map[string]struct{}, len(me.Friends))
	for _, f := range me.Friends {
		myFriends[f] = struct{}{}
	}
	myInterests := interestNames(me)

	candidates := make([]*profiles.Suggestion, 0)
	for id, p := range r.s.profiles {
		if _, friend := myFriends[id]; friend || id == userID || r.s.isBlocked(userID, id) {
			continue
		}
		s := &profiles.Suggestion{ProfileSummary: *summarizeProfile(p)}
		for _, f := range p.Friends {
			if _, ok := myFriends[f]; ok {
				s.MutualFriends++
			}
		}
		for name := range interestNames(p) {
			if _, ok := myInterests[name]; ok {
				s.SharedInterests++
			}
		}
		candidates = append(candidates, s)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		switch {
		case a.MutualFriends != b.MutualFriends:
			return a.MutualFriends > b.MutualFriends
		case a.SharedInterests != b.SharedInterests:
			return a.SharedInterests > b.SharedInterests
		case !a.CreatedAt.Equal(b.CreatedAt):
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (r *profileQueryRepo) GetProfileStats(ctx context.Context, userID string) (*profiles.ProfileStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, profiles.ErrProfileNotFound
	}
	stats := &profiles.ProfileStats{
		UserID:            userID,
		FriendsCount:      len(p.Friends),
		BlockedUsersCount: len(p.BlockedUsers),
		InterestsCount:    len(p.Interests),
	}
	for _, pub := range r.s.publications {
		if pub.AuthorID != userID {
			continue
		}
		if pub.Status == publications.StatusPublished {
			stats.PublicationsCount++
		}
		stats.LikesReceived += len(pub.Likes)
	}
	return stats, nil
}

func interestNames(p profiles.Snapshot) map[string]struct{} {
	names := make(map[string]struct{}, len(p.Interests))
	for _, i := range p.Interests {
		names[strings.ToLower(i.Name)] = struct{}{}
	}
	return names
}

func summarizeProfile(p profiles.Snapshot) *profiles.ProfileSummary {
	s := &profiles.ProfileSummary{
		ID:             p.ID,
		Username:       p.Username,
		CreatedAt:      p.CreatedAt,
		FriendsCount:   len(p.Friends),
		InterestsCount: len(p.Interests),
	}
	if p.Bio != "" {
		bio := p.Bio
		s.Bio = &bio
	}
	return s
}

// profilePage sorts by username and paginates
func profilePage(matched []profiles.Snapshot, page paging.Request) *profiles.ProfilePage {
	sort.Slice(matched, func(i, j int) bool { return matched[i].Username < matched[j].Username })
	page = page.Normalize()
	out := make([]*profiles.ProfileSummary, 0)
	for _, p := range paging.Slice(matched, page) {
		out = append(out, summarizeProfile(p))
	}
	return &profiles.ProfilePage{Profiles: out, Pagination: paging.NewInfo(page, len(matched))}
}
