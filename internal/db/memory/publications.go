package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/paging"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

type publicationRepo struct {
	s *Store
}

var _ publications.Repository = (*publicationRepo)(nil)

// NewPublicationRepository creates an in-memory publication repository
func NewPublicationRepository(s *Store) publications.Repository {
	return &publicationRepo{s: s}
}

func (r *publicationRepo) FindByID(ctx context.Context, id publications.PublicationID) (*publications.Publication, error) {
	r.s.mu.RLock()
	snap, ok := r.s.publications[id.String()]
	r.s.mu.RUnlock()
	if !ok {
		return nil, publications.ErrPublicationNotFound
	}
	return publications.RestorePublication(snap)
}

// Save applies the same optimistic version check as the postgres adapter
func (r *publicationRepo) Save(ctx context.Context, p *publications.Publication) error {
	snap := p.Snapshot()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.publications[snap.ID]
	switch {
	case !ok && snap.Version != 0:
		return errs.Detail(publications.ErrConcurrentModification, "publication %s no longer exists", snap.ID)
	case ok && stored.Version != snap.Version:
		return errs.Detail(publications.ErrConcurrentModification,
			"publication %s is at version %d, loaded version %d", snap.ID, stored.Version, snap.Version)
	}

	liked := r.s.likedAt[snap.ID]
	if liked == nil {
		liked = make(map[string]time.Time)
		r.s.likedAt[snap.ID] = liked
	}
	current := make(map[string]struct{}, len(snap.Likes))
	for _, userID := range snap.Likes {
		current[userID] = struct{}{}
		if _, ok := liked[userID]; !ok {
			liked[userID] = snap.UpdatedAt
		}
	}
	for userID := range liked {
		if _, ok := current[userID]; !ok {
			delete(liked, userID)
		}
	}

	snap.Version++
	r.s.publications[snap.ID] = snap
	p.MarkSaved(snap.Version)
	return nil
}

func (r *publicationRepo) Delete(ctx context.Context, id publications.PublicationID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.publications[id.String()]; !ok {
		return publications.ErrPublicationNotFound
	}
	delete(r.s.publications, id.String())
	delete(r.s.likedAt, id.String())
	return nil
}

func (r *publicationRepo) Exists(ctx context.Context, id publications.PublicationID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.publications[id.String()]
	return ok, nil
}

type publicationQueryRepo struct {
	s *Store
}

var _ publications.QueryRepository = (*publicationQueryRepo)(nil)

// NewPublicationQueryRepository creates the in-memory publication read models
func NewPublicationQueryRepository(s *Store) publications.QueryRepository {
	return &publicationQueryRepo{s: s}
}

func (r *publicationQueryRepo) List(ctx context.Context, filter publications.ListFilter, page paging.Request) (*publications.PublicationPage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.page(func(p publications.Snapshot) bool {
		if p.Status != publications.StatusPublished {
			return false
		}
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			return false
		}
		switch filter.Visibility {
		case publications.VisibilityAll:
			return true
		case "":
			return p.Visibility == publications.VisibilityPublic
		default:
			return string(p.Visibility) == filter.Visibility
		}
	}, nil, page), nil
}

func (r *publicationQueryRepo) FindByAuthor(ctx context.Context, authorID string, page paging.Request) (*publications.PublicationPage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.page(func(p publications.Snapshot) bool {
		return p.AuthorID == authorID
	}, nil, page), nil
}

func (r *publicationQueryRepo) Search(ctx context.Context, c publications.SearchCriteria, page paging.Request) (*publications.PublicationPage, error) {
	query := strings.ToLower(c.Query)

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.page(func(p publications.Snapshot) bool {
		switch {
		case p.Status != publications.StatusPublished, p.Visibility != publications.VisibilityPublic:
			return false
		case query != "" && !strings.Contains(strings.ToLower(p.Text), query):
			return false
		case c.AuthorID != "" && p.AuthorID != c.AuthorID:
			return false
		case c.Type != "" && p.Type != c.Type:
			return false
		case c.From != nil && p.CreatedAt.Before(*c.From):
			return false
		case c.To != nil && p.CreatedAt.After(*c.To):
			return false
		}
		return true
	}, nil, page), nil
}

func (r *publicationQueryRepo) GetLikedByUser(ctx context.Context, userID string, page paging.Request) (*publications.PublicationPage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	likedAt := func(p publications.Snapshot) time.Time { return r.s.likedAt[p.ID][userID] }
	return r.s.page(func(p publications.Snapshot) bool {
		_, liked := r.s.likedAt[p.ID][userID]
		return liked && p.Status == publications.StatusPublished && r.s.visibleTo(p, userID)
	}, func(a, b publications.Snapshot) bool {
		if ta, tb := likedAt(a), likedAt(b); !ta.Equal(tb) {
			return ta.After(tb)
		}
		return a.ID > b.ID
	}, page), nil
}

func (r *publicationQueryRepo) GetComments(ctx context.Context, id publications.PublicationID, page paging.Request) (*publications.CommentPage, error) {
	return r.comments(id, func(c publications.CommentSnapshot) bool { return true }, page)
}

func (r *publicationQueryRepo) GetCommentReplies(ctx context.Context, id publications.PublicationID, commentID string, page paging.Request) (*publications.CommentPage, error) {
	if commentID == "" {
		return nil, publications.ErrCommentNotFound
	}
	return r.comments(id, func(c publications.CommentSnapshot) bool { return c.ParentCommentID == commentID }, page)
}

func (r *publicationQueryRepo) comments(id publications.PublicationID, keep func(publications.CommentSnapshot) bool, page paging.Request) (*publications.CommentPage, error) {
	r.s.mu.RLock()
	p, ok := r.s.publications[id.String()]
	r.s.mu.RUnlock()
	if !ok {
		return &publications.CommentPage{Comments: []*publications.CommentView{}, Pagination: paging.NewInfo(page, 0)}, nil
	}

	matched := make([]*publications.CommentView, 0)
	for _, c := range p.Comments {
		if c.Status != publications.CommentActive || !keep(c) {
			continue
		}
		v := &publications.CommentView{
			ID:            c.ID,
			AuthorID:      c.AuthorID,
			Text:          c.Text,
			PublicationID: p.ID,
			Status:        c.Status,
			LikesCount:    c.LikesCount,
			IsEdited:      c.IsEdited,
			CreatedAt:     c.CreatedAt,
			UpdatedAt:     c.UpdatedAt,
		}
		if c.ParentCommentID != "" {
			parent := c.ParentCommentID
			v.ParentCommentID = &parent
		}
		matched = append(matched, v)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })

	page = page.Normalize()
	return &publications.CommentPage{
		Comments:   paging.Slice(matched, page),
		Pagination: paging.NewInfo(page, len(matched)),
	}, nil
}

func (r *publicationQueryRepo) GetLikes(ctx context.Context, id publications.PublicationID, page paging.Request) (*publications.LikePage, error) {
	r.s.mu.RLock()
	likes := make([]*publications.LikeView, 0)
	for userID, at := range r.s.likedAt[id.String()] {
		likes = append(likes, &publications.LikeView{UserID: userID, CreatedAt: at})
	}
	r.s.mu.RUnlock()

	sort.Slice(likes, func(i, j int) bool {
		if !likes[i].CreatedAt.Equal(likes[j].CreatedAt) {
			return likes[i].CreatedAt.After(likes[j].CreatedAt)
		}
		return likes[i].UserID < likes[j].UserID
	})

	page = page.Normalize()
	return &publications.LikePage{Likes: paging.Slice(likes, page), Pagination: paging.NewInfo(page, len(likes))}, nil
}

func (r *publicationQueryRepo) HasUserLiked(ctx context.Context, id publications.PublicationID, userID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.likedAt[id.String()][userID]
	return ok, nil
}

func (r *publicationQueryRepo) GetPublicationStats(ctx context.Context, id publications.PublicationID) (*publications.PublicationStats, error) {
	r.s.mu.RLock()
	p, ok := r.s.publications[id.String()]
	r.s.mu.RUnlock()
	if !ok {
		return nil, publications.ErrPublicationNotFound
	}

	stats := &publications.PublicationStats{
		PublicationID:   p.ID,
		LikesCount:      len(p.Likes),
		MediaItemsCount: len(p.MediaItems),
	}
	for _, c := range p.Comments {
		if c.Status != publications.CommentActive {
			continue
		}
		stats.CommentsCount++
		if c.ParentCommentID != "" {
			stats.RepliesCount++
		}
		if stats.LastCommentAt == nil || c.CreatedAt.After(*stats.LastCommentAt) {
			at := c.CreatedAt
			stats.LastCommentAt = &at
		}
	}
	return stats, nil
}

func (r *publicationQueryRepo) GetAuthorStats(ctx context.Context, authorID string) (*publications.AuthorStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := &publications.AuthorStats{AuthorID: authorID}
	for _, p := range r.s.publications {
		if p.AuthorID != authorID || p.Status != publications.StatusPublished {
			continue
		}
		stats.PublicationsCount++
		stats.TotalLikes += len(p.Likes)
		stats.TotalComments += activeComments(p)
		stats.MediaItemsCount += len(p.MediaItems)
		if stats.LastPublishedAt == nil || p.CreatedAt.After(*stats.LastPublishedAt) {
			at := p.CreatedAt
			stats.LastPublishedAt = &at
		}
	}
	return stats, nil
}
