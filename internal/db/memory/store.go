// Package memory provides in-process adapters for every repository port.
// Aggregates are stored as snapshots so callers never share state with the store.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/wilber023/poust-microservicio/internal/core/paging"
	"github.com/wilber023/poust-microservicio/internal/core/profiles"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

// Store holds publications and profiles in memory
type Store struct {
	mu           sync.RWMutex
	publications map[string]publications.Snapshot
	likedAt      map[string]map[string]time.Time // publication id -> user id -> like time
	profiles     map[string]profiles.Snapshot
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		publications: make(map[string]publications.Snapshot),
		likedAt:      make(map[string]map[string]time.Time),
		profiles:     make(map[string]profiles.Snapshot),
	}
}

// isFriend reports whether ownerID has friendID in their friends set.
// Callers hold s.mu.
func (s *Store) isFriend(ownerID, friendID string) bool {
	p, ok := s.profiles[ownerID]
	if !ok {
		return false
	}
	for _, f := range p.Friends {
		if f == friendID {
			return true
		}
	}
	return false
}

func (s *Store) isBlocked(ownerID, targetID string) bool {
	p, ok := s.profiles[ownerID]
	if !ok {
		return false
	}
	for _, b := range p.BlockedUsers {
		if b == targetID {
			return true
		}
	}
	return false
}

// visibleTo applies the friends-only rule shared with the postgres adapters
func (s *Store) visibleTo(p publications.Snapshot, viewerID string) bool {
	switch {
	case p.Visibility == publications.VisibilityPublic:
		return true
	case viewerID != "" && p.AuthorID == viewerID:
		return true
	case p.Visibility == publications.VisibilityFriends:
		return viewerID != "" && s.isFriend(p.AuthorID, viewerID)
	}
	return false
}

// page filters, sorts and paginates publication snapshots. Callers hold s.mu.
func (s *Store) page(keep func(publications.Snapshot) bool, less func(a, b publications.Snapshot) bool, req paging.Request) *publications.PublicationPage {
	matched := make([]publications.Snapshot, 0)
	for _, p := range s.publications {
		if keep(p) {
			matched = append(matched, p)
		}
	}
	if less == nil {
		less = newestFirst
	}
	sort.Slice(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	req = req.Normalize()
	window := paging.Slice(matched, req)
	out := make([]*publications.PublicationSummary, 0, len(window))
	for _, p := range window {
		out = append(out, summarize(p))
	}
	return &publications.PublicationPage{Publications: out, Pagination: paging.NewInfo(req, len(matched))}
}

func newestFirst(a, b publications.Snapshot) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func activeComments(p publications.Snapshot) int {
	n := 0
	for _, c := range p.Comments {
		if c.Status == publications.CommentActive {
			n++
		}
	}
	return n
}

func summarize(p publications.Snapshot) *publications.PublicationSummary {
	s := &publications.PublicationSummary{
		ID:            p.ID,
		AuthorID:      p.AuthorID,
		Text:          p.Text,
		Type:          p.Type,
		Status:        p.Status,
		Visibility:    p.Visibility,
		LikesCount:    len(p.Likes),
		CommentsCount: activeComments(p),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		MediaItems:    make([]*publications.MediaItemView, 0, len(p.MediaItems)),
	}
	for _, m := range p.MediaItems {
		v := &publications.MediaItemView{
			ID:            m.ID,
			PublicationID: p.ID,
			Type:          m.Type,
			URL:           m.URL,
			Filename:      m.Filename,
			Size:          m.Size,
			Order:         m.Order,
			CreatedAt:     m.CreatedAt,
			Metadata:      copyMap(m.Metadata),
		}
		if m.PublicID != "" {
			publicID := m.PublicID
			v.PublicID = &publicID
		}
		s.MediaItems = append(s.MediaItems, v)
	}
	return s
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
