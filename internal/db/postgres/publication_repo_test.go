package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilber023/poust-microservicio/internal/core/paging"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

func testClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newSavedPublication(t *testing.T, repo publications.Repository, authorID, text string) *publications.Publication {
	t.Helper()
	p, err := publications.NewPublication(publications.NewPublicationID().String(), authorID, text,
		publications.WithClock(testClock()))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func TestPublicationRepo_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPublicationRepository(db)
	ctx := context.Background()

	p := newSavedPublication(t, repo, "author-1", "hello world")
	assert.Equal(t, int64(1), p.Version())

	added, err := p.AddMediaItem(publications.MediaImage, "https://cdn.test/a.png", "a.png", 2048, nil)
	require.NoError(t, err)
	require.NoError(t, p.AttachStorageData(added.MediaItemID, "publications/a", map[string]any{"format": "png"}, 640, 480, 0))
	_, err = p.Like("user-2")
	require.NoError(t, err)
	root, err := p.AddComment("user-2", "nice", "")
	require.NoError(t, err)
	_, err = p.AddComment("author-1", "thanks", root.CommentID)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))
	assert.Equal(t, int64(2), p.Version())

	loaded, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version())
	assert.Equal(t, publications.TypeTextImage, loaded.Type())
	assert.Equal(t, 1, loaded.LikesCount())
	assert.Equal(t, 2, loaded.CommentsCount())
	require.Len(t, loaded.MediaItems(), 1)
	item := loaded.MediaItems()[0]
	assert.Equal(t, "publications/a", item.PublicID())
	assert.Equal(t, float64(640), item.Metadata()[publications.MetaWidth])
	assert.Len(t, loaded.Replies(root.CommentID), 1)

	var likes, comments int
	require.NoError(t, db.QueryRow(`SELECT likes_count, comments_count FROM publications WHERE id = $1`,
		p.ID().String()).Scan(&likes, &comments))
	assert.Equal(t, 1, likes)
	assert.Equal(t, 2, comments)
}

func TestPublicationRepo_Reconciliation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPublicationRepository(db)
	ctx := context.Background()

	p := newSavedPublication(t, repo, "author-1", "hello")
	added, err := p.AddMediaItem(publications.MediaImage, "https://cdn.test/a.png", "a.png", 10, nil)
	require.NoError(t, err)
	_, err = p.Like("user-2")
	require.NoError(t, err)
	c, err := p.AddComment("user-2", "first", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	_, err = p.RemoveMediaItem(added.MediaItemID)
	require.NoError(t, err)
	_, err = p.Unlike("user-2")
	require.NoError(t, err)
	_, err = p.DeleteComment(c.CommentID, "user-2")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	var deletedAt sql.NullTime
	require.NoError(t, db.QueryRow(`SELECT deleted_at FROM media_items WHERE id = $1`, added.MediaItemID).Scan(&deletedAt))
	assert.True(t, deletedAt.Valid, "removed media is soft-deleted")

	var likeRows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM publication_likes WHERE publication_id = $1`, p.ID().String()).Scan(&likeRows))
	assert.Zero(t, likeRows, "removed likes are hard-deleted")

	var status string
	require.NoError(t, db.QueryRow(`SELECT status FROM comments WHERE id = $1`, c.CommentID).Scan(&status))
	assert.Equal(t, "deleted", status)

	loaded, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Zero(t, loaded.MediaItemsCount())
	assert.Zero(t, loaded.CommentsCount())
	require.Len(t, loaded.Comments(), 1)
}

func TestPublicationRepo_StaleVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPublicationRepository(db)
	ctx := context.Background()

	p := newSavedPublication(t, repo, "author-1", "hello")
	first, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)

	_, err = first.Like("user-2")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	_, err = second.Like("user-3")
	require.NoError(t, err)
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, publications.ErrConcurrentModification)
	assert.True(t, publications.IsConflict(err))
	assert.Equal(t, int64(1), second.Version(), "failed save leaves the version unchanged")

	duplicate, err := publications.NewPublication(p.ID().String(), "author-1", "again")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, duplicate), publications.ErrConcurrentModification)
}

func TestPublicationRepo_DeleteAndExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPublicationRepository(db)
	ctx := context.Background()

	p := newSavedPublication(t, repo, "author-1", "bye")
	exists, err := repo.Exists(ctx, p.ID())
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, p.ID()))
	exists, err = repo.Exists(ctx, p.ID())
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindByID(ctx, p.ID())
	assert.ErrorIs(t, err, publications.ErrPublicationNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, p.ID()), publications.ErrPublicationNotFound)
}

func TestPublicationQueryRepo_ListsAndStats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPublicationRepository(db)
	queries := NewPublicationQueryRepository(db)
	ctx := context.Background()

	public := newSavedPublication(t, repo, "author-1", "Hello Gophers")
	private := newSavedPublication(t, repo, "author-1", "secret")
	require.NoError(t, private.ChangeVisibility("private"))
	require.NoError(t, repo.Save(ctx, private))
	_, err := public.Like("user-2")
	require.NoError(t, err)
	_, err = public.AddComment("user-2", "hi", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, public))

	page, err := queries.List(ctx, publications.ListFilter{}, paging.Request{})
	require.NoError(t, err)
	require.Len(t, page.Publications, 1)
	assert.Equal(t, public.ID().String(), page.Publications[0].ID)
	assert.Equal(t, 1, page.Publications[0].LikesCount)
	assert.Equal(t, paging.Info{Total: 1, Page: 1, Limit: 10, Pages: 1}, page.Pagination)

	all, err := queries.FindByAuthor(ctx, "author-1", paging.Request{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Pagination.Total)

	found, err := queries.Search(ctx, publications.SearchCriteria{Query: "gopher"}, paging.Request{})
	require.NoError(t, err)
	assert.Len(t, found.Publications, 1)

	wildcard, err := queries.Search(ctx, publications.SearchCriteria{Query: "%"}, paging.Request{})
	require.NoError(t, err)
	assert.Empty(t, wildcard.Publications)

	liked, err := queries.GetLikedByUser(ctx, "user-2", paging.Request{})
	require.NoError(t, err)
	assert.Len(t, liked.Publications, 1)

	hasLiked, err := queries.HasUserLiked(ctx, public.ID(), "user-2")
	require.NoError(t, err)
	assert.True(t, hasLiked)

	stats, err := queries.GetPublicationStats(ctx, public.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LikesCount)
	assert.Equal(t, 1, stats.CommentsCount)
	assert.NotNil(t, stats.LastCommentAt)

	_, err = queries.GetPublicationStats(ctx, publications.NewPublicationID())
	assert.ErrorIs(t, err, publications.ErrPublicationNotFound)

	comments, err := queries.GetComments(ctx, public.ID(), paging.Request{})
	require.NoError(t, err)
	assert.Len(t, comments.Comments, 1)

	author, err := queries.GetAuthorStats(ctx, "author-1")
	require.NoError(t, err)
	assert.Equal(t, 2, author.PublicationsCount)
	assert.Equal(t, 1, author.TotalLikes)
}
