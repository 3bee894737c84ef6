package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilber023/poust-microservicio/internal/core/paging"
	"github.com/wilber023/poust-microservicio/internal/core/profiles"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

func testClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func savePublication(t *testing.T, repo publications.Repository, clock func() time.Time, authorID, text string) *publications.Publication {
	t.Helper()
	p, err := publications.NewPublication(publications.NewPublicationID().String(), authorID, text,
		publications.WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func saveProfile(t *testing.T, repo profiles.Repository, username string, interests ...string) *profiles.UserProfile {
	t.Helper()
	u, err := profiles.NewUserProfile(profiles.NewUserID().String(), username, "", profiles.WithClock(testClock()))
	require.NoError(t, err)
	if len(interests) > 0 {
		require.NoError(t, u.UpdateInterests(interests))
	}
	require.NoError(t, repo.Save(context.Background(), u))
	return u
}

func TestPublicationRepo_VersionCheck(t *testing.T) {
	s := NewStore()
	repo := NewPublicationRepository(s)
	ctx := context.Background()

	p := savePublication(t, repo, testClock(), "author-1", "hello")
	assert.Equal(t, int64(1), p.Version())

	first, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)

	_, err = first.Like("user-2")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	_, err = second.Like("user-3")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, second), publications.ErrConcurrentModification)
	assert.Equal(t, int64(1), second.Version())

	loaded, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"user-2"}, loaded.Likes())

	require.NoError(t, repo.Delete(ctx, p.ID()))
	_, err = repo.FindByID(ctx, p.ID())
	assert.ErrorIs(t, err, publications.ErrPublicationNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, p.ID()), publications.ErrPublicationNotFound)
}

func TestPublicationRepo_StoreIsolation(t *testing.T) {
	repo := NewPublicationRepository(NewStore())
	ctx := context.Background()

	p := savePublication(t, repo, testClock(), "author-1", "hello")
	_, err := p.Like("user-2")
	require.NoError(t, err)

	loaded, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Zero(t, loaded.LikesCount(), "unsaved changes never reach the store")
}

func TestPublicationQueryRepo(t *testing.T) {
	s := NewStore()
	repo := NewPublicationRepository(s)
	queries := NewPublicationQueryRepository(s)
	ctx := context.Background()
	clock := testClock()

	public := savePublication(t, repo, clock, "author-1", "Hello Gophers")
	private := savePublication(t, repo, clock, "author-1", "secret")
	require.NoError(t, private.ChangeVisibility("private"))
	require.NoError(t, repo.Save(ctx, private))

	_, err := public.Like("user-2")
	require.NoError(t, err)
	root, err := public.AddComment("user-2", "hi", "")
	require.NoError(t, err)
	_, err = public.AddComment("author-1", "hello back", root.CommentID)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, public))

	page, err := queries.List(ctx, publications.ListFilter{}, paging.Request{})
	require.NoError(t, err)
	require.Len(t, page.Publications, 1)
	assert.Equal(t, public.ID().String(), page.Publications[0].ID)
	assert.Equal(t, 2, page.Publications[0].CommentsCount)

	all, err := queries.FindByAuthor(ctx, "author-1", paging.Request{})
	require.NoError(t, err)
	require.Len(t, all.Publications, 2)
	assert.Equal(t, private.ID().String(), all.Publications[0].ID, "newest first")

	found, err := queries.Search(ctx, publications.SearchCriteria{Query: "GOPHER"}, paging.Request{})
	require.NoError(t, err)
	assert.Len(t, found.Publications, 1)

	liked, err := queries.GetLikedByUser(ctx, "user-2", paging.Request{})
	require.NoError(t, err)
	assert.Len(t, liked.Publications, 1)

	replies, err := queries.GetCommentReplies(ctx, public.ID(), root.CommentID, paging.Request{})
	require.NoError(t, err)
	require.Len(t, replies.Comments, 1)
	assert.Equal(t, "hello back", replies.Comments[0].Text)

	likes, err := queries.GetLikes(ctx, public.ID(), paging.Request{})
	require.NoError(t, err)
	require.Len(t, likes.Likes, 1)
	assert.Equal(t, "user-2", likes.Likes[0].UserID)

	stats, err := queries.GetPublicationStats(ctx, public.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LikesCount)
	assert.Equal(t, 2, stats.CommentsCount)
	assert.Equal(t, 1, stats.RepliesCount)

	_, err = queries.GetPublicationStats(ctx, publications.NewPublicationID())
	assert.ErrorIs(t, err, publications.ErrPublicationNotFound)

	author, err := queries.GetAuthorStats(ctx, "author-1")
	require.NoError(t, err)
	assert.Equal(t, 2, author.PublicationsCount)
	assert.Equal(t, 1, author.TotalLikes)
}

func TestProfileRepo_UsernameAndVersion(t *testing.T) {
	s := NewStore()
	repo := NewProfileRepository(s)
	ctx := context.Background()

	alice := saveProfile(t, repo, "alice", "go")
	dup, err := profiles.NewUserProfile(profiles.NewUserID().String(), "alice", "")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, dup), profiles.ErrUsernameTaken)

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.Snapshot(), byName.Snapshot())

	stale, err := repo.FindByID(ctx, alice.ID())
	require.NoError(t, err)
	require.NoError(t, alice.UpdateInterests([]string{"rust"}))
	require.NoError(t, repo.Save(ctx, alice))
	require.NoError(t, stale.UpdateInterests([]string{"zig"}))
	assert.ErrorIs(t, repo.Save(ctx, stale), profiles.ErrConcurrentModification)

	exists, err := repo.Exists(ctx, alice.ID())
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, repo.Delete(ctx, alice.ID()))
	assert.ErrorIs(t, repo.Delete(ctx, alice.ID()), profiles.ErrProfileNotFound)
}

func TestProfileQueryRepo(t *testing.T) {
	s := NewStore()
	repo := NewProfileRepository(s)
	queries := NewProfileQueryRepository(s)
	ctx := context.Background()

	alice := saveProfile(t, repo, "alice", "go", "chess")
	bob := saveProfile(t, repo, "bob", "go")
	carol := saveProfile(t, repo, "carol", "Go", "chess")
	dave := saveProfile(t, repo, "dave")

	_, err := alice.AddFriend(bob.ID().String())
	require.NoError(t, err)
	_, err = alice.BlockUser(dave.ID().String())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, alice))

	available, err := queries.IsUsernameAvailable(ctx, "alice", alice.ID().String())
	require.NoError(t, err)
	assert.True(t, available)

	friends, err := queries.GetFriends(ctx, alice.ID().String(), paging.Request{})
	require.NoError(t, err)
	require.Len(t, friends.Profiles, 1)
	assert.Equal(t, "bob", friends.Profiles[0].Username)

	found, err := queries.Search(ctx, "CAR", paging.Request{})
	require.NoError(t, err)
	require.Len(t, found.Profiles, 1)
	assert.Equal(t, carol.ID().String(), found.Profiles[0].ID)

	suggestions, err := queries.GetFriendSuggestions(ctx, alice.ID().String(), 10)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "carol", suggestions[0].Username)
	assert.Equal(t, 2, suggestions[0].SharedInterests)

	stats, err := queries.GetProfileStats(ctx, alice.ID().String())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FriendsCount)
	assert.Equal(t, 1, stats.BlockedUsersCount)

	_, err = queries.GetProfileStats(ctx, profiles.NewUserID().String())
	assert.ErrorIs(t, err, profiles.ErrProfileNotFound)
}

func TestFeeds(t *testing.T) {
	s := NewStore()
	profileRepo := NewProfileRepository(s)
	pubRepo := NewPublicationRepository(s)
	feeds := NewTimelineRepository(s)
	discoverRepo := NewDiscoverRepository(s)
	ctx := context.Background()
	clock := testClock()

	alice := saveProfile(t, profileRepo, "alice")
	bob := saveProfile(t, profileRepo, "bob")
	_, err := bob.AddFriend(alice.ID().String())
	require.NoError(t, err)
	require.NoError(t, profileRepo.Save(ctx, bob))

	friendsOnly := savePublication(t, pubRepo, clock, alice.ID().String(), "for friends")
	require.NoError(t, friendsOnly.ChangeVisibility(string(publications.VisibilityFriends)))
	require.NoError(t, pubRepo.Save(ctx, friendsOnly))
	open := savePublication(t, pubRepo, clock, alice.ID().String(), "for everyone")

	page, err := feeds.GetFeedForUser(ctx, bob.ID().String(), paging.Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Total, "alice has not friended bob")

	_, err = alice.AddFriend(bob.ID().String())
	require.NoError(t, err)
	require.NoError(t, profileRepo.Save(ctx, alice))

	page, err = feeds.GetTimeline(ctx, bob.ID().String(), []string{alice.ID().String()}, paging.Request{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Total)

	_, err = bob.BlockUser(alice.ID().String())
	require.NoError(t, err)
	require.NoError(t, profileRepo.Save(ctx, bob))
	page, err = feeds.GetFeedForUser(ctx, bob.ID().String(), paging.Request{})
	require.NoError(t, err)
	assert.Zero(t, page.Pagination.Total)

	_, err = friendsOnly.Like("user-9")
	require.NoError(t, err)
	require.NoError(t, pubRepo.Save(ctx, friendsOnly))
	for _, user := range []string{"u1", "u2"} {
		_, err = open.Like(user)
		require.NoError(t, err)
	}
	require.NoError(t, pubRepo.Save(ctx, open))

	popular, err := discoverRepo.GetPopular(ctx, nil, paging.Request{})
	require.NoError(t, err)
	require.Len(t, popular.Publications, 1, "only public publications are discoverable")
	assert.Equal(t, open.ID().String(), popular.Publications[0].ID)

	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	popular, err = discoverRepo.GetPopular(ctx, &future, paging.Request{})
	require.NoError(t, err)
	assert.Empty(t, popular.Publications)
}
