package publications

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
	"github.com/wilber023/poust-microservicio/internal/core/moderation"
)

const testPublicationID = "11111111-1111-1111-1111-111111111111"

// stepClock returns a clock that advances one second per call
func stepClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestPublication(t *testing.T, text string) *Publication {
	t.Helper()
	p, err := NewPublication(testPublicationID, "author-1", text, WithClock(stepClock()))
	require.NoError(t, err)
	return p
}

func addImage(t *testing.T, p *Publication, name string) string {
	t.Helper()
	ev, err := p.AddMediaItem(MediaImage, "https://cdn.test/"+name, name, 1024, nil)
	require.NoError(t, err)
	return ev.MediaItemID
}

func TestNewPublication_Defaults(t *testing.T) {
	p := newTestPublication(t, "hello")

	assert.Equal(t, testPublicationID, p.ID().String())
	assert.Equal(t, "author-1", p.AuthorID())
	assert.Equal(t, StatusPublished, p.Status())
	assert.Equal(t, VisibilityPublic, p.Visibility())
	assert.Equal(t, TypeText, p.Type())
	assert.Equal(t, int64(0), p.Version())
	assert.Equal(t, p.CreatedAt(), p.UpdatedAt())
}

func TestNewPublication_Validation(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		authorID string
		text     string
		wantErr  error
	}{
		{"bad id", "not-a-uuid", "author-1", "hi", ErrInvalidPublicationID},
		{"missing author", testPublicationID, "  ", "hi", ErrAuthorRequired},
		{"too long", testPublicationID, "author-1", strings.Repeat("a", MaxContentChars+1), ErrContentTooLong},
		{"inappropriate", testPublicationID, "author-1", "this is SPAM", ErrInappropriateContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPublication(tt.id, tt.authorID, tt.text)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewPublication_UppercaseIDAccepted(t *testing.T) {
	_, err := NewPublication("ABCDEF01-2345-6789-ABCD-EF0123456789", "author-1", "hi")
	assert.NoError(t, err)
}

func TestNewPublication_CustomPolicy(t *testing.T) {
	policy := moderation.NewDenylistPolicy("forbidden")

	_, err := NewPublication(testPublicationID, "author-1", "spam is fine here", WithModerationPolicy(policy))
	assert.NoError(t, err)

	_, err = NewPublication(testPublicationID, "author-1", "Forbidden word", WithModerationPolicy(policy))
	assert.ErrorIs(t, err, ErrInappropriateContent)
}

func TestContent_CountsGraphemes(t *testing.T) {
	// 5000 family emoji are 5000 characters even though each is several code points
	text := strings.Repeat("👨‍👩‍👧", MaxContentChars)
	c, err := NewContent(text, moderation.AllowAll)
	require.NoError(t, err)
	assert.Equal(t, MaxContentChars, c.CharactersCount())

	_, err = NewContent(text+"x", moderation.AllowAll)
	assert.ErrorIs(t, err, ErrContentTooLong)
}

func TestContent_Helpers(t *testing.T) {
	c, err := NewContent("  hello   wide world ", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, c.WordsCount())
	assert.False(t, c.IsEmpty())

	empty, err := NewContent("   ", nil)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
	assert.True(t, c.Equals(restoreContent("  hello   wide world ")))
}

func TestLike_Scenario(t *testing.T) {
	p := newTestPublication(t, "hello")

	ev, err := p.Like("user-2")
	require.NoError(t, err)
	assert.Equal(t, EventPublicationLiked, ev.EventType())
	assert.Equal(t, "user-2", ev.UserID)
	assert.Equal(t, testPublicationID, ev.AggregateID())
	assert.Equal(t, 1, p.LikesCount())
	assert.True(t, p.HasLikedBy("user-2"))

	_, err = p.Like("user-2")
	assert.ErrorIs(t, err, ErrAlreadyLiked)
	assert.Equal(t, 1, p.LikesCount())
}

func TestLike_Rules(t *testing.T) {
	p := newTestPublication(t, "hello")

	_, err := p.Like("author-1")
	assert.ErrorIs(t, err, ErrSelfLike)
	assert.True(t, errs.IsInvariantViolation(err))

	_, err = p.Like("")
	assert.ErrorIs(t, err, ErrUserRequired)

	_, err = p.Unlike("user-3")
	assert.ErrorIs(t, err, ErrNotLiked)

	_, err = p.Like("user-3")
	require.NoError(t, err)
	ev, err := p.Unlike("user-3")
	require.NoError(t, err)
	assert.Equal(t, EventPublicationUnliked, ev.EventType())
	assert.Equal(t, 0, p.LikesCount())
}

func TestLikes_Sorted(t *testing.T) {
	p := newTestPublication(t, "hello")
	for _, u := range []string{"zed", "amy", "kim"} {
		_, err := p.Like(u)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"amy", "kim", "zed"}, p.Likes())
}

func TestTypeDerivation(t *testing.T) {
	t.Run("media only takes first item type", func(t *testing.T) {
		p := newTestPublication(t, "")
		_, err := p.AddMediaItem(MediaVideo, "https://cdn.test/v.mp4", "v.mp4", 10, nil)
		require.NoError(t, err)
		assert.Equal(t, TypeVideo, p.Type())

		addImage(t, p, "a.png")
		assert.Equal(t, TypeVideo, p.Type())
	})

	t.Run("text and media is text_image", func(t *testing.T) {
		p := newTestPublication(t, "caption")
		id := addImage(t, p, "a.png")
		assert.Equal(t, TypeTextImage, p.Type())

		_, err := p.RemoveMediaItem(id)
		require.NoError(t, err)
		assert.Equal(t, TypeText, p.Type())
	})

	t.Run("clearing text leaves media type", func(t *testing.T) {
		p := newTestPublication(t, "caption")
		addImage(t, p, "a.png")
		require.NoError(t, p.UpdateText(""))
		assert.Equal(t, TypeImage, p.Type())
	})

	t.Run("explicit order decides first item", func(t *testing.T) {
		p := newTestPublication(t, "")
		zero := 0
		five := 5
		_, err := p.AddMediaItem(MediaImage, "https://cdn.test/a.png", "a.png", 1, &five)
		require.NoError(t, err)
		_, err = p.AddMediaItem(MediaVideo, "https://cdn.test/v.mp4", "v.mp4", 1, &zero)
		require.NoError(t, err)
		assert.Equal(t, TypeVideo, p.Type())
	})
}

func TestRemoveMediaItem_RenumbersOrder(t *testing.T) {
	p := newTestPublication(t, "gallery")
	ids := []string{addImage(t, p, "a.png"), addImage(t, p, "b.png"), addImage(t, p, "c.png")}

	ev, err := p.RemoveMediaItem(ids[1])
	require.NoError(t, err)
	assert.Equal(t, EventMediaItemRemoved, ev.EventType())

	items := p.MediaItems()
	require.Len(t, items, 2)
	assert.Equal(t, ids[0], items[0].ID())
	assert.Equal(t, 0, items[0].Order())
	assert.Equal(t, ids[2], items[1].ID())
	assert.Equal(t, 1, items[1].Order())

	_, err = p.RemoveMediaItem(ids[1])
	assert.ErrorIs(t, err, ErrMediaItemNotFound)
}

func TestAddMediaItem_Validation(t *testing.T) {
	p := newTestPublication(t, "x")
	negative := -1

	_, err := p.AddMediaItem("audio", "https://cdn.test/a", "a", 1, nil)
	assert.ErrorIs(t, err, ErrInvalidMediaType)

	_, err = p.AddMediaItem(MediaImage, "", "a.png", 1, nil)
	assert.ErrorIs(t, err, ErrInvalidMediaItem)

	_, err = p.AddMediaItem(MediaImage, "https://cdn.test/a", "a.png", 0, nil)
	assert.ErrorIs(t, err, ErrInvalidMediaItem)

	_, err = p.AddMediaItem(MediaImage, "https://cdn.test/a", "a.png", 1, &negative)
	assert.ErrorIs(t, err, ErrInvalidMediaItem)
	assert.Equal(t, 0, p.MediaItemsCount())
}

func TestAttachStorageData(t *testing.T) {
	p := newTestPublication(t, "x")
	id := addImage(t, p, "a.png")

	require.NoError(t, p.AttachStorageData(id, "publications/x/a", map[string]any{MetaFormat: "png"}, 640, 480, 0))
	item, ok := p.MediaItem(id)
	require.True(t, ok)
	assert.Equal(t, "publications/x/a", item.PublicID())
	assert.Equal(t, 640, item.Metadata()[MetaWidth])
	assert.Equal(t, "png", item.Metadata()[MetaFormat])

	err := p.AttachStorageData(id, "", nil, 0, 0, 0)
	assert.ErrorIs(t, err, ErrPublicIDRequired)
	item, _ = p.MediaItem(id)
	assert.Equal(t, "publications/x/a", item.PublicID())

	assert.ErrorIs(t, p.AttachStorageData("missing", "x", nil, 0, 0, 0), ErrMediaItemNotFound)
}

func TestMediaItems_ReturnsCopies(t *testing.T) {
	p := newTestPublication(t, "x")
	id := addImage(t, p, "a.png")

	items := p.MediaItems()
	require.NoError(t, items[0].SetStorageData("tampered", nil))

	item, _ := p.MediaItem(id)
	assert.Empty(t, item.PublicID())
}

func TestAddComment_AndReplies(t *testing.T) {
	p := newTestPublication(t, "hello")

	ev, err := p.AddComment("user-2", "first", "")
	require.NoError(t, err)
	assert.Equal(t, EventCommentAdded, ev.EventType())
	assert.Empty(t, ev.ParentCommentID)

	reply, err := p.AddComment("user-3", "reply", ev.CommentID)
	require.NoError(t, err)
	assert.Equal(t, ev.CommentID, reply.ParentCommentID)

	assert.Equal(t, 2, p.CommentsCount())
	replies := p.Replies(ev.CommentID)
	require.Len(t, replies, 1)
	assert.True(t, replies[0].IsReply())

	_, err = p.AddComment("user-2", "orphan", "missing")
	assert.ErrorIs(t, err, ErrParentCommentNotFound)
	assert.Equal(t, 2, p.CommentsCount())
}

func TestAddComment_Validation(t *testing.T) {
	p := newTestPublication(t, "hello")

	_, err := p.AddComment("user-2", "   ", "")
	assert.ErrorIs(t, err, ErrCommentTextRequired)

	_, err = p.AddComment("user-2", strings.Repeat("é", MaxCommentChars+1), "")
	assert.ErrorIs(t, err, ErrCommentTooLong)

	_, err = p.AddComment("", "text", "")
	assert.ErrorIs(t, err, ErrAuthorRequired)
}

func TestDeleteComment_Rules(t *testing.T) {
	p := newTestPublication(t, "hello")
	ev, err := p.AddComment("user-2", "first", "")
	require.NoError(t, err)

	_, err = p.DeleteComment(ev.CommentID, "user-9")
	assert.ErrorIs(t, err, ErrCommentDeleteNotAuthorized)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))

	// the publication author may delete someone else's comment
	deleted, err := p.DeleteComment(ev.CommentID, "author-1")
	require.NoError(t, err)
	assert.Equal(t, "author-1", deleted.DeletedBy)
	assert.Equal(t, 0, p.CommentsCount())

	c, ok := p.Comment(ev.CommentID)
	require.True(t, ok)
	assert.Equal(t, CommentStatusDeleted, c.Status())
	assert.Len(t, p.Comments(), 1)
	assert.Empty(t, p.View().Comments)

	_, err = p.DeleteComment(ev.CommentID, "user-2")
	assert.ErrorIs(t, err, ErrCommentAlreadyDeleted)

	_, err = p.DeleteComment("missing", "user-2")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestEditComment(t *testing.T) {
	p := newTestPublication(t, "hello")
	ev, err := p.AddComment("user-2", "first", "")
	require.NoError(t, err)

	_, err = p.EditComment(ev.CommentID, "author-1", "hijack")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	edited, err := p.EditComment(ev.CommentID, "user-2", "first, edited")
	require.NoError(t, err)
	assert.Equal(t, "user-2", edited.EditedBy)

	c, _ := p.Comment(ev.CommentID)
	assert.Equal(t, "first, edited", c.Text())
	assert.True(t, c.IsEdited())
	assert.True(t, c.UpdatedAt().After(c.CreatedAt()))

	_, err = p.DeleteComment(ev.CommentID, "user-2")
	require.NoError(t, err)
	_, err = p.EditComment(ev.CommentID, "user-2", "again")
	assert.ErrorIs(t, err, ErrCommentNotActive)
}

func TestHideComment(t *testing.T) {
	p := newTestPublication(t, "hello")
	ev, err := p.AddComment("user-2", "rude", "")
	require.NoError(t, err)

	_, err = p.HideComment(ev.CommentID, "user-2")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	hidden, err := p.HideComment(ev.CommentID, "author-1")
	require.NoError(t, err)
	assert.Equal(t, EventCommentHidden, hidden.EventType())
	assert.Equal(t, 0, p.CommentsCount())

	_, err = p.HideComment(ev.CommentID, "author-1")
	assert.ErrorIs(t, err, ErrCommentNotActive)
}

func TestComment_LikesNeverNegative(t *testing.T) {
	c, err := NewComment("c1", "user-2", "hi", testPublicationID, "", time.Now())
	require.NoError(t, err)

	c.DecrementLikes()
	assert.Equal(t, 0, c.LikesCount())
	c.IncrementLikes()
	c.IncrementLikes()
	c.DecrementLikes()
	assert.Equal(t, 1, c.LikesCount())
}

func TestStatusTransitions(t *testing.T) {
	p := newTestPublication(t, "hello")

	assert.ErrorIs(t, p.Publish(), ErrInvalidStatusTransition)
	require.NoError(t, p.Archive())
	assert.Equal(t, StatusArchived, p.Status())
	assert.ErrorIs(t, p.Archive(), ErrInvalidStatusTransition)
}

func TestChangeVisibility(t *testing.T) {
	p := newTestPublication(t, "hello")
	before := p.UpdatedAt()

	require.NoError(t, p.ChangeVisibility("friends"))
	assert.Equal(t, VisibilityFriends, p.Visibility())
	assert.True(t, p.UpdatedAt().After(before))

	assert.ErrorIs(t, p.ChangeVisibility("everyone"), ErrInvalidVisibility)
	assert.Equal(t, VisibilityFriends, p.Visibility())
}

func TestCanBeViewedBy(t *testing.T) {
	p := newTestPublication(t, "hello")

	assert.True(t, p.CanBeViewedBy("", false))

	require.NoError(t, p.ChangeVisibility("friends"))
	assert.True(t, p.CanBeViewedBy("author-1", false))
	assert.True(t, p.CanBeViewedBy("friend", true))
	assert.False(t, p.CanBeViewedBy("stranger", false))

	require.NoError(t, p.ChangeVisibility("private"))
	assert.True(t, p.CanBeViewedBy("author-1", false))
	assert.False(t, p.CanBeViewedBy("friend", true))
}

func TestViewFor(t *testing.T) {
	p := newTestPublication(t, "hello")
	_, err := p.Like("user-2")
	require.NoError(t, err)

	v := p.ViewFor("user-2")
	require.NotNil(t, v.HasLiked)
	assert.True(t, *v.HasLiked)
	assert.Equal(t, 1, v.LikesCount)

	assert.Nil(t, p.ViewFor("").HasLiked)
}

func TestNestComments(t *testing.T) {
	p := newTestPublication(t, "hello")
	root, err := p.AddComment("user-2", "root", "")
	require.NoError(t, err)
	_, err = p.AddComment("user-3", "child", root.CommentID)
	require.NoError(t, err)
	_, err = p.AddComment("user-4", "second root", "")
	require.NoError(t, err)

	nested := NestComments(p.View().Comments)
	require.Len(t, nested, 2)
	assert.Equal(t, "root", nested[0].Text)
	require.Len(t, nested[0].Replies, 1)
	assert.Equal(t, "child", nested[0].Replies[0].Text)
	assert.Empty(t, nested[1].Replies)
}

func TestParsePublicationID_Lowercases(t *testing.T) {
	const mixed = "ABCDEF01-2345-4789-ABCD-EF0123456789"
	id, err := ParsePublicationID(mixed)
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(mixed), id.String())
}
