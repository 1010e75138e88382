package comments_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OlmosJT/studio-tarjimon-io/comments"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestFixture(t *testing.T) *comments.InMemoryRepo {
	t.Helper()
	return comments.NewInMemoryRepo(comments.WithNowFunc(func() time.Time { return fixedNow }))
}

func translator() comments.Author {
	return comments.Author{Username: "Olmos Davronov", AvatarURL: "/avatar-default.png"}
}

func TestList_Seeded(t *testing.T) {
	repo := setupTestFixture(t)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Nil(t, list[0].ParentCommentID)
	require.Len(t, list[1].Replies, 1)
	require.Equal(t, "uuid-c2", *list[1].Replies[0].ParentCommentID)
}

func TestReply_InheritsChapterAndContext(t *testing.T) {
	repo := setupTestFixture(t)
	ctx := context.Background()

	reply, err := repo.Reply(ctx, comments.Reply{ParentID: "uuid-c1", UserID: "u1", Author: translator(), Content: "It was planned all along."})
	require.NoError(t, err)
	require.Equal(t, "chapter-uuid-1", reply.ChapterID)
	require.Equal(t, "The King's Avatar", reply.Context.ProjectTitle)
	require.Equal(t, "uuid-c1", *reply.ParentCommentID)
	require.Equal(t, fixedNow, reply.CreatedAt)
	require.False(t, reply.IsSpoiler)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list[0].Replies, 1)
	require.Equal(t, reply.ID, list[0].Replies[0].ID)
}

func TestReply_ToNestedReply(t *testing.T) {
	repo := setupTestFixture(t)
	ctx := context.Background()

	reply, err := repo.Reply(ctx, comments.Reply{ParentID: "uuid-reply-1", UserID: "u1", Author: translator(), Content: "More soon"})
	require.NoError(t, err)
	require.Equal(t, "chapter-uuid-50", reply.ChapterID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list[1].Replies[0].Replies, 1)
}

func TestReply_Invalid(t *testing.T) {
	repo := setupTestFixture(t)
	ctx := context.Background()

	_, err := repo.Reply(ctx, comments.Reply{ParentID: "uuid-c1", Content: "   "})
	require.ErrorIs(t, err, errors.ErrInvalidRequest)

	_, err = repo.Reply(ctx, comments.Reply{ParentID: "missing", Content: "hi"})
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestList_ReturnsCopies(t *testing.T) {
	repo := setupTestFixture(t)
	ctx := context.Background()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	list[1].Replies[0].Content = "changed"

	again, err := repo.List(ctx)
	require.NoError(t, err)
	require.NotEqual(t, "changed", again[1].Replies[0].Content)
}
