package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blognest/models"
)

func newTestStore(t *testing.T) (*MemoryStore, context.Context) {
	t.Helper()
	return NewMemoryStore(), context.Background()
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	s, ctx := newTestStore(t)
	author := primitive.NewObjectID()

	created, err := s.Create(ctx, author, CreatePostInput{
		Title:   "First post",
		Content: "Hello",
		Tags:    []string{"go", "mongo"},
		Image:   "https://example.com/pic.png",
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "First post", got.Title)
	assert.Equal(t, "Hello", got.Content)
	assert.Equal(t, []string{"go", "mongo"}, got.Tags)
	assert.Equal(t, "https://example.com/pic.png", got.Image)
	assert.Equal(t, author, got.Author)
	assert.Empty(t, got.Likes)
	assert.Empty(t, got.Comments)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestCreateDefaultsAndValidation(t *testing.T) {
	s, ctx := newTestStore(t)
	author := primitive.NewObjectID()

	post, err := s.Create(ctx, author, CreatePostInput{Title: "T", Content: "C"})
	require.NoError(t, err)
	assert.NotNil(t, post.Tags)
	assert.Empty(t, post.Tags)

	_, err = s.Create(ctx, author, CreatePostInput{Title: "  ", Content: "C"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Create(ctx, author, CreatePostInput{Title: "T", Content: ""})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestGetMissingPost(t *testing.T) {
	s, ctx := newTestStore(t)
	_, err := s.Get(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleLikePairIsIdempotent(t *testing.T) {
	s, ctx := newTestStore(t)
	author := primitive.NewObjectID()
	liker := primitive.NewObjectID()

	post, err := s.Create(ctx, author, CreatePostInput{Title: "T", Content: "C"})
	require.NoError(t, err)

	liked, err := s.ToggleLike(ctx, liker, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{liker}, liked.Likes)

	unliked, err := s.ToggleLike(ctx, liker, post.ID)
	require.NoError(t, err)
	assert.Empty(t, unliked.Likes)
}

func TestToggleLikeKeepsOtherUsers(t *testing.T) {
	s, ctx := newTestStore(t)
	author := primitive.NewObjectID()
	u1 := primitive.NewObjectID()
	u2 := primitive.NewObjectID()

	post, err := s.Create(ctx, author, CreatePostInput{Title: "T", Content: "C"})
	require.NoError(t, err)

	_, err = s.ToggleLike(ctx, u1, post.ID)
	require.NoError(t, err)
	_, err = s.ToggleLike(ctx, u2, post.ID)
	require.NoError(t, err)

	got, err := s.ToggleLike(ctx, u1, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{u2}, got.Likes)
}

func TestToggleLikeMissingPost(t *testing.T) {
	s, ctx := newTestStore(t)
	_, err := s.ToggleLike(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOwnershipGate(t *testing.T) {
	s, ctx := newTestStore(t)
	author := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	post, err := s.Create(ctx, author, CreatePostInput{Title: "Mine", Content: "C"})
	require.NoError(t, err)

	title := "Hijacked"
	_, err = s.Update(ctx, stranger, post.ID, PostPatch{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	unchanged, err := s.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", unchanged.Title)

	updated, err := s.Update(ctx, author, post.ID, PostPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Hijacked", updated.Title)
}

func TestUpdatePatchSemantics(t *testing.T) {
	s, ctx := newTestStore(t)
	author := primitive.NewObjectID()

	post, err := s.Create(ctx, author, CreatePostInput{
		Title:   "T",
		Content: "C",
		Tags:    []string{"old"},
		Image:   "img.png",
	})
	require.NoError(t, err)

	// Only the content field is present: everything else stays put.
	content := "new content"
	updated, err := s.Update(ctx, author, post.ID, PostPatch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "T", updated.Title)
	assert.Equal(t, "new content", updated.Content)
	assert.Equal(t, []string{"old"}, updated.Tags)
	assert.Equal(t, "img.png", updated.Image)
	assert.False(t, updated.UpdatedAt.Before(post.UpdatedAt))

	tags := []string{}
	image := ""
	updated, err = s.Update(ctx, author, post.ID, PostPatch{Tags: &tags, Image: &image})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
	assert.Empty(t, updated.Image)

	empty := " "
	_, err = s.Update(ctx, author, post.ID, PostPatch{Title: &empty})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Update(ctx, author, primitive.NewObjectID(), PostPatch{Content: &content})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOwnershipGate(t *testing.T) {
	s, ctx := newTestStore(t)
	author := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	post, err := s.Create(ctx, author, CreatePostInput{Title: "T", Content: "C"})
	require.NoError(t, err)

	err = s.Delete(ctx, stranger, post.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.Get(ctx, post.ID)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, author, post.ID))

	_, err = s.Get(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Delete(ctx, author, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddCommentAppendsInOrder(t *testing.T) {
	s, ctx := newTestStore(t)
	author := primitive.NewObjectID()
	commenter := primitive.NewObjectID()

	post, err := s.Create(ctx, author, CreatePostInput{Title: "T", Content: "C"})
	require.NoError(t, err)

	for i, text := range []string{"first", "second", "third"} {
		got, err := s.AddComment(ctx, commenter, post.ID, text)
		require.NoError(t, err)
		require.Len(t, got.Comments, i+1)
		assert.Equal(t, text, got.Comments[i].Text)
		assert.Equal(t, commenter, got.Comments[i].User)
	}

	got, err := s.Get(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 3)
	assert.Equal(t, "first", got.Comments[0].Text)
	assert.Equal(t, "second", got.Comments[1].Text)
	assert.Equal(t, "third", got.Comments[2].Text)
}

func TestAddCommentValidation(t *testing.T) {
	s, ctx := newTestStore(t)
	author := primitive.NewObjectID()

	post, err := s.Create(ctx, author, CreatePostInput{Title: "T", Content: "C"})
	require.NoError(t, err)

	_, err = s.AddComment(ctx, author, post.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.AddComment(ctx, author, primitive.NewObjectID(), "hi")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPagination(t *testing.T) {
	s, ctx := newTestStore(t)
	author := primitive.NewObjectID()

	created := make(map[primitive.ObjectID]bool)
	for i := 0; i < 25; i++ {
		post, err := s.Create(ctx, author, CreatePostInput{Title: "T", Content: "C"})
		require.NoError(t, err)
		created[post.ID] = true
	}

	first, err := s.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(25), first.TotalPosts)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, 1, first.CurrentPage)
	assert.Len(t, first.Posts, 10)

	// Concatenating every page yields each post exactly once, newest first.
	seen := make(map[primitive.ObjectID]bool)
	var prev *models.Post
	for page := 1; page <= first.TotalPages; page++ {
		result, err := s.List(ctx, page, 10)
		require.NoError(t, err)
		for i := range result.Posts {
			p := result.Posts[i]
			assert.False(t, seen[p.ID], "post repeated across pages")
			seen[p.ID] = true
			if prev != nil {
				assert.False(t, p.CreatedAt.After(prev.CreatedAt), "pages out of order")
			}
			prev = &result.Posts[i]
		}
	}
	assert.Equal(t, created, seen)

	beyond, err := s.List(ctx, 4, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond.Posts)
	assert.Equal(t, 4, beyond.CurrentPage)
}

func TestListDefaults(t *testing.T) {
	s, ctx := newTestStore(t)
	author := primitive.NewObjectID()

	for i := 0; i < 12; i++ {
		_, err := s.Create(ctx, author, CreatePostInput{Title: "T", Content: "C"})
		require.NoError(t, err)
	}

	result, err := s.List(ctx, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CurrentPage)
	assert.Len(t, result.Posts, DefaultLimit)
	assert.Equal(t, 2, result.TotalPages)
}

func TestListFarPageIsEmpty(t *testing.T) {
	s, ctx := newTestStore(t)
	author := primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		_, err := s.Create(ctx, author, CreatePostInput{Title: "T", Content: "C"})
		require.NoError(t, err)
	}

	// Page numbers big enough that page*limit no longer fits in an int
	// must still come back as an empty page, not a panic or an error.
	for _, page := range []int{1<<62 + 1, math.MaxInt, 4} {
		result, err := s.List(ctx, page, 2)
		require.NoError(t, err, "page %d", page)
		assert.Empty(t, result.Posts)
		assert.Equal(t, page, result.CurrentPage)
		assert.Equal(t, int64(3), result.TotalPosts)
		assert.Equal(t, 2, result.TotalPages)
	}
}

// The end-to-end walk from the product brief: create, like, unlike,
// comment, reject a foreign edit, apply the author's edit.
func TestPostLifecycleScenario(t *testing.T) {
	s, ctx := newTestStore(t)
	u1 := primitive.NewObjectID()
	u2 := primitive.NewObjectID()

	post, err := s.Create(ctx, u1, CreatePostInput{Title: "A", Content: "B"})
	require.NoError(t, err)

	got, err := s.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)

	got, err = s.ToggleLike(ctx, u2, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{u2}, got.Likes)

	got, err = s.ToggleLike(ctx, u2, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)

	got, err = s.AddComment(ctx, u2, post.ID, "nice")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "nice", got.Comments[0].Text)

	title := "X"
	_, err = s.Update(ctx, u2, post.ID, PostPatch{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err = s.Update(ctx, u1, post.ID, PostPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "X", got.Title)
}
