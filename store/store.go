// Package store owns the post aggregate: creation, lookup, paginated
// listing, ownership-gated edit and delete, comment append and like
// toggling. Every mutation touches exactly one document, so the backing
// store's per-document atomicity is the only concurrency control needed.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blognest/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// CreatePostInput carries the client-supplied fields of a new post.
// Author, timestamps, likes and comments are assigned by the store.
type CreatePostInput struct {
	Title   string
	Content string
	Tags    []string
	Image   string
}

// PostPatch is a partial update: nil fields are left untouched, non-nil
// fields overwrite. Author, likes and comments cannot be patched.
type PostPatch struct {
	Title   *string
	Content *string
	Tags    *[]string
	Image   *string
}

// PostPage is one page of the newest-first post listing.
type PostPage struct {
	Posts       []models.Post
	CurrentPage int
	TotalPages  int
	TotalPosts  int64
}

// PostStore is the post aggregate's mutation and access protocol.
type PostStore interface {
	// List returns posts sorted by creation time descending. Page and
	// limit below 1 fall back to the defaults; a page past the end
	// yields an empty slice, not an error.
	List(ctx context.Context, page, limit int) (PostPage, error)

	// Get returns one post or ErrNotFound.
	Get(ctx context.Context, id primitive.ObjectID) (models.Post, error)

	// Create validates title and content, stamps author and timestamps,
	// and inserts the post with empty likes and comments.
	Create(ctx context.Context, author primitive.ObjectID, in CreatePostInput) (models.Post, error)

	// Update applies the patch if requester is the author. Returns
	// ErrNotFound or ErrForbidden otherwise; refreshes updatedAt.
	Update(ctx context.Context, requester, id primitive.ObjectID, patch PostPatch) (models.Post, error)

	// Delete removes the post and its embedded comments permanently.
	// Same ownership gating as Update.
	Delete(ctx context.Context, requester, id primitive.ObjectID) error

	// AddComment appends a comment from requester to the end of the
	// post's comment list. Any authenticated user may comment.
	AddComment(ctx context.Context, requester, id primitive.ObjectID, text string) (models.Post, error)

	// ToggleLike adds requester to the likes set, or removes it if
	// already present. Two toggles by the same user cancel out.
	ToggleLike(ctx context.Context, requester, id primitive.ObjectID) (models.Post, error)
}

// UserStore holds accounts for the auth handlers.
type UserStore interface {
	UserDirectory

	Insert(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// UserDirectory resolves user ids to display fields for hydration.
// Unknown ids are simply absent from the result.
type UserDirectory interface {
	Resolve(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error)
}
