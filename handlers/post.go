package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blognest/middleware"
	"blognest/store"
)

const requestTimeout = 10 * time.Second

// PostHandler serves the post routes over an injected store and the
// user directory used for response hydration.
type PostHandler struct {
	Store store.PostStore
	Users store.UserDirectory
}

type CreatePostRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags"`
	Image   string   `json:"image"`
}

type UpdatePostRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
	Image   *string   `json:"image"`
}

type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// List handles GET /api/posts?page=&limit=.
func (h *PostHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	result, err := h.Store.List(ctx, page, limit)
	if err != nil {
		abortStoreErr(c, err)
		return
	}

	views, err := store.HydratePosts(ctx, h.Users, result.Posts)
	if err != nil {
		abortStoreErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       views,
		"currentPage": result.CurrentPage,
		"totalPages":  result.TotalPages,
		"totalPosts":  result.TotalPosts,
	})
}

// Get handles GET /api/posts/:id.
func (h *PostHandler) Get(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	post, err := h.Store.Get(ctx, id)
	if err != nil {
		abortStoreErr(c, err)
		return
	}

	view, err := store.HydratePost(ctx, h.Users, post)
	if err != nil {
		abortStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Create handles POST /api/posts.
func (h *PostHandler) Create(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	author, ok := requesterID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	post, err := h.Store.Create(ctx, author, store.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Image:   req.Image,
	})
	if err != nil {
		abortStoreErr(c, err)
		return
	}

	view, err := store.HydratePost(ctx, h.Users, post)
	if err != nil {
		abortStoreErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Update handles PUT /api/posts/:id. Only the author gets through.
func (h *PostHandler) Update(c *gin.Context) {
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	requester, ok := requesterID(c)
	if !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	post, err := h.Store.Update(ctx, requester, id, store.PostPatch{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Image:   req.Image,
	})
	if err != nil {
		abortStoreErr(c, err)
		return
	}

	view, err := store.HydratePost(ctx, h.Users, post)
	if err != nil {
		abortStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /api/posts/:id.
func (h *PostHandler) Delete(c *gin.Context) {
	requester, ok := requesterID(c)
	if !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.Store.Delete(ctx, requester, id); err != nil {
		abortStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post removed"})
}

// AddComment handles POST /api/posts/:id/comments.
func (h *PostHandler) AddComment(c *gin.Context) {
	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	requester, ok := requesterID(c)
	if !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	post, err := h.Store.AddComment(ctx, requester, id, req.Text)
	if err != nil {
		abortStoreErr(c, err)
		return
	}

	view, err := store.HydratePost(ctx, h.Users, post)
	if err != nil {
		abortStoreErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ToggleLike handles PUT /api/posts/:id/like.
func (h *PostHandler) ToggleLike(c *gin.Context) {
	requester, ok := requesterID(c)
	if !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	post, err := h.Store.ToggleLike(ctx, requester, id)
	if err != nil {
		abortStoreErr(c, err)
		return
	}

	view, err := store.HydratePost(ctx, h.Users, post)
	if err != nil {
		abortStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// requesterID reads the verified caller id the JWT middleware left in
// the context. A malformed id means a token minted for another system.
func requesterID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middleware.ContextUserID))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// postID parses the :id route parameter. A malformed id can never name
// an existing post, so it reads as not found.
func postID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func abortStoreErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
	case errors.Is(err, store.ErrForbidden):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized to modify this post"})
	case errors.Is(err, store.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		log.Printf("store error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
	}
}
