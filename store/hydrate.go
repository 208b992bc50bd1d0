package store

import (
	"context"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blognest/models"
)

// HydratePost builds the response view of one post, resolving the
// author and every commenter through the directory in a single lookup.
// Ids without an account fall back to a zero UserRef carrying the id.
func HydratePost(ctx context.Context, dir UserDirectory, post models.Post) (models.PostView, error) {
	ids := append([]primitive.ObjectID{post.Author}, lo.Map(post.Comments,
		func(c models.Comment, _ int) primitive.ObjectID { return c.User })...)

	refs, err := dir.Resolve(ctx, lo.Uniq(ids))
	if err != nil {
		return models.PostView{}, err
	}
	return viewOf(post, refs, true), nil
}

// HydratePosts builds listing views: authors resolved, comments carried
// as counts-only shells without commenter display fields.
func HydratePosts(ctx context.Context, dir UserDirectory, posts []models.Post) ([]models.PostView, error) {
	authors := lo.Uniq(lo.Map(posts,
		func(p models.Post, _ int) primitive.ObjectID { return p.Author }))

	refs, err := dir.Resolve(ctx, authors)
	if err != nil {
		return nil, err
	}
	return lo.Map(posts, func(p models.Post, _ int) models.PostView {
		return viewOf(p, refs, false)
	}), nil
}

func viewOf(post models.Post, refs map[primitive.ObjectID]models.UserRef, withCommenters bool) models.PostView {
	comments := lo.Map(post.Comments, func(c models.Comment, _ int) models.CommentView {
		user := models.UserRef{ID: c.User}
		if withCommenters {
			if ref, ok := refs[c.User]; ok {
				user = ref
			}
		}
		return models.CommentView{
			ID:        c.ID,
			User:      user,
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		}
	})

	author := models.UserRef{ID: post.Author}
	if ref, ok := refs[post.Author]; ok {
		author = ref
	}

	return models.PostView{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Author:    author,
		Tags:      post.Tags,
		Image:     post.Image,
		Likes:     post.Likes,
		Comments:  comments,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}
