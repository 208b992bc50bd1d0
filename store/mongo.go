package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blognest/models"
)

// MongoPostStore keeps posts in a single MongoDB collection, one
// document per post with comments and likes embedded.
type MongoPostStore struct {
	posts *mongo.Collection
}

func NewMongoPostStore(posts *mongo.Collection) *MongoPostStore {
	return &MongoPostStore{posts: posts}
}

func (s *MongoPostStore) List(ctx context.Context, page, limit int) (PostPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	total, err := s.posts.CountDocuments(ctx, bson.M{})
	if err != nil {
		return PostPage{}, storeErr("count posts", err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	// Any page past the data is an empty list; the division-form guard
	// also keeps the skip product from overflowing int64 and reaching
	// the driver as a negative value.
	if int64(page-1) > total/int64(limit) {
		return PostPage{
			Posts:       []models.Post{},
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalPosts:  total,
		}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(page-1) * int64(limit)).
		SetLimit(int64(limit))

	cursor, err := s.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return PostPage{}, storeErr("find posts", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return PostPage{}, storeErr("decode posts", err)
	}

	return PostPage{
		Posts:       posts,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalPosts:  total,
	}, nil
}

func (s *MongoPostStore) Get(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var post models.Post
	err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		return models.Post{}, storeErr("find post", err)
	}
	return post, nil
}

func (s *MongoPostStore) Create(ctx context.Context, author primitive.ObjectID, in CreatePostInput) (models.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Post{}, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if strings.TrimSpace(in.Content) == "" {
		return models.Post{}, fmt.Errorf("%w: content is required", ErrInvalid)
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now().UTC()
	post := models.Post{
		ID:        primitive.NewObjectID(),
		Title:     in.Title,
		Content:   in.Content,
		Author:    author,
		Tags:      tags,
		Image:     in.Image,
		Likes:     []primitive.ObjectID{},
		Comments:  []models.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.posts.InsertOne(ctx, post); err != nil {
		return models.Post{}, storeErr("insert post", err)
	}
	return post, nil
}

func (s *MongoPostStore) Update(ctx context.Context, requester, id primitive.ObjectID, patch PostPatch) (models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if post.Author != requester {
		return models.Post{}, ErrForbidden
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return models.Post{}, fmt.Errorf("%w: title cannot be empty", ErrInvalid)
		}
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return models.Post{}, fmt.Errorf("%w: content cannot be empty", ErrInvalid)
		}
		set["content"] = *patch.Content
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Post
	err = s.posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return models.Post{}, storeErr("update post", err)
	}
	return updated, nil
}

func (s *MongoPostStore) Delete(ctx context.Context, requester, id primitive.ObjectID) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.Author != requester {
		return ErrForbidden
	}

	if _, err := s.posts.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storeErr("delete post", err)
	}
	return nil
}

func (s *MongoPostStore) AddComment(ctx context.Context, requester, id primitive.ObjectID, text string) (models.Post, error) {
	if strings.TrimSpace(text) == "" {
		return models.Post{}, fmt.Errorf("%w: comment text is required", ErrInvalid)
	}

	now := time.Now().UTC()
	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		User:      requester,
		Text:      text,
		CreatedAt: now,
	}

	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Post
	err := s.posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if err != nil {
		return models.Post{}, storeErr("append comment", err)
	}
	return updated, nil
}

// ToggleLike flips set membership in one pipeline update so that two
// racing toggles from the same user still land on a consistent set: the
// server evaluates membership and the new array inside a single
// per-document atomic write.
func (s *MongoPostStore) ToggleLike(ctx context.Context, requester, id primitive.ObjectID) (models.Post, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$in", Value: bson.A{requester, "$likes"}}},
				bson.D{{Key: "$setDifference", Value: bson.A{"$likes", bson.A{requester}}}},
				bson.D{{Key: "$concatArrays", Value: bson.A{"$likes", bson.A{requester}}}},
			}}}},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Post
	err := s.posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&updated)
	if err != nil {
		return models.Post{}, storeErr("toggle like", err)
	}
	return updated, nil
}

// storeErr maps driver errors onto the package taxonomy: a missing
// document is ErrNotFound, anything else is ErrUnavailable.
func storeErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
