package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blognest/models"
)

// MemoryStore is a map-backed PostStore and UserStore with the same
// observable semantics as the Mongo implementation. Unit tests run the
// protocol against it so they need no running database.
type MemoryStore struct {
	mu    sync.RWMutex
	posts []models.Post
	users map[primitive.ObjectID]models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[primitive.ObjectID]models.User)}
}

func (s *MemoryStore) List(ctx context.Context, page, limit int) (PostPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := make([]models.Post, len(s.posts))
	copy(sorted, s.posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	total := len(sorted)
	items := []models.Post{}
	// The division-form guard keeps (page-1)*limit from overflowing on
	// absurd page numbers; past the last page is just an empty slice.
	if int64(page-1) <= int64(total)/int64(limit) {
		start := (page - 1) * limit
		if start > total {
			start = total
		}
		end := start + limit
		if end > total {
			end = total
		}
		for _, p := range sorted[start:end] {
			items = append(items, clonePost(p))
		}
	}

	return PostPage{
		Posts:       items,
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		TotalPosts:  int64(total),
	}, nil
}

func (s *MemoryStore) Get(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(id)
	if i < 0 {
		return models.Post{}, ErrNotFound
	}
	return clonePost(s.posts[i]), nil
}

func (s *MemoryStore) Create(ctx context.Context, author primitive.ObjectID, in CreatePostInput) (models.Post, error) {
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

	s.mu.Lock()
	s.posts = append(s.posts, clonePost(post))
	s.mu.Unlock()

	return post, nil
}

func (s *MemoryStore) Update(ctx context.Context, requester, id primitive.ObjectID, patch PostPatch) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return models.Post{}, ErrNotFound
	}
	if s.posts[i].Author != requester {
		return models.Post{}, ErrForbidden
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return models.Post{}, fmt.Errorf("%w: title cannot be empty", ErrInvalid)
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return models.Post{}, fmt.Errorf("%w: content cannot be empty", ErrInvalid)
	}

	post := &s.posts[i]
	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		post.Tags = append([]string{}, tags...)
	}
	if patch.Image != nil {
		post.Image = *patch.Image
	}
	post.UpdatedAt = time.Now().UTC()

	return clonePost(*post), nil
}

func (s *MemoryStore) Delete(ctx context.Context, requester, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	if s.posts[i].Author != requester {
		return ErrForbidden
	}

	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	return nil
}

func (s *MemoryStore) AddComment(ctx context.Context, requester, id primitive.ObjectID, text string) (models.Post, error) {
	if strings.TrimSpace(text) == "" {
		return models.Post{}, fmt.Errorf("%w: comment text is required", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return models.Post{}, ErrNotFound
	}

	now := time.Now().UTC()
	post := &s.posts[i]
	post.Comments = append(post.Comments, models.Comment{
		ID:        primitive.NewObjectID(),
		User:      requester,
		Text:      text,
		CreatedAt: now,
	})
	post.UpdatedAt = now

	return clonePost(*post), nil
}

func (s *MemoryStore) ToggleLike(ctx context.Context, requester, id primitive.ObjectID) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return models.Post{}, ErrNotFound
	}

	post := &s.posts[i]
	if post.HasLike(requester) {
		likes := make([]primitive.ObjectID, 0, len(post.Likes)-1)
		for _, uid := range post.Likes {
			if uid != requester {
				likes = append(likes, uid)
			}
		}
		post.Likes = likes
	} else {
		post.Likes = append(post.Likes, requester)
	}
	post.UpdatedAt = time.Now().UTC()

	return clonePost(*post), nil
}

func (s *MemoryStore) Insert(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Email == email })
}

func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Username == username })
}

func (s *MemoryStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryStore) Resolve(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := make(map[primitive.ObjectID]models.UserRef, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			refs[id] = u.Ref()
		}
	}
	return refs, nil
}

func (s *MemoryStore) findUser(match func(models.User) bool) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

// index returns the position of id in s.posts, or -1. Callers hold the lock.
func (s *MemoryStore) index(id primitive.ObjectID) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}

func clonePost(p models.Post) models.Post {
	p.Tags = append([]string{}, p.Tags...)
	p.Likes = append([]primitive.ObjectID{}, p.Likes...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	return p
}
