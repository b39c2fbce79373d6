package service

import (
	"context"
	"errors"
	"strings"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/repository"

	"gorm.io/gorm"
)

const (
	maxTitleLen   = 100
	maxContentLen = 50000
)

// PostService implements post creation and retrieval.
type PostService struct {
	postRepo repository.PostRepository
	images   *ImageService
	db       *gorm.DB
}

// CreatePostInput is the payload for creating a post. Image is optional.
type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	Excerpt  string
	Category string
	Tags     []string
	Image    *ImageUpload
}

// NewPostService creates a new PostService. The DB handle scopes the post
// insert in a transaction so a failed submission never leaves partial state.
func NewPostService(postRepo repository.PostRepository, images *ImageService, db *gorm.DB) *PostService {
	return &PostService{
		postRepo: postRepo,
		images:   images,
		db:       db,
	}
}

// CreatePost validates input, persists an accepted featured image and
// creates the post. A rejected image aborts the whole submission: no post
// row and no stored file. A DB failure after the image write removes the
// already-written file.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, models.NewValidationError("Please fill title and content fields.")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 100 characters)")
	}
	if len(content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	var storedImage string
	if in.Image != nil && in.Image.Filename != "" {
		filename, err := s.images.SaveFeaturedImage(*in.Image)
		if err != nil {
			return nil, err
		}
		storedImage = filename
	}

	post := &models.Post{
		Title:    title,
		Content:  content,
		Excerpt:  strings.TrimSpace(in.Excerpt),
		Category: strings.TrimSpace(in.Category),
		Tags:     strings.Join(in.Tags, ","),
		Image:    storedImage,
		UserID:   in.UserID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.postRepo.WithTx(tx).Create(ctx, post)
	})
	if err != nil {
		if storedImage != "" {
			s.images.Remove(storedImage)
		}
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, models.NewStorageError(err)
	}

	cache.InvalidateFeed(ctx)
	return post, nil
}

// ListPosts returns all posts newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.List(ctx)
}

// GetPost returns a single post or a not-found error.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}
