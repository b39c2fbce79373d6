package service

import (
	"context"
	"time"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
)

// FeedItem is a display-ready post for the home feed and detail page.
// Image is nil when the post has no image or the stored file is gone; the
// on-disk existence check is a contract of the feed, not an optimization.
type FeedItem struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Excerpt     string        `json:"excerpt"`
	Category    string        `json:"category"`
	Tags        string        `json:"tags"`
	Image       *string       `json:"image"`
	Author      string        `json:"author"`
	AuthorImage *string       `json:"author_image"`
	Date        time.Time     `json:"date"`
	Comments    []CommentView `json:"comments"`
}

// FeedService assembles posts, authors and comments into view models.
type FeedService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	images      *ImageService
}

// NewFeedService creates a new FeedService
func NewFeedService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, images *ImageService) *FeedService {
	return &FeedService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		images:      images,
	}
}

// HomeFeed returns every post newest first with author, image and comments
// resolved. The assembled feed is cached briefly; post and comment writes
// drop the cached entry.
func (s *FeedService) HomeFeed(ctx context.Context) ([]FeedItem, error) {
	start := time.Now()
	defer func() {
		observability.FeedAssemblyLatency.WithLabelValues("home").Observe(time.Since(start).Seconds())
	}()

	var items []FeedItem
	err := cache.Aside(ctx, cache.FeedKey, &items, cache.FeedTTL, func() error {
		posts, err := s.postRepo.List(ctx)
		if err != nil {
			return err
		}

		items = make([]FeedItem, 0, len(posts))
		for _, post := range posts {
			item, err := s.buildItem(ctx, post)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// PostDetail resolves a single post the same way the home feed does.
func (s *FeedService) PostDetail(ctx context.Context, postID uint) (*FeedItem, error) {
	start := time.Now()
	defer func() {
		observability.FeedAssemblyLatency.WithLabelValues("detail").Observe(time.Since(start).Seconds())
	}()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	item, err := s.buildItem(ctx, post)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *FeedService) buildItem(ctx context.Context, post *models.Post) (FeedItem, error) {
	item := FeedItem{
		ID:       post.ID,
		Title:    post.Title,
		Content:  post.Content,
		Excerpt:  post.Excerpt,
		Category: post.Category,
		Tags:     post.Tags,
		Author:   UnknownUserName,
		Date:     post.CreatedAt,
	}

	if post.User.ID != 0 {
		item.Author = post.User.DisplayName()
		if post.User.ProfileImage != "" {
			img := post.User.ProfileImage
			item.AuthorImage = &img
		}
	}

	if post.Image != "" && s.images.Exists(post.Image) {
		img := post.Image
		item.Image = &img
	}

	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return FeedItem{}, err
	}
	item.Comments = CommentViews(comments)

	return item, nil
}
