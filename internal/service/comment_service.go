package service

import (
	"context"
	"strings"

	"quill/internal/models"
	"quill/internal/repository"
)

const maxCommentLen = 10000

// UnknownUserName is shown when a comment's or post's author no longer exists.
const UnknownUserName = "Unknown User"

// CommentService implements comment creation and read-time enrichment.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// CreateCommentInput is the payload for attaching a comment to a post.
type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

// CommentView is a display-ready comment with the commenting user resolved
// at read time.
type CommentView struct {
	ID               uint    `json:"id"`
	Content          string  `json:"content"`
	Date             string  `json:"date"`
	UserName         string  `json:"user_name"`
	UserProfileImage *string `json:"user_profile_image"`
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// CreateComment appends a comment after validating the caller, the post
// reference and the content.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if in.PostID == 0 {
		return nil, models.NewValidationError("Invalid post reference")
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns the display-ready comments for a post.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]CommentView, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return CommentViews(comments), nil
}

// CommentViews maps comments to display views, substituting the unknown-user
// sentinel when the referenced user no longer exists.
func CommentViews(comments []*models.Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		view := CommentView{
			ID:       c.ID,
			Content:  c.Content,
			Date:     c.CreatedAt.Format("Jan 02, 2006"),
			UserName: UnknownUserName,
		}
		if c.User.ID != 0 {
			view.UserName = c.User.DisplayName()
			if c.User.ProfileImage != "" {
				img := c.User.ProfileImage
				view.UserProfileImage = &img
			}
		}
		views = append(views, view)
	}
	return views
}
