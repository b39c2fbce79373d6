// Package seed provides helpers to create demo and test data for the blog
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var categories = []string{
	"Technology", "Travel", "Food", "Lifestyle", "Programming",
	"Design", "Music", "Books", "Science", "Productivity",
}

var skillPool = []string{
	"Go", "Python", "JavaScript", "SQL", "Writing", "Editing",
	"Photography", "Design", "Public Speaking", "Project Management",
	"Data Analysis", "Marketing", "SEO", "Illustration",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db: db,
		r:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Passwords are stored
// as-is, matching the application's login comparison.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:   gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:      gofakeit.Email(),
		Password:   "password123",
		FullName:   gofakeit.Name(),
		Bio:        gofakeit.Sentence(10),
		About:      gofakeit.Paragraph(1, 2, 8, "\n"),
		Profession: gofakeit.JobTitle(),
		Education:  gofakeit.Company() + " University",
		Country:    gofakeit.Country(),
		City:       gofakeit.City(),
		Joined:     time.Now().AddDate(0, -f.r.Intn(18), 0).Format("January 2, 2006"),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// CreatePost constructs and persists a sample post for user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	content := gofakeit.Paragraph(3, 4, 12, "\n\n")
	post := &models.Post{
		Title:    strings.TrimSuffix(gofakeit.Sentence(6), "."),
		Content:  content,
		Excerpt:  gofakeit.Sentence(12),
		Category: categories[f.r.Intn(len(categories))],
		Tags:     strings.Join([]string{gofakeit.Word(), gofakeit.Word(), gofakeit.Word()}, ","),
		UserID:   user.ID,
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.r.Intn(90)
	hoursBack := f.r.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// CreateComment persists a sample comment by user on post.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(f.r.Intn(15) + 5),
		UserID:  user.ID,
		PostID:  post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// CreateSkill attaches a random skill to user.
func (f *Factory) CreateSkill(user *models.User) (*models.Skill, error) {
	skill := &models.Skill{
		UserID: user.ID,
		Name:   skillPool[f.r.Intn(len(skillPool))],
	}
	if err := f.db.Create(skill).Error; err != nil {
		return nil, fmt.Errorf("create skill: %w", err)
	}
	return skill, nil
}

// CreateLink attaches a random external link to user.
func (f *Factory) CreateLink(user *models.User) (*models.Link, error) {
	link := &models.Link{
		UserID: user.ID,
		Title:  gofakeit.DomainName(),
		URL:    gofakeit.URL(),
	}
	if err := f.db.Create(link).Error; err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}
	return link, nil
}
