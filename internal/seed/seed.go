package seed

import (
	"fmt"
	"log/slog"
	"os"

	"quill/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers          int  `yaml:"users"`
	PostsPerUser      int  `yaml:"posts_per_user"`
	CommentsPerPost   int  `yaml:"comments_per_post"`
	SkillsPerUser     int  `yaml:"skills_per_user"`
	LinksPerUser      int  `yaml:"links_per_user"`
	ShouldClean       bool `yaml:"clean"`
	CreateDemoAccount bool `yaml:"demo_account"`
}

// DefaultOptions returns a sensible development dataset size.
func DefaultOptions() Options {
	return Options{
		NumUsers:          20,
		PostsPerUser:      4,
		CommentsPerPost:   3,
		SkillsPerUser:     3,
		LinksPerUser:      2,
		ShouldClean:       true,
		CreateDemoAccount: true,
	}
}

// LoadPreset reads seeding options from a YAML file.
func LoadPreset(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read preset: %w", err)
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parse preset: %w", err)
	}
	return opts, nil
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll deletes every row from the domain tables, comments first so
// foreign keys never dangle.
func (s *Seeder) ClearAll() error {
	for _, model := range []any{
		&models.Comment{}, &models.Post{}, &models.Link{}, &models.Skill{}, &models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
			return fmt.Errorf("clear table: %w", err)
		}
	}
	return nil
}

// Run executes a full seeding pass with the given options.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users := make([]*models.User, 0, opts.NumUsers)

	if opts.CreateDemoAccount {
		demo, err := s.factory.CreateUser(func(u *models.User) {
			u.Username = "demo"
			u.Email = "demo@example.com"
			u.Password = "demo"
			u.FullName = "Demo User"
		})
		if err != nil {
			return err
		}
		users = append(users, demo)
	}

	for len(users) < opts.NumUsers {
		user, err := s.factory.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, user)
	}

	var posts []*models.Post
	for _, user := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			post, err := s.factory.CreatePost(user)
			if err != nil {
				return err
			}
			posts = append(posts, post)
		}
		for i := 0; i < opts.SkillsPerUser; i++ {
			if _, err := s.factory.CreateSkill(user); err != nil {
				return err
			}
		}
		for i := 0; i < opts.LinksPerUser; i++ {
			if _, err := s.factory.CreateLink(user); err != nil {
				return err
			}
		}
	}

	for _, post := range posts {
		for i := 0; i < opts.CommentsPerPost; i++ {
			commenter := users[s.factory.r.Intn(len(users))]
			if _, err := s.factory.CreateComment(commenter, post); err != nil {
				return err
			}
		}
	}

	slog.Info("seeding complete",
		"users", len(users),
		"posts", len(posts),
		"comments_per_post", opts.CommentsPerPost)
	return nil
}
