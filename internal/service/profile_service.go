package service

import (
	"context"
	"net/url"
	"strings"

	"quill/internal/models"
	"quill/internal/repository"
)

const (
	maxSkillLen     = 80
	maxLinkTitleLen = 120
	maxLinkURLLen   = 500
)

// LinkView is a profile link as shown on the profile page.
type LinkView struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ProfileView aggregates everything the profile page displays.
type ProfileView struct {
	ID           uint          `json:"id"`
	Username     string        `json:"username"`
	FullName     string        `json:"fullname"`
	Email        string        `json:"email"`
	ProfileImage string        `json:"profile_image"`
	Bio          string        `json:"bio"`
	About        string        `json:"about"`
	Profession   string        `json:"profession"`
	Education    string        `json:"education"`
	Location     string        `json:"location"`
	Joined       string        `json:"joined"`
	Links        []LinkView    `json:"links"`
	Skills       []string      `json:"skills"`
	PostCount    int           `json:"post_count"`
	Posts        []models.Post `json:"posts"`
}

// UpdateProfileInput carries the editable profile fields. Empty strings
// overwrite; the form always submits every field.
type UpdateProfileInput struct {
	FullName   string
	Bio        string
	About      string
	Profession string
	Education  string
	Country    string
	City       string
}

// ProfileService manages profile pages, skills and links.
type ProfileService struct {
	userRepo  repository.UserRepository
	postRepo  repository.PostRepository
	skillRepo repository.SkillRepository
	linkRepo  repository.LinkRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo repository.UserRepository, postRepo repository.PostRepository, skillRepo repository.SkillRepository, linkRepo repository.LinkRepository) *ProfileService {
	return &ProfileService{
		userRepo:  userRepo,
		postRepo:  postRepo,
		skillRepo: skillRepo,
		linkRepo:  linkRepo,
	}
}

// Profile returns the full profile view for userID.
func (s *ProfileService) Profile(ctx context.Context, userID uint) (*ProfileView, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	links, err := s.linkRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	skills, err := s.skillRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.postRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		ID:           user.ID,
		Username:     user.Username,
		FullName:     user.FullName,
		Email:        user.Email,
		ProfileImage: user.ProfileImage,
		Bio:          user.Bio,
		About:        user.About,
		Profession:   user.Profession,
		Education:    user.Education,
		Location:     joinLocation(user.Country, user.City),
		Joined:       user.Joined,
		Links:        make([]LinkView, 0, len(links)),
		Skills:       make([]string, 0, len(skills)),
		PostCount:    int(count),
		Posts:        make([]models.Post, 0, len(posts)),
	}
	for _, link := range links {
		view.Links = append(view.Links, LinkView{ID: link.ID, Title: link.Title, URL: link.URL})
	}
	for _, skill := range skills {
		view.Skills = append(view.Skills, skill.Name)
	}
	for _, post := range posts {
		view.Posts = append(view.Posts, *post)
	}
	return view, nil
}

// UpdateProfile overwrites the editable profile fields and returns the
// refreshed view.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*ProfileView, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FullName = strings.TrimSpace(input.FullName)
	user.Bio = strings.TrimSpace(input.Bio)
	user.About = strings.TrimSpace(input.About)
	user.Profession = strings.TrimSpace(input.Profession)
	user.Education = strings.TrimSpace(input.Education)
	user.Country = strings.TrimSpace(input.Country)
	user.City = strings.TrimSpace(input.City)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// AddSkill attaches a named skill to the user's profile.
func (s *ProfileService) AddSkill(ctx context.Context, userID uint, name string) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.NewValidationError("Skill name is required")
	}
	if len(name) > maxSkillLen {
		return models.NewValidationError("Skill name is too long")
	}
	return s.skillRepo.Create(ctx, &models.Skill{UserID: userID, Name: name})
}

// RemoveSkill deletes the user's skill by name. A skill the user does not
// have reports not found.
func (s *ProfileService) RemoveSkill(ctx context.Context, userID uint, name string) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.NewValidationError("Skill name is required")
	}

	deleted, err := s.skillRepo.DeleteByName(ctx, userID, name)
	if err != nil {
		return err
	}
	if !deleted {
		return models.NewNotFoundError("Skill", name)
	}
	return nil
}

// AddLink attaches an external link to the user's profile.
func (s *ProfileService) AddLink(ctx context.Context, userID uint, title, rawURL string) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	title = strings.TrimSpace(title)
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return models.NewValidationError("Link URL is required")
	}
	if len(title) > maxLinkTitleLen {
		return models.NewValidationError("Link title is too long")
	}
	if len(rawURL) > maxLinkURLLen {
		return models.NewValidationError("Link URL is too long")
	}
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return models.NewValidationError("Link URL must be a valid http or https address")
	}
	return s.linkRepo.Create(ctx, &models.Link{UserID: userID, Title: title, URL: rawURL})
}

// DeleteLink removes one of the user's links. A link owned by someone else
// reports not found, same as one that never existed.
func (s *ProfileService) DeleteLink(ctx context.Context, userID, linkID uint) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	if linkID == 0 {
		return models.NewValidationError("Invalid link reference")
	}

	deleted, err := s.linkRepo.DeleteOwned(ctx, userID, linkID)
	if err != nil {
		return err
	}
	if !deleted {
		return models.NewNotFoundError("Link", linkID)
	}
	return nil
}

func joinLocation(country, city string) string {
	switch {
	case country != "" && city != "":
		return city + ", " + country
	case city != "":
		return city
	default:
		return country
	}
}
