package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/devmarkblog/internal/db"
	"github.com/rotisserie/eris"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrTitleRequired    = errors.New("title is required")
	ErrSlugRequired     = errors.New("slug is required")
	ErrContentRequired  = errors.New("content is required")
	ErrInvalidStatus    = errors.New("status must be draft or published")
	ErrCategoryMismatch = errors.New("referenced category does not exist")
)

// PostService wraps post related database operations.
type PostService struct {
	db  *gorm.DB
	now func() time.Time
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Title       string
	Slug        string
	Content     string
	Excerpt     *string
	Status      string
	PublishedAt *time.Time
	CategoryID  *string
	AuthorID    *string
}

// PostCounts aggregates dashboard counters.
type PostCounts struct {
	Published int64
	Draft     int64
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb, now: time.Now}
}

// Find fetches a post by id with its category preloaded.
func (s *PostService) Find(ctx context.Context, id string) (*db.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrPostNotFound
	}

	var post db.Post
	if err := s.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, eris.Wrapf(err, "fetching post %s", id)
	}
	return &post, nil
}

// FindPublishedBySlug returns the published post with the given slug.
func (s *PostService) FindPublishedBySlug(ctx context.Context, slug string) (*db.Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrPostNotFound
	}

	var post db.Post
	err := s.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ? AND status = ?", slug, db.PostStatusPublished).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, eris.Wrapf(err, "fetching post by slug %s", slug)
	}
	return &post, nil
}

// ListPublished returns published posts, newest publication first.
func (s *PostService) ListPublished(ctx context.Context) ([]db.Post, error) {
	var posts []db.Post
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Where("status = ?", db.PostStatusPublished).
		Order("published_at desc").
		Order("updated_at desc").
		Find(&posts).Error; err != nil {
		return nil, eris.Wrap(err, "listing published posts")
	}
	return posts, nil
}

// ListAll returns every post for the admin console, most recently edited first.
func (s *PostService) ListAll(ctx context.Context) ([]db.Post, error) {
	var posts []db.Post
	if err := s.db.WithContext(ctx).Preload("Category").Order("updated_at desc").Find(&posts).Error; err != nil {
		return nil, eris.Wrap(err, "listing posts")
	}
	return posts, nil
}

// Counts returns published and draft totals.
func (s *PostService) Counts(ctx context.Context) (PostCounts, error) {
	var counts PostCounts
	base := s.db.WithContext(ctx).Model(&db.Post{})

	if err := base.Session(&gorm.Session{}).Where("status = ?", db.PostStatusPublished).Count(&counts.Published).Error; err != nil {
		return PostCounts{}, eris.Wrap(err, "counting published posts")
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", db.PostStatusDraft).Count(&counts.Draft).Error; err != nil {
		return PostCounts{}, eris.Wrap(err, "counting draft posts")
	}
	return counts, nil
}

// Create validates the input and inserts a single post row.
func (s *PostService) Create(ctx context.Context, input PostInput) (*db.Post, error) {
	input, err := s.normalize(ctx, input)
	if err != nil {
		return nil, err
	}

	post := db.Post{
		Title:      input.Title,
		Slug:       input.Slug,
		Content:    input.Content,
		Excerpt:    input.Excerpt,
		Status:     input.Status,
		CategoryID: input.CategoryID,
		AuthorID:   input.AuthorID,
	}
	post.PublishedAt = s.publishedAt(input, nil)

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&post).Error; err != nil {
		return nil, eris.Wrapf(err, "creating post %s", post.Slug)
	}

	return s.Find(ctx, post.ID)
}

// Update validates the input and overwrites an existing post.
// updated_at is refreshed on every call.
func (s *PostService) Update(ctx context.Context, id string, input PostInput) (*db.Post, error) {
	existing, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	input, err = s.normalize(ctx, input)
	if err != nil {
		return nil, err
	}

	existing.Title = input.Title
	existing.Slug = input.Slug
	existing.Content = input.Content
	existing.Excerpt = input.Excerpt
	existing.Status = input.Status
	existing.CategoryID = input.CategoryID
	existing.Category = nil
	existing.PublishedAt = s.publishedAt(input, existing.PublishedAt)
	existing.UpdatedAt = s.now().UTC()

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(existing).Error; err != nil {
		return nil, eris.Wrapf(err, "updating post %s", existing.ID)
	}

	return s.Find(ctx, existing.ID)
}

// Delete removes a post by id.
func (s *PostService) Delete(ctx context.Context, id string) error {
	post, err := s.Find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&db.Post{}, "id = ?", post.ID).Error; err != nil {
		return eris.Wrapf(err, "deleting post %s", post.ID)
	}
	return nil
}

func (s *PostService) normalize(ctx context.Context, input PostInput) (PostInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)

	if input.Title == "" {
		return input, ErrTitleRequired
	}
	if input.Slug == "" {
		return input, ErrSlugRequired
	}
	if strings.TrimSpace(input.Content) == "" {
		return input, ErrContentRequired
	}

	switch strings.ToLower(strings.TrimSpace(input.Status)) {
	case "", db.PostStatusDraft:
		input.Status = db.PostStatusDraft
	case db.PostStatusPublished:
		input.Status = db.PostStatusPublished
	default:
		return input, ErrInvalidStatus
	}

	input.Excerpt = trimOptional(input.Excerpt)
	input.AuthorID = trimOptional(input.AuthorID)
	input.CategoryID = trimOptional(input.CategoryID)

	if input.CategoryID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&db.Category{}).Where("id = ?", *input.CategoryID).Count(&count).Error; err != nil {
			return input, eris.Wrap(err, "checking post category")
		}
		if count == 0 {
			return input, ErrCategoryMismatch
		}
	}

	return input, nil
}

// publishedAt 草稿清空发布时间；已发布文章优先使用显式时间，其次保留原值，最后取当前时间。
func (s *PostService) publishedAt(input PostInput, current *time.Time) *time.Time {
	if input.Status != db.PostStatusPublished {
		return nil
	}
	if input.PublishedAt != nil && !input.PublishedAt.IsZero() {
		value := input.PublishedAt.UTC()
		return &value
	}
	if current != nil && !current.IsZero() {
		return current
	}
	value := s.now().UTC()
	return &value
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
