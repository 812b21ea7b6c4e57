package service

import (
	"context"
	"errors"
	"strings"

	"github.com/devmarkblog/internal/db"
	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrNameRequired     = errors.New("name is required")
)

// CategoryService wraps category related operations.
type CategoryService struct {
	db *gorm.DB
}

// CategoryInput represents fields accepted when creating or updating a category.
type CategoryInput struct {
	Name string
	Slug string
}

// NewCategoryService creates a CategoryService instance.
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// List returns categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.WithContext(ctx).Order("name asc").Find(&categories).Error; err != nil {
		return nil, eris.Wrap(err, "listing categories")
	}
	return categories, nil
}

// Count returns the number of categories.
func (s *CategoryService) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.Category{}).Count(&count).Error; err != nil {
		return 0, eris.Wrap(err, "counting categories")
	}
	return count, nil
}

// Find fetches a category by id.
func (s *CategoryService) Find(ctx context.Context, id string) (*db.Category, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrCategoryNotFound
	}

	var category db.Category
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, eris.Wrapf(err, "fetching category %s", id)
	}
	return &category, nil
}

// Create inserts a new category. Name and slug uniqueness is left to the unique indexes.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*db.Category, error) {
	input, err := normalizeCategory(input)
	if err != nil {
		return nil, err
	}

	category := db.Category{Name: input.Name, Slug: input.Slug}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, eris.Wrapf(err, "creating category %s", input.Slug)
	}
	return &category, nil
}

// Update renames an existing category.
func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*db.Category, error) {
	category, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	input, err = normalizeCategory(input)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	category.Slug = input.Slug
	if err := s.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, eris.Wrapf(err, "updating category %s", category.ID)
	}
	return category, nil
}

// Delete removes a category and detaches it from every post that referenced it.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	category, err := s.Find(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Post{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return eris.Wrapf(err, "detaching posts from category %s", category.ID)
		}

		if err := tx.Delete(&db.Category{}, "id = ?", category.ID).Error; err != nil {
			return eris.Wrapf(err, "deleting category %s", category.ID)
		}
		return nil
	})
}

func normalizeCategory(input CategoryInput) (CategoryInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Slug = strings.TrimSpace(input.Slug)

	if input.Name == "" {
		return input, ErrNameRequired
	}
	if input.Slug == "" {
		return input, ErrSlugRequired
	}
	return input, nil
}
