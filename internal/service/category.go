package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketapi/internal/cache"
	"marketapi/internal/model"
	"marketapi/internal/repository"
)

const categoriesTTL = 10 * time.Minute

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// CategoryInput is the payload for creating a category.
type CategoryInput struct {
	Slug      string
	Name      string
	Icon      string
	SortOrder int
}

// CategoryService manages experience categories.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	// Create returns ErrConflict when the slug is taken.
	Create(ctx context.Context, in CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	repo  repository.CategoryRepository
	cache cache.Cache
	log   zerolog.Logger
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(repo repository.CategoryRepository, c cache.Cache, log zerolog.Logger) CategoryService {
	return &categoryService{repo: repo, cache: c, log: log}
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	return cache.Load(ctx, s.cache, s.log, cache.KeyCategories, categoriesTTL, func(ctx context.Context) ([]model.Category, error) {
		items, err := s.repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		return items, nil
	})
}

func (s *categoryService) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, invalid("slug", "must be lowercase letters, digits and dashes")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len([]rune(name)) > 80 {
		return nil, invalid("name", "must be 1 to 80 characters")
	}

	c, err := s.repo.Create(ctx, &model.Category{
		ID:        uuid.NewString(),
		Slug:      slug,
		Name:      name,
		Icon:      strings.TrimSpace(in.Icon),
		SortOrder: in.SortOrder,
		CreatedAt: utcNow(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	cache.Invalidate(ctx, s.cache, s.log, cache.KeyCategories)
	return c, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, "delete category")
	}
	cache.Invalidate(ctx, s.cache, s.log, cache.KeyCategories)
	return nil
}
