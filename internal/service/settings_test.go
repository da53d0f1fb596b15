package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketapi/internal/cache"
	"marketapi/internal/model"
	"marketapi/internal/repository"
	repoMocks "marketapi/internal/repository/mocks"
)

// memoryCache keeps JSON values in a map and records deletions.
type memoryCache struct {
	data    map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func TestSettingsService_Get(t *testing.T) {
	repo := new(repoMocks.MockSettingsRepository)
	repo.On("All", mock.Anything).Return(map[string]string{model.SettingPlatformFeePercent: "20"}, nil).Once()
	svc := NewSettingsService(repo, newMemoryCache(), zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	second, err := svc.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, 20, first.PlatformFeePercent)
	assert.Equal(t, 48, first.HostApprovalHours)
	assert.Equal(t, first, second)
	repo.AssertExpectations(t)
}

func TestSettingsService_Update(t *testing.T) {
	tests := []struct {
		name       string
		kv         map[string]string
		setupMocks func(repo *repoMocks.MockSettingsRepository)
		wantErr    error
		wantStored map[string]string
	}{
		{
			name: "stores normalized values",
			kv:   map[string]string{model.SettingDefaultCurrency: " EUR ", model.SettingHostApprovalHours: "12"},
			setupMocks: func(repo *repoMocks.MockSettingsRepository) {
				repo.On("Set", mock.Anything, map[string]string{
					model.SettingDefaultCurrency:   "eur",
					model.SettingHostApprovalHours: "12",
				}).Return(nil)
			},
		},
		{
			name:    "out of range",
			kv:      map[string]string{model.SettingPlatformFeePercent: "80"},
			wantErr: ErrValidation,
		},
		{
			name:    "unknown key rejects the whole update",
			kv:      map[string]string{model.SettingHostApprovalHours: "12", "free_lunch": "1"},
			wantErr: ErrValidation,
		},
		{
			name:    "empty update",
			kv:      map[string]string{},
			wantErr: ErrValidation,
		},
		{
			name: "store failure",
			kv:   map[string]string{model.SettingHostApprovalHours: "12"},
			setupMocks: func(repo *repoMocks.MockSettingsRepository) {
				repo.On("Set", mock.Anything, mock.Anything).Return(errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockSettingsRepository)
			repo.On("All", mock.Anything).Return(map[string]string{}, nil).Maybe()
			if tt.setupMocks != nil {
				tt.setupMocks(repo)
			}
			c := newMemoryCache()
			svc := NewSettingsService(repo, c, zerolog.Nop())

			st, err := svc.Update(context.Background(), tt.kv)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, ErrValidation) {
					assert.ErrorIs(t, err, ErrValidation)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
				assert.Empty(t, c.deleted)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "eur", st.DefaultCurrency)
				assert.Equal(t, 12, st.HostApprovalHours)
				assert.Equal(t, []string{cache.KeySettings}, c.deleted)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()

	t.Run("list is cached", func(t *testing.T) {
		repo := new(repoMocks.MockCategoryRepository)
		repo.On("List", mock.Anything).Return([]model.Category{{ID: "c-1", Slug: "food"}}, nil).Once()
		svc := NewCategoryService(repo, newMemoryCache(), zerolog.Nop())

		for i := 0; i < 2; i++ {
			items, err := svc.List(ctx)
			require.NoError(t, err)
			assert.Len(t, items, 1)
		}
		repo.AssertExpectations(t)
	})

	t.Run("create invalidates the cache", func(t *testing.T) {
		repo := new(repoMocks.MockCategoryRepository)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Category) bool {
			return c.Slug == "food-and-drink" && c.Name == "Food & drink"
		})).Return(&model.Category{ID: "c-1"}, nil)
		c := newMemoryCache()
		svc := NewCategoryService(repo, c, zerolog.Nop())

		_, err := svc.Create(ctx, CategoryInput{Slug: " Food-And-Drink ", Name: "Food & drink"})

		require.NoError(t, err)
		assert.Equal(t, []string{cache.KeyCategories}, c.deleted)
	})

	t.Run("invalid slug", func(t *testing.T) {
		svc := NewCategoryService(new(repoMocks.MockCategoryRepository), cache.Noop{}, zerolog.Nop())
		_, err := svc.Create(ctx, CategoryInput{Slug: "food & drink", Name: "Food"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		repo := new(repoMocks.MockCategoryRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrConflict)
		svc := NewCategoryService(repo, cache.Noop{}, zerolog.Nop())

		_, err := svc.Create(ctx, CategoryInput{Slug: "food", Name: "Food"})

		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("delete missing", func(t *testing.T) {
		repo := new(repoMocks.MockCategoryRepository)
		repo.On("Delete", mock.Anything, "c-9").Return(repository.ErrNotFound)
		svc := NewCategoryService(repo, cache.Noop{}, zerolog.Nop())

		assert.ErrorIs(t, svc.Delete(ctx, "c-9"), ErrNotFound)
	})
}
