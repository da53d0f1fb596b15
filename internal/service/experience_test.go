package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketapi/internal/model"
	"marketapi/internal/repository"
	repoMocks "marketapi/internal/repository/mocks"
	"marketapi/internal/storage"
	storeMocks "marketapi/internal/storage/mocks"
)

func newExperienceService(repo *repoMocks.MockExperienceRepository, bookings *repoMocks.MockBookingRepository, store *storeMocks.MockStorage) ExperienceService {
	store.On("PresignGet", mock.Anything, mock.Anything, time.Hour).Return("https://cdn.example/signed", nil).Maybe()
	return NewExperienceService(repo, bookings, staticSettings{s: model.DefaultSettings()}, store,
		NewURLSigner(store, time.Hour, zerolog.Nop()), zerolog.Nop())
}

func validExperienceInput() ExperienceInput {
	return ExperienceInput{
		Title:           " Sunrise kayak ",
		Description:     "Paddle out at dawn.",
		Location:        "Lisbon",
		PriceCents:      5000,
		DurationMinutes: 120,
		MinGuests:       1,
		MaxGuests:       6,
		Highlights:      []string{"coffee", " ", "wetsuit"},
	}
}

func TestExperienceService_Create(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*ExperienceInput)
		setupMocks func(repo *repoMocks.MockExperienceRepository)
		wantErr    error
	}{
		{
			name: "happy path uses the default currency and starts as draft",
			setupMocks: func(repo *repoMocks.MockExperienceRepository) {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(e *model.Experience) bool {
					return e.Title == "Sunrise kayak" && e.Currency == "usd" && e.Status == model.ExperienceDraft &&
						e.HostID == "host-1" && len(e.Highlights) == 2
				})).Return(&model.Experience{ID: "exp-1", Status: model.ExperienceDraft}, nil)
			},
		},
		{
			name:    "missing title",
			mutate:  func(in *ExperienceInput) { in.Title = "  " },
			wantErr: ErrValidation,
		},
		{
			name:    "max below min guests",
			mutate:  func(in *ExperienceInput) { in.MinGuests = 4; in.MaxGuests = 2 },
			wantErr: ErrValidation,
		},
		{
			name:    "currency with symbols",
			mutate:  func(in *ExperienceInput) { in.Currency = "1$2" },
			wantErr: ErrValidation,
		},
		{
			name:   "currency is lowercased",
			mutate: func(in *ExperienceInput) { in.Currency = " EUR " },
			setupMocks: func(repo *repoMocks.MockExperienceRepository) {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(e *model.Experience) bool {
					return e.Currency == "eur"
				})).Return(&model.Experience{ID: "exp-1", Status: model.ExperienceDraft}, nil)
			},
		},
		{
			name:    "non-positive price",
			mutate:  func(in *ExperienceInput) { in.PriceCents = 0 },
			wantErr: ErrValidation,
		},
		{
			name:   "unknown category",
			mutate: func(in *ExperienceInput) { in.CategoryID = "nope" },
			setupMocks: func(repo *repoMocks.MockExperienceRepository) {
				repo.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrConflict)
			},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockExperienceRepository)
			if tt.setupMocks != nil {
				tt.setupMocks(repo)
			}
			svc := newExperienceService(repo, new(repoMocks.MockBookingRepository), new(storeMocks.MockStorage))
			in := validExperienceInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}

			e, err := svc.Create(context.Background(), "host-1", in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "exp-1", e.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestExperienceService_SetStatus(t *testing.T) {
	host := Actor{ID: "host-1", Role: model.RoleHost}
	admin := Actor{ID: "admin-1", Role: model.RoleAdmin}
	publishable := func() *model.Experience {
		return &model.Experience{ID: "exp-1", HostID: "host-1", Title: "t", Description: "d", PriceCents: 100,
			Images: []string{"experiences/exp-1/a.jpg"}, Status: model.ExperienceDraft}
	}

	tests := []struct {
		name       string
		actor      Actor
		status     model.ExperienceStatus
		exp        *model.Experience
		wantErr    error
		wantStored bool
	}{
		{name: "host publishes", actor: host, status: model.ExperienceActive, exp: publishable(), wantStored: true},
		{name: "host cannot suspend", actor: host, status: model.ExperienceSuspended, exp: publishable(), wantErr: ErrForbidden},
		{name: "admin suspends", actor: admin, status: model.ExperienceSuspended, exp: publishable(), wantStored: true},
		{
			name:   "suspended stays suspended for the host",
			actor:  host,
			status: model.ExperienceActive,
			exp: func() *model.Experience {
				e := publishable()
				e.Status = model.ExperienceSuspended
				return e
			}(),
			wantErr: ErrForbidden,
		},
		{
			name:   "publishing without photos",
			actor:  host,
			status: model.ExperienceActive,
			exp: func() *model.Experience {
				e := publishable()
				e.Images = nil
				return e
			}(),
			wantErr: ErrValidation,
		},
		{name: "other host", actor: Actor{ID: "host-2", Role: model.RoleHost}, status: model.ExperienceInactive, exp: publishable(), wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockExperienceRepository)
			repo.On("FindByID", mock.Anything, "exp-1").Return(tt.exp, nil)
			if tt.wantStored {
				repo.On("SetStatus", mock.Anything, "exp-1", tt.status).Return(nil)
			}
			svc := newExperienceService(repo, new(repoMocks.MockBookingRepository), new(storeMocks.MockStorage))

			e, err := svc.SetStatus(context.Background(), tt.actor, "exp-1", tt.status)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.status, e.Status)
			}
			repo.AssertExpectations(t)
		})
	}

	t.Run("unknown status", func(t *testing.T) {
		svc := newExperienceService(new(repoMocks.MockExperienceRepository), new(repoMocks.MockBookingRepository), new(storeMocks.MockStorage))
		_, err := svc.SetStatus(context.Background(), admin, "exp-1", "archived")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestExperienceService_AddImage(t *testing.T) {
	host := Actor{ID: "host-1", Role: model.RoleHost}
	owned := func() *model.Experience {
		return &model.Experience{ID: "exp-1", HostID: "host-1", Images: []string{"experiences/exp-1/old.jpg"}}
	}

	tests := []struct {
		name        string
		contentType string
		setupMocks  func(repo *repoMocks.MockExperienceRepository, store *storeMocks.MockStorage) io.Reader
		wantErr     error
		wantErrMsg  string
	}{
		{
			name:        "happy path",
			contentType: "image/png",
			setupMocks: func(repo *repoMocks.MockExperienceRepository, store *storeMocks.MockStorage) io.Reader {
				r := strings.NewReader("png")
				repo.On("FindByID", mock.Anything, "exp-1").Return(owned(), nil)
				store.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "experiences/exp-1/") && strings.HasSuffix(key, ".png")
				}), r, storage.PutObjectOptions{Size: 3, ContentType: "image/png"}).Return(storage.ObjectInfo{}, nil)
				repo.On("SetImages", mock.Anything, "exp-1", mock.MatchedBy(func(images []string) bool {
					return len(images) == 2 && images[0] == "experiences/exp-1/old.jpg"
				})).Return(nil)
				return r
			},
		},
		{
			name:        "unsupported type",
			contentType: "application/pdf",
			setupMocks: func(repo *repoMocks.MockExperienceRepository, store *storeMocks.MockStorage) io.Reader {
				return strings.NewReader("pdf")
			},
			wantErr: ErrValidation,
		},
		{
			name:        "db failure rolls the upload back",
			contentType: "image/jpeg",
			setupMocks: func(repo *repoMocks.MockExperienceRepository, store *storeMocks.MockStorage) io.Reader {
				r := strings.NewReader("jpg")
				repo.On("FindByID", mock.Anything, "exp-1").Return(owned(), nil)
				store.On("Put", mock.Anything, mock.Anything, r, mock.Anything).Return(storage.ObjectInfo{}, nil)
				repo.On("SetImages", mock.Anything, "exp-1", mock.Anything).Return(errors.New("db fail"))
				store.On("Delete", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasSuffix(key, ".jpg") && key != "experiences/exp-1/old.jpg"
				})).Return(nil)
				return r
			},
			wantErrMsg: "db save failed: db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockExperienceRepository)
			store := new(storeMocks.MockStorage)
			r := tt.setupMocks(repo, store)
			svc := newExperienceService(repo, new(repoMocks.MockBookingRepository), store)

			e, err := svc.AddImage(context.Background(), host, "exp-1", r, tt.contentType, 3)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			default:
				require.NoError(t, err)
				assert.Len(t, e.ImageURLs, 2)
			}
			repo.AssertExpectations(t)
			store.AssertExpectations(t)
		})
	}
}

func TestExperienceService_RemoveImage(t *testing.T) {
	host := Actor{ID: "host-1", Role: model.RoleHost}

	t.Run("removes the key and the object", func(t *testing.T) {
		repo := new(repoMocks.MockExperienceRepository)
		store := new(storeMocks.MockStorage)
		repo.On("FindByID", mock.Anything, "exp-1").Return(&model.Experience{ID: "exp-1", HostID: "host-1",
			Images: []string{"a.jpg", "b.jpg"}, Status: model.ExperienceActive}, nil)
		repo.On("SetImages", mock.Anything, "exp-1", []string{"b.jpg"}).Return(nil)
		store.On("Delete", mock.Anything, "a.jpg").Return(nil)
		svc := newExperienceService(repo, new(repoMocks.MockBookingRepository), store)

		e, err := svc.RemoveImage(context.Background(), host, "exp-1", 0)

		require.NoError(t, err)
		assert.Equal(t, []string{"b.jpg"}, e.Images)
		store.AssertExpectations(t)
	})

	t.Run("active experience keeps its last photo", func(t *testing.T) {
		repo := new(repoMocks.MockExperienceRepository)
		repo.On("FindByID", mock.Anything, "exp-1").Return(&model.Experience{ID: "exp-1", HostID: "host-1",
			Images: []string{"a.jpg"}, Status: model.ExperienceActive}, nil)
		svc := newExperienceService(repo, new(repoMocks.MockBookingRepository), new(storeMocks.MockStorage))

		_, err := svc.RemoveImage(context.Background(), host, "exp-1", 0)

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("index out of range", func(t *testing.T) {
		repo := new(repoMocks.MockExperienceRepository)
		repo.On("FindByID", mock.Anything, "exp-1").Return(&model.Experience{ID: "exp-1", HostID: "host-1"}, nil)
		svc := newExperienceService(repo, new(repoMocks.MockBookingRepository), new(storeMocks.MockStorage))

		_, err := svc.RemoveImage(context.Background(), host, "exp-1", 3)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestExperienceService_Delete(t *testing.T) {
	host := Actor{ID: "host-1", Role: model.RoleHost}
	owned := func(repo *repoMocks.MockExperienceRepository) {
		repo.On("FindByID", mock.Anything, "exp-1").
			Return(&model.Experience{ID: "exp-1", HostID: "host-1", Images: []string{"experiences/exp-1/a.jpg"}}, nil)
	}

	t.Run("seat-holding bookings block the delete", func(t *testing.T) {
		repo := new(repoMocks.MockExperienceRepository)
		bookings := new(repoMocks.MockBookingRepository)
		owned(repo)
		bookings.On("CountForExperience", mock.Anything, "exp-1").Return(1, 3, nil)
		svc := newExperienceService(repo, bookings, new(storeMocks.MockStorage))

		err := svc.Delete(context.Background(), host, "exp-1")

		assert.ErrorIs(t, err, ErrConflict)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything)
	})

	t.Run("only cancelled bookings archives the experience", func(t *testing.T) {
		repo := new(repoMocks.MockExperienceRepository)
		bookings := new(repoMocks.MockBookingRepository)
		store := new(storeMocks.MockStorage)
		owned(repo)
		bookings.On("CountForExperience", mock.Anything, "exp-1").Return(0, 2, nil)
		repo.On("Archive", mock.Anything, "exp-1").Return(nil).Once()
		svc := newExperienceService(repo, bookings, store)

		err := svc.Delete(context.Background(), host, "exp-1")

		require.NoError(t, err)
		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("no bookings removes the row and its photos", func(t *testing.T) {
		repo := new(repoMocks.MockExperienceRepository)
		bookings := new(repoMocks.MockBookingRepository)
		store := new(storeMocks.MockStorage)
		owned(repo)
		bookings.On("CountForExperience", mock.Anything, "exp-1").Return(0, 0, nil)
		repo.On("Delete", mock.Anything, "exp-1").Return(nil).Once()
		store.On("Delete", mock.Anything, "experiences/exp-1/a.jpg").Return(nil).Once()
		svc := newExperienceService(repo, bookings, store)

		err := svc.Delete(context.Background(), host, "exp-1")

		require.NoError(t, err)
		repo.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("booking created concurrently still conflicts", func(t *testing.T) {
		repo := new(repoMocks.MockExperienceRepository)
		bookings := new(repoMocks.MockBookingRepository)
		owned(repo)
		bookings.On("CountForExperience", mock.Anything, "exp-1").Return(0, 0, nil)
		repo.On("Delete", mock.Anything, "exp-1").Return(repository.ErrConflict)
		svc := newExperienceService(repo, bookings, new(storeMocks.MockStorage))

		err := svc.Delete(context.Background(), host, "exp-1")

		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestExperienceService_Image(t *testing.T) {
	draft := &model.Experience{ID: "exp-1", HostID: "host-1", Status: model.ExperienceDraft,
		Images: []string{"experiences/exp-1/a.jpg"}}
	active := &model.Experience{ID: "exp-2", HostID: "host-1", Status: model.ExperienceActive,
		Images: []string{"experiences/exp-2/a.jpg", "experiences/exp-2/b.png"}}

	tests := []struct {
		name    string
		viewer  Actor
		exp     *model.Experience
		index   int
		wantKey string
		wantErr error
	}{
		{name: "public photo", exp: active, index: 1, wantKey: "experiences/exp-2/b.png"},
		{name: "draft hidden from the public", exp: draft, index: 0, wantErr: ErrNotFound},
		{name: "draft visible to its host", viewer: Actor{ID: "host-1", Role: model.RoleHost}, exp: draft, index: 0, wantKey: "experiences/exp-1/a.jpg"},
		{name: "index out of range", exp: active, index: 2, wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockExperienceRepository)
			store := new(storeMocks.MockStorage)
			repo.On("FindByID", mock.Anything, tt.exp.ID).Return(tt.exp, nil)
			if tt.wantKey != "" {
				store.On("Get", mock.Anything, tt.wantKey).
					Return(io.NopCloser(strings.NewReader("img")), storage.ObjectInfo{Key: tt.wantKey, Size: 3}, nil).Once()
			}
			svc := newExperienceService(repo, new(repoMocks.MockBookingRepository), store)

			rc, info, err := svc.Image(context.Background(), tt.viewer, tt.exp.ID, tt.index)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, rc)
				return
			}
			require.NoError(t, err)
			defer rc.Close()
			assert.Equal(t, tt.wantKey, info.Key)
			store.AssertExpectations(t)
		})
	}
}

func TestExperienceService_Get(t *testing.T) {
	repo := new(repoMocks.MockExperienceRepository)
	repo.On("FindByID", mock.Anything, "exp-1").Return(&model.Experience{ID: "exp-1", HostID: "host-1", Status: model.ExperienceDraft}, nil)
	svc := newExperienceService(repo, new(repoMocks.MockBookingRepository), new(storeMocks.MockStorage))
	ctx := context.Background()

	_, err := svc.Get(ctx, Actor{}, "exp-1")
	assert.ErrorIs(t, err, ErrNotFound, "drafts are hidden from the public")

	_, err = svc.Get(ctx, Actor{ID: "host-1", Role: model.RoleHost}, "exp-1")
	assert.NoError(t, err)

	_, err = svc.Get(ctx, Actor{ID: "admin", Role: model.RoleAdmin}, "exp-1")
	assert.NoError(t, err)
}

func TestExperienceService_Search(t *testing.T) {
	repo := new(repoMocks.MockExperienceRepository)
	repo.On("Search", mock.Anything, mock.MatchedBy(func(f model.ExperienceFilter) bool {
		return f.Location == "Porto" && len(f.Statuses) == 1 && f.Statuses[0] == model.ExperienceActive
	}), repository.PageQuery{Limit: 12, Offset: 0}).Return(&repository.PageResult[model.Experience]{
		Items: []model.Experience{{ID: "exp-1", Images: []string{"a.jpg"}}},
		Total: 1,
	}, nil)
	svc := newExperienceService(repo, new(repoMocks.MockBookingRepository), new(storeMocks.MockStorage))
	ctx := context.Background()

	res, err := svc.Search(ctx, SearchQuery{Location: " Porto "})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, []string{"https://cdn.example/signed"}, res.Items[0].ImageURLs)

	_, err = svc.Search(ctx, SearchQuery{MinPriceCents: 500, MaxPriceCents: 100})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Search(ctx, SearchQuery{Sort: "cheapest"})
	assert.ErrorIs(t, err, ErrValidation)
	repo.AssertExpectations(t)
}

func TestExperienceService_Availability(t *testing.T) {
	day := time.Date(2026, 5, 2, 15, 0, 0, 0, time.UTC)
	repo := new(repoMocks.MockExperienceRepository)
	bookings := new(repoMocks.MockBookingRepository)
	repo.On("FindByID", mock.Anything, "exp-1").Return(&model.Experience{ID: "exp-1", MaxGuests: 6, Status: model.ExperienceActive}, nil)
	bookings.On("ReservedSeats", mock.Anything, "exp-1", time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)).Return(4, nil)
	svc := newExperienceService(repo, bookings, new(storeMocks.MockStorage))

	a, err := svc.Availability(context.Background(), "exp-1", day)

	require.NoError(t, err)
	assert.Equal(t, &Availability{ExperienceID: "exp-1", Date: "2026-05-02", Capacity: 6, Reserved: 4, Remaining: 2}, a)
}
