package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketapi/internal/model"
	"marketapi/internal/repository"
	"marketapi/internal/storage"
)

const (
	searchDefaultLimit = 12
	searchMaxLimit     = 50
	maxImages          = 10
)

// ExperienceInput carries the host-editable experience fields.
type ExperienceInput struct {
	CategoryID      string
	Title           string
	Description     string
	Location        string
	MeetingPoint    string
	PriceCents      int64
	Currency        string
	DurationMinutes int
	MinGuests       int
	MaxGuests       int
	InstantBooking  bool
	Highlights      []string
}

// SearchQuery is the public experience search.
type SearchQuery struct {
	CategorySlug  string
	Location      string
	Query         string
	MinPriceCents int64
	MaxPriceCents int64
	Guests        int
	Sort          model.ExperienceSort
	Limit         int
	Offset        int
}

// Availability is the seat count for one experience date.
type Availability struct {
	ExperienceID string `json:"experience_id"`
	Date         string `json:"date"`
	Capacity     int    `json:"capacity"`
	Reserved     int    `json:"reserved"`
	Remaining    int    `json:"remaining"`
}

// ExperienceService manages experiences and their photos.
type ExperienceService interface {
	Create(ctx context.Context, hostID string, in ExperienceInput) (*model.Experience, error)
	Update(ctx context.Context, actor Actor, id string, in ExperienceInput) (*model.Experience, error)
	// Delete returns ErrConflict while bookings hold seats. An experience with only
	// past bookings is archived rather than removed.
	Delete(ctx context.Context, actor Actor, id string) error
	// SetStatus changes visibility. Hosts may not suspend; activation requires a publishable experience.
	SetStatus(ctx context.Context, actor Actor, id string, status model.ExperienceStatus) (*model.Experience, error)
	AddImage(ctx context.Context, actor Actor, id string, r io.Reader, contentType string, size int64) (*model.Experience, error)
	RemoveImage(ctx context.Context, actor Actor, id string, index int) (*model.Experience, error)
	// Get returns active experiences to anyone and any experience to its host or an admin.
	Get(ctx context.Context, viewer Actor, id string) (*model.Experience, error)
	// Image opens photo index of an experience the viewer may see. The caller closes the reader.
	Image(ctx context.Context, viewer Actor, id string, index int) (io.ReadCloser, storage.ObjectInfo, error)
	Search(ctx context.Context, q SearchQuery) (*ListResult[model.Experience], error)
	ListMine(ctx context.Context, hostID string, limit, offset int) (*ListResult[model.Experience], error)
	Availability(ctx context.Context, id string, date time.Time) (*Availability, error)
}

type experienceService struct {
	repo     repository.ExperienceRepository
	bookings repository.BookingRepository
	settings SettingsService
	store    storage.Storage
	signer   URLSigner
	log      zerolog.Logger
}

// NewExperienceService constructs an ExperienceService.
func NewExperienceService(repo repository.ExperienceRepository, bookings repository.BookingRepository, settings SettingsService, store storage.Storage, signer URLSigner, log zerolog.Logger) ExperienceService {
	return &experienceService{repo: repo, bookings: bookings, settings: settings, store: store, signer: signer, log: log}
}

func (s *experienceService) withURLs(ctx context.Context, e *model.Experience) *model.Experience {
	e.ImageURLs = s.signer.signAll(ctx, e.Images)
	return e
}

func validateExperience(in *ExperienceInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.MeetingPoint = strings.TrimSpace(in.MeetingPoint)
	currencyOK := true
	if in.Currency = strings.TrimSpace(in.Currency); in.Currency != "" {
		in.Currency, currencyOK = model.NormalizeCurrency(in.Currency)
	}

	switch {
	case in.Title == "" || len([]rune(in.Title)) > 120:
		return invalid("title", "must be 1 to 120 characters")
	case len([]rune(in.Description)) > 5000:
		return invalid("description", "must be at most 5000 characters")
	case in.Location == "":
		return invalid("location", "is required")
	case in.PriceCents <= 0:
		return invalid("price_cents", "must be positive")
	case !currencyOK:
		return invalid("currency", "must be a 3-letter code")
	case in.DurationMinutes <= 0 || in.DurationMinutes > 24*60:
		return invalid("duration_minutes", "must be between 1 and 1440")
	case in.MinGuests < 1:
		return invalid("min_guests", "must be at least 1")
	case in.MaxGuests < in.MinGuests:
		return invalid("max_guests", "must be at least min_guests")
	case len(in.Highlights) > 20:
		return invalid("highlights", "at most 20 entries")
	}
	highlights := make([]string, 0, len(in.Highlights))
	for _, h := range in.Highlights {
		if h = strings.TrimSpace(h); h != "" {
			highlights = append(highlights, h)
		}
	}
	in.Highlights = highlights
	return nil
}

func (s *experienceService) Create(ctx context.Context, hostID string, in ExperienceInput) (*model.Experience, error) {
	if err := validateExperience(&in); err != nil {
		return nil, err
	}
	if in.Currency == "" {
		st, err := s.settings.Get(ctx)
		if err != nil {
			return nil, err
		}
		in.Currency = st.DefaultCurrency
	}
	now := utcNow()
	e := &model.Experience{
		ID:              uuid.NewString(),
		HostID:          hostID,
		CategoryID:      in.CategoryID,
		Title:           in.Title,
		Description:     in.Description,
		Location:        in.Location,
		MeetingPoint:    in.MeetingPoint,
		PriceCents:      in.PriceCents,
		Currency:        in.Currency,
		DurationMinutes: in.DurationMinutes,
		MinGuests:       in.MinGuests,
		MaxGuests:       in.MaxGuests,
		InstantBooking:  in.InstantBooking,
		Highlights:      in.Highlights,
		Images:          []string{},
		Status:          model.ExperienceDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	created, err := s.repo.Create(ctx, e)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, invalid("category_id", "unknown category")
		}
		return nil, fmt.Errorf("create experience: %w", err)
	}
	return s.withURLs(ctx, created), nil
}

// owned loads an experience the actor may manage.
func (s *experienceService) owned(ctx context.Context, actor Actor, id string) (*model.Experience, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "get experience")
	}
	if e.HostID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return e, nil
}

func (s *experienceService) Update(ctx context.Context, actor Actor, id string, in ExperienceInput) (*model.Experience, error) {
	e, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := validateExperience(&in); err != nil {
		return nil, err
	}
	e.CategoryID = in.CategoryID
	e.Title = in.Title
	e.Description = in.Description
	e.Location = in.Location
	e.MeetingPoint = in.MeetingPoint
	e.PriceCents = in.PriceCents
	if in.Currency != "" {
		e.Currency = in.Currency
	}
	e.DurationMinutes = in.DurationMinutes
	e.MinGuests = in.MinGuests
	e.MaxGuests = in.MaxGuests
	e.InstantBooking = in.InstantBooking
	e.Highlights = in.Highlights

	updated, err := s.repo.Update(ctx, e)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, invalid("category_id", "unknown category")
		}
		return nil, notFound(err, "update experience")
	}
	return s.withURLs(ctx, updated), nil
}

func (s *experienceService) Delete(ctx context.Context, actor Actor, id string) error {
	e, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	active, total, err := s.bookings.CountForExperience(ctx, id)
	if err != nil {
		return fmt.Errorf("count bookings: %w", err)
	}
	if active > 0 {
		return ErrConflict
	}
	if total > 0 {
		// Past bookings keep pointing at the row, so it is hidden instead of removed.
		if err := s.repo.Archive(ctx, id); err != nil {
			return notFound(err, "archive experience")
		}
		return nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrConflict
		}
		return notFound(err, "delete experience")
	}
	for _, key := range e.Images {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("event", "image_cleanup_failed").Str("key", key).Msg("experience image not deleted")
		}
	}
	return nil
}

func (s *experienceService) SetStatus(ctx context.Context, actor Actor, id string, status model.ExperienceStatus) (*model.Experience, error) {
	if !status.Valid() {
		return nil, invalid("status", "unknown status")
	}
	e, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if status == model.ExperienceSuspended {
			return nil, ErrForbidden
		}
		if e.Status == model.ExperienceSuspended {
			return nil, ErrForbidden
		}
	}
	if status == model.ExperienceActive && !e.Publishable() {
		return nil, invalid("status", "add a title, description, price and at least one photo before publishing")
	}
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return nil, notFound(err, "set experience status")
	}
	e.Status = status
	return s.withURLs(ctx, e), nil
}

func (s *experienceService) AddImage(ctx context.Context, actor Actor, id string, r io.Reader, contentType string, size int64) (*model.Experience, error) {
	if r == nil {
		return nil, invalid("file", "file is required")
	}
	ext, err := storage.ImageExtension(contentType, size)
	if err != nil {
		return nil, invalid("file", err.Error())
	}
	e, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if len(e.Images) >= maxImages {
		return nil, invalid("file", fmt.Sprintf("at most %d photos per experience", maxImages))
	}

	key := storage.ExperienceImageKey(id, ext)
	if _, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{Size: size, ContentType: contentType}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	images := append(append([]string{}, e.Images...), key)
	if err := s.repo.SetImages(ctx, id, images); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	e.Images = images
	return s.withURLs(ctx, e), nil
}

func (s *experienceService) RemoveImage(ctx context.Context, actor Actor, id string, index int) (*model.Experience, error) {
	e, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(e.Images) {
		return nil, ErrNotFound
	}
	if e.Status == model.ExperienceActive && len(e.Images) == 1 {
		return nil, invalid("index", "an active experience must keep at least one photo")
	}
	key := e.Images[index]
	images := append(append([]string{}, e.Images[:index]...), e.Images[index+1:]...)
	if err := s.repo.SetImages(ctx, id, images); err != nil {
		return nil, notFound(err, "remove image")
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("event", "image_cleanup_failed").Str("key", key).Msg("experience image not deleted")
	}
	e.Images = images
	return s.withURLs(ctx, e), nil
}

func (s *experienceService) Get(ctx context.Context, viewer Actor, id string) (*model.Experience, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "get experience")
	}
	if e.Status != model.ExperienceActive && e.HostID != viewer.ID && !viewer.IsAdmin() {
		return nil, ErrNotFound
	}
	return s.withURLs(ctx, e), nil
}

func (s *experienceService) Image(ctx context.Context, viewer Actor, id string, index int) (io.ReadCloser, storage.ObjectInfo, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, notFound(err, "get experience")
	}
	if e.Status != model.ExperienceActive && e.HostID != viewer.ID && !viewer.IsAdmin() {
		return nil, storage.ObjectInfo{}, ErrNotFound
	}
	if index < 0 || index >= len(e.Images) {
		return nil, storage.ObjectInfo{}, ErrNotFound
	}
	rc, info, err := s.store.Get(ctx, e.Images[index])
	if err != nil {
		return nil, storage.ObjectInfo{}, fmt.Errorf("open image: %w", err)
	}
	return rc, info, nil
}

func (s *experienceService) Search(ctx context.Context, q SearchQuery) (*ListResult[model.Experience], error) {
	if q.MinPriceCents < 0 || q.MaxPriceCents < 0 || (q.MaxPriceCents > 0 && q.MinPriceCents > q.MaxPriceCents) {
		return nil, invalid("price", "invalid price range")
	}
	switch q.Sort {
	case "", model.SortNewest, model.SortPriceAsc, model.SortPriceDesc, model.SortRating:
	default:
		return nil, invalid("sort", "must be newest, price_asc, price_desc or rating")
	}
	f := model.ExperienceFilter{
		CategorySlug:  strings.TrimSpace(q.CategorySlug),
		Location:      strings.TrimSpace(q.Location),
		Query:         strings.TrimSpace(q.Query),
		MinPriceCents: q.MinPriceCents,
		MaxPriceCents: q.MaxPriceCents,
		Guests:        q.Guests,
		Statuses:      []model.ExperienceStatus{model.ExperienceActive},
		Sort:          q.Sort,
	}
	res, err := s.repo.Search(ctx, f, pageQuery(q.Limit, q.Offset, searchDefaultLimit, searchMaxLimit))
	if err != nil {
		return nil, fmt.Errorf("search experiences: %w", err)
	}
	for i := range res.Items {
		s.withURLs(ctx, &res.Items[i])
	}
	return listResult(res), nil
}

func (s *experienceService) ListMine(ctx context.Context, hostID string, limit, offset int) (*ListResult[model.Experience], error) {
	res, err := s.repo.Search(ctx, model.ExperienceFilter{HostID: hostID, Sort: model.SortNewest},
		pageQuery(limit, offset, defaultPageLimit, maxPageLimit))
	if err != nil {
		return nil, fmt.Errorf("list host experiences: %w", err)
	}
	for i := range res.Items {
		s.withURLs(ctx, &res.Items[i])
	}
	return listResult(res), nil
}

func (s *experienceService) Availability(ctx context.Context, id string, date time.Time) (*Availability, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "get experience")
	}
	if e.Status != model.ExperienceActive {
		return nil, ErrNotFound
	}
	day := truncateDay(date)
	reserved, err := s.bookings.ReservedSeats(ctx, id, day)
	if err != nil {
		return nil, fmt.Errorf("reserved seats: %w", err)
	}
	remaining := e.MaxGuests - reserved
	if remaining < 0 {
		remaining = 0
	}
	return &Availability{
		ExperienceID: id,
		Date:         day.Format(dateLayout),
		Capacity:     e.MaxGuests,
		Reserved:     reserved,
		Remaining:    remaining,
	}, nil
}
