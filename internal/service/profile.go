package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"marketapi/internal/model"
	"marketapi/internal/payment"
	"marketapi/internal/repository"
	"marketapi/internal/storage"
)

// ProfileUpdate carries the user-editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	FullName *string
	Bio      *string
	Phone    *string
	Location *string
}

// ProfileService manages the caller's marketplace profile.
type ProfileService interface {
	// Ensure returns the user's profile, creating a guest profile on first sight.
	Ensure(ctx context.Context, userID, email string) (*model.Profile, error)
	GetMe(ctx context.Context, userID string) (*model.Profile, error)
	Get(ctx context.Context, id string) (*model.PublicProfile, error)
	UpdateMe(ctx context.Context, userID string, in ProfileUpdate) (*model.Profile, error)
	UploadAvatar(ctx context.Context, userID string, r io.Reader, contentType string, size int64) (*model.Profile, error)
	BecomeHost(ctx context.Context, userID string) (*model.Profile, error)
	// StartPayoutOnboarding returns the URL where a host completes payout account setup.
	StartPayoutOnboarding(ctx context.Context, userID string) (string, error)
	RefreshPayoutStatus(ctx context.Context, userID string) (*model.Profile, error)
}

type profileService struct {
	repo    repository.ProfileRepository
	store   storage.Storage
	gateway payment.Gateway
	signer  URLSigner
	log     zerolog.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo repository.ProfileRepository, store storage.Storage, gateway payment.Gateway, signer URLSigner, log zerolog.Logger) ProfileService {
	return &profileService{repo: repo, store: store, gateway: gateway, signer: signer, log: log}
}

func (s *profileService) withURLs(ctx context.Context, p *model.Profile) *model.Profile {
	p.AvatarURL = s.signer.sign(ctx, p.AvatarPath)
	return p
}

func (s *profileService) Ensure(ctx context.Context, userID, email string) (*model.Profile, error) {
	p, err := s.repo.Ensure(ctx, userID, email)
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	return p, nil
}

func (s *profileService) GetMe(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "get profile")
	}
	return s.withURLs(ctx, p), nil
}

func (s *profileService) Get(ctx context.Context, id string) (*model.PublicProfile, error) {
	p, err := s.GetMe(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := p.Public()
	return &pub, nil
}

func (s *profileService) UpdateMe(ctx context.Context, userID string, in ProfileUpdate) (*model.Profile, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "get profile")
	}
	apply := func(dst *string, v *string, field string, max int) error {
		if v == nil {
			return nil
		}
		val := strings.TrimSpace(*v)
		if len([]rune(val)) > max {
			return invalid(field, fmt.Sprintf("must be at most %d characters", max))
		}
		*dst = val
		return nil
	}
	for _, err := range []error{
		apply(&p.FullName, in.FullName, "full_name", 120),
		apply(&p.Bio, in.Bio, "bio", 2000),
		apply(&p.Phone, in.Phone, "phone", 32),
		apply(&p.Location, in.Location, "location", 120),
	} {
		if err != nil {
			return nil, err
		}
	}
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, notFound(err, "update profile")
	}
	return s.withURLs(ctx, updated), nil
}

// UploadAvatar stores the new image, points the profile at it and drops the old object.
func (s *profileService) UploadAvatar(ctx context.Context, userID string, r io.Reader, contentType string, size int64) (*model.Profile, error) {
	if r == nil {
		return nil, invalid("file", "file is required")
	}
	ext, err := storage.ImageExtension(contentType, size)
	if err != nil {
		return nil, invalid("file", err.Error())
	}
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "get profile")
	}

	key := storage.AvatarKey(userID, ext)
	if _, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{Size: size, ContentType: contentType}); err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	old := p.AvatarPath
	p.AvatarPath = key
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	if old != "" {
		if err := s.store.Delete(ctx, old); err != nil {
			s.log.Warn().Err(err).Str("event", "avatar_cleanup_failed").Str("key", old).Msg("old avatar not deleted")
		}
	}
	return s.withURLs(ctx, updated), nil
}

func (s *profileService) BecomeHost(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "get profile")
	}
	if p.Role.CanHost() {
		return s.withURLs(ctx, p), nil
	}
	if err := s.repo.SetRole(ctx, userID, model.RoleHost); err != nil {
		return nil, notFound(err, "set role")
	}
	p.Role = model.RoleHost
	s.log.Info().Str("event", "host_enabled").Str("user_id", userID).Msg("user became a host")
	return s.withURLs(ctx, p), nil
}

func (s *profileService) StartPayoutOnboarding(ctx context.Context, userID string) (string, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", notFound(err, "get profile")
	}
	if !p.Role.CanHost() {
		return "", ErrForbidden
	}

	accountID := p.StripeAccountID
	if accountID == "" {
		accountID, err = s.gateway.CreateConnectedAccount(ctx, p.Email)
		if err != nil {
			return "", &PaymentError{Op: "create_account", Err: err}
		}
		if err := s.repo.SetPayoutAccount(ctx, userID, accountID, false); err != nil {
			return "", fmt.Errorf("store payout account: %w", err)
		}
	}

	link, err := s.gateway.OnboardingLink(ctx, accountID)
	if err != nil {
		return "", &PaymentError{Op: "onboarding_link", Err: err}
	}
	return link, nil
}

func (s *profileService) RefreshPayoutStatus(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "get profile")
	}
	if p.StripeAccountID == "" {
		return nil, invalid("payouts", "payout onboarding has not been started")
	}
	enabled, err := s.gateway.AccountPayoutsEnabled(ctx, p.StripeAccountID)
	if err != nil {
		return nil, &PaymentError{Op: "account_status", Err: err}
	}
	if enabled != p.PayoutsEnabled {
		if err := s.repo.SetPayoutAccount(ctx, userID, p.StripeAccountID, enabled); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("store payout status: %w", err)
		}
		p.PayoutsEnabled = enabled
	}
	return s.withURLs(ctx, p), nil
}
