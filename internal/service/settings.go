package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"marketapi/internal/cache"
	"marketapi/internal/logger"
	"marketapi/internal/model"
	"marketapi/internal/repository"
)

const settingsTTL = 5 * time.Minute

// SettingsService exposes the platform-wide booking policy.
type SettingsService interface {
	Get(ctx context.Context) (model.Settings, error)
	// Update validates and stores the given keys. Unknown keys or out of range values are rejected as a whole.
	Update(ctx context.Context, kv map[string]string) (model.Settings, error)
}

type settingsService struct {
	repo  repository.SettingsRepository
	cache cache.Cache
	log   zerolog.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo repository.SettingsRepository, c cache.Cache, log zerolog.Logger) SettingsService {
	return &settingsService{repo: repo, cache: c, log: log}
}

func (s *settingsService) Get(ctx context.Context) (model.Settings, error) {
	return cache.Load(ctx, s.cache, s.log, cache.KeySettings, settingsTTL, func(ctx context.Context) (model.Settings, error) {
		kv, err := s.repo.All(ctx)
		if err != nil {
			return model.Settings{}, fmt.Errorf("load settings: %w", err)
		}
		return model.SettingsFromMap(kv), nil
	})
}

func (s *settingsService) Update(ctx context.Context, kv map[string]string) (model.Settings, error) {
	if len(kv) == 0 {
		return model.Settings{}, invalid("settings", "at least one setting is required")
	}
	current, err := s.Get(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	next := current
	for k, v := range kv {
		if err := next.Apply(k, v); err != nil {
			return model.Settings{}, invalid(k, err.Error())
		}
	}

	if err := s.repo.Set(ctx, settingsToMap(next, kv)); err != nil {
		return model.Settings{}, fmt.Errorf("store settings: %w", err)
	}
	cache.Invalidate(ctx, s.cache, s.log, cache.KeySettings)
	lg := logger.Ctx(ctx, s.log)
	lg.Info().Str("event", "settings_updated").Interface("keys", keys(kv)).Msg("platform settings updated")
	return next, nil
}

// settingsToMap renders the normalized values of the keys that were submitted.
func settingsToMap(st model.Settings, submitted map[string]string) map[string]string {
	all := map[string]string{
		model.SettingPlatformFeePercent:       strconv.Itoa(st.PlatformFeePercent),
		model.SettingFreeCancellationHours:    strconv.Itoa(st.FreeCancellationHours),
		model.SettingLateCancellationRefundPc: strconv.Itoa(st.LateCancellationRefundPercent),
		model.SettingHostApprovalHours:        strconv.Itoa(st.HostApprovalHours),
		model.SettingPaymentWindowMinutes:     strconv.Itoa(st.PaymentWindowMinutes),
		model.SettingDefaultCurrency:          st.DefaultCurrency,
	}
	out := make(map[string]string, len(submitted))
	for k := range submitted {
		out[k] = all[k]
	}
	return out
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
