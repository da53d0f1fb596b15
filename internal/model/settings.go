package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Platform setting keys.
const (
	SettingPlatformFeePercent       = "platform_fee_percent"
	SettingFreeCancellationHours    = "free_cancellation_hours"
	SettingLateCancellationRefundPc = "late_cancellation_refund_percent"
	SettingHostApprovalHours        = "host_approval_hours"
	SettingPaymentWindowMinutes     = "payment_window_minutes"
	SettingDefaultCurrency          = "default_currency"
)

// Settings is the typed view over the platform_settings key/value table.
type Settings struct {
	PlatformFeePercent            int    `json:"platform_fee_percent"`
	FreeCancellationHours         int    `json:"free_cancellation_hours"`
	LateCancellationRefundPercent int    `json:"late_cancellation_refund_percent"`
	HostApprovalHours             int    `json:"host_approval_hours"`
	PaymentWindowMinutes          int    `json:"payment_window_minutes"`
	DefaultCurrency               string `json:"default_currency"`
}

// DefaultSettings are used for keys missing from the table.
func DefaultSettings() Settings {
	return Settings{
		PlatformFeePercent:            15,
		FreeCancellationHours:         24,
		LateCancellationRefundPercent: 0,
		HostApprovalHours:             48,
		PaymentWindowMinutes:          30,
		DefaultCurrency:               "usd",
	}
}

type intSetting struct {
	min, max int
	field    func(*Settings) *int
}

var intSettings = map[string]intSetting{
	SettingPlatformFeePercent:       {0, 50, func(s *Settings) *int { return &s.PlatformFeePercent }},
	SettingFreeCancellationHours:    {0, 720, func(s *Settings) *int { return &s.FreeCancellationHours }},
	SettingLateCancellationRefundPc: {0, 100, func(s *Settings) *int { return &s.LateCancellationRefundPercent }},
	SettingHostApprovalHours:        {1, 720, func(s *Settings) *int { return &s.HostApprovalHours }},
	SettingPaymentWindowMinutes:     {5, 1440, func(s *Settings) *int { return &s.PaymentWindowMinutes }},
}

// Apply validates a single key/value pair and stores it into s.
func (s *Settings) Apply(key, value string) error {
	value = strings.TrimSpace(value)
	if key == SettingDefaultCurrency {
		code, ok := NormalizeCurrency(value)
		if !ok {
			return fmt.Errorf("%s must be a 3-letter currency code", key)
		}
		s.DefaultCurrency = code
		return nil
	}
	def, ok := intSettings[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer", key)
	}
	if n < def.min || n > def.max {
		return fmt.Errorf("%s must be between %d and %d", key, def.min, def.max)
	}
	*def.field(s) = n
	return nil
}

// SettingsFromMap builds settings over the defaults. Unknown or invalid stored values are ignored.
func SettingsFromMap(kv map[string]string) Settings {
	s := DefaultSettings()
	for k, v := range kv {
		_ = s.Apply(k, v)
	}
	return s
}
