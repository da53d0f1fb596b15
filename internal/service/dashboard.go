package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"marketapi/internal/logger"
	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// HostDashboard summarizes a host's business.
type HostDashboard struct {
	UpcomingBookings    int     `json:"upcoming_bookings"`
	PendingApprovals    int     `json:"pending_approvals"`
	EarningsPaidCents   int64   `json:"earnings_paid_cents"`
	EarningsPendingCents int64  `json:"earnings_pending_cents"`
	AverageRating       float64 `json:"average_rating"`
}

// PlatformStats is the admin overview.
type PlatformStats struct {
	Users               int                         `json:"users"`
	Hosts               int                         `json:"hosts"`
	ActiveExperiences   int                         `json:"active_experiences"`
	BookingsByStatus    map[model.BookingStatus]int `json:"bookings_by_status"`
	GrossVolumeCents    int64                       `json:"gross_volume_cents"`
	PlatformRevenue     int64                       `json:"platform_revenue_cents"`
	RefundedVolumeCents int64                       `json:"refunded_volume_cents"`
}

// DashboardService serves the host dashboard and the admin console.
type DashboardService interface {
	HostDashboard(ctx context.Context, hostID string) (*HostDashboard, error)
	Stats(ctx context.Context) (*PlatformStats, error)
	ListUsers(ctx context.Context, role model.Role, limit, offset int) (*ListResult[model.Profile], error)
	SetUserRole(ctx context.Context, adminID, userID string, role model.Role) error
	ListTransactions(ctx context.Context, txType model.TransactionType, limit, offset int) (*ListResult[model.FinancialTransaction], error)
}

type dashboardService struct {
	profiles     repository.ProfileRepository
	experiences  repository.ExperienceRepository
	bookings     repository.BookingRepository
	reviews      repository.ReviewRepository
	transactions repository.TransactionRepository
	log          zerolog.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(profiles repository.ProfileRepository, experiences repository.ExperienceRepository, bookings repository.BookingRepository, reviews repository.ReviewRepository, transactions repository.TransactionRepository, log zerolog.Logger) DashboardService {
	return &dashboardService{
		profiles:     profiles,
		experiences:  experiences,
		bookings:     bookings,
		reviews:      reviews,
		transactions: transactions,
		log:          log,
	}
}

func (s *dashboardService) HostDashboard(ctx context.Context, hostID string) (*HostDashboard, error) {
	upcoming, err := s.bookings.CountUpcoming(ctx, hostID, utcNow())
	if err != nil {
		return nil, fmt.Errorf("count upcoming bookings: %w", err)
	}
	byStatus, err := s.bookings.CountByStatus(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	paid, err := s.transactions.SumByType(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("sum host transactions: %w", err)
	}
	pending, err := s.bookings.SumHostPayouts(ctx, hostID, []model.BookingStatus{model.BookingConfirmed, model.BookingCompleted})
	if err != nil {
		return nil, fmt.Errorf("sum pending payouts: %w", err)
	}
	rating, err := s.reviews.AverageForHost(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	return &HostDashboard{
		UpcomingBookings:    upcoming,
		PendingApprovals:    byStatus[model.BookingPendingHostApproval],
		EarningsPaidCents:   paid[model.TxPayout],
		EarningsPendingCents: pending,
		AverageRating:       rating,
	}, nil
}

func (s *dashboardService) Stats(ctx context.Context) (*PlatformStats, error) {
	roles, err := s.profiles.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	exps, err := s.experiences.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count experiences: %w", err)
	}
	bookings, err := s.bookings.CountByStatus(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	sums, err := s.transactions.SumByType(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("sum transactions: %w", err)
	}
	users := 0
	for _, n := range roles {
		users += n
	}
	return &PlatformStats{
		Users:               users,
		Hosts:               roles[model.RoleHost],
		ActiveExperiences:   exps[model.ExperienceActive],
		BookingsByStatus:    bookings,
		GrossVolumeCents:    sums[model.TxCharge],
		PlatformRevenue:     sums[model.TxPlatformFee],
		RefundedVolumeCents: sums[model.TxRefund],
	}, nil
}

func (s *dashboardService) ListUsers(ctx context.Context, role model.Role, limit, offset int) (*ListResult[model.Profile], error) {
	if role != "" && !role.Valid() {
		return nil, invalid("role", "unknown role")
	}
	res, err := s.profiles.List(ctx, role, pageQuery(limit, offset, defaultPageLimit, maxPageLimit))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return listResult(res), nil
}

func (s *dashboardService) SetUserRole(ctx context.Context, adminID, userID string, role model.Role) error {
	if !role.Valid() {
		return invalid("role", "unknown role")
	}
	if adminID == userID && role != model.RoleAdmin {
		return invalid("role", "admins cannot demote themselves")
	}
	if err := s.profiles.SetRole(ctx, userID, role); err != nil {
		return notFound(err, "set role")
	}
	lg := logger.Ctx(ctx, s.log)
	lg.Info().Str("event", "role_changed").Str("admin_id", adminID).Str("user_id", userID).Str("role", string(role)).Msg("user role changed")
	return nil
}

func (s *dashboardService) ListTransactions(ctx context.Context, txType model.TransactionType, limit, offset int) (*ListResult[model.FinancialTransaction], error) {
	if txType != "" && !txType.Valid() {
		return nil, invalid("type", "unknown transaction type")
	}
	res, err := s.transactions.List(ctx, txType, pageQuery(limit, offset, defaultPageLimit, maxPageLimit))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return listResult(res), nil
}
