package model

import "time"

// ExperienceStatus controls whether an experience is visible and bookable.
type ExperienceStatus string

const (
	ExperienceDraft     ExperienceStatus = "draft"
	ExperienceActive    ExperienceStatus = "active"
	ExperienceInactive  ExperienceStatus = "inactive"
	ExperienceSuspended ExperienceStatus = "suspended"
)

// Valid reports whether s is a known experience status.
func (s ExperienceStatus) Valid() bool {
	switch s {
	case ExperienceDraft, ExperienceActive, ExperienceInactive, ExperienceSuspended:
		return true
	}
	return false
}

// Experience is a bookable activity offered by a host.
type Experience struct {
	ID              string           `json:"id"`
	HostID          string           `json:"host_id"`
	CategoryID      string           `json:"category_id,omitempty"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Location        string           `json:"location"`
	MeetingPoint    string           `json:"meeting_point"`
	PriceCents      int64            `json:"price_cents"`
	Currency        string           `json:"currency"`
	DurationMinutes int              `json:"duration_minutes"`
	MinGuests       int              `json:"min_guests"`
	MaxGuests       int              `json:"max_guests"`
	InstantBooking  bool             `json:"instant_booking"`
	Highlights      []string         `json:"highlights"`
	Images          []string         `json:"-"`
	ImageURLs       []string         `json:"images"`
	Status          ExperienceStatus `json:"status"`
	RatingAvg       float64          `json:"rating_avg"`
	ReviewCount     int              `json:"review_count"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Publishable reports whether the experience has everything needed to go live.
func (e *Experience) Publishable() bool {
	return e.Title != "" && e.Description != "" && e.PriceCents > 0 && len(e.Images) > 0
}

// ExperienceSort orders search results.
type ExperienceSort string

const (
	SortNewest    ExperienceSort = "newest"
	SortPriceAsc  ExperienceSort = "price_asc"
	SortPriceDesc ExperienceSort = "price_desc"
	SortRating    ExperienceSort = "rating"
)

// ExperienceFilter narrows experience searches. Zero values mean "no constraint".
type ExperienceFilter struct {
	CategorySlug  string
	Location      string
	Query         string
	MinPriceCents int64
	MaxPriceCents int64
	Guests        int
	HostID        string
	Statuses      []ExperienceStatus
	Sort          ExperienceSort
}
