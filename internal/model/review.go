package model

import "time"

// Review is a guest's rating of a completed booking.
type Review struct {
	ID           string     `json:"id"`
	BookingID    string     `json:"booking_id"`
	ExperienceID string     `json:"experience_id"`
	GuestID      string     `json:"guest_id"`
	HostID       string     `json:"host_id"`
	Rating       int        `json:"rating"`
	Comment      string     `json:"comment"`
	HostReply    string     `json:"host_reply,omitempty"`
	RepliedAt    *time.Time `json:"replied_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	GuestName    string     `json:"guest_name,omitempty"`
}
