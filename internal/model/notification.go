package model

import "time"

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	NotifyBookingRequest   NotificationType = "booking_request"
	NotifyBookingConfirmed NotificationType = "booking_confirmed"
	NotifyBookingDeclined  NotificationType = "booking_declined"
	NotifyBookingCancelled NotificationType = "booking_cancelled"
	NotifyReviewReminder   NotificationType = "review_reminder"
	NotifyNewReview        NotificationType = "new_review"
	NotifyPayoutSent       NotificationType = "payout_sent"
	NotifyNewMessage       NotificationType = "new_message"
)

// Notification is an in-app notice for a user.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Link      string           `json:"link,omitempty"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
