package model

import "time"

// TransactionType classifies ledger entries.
type TransactionType string

const (
	TxCharge      TransactionType = "charge"
	TxRefund      TransactionType = "refund"
	TxPlatformFee TransactionType = "platform_fee"
	TxPayout      TransactionType = "payout"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TxCharge, TxRefund, TxPlatformFee, TxPayout:
		return true
	}
	return false
}

// FinancialTransaction is an append-only record of money moving for a booking.
type FinancialTransaction struct {
	ID          string          `json:"id"`
	BookingID   string          `json:"booking_id,omitempty"`
	UserID      string          `json:"user_id,omitempty"`
	Type        TransactionType `json:"type"`
	AmountCents int64           `json:"amount_cents"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	ExternalID  string          `json:"external_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
