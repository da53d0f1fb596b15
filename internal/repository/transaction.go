package repository

import (
	"context"

	"marketapi/internal/model"
)

// TransactionRepository persists the financial ledger.
type TransactionRepository interface {
	Create(ctx context.Context, t *model.FinancialTransaction) (*model.FinancialTransaction, error)
	ListByBooking(ctx context.Context, bookingID string) ([]model.FinancialTransaction, error)
	List(ctx context.Context, txType model.TransactionType, pq PageQuery) (*PageResult[model.FinancialTransaction], error)
	// SumByType totals succeeded transactions per type. A non-empty userID restricts to that user.
	SumByType(ctx context.Context, userID string) (map[model.TransactionType]int64, error)
}
