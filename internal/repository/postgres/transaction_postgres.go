package postgres

import (
	"context"
	"database/sql"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

const transactionColumns = `id, booking_id, user_id, type, amount_cents, currency, status, external_id, created_at`

// TransactionPostgres is a PostgreSQL implementation of repository.TransactionRepository.
type TransactionPostgres struct {
	db *sql.DB
}

// NewTransactionPostgres creates a new TransactionPostgres repository.
func NewTransactionPostgres(db *sql.DB) *TransactionPostgres {
	return &TransactionPostgres{db: db}
}

var _ repository.TransactionRepository = (*TransactionPostgres)(nil)

func scanTransaction(s scanner) (*model.FinancialTransaction, error) {
	var t model.FinancialTransaction
	var bookingID, userID sql.NullString
	if err := s.Scan(
		&t.ID,
		&bookingID,
		&userID,
		&t.Type,
		&t.AmountCents,
		&t.Currency,
		&t.Status,
		&t.ExternalID,
		&t.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	t.BookingID = bookingID.String
	t.UserID = userID.String
	return &t, nil
}

// Create appends a ledger entry.
func (r *TransactionPostgres) Create(ctx context.Context, t *model.FinancialTransaction) (*model.FinancialTransaction, error) {
	const q = `
		INSERT INTO financial_transactions (id, booking_id, user_id, type, amount_cents, currency, status, external_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + transactionColumns
	return scanTransaction(r.db.QueryRowContext(ctx, q,
		t.ID,
		nullString(t.BookingID),
		nullString(t.UserID),
		t.Type,
		t.AmountCents,
		t.Currency,
		t.Status,
		t.ExternalID,
		t.CreatedAt,
	))
}

// ListByBooking returns a booking's ledger entries in the order they were recorded.
func (r *TransactionPostgres) ListByBooking(ctx context.Context, bookingID string) ([]model.FinancialTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM financial_transactions WHERE booking_id = $1 ORDER BY created_at, id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// List returns ledger entries, newest first. An empty txType lists all types.
func (r *TransactionPostgres) List(ctx context.Context, txType model.TransactionType, page repository.PageQuery) (*repository.PageResult[model.FinancialTransaction], error) {
	page = normalizePage(page)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM financial_transactions WHERE ($1 = '' OR type = $1)`, string(txType)).
		Scan(&total); err != nil {
		return nil, err
	}

	const q = `
		SELECT ` + transactionColumns + `
		FROM financial_transactions
		WHERE ($1 = '' OR type = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, q, string(txType), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.FinancialTransaction]{Items: items, Total: total}, nil
}

// SumByType totals succeeded entries per type.
func (r *TransactionPostgres) SumByType(ctx context.Context, userID string) (map[model.TransactionType]int64, error) {
	const q = `
		SELECT type, COALESCE(SUM(amount_cents), 0)
		FROM financial_transactions
		WHERE status = 'succeeded' AND ($1 = '' OR user_id::text = $1)
		GROUP BY type
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.TransactionType]int64)
	for rows.Next() {
		var t model.TransactionType
		var sum int64
		if err := rows.Scan(&t, &sum); err != nil {
			return nil, err
		}
		out[t] = sum
	}
	return out, rows.Err()
}

func collectTransactions(rows *sql.Rows) ([]model.FinancialTransaction, error) {
	items := make([]model.FinancialTransaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}
