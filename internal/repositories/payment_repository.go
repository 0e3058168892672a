package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/payments"
)

const paymentColumns = `id, client_id, conversation_id, intent_id, amount, currency, status,
    method, description, processed_at, created_at, updated_at`

// PaymentRepo is the sqlx implementation of payments.PaymentStore.
type PaymentRepo struct {
	db *sqlx.DB
}

// NewPaymentRepo constructs a PaymentRepo.
func NewPaymentRepo(db *sqlx.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// Create inserts a payment row.
func (r *PaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	query := `INSERT INTO payments (id, client_id, conversation_id, intent_id, amount, currency, status, method, description, processed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query,
		payment.ID, payment.ClientID, payment.ConversationID, payment.IntentID,
		payment.Amount, payment.Currency, payment.Status, payment.Method,
		payment.Description, payment.ProcessedAt).
		Scan(&payment.CreatedAt, &payment.UpdatedAt)
}

// GetByID fetches one payment.
func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Payment, error) {
	var payment models.Payment
	err := r.db.GetContext(ctx, &payment, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Payment{}, payments.ErrPaymentNotFound
	}
	return payment, err
}

// List applies the optional filters and returns a page plus the total count.
func (r *PaymentRepo) List(ctx context.Context, f payments.Filters) ([]models.Payment, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	add := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if f.Status != "" {
		add("status=$%d", f.Status)
	}
	if f.Method != "" {
		add("method=$%d", f.Method)
	}
	if f.ClientID != nil {
		add("client_id=$%d", *f.ClientID)
	}
	if f.DateFrom != nil {
		add("created_at >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("created_at <= $%d", *f.DateTo)
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM payments WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE %s ORDER BY created_at DESC OFFSET $%d LIMIT $%d`,
		paymentColumns, where, len(args)+1, len(args)+2)
	args = append(args, offset, f.Limit)

	var rows []models.Payment
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateStatus sets the status and optionally the processed timestamp.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, processedAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status=$2, processed_at=COALESCE($3, processed_at), updated_at=NOW() WHERE id=$1`,
		id, status, processedAt)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return payments.ErrPaymentNotFound
	}
	return nil
}

// Stats rolls up completed revenue, refunds and per-status counts.
func (r *PaymentRepo) Stats(ctx context.Context, clientID *uuid.UUID) (payments.StatsAggregate, error) {
	query := `SELECT
            COALESCE(SUM(CASE WHEN amount > 0 AND status='completed' THEN amount ELSE 0 END), 0) AS revenue,
            COALESCE(SUM(CASE WHEN amount < 0 AND status='completed' THEN -amount ELSE 0 END), 0) AS refunds,
            COUNT(*) FILTER (WHERE status='pending') AS pending,
            COUNT(*) FILTER (WHERE status='completed') AS completed,
            COUNT(*) FILTER (WHERE status='failed') AS failed
        FROM payments
        WHERE $1::uuid IS NULL OR client_id=$1`

	var row struct {
		Revenue   float64 `db:"revenue"`
		Refunds   float64 `db:"refunds"`
		Pending   int     `db:"pending"`
		Completed int     `db:"completed"`
		Failed    int     `db:"failed"`
	}
	if err := r.db.GetContext(ctx, &row, query, clientID); err != nil {
		return payments.StatsAggregate{}, err
	}
	return payments.StatsAggregate{
		Revenue:   row.Revenue,
		Refunds:   row.Refunds,
		Pending:   row.Pending,
		Completed: row.Completed,
		Failed:    row.Failed,
	}, nil
}

// Recent returns the latest transactions, newest first.
func (r *PaymentRepo) Recent(ctx context.Context, clientID *uuid.UUID, limit int) ([]models.Payment, error) {
	var rows []models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments
        WHERE $1::uuid IS NULL OR client_id=$1
        ORDER BY created_at DESC LIMIT $2`
	err := r.db.SelectContext(ctx, &rows, query, clientID, limit)
	return rows, err
}
