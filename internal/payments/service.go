package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrAmountRequired  = errors.New("amount must be positive")
	ErrNotPending      = errors.New("payment is not in pending status")
	ErrNotRefundable   = errors.New("can only refund completed payments")
	ErrRefundTooLarge  = errors.New("refund amount cannot exceed the original payment amount")
)

// commissionRate is the platform fee taken out of completed revenue.
const commissionRate = 0.10

// Filters narrow payment listings.
type Filters struct {
	Status   models.PaymentStatus
	Method   models.PaymentMethod
	ClientID *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
}

// StatsAggregate is the raw rollup the store computes; the service derives
// commissions and payouts from it.
type StatsAggregate struct {
	Revenue   float64
	Refunds   float64
	Pending   int
	Completed int
	Failed    int
}

// PaymentStore is the persistence port for payments.
type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (models.Payment, error)
	List(ctx context.Context, f Filters) ([]models.Payment, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, processedAt *time.Time) error
	Stats(ctx context.Context, clientID *uuid.UUID) (StatsAggregate, error)
	Recent(ctx context.Context, clientID *uuid.UUID, limit int) ([]models.Payment, error)
}

// CreateInput is everything a caller supplies for a new payment.
type CreateInput struct {
	ClientID       uuid.UUID
	ConversationID *uuid.UUID
	Amount         float64
	Currency       string
	Method         models.PaymentMethod
	Description    string
}

// Service implements the simulated payment lifecycle:
// pending -> completed|failed, completed -> refunded.
type Service struct {
	store PaymentStore
}

// NewService constructs the payment service.
func NewService(store PaymentStore) *Service {
	return &Service{store: store}
}

// Create records a pending payment with a mock provider intent id.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Payment, error) {
	if in.Amount <= 0 {
		return models.Payment{}, ErrAmountRequired
	}
	if in.Currency == "" {
		in.Currency = "usd"
	}
	if in.Method == "" {
		in.Method = models.MethodStripe
	}

	payment := models.Payment{
		ID:             uuid.New(),
		ClientID:       in.ClientID,
		ConversationID: in.ConversationID,
		IntentID:       newIntentID(),
		Amount:         in.Amount,
		Currency:       in.Currency,
		Status:         models.PaymentPending,
		Method:         in.Method,
		Description:    in.Description,
	}
	if err := s.store.Create(ctx, &payment); err != nil {
		return models.Payment{}, fmt.Errorf("create payment: %w", err)
	}
	return payment, nil
}

// Get fetches one payment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (models.Payment, error) {
	return s.store.GetByID(ctx, id)
}

// List returns filtered payments plus the unpaginated total.
func (s *Service) List(ctx context.Context, f Filters) ([]models.Payment, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	return s.store.List(ctx, f)
}

// SimulateProcessing resolves a pending payment to completed or failed and
// stamps the processing time.
func (s *Service) SimulateProcessing(ctx context.Context, id uuid.UUID, succeed bool) (models.Payment, error) {
	payment, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.Payment{}, err
	}
	if payment.Status != models.PaymentPending {
		return models.Payment{}, ErrNotPending
	}

	status := models.PaymentCompleted
	if !succeed {
		status = models.PaymentFailed
	}
	now := time.Now().UTC()
	if err := s.store.UpdateStatus(ctx, id, status, &now); err != nil {
		return models.Payment{}, err
	}

	payment.Status = status
	payment.ProcessedAt = &now
	return payment, nil
}

// Refund records a refund against a completed payment as a separate
// negative-amount row. A full refund also flips the original to refunded.
func (s *Service) Refund(ctx context.Context, paymentID uuid.UUID, amount *float64, reason string) (models.Payment, error) {
	original, err := s.store.GetByID(ctx, paymentID)
	if err != nil {
		return models.Payment{}, err
	}
	if original.Status != models.PaymentCompleted {
		return models.Payment{}, ErrNotRefundable
	}

	refundAmount := original.Amount
	if amount != nil {
		refundAmount = *amount
	}
	if refundAmount <= 0 {
		return models.Payment{}, ErrAmountRequired
	}
	if refundAmount > original.Amount {
		return models.Payment{}, ErrRefundTooLarge
	}

	description := fmt.Sprintf("Refund for payment %s", original.ID)
	if strings.TrimSpace(reason) != "" {
		description += ": " + reason
	}

	now := time.Now().UTC()
	refund := models.Payment{
		ID:             uuid.New(),
		ClientID:       original.ClientID,
		ConversationID: original.ConversationID,
		IntentID:       "refund_" + original.IntentID,
		Amount:         -refundAmount,
		Currency:       original.Currency,
		Status:         models.PaymentCompleted,
		Method:         original.Method,
		Description:    description,
		ProcessedAt:    &now,
	}
	if err := s.store.Create(ctx, &refund); err != nil {
		return models.Payment{}, fmt.Errorf("create refund: %w", err)
	}

	if refundAmount == original.Amount {
		if err := s.store.UpdateStatus(ctx, original.ID, models.PaymentRefunded, nil); err != nil {
			return models.Payment{}, err
		}
	}
	return refund, nil
}

// Stats aggregates payment totals, applying the platform commission to
// completed revenue.
func (s *Service) Stats(ctx context.Context, clientID *uuid.UUID) (models.PaymentStats, error) {
	agg, err := s.store.Stats(ctx, clientID)
	if err != nil {
		return models.PaymentStats{}, err
	}
	recent, err := s.store.Recent(ctx, clientID, 10)
	if err != nil {
		return models.PaymentStats{}, err
	}
	if recent == nil {
		recent = []models.Payment{}
	}

	commissions := agg.Revenue * commissionRate
	return models.PaymentStats{
		TotalRevenue:       agg.Revenue,
		TotalPayouts:       agg.Revenue - commissions,
		TotalRefunds:       agg.Refunds,
		TotalCommissions:   commissions,
		PendingPayments:    agg.Pending,
		CompletedPayments:  agg.Completed,
		FailedPayments:     agg.Failed,
		RecentTransactions: recent,
	}, nil
}

// newIntentID mimics a provider payment-intent identifier.
func newIntentID() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("pi_%d", time.Now().UnixMilli())
	}
	return fmt.Sprintf("pi_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}
