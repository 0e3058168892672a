package payments

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
)

type memPaymentStore struct {
	payments map[uuid.UUID]models.Payment
	order    []uuid.UUID
}

func newMemPaymentStore() *memPaymentStore {
	return &memPaymentStore{payments: make(map[uuid.UUID]models.Payment)}
}

func (s *memPaymentStore) Create(_ context.Context, payment *models.Payment) error {
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	s.payments[payment.ID] = *payment
	s.order = append(s.order, payment.ID)
	return nil
}

func (s *memPaymentStore) GetByID(_ context.Context, id uuid.UUID) (models.Payment, error) {
	payment, ok := s.payments[id]
	if !ok {
		return models.Payment{}, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *memPaymentStore) List(_ context.Context, f Filters) ([]models.Payment, int, error) {
	var out []models.Payment
	for _, id := range s.order {
		payment := s.payments[id]
		if f.Status != "" && payment.Status != f.Status {
			continue
		}
		if f.Method != "" && payment.Method != f.Method {
			continue
		}
		if f.ClientID != nil && payment.ClientID != *f.ClientID {
			continue
		}
		out = append(out, payment)
	}
	return out, len(out), nil
}

func (s *memPaymentStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.PaymentStatus, processedAt *time.Time) error {
	payment, ok := s.payments[id]
	if !ok {
		return ErrPaymentNotFound
	}
	payment.Status = status
	if processedAt != nil {
		payment.ProcessedAt = processedAt
	}
	s.payments[id] = payment
	return nil
}

func (s *memPaymentStore) Stats(_ context.Context, clientID *uuid.UUID) (StatsAggregate, error) {
	var agg StatsAggregate
	for _, payment := range s.payments {
		if clientID != nil && payment.ClientID != *clientID {
			continue
		}
		switch payment.Status {
		case models.PaymentCompleted:
			agg.Completed++
			if payment.Amount > 0 {
				agg.Revenue += payment.Amount
			} else {
				agg.Refunds += -payment.Amount
			}
		case models.PaymentPending:
			agg.Pending++
		case models.PaymentFailed:
			agg.Failed++
		}
	}
	return agg, nil
}

func (s *memPaymentStore) Recent(_ context.Context, clientID *uuid.UUID, limit int) ([]models.Payment, error) {
	var out []models.Payment
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		payment := s.payments[s.order[i]]
		if clientID != nil && payment.ClientID != *clientID {
			continue
		}
		out = append(out, payment)
	}
	return out, nil
}

func TestCreatePayment(t *testing.T) {
	svc := NewService(newMemPaymentStore())

	payment, err := svc.Create(context.Background(), CreateInput{
		ClientID: uuid.New(),
		Amount:   250,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.Equal(t, "usd", payment.Currency)
	assert.Equal(t, models.MethodStripe, payment.Method)
	assert.True(t, strings.HasPrefix(payment.IntentID, "pi_"))

	_, err = svc.Create(context.Background(), CreateInput{ClientID: uuid.New(), Amount: 0})
	require.ErrorIs(t, err, ErrAmountRequired)
}

func TestSimulateProcessing(t *testing.T) {
	store := newMemPaymentStore()
	svc := NewService(store)
	ctx := context.Background()

	payment, err := svc.Create(ctx, CreateInput{ClientID: uuid.New(), Amount: 100})
	require.NoError(t, err)

	done, err := svc.SimulateProcessing(ctx, payment.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, done.Status)
	require.NotNil(t, done.ProcessedAt)

	// Already processed: a second run is rejected.
	_, err = svc.SimulateProcessing(ctx, payment.ID, true)
	require.ErrorIs(t, err, ErrNotPending)

	failing, err := svc.Create(ctx, CreateInput{ClientID: uuid.New(), Amount: 50})
	require.NoError(t, err)
	failed, err := svc.SimulateProcessing(ctx, failing.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, failed.Status)
}

func TestRefundRules(t *testing.T) {
	store := newMemPaymentStore()
	svc := NewService(store)
	ctx := context.Background()

	payment, err := svc.Create(ctx, CreateInput{ClientID: uuid.New(), Amount: 200})
	require.NoError(t, err)

	// Pending payments cannot be refunded.
	_, err = svc.Refund(ctx, payment.ID, nil, "")
	require.ErrorIs(t, err, ErrNotRefundable)

	_, err = svc.SimulateProcessing(ctx, payment.ID, true)
	require.NoError(t, err)

	tooMuch := 300.0
	_, err = svc.Refund(ctx, payment.ID, &tooMuch, "")
	require.ErrorIs(t, err, ErrRefundTooLarge)

	partial := 50.0
	refund, err := svc.Refund(ctx, payment.ID, &partial, "late delivery")
	require.NoError(t, err)
	assert.Equal(t, -50.0, refund.Amount)
	assert.Equal(t, models.PaymentCompleted, refund.Status)
	assert.Contains(t, refund.Description, "late delivery")
	assert.True(t, strings.HasPrefix(refund.IntentID, "refund_pi_"))

	// Partial refund leaves the original completed.
	original, err := svc.Get(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, original.Status)

	full, err := svc.Refund(ctx, payment.ID, nil, "")
	require.NoError(t, err)
	assert.Equal(t, -200.0, full.Amount)

	original, err = svc.Get(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, original.Status)
}

func TestStatsCommission(t *testing.T) {
	store := newMemPaymentStore()
	svc := NewService(store)
	ctx := context.Background()
	client := uuid.New()

	first, err := svc.Create(ctx, CreateInput{ClientID: client, Amount: 1000})
	require.NoError(t, err)
	_, err = svc.SimulateProcessing(ctx, first.ID, true)
	require.NoError(t, err)

	second, err := svc.Create(ctx, CreateInput{ClientID: client, Amount: 400})
	require.NoError(t, err)
	_, err = svc.SimulateProcessing(ctx, second.ID, false)
	require.NoError(t, err)

	refundAmount := 100.0
	_, err = svc.Refund(ctx, first.ID, &refundAmount, "")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, &client)
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, stats.TotalRevenue, 0.001)
	assert.InDelta(t, 100.0, stats.TotalCommissions, 0.001)
	assert.InDelta(t, 900.0, stats.TotalPayouts, 0.001)
	assert.InDelta(t, 100.0, stats.TotalRefunds, 0.001)
	assert.Equal(t, 1, stats.FailedPayments)
	assert.NotEmpty(t, stats.RecentTransactions)
}
