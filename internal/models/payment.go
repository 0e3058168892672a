package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

type PaymentMethod string

const (
	MethodStripe       PaymentMethod = "stripe"
	MethodPaypal       PaymentMethod = "paypal"
	MethodBankTransfer PaymentMethod = "bank_transfer"
)

// Payment is one simulated transaction. Refunds are stored as separate rows
// with a negative amount pointing back at the original via the intent id.
type Payment struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	ClientID       uuid.UUID     `db:"client_id" json:"client_id"`
	ConversationID *uuid.UUID    `db:"conversation_id" json:"conversation_id,omitempty"`
	IntentID       string        `db:"intent_id" json:"intent_id"`
	Amount         float64       `db:"amount" json:"amount"`
	Currency       string        `db:"currency" json:"currency"`
	Status         PaymentStatus `db:"status" json:"status"`
	Method         PaymentMethod `db:"method" json:"method"`
	Description    string        `db:"description" json:"description,omitempty"`
	ProcessedAt    *time.Time    `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// PaymentStats aggregates completed/pending/failed transactions. Commission
// is the 10% platform fee taken out of revenue.
type PaymentStats struct {
	TotalRevenue       float64   `json:"total_revenue"`
	TotalPayouts       float64   `json:"total_payouts"`
	TotalRefunds       float64   `json:"total_refunds"`
	TotalCommissions   float64   `json:"total_commissions"`
	PendingPayments    int       `json:"pending_payments"`
	CompletedPayments  int       `json:"completed_payments"`
	FailedPayments     int       `json:"failed_payments"`
	RecentTransactions []Payment `json:"recent_transactions"`
}
