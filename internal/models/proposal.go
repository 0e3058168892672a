package models

import (
	"time"

	"github.com/google/uuid"
)

type ProposalStatus string

const (
	ProposalPending   ProposalStatus = "pending"
	ProposalAccepted  ProposalStatus = "accepted"
	ProposalRejected  ProposalStatus = "rejected"
	ProposalWithdrawn ProposalStatus = "withdrawn"
)

// Proposal is a freelancer's bid on a job. One per (job, freelancer).
type Proposal struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	JobID        uuid.UUID      `db:"job_id" json:"job_id"`
	FreelancerID uuid.UUID      `db:"freelancer_id" json:"freelancer_id"`
	CoverLetter  string         `db:"cover_letter" json:"cover_letter"`
	BidAmount    float64        `db:"bid_amount" json:"bid_amount"`
	DeliveryDays *int           `db:"delivery_days" json:"delivery_days,omitempty"`
	Status       ProposalStatus `db:"status" json:"status"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}
