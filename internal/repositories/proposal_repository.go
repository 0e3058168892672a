package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
)

var (
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrDuplicateProposal = errors.New("a proposal for this job already exists")
)

const proposalColumns = `id, job_id, freelancer_id, cover_letter, bid_amount, delivery_days,
    status, created_at, updated_at`

// ProposalRepository abstracts proposal persistence.
type ProposalRepository interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (models.Proposal, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Proposal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error
}

// ProposalRepo is a sqlx implementation of ProposalRepository.
type ProposalRepo struct {
	db *sqlx.DB
}

// NewProposalRepo constructs a ProposalRepo.
func NewProposalRepo(db *sqlx.DB) *ProposalRepo {
	return &ProposalRepo{db: db}
}

// Create inserts a proposal. One per (job, freelancer) is enforced by the
// unique constraint and surfaced as ErrDuplicateProposal.
func (r *ProposalRepo) Create(ctx context.Context, proposal *models.Proposal) error {
	query := `INSERT INTO proposals (id, job_id, freelancer_id, cover_letter, bid_amount, delivery_days, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		proposal.ID, proposal.JobID, proposal.FreelancerID, proposal.CoverLetter,
		proposal.BidAmount, proposal.DeliveryDays, proposal.Status).
		Scan(&proposal.CreatedAt, &proposal.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicateProposal
	}
	return err
}

// GetByID fetches one proposal.
func (r *ProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.GetContext(ctx, &proposal, `SELECT `+proposalColumns+` FROM proposals WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Proposal{}, ErrProposalNotFound
	}
	return proposal, err
}

// ListByJob returns all proposals submitted against a job, newest first.
func (r *ProposalRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Proposal, error) {
	var proposals []models.Proposal
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE job_id=$1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &proposals, query, jobID)
	return proposals, err
}

// UpdateStatus sets the proposal status.
func (r *ProposalRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE proposals SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrProposalNotFound
	}
	return nil
}
