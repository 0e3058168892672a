package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/conversations"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
)

const conversationColumns = `id, client_id, freelancer_id, job_id, project_title, status,
    last_message, last_message_at, client_unread, freelancer_unread, created_at, updated_at`

// ConversationRepo is the sqlx implementation of conversations.ConversationStore.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Create inserts a new conversation and backfills the generated timestamps.
func (r *ConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	query := `INSERT INTO conversations (id, client_id, freelancer_id, job_id, project_title, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query,
		conv.ID, conv.ClientID, conv.FreelancerID, conv.JobID, conv.ProjectTitle, conv.Status).
		Scan(&conv.CreatedAt, &conv.UpdatedAt)
}

// GetByID fetches a conversation by id.
func (r *ConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT `+conversationColumns+` FROM conversations WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, conversations.ErrConversationNotFound
	}
	return conv, err
}

// FindByParties looks up the conversation for a (client, freelancer[, job])
// triple. The job id participates in the match only when supplied.
func (r *ConversationRepo) FindByParties(ctx context.Context, clientID, freelancerID uuid.UUID, jobID *uuid.UUID) (models.Conversation, error) {
	var conv models.Conversation
	query := `SELECT ` + conversationColumns + ` FROM conversations
        WHERE client_id=$1 AND freelancer_id=$2 AND ($3::uuid IS NULL OR job_id=$3)
        ORDER BY created_at ASC LIMIT 1`
	err := r.db.GetContext(ctx, &conv, query, clientID, freelancerID, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, conversations.ErrConversationNotFound
	}
	return conv, err
}

// ListByUser returns every conversation the user belongs to, most recent
// activity first. Conversations without messages sort by creation time.
func (r *ConversationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var convs []models.Conversation
	query := `SELECT ` + conversationColumns + ` FROM conversations
        WHERE client_id=$1 OR freelancer_id=$1
        ORDER BY COALESCE(last_message_at, created_at) DESC`
	err := r.db.SelectContext(ctx, &convs, query, userID)
	return convs, err
}

// UpdateStatus sets the hire status. Transition validity is the service's
// concern; the repo writes whatever it is handed.
func (r *ConversationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ConversationStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return conversations.ErrConversationNotFound
	}
	return nil
}

// Delete removes the conversation and its message log in one transaction.
func (r *ConversationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id=$1`, id); err != nil {
		return err
	}
	return tx.Commit()
}
