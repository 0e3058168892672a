package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/conversations"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
)

const messageColumns = `id, conversation_id, sender_id, recipient_id, content, type, status,
    read_at, file_data, created_at, updated_at`

// MessageRepo is the sqlx implementation of conversations.MessageStore.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append stores a message and refreshes the parent conversation's cache
// (last message preview, activity timestamp, recipient's unread flag) in a
// single transaction, so a stored message is never missing its cache update.
func (r *MessageRepo) Append(ctx context.Context, msg *models.Message, preview string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := `INSERT INTO messages (id, conversation_id, sender_id, recipient_id, content, type, status, file_data)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at`
	if err := tx.QueryRowxContext(ctx, insert,
		msg.ID, msg.ConversationID, msg.SenderID, msg.RecipientID,
		msg.Content, msg.Type, msg.Status, msg.FileData).
		Scan(&msg.CreatedAt, &msg.UpdatedAt); err != nil {
		return err
	}

	// Only the recipient's unread flag is raised; the sender's is left as-is.
	update := `UPDATE conversations SET
            last_message=$2,
            last_message_at=$3,
            client_unread = CASE WHEN client_id=$4 THEN TRUE ELSE client_unread END,
            freelancer_unread = CASE WHEN freelancer_id=$4 THEN TRUE ELSE freelancer_unread END,
            updated_at=NOW()
        WHERE id=$1`
	if _, err := tx.ExecContext(ctx, update, msg.ConversationID, preview, msg.CreatedAt, msg.RecipientID); err != nil {
		return err
	}

	return tx.Commit()
}

// ListByConversation returns messages oldest first, paginated by offset.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID, offset, limit int) ([]models.Message, error) {
	var msgs []models.Message
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE conversation_id=$1
        ORDER BY created_at ASC
        OFFSET $2 LIMIT $3`
	err := r.db.SelectContext(ctx, &msgs, query, conversationID, offset, limit)
	return msgs, err
}

// CountUnread counts messages addressed to the user still in sent status.
func (r *MessageRepo) CountUnread(ctx context.Context, conversationID, recipientID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE conversation_id=$1 AND recipient_id=$2 AND status='sent'`,
		conversationID, recipientID)
	return count, err
}

// MarkConversationRead advances every inbound sent message to read and
// clears the reader's unread flag on the conversation, transactionally.
// Re-running it is a no-op.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID, readAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE messages SET status='read', read_at=$3, updated_at=NOW()
         WHERE conversation_id=$1 AND recipient_id=$2 AND status='sent'`,
		conversationID, userID, readAt); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET
            client_unread = CASE WHEN client_id=$2 THEN FALSE ELSE client_unread END,
            freelancer_unread = CASE WHEN freelancer_id=$2 THEN FALSE ELSE freelancer_unread END,
            updated_at=NOW()
         WHERE id=$1`,
		conversationID, userID); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID retrieves a single message.
func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, conversations.ErrMessageNotFound
	}
	return msg, err
}
