package conversations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
)

var (
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrMessageNotFound       = errors.New("message not found")
	ErrNotParticipant        = errors.New("user is not a member of this conversation")
	ErrSelfConversation      = errors.New("client and freelancer must be different users")
	ErrContentRequired       = errors.New("content is required for text messages")
	ErrRevisionNotesRequired = errors.New("revision notes are required")
	ErrInvalidStatus         = errors.New("unknown conversation status")
	ErrInvalidTransition     = errors.New("invalid status transition")
)

// System message bodies recorded in the log for lifecycle events.
const (
	completedText = "Project has been marked as complete. Please review and approve."
	approvedText  = "Project has been approved and payment completed."
	filePreview   = "File shared"
)

// DefaultPageSize caps message pagination when the caller does not ask for a
// specific limit.
const DefaultPageSize = 50

// ConversationStore is the persistence port for conversations.
type ConversationStore interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (models.Conversation, error)
	FindByParties(ctx context.Context, clientID, freelancerID uuid.UUID, jobID *uuid.UUID) (models.Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ConversationStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MessageStore is the persistence port for the message log. Append and
// MarkConversationRead are transactional with the conversation cache update.
type MessageStore interface {
	Append(ctx context.Context, msg *models.Message, preview string) error
	ListByConversation(ctx context.Context, conversationID uuid.UUID, offset, limit int) ([]models.Message, error)
	CountUnread(ctx context.Context, conversationID, recipientID uuid.UUID) (int, error)
	MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID, readAt time.Time) error
}

// Notifier pushes events to online members. Delivery is best effort; the
// service never depends on it for correctness.
type Notifier interface {
	MessageSent(conversationID uuid.UUID, msg models.Message)
	StatusChanged(conversationID uuid.UUID, conv models.Conversation)
}

// Service orchestrates conversation creation, message append, read-state
// transitions and the hire/complete/revise/approve lifecycle.
type Service struct {
	convs    ConversationStore
	msgs     MessageStore
	notifier Notifier
}

// NewService constructs the conversation service.
func NewService(convs ConversationStore, msgs MessageStore) *Service {
	return &Service{convs: convs, msgs: msgs}
}

// SetNotifier attaches the optional delivery notifier.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// CreateConversation returns the existing conversation for the
// (client, freelancer[, job]) triple, or creates one in not-hired status.
// The job id narrows the match only when supplied.
func (s *Service) CreateConversation(ctx context.Context, clientID, freelancerID uuid.UUID, jobID *uuid.UUID, projectTitle string) (models.Conversation, error) {
	if clientID == freelancerID {
		return models.Conversation{}, ErrSelfConversation
	}

	existing, err := s.convs.FindByParties(ctx, clientID, freelancerID, jobID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrConversationNotFound) {
		return models.Conversation{}, err
	}

	conv := models.Conversation{
		ID:           uuid.New(),
		ClientID:     clientID,
		FreelancerID: freelancerID,
		JobID:        jobID,
		ProjectTitle: projectTitle,
		Status:       models.ConversationNotHired,
	}
	if err := s.convs.Create(ctx, &conv); err != nil {
		return models.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns every conversation the user belongs to, most
// recent activity first, enriched with the per-user unread count, a relative
// activity timestamp and the other participant's id. Read-only.
func (s *Service) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.ConversationSummary, error) {
	convs, err := s.convs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		count, err := s.msgs.CountUnread(ctx, conv.ID, userID)
		if err != nil {
			return nil, err
		}

		activity := conv.CreatedAt
		if conv.LastMessageAt != nil {
			activity = *conv.LastMessageAt
		}

		summaries = append(summaries, models.ConversationSummary{
			Conversation:     conv,
			UnreadCount:      count,
			Unread:           count > 0,
			Timestamp:        relativeTime(activity, time.Now()),
			OtherParticipant: conv.OtherParty(userID),
		})
	}
	return summaries, nil
}

// GetConversation fetches a conversation and enforces membership: every read
// and write path that takes a user id goes through this check.
func (s *Service) GetConversation(ctx context.Context, conversationID, userID uuid.UUID) (models.Conversation, error) {
	conv, err := s.convs.GetByID(ctx, conversationID)
	if err != nil {
		return models.Conversation{}, err
	}
	if !conv.Member(userID) {
		return models.Conversation{}, ErrNotParticipant
	}
	return conv, nil
}

// SendMessage appends a message from a member. The recipient is always the
// other member; the message lands in sent status and the conversation cache
// (preview, activity time, recipient's unread flag) is refreshed atomically
// with the append. The sender's own unread flag is left untouched.
func (s *Service) SendMessage(ctx context.Context, conversationID, senderID uuid.UUID, content string, msgType models.MessageType, fileData *models.FileData) (models.Message, error) {
	if msgType == "" {
		msgType = models.MessageText
	}
	if msgType == models.MessageText && strings.TrimSpace(content) == "" {
		return models.Message{}, ErrContentRequired
	}

	conv, err := s.GetConversation(ctx, conversationID, senderID)
	if err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    conv.OtherParty(senderID),
		Content:        content,
		Type:           msgType,
		Status:         models.MessageSent,
		FileData:       models.NullFileData{FileData: fileData},
	}

	preview := content
	if msgType != models.MessageText {
		preview = filePreview
	}

	if err := s.msgs.Append(ctx, &msg, preview); err != nil {
		return models.Message{}, fmt.Errorf("append message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.MessageSent(conversationID, msg)
	}
	return msg, nil
}

// Messages returns a page of the conversation's log, oldest first.
func (s *Service) Messages(ctx context.Context, conversationID, userID uuid.UUID, page, limit int) ([]models.Message, error) {
	if _, err := s.GetConversation(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}

	msgs, err := s.msgs.ListByConversation(ctx, conversationID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// MarkRead bulk-advances every sent message addressed to the user to read and
// clears the user's unread flag. Idempotent.
func (s *Service) MarkRead(ctx context.Context, conversationID, userID uuid.UUID) error {
	if _, err := s.GetConversation(ctx, conversationID, userID); err != nil {
		return err
	}
	return s.msgs.MarkConversationRead(ctx, conversationID, userID, time.Now().UTC())
}

// UpdateStatus moves the conversation along the hire lifecycle. Transitions
// are guarded centrally: not-hired may become hired, hired may become closed,
// re-asserting the current status is a no-op, everything else is rejected.
func (s *Service) UpdateStatus(ctx context.Context, conversationID, userID uuid.UUID, status models.ConversationStatus) (models.Conversation, error) {
	if !status.Valid() {
		return models.Conversation{}, ErrInvalidStatus
	}

	conv, err := s.GetConversation(ctx, conversationID, userID)
	if err != nil {
		return models.Conversation{}, err
	}

	if conv.Status == status {
		return conv, nil
	}
	if !transitionAllowed(conv.Status, status) {
		return models.Conversation{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, conv.Status, status)
	}

	if err := s.convs.UpdateStatus(ctx, conversationID, status); err != nil {
		return models.Conversation{}, err
	}
	conv.Status = status

	if s.notifier != nil {
		s.notifier.StatusChanged(conversationID, conv)
	}
	return conv, nil
}

func transitionAllowed(from, to models.ConversationStatus) bool {
	switch from {
	case models.ConversationNotHired:
		return to == models.ConversationHired
	case models.ConversationHired:
		return to == models.ConversationClosed
	}
	return false
}

// HireFreelancer moves the conversation to hired.
func (s *Service) HireFreelancer(ctx context.Context, conversationID, userID uuid.UUID) (models.Conversation, error) {
	return s.UpdateStatus(ctx, conversationID, userID, models.ConversationHired)
}

// MarkProjectComplete records completion as a system message. The status does
// not change until the client approves.
func (s *Service) MarkProjectComplete(ctx context.Context, conversationID, userID uuid.UUID) (models.Message, error) {
	return s.SendMessage(ctx, conversationID, userID, completedText, models.MessageSystem, nil)
}

// RequestRevisions records a revision request with the caller's notes as a
// system message. The status does not change.
func (s *Service) RequestRevisions(ctx context.Context, conversationID, userID uuid.UUID, notes string) (models.Message, error) {
	if strings.TrimSpace(notes) == "" {
		return models.Message{}, ErrRevisionNotesRequired
	}
	return s.SendMessage(ctx, conversationID, userID, "Revision requested: "+notes, models.MessageSystem, nil)
}

// ApproveProject closes the conversation and records approval as a system
// message. The status write commits first; if the follow-up system message
// fails, the close stands and the error surfaces.
func (s *Service) ApproveProject(ctx context.Context, conversationID, userID uuid.UUID) (models.Conversation, error) {
	conv, err := s.UpdateStatus(ctx, conversationID, userID, models.ConversationClosed)
	if err != nil {
		return models.Conversation{}, err
	}
	if _, err := s.SendMessage(ctx, conversationID, userID, approvedText, models.MessageSystem, nil); err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

// DeleteConversation irreversibly removes the conversation and its messages.
func (s *Service) DeleteConversation(ctx context.Context, conversationID, userID uuid.UUID) error {
	if _, err := s.GetConversation(ctx, conversationID, userID); err != nil {
		return err
	}
	return s.convs.Delete(ctx, conversationID)
}

// relativeTime renders the age of an activity timestamp for list views.
func relativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	minutes := int(diff.Minutes())
	hours := int(diff.Hours())
	days := int(diff.Hours() / 24)

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("1/2/2006")
}
