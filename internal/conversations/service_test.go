package conversations

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
)

// memBackend is an in-memory implementation of both storage ports. A single
// backend backs both so the append+cache-update coupling behaves like the
// real transactional repository.
type memBackend struct {
	mu    sync.Mutex
	convs map[uuid.UUID]models.Conversation
	msgs  map[uuid.UUID]models.Message
	clock time.Time
}

func newMemBackend() *memBackend {
	return &memBackend{
		convs: make(map[uuid.UUID]models.Conversation),
		msgs:  make(map[uuid.UUID]models.Message),
		clock: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *memBackend) tick() time.Time {
	b.clock = b.clock.Add(time.Second)
	return b.clock
}

func (b *memBackend) Create(_ context.Context, conv *models.Conversation) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.tick()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	b.convs[conv.ID] = *conv
	return nil
}

func (b *memBackend) GetByID(_ context.Context, id uuid.UUID) (models.Conversation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	conv, ok := b.convs[id]
	if !ok {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, nil
}

func (b *memBackend) FindByParties(_ context.Context, clientID, freelancerID uuid.UUID, jobID *uuid.UUID) (models.Conversation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, conv := range b.convs {
		if conv.ClientID != clientID || conv.FreelancerID != freelancerID {
			continue
		}
		if jobID != nil && (conv.JobID == nil || *conv.JobID != *jobID) {
			continue
		}
		return conv, nil
	}
	return models.Conversation{}, ErrConversationNotFound
}

func (b *memBackend) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.Conversation
	for _, conv := range b.convs {
		if conv.Member(userID) {
			out = append(out, conv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return activityOf(out[i]).After(activityOf(out[j]))
	})
	return out, nil
}

func activityOf(conv models.Conversation) time.Time {
	if conv.LastMessageAt != nil {
		return *conv.LastMessageAt
	}
	return conv.CreatedAt
}

func (b *memBackend) UpdateStatus(_ context.Context, id uuid.UUID, status models.ConversationStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	conv, ok := b.convs[id]
	if !ok {
		return ErrConversationNotFound
	}
	conv.Status = status
	conv.UpdatedAt = b.tick()
	b.convs[id] = conv
	return nil
}

func (b *memBackend) Delete(_ context.Context, id uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.convs, id)
	for msgID, msg := range b.msgs {
		if msg.ConversationID == id {
			delete(b.msgs, msgID)
		}
	}
	return nil
}

func (b *memBackend) Append(_ context.Context, msg *models.Message, preview string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	conv, ok := b.convs[msg.ConversationID]
	if !ok {
		return ErrConversationNotFound
	}
	now := b.tick()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	b.msgs[msg.ID] = *msg

	conv.LastMessage = preview
	at := now
	conv.LastMessageAt = &at
	if conv.ClientID == msg.RecipientID {
		conv.ClientUnread = true
	}
	if conv.FreelancerID == msg.RecipientID {
		conv.FreelancerUnread = true
	}
	conv.UpdatedAt = now
	b.convs[msg.ConversationID] = conv
	return nil
}

func (b *memBackend) ListByConversation(_ context.Context, conversationID uuid.UUID, offset, limit int) ([]models.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.Message
	for _, msg := range b.msgs {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (b *memBackend) CountUnread(_ context.Context, conversationID, recipientID uuid.UUID) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for _, msg := range b.msgs {
		if msg.ConversationID == conversationID && msg.RecipientID == recipientID && msg.Status == models.MessageSent {
			count++
		}
	}
	return count, nil
}

func (b *memBackend) MarkConversationRead(_ context.Context, conversationID, userID uuid.UUID, readAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, msg := range b.msgs {
		if msg.ConversationID == conversationID && msg.RecipientID == userID && msg.Status == models.MessageSent {
			msg.Status = models.MessageRead
			at := readAt
			msg.ReadAt = &at
			b.msgs[id] = msg
		}
	}
	conv, ok := b.convs[conversationID]
	if !ok {
		return ErrConversationNotFound
	}
	if conv.ClientID == userID {
		conv.ClientUnread = false
	}
	if conv.FreelancerID == userID {
		conv.FreelancerUnread = false
	}
	b.convs[conversationID] = conv
	return nil
}

func (b *memBackend) message(t *testing.T, id uuid.UUID) models.Message {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	msg, ok := b.msgs[id]
	require.True(t, ok, "message %s not stored", id)
	return msg
}

type recordedEvent struct {
	kind   string
	convID uuid.UUID
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) MessageSent(conversationID uuid.UUID, _ models.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{kind: "message", convID: conversationID})
}

func (n *recordingNotifier) StatusChanged(conversationID uuid.UUID, _ models.Conversation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{kind: "status", convID: conversationID})
}

func newTestService() (*Service, *memBackend) {
	backend := newMemBackend()
	return NewService(backend, backend), backend
}

func TestCreateConversationIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	client, freelancer := uuid.New(), uuid.New()
	jobID := uuid.New()

	first, err := svc.CreateConversation(ctx, client, freelancer, &jobID, "Logo design")
	require.NoError(t, err)
	require.Equal(t, models.ConversationNotHired, first.Status)

	second, err := svc.CreateConversation(ctx, client, freelancer, &jobID, "Logo design")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreateConversationDistinctJobs(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	client, freelancer := uuid.New(), uuid.New()
	jobA, jobB := uuid.New(), uuid.New()

	first, err := svc.CreateConversation(ctx, client, freelancer, &jobA, "")
	require.NoError(t, err)
	second, err := svc.CreateConversation(ctx, client, freelancer, &jobB, "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateConversationRejectsSelf(t *testing.T) {
	svc, _ := newTestService()
	id := uuid.New()
	_, err := svc.CreateConversation(context.Background(), id, id, nil, "")
	require.ErrorIs(t, err, ErrSelfConversation)
}

func TestSendMessageDerivesRecipientAndCache(t *testing.T) {
	svc, backend := newTestService()
	ctx := context.Background()
	client, freelancer := uuid.New(), uuid.New()

	conv, err := svc.CreateConversation(ctx, client, freelancer, nil, "")
	require.NoError(t, err)

	msg, err := svc.SendMessage(ctx, conv.ID, client, "hello", models.MessageText, nil)
	require.NoError(t, err)
	assert.Equal(t, freelancer, msg.RecipientID)
	assert.Equal(t, models.MessageSent, msg.Status)

	stored, err := svc.GetConversation(ctx, conv.ID, client)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.LastMessage)
	require.NotNil(t, stored.LastMessageAt)
	assert.True(t, stored.FreelancerUnread)
	assert.False(t, stored.ClientUnread)

	_ = backend
}

func TestSendMessageLeavesSenderFlag(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	client, freelancer := uuid.New(), uuid.New()

	conv, err := svc.CreateConversation(ctx, client, freelancer, nil, "")
	require.NoError(t, err)

	// Freelancer writes first, raising the client's flag.
	_, err = svc.SendMessage(ctx, conv.ID, freelancer, "hi there", models.MessageText, nil)
	require.NoError(t, err)

	// The client replies without reading. Their own flag must stay raised:
	// sending does not count as reading.
	_, err = svc.SendMessage(ctx, conv.ID, client, "quick reply", models.MessageText, nil)
	require.NoError(t, err)

	stored, err := svc.GetConversation(ctx, conv.ID, client)
	require.NoError(t, err)
	assert.True(t, stored.ClientUnread)
	assert.True(t, stored.FreelancerUnread)
}

func TestSendMessageValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	client, freelancer := uuid.New(), uuid.New()
	conv, err := svc.CreateConversation(ctx, client, freelancer, nil, "")
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, conv.ID, client, "   ", models.MessageText, nil)
	require.ErrorIs(t, err, ErrContentRequired)

	outsider := uuid.New()
	_, err = svc.SendMessage(ctx, conv.ID, outsider, "hi", models.MessageText, nil)
	require.ErrorIs(t, err, ErrNotParticipant)
}

func TestSendFileMessagePreview(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	client, freelancer := uuid.New(), uuid.New()
	conv, err := svc.CreateConversation(ctx, client, freelancer, nil, "")
	require.NoError(t, err)

	fd := &models.FileData{Name: "brief.pdf", Size: "52 KB", Type: "application/pdf", URL: "/files/brief.pdf"}
	msg, err := svc.SendMessage(ctx, conv.ID, client, "", models.MessageFile, fd)
	require.NoError(t, err)
	require.NotNil(t, msg.FileData.FileData)
	assert.Equal(t, "brief.pdf", msg.FileData.FileData.Name)

	stored, err := svc.GetConversation(ctx, conv.ID, client)
	require.NoError(t, err)
	assert.Equal(t, "File shared", stored.LastMessage)
}

func TestMarkReadIdempotent(t *testing.T) {
	svc, backend := newTestService()
	ctx := context.Background()
	client, freelancer := uuid.New(), uuid.New()
	conv, err := svc.CreateConversation(ctx, client, freelancer, nil, "")
	require.NoError(t, err)

	sent, err := svc.SendMessage(ctx, conv.ID, client, "ping", models.MessageText, nil)
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, conv.ID, freelancer))
	require.NoError(t, svc.MarkRead(ctx, conv.ID, freelancer))

	stored := backend.message(t, sent.ID)
	assert.Equal(t, models.MessageRead, stored.Status)
	require.NotNil(t, stored.ReadAt)

	count, err := backend.CountUnread(ctx, conv.ID, freelancer)
	require.NoError(t, err)
	assert.Zero(t, count)

	after, err := svc.GetConversation(ctx, conv.ID, freelancer)
	require.NoError(t, err)
	assert.False(t, after.FreelancerUnread)
}

func TestGetConversationOutsiderUnauthorized(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	conv, err := svc.CreateConversation(ctx, uuid.New(), uuid.New(), nil, "")
	require.NoError(t, err)

	_, err = svc.GetConversation(ctx, conv.ID, uuid.New())
	require.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.GetConversation(ctx, uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrConversationNotFound)
}

func TestStatusTransitions(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	client, freelancer := uuid.New(), uuid.New()
	conv, err := svc.CreateConversation(ctx, client, freelancer, nil, "")
	require.NoError(t, err)

	// Closing before hiring is rejected.
	_, err = svc.UpdateStatus(ctx, conv.ID, client, models.ConversationClosed)
	require.ErrorIs(t, err, ErrInvalidTransition)

	hired, err := svc.HireFreelancer(ctx, conv.ID, client)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationHired, hired.Status)

	// Re-asserting the current status is a no-op.
	same, err := svc.UpdateStatus(ctx, conv.ID, client, models.ConversationHired)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationHired, same.Status)

	// No path leads back to not-hired.
	_, err = svc.UpdateStatus(ctx, conv.ID, client, models.ConversationNotHired)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, conv.ID, client, "archived")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestProjectLifecycleScenario(t *testing.T) {
	svc, backend := newTestService()
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	ctx := context.Background()

	client, freelancer := uuid.New(), uuid.New()
	jobID := uuid.New()
	conv, err := svc.CreateConversation(ctx, client, freelancer, &jobID, "Site redesign")
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, conv.ID, client, "Can you start Monday?", models.MessageText, nil)
	require.NoError(t, err)

	state, err := svc.GetConversation(ctx, conv.ID, client)
	require.NoError(t, err)
	assert.True(t, state.FreelancerUnread)
	assert.False(t, state.ClientUnread)

	require.NoError(t, svc.MarkRead(ctx, conv.ID, freelancer))
	count, err := backend.CountUnread(ctx, conv.ID, freelancer)
	require.NoError(t, err)
	assert.Zero(t, count)

	hired, err := svc.HireFreelancer(ctx, conv.ID, client)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationHired, hired.Status)

	completion, err := svc.MarkProjectComplete(ctx, conv.ID, freelancer)
	require.NoError(t, err)
	assert.Equal(t, models.MessageSystem, completion.Type)
	assert.Contains(t, completion.Content, "marked as complete")

	midway, err := svc.GetConversation(ctx, conv.ID, client)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationHired, midway.Status)

	closed, err := svc.ApproveProject(ctx, conv.ID, client)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationClosed, closed.Status)

	log, err := svc.Messages(ctx, conv.ID, client, 1, 50)
	require.NoError(t, err)
	require.Len(t, log, 3)
	assert.Equal(t, models.MessageText, log[0].Type)
	assert.Equal(t, models.MessageSystem, log[1].Type)
	assert.Equal(t, models.MessageSystem, log[2].Type)
	assert.Equal(t, "Project has been approved and payment completed.", log[2].Content)

	// Two message events plus two status events reached the notifier.
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	var messages, statuses int
	for _, ev := range notifier.events {
		switch ev.kind {
		case "message":
			messages++
		case "status":
			statuses++
		}
	}
	assert.Equal(t, 3, messages)
	assert.Equal(t, 2, statuses)
}

func TestRequestRevisionsRequiresNotes(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	client, freelancer := uuid.New(), uuid.New()
	conv, err := svc.CreateConversation(ctx, client, freelancer, nil, "")
	require.NoError(t, err)

	_, err = svc.RequestRevisions(ctx, conv.ID, client, "  ")
	require.ErrorIs(t, err, ErrRevisionNotesRequired)

	msg, err := svc.RequestRevisions(ctx, conv.ID, client, "tighten the header spacing")
	require.NoError(t, err)
	assert.Equal(t, "Revision requested: tighten the header spacing", msg.Content)
	assert.Equal(t, models.MessageSystem, msg.Type)
}

func TestMessagesPagination(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	client, freelancer := uuid.New(), uuid.New()
	conv, err := svc.CreateConversation(ctx, client, freelancer, nil, "")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := svc.SendMessage(ctx, conv.ID, client, string(rune('a'+i)), models.MessageText, nil)
		require.NoError(t, err)
	}

	firstPage, err := svc.Messages(ctx, conv.ID, client, 1, 2)
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	assert.Equal(t, "a", firstPage[0].Content)
	assert.Equal(t, "b", firstPage[1].Content)

	thirdPage, err := svc.Messages(ctx, conv.ID, client, 3, 2)
	require.NoError(t, err)
	require.Len(t, thirdPage, 1)
	assert.Equal(t, "e", thirdPage[0].Content)

	empty, err := svc.Messages(ctx, conv.ID, client, 9, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListConversationsEnrichment(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	client, freelancerA, freelancerB := uuid.New(), uuid.New(), uuid.New()

	older, err := svc.CreateConversation(ctx, client, freelancerA, nil, "")
	require.NoError(t, err)
	newer, err := svc.CreateConversation(ctx, client, freelancerB, nil, "")
	require.NoError(t, err)

	// Activity in the older conversation moves it to the front.
	_, err = svc.SendMessage(ctx, older.ID, freelancerA, "update ready", models.MessageText, nil)
	require.NoError(t, err)

	list, err := svc.ListConversations(ctx, client)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, older.ID, list[0].ID)
	assert.Equal(t, newer.ID, list[1].ID)
	assert.Equal(t, 1, list[0].UnreadCount)
	assert.True(t, list[0].Unread)
	assert.Equal(t, freelancerA, list[0].OtherParticipant)
	assert.Zero(t, list[1].UnreadCount)
	assert.NotEmpty(t, list[0].Timestamp)
}

func TestDeleteConversationRemovesMessages(t *testing.T) {
	svc, backend := newTestService()
	ctx := context.Background()
	client, freelancer := uuid.New(), uuid.New()
	conv, err := svc.CreateConversation(ctx, client, freelancer, nil, "")
	require.NoError(t, err)

	msg, err := svc.SendMessage(ctx, conv.ID, client, "to be removed", models.MessageText, nil)
	require.NoError(t, err)

	outsider := uuid.New()
	require.ErrorIs(t, svc.DeleteConversation(ctx, conv.ID, outsider), ErrNotParticipant)

	require.NoError(t, svc.DeleteConversation(ctx, conv.ID, client))

	_, err = svc.GetConversation(ctx, conv.ID, client)
	require.ErrorIs(t, err, ErrConversationNotFound)

	backend.mu.Lock()
	_, exists := backend.msgs[msg.ID]
	backend.mu.Unlock()
	assert.False(t, exists)
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{48 * time.Hour, "2d ago"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, relativeTime(now.Add(-tc.age), now))
	}

	old := now.Add(-30 * 24 * time.Hour)
	assert.Equal(t, old.Format("1/2/2006"), relativeTime(old, now))
}
