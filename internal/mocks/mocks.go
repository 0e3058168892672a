package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/conversations"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/payments"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	args := m.Called(ctx, id)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepositoryMock) ListFreelancers(ctx context.Context, skill string, offset, limit int) ([]models.User, error) {
	args := m.Called(ctx, skill, offset, limit)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type JobRepositoryMock struct {
	mock.Mock
}

func (m *JobRepositoryMock) Create(ctx context.Context, job *models.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *JobRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (models.Job, error) {
	args := m.Called(ctx, id)
	var job models.Job
	if val := args.Get(0); val != nil {
		job = val.(models.Job)
	}
	return job, args.Error(1)
}

func (m *JobRepositoryMock) List(ctx context.Context, f repositories.JobFilters) ([]models.Job, int, error) {
	args := m.Called(ctx, f)
	var jobs []models.Job
	if val := args.Get(0); val != nil {
		jobs = val.([]models.Job)
	}
	return jobs, args.Int(1), args.Error(2)
}

func (m *JobRepositoryMock) IncrementViews(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *JobRepositoryMock) UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *JobRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ProposalRepositoryMock struct {
	mock.Mock
}

func (m *ProposalRepositoryMock) Create(ctx context.Context, proposal *models.Proposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}

func (m *ProposalRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (models.Proposal, error) {
	args := m.Called(ctx, id)
	var proposal models.Proposal
	if val := args.Get(0); val != nil {
		proposal = val.(models.Proposal)
	}
	return proposal, args.Error(1)
}

func (m *ProposalRepositoryMock) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Proposal, error) {
	args := m.Called(ctx, jobID)
	var proposals []models.Proposal
	if val := args.Get(0); val != nil {
		proposals = val.([]models.Proposal)
	}
	return proposals, args.Error(1)
}

func (m *ProposalRepositoryMock) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type ServiceRepositoryMock struct {
	mock.Mock
}

func (m *ServiceRepositoryMock) Create(ctx context.Context, svc *models.Service) error {
	args := m.Called(ctx, svc)
	return args.Error(0)
}

func (m *ServiceRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (models.Service, error) {
	args := m.Called(ctx, id)
	var svc models.Service
	if val := args.Get(0); val != nil {
		svc = val.(models.Service)
	}
	return svc, args.Error(1)
}

func (m *ServiceRepositoryMock) List(ctx context.Context, serviceType string, offset, limit int) ([]models.Service, error) {
	args := m.Called(ctx, serviceType, offset, limit)
	var services []models.Service
	if val := args.Get(0); val != nil {
		services = val.([]models.Service)
	}
	return services, args.Error(1)
}

func (m *ServiceRepositoryMock) IncrementViews(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ConversationStoreMock struct {
	mock.Mock
}

func (m *ConversationStoreMock) Create(ctx context.Context, conv *models.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}

func (m *ConversationStoreMock) GetByID(ctx context.Context, id uuid.UUID) (models.Conversation, error) {
	args := m.Called(ctx, id)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationStoreMock) FindByParties(ctx context.Context, clientID, freelancerID uuid.UUID, jobID *uuid.UUID) (models.Conversation, error) {
	args := m.Called(ctx, clientID, freelancerID, jobID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationStoreMock) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	var convs []models.Conversation
	if val := args.Get(0); val != nil {
		convs = val.([]models.Conversation)
	}
	return convs, args.Error(1)
}

func (m *ConversationStoreMock) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ConversationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *ConversationStoreMock) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MessageStoreMock struct {
	mock.Mock
}

func (m *MessageStoreMock) Append(ctx context.Context, msg *models.Message, preview string) error {
	args := m.Called(ctx, msg, preview)
	return args.Error(0)
}

func (m *MessageStoreMock) ListByConversation(ctx context.Context, conversationID uuid.UUID, offset, limit int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID, offset, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageStoreMock) CountUnread(ctx context.Context, conversationID, recipientID uuid.UUID) (int, error) {
	args := m.Called(ctx, conversationID, recipientID)
	return args.Int(0), args.Error(1)
}

func (m *MessageStoreMock) MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID, readAt time.Time) error {
	args := m.Called(ctx, conversationID, userID, readAt)
	return args.Error(0)
}

type PaymentStoreMock struct {
	mock.Mock
}

func (m *PaymentStoreMock) Create(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *PaymentStoreMock) GetByID(ctx context.Context, id uuid.UUID) (models.Payment, error) {
	args := m.Called(ctx, id)
	var payment models.Payment
	if val := args.Get(0); val != nil {
		payment = val.(models.Payment)
	}
	return payment, args.Error(1)
}

func (m *PaymentStoreMock) List(ctx context.Context, f payments.Filters) ([]models.Payment, int, error) {
	args := m.Called(ctx, f)
	var rows []models.Payment
	if val := args.Get(0); val != nil {
		rows = val.([]models.Payment)
	}
	return rows, args.Int(1), args.Error(2)
}

func (m *PaymentStoreMock) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, processedAt *time.Time) error {
	args := m.Called(ctx, id, status, processedAt)
	return args.Error(0)
}

func (m *PaymentStoreMock) Stats(ctx context.Context, clientID *uuid.UUID) (payments.StatsAggregate, error) {
	args := m.Called(ctx, clientID)
	var agg payments.StatsAggregate
	if val := args.Get(0); val != nil {
		agg = val.(payments.StatsAggregate)
	}
	return agg, args.Error(1)
}

func (m *PaymentStoreMock) Recent(ctx context.Context, clientID *uuid.UUID, limit int) ([]models.Payment, error) {
	args := m.Called(ctx, clientID, limit)
	var rows []models.Payment
	if val := args.Get(0); val != nil {
		rows = val.([]models.Payment)
	}
	return rows, args.Error(1)
}

var _ conversations.ConversationStore = (*ConversationStoreMock)(nil)
var _ conversations.MessageStore = (*MessageStoreMock)(nil)
var _ payments.PaymentStore = (*PaymentStoreMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.JobRepository = (*JobRepositoryMock)(nil)
var _ repositories.ProposalRepository = (*ProposalRepositoryMock)(nil)
var _ repositories.ServiceRepository = (*ServiceRepositoryMock)(nil)
