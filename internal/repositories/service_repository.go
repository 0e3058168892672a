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
	ErrServiceNotFound = errors.New("service not found")
	ErrSlugTaken       = errors.New("service slug already in use")
)

const serviceColumns = `id, freelancer_id, title, slug, description, service_type, starting_price,
    delivery_days, revisions, tags, status, view_count, created_at, updated_at`

// ServiceRepository abstracts service-listing persistence.
type ServiceRepository interface {
	Create(ctx context.Context, svc *models.Service) error
	GetByID(ctx context.Context, id uuid.UUID) (models.Service, error)
	List(ctx context.Context, serviceType string, offset, limit int) ([]models.Service, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

// ServiceRepo is a sqlx implementation of ServiceRepository.
type ServiceRepo struct {
	db *sqlx.DB
}

// NewServiceRepo constructs a ServiceRepo.
func NewServiceRepo(db *sqlx.DB) *ServiceRepo {
	return &ServiceRepo{db: db}
}

// Create inserts a service listing. Slug collisions map to ErrSlugTaken.
func (r *ServiceRepo) Create(ctx context.Context, svc *models.Service) error {
	query := `INSERT INTO services (id, freelancer_id, title, slug, description, service_type,
            starting_price, delivery_days, revisions, tags, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		svc.ID, svc.FreelancerID, svc.Title, svc.Slug, svc.Description, svc.ServiceType,
		svc.StartingPrice, svc.DeliveryDays, svc.Revisions, svc.Tags, svc.Status).
		Scan(&svc.CreatedAt, &svc.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrSlugTaken
	}
	return err
}

// GetByID fetches one listing.
func (r *ServiceRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Service, error) {
	var svc models.Service
	err := r.db.GetContext(ctx, &svc, `SELECT `+serviceColumns+` FROM services WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Service{}, ErrServiceNotFound
	}
	return svc, err
}

// List returns active listings, optionally filtered by service type.
func (r *ServiceRepo) List(ctx context.Context, serviceType string, offset, limit int) ([]models.Service, error) {
	var services []models.Service
	query := `SELECT ` + serviceColumns + ` FROM services
        WHERE status='active' AND ($1 = '' OR service_type=$1)
        ORDER BY created_at DESC
        OFFSET $2 LIMIT $3`
	err := r.db.SelectContext(ctx, &services, query, serviceType, offset, limit)
	return services, err
}

// IncrementViews bumps the view counter.
func (r *ServiceRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE services SET view_count = view_count + 1 WHERE id=$1`, id)
	return err
}
