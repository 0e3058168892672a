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
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

const userColumns = `id, email, password_hash, first_name, last_name, role, status, bio, title,
    company_name, skills, hourly_rate, rating, review_count, created_at, updated_at`

// UserRepository abstracts account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	ListFreelancers(ctx context.Context, skill string, offset, limit int) ([]models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new account. A duplicate email maps to ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, email, password_hash, first_name, last_name, role, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Role, user.Status).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByEmail fetches an account by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// UpdateProfile persists the editable profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET
            first_name=$2, last_name=$3, bio=$4, title=$5, company_name=$6,
            skills=$7, hourly_rate=$8, updated_at=NOW()
        WHERE id=$1
        RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Bio, user.Title,
		user.CompanyName, user.Skills, user.HourlyRate).
		Scan(&user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

// ListFreelancers returns active freelancer accounts, optionally filtered by
// a skill, best rated first.
func (r *UserRepo) ListFreelancers(ctx context.Context, skill string, offset, limit int) ([]models.User, error) {
	var users []models.User
	query := `SELECT ` + userColumns + ` FROM users
        WHERE role='freelancer' AND status='active' AND ($1 = '' OR $1 = ANY(skills))
        ORDER BY rating DESC, review_count DESC
        OFFSET $2 LIMIT $3`
	err := r.db.SelectContext(ctx, &users, query, skill, offset, limit)
	return users, err
}
