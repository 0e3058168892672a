package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
)

var ErrJobNotFound = errors.New("job not found")

const jobColumns = `id, client_id, title, description, job_type, budget, hourly_rate_min,
    hourly_rate_max, experience_level, skills_required, status, deadline, view_count,
    created_at, updated_at`

// JobFilters narrow job listings.
type JobFilters struct {
	Status   models.JobStatus
	ClientID *uuid.UUID
	Skill    string
	Offset   int
	Limit    int
}

// JobRepository abstracts job-posting persistence.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (models.Job, error)
	List(ctx context.Context, f JobFilters) ([]models.Job, int, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// JobRepo is a sqlx implementation of JobRepository.
type JobRepo struct {
	db *sqlx.DB
}

// NewJobRepo constructs a JobRepo.
func NewJobRepo(db *sqlx.DB) *JobRepo {
	return &JobRepo{db: db}
}

// Create inserts a job posting.
func (r *JobRepo) Create(ctx context.Context, job *models.Job) error {
	query := `INSERT INTO jobs (id, client_id, title, description, job_type, budget,
            hourly_rate_min, hourly_rate_max, experience_level, skills_required, status, deadline)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query,
		job.ID, job.ClientID, job.Title, job.Description, job.JobType, job.Budget,
		job.HourlyRateMin, job.HourlyRateMax, job.ExperienceLevel, job.SkillsRequired,
		job.Status, job.Deadline).
		Scan(&job.CreatedAt, &job.UpdatedAt)
}

// GetByID fetches a job by id.
func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Job, error) {
	var job models.Job
	err := r.db.GetContext(ctx, &job, `SELECT `+jobColumns+` FROM jobs WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Job{}, ErrJobNotFound
	}
	return job, err
}

// List returns filtered jobs, newest first, plus the total count.
func (r *JobRepo) List(ctx context.Context, f JobFilters) ([]models.Job, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	add := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if f.Status != "" {
		add("status=$%d", f.Status)
	}
	if f.ClientID != nil {
		add("client_id=$%d", *f.ClientID)
	}
	if f.Skill != "" {
		add("$%d = ANY(skills_required)", f.Skill)
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM jobs WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE %s ORDER BY created_at DESC OFFSET $%d LIMIT $%d`,
		jobColumns, where, len(args)+1, len(args)+2)
	args = append(args, f.Offset, f.Limit)

	var jobs []models.Job
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// IncrementViews bumps the view counter.
func (r *JobRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE jobs SET view_count = view_count + 1 WHERE id=$1`, id)
	return err
}

// UpdateStatus sets the job status.
func (r *JobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE jobs SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrJobNotFound
	}
	return nil
}

// Delete removes a job posting. Proposals cascade.
func (r *JobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrJobNotFound
	}
	return nil
}
