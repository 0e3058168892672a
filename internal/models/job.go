package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type JobStatus string

const (
	JobDraft      JobStatus = "draft"
	JobOpen       JobStatus = "open"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

type JobType string

const (
	JobFixed  JobType = "fixed"
	JobHourly JobType = "hourly"
)

type ExperienceLevel string

const (
	ExperienceEntry        ExperienceLevel = "entry"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExpert       ExperienceLevel = "expert"
)

// Job is a client's posting that freelancers bid on.
type Job struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	ClientID        uuid.UUID       `db:"client_id" json:"client_id"`
	Title           string          `db:"title" json:"title"`
	Description     string          `db:"description" json:"description"`
	JobType         JobType         `db:"job_type" json:"job_type"`
	Budget          *float64        `db:"budget" json:"budget,omitempty"`
	HourlyRateMin   *float64        `db:"hourly_rate_min" json:"hourly_rate_min,omitempty"`
	HourlyRateMax   *float64        `db:"hourly_rate_max" json:"hourly_rate_max,omitempty"`
	ExperienceLevel ExperienceLevel `db:"experience_level" json:"experience_level"`
	SkillsRequired  pq.StringArray  `db:"skills_required" json:"skills_required"`
	Status          JobStatus       `db:"status" json:"status"`
	Deadline        *time.Time      `db:"deadline" json:"deadline,omitempty"`
	ViewCount       int             `db:"view_count" json:"view_count"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}
