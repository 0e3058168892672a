package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ServiceStatus string

const (
	ServiceActive   ServiceStatus = "active"
	ServiceInactive ServiceStatus = "inactive"
	ServiceDraft    ServiceStatus = "draft"
)

// Service is a productized offering published by a freelancer.
type Service struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	FreelancerID  uuid.UUID      `db:"freelancer_id" json:"freelancer_id"`
	Title         string         `db:"title" json:"title"`
	Slug          string         `db:"slug" json:"slug"`
	Description   string         `db:"description" json:"description"`
	ServiceType   string         `db:"service_type" json:"service_type"`
	StartingPrice float64        `db:"starting_price" json:"starting_price"`
	DeliveryDays  int            `db:"delivery_days" json:"delivery_days"`
	Revisions     int            `db:"revisions" json:"revisions"`
	Tags          pq.StringArray `db:"tags" json:"tags"`
	Status        ServiceStatus  `db:"status" json:"status"`
	ViewCount     int            `db:"view_count" json:"view_count"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}
