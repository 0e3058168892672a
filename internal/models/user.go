package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UserRole distinguishes the two marketplace sides plus admins.
type UserRole string

const (
	RoleClient     UserRole = "client"
	RoleFreelancer UserRole = "freelancer"
	RoleAdmin      UserRole = "admin"
)

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	UserActive      UserStatus = "active"
	UserSuspended   UserStatus = "suspended"
	UserDeactivated UserStatus = "deactivated"
)

// User is a marketplace account. PasswordHash never leaves the server.
type User struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	FirstName    string         `db:"first_name" json:"first_name"`
	LastName     string         `db:"last_name" json:"last_name"`
	Role         UserRole       `db:"role" json:"role"`
	Status       UserStatus     `db:"status" json:"status"`
	Bio          string         `db:"bio" json:"bio,omitempty"`
	Title        string         `db:"title" json:"title,omitempty"`
	CompanyName  string         `db:"company_name" json:"company_name,omitempty"`
	Skills       pq.StringArray `db:"skills" json:"skills"`
	HourlyRate   *float64       `db:"hourly_rate" json:"hourly_rate,omitempty"`
	Rating       float64        `db:"rating" json:"rating"`
	ReviewCount  int            `db:"review_count" json:"review_count"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}
