package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	database, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(database); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return database, nil
}

func runMigrations(database *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'client',
            status TEXT NOT NULL DEFAULT 'active',
            bio TEXT NOT NULL DEFAULT '',
            title TEXT NOT NULL DEFAULT '',
            company_name TEXT NOT NULL DEFAULT '',
            skills TEXT[] NOT NULL DEFAULT '{}',
            hourly_rate NUMERIC(10,2),
            rating NUMERIC(3,2) NOT NULL DEFAULT 0,
            review_count INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS jobs (
            id UUID PRIMARY KEY,
            client_id UUID NOT NULL REFERENCES users(id),
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            job_type TEXT NOT NULL DEFAULT 'fixed',
            budget NUMERIC(10,2),
            hourly_rate_min NUMERIC(10,2),
            hourly_rate_max NUMERIC(10,2),
            experience_level TEXT NOT NULL DEFAULT 'intermediate',
            skills_required TEXT[] NOT NULL DEFAULT '{}',
            status TEXT NOT NULL DEFAULT 'open',
            deadline TIMESTAMPTZ,
            view_count INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS proposals (
            id UUID PRIMARY KEY,
            job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
            freelancer_id UUID NOT NULL REFERENCES users(id),
            cover_letter TEXT NOT NULL,
            bid_amount NUMERIC(10,2) NOT NULL,
            delivery_days INT,
            status TEXT NOT NULL DEFAULT 'pending',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE(job_id, freelancer_id)
        );`,
		`CREATE TABLE IF NOT EXISTS services (
            id UUID PRIMARY KEY,
            freelancer_id UUID NOT NULL REFERENCES users(id),
            title TEXT NOT NULL,
            slug TEXT NOT NULL UNIQUE,
            description TEXT NOT NULL,
            service_type TEXT NOT NULL,
            starting_price NUMERIC(10,2) NOT NULL,
            delivery_days INT NOT NULL DEFAULT 7,
            revisions INT NOT NULL DEFAULT 3,
            tags TEXT[] NOT NULL DEFAULT '{}',
            status TEXT NOT NULL DEFAULT 'active',
            view_count INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS conversations (
            id UUID PRIMARY KEY,
            client_id UUID NOT NULL REFERENCES users(id),
            freelancer_id UUID NOT NULL REFERENCES users(id),
            job_id UUID REFERENCES jobs(id),
            project_title TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'not-hired',
            last_message TEXT NOT NULL DEFAULT '',
            last_message_at TIMESTAMPTZ,
            client_unread BOOLEAN NOT NULL DEFAULT FALSE,
            freelancer_unread BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CHECK (client_id <> freelancer_id)
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY,
            conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
            sender_id UUID NOT NULL REFERENCES users(id),
            recipient_id UUID NOT NULL REFERENCES users(id),
            content TEXT NOT NULL DEFAULT '',
            type TEXT NOT NULL DEFAULT 'text',
            status TEXT NOT NULL DEFAULT 'sent',
            read_at TIMESTAMPTZ,
            file_data JSONB,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS payments (
            id UUID PRIMARY KEY,
            client_id UUID NOT NULL REFERENCES users(id),
            conversation_id UUID REFERENCES conversations(id) ON DELETE SET NULL,
            intent_id TEXT NOT NULL,
            amount NUMERIC(10,2) NOT NULL,
            currency TEXT NOT NULL DEFAULT 'usd',
            status TEXT NOT NULL DEFAULT 'pending',
            method TEXT NOT NULL DEFAULT 'stripe',
            description TEXT NOT NULL DEFAULT '',
            processed_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	}

	for _, m := range migrations {
		if _, err := database.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
