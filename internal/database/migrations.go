package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		full_name VARCHAR(255),
		avatar_url VARCHAR(500),
		password_hash VARCHAR(255),
		provider VARCHAR(50) NOT NULL DEFAULT 'password',
		provider_id VARCHAR(255),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS calendars (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		description TEXT,
		color VARCHAR(7) NOT NULL DEFAULT '#3B82F6',
		created_by UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS calendar_members (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		calendar_id UUID NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		role VARCHAR(20) NOT NULL CHECK (role IN ('owner', 'editor', 'viewer')),
		joined_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(calendar_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		calendar_id UUID NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		time VARCHAR(5) NOT NULL DEFAULT '09:00',
		duration INTEGER NOT NULL DEFAULT 30 CHECK (duration > 0),
		is_multi_day BOOLEAN NOT NULL DEFAULT FALSE,
		color VARCHAR(7) NOT NULL,
		created_by UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CHECK (end_date >= start_date)
	)`,

	`CREATE TABLE IF NOT EXISTS calendar_invitations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		calendar_id UUID NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
		email VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL CHECK (role IN ('editor', 'viewer')),
		invited_by UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		token VARCHAR(64) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		accepted_at TIMESTAMP WITH TIME ZONE,
		rejected_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// At most one unanswered invitation per (calendar, email).
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_calendar_invitations_active
		ON calendar_invitations(calendar_id, email)
		WHERE accepted_at IS NULL AND rejected_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS join_requests (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		calendar_id UUID NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'declined')),
		role VARCHAR(20),
		decided_by UUID REFERENCES profiles(id) ON DELETE SET NULL,
		decided_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_join_requests_pending
		ON join_requests(calendar_id, user_id)
		WHERE status = 'pending'`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_provider
		ON profiles(provider, provider_id)
		WHERE provider_id IS NOT NULL`,

	`CREATE INDEX IF NOT EXISTS idx_calendar_members_calendar_id ON calendar_members(calendar_id)`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_members_user_id ON calendar_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_calendar_dates ON events(calendar_id, start_date, end_date)`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_invitations_email ON calendar_invitations(email)`,
	`CREATE INDEX IF NOT EXISTS idx_join_requests_calendar_id ON join_requests(calendar_id)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
