package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Constraint names the repositories inspect when classifying violations.
const (
	ConstraintTicketID   = "complaints_ticket_id_key"
	ConstraintVotePair   = "votes_pkey"
	ConstraintVoteParent = "votes_complaint_id_fkey"
	ConstraintAdminEmail = "admins_email_lower_key"
)

// Schema is applied idempotently at startup. Uniqueness of ticket ids and
// of (complaint, voter) pairs lives here, not in application code.
const Schema = `
CREATE TABLE IF NOT EXISTS complaints (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	department  VARCHAR(16) NOT NULL
	            CHECK (department IN ('Cafe', 'IT', 'Library', 'Dorm', 'Registrar')),
	message     TEXT NOT NULL CHECK (length(btrim(message)) > 0),
	photos      TEXT[] NOT NULL DEFAULT '{}' CHECK (cardinality(photos) <= 4),
	likes       INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0),
	status      VARCHAR(16) NOT NULL DEFAULT 'Pending'
	            CHECK (status IN ('Pending', 'In Progress', 'Resolved')),
	ticket_id   VARCHAR(16) NOT NULL,
	reply       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT complaints_ticket_id_key UNIQUE (ticket_id)
);

CREATE INDEX IF NOT EXISTS complaints_department_created_idx
	ON complaints (department, created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS complaints_department_likes_idx
	ON complaints (department, likes DESC, created_at DESC, id DESC);

CREATE TABLE IF NOT EXISTS votes (
	complaint_id UUID NOT NULL,
	voter_id     VARCHAR(128) NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT votes_pkey PRIMARY KEY (complaint_id, voter_id),
	CONSTRAINT votes_complaint_id_fkey FOREIGN KEY (complaint_id)
		REFERENCES complaints (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS admins (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name          TEXT NOT NULL,
	department    VARCHAR(16) NOT NULL
	              CHECK (department IN ('Cafe', 'IT', 'Library', 'Dorm', 'Registrar')),
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS admins_email_lower_key ON admins (lower(email));
`

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
