package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Doctors and patients are stored as whole records: nested collections
// (availability, medical history, appointments) live in JSONB columns and are
// rewritten together with the row. seq preserves insertion order.
const schema = `
CREATE TABLE IF NOT EXISTS doctors (
	seq            BIGSERIAL,
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	phone_number   TEXT NOT NULL,
	email          TEXT NOT NULL,
	password       TEXT NOT NULL,
	specialization TEXT NOT NULL,
	experience     INTEGER NOT NULL DEFAULT 0,
	rating         DOUBLE PRECISION NOT NULL DEFAULT 0,
	availability   JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS doctors_specialization_idx ON doctors (specialization, seq);

CREATE TABLE IF NOT EXISTS patients (
	seq             BIGSERIAL,
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	phone_number    TEXT NOT NULL,
	email           TEXT NOT NULL,
	password        TEXT NOT NULL,
	age             INTEGER NOT NULL DEFAULT 0,
	medical_history JSONB NOT NULL DEFAULT '[]'::jsonb,
	appointments    JSONB NOT NULL DEFAULT '[]'::jsonb,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS event_logs (
	id             BIGSERIAL PRIMARY KEY,
	event_type     TEXT NOT NULL,
	appointment_id TEXT,
	payload        JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
