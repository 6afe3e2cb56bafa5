package postgres

import (
	"context"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Migrations are applied in version order, each in its own transaction.
var Migrations = map[int]string{
	1: `
CREATE TABLE IF NOT EXISTS clubs (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	club_type       TEXT NOT NULL DEFAULT '',
	creator_id      TEXT NOT NULL,
	membership_type TEXT NOT NULL DEFAULT 'free',
	premium_price   NUMERIC(10,2) NOT NULL DEFAULT 0,
	banner_url      TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS club_members (
	club_id   TEXT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
	user_id   TEXT NOT NULL,
	role      TEXT NOT NULL,
	status    TEXT NOT NULL,
	joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (club_id, user_id)
);
CREATE INDEX IF NOT EXISTS club_members_user_idx ON club_members (user_id);

CREATE TABLE IF NOT EXISTS club_events (
	id          TEXT PRIMARY KEY,
	club_id     TEXT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	start_time  TIMESTAMPTZ NOT NULL,
	end_time    TIMESTAMPTZ NOT NULL,
	created_by  TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS club_events_club_idx ON club_events (club_id, start_time);

CREATE TABLE IF NOT EXISTS club_event_participants (
	event_id   TEXT NOT NULL REFERENCES club_events(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL,
	status     TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (event_id, user_id)
);

CREATE TABLE IF NOT EXISTS club_posts (
	id           TEXT PRIMARY KEY,
	club_id      TEXT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
	user_id      TEXT NOT NULL,
	content      TEXT NOT NULL,
	content_html TEXT NOT NULL,
	workout_id   TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS club_posts_club_idx ON club_posts (club_id, created_at DESC);

CREATE TABLE IF NOT EXISTS club_messages (
	id         TEXT PRIMARY KEY,
	club_id    TEXT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL,
	content    TEXT NOT NULL,
	is_pinned  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS club_messages_club_idx ON club_messages (club_id, is_pinned DESC, created_at DESC);
`,
	2: `
CREATE TABLE IF NOT EXISTS club_products (
	id           TEXT PRIMARY KEY,
	club_id      TEXT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
	name         TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	price        NUMERIC(10,2) NOT NULL DEFAULT 0,
	product_type TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS club_product_purchases (
	id          TEXT PRIMARY KEY,
	product_id  TEXT NOT NULL REFERENCES club_products(id) ON DELETE CASCADE,
	user_id     TEXT NOT NULL,
	amount_paid NUMERIC(10,2) NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (product_id, user_id)
);

CREATE TABLE IF NOT EXISTS club_subscriptions (
	id          TEXT PRIMARY KEY,
	club_id     TEXT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
	user_id     TEXT NOT NULL,
	status      TEXT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	canceled_at TIMESTAMPTZ,
	UNIQUE (club_id, user_id)
);
`,
	3: `
CREATE TABLE IF NOT EXISTS club_shared_workouts (
	club_id    TEXT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
	workout_id TEXT NOT NULL,
	shared_by  TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (workout_id, club_id)
);

CREATE TABLE IF NOT EXISTS club_shared_programs (
	club_id    TEXT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
	program_id TEXT NOT NULL,
	shared_by  TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (program_id, club_id)
);
`,
}

// MigrationManager handles database schema migrations.
type MigrationManager struct {
	db         *pgxpool.Pool
	log        logrus.FieldLogger
	migrations map[int]string
}

func NewMigrationManager(log logrus.FieldLogger, db *pgxpool.Pool, migrations map[int]string) *MigrationManager {
	return &MigrationManager{
		db:         db,
		log:        log,
		migrations: migrations,
	}
}

// Run applies every migration newer than the recorded schema version and
// returns the resulting version.
func (m *MigrationManager) Run(ctx context.Context) (int, error) {
	_, err := m.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		);`)
	if err != nil {
		return 0, fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	if err := m.db.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return 0, fmt.Errorf("query current schema version: %w", err)
	}
	m.log.WithField("version", current).Info("current schema version")

	versions := make([]int, 0, len(m.migrations))
	for v := range m.migrations {
		versions = append(versions, v)
	}
	slices.Sort(versions)

	for _, version := range versions {
		if version <= current {
			continue
		}
		if err := m.apply(ctx, version, m.migrations[version]); err != nil {
			return current, err
		}
		current = version
		m.log.WithField("version", version).Info("migration applied")
	}
	return current, nil
}

func (m *MigrationManager) apply(ctx context.Context, version int, sql string) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", version, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("execute migration %d: %w", version, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return fmt.Errorf("record migration %d: %w", version, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %d: %w", version, err)
	}
	return nil
}
