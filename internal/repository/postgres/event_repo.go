package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

type EventRepo struct {
	db *pgxpool.Pool
}

func NewEventRepo(db *pgxpool.Pool) *EventRepo {
	return &EventRepo{db: db}
}

var _ repository.ClubEventRepository = (*EventRepo)(nil)

const eventColumns = `id, club_id, name, description, location, start_time, end_time, created_by, created_at`

func scanEvent(row pgx.CollectableRow) (domain.ClubEvent, error) {
	var e domain.ClubEvent
	err := row.Scan(&e.ID, &e.ClubID, &e.Name, &e.Description, &e.Location,
		&e.StartTime, &e.EndTime, &e.CreatedBy, &e.CreatedAt)
	return e, err
}

func (r *EventRepo) Create(ctx context.Context, e *domain.ClubEvent) (string, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO club_events (`+eventColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		e.ID, e.ClubID, e.Name, e.Description, e.Location, e.StartTime, e.EndTime, e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		return "", mapErr(err)
	}
	return e.ID, nil
}

func (r *EventRepo) GetByID(ctx context.Context, id string) (*domain.ClubEvent, error) {
	rows, err := r.db.Query(ctx, `SELECT `+eventColumns+` FROM club_events WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	e, err := pgx.CollectExactlyOneRow(rows, scanEvent)
	if err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

func (r *EventRepo) ListByClub(ctx context.Context, clubID string) ([]domain.ClubEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM club_events WHERE club_id = $1 ORDER BY start_time;`, clubID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanEvent)
}

func (r *EventRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM club_events WHERE id = $1;`, id))
}

func (r *EventRepo) UpsertParticipant(ctx context.Context, p domain.EventParticipant) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO club_event_participants (event_id, user_id, status, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (event_id, user_id) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW();`,
		p.EventID, p.UserID, p.Status,
	)
	return mapErr(err)
}

func (r *EventRepo) ListParticipants(ctx context.Context, eventID string) ([]domain.EventParticipant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT event_id, user_id, status, updated_at FROM club_event_participants WHERE event_id = $1 ORDER BY updated_at;`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.EventParticipant, error) {
		var p domain.EventParticipant
		err := row.Scan(&p.EventID, &p.UserID, &p.Status, &p.UpdatedAt)
		return p, err
	})
}
