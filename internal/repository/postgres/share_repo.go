package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

// ShareRepo links workouts and programs to clubs. Each content type has its
// own table, unique on (content, club).
type ShareRepo struct {
	db *pgxpool.Pool
}

func NewShareRepo(db *pgxpool.Pool) *ShareRepo {
	return &ShareRepo{db: db}
}

var _ repository.ClubShareRepository = (*ShareRepo)(nil)

func shareTable(ct domain.ContentType) (table, column string, err error) {
	switch ct {
	case domain.ContentWorkout:
		return "club_shared_workouts", "workout_id", nil
	case domain.ContentProgram:
		return "club_shared_programs", "program_id", nil
	}
	return "", "", fmt.Errorf("unknown content type %q", ct)
}

func (r *ShareRepo) Share(ctx context.Context, share domain.ClubShare) error {
	table, column, err := shareTable(share.ContentType)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (club_id, %s, shared_by) VALUES ($1, $2, $3);`, table, column),
		share.ClubID, share.ContentID, share.SharedBy,
	)
	return mapErr(err)
}

func (r *ShareRepo) List(ctx context.Context, clubID string, ct domain.ContentType) ([]domain.ClubShare, error) {
	types := []domain.ContentType{ct}
	if ct == "" {
		types = []domain.ContentType{domain.ContentWorkout, domain.ContentProgram}
	}
	out := []domain.ClubShare{}
	for _, t := range types {
		table, column, err := shareTable(t)
		if err != nil {
			return nil, err
		}
		rows, err := r.db.Query(ctx, fmt.Sprintf(
			`SELECT club_id, %s, shared_by, created_at FROM %s WHERE club_id = $1 ORDER BY created_at DESC;`,
			column, table), clubID)
		if err != nil {
			return nil, err
		}
		shares, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ClubShare, error) {
			s := domain.ClubShare{ContentType: t}
			err := row.Scan(&s.ClubID, &s.ContentID, &s.SharedBy, &s.CreatedAt)
			return s, err
		})
		if err != nil {
			return nil, err
		}
		out = append(out, shares...)
	}
	return out, nil
}

func (r *ShareRepo) Unshare(ctx context.Context, clubID string, ct domain.ContentType, contentID string) error {
	table, column, err := shareTable(ct)
	if err != nil {
		return err
	}
	return expectOne(r.db.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE club_id = $1 AND %s = $2;`, table, column),
		clubID, contentID,
	))
}
