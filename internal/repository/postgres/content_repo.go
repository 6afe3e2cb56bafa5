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

// ContentRepo stores club posts and chat messages.
type ContentRepo struct {
	db *pgxpool.Pool
}

func NewContentRepo(db *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{db: db}
}

var _ repository.ClubContentRepository = (*ContentRepo)(nil)

const postColumns = `id, club_id, user_id, content, content_html, workout_id, created_at`

func scanPost(row pgx.CollectableRow) (domain.ClubPost, error) {
	var p domain.ClubPost
	err := row.Scan(&p.ID, &p.ClubID, &p.UserID, &p.Content, &p.ContentHTML, &p.WorkoutID, &p.CreatedAt)
	return p, err
}

func (r *ContentRepo) CreatePost(ctx context.Context, p *domain.ClubPost) (string, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO club_posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		p.ID, p.ClubID, p.UserID, p.Content, p.ContentHTML, p.WorkoutID, p.CreatedAt,
	)
	if err != nil {
		return "", mapErr(err)
	}
	return p.ID, nil
}

func (r *ContentRepo) GetPost(ctx context.Context, id string) (*domain.ClubPost, error) {
	rows, err := r.db.Query(ctx, `SELECT `+postColumns+` FROM club_posts WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPost)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *ContentRepo) ListPosts(ctx context.Context, clubID string) ([]domain.ClubPost, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+postColumns+` FROM club_posts WHERE club_id = $1 ORDER BY created_at DESC;`, clubID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanPost)
}

func (r *ContentRepo) DeletePost(ctx context.Context, id string) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM club_posts WHERE id = $1;`, id))
}

const messageColumns = `id, club_id, user_id, content, is_pinned, created_at`

func scanMessage(row pgx.CollectableRow) (domain.ClubMessage, error) {
	var m domain.ClubMessage
	err := row.Scan(&m.ID, &m.ClubID, &m.UserID, &m.Content, &m.IsPinned, &m.CreatedAt)
	return m, err
}

func (r *ContentRepo) CreateMessage(ctx context.Context, m *domain.ClubMessage) (string, error) {
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO club_messages (`+messageColumns+`) VALUES ($1, $2, $3, $4, $5, $6);`,
		m.ID, m.ClubID, m.UserID, m.Content, m.IsPinned, m.CreatedAt,
	)
	if err != nil {
		return "", mapErr(err)
	}
	return m.ID, nil
}

func (r *ContentRepo) GetMessage(ctx context.Context, id string) (*domain.ClubMessage, error) {
	rows, err := r.db.Query(ctx, `SELECT `+messageColumns+` FROM club_messages WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanMessage)
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (r *ContentRepo) ListMessages(ctx context.Context, clubID string) ([]domain.ClubMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+messageColumns+` FROM club_messages
		WHERE club_id = $1
		ORDER BY is_pinned DESC, created_at DESC;`, clubID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanMessage)
}

func (r *ContentRepo) SetMessagePinned(ctx context.Context, id string, pinned bool) error {
	return expectOne(r.db.Exec(ctx, `UPDATE club_messages SET is_pinned = $2 WHERE id = $1;`, id, pinned))
}

func (r *ContentRepo) DeleteMessage(ctx context.Context, id string) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM club_messages WHERE id = $1;`, id))
}
