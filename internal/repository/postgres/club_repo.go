package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

type ClubRepo struct {
	db *pgxpool.Pool
}

func NewClubRepo(db *pgxpool.Pool) *ClubRepo {
	return &ClubRepo{db: db}
}

var _ repository.ClubRepository = (*ClubRepo)(nil)

const clubColumns = `id, name, description, club_type, creator_id, membership_type, premium_price, banner_url, created_at, updated_at`

func scanClub(row pgx.CollectableRow) (domain.Club, error) {
	var c domain.Club
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ClubType, &c.CreatorID,
		&c.MembershipType, &c.PremiumPrice, &c.BannerURL, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts the club and its owner membership in one transaction.
func (r *ClubRepo) Create(ctx context.Context, club *domain.Club, owner domain.ClubMember) (string, error) {
	now := time.Now().UTC()
	club.ID = uuid.NewString()
	club.CreatedAt, club.UpdatedAt = now, now

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO clubs (`+clubColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
		club.ID, club.Name, club.Description, club.ClubType, club.CreatorID,
		club.MembershipType, club.PremiumPrice, club.BannerURL, club.CreatedAt, club.UpdatedAt,
	)
	if err != nil {
		return "", mapErr(err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO club_members (club_id, user_id, role, status, joined_at) VALUES ($1, $2, $3, $4, $5);`,
		club.ID, owner.UserID, owner.Role, owner.Status, now,
	)
	if err != nil {
		return "", mapErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return club.ID, nil
}

func (r *ClubRepo) GetByID(ctx context.Context, id string) (*domain.Club, error) {
	rows, err := r.db.Query(ctx, `SELECT `+clubColumns+` FROM clubs WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanClub)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *ClubRepo) List(ctx context.Context) ([]domain.Club, error) {
	rows, err := r.db.Query(ctx, `SELECT `+clubColumns+` FROM clubs ORDER BY created_at DESC;`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanClub)
}

func (r *ClubRepo) ListByMember(ctx context.Context, userID string) ([]domain.Club, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.name, c.description, c.club_type, c.creator_id, c.membership_type,
			c.premium_price, c.banner_url, c.created_at, c.updated_at
		FROM clubs c
		JOIN club_members m ON m.club_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.created_at DESC;`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanClub)
}

// Update writes the non-nil patch fields; COALESCE keeps the rest.
func (r *ClubRepo) Update(ctx context.Context, id string, patch domain.ClubPatch) error {
	return expectOne(r.db.Exec(ctx, `
		UPDATE clubs SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			club_type = COALESCE($4, club_type),
			membership_type = COALESCE($5, membership_type),
			premium_price = COALESCE($6, premium_price),
			banner_url = COALESCE($7, banner_url),
			updated_at = NOW()
		WHERE id = $1;`,
		id, patch.Name, patch.Description, patch.ClubType, patch.MembershipType, patch.PremiumPrice, patch.BannerURL,
	))
}

func (r *ClubRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM clubs WHERE id = $1;`, id))
}

func (r *ClubRepo) AddMember(ctx context.Context, m domain.ClubMember) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO club_members (club_id, user_id, role, status) VALUES ($1, $2, $3, $4);`,
		m.ClubID, m.UserID, m.Role, m.Status,
	)
	return mapErr(err)
}

func scanMember(row pgx.CollectableRow) (domain.ClubMember, error) {
	var m domain.ClubMember
	err := row.Scan(&m.ClubID, &m.UserID, &m.Role, &m.Status, &m.JoinedAt)
	return m, err
}

func (r *ClubRepo) GetMember(ctx context.Context, clubID, userID string) (*domain.ClubMember, error) {
	rows, err := r.db.Query(ctx,
		`SELECT club_id, user_id, role, status, joined_at FROM club_members WHERE club_id = $1 AND user_id = $2;`,
		clubID, userID,
	)
	if err != nil {
		return nil, err
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanMember)
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (r *ClubRepo) ListMembers(ctx context.Context, clubID string) ([]domain.ClubMember, error) {
	rows, err := r.db.Query(ctx,
		`SELECT club_id, user_id, role, status, joined_at FROM club_members WHERE club_id = $1 ORDER BY joined_at;`,
		clubID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanMember)
}

func (r *ClubRepo) UpdateMemberRole(ctx context.Context, clubID, userID string, role domain.ClubRole) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE club_members SET role = $3 WHERE club_id = $1 AND user_id = $2;`,
		clubID, userID, role,
	))
}

func (r *ClubRepo) UpdateMemberStatus(ctx context.Context, clubID, userID string, status domain.MemberStatus) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE club_members SET status = $3 WHERE club_id = $1 AND user_id = $2;`,
		clubID, userID, status,
	))
}

func (r *ClubRepo) RemoveMember(ctx context.Context, clubID, userID string) error {
	return expectOne(r.db.Exec(ctx,
		`DELETE FROM club_members WHERE club_id = $1 AND user_id = $2;`,
		clubID, userID,
	))
}
