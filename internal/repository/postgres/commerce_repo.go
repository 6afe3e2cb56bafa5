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

// CommerceRepo stores club products, product purchases and subscriptions.
type CommerceRepo struct {
	db *pgxpool.Pool
}

func NewCommerceRepo(db *pgxpool.Pool) *CommerceRepo {
	return &CommerceRepo{db: db}
}

var _ repository.ClubCommerceRepository = (*CommerceRepo)(nil)

const productColumns = `id, club_id, name, description, price, product_type, created_at`

func scanProduct(row pgx.CollectableRow) (domain.ClubProduct, error) {
	var p domain.ClubProduct
	err := row.Scan(&p.ID, &p.ClubID, &p.Name, &p.Description, &p.Price, &p.ProductType, &p.CreatedAt)
	return p, err
}

func (r *CommerceRepo) CreateProduct(ctx context.Context, p *domain.ClubProduct) (string, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO club_products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		p.ID, p.ClubID, p.Name, p.Description, p.Price, p.ProductType, p.CreatedAt,
	)
	if err != nil {
		return "", mapErr(err)
	}
	return p.ID, nil
}

func (r *CommerceRepo) GetProduct(ctx context.Context, id string) (*domain.ClubProduct, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM club_products WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *CommerceRepo) ListProducts(ctx context.Context, clubID string) ([]domain.ClubProduct, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM club_products WHERE club_id = $1 ORDER BY created_at;`, clubID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanProduct)
}

func (r *CommerceRepo) CreatePurchase(ctx context.Context, p *domain.ClubProductPurchase) (string, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO club_product_purchases (id, product_id, user_id, amount_paid, created_at) VALUES ($1, $2, $3, $4, $5);`,
		p.ID, p.ProductID, p.UserID, p.AmountPaid, p.CreatedAt,
	)
	if err != nil {
		return "", mapErr(err)
	}
	return p.ID, nil
}

func (r *CommerceRepo) HasPurchased(ctx context.Context, productID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM club_product_purchases WHERE product_id = $1 AND user_id = $2);`,
		productID, userID,
	).Scan(&exists)
	return exists, err
}

// UpsertSubscription (re)activates the subscription of a user to a club.
func (r *CommerceRepo) UpsertSubscription(ctx context.Context, sub *domain.ClubSubscription) (string, error) {
	if sub.StartedAt.IsZero() {
		sub.StartedAt = time.Now().UTC()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO club_subscriptions (id, club_id, user_id, status, started_at, canceled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (club_id, user_id) DO UPDATE
			SET status = EXCLUDED.status, started_at = EXCLUDED.started_at, canceled_at = EXCLUDED.canceled_at
		RETURNING id;`,
		uuid.NewString(), sub.ClubID, sub.UserID, sub.Status, sub.StartedAt, sub.CanceledAt,
	).Scan(&sub.ID)
	if err != nil {
		return "", mapErr(err)
	}
	return sub.ID, nil
}

func (r *CommerceRepo) GetSubscription(ctx context.Context, clubID, userID string) (*domain.ClubSubscription, error) {
	var s domain.ClubSubscription
	err := r.db.QueryRow(ctx, `
		SELECT id, club_id, user_id, status, started_at, canceled_at
		FROM club_subscriptions WHERE club_id = $1 AND user_id = $2;`,
		clubID, userID,
	).Scan(&s.ID, &s.ClubID, &s.UserID, &s.Status, &s.StartedAt, &s.CanceledAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *CommerceRepo) CancelSubscription(ctx context.Context, clubID, userID string) error {
	return expectOne(r.db.Exec(ctx, `
		UPDATE club_subscriptions SET status = $3, canceled_at = NOW()
		WHERE club_id = $1 AND user_id = $2 AND status = $4;`,
		clubID, userID, domain.SubscriptionCanceled, domain.SubscriptionActive,
	))
}
