package postgres

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
)

// row feeds fixed values to a scanner in column order.
type row []any

var _ pgx.CollectableRow = row(nil)

func (r row) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r row) Values() ([]any, error)                        { return r, nil }
func (r row) RawValues() [][]byte                           { return nil }

func (r row) Scan(dest ...any) error {
	if len(dest) != len(r) {
		return fmt.Errorf("got %d destinations for %d columns", len(dest), len(r))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		target.Set(reflect.ValueOf(r[i]).Convert(target.Type()))
	}
	return nil
}

func TestScanClub(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	club, err := scanClub(row{
		"c1", "Barbell Club", "heavy days", "strength", "user-1",
		"premium", 9.5, "https://example.com/b.png", created, updated,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Club{
		ID:             "c1",
		Name:           "Barbell Club",
		Description:    "heavy days",
		ClubType:       "strength",
		CreatorID:      "user-1",
		MembershipType: domain.MembershipPremium,
		PremiumPrice:   9.5,
		BannerURL:      "https://example.com/b.png",
		CreatedAt:      created,
		UpdatedAt:      updated,
	}, club)

	_, err = scanClub(row{"c1", "short"})
	assert.Error(t, err)
}

func TestScanMember(t *testing.T) {
	joined := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	m, err := scanMember(row{"c1", "user-2", "moderator", "pending", joined})
	require.NoError(t, err)
	assert.Equal(t, domain.ClubMember{
		ClubID:   "c1",
		UserID:   "user-2",
		Role:     domain.ClubRoleModerator,
		Status:   domain.MemberPending,
		JoinedAt: joined,
	}, m)
}

func TestClubColumnsMatchScanner(t *testing.T) {
	// every selected column needs a destination in scanClub
	columns := 1
	for _, c := range clubColumns {
		if c == ',' {
			columns++
		}
	}
	values := make(row, columns)
	for i := range values {
		values[i] = ""
	}
	values[6] = 0.0
	values[8], values[9] = time.Time{}, time.Time{}
	_, err := scanClub(values)
	assert.NoError(t, err)
}
