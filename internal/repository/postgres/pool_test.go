package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(pgx.ErrNoRows), repository.ErrNotFound)
	assert.ErrorIs(t, mapErr(fmt.Errorf("wrapped: %w", pgx.ErrNoRows)), repository.ErrNotFound)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: "23505"}), repository.ErrDuplicate)

	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, other, errors.Unwrap(fmt.Errorf("x: %w", mapErr(other))))
}

func TestExpectOne(t *testing.T) {
	assert.NoError(t, expectOne(pgconn.NewCommandTag("UPDATE 1"), nil))
	assert.ErrorIs(t, expectOne(pgconn.NewCommandTag("UPDATE 0"), nil), repository.ErrNotFound)
	assert.ErrorIs(t, expectOne(pgconn.CommandTag{}, &pgconn.PgError{Code: "23505"}), repository.ErrDuplicate)
}

func TestShareTable(t *testing.T) {
	table, column, err := shareTable(domain.ContentWorkout)
	assert.NoError(t, err)
	assert.Equal(t, "club_shared_workouts", table)
	assert.Equal(t, "workout_id", column)

	table, column, err = shareTable(domain.ContentProgram)
	assert.NoError(t, err)
	assert.Equal(t, "club_shared_programs", table)
	assert.Equal(t, "program_id", column)

	_, _, err = shareTable("video")
	assert.Error(t, err)
}

func TestMigrationsAreContiguous(t *testing.T) {
	for v := 1; v <= len(Migrations); v++ {
		assert.Contains(t, Migrations, v)
	}
}
