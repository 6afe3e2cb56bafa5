package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

func TestWithTransaction_KeepsWritesOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")

	var weekID string
	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := s.Weeks().Create(ctx, &domain.WorkoutWeek{ProgramID: "p1", Name: "Week 1"})
		require.NoError(t, err)
		weekID = id
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// there is no rollback, compensation is up to the caller
	week, err := s.Weeks().GetByID(ctx, weekID)
	require.NoError(t, err)
	assert.Equal(t, "Week 1", week.Name)

	require.NoError(t, s.Weeks().DeleteMany(ctx, []string{weekID}))
	_, err = s.Weeks().GetByID(ctx, weekID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFailOn(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")

	s.FailOn("weeks.create", boom)
	_, err := s.Weeks().Create(ctx, &domain.WorkoutWeek{ProgramID: "p1"})
	assert.ErrorIs(t, err, boom)

	weeks, err := s.Weeks().ListByProgram(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, weeks)

	s.FailOn("weeks.create", nil)
	id, err := s.Weeks().Create(ctx, &domain.WorkoutWeek{ProgramID: "p1"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
