package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

// --- Error Definitions ---
var (
	ErrProgramNotFound  = errors.New("program not found")
	ErrWeekNotFound     = errors.New("week not found")
	ErrWorkoutNotFound  = errors.New("workout not found")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrSetNotFound      = errors.New("set not found")
	ErrCircuitNotFound  = errors.New("circuit not found")

	ErrAccessDenied = errors.New("access denied")
	ErrValidation   = errors.New("validation failed")

	ErrLastSet          = errors.New("an exercise must keep at least one set")
	ErrInvalidGroup     = errors.New("group must be a group exercise of the same workout")
	ErrAlreadyInCircuit = errors.New("exercise already belongs to a circuit")
	ErrNotInCircuit     = errors.New("exercise is not part of this circuit")

	ErrNotPurchasable   = errors.New("content is not for sale")
	ErrAlreadyPurchased = errors.New("content already purchased")
	ErrNotSaved         = errors.New("content is not in the library")
)

// validationError wraps msg so that errors.Is(err, ErrValidation) holds.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func validateStruct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// notFound maps repository misses (including malformed ids) to the given
// service error and wraps everything else with op.
func notFound(err error, target error, op string) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
		return target
	}
	return fmt.Errorf("%s: %w", op, err)
}
