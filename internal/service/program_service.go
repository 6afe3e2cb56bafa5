package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

// ProgramService manages programs as a whole: creation with the first
// week chain, listing, settings, pricing, visibility and purchases.
type ProgramService interface {
	CreateProgram(ctx context.Context, userID, name string) (*domain.WorkoutProgram, error)
	GetProgram(ctx context.Context, userID, programID string) (*domain.WorkoutProgram, error)
	ListPrograms(ctx context.Context, userID string) ([]domain.WorkoutProgram, error)
	ListPublicPrograms(ctx context.Context) ([]domain.WorkoutProgram, error)
	UpdateProgram(ctx context.Context, userID, programID string, patch domain.ProgramPatch) (*domain.WorkoutProgram, error)
	UpdateSettings(ctx context.Context, userID, programID string, settings domain.DisplaySettings) (*domain.WorkoutProgram, error)
	UpdateProgramPrice(ctx context.Context, userID, programID string, price float64, purchasable bool) (*domain.WorkoutProgram, error)
	SetVisibility(ctx context.Context, userID, programID string, public bool) (*domain.WorkoutProgram, error)
	DeleteProgram(ctx context.Context, userID, programID string) error
	PurchaseProgram(ctx context.Context, userID, programID string) (*domain.Purchase, error)
	HasUserPurchasedProgram(ctx context.Context, userID, programID string) (bool, error)
}

type programService struct {
	*Content
}

func NewProgramService(content *Content) ProgramService {
	return &programService{Content: content}
}

// CreateProgram stores the program with "Week 1", its first workout,
// exercise and set.
func (s *programService) CreateProgram(ctx context.Context, userID, name string) (*domain.WorkoutProgram, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("program name is required")
	}
	if userID == "" {
		return nil, ErrAccessDenied
	}

	var programID string
	err := s.runCascade(ctx, "program", func(ctx context.Context, cs *cascade) error {
		program := &domain.WorkoutProgram{
			Name:      name,
			CreatorID: userID,
			Settings:  domain.DefaultDisplaySettings(),
		}
		id, err := s.repos.Programs.Create(ctx, program)
		if err != nil {
			return fmt.Errorf("create program: %w", err)
		}
		cs.onFail(func(ctx context.Context) error { return s.repos.Programs.Delete(ctx, id) })
		programID = id

		_, _, err = s.createWeekChain(ctx, cs, domain.WorkoutWeek{ProgramID: id, Name: weekName(1)})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.loadProgram(ctx, programID)
}

// GetProgram returns the program tree to its owner, to anyone when public
// and to users who bought it.
func (s *programService) GetProgram(ctx context.Context, userID, programID string) (*domain.WorkoutProgram, error) {
	return s.readableProgram(ctx, userID, programID)
}

// ListPrograms returns the user's programs (headers only), newest first.
func (s *programService) ListPrograms(ctx context.Context, userID string) ([]domain.WorkoutProgram, error) {
	programs, err := s.repos.Programs.List(ctx, repository.ProgramFilter{CreatorID: userID})
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

func (s *programService) ListPublicPrograms(ctx context.Context) ([]domain.WorkoutProgram, error) {
	programs, err := s.repos.Programs.List(ctx, repository.ProgramFilter{PublicOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list public programs: %w", err)
	}
	return programs, nil
}

func (s *programService) UpdateProgram(ctx context.Context, userID, programID string, patch domain.ProgramPatch) (*domain.WorkoutProgram, error) {
	if err := validateStruct(s.validate, patch); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, validationError("program name cannot be empty")
		}
		patch.Name = &trimmed
	}

	unlock := s.lock(programID)
	defer unlock()
	if _, err := s.ownedProgram(ctx, userID, programID); err != nil {
		return nil, err
	}
	if !patch.IsEmpty() {
		if err := s.repos.Programs.Update(ctx, programID, patch); err != nil {
			return nil, notFound(err, ErrProgramNotFound, "update program")
		}
	}
	return s.loadProgram(ctx, programID)
}

func (s *programService) UpdateSettings(ctx context.Context, userID, programID string, settings domain.DisplaySettings) (*domain.WorkoutProgram, error) {
	settings = settings.Normalize()
	return s.UpdateProgram(ctx, userID, programID, domain.ProgramPatch{Settings: &settings})
}

func (s *programService) SetVisibility(ctx context.Context, userID, programID string, public bool) (*domain.WorkoutProgram, error) {
	return s.UpdateProgram(ctx, userID, programID, domain.ProgramPatch{IsPublic: &public})
}

// UpdateProgramPrice prices the program. The first time it is offered for
// sale it gets a public slug.
func (s *programService) UpdateProgramPrice(ctx context.Context, userID, programID string, price float64, purchasable bool) (*domain.WorkoutProgram, error) {
	if price < 0 {
		return nil, validationError("price cannot be negative")
	}

	unlock := s.lock(programID)
	defer unlock()
	program, err := s.ownedProgram(ctx, userID, programID)
	if err != nil {
		return nil, err
	}
	pricing := repository.Pricing{Price: price, IsPurchasable: purchasable}
	if purchasable && program.Slug == "" {
		pricing.Slug = newSlug(program.Name)
	}
	if err := s.repos.Programs.UpdatePricing(ctx, programID, pricing); err != nil {
		return nil, notFound(err, ErrProgramNotFound, "update program price")
	}
	return s.loadProgram(ctx, programID)
}

func (s *programService) DeleteProgram(ctx context.Context, userID, programID string) error {
	unlock := s.lock(programID)
	defer unlock()
	if _, err := s.ownedProgram(ctx, userID, programID); err != nil {
		return err
	}
	if err := s.deleteProgramTree(ctx, programID); err != nil {
		return notFound(err, ErrProgramNotFound, "delete program")
	}
	return nil
}

func (s *programService) PurchaseProgram(ctx context.Context, userID, programID string) (*domain.Purchase, error) {
	program, err := s.repos.Programs.GetByID(ctx, programID)
	if err != nil {
		return nil, notFound(err, ErrProgramNotFound, "get program")
	}
	if !program.IsPurchasable {
		return nil, ErrNotPurchasable
	}
	if program.CreatorID == userID {
		return nil, validationError("cannot purchase your own program")
	}
	return s.purchase(ctx, userID, domain.ContentProgram, programID, program.Price)
}

func (s *programService) HasUserPurchasedProgram(ctx context.Context, userID, programID string) (bool, error) {
	ok, err := s.repos.Purchases.Exists(ctx, userID, domain.ContentProgram, programID)
	if err != nil {
		return false, fmt.Errorf("check program purchase: %w", err)
	}
	return ok, nil
}

func weekName(n int) string {
	return fmt.Sprintf("Week %d", n)
}
