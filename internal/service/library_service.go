package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

// SaveWorkoutRequest saves either an existing workout (WorkoutID) or a bare
// workout that belongs to no program yet (Workout).
type SaveWorkoutRequest struct {
	WorkoutID string          `json:"workoutId"`
	Name      string          `json:"name"`
	Day       int             `json:"day"`
	Workout   *domain.Workout `json:"workout"`
}

type SaveWeekRequest struct {
	WeekID   string           `json:"weekId"`
	Name     string           `json:"name"`
	Workouts []domain.Workout `json:"workouts"`
}

type SaveProgramRequest struct {
	ProgramID string                 `json:"programId"`
	Name      string                 `json:"name"`
	Program   *domain.WorkoutProgram `json:"program"`
}

// SavedWeek is a library week with its workouts.
type SavedWeek struct {
	Week     domain.WorkoutWeek `json:"week"`
	Workouts []domain.Workout   `json:"workouts"`
}

// LibraryService keeps reusable workouts, weeks and programs. Loading from
// the library always copies, so edits never reach the saved template.
type LibraryService interface {
	SaveWorkout(ctx context.Context, userID string, req SaveWorkoutRequest) (*domain.Workout, error)
	SaveWeek(ctx context.Context, userID string, req SaveWeekRequest) (*SavedWeek, error)
	SaveProgram(ctx context.Context, userID string, req SaveProgramRequest) (*domain.WorkoutProgram, error)

	ListSavedWorkouts(ctx context.Context, userID string) ([]domain.Workout, error)
	ListSavedWeeks(ctx context.Context, userID string) ([]SavedWeek, error)
	ListSavedPrograms(ctx context.Context, userID string) ([]domain.WorkoutProgram, error)

	RemoveSavedWorkout(ctx context.Context, userID, workoutID string) error
	RemoveSavedWeek(ctx context.Context, userID, weekID string) error
	RemoveSavedProgram(ctx context.Context, userID, programID string) error
	UpdateSavedWorkout(ctx context.Context, userID, workoutID string, patch domain.WorkoutPatch) (*domain.Workout, error)

	LoadWorkout(ctx context.Context, userID, libraryWorkoutID, targetWeekID string, day int) (*domain.Workout, error)
	// LoadWorkoutIntoProgram loads into the program's first week, creating
	// one when the program has none.
	LoadWorkoutIntoProgram(ctx context.Context, userID, libraryWorkoutID, programID string, day int) (*domain.Workout, error)
	LoadWeek(ctx context.Context, userID, libraryWeekID, targetProgramID string) (*domain.WorkoutWeek, error)
	CopyProgram(ctx context.Context, userID, programID string) (*domain.WorkoutProgram, error)

	// ImportProgramTOML creates a program from a TOML definition.
	ImportProgramTOML(ctx context.Context, userID string, data []byte) (*domain.WorkoutProgram, error)
}

type libraryService struct {
	*Content
}

func NewLibraryService(content *Content) LibraryService {
	return &libraryService{Content: content}
}

const libraryWeekName = "Library"

func (s *libraryService) SaveWorkout(ctx context.Context, userID string, req SaveWorkoutRequest) (*domain.Workout, error) {
	name := strings.TrimSpace(req.Name)
	if req.WorkoutID != "" {
		unlock := s.lock(req.WorkoutID)
		defer unlock()
		if _, _, err := s.ownedWorkout(ctx, userID, req.WorkoutID); err != nil {
			return nil, err
		}
		saved := true
		patch := domain.WorkoutPatch{Saved: &saved}
		if name != "" {
			patch.Name = &name
		}
		if req.Day > 0 {
			patch.Day = &req.Day
		}
		if err := s.repos.Workouts.Update(ctx, req.WorkoutID, patch); err != nil {
			return nil, notFound(err, ErrWorkoutNotFound, "save workout")
		}
		return s.workoutView(ctx, req.WorkoutID)
	}

	if req.Workout == nil {
		return nil, validationError("workoutId or workout is required")
	}
	if name == "" {
		name = strings.TrimSpace(req.Workout.Name)
	}
	if name == "" {
		return nil, validationError("workout name is required")
	}
	day := req.Day
	if day <= 0 {
		day = max(req.Workout.Day, 1)
	}

	var workoutID string
	err := s.runCascade(ctx, "library_workout", func(ctx context.Context, cs *cascade) error {
		programID, weekID, err := s.createWrapper(ctx, cs, userID, name)
		if err != nil {
			return err
		}
		workoutID, err = s.cloneWorkout(ctx, cs, *req.Workout, domain.Workout{
			ProgramID: programID,
			WeekID:    weekID,
			Name:      name,
			Day:       day,
			Saved:     true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.workoutView(ctx, workoutID)
}

func (s *libraryService) SaveWeek(ctx context.Context, userID string, req SaveWeekRequest) (*SavedWeek, error) {
	name := strings.TrimSpace(req.Name)
	if req.WeekID != "" {
		unlock := s.lock(req.WeekID)
		defer unlock()
		if _, _, err := s.ownedWeek(ctx, userID, req.WeekID); err != nil {
			return nil, err
		}
		saved := true
		patch := domain.WeekPatch{Saved: &saved}
		if name != "" {
			patch.Name = &name
		}
		if err := s.repos.Weeks.Update(ctx, req.WeekID, patch); err != nil {
			return nil, notFound(err, ErrWeekNotFound, "save week")
		}
		return s.savedWeekView(ctx, req.WeekID)
	}

	if name == "" {
		return nil, validationError("week name is required")
	}
	var weekID string
	err := s.runCascade(ctx, "library_week", func(ctx context.Context, cs *cascade) error {
		program := &domain.WorkoutProgram{
			Name:           name,
			CreatorID:      userID,
			Settings:       domain.DefaultDisplaySettings(),
			LibraryWrapper: true,
		}
		programID, err := s.repos.Programs.Create(ctx, program)
		if err != nil {
			return fmt.Errorf("create library program: %w", err)
		}
		cs.onFail(func(ctx context.Context) error { return s.repos.Programs.Delete(ctx, programID) })

		weekID, err = s.cloneWeek(ctx, cs, req.Workouts, domain.WorkoutWeek{
			ProgramID: programID,
			Name:      name,
			Saved:     true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.savedWeekView(ctx, weekID)
}

func (s *libraryService) SaveProgram(ctx context.Context, userID string, req SaveProgramRequest) (*domain.WorkoutProgram, error) {
	name := strings.TrimSpace(req.Name)
	if req.ProgramID != "" {
		unlock := s.lock(req.ProgramID)
		defer unlock()
		if _, err := s.ownedProgram(ctx, userID, req.ProgramID); err != nil {
			return nil, err
		}
		saved := true
		patch := domain.ProgramPatch{Saved: &saved}
		if name != "" {
			patch.Name = &name
		}
		if err := s.repos.Programs.Update(ctx, req.ProgramID, patch); err != nil {
			return nil, notFound(err, ErrProgramNotFound, "save program")
		}
		return s.loadProgram(ctx, req.ProgramID)
	}

	if req.Program == nil {
		return nil, validationError("programId or program is required")
	}
	if name == "" {
		name = strings.TrimSpace(req.Program.Name)
	}
	if name == "" {
		return nil, validationError("program name is required")
	}
	return s.createProgramFrom(ctx, "library_program", req.Program, domain.WorkoutProgram{
		Name:      name,
		CreatorID: userID,
		Settings:  req.Program.Settings,
		Saved:     true,
	})
}

func (s *libraryService) ListSavedWorkouts(ctx context.Context, userID string) ([]domain.Workout, error) {
	programs, err := s.repos.Programs.List(ctx, repository.ProgramFilter{CreatorID: userID, IncludeWrappers: true})
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	out := []domain.Workout{}
	for _, p := range programs {
		workouts, err := s.repos.Workouts.ListByProgram(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("list workouts: %w", err)
		}
		for i := range workouts {
			if !workouts[i].Saved {
				continue
			}
			full, err := s.loadWorkout(ctx, &workouts[i])
			if err != nil {
				return nil, err
			}
			out = append(out, *full)
		}
	}
	return out, nil
}

func (s *libraryService) ListSavedWeeks(ctx context.Context, userID string) ([]SavedWeek, error) {
	programs, err := s.repos.Programs.List(ctx, repository.ProgramFilter{CreatorID: userID, IncludeWrappers: true})
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	out := []SavedWeek{}
	for _, p := range programs {
		weeks, err := s.repos.Weeks.ListByProgram(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("list weeks: %w", err)
		}
		for _, week := range weeks {
			if !week.Saved {
				continue
			}
			view, err := s.savedWeekView(ctx, week.ID)
			if err != nil {
				return nil, err
			}
			out = append(out, *view)
		}
	}
	return out, nil
}

func (s *libraryService) ListSavedPrograms(ctx context.Context, userID string) ([]domain.WorkoutProgram, error) {
	programs, err := s.repos.Programs.List(ctx, repository.ProgramFilter{CreatorID: userID, SavedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list saved programs: %w", err)
	}
	return programs, nil
}

// RemoveSavedWorkout takes the workout out of the library. A workout that
// only lived in the library is deleted with its wrapper program.
func (s *libraryService) RemoveSavedWorkout(ctx context.Context, userID, workoutID string) error {
	unlock := s.lock(workoutID)
	defer unlock()

	w, program, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return err
	}
	if !w.Saved {
		return ErrNotSaved
	}
	if program.LibraryWrapper {
		return s.deleteProgramTree(ctx, program.ID)
	}
	saved := false
	if err := s.repos.Workouts.Update(ctx, workoutID, domain.WorkoutPatch{Saved: &saved}); err != nil {
		return notFound(err, ErrWorkoutNotFound, "unsave workout")
	}
	return nil
}

func (s *libraryService) RemoveSavedWeek(ctx context.Context, userID, weekID string) error {
	unlock := s.lock(weekID)
	defer unlock()

	week, program, err := s.ownedWeek(ctx, userID, weekID)
	if err != nil {
		return err
	}
	if !week.Saved {
		return ErrNotSaved
	}
	if program.LibraryWrapper {
		return s.deleteProgramTree(ctx, program.ID)
	}
	saved := false
	if err := s.repos.Weeks.Update(ctx, weekID, domain.WeekPatch{Saved: &saved}); err != nil {
		return notFound(err, ErrWeekNotFound, "unsave week")
	}
	return nil
}

func (s *libraryService) RemoveSavedProgram(ctx context.Context, userID, programID string) error {
	unlock := s.lock(programID)
	defer unlock()

	program, err := s.ownedProgram(ctx, userID, programID)
	if err != nil {
		return err
	}
	if !program.Saved {
		return ErrNotSaved
	}
	saved := false
	if err := s.repos.Programs.Update(ctx, programID, domain.ProgramPatch{Saved: &saved}); err != nil {
		return notFound(err, ErrProgramNotFound, "unsave program")
	}
	return nil
}

func (s *libraryService) UpdateSavedWorkout(ctx context.Context, userID, workoutID string, patch domain.WorkoutPatch) (*domain.Workout, error) {
	if err := validateStruct(s.validate, patch); err != nil {
		return nil, err
	}
	if patch.WeekID != nil {
		return nil, validationError("library workouts cannot change week")
	}
	unlock := s.lock(workoutID)
	defer unlock()

	w, _, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if !w.Saved {
		return nil, ErrNotSaved
	}
	if !patch.IsEmpty() {
		if err := s.repos.Workouts.Update(ctx, workoutID, patch); err != nil {
			return nil, notFound(err, ErrWorkoutNotFound, "update saved workout")
		}
	}
	return s.workoutView(ctx, workoutID)
}

// LoadWorkout copies a library workout into the target week. day <= 0
// keeps the library workout's day.
func (s *libraryService) LoadWorkout(ctx context.Context, userID, libraryWorkoutID, targetWeekID string, day int) (*domain.Workout, error) {
	src, err := s.readableWorkout(ctx, userID, libraryWorkoutID)
	if err != nil {
		return nil, err
	}
	week, _, err := s.ownedWeek(ctx, userID, targetWeekID)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(week.ProgramID, targetWeekID)
	defer unlock()

	return s.loadWorkoutInto(ctx, src, week.ProgramID, targetWeekID, day)
}

func (s *libraryService) LoadWorkoutIntoProgram(ctx context.Context, userID, libraryWorkoutID, programID string, day int) (*domain.Workout, error) {
	src, err := s.readableWorkout(ctx, userID, libraryWorkoutID)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(programID)
	defer unlock()

	if _, err := s.ownedProgram(ctx, userID, programID); err != nil {
		return nil, err
	}
	return s.loadWorkoutInto(ctx, src, programID, "", day)
}

// loadWorkoutInto runs under the program lock.
func (s *libraryService) loadWorkoutInto(ctx context.Context, src *domain.Workout, programID, weekID string, day int) (*domain.Workout, error) {
	if day <= 0 {
		day = src.Day
	}

	var workoutID string
	err := s.runCascade(ctx, "load_workout", func(ctx context.Context, cs *cascade) error {
		week, err := s.placementWeek(ctx, cs, programID, weekID)
		if err != nil {
			return err
		}
		all, err := s.repos.Workouts.ListByProgram(ctx, programID)
		if err != nil {
			return fmt.Errorf("list workouts: %w", err)
		}
		var siblings []domain.Workout
		for _, w := range all {
			if w.WeekID == week.ID {
				siblings = append(siblings, w)
			}
		}
		workoutID, err = s.cloneWorkout(ctx, cs, *src, domain.Workout{
			ProgramID:  programID,
			WeekID:     week.ID,
			Name:       src.Name,
			Day:        day,
			OrderIndex: nextOrder(siblings, func(w domain.Workout) int { return w.OrderIndex }),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.workoutView(ctx, workoutID)
}

// LoadWeek copies a library week with its workouts to the end of the
// target program.
func (s *libraryService) LoadWeek(ctx context.Context, userID, libraryWeekID, targetProgramID string) (*domain.WorkoutWeek, error) {
	srcWeek, err := s.repos.Weeks.GetByID(ctx, libraryWeekID)
	if err != nil {
		return nil, notFound(err, ErrWeekNotFound, "get week")
	}
	srcProgram, err := s.readableProgram(ctx, userID, srcWeek.ProgramID)
	if err != nil {
		return nil, err
	}

	unlock := s.lock(targetProgramID)
	defer unlock()
	if _, err := s.ownedProgram(ctx, userID, targetProgramID); err != nil {
		return nil, err
	}
	weeks, err := s.repos.Weeks.ListByProgram(ctx, targetProgramID)
	if err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}

	var weekID string
	err = s.runCascade(ctx, "load_week", func(ctx context.Context, cs *cascade) error {
		var err error
		weekID, err = s.cloneWeek(ctx, cs, srcProgram.WorkoutsOfWeek(libraryWeekID), domain.WorkoutWeek{
			ProgramID:  targetProgramID,
			Name:       srcWeek.Name,
			OrderIndex: nextOrder(weeks, func(w domain.WorkoutWeek) int { return w.OrderIndex }),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	week, err := s.repos.Weeks.GetByID(ctx, weekID)
	if err != nil {
		return nil, notFound(err, ErrWeekNotFound, "get week")
	}
	return week, nil
}

// CopyProgram deep-copies a readable program into a new program owned by
// the user.
func (s *libraryService) CopyProgram(ctx context.Context, userID, programID string) (*domain.WorkoutProgram, error) {
	src, err := s.readableProgram(ctx, userID, programID)
	if err != nil {
		return nil, err
	}
	return s.createProgramFrom(ctx, "copy_program", src, domain.WorkoutProgram{
		Name:      src.Name + " (Copy)",
		CreatorID: userID,
		Settings:  src.Settings,
	})
}

func (s *libraryService) ImportProgramTOML(ctx context.Context, userID string, data []byte) (*domain.WorkoutProgram, error) {
	if userID == "" {
		return nil, ErrAccessDenied
	}
	tree, err := ParseProgramTOML(data)
	if err != nil {
		return nil, err
	}
	return s.createProgramFrom(ctx, "import_program", tree, domain.WorkoutProgram{
		Name:      tree.Name,
		CreatorID: userID,
		Settings:  tree.Settings,
	})
}

func (s *libraryService) createProgramFrom(ctx context.Context, cascadeName string, src *domain.WorkoutProgram, target domain.WorkoutProgram) (*domain.WorkoutProgram, error) {
	var programID string
	err := s.runCascade(ctx, cascadeName, func(ctx context.Context, cs *cascade) error {
		var err error
		programID, err = s.cloneProgram(ctx, cs, src, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.loadProgram(ctx, programID)
}

// createWrapper stores the hidden program and week that host a bare
// library workout.
func (c *Content) createWrapper(ctx context.Context, cs *cascade, userID, name string) (string, string, error) {
	program := &domain.WorkoutProgram{
		Name:           name,
		CreatorID:      userID,
		Settings:       domain.DefaultDisplaySettings(),
		LibraryWrapper: true,
	}
	programID, err := c.repos.Programs.Create(ctx, program)
	if err != nil {
		return "", "", fmt.Errorf("create library program: %w", err)
	}
	cs.onFail(func(ctx context.Context) error { return c.repos.Programs.Delete(ctx, programID) })

	week := &domain.WorkoutWeek{ProgramID: programID, Name: libraryWeekName}
	weekID, err := c.repos.Weeks.Create(ctx, week)
	if err != nil {
		return "", "", fmt.Errorf("create library week: %w", err)
	}
	cs.track(c.repos.Weeks.DeleteMany, weekID)
	return programID, weekID, nil
}

func (c *Content) workoutView(ctx context.Context, workoutID string) (*domain.Workout, error) {
	w, err := c.repos.Workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, notFound(err, ErrWorkoutNotFound, "get workout")
	}
	return c.loadWorkout(ctx, w)
}

func (c *Content) savedWeekView(ctx context.Context, weekID string) (*SavedWeek, error) {
	week, err := c.repos.Weeks.GetByID(ctx, weekID)
	if err != nil {
		return nil, notFound(err, ErrWeekNotFound, "get week")
	}
	program, err := c.loadProgram(ctx, week.ProgramID)
	if err != nil {
		return nil, err
	}
	view := SavedWeek{Week: *week, Workouts: program.WorkoutsOfWeek(weekID)}
	if w, ok := program.Week(weekID); ok {
		view.Week = *w
	}
	if view.Workouts == nil {
		view.Workouts = []domain.Workout{}
	}
	return &view, nil
}

func (c *Content) readableWorkout(ctx context.Context, userID, workoutID string) (*domain.Workout, error) {
	w, err := c.repos.Workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, notFound(err, ErrWorkoutNotFound, "get workout")
	}
	ok, err := c.canReadWorkout(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccessDenied
	}
	return c.loadWorkout(ctx, w)
}

func (c *Content) readableProgram(ctx context.Context, userID, programID string) (*domain.WorkoutProgram, error) {
	program, err := c.repos.Programs.GetByID(ctx, programID)
	if err != nil {
		return nil, notFound(err, ErrProgramNotFound, "get program")
	}
	ok, err := c.canReadProgram(ctx, userID, program)
	if err != nil {
		return nil, fmt.Errorf("check program access: %w", err)
	}
	if !ok {
		return nil, ErrAccessDenied
	}
	return c.loadProgram(ctx, programID)
}
