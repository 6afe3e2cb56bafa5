package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/coocood/freecache"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/keylock"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/mapper"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/metrics"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

// Repos bundles the repositories behind the training content services.
type Repos struct {
	Tx        repository.Transactor
	Programs  repository.ProgramRepository
	Weeks     repository.WeekRepository
	Workouts  repository.WorkoutRepository
	Exercises repository.ExerciseRepository
	Sets      repository.SetRepository
	Circuits  repository.CircuitRepository
	Purchases repository.PurchaseRepository
}

// Content is the state shared by the program, week, workout, exercise, set,
// circuit and library services.
type Content struct {
	repos    Repos
	locks    *keylock.Locker
	metrics  *metrics.Manager
	validate *validator.Validate

	// published workouts by slug
	slugCache *freecache.Cache
	slugTTL   time.Duration
}

type ContentParams struct {
	Repos          Repos
	Locks          *keylock.Locker
	Metrics        *metrics.Manager
	SlugCacheBytes int
	SlugTTL        time.Duration
}

const defaultSlugCacheBytes = 1024 * 1024

func NewContent(params ContentParams) *Content {
	if params.Locks == nil {
		params.Locks = keylock.New()
	}
	if params.Metrics == nil {
		params.Metrics = metrics.NewTestManager()
	}
	if params.SlugCacheBytes <= 0 {
		params.SlugCacheBytes = defaultSlugCacheBytes
	}
	if params.SlugTTL <= 0 {
		params.SlugTTL = 5 * time.Minute
	}
	return &Content{
		repos:     params.Repos,
		locks:     params.Locks,
		metrics:   params.Metrics,
		validate:  validator.New(),
		slugCache: freecache.NewCache(params.SlugCacheBytes),
		slugTTL:   params.SlugTTL,
	}
}

// --- cascades ---

// cascade records compensating deletes for every row a multi-step write
// has created so far.
type cascade struct {
	undo []func(ctx context.Context) error
}

func (cs *cascade) track(del func(ctx context.Context, ids []string) error, id string) {
	cs.undo = append(cs.undo, func(ctx context.Context) error {
		return del(ctx, []string{id})
	})
}

func (cs *cascade) onFail(fn func(ctx context.Context) error) {
	cs.undo = append(cs.undo, fn)
}

// compensate runs the recorded deletes newest first.
func (cs *cascade) compensate(ctx context.Context) error {
	var err error
	for i := len(cs.undo) - 1; i >= 0; i-- {
		err = multierr.Append(err, cs.undo[i](ctx))
	}
	return err
}

// runCascade runs fn inside a transaction. When fn fails, the rows it
// created are deleted again so that backends without transactions are
// left without partial chains.
func (c *Content) runCascade(ctx context.Context, name string, fn func(ctx context.Context, cs *cascade) error) error {
	cs := &cascade{}
	err := c.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		return fn(ctx, cs)
	})
	if err == nil || len(cs.undo) == 0 {
		return err
	}

	result := "ok"
	cerr := cs.compensate(context.WithoutCancel(ctx))
	if cerr != nil {
		result = "failed"
		log.WithError(cerr).WithField("cascade", name).Error("cascade compensation incomplete")
		err = multierr.Append(err, fmt.Errorf("compensate %s: %w", name, cerr))
	} else {
		log.WithError(err).WithField("cascade", name).Warn("cascade failed, partial rows removed")
	}
	c.metrics.CounterCompensations.WithLabelValues(name, result).Inc()
	return err
}

// --- creation helpers, used inside cascades ---

func (c *Content) createSet(ctx context.Context, cs *cascade, exerciseID string, order int, fields domain.SetFields) (*domain.Set, error) {
	set := &domain.Set{
		ExerciseID:    exerciseID,
		OrderIndex:    order,
		Reps:          fields.Reps,
		Weight:        fields.Weight,
		Intensity:     fields.Intensity,
		IntensityType: fields.IntensityType,
		WeightType:    fields.WeightType,
		Rest:          fields.Rest,
	}
	id, err := c.repos.Sets.Create(ctx, set)
	if err != nil {
		return nil, fmt.Errorf("create set: %w", err)
	}
	cs.track(c.repos.Sets.DeleteMany, id)
	return set, nil
}

// createExercise stores the exercise and its sets. An exercise without sets
// gets one blank set.
func (c *Content) createExercise(ctx context.Context, cs *cascade, ex domain.Exercise, sets []domain.SetFields) (*domain.Exercise, error) {
	if len(sets) == 0 && !ex.IsCircuit {
		sets = []domain.SetFields{{}}
	}
	ex.ID = ""
	ex.Sets = nil
	id, err := c.repos.Exercises.Create(ctx, &ex)
	if err != nil {
		return nil, fmt.Errorf("create exercise: %w", err)
	}
	cs.track(c.repos.Exercises.DeleteMany, id)

	ex.Sets = make([]domain.Set, 0, len(sets))
	for i, fields := range sets {
		set, err := c.createSet(ctx, cs, id, i, fields)
		if err != nil {
			return nil, err
		}
		ex.Sets = append(ex.Sets, *set)
	}
	return &ex, nil
}

const (
	defaultExerciseName = "New Exercise"
	firstWorkoutName    = "Day 1"
)

// createWorkoutChain stores a workout with its first exercise and set.
func (c *Content) createWorkoutChain(ctx context.Context, cs *cascade, w domain.Workout) (*domain.Workout, error) {
	w.ID = ""
	w.Exercises, w.Circuits = nil, nil
	id, err := c.repos.Workouts.Create(ctx, &w)
	if err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}
	cs.track(c.repos.Workouts.DeleteMany, id)

	ex, err := c.createExercise(ctx, cs, domain.Exercise{WorkoutID: id, Name: defaultExerciseName}, nil)
	if err != nil {
		return nil, err
	}
	w.Exercises = []domain.Exercise{*ex}
	w.Circuits = []domain.Circuit{}
	return &w, nil
}

// createWeek stores a week without workouts.
func (c *Content) createWeek(ctx context.Context, cs *cascade, week domain.WorkoutWeek) (*domain.WorkoutWeek, error) {
	week.ID = ""
	week.Workouts = nil
	id, err := c.repos.Weeks.Create(ctx, &week)
	if err != nil {
		return nil, fmt.Errorf("create week: %w", err)
	}
	cs.track(c.repos.Weeks.DeleteMany, id)
	week.ID = id
	week.Workouts = []string{}
	return &week, nil
}

// createWeekChain stores a week with its first workout, exercise and set.
func (c *Content) createWeekChain(ctx context.Context, cs *cascade, week domain.WorkoutWeek) (*domain.WorkoutWeek, *domain.Workout, error) {
	created, err := c.createWeek(ctx, cs, week)
	if err != nil {
		return nil, nil, err
	}

	w, err := c.createWorkoutChain(ctx, cs, domain.Workout{
		ProgramID: created.ProgramID,
		WeekID:    created.ID,
		Name:      firstWorkoutName,
		Day:       1,
		Saved:     created.Saved,
	})
	if err != nil {
		return nil, nil, err
	}
	created.Workouts = []string{w.ID}
	return created, w, nil
}

// placementWeek returns the week a new workout goes to. An empty weekID
// picks the program's first week, and a program without weeks gets a
// fresh "Week 1". Callers hold the program lock.
func (c *Content) placementWeek(ctx context.Context, cs *cascade, programID, weekID string) (*domain.WorkoutWeek, error) {
	if weekID != "" {
		week, err := c.repos.Weeks.GetByID(ctx, weekID)
		if err != nil {
			return nil, notFound(err, ErrWeekNotFound, "get week")
		}
		if week.ProgramID != programID {
			return nil, validationError("week belongs to another program")
		}
		return week, nil
	}
	weeks, err := c.repos.Weeks.ListByProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}
	if len(weeks) > 0 {
		return &weeks[0], nil
	}
	return c.createWeek(ctx, cs, domain.WorkoutWeek{ProgramID: programID, Name: weekName(1)})
}

// --- deletion helpers ---

// deleteWorkouts removes workouts with everything below them.
func (c *Content) deleteWorkouts(ctx context.Context, workoutIDs []string) error {
	if len(workoutIDs) == 0 {
		return nil
	}
	exercises, err := c.repos.Exercises.ListByWorkouts(ctx, workoutIDs)
	if err != nil {
		return fmt.Errorf("list exercises: %w", err)
	}
	circuits, err := c.repos.Circuits.ListByWorkouts(ctx, workoutIDs)
	if err != nil {
		return fmt.Errorf("list circuits: %w", err)
	}
	if err := c.deleteExercises(ctx, ids(exercises, func(e domain.Exercise) string { return e.ID })); err != nil {
		return err
	}
	circuitIDs := ids(circuits, func(ci domain.Circuit) string { return ci.ID })
	if len(circuitIDs) > 0 {
		if err := c.repos.Circuits.RemoveCircuitMembers(ctx, circuitIDs); err != nil {
			return fmt.Errorf("remove circuit members: %w", err)
		}
		if err := c.repos.Circuits.DeleteMany(ctx, circuitIDs); err != nil {
			return fmt.Errorf("delete circuits: %w", err)
		}
	}
	if err := c.repos.Workouts.DeleteMany(ctx, workoutIDs); err != nil {
		return fmt.Errorf("delete workouts: %w", err)
	}
	return nil
}

// deleteExercises removes exercises with their sets and membership rows.
func (c *Content) deleteExercises(ctx context.Context, exerciseIDs []string) error {
	if len(exerciseIDs) == 0 {
		return nil
	}
	sets, err := c.repos.Sets.ListByExercises(ctx, exerciseIDs)
	if err != nil {
		return fmt.Errorf("list sets: %w", err)
	}
	if len(sets) > 0 {
		if err := c.repos.Sets.DeleteMany(ctx, ids(sets, func(s domain.Set) string { return s.ID })); err != nil {
			return fmt.Errorf("delete sets: %w", err)
		}
	}
	if err := c.repos.Circuits.RemoveMembers(ctx, exerciseIDs); err != nil {
		return fmt.Errorf("remove memberships: %w", err)
	}
	if err := c.repos.Exercises.DeleteMany(ctx, exerciseIDs); err != nil {
		return fmt.Errorf("delete exercises: %w", err)
	}
	return nil
}

// deleteProgramTree removes the program and everything below it.
func (c *Content) deleteProgramTree(ctx context.Context, programID string) error {
	return c.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		workouts, err := c.repos.Workouts.ListByProgram(ctx, programID)
		if err != nil {
			return fmt.Errorf("list workouts: %w", err)
		}
		weeks, err := c.repos.Weeks.ListByProgram(ctx, programID)
		if err != nil {
			return fmt.Errorf("list weeks: %w", err)
		}
		if err := c.deleteWorkouts(ctx, ids(workouts, func(w domain.Workout) string { return w.ID })); err != nil {
			return err
		}
		if len(weeks) > 0 {
			if err := c.repos.Weeks.DeleteMany(ctx, ids(weeks, func(w domain.WorkoutWeek) string { return w.ID })); err != nil {
				return fmt.Errorf("delete weeks: %w", err)
			}
		}
		return c.repos.Programs.Delete(ctx, programID)
	})
}

// --- loading ---

// loadProgram reads the program with its full tree.
func (c *Content) loadProgram(ctx context.Context, programID string) (*domain.WorkoutProgram, error) {
	program, err := c.repos.Programs.GetByID(ctx, programID)
	if err != nil {
		return nil, notFound(err, ErrProgramNotFound, "get program")
	}
	weeks, err := c.repos.Weeks.ListByProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}
	workouts, err := c.repos.Workouts.ListByProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	parts, err := c.loadWorkoutParts(ctx, workouts)
	if err != nil {
		return nil, err
	}
	parts.Program, parts.Weeks = *program, weeks
	tree := mapper.AssembleProgram(parts)
	return &tree, nil
}

// loadWorkout attaches exercises, sets and circuits to w.
func (c *Content) loadWorkout(ctx context.Context, w *domain.Workout) (*domain.Workout, error) {
	parts, err := c.loadWorkoutParts(ctx, []domain.Workout{*w})
	if err != nil {
		return nil, err
	}
	full := mapper.AssembleWorkout(*w, parts.Exercises, parts.Sets, parts.Circuits, parts.Memberships)
	return &full, nil
}

func (c *Content) loadWorkoutParts(ctx context.Context, workouts []domain.Workout) (mapper.ProgramParts, error) {
	parts := mapper.ProgramParts{Workouts: workouts}
	if len(workouts) == 0 {
		return parts, nil
	}
	workoutIDs := ids(workouts, func(w domain.Workout) string { return w.ID })

	var err error
	if parts.Exercises, err = c.repos.Exercises.ListByWorkouts(ctx, workoutIDs); err != nil {
		return parts, fmt.Errorf("list exercises: %w", err)
	}
	exerciseIDs := ids(parts.Exercises, func(e domain.Exercise) string { return e.ID })
	if len(exerciseIDs) > 0 {
		if parts.Sets, err = c.repos.Sets.ListByExercises(ctx, exerciseIDs); err != nil {
			return parts, fmt.Errorf("list sets: %w", err)
		}
	}
	if parts.Circuits, err = c.repos.Circuits.ListByWorkouts(ctx, workoutIDs); err != nil {
		return parts, fmt.Errorf("list circuits: %w", err)
	}
	circuitIDs := ids(parts.Circuits, func(ci domain.Circuit) string { return ci.ID })
	if len(circuitIDs) > 0 {
		if parts.Memberships, err = c.repos.Circuits.ListMembers(ctx, circuitIDs); err != nil {
			return parts, fmt.Errorf("list circuit members: %w", err)
		}
	}
	return parts, nil
}

// --- ownership ---

func (c *Content) ownedProgram(ctx context.Context, userID, programID string) (*domain.WorkoutProgram, error) {
	program, err := c.repos.Programs.GetByID(ctx, programID)
	if err != nil {
		return nil, notFound(err, ErrProgramNotFound, "get program")
	}
	if program.CreatorID != userID {
		return nil, ErrAccessDenied
	}
	return program, nil
}

func (c *Content) ownedWeek(ctx context.Context, userID, weekID string) (*domain.WorkoutWeek, *domain.WorkoutProgram, error) {
	week, err := c.repos.Weeks.GetByID(ctx, weekID)
	if err != nil {
		return nil, nil, notFound(err, ErrWeekNotFound, "get week")
	}
	program, err := c.ownedProgram(ctx, userID, week.ProgramID)
	if err != nil {
		return nil, nil, err
	}
	return week, program, nil
}

func (c *Content) ownedWorkout(ctx context.Context, userID, workoutID string) (*domain.Workout, *domain.WorkoutProgram, error) {
	w, err := c.repos.Workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, nil, notFound(err, ErrWorkoutNotFound, "get workout")
	}
	program, err := c.ownedProgram(ctx, userID, w.ProgramID)
	if err != nil {
		return nil, nil, err
	}
	return w, program, nil
}

func (c *Content) ownedExercise(ctx context.Context, userID, exerciseID string) (*domain.Exercise, *domain.Workout, error) {
	ex, err := c.repos.Exercises.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, nil, notFound(err, ErrExerciseNotFound, "get exercise")
	}
	w, _, err := c.ownedWorkout(ctx, userID, ex.WorkoutID)
	if err != nil {
		return nil, nil, err
	}
	return ex, w, nil
}

func (c *Content) ownedCircuit(ctx context.Context, userID, circuitID string) (*domain.Circuit, *domain.Workout, error) {
	circuit, err := c.repos.Circuits.GetByID(ctx, circuitID)
	if err != nil {
		return nil, nil, notFound(err, ErrCircuitNotFound, "get circuit")
	}
	w, _, err := c.ownedWorkout(ctx, userID, circuit.WorkoutID)
	if err != nil {
		return nil, nil, err
	}
	return circuit, w, nil
}

// canReadProgram reports whether the user owns, bought or may browse the program.
func (c *Content) canReadProgram(ctx context.Context, userID string, program *domain.WorkoutProgram) (bool, error) {
	if program.CreatorID == userID || program.IsPublic {
		return true, nil
	}
	if userID == "" {
		return false, nil
	}
	return c.repos.Purchases.Exists(ctx, userID, domain.ContentProgram, program.ID)
}

func (c *Content) canReadWorkout(ctx context.Context, userID string, w *domain.Workout) (bool, error) {
	program, err := c.repos.Programs.GetByID(ctx, w.ProgramID)
	if err != nil {
		return false, notFound(err, ErrWorkoutNotFound, "get program")
	}
	ok, err := c.canReadProgram(ctx, userID, program)
	if err != nil || ok || userID == "" {
		return ok, err
	}
	return c.repos.Purchases.Exists(ctx, userID, domain.ContentWorkout, w.ID)
}

// lock serializes writers of the given ids.
func (c *Content) lock(keys ...string) func() {
	return c.locks.LockMany(keys...)
}

// purchase records a purchase of priced content.
func (c *Content) purchase(ctx context.Context, userID string, contentType domain.ContentType, contentID string, price float64) (*domain.Purchase, error) {
	p := &domain.Purchase{
		UserID:      userID,
		ContentType: contentType,
		ContentID:   contentID,
		AmountPaid:  price,
	}
	if _, err := c.repos.Purchases.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyPurchased
		}
		return nil, fmt.Errorf("create purchase: %w", err)
	}
	return p, nil
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func nextOrder[T any](items []T, order func(T) int) int {
	if len(items) == 0 {
		return 0
	}
	return order(slices.MaxFunc(items, func(a, b T) int { return order(a) - order(b) })) + 1
}
