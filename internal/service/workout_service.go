package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

type WorkoutService interface {
	// AddWorkout schedules a workout in the week with its first exercise and
	// set. day <= 0 picks the next free day.
	AddWorkout(ctx context.Context, userID, weekID, name string, day int) (*domain.Workout, error)
	// AddWorkoutToProgram adds the workout to the program's first week,
	// creating "Week 1" when the program has no weeks left.
	AddWorkoutToProgram(ctx context.Context, userID, programID, name string, day int) (*domain.Workout, error)
	GetWorkout(ctx context.Context, userID, workoutID string) (*domain.Workout, error)
	UpdateWorkout(ctx context.Context, userID, workoutID string, patch domain.WorkoutPatch) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, userID, workoutID string) error
	UpdateWorkoutPrice(ctx context.Context, userID, workoutID string, price float64, purchasable bool) (*domain.Workout, error)
	PurchaseWorkout(ctx context.Context, userID, workoutID string) (*domain.Purchase, error)
	HasUserPurchasedWorkout(ctx context.Context, userID, workoutID string) (bool, error)
	// GetPublishedWorkout returns a workout offered for sale, by slug.
	GetPublishedWorkout(ctx context.Context, slug string) (*domain.Workout, error)
}

type workoutService struct {
	*Content
}

func NewWorkoutService(content *Content) WorkoutService {
	return &workoutService{Content: content}
}

func (s *workoutService) AddWorkout(ctx context.Context, userID, weekID, name string, day int) (*domain.Workout, error) {
	week, _, err := s.ownedWeek(ctx, userID, weekID)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(week.ProgramID, weekID)
	defer unlock()

	return s.addWorkout(ctx, week.ProgramID, weekID, name, day)
}

func (s *workoutService) AddWorkoutToProgram(ctx context.Context, userID, programID, name string, day int) (*domain.Workout, error) {
	unlock := s.lock(programID)
	defer unlock()

	if _, err := s.ownedProgram(ctx, userID, programID); err != nil {
		return nil, err
	}
	return s.addWorkout(ctx, programID, "", name, day)
}

// addWorkout runs under the program lock. The week is resolved again
// inside the cascade so a concurrent DeleteWeek cannot leave the workout
// pointing at a removed week.
func (s *workoutService) addWorkout(ctx context.Context, programID, weekID, name string, day int) (*domain.Workout, error) {
	var workout *domain.Workout
	err := s.runCascade(ctx, "workout", func(ctx context.Context, cs *cascade) error {
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
		if day <= 0 {
			day = nextOrder(siblings, func(w domain.Workout) int { return w.Day })
			if day == 0 {
				day = 1
			}
		}
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Day %d", day)
		}

		created, err := s.createWorkoutChain(ctx, cs, domain.Workout{
			ProgramID:  programID,
			WeekID:     week.ID,
			Name:       name,
			Day:        day,
			OrderIndex: nextOrder(siblings, func(w domain.Workout) int { return w.OrderIndex }),
		})
		workout = created
		return err
	})
	if err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *workoutService) GetWorkout(ctx context.Context, userID, workoutID string) (*domain.Workout, error) {
	return s.readableWorkout(ctx, userID, workoutID)
}

// UpdateWorkout patches the workout. Moving it to another week is only
// allowed within the same program, and takes the program lock that
// DeleteWeek holds.
func (s *workoutService) UpdateWorkout(ctx context.Context, userID, workoutID string, patch domain.WorkoutPatch) (*domain.Workout, error) {
	if err := validateStruct(s.validate, patch); err != nil {
		return nil, err
	}
	w, _, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	keys := []string{workoutID}
	if patch.WeekID != nil {
		keys = append(keys, w.ProgramID, *patch.WeekID)
	}
	unlock := s.lock(keys...)
	defer unlock()

	// re-read under the lock, the workout may have gone with its week
	w, err = s.repos.Workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, notFound(err, ErrWorkoutNotFound, "get workout")
	}
	if patch.WeekID != nil && *patch.WeekID != w.WeekID {
		target, err := s.repos.Weeks.GetByID(ctx, *patch.WeekID)
		if err != nil {
			return nil, notFound(err, ErrWeekNotFound, "get target week")
		}
		if target.ProgramID != w.ProgramID {
			return nil, validationError("workout can only move within its program")
		}
	}
	if !patch.IsEmpty() {
		if err := s.repos.Workouts.Update(ctx, workoutID, patch); err != nil {
			return nil, notFound(err, ErrWorkoutNotFound, "update workout")
		}
		s.invalidateSlug(w.Slug)
	}
	updated, err := s.repos.Workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, notFound(err, ErrWorkoutNotFound, "get workout")
	}
	return s.loadWorkout(ctx, updated)
}

func (s *workoutService) DeleteWorkout(ctx context.Context, userID, workoutID string) error {
	unlock := s.lock(workoutID)
	defer unlock()

	w, _, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return err
	}
	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.deleteWorkouts(ctx, []string{workoutID})
	})
	if err != nil {
		return err
	}
	s.invalidateSlug(w.Slug)
	return nil
}

// UpdateWorkoutPrice prices the workout. The first time it is offered for
// sale it gets a public slug.
func (s *workoutService) UpdateWorkoutPrice(ctx context.Context, userID, workoutID string, price float64, purchasable bool) (*domain.Workout, error) {
	if price < 0 {
		return nil, validationError("price cannot be negative")
	}
	unlock := s.lock(workoutID)
	defer unlock()

	w, _, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	pricing := repository.Pricing{Price: price, IsPurchasable: purchasable}
	if purchasable && w.Slug == "" {
		pricing.Slug = newSlug(w.Name)
	}
	if err := s.repos.Workouts.UpdatePricing(ctx, workoutID, pricing); err != nil {
		return nil, notFound(err, ErrWorkoutNotFound, "update workout price")
	}
	s.invalidateSlug(w.Slug)

	updated, err := s.repos.Workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, notFound(err, ErrWorkoutNotFound, "get workout")
	}
	return s.loadWorkout(ctx, updated)
}

func (s *workoutService) PurchaseWorkout(ctx context.Context, userID, workoutID string) (*domain.Purchase, error) {
	w, err := s.repos.Workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, notFound(err, ErrWorkoutNotFound, "get workout")
	}
	if !w.IsPurchasable {
		return nil, ErrNotPurchasable
	}
	program, err := s.repos.Programs.GetByID(ctx, w.ProgramID)
	if err != nil {
		return nil, notFound(err, ErrWorkoutNotFound, "get program")
	}
	if program.CreatorID == userID {
		return nil, validationError("cannot purchase your own workout")
	}
	return s.purchase(ctx, userID, domain.ContentWorkout, workoutID, w.Price)
}

func (s *workoutService) HasUserPurchasedWorkout(ctx context.Context, userID, workoutID string) (bool, error) {
	ok, err := s.repos.Purchases.Exists(ctx, userID, domain.ContentWorkout, workoutID)
	if err != nil {
		return false, fmt.Errorf("check workout purchase: %w", err)
	}
	return ok, nil
}

func (s *workoutService) GetPublishedWorkout(ctx context.Context, slug string) (*domain.Workout, error) {
	if slug == "" {
		return nil, ErrWorkoutNotFound
	}
	cacheKey := []byte(slugCacheKey(slug))
	if cached, err := s.slugCache.Get(cacheKey); err == nil {
		w := &domain.Workout{}
		if err = json.Unmarshal(cached, w); err == nil {
			s.metrics.CounterSlugCache.WithLabelValues("hit").Inc()
			return w, nil
		}
		log.Errorf("failed to unmarshal cached workout %s: %s", slug, err)
	}
	s.metrics.CounterSlugCache.WithLabelValues("miss").Inc()

	w, err := s.repos.Workouts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, ErrWorkoutNotFound, "get workout by slug")
	}
	if !w.IsPurchasable {
		return nil, ErrWorkoutNotFound
	}
	full, err := s.loadWorkout(ctx, w)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(full); err == nil {
		if err = s.slugCache.Set(cacheKey, data, int(s.slugTTL.Seconds())); err != nil {
			log.Errorf("failed to cache workout %s: %s", slug, err)
		}
	}
	return full, nil
}

func (c *Content) invalidateSlug(slug string) {
	if slug != "" {
		c.slugCache.Del([]byte(slugCacheKey(slug)))
	}
}

// invalidateWorkout drops the cached copy of a published workout after one
// of its exercises, sets or circuits changed.
func (c *Content) invalidateWorkout(w *domain.Workout) {
	if w != nil {
		c.invalidateSlug(w.Slug)
	}
}

func slugCacheKey(slug string) string {
	return "published::" + slug
}

// newSlug builds a url-safe slug from name with a random suffix.
func newSlug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) && r < unicode.MaxASCII, unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	base := strings.TrimSuffix(b.String(), "-")
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
