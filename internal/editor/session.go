// Package editor holds the programs users are currently editing. A Session
// owns one program tree and the active selection; every change goes through
// Session.Dispatch so the selection never points at a removed entity.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

// ErrUnknownEntity is returned for actions naming a week, workout or
// exercise that is not part of the edited program.
var ErrUnknownEntity = errors.New("entity is not part of the edited program")

// Services are the entity operations sessions persist through.
type Services struct {
	Programs  service.ProgramService
	Weeks     service.WeekService
	Workouts  service.WorkoutService
	Exercises service.ExerciseService
	Sets      service.SetService
	Circuits  service.CircuitService
	Library   service.LibraryService
}

// Selection is the active week, workout and exercise. Empty ids mean
// nothing is selected at that level. A non-empty id always refers to an
// entity of the current tree, and the three ids lie on one path of it.
type Selection struct {
	WeekID     string `json:"weekId,omitempty"`
	WorkoutID  string `json:"workoutId,omitempty"`
	ExerciseID string `json:"exerciseId,omitempty"`
}

// Snapshot is a read-only view of a session. Program must not be modified.
type Snapshot struct {
	Program   *domain.WorkoutProgram         `json:"program"`
	Selection Selection                      `json:"selection"`
	Phases    map[string]domain.WorkoutPhase `json:"phases"`
	Version   int64                          `json:"version"`
}

type Session struct {
	userID    string
	programID string
	svc       Services

	mu      sync.Mutex
	program *domain.WorkoutProgram
	sel     Selection
	deleted map[string]struct{}
	version int64

	lastUsed atomic.Int64
	now      func() time.Time
}

func newSession(userID, programID string, svc Services, now func() time.Time) *Session {
	s := &Session{
		userID:    userID,
		programID: programID,
		svc:       svc,
		deleted:   map[string]struct{}{},
		now:       now,
	}
	s.touch()
	return s
}

// load fetches the tree and selects the first week.
func (s *Session) load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(ctx); err != nil {
		return err
	}
	var t target
	if len(s.program.Weeks) > 0 {
		t.weekID = s.program.Weeks[0].ID
	}
	s.normalize(t)
	return nil
}

func (s *Session) reload(ctx context.Context) error {
	program, err := s.svc.Programs.GetProgram(ctx, s.userID, s.programID)
	if err != nil {
		return err
	}
	if program.CreatorID != s.userID {
		return service.ErrAccessDenied
	}
	s.program = program
	return nil
}

// Dispatch applies the action. Mutations are persisted through the entity
// services, then the tree is re-loaded and the selection normalized before
// the session lock is released.
func (s *Session) Dispatch(ctx context.Context, a Action) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	t, err := a.apply(ctx, s)
	if err != nil {
		log.Debugf("editor %s: %s failed: %s", s.programID, actionName(a), err)
		return nil, err
	}
	if m, ok := a.(mutation); ok && m.mutates() {
		if err := s.reload(ctx); err != nil {
			return nil, fmt.Errorf("reload program: %w", err)
		}
		s.version++
	}
	s.normalize(t)
	return s.snapshot(), nil
}

func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.snapshot()
}

func (s *Session) snapshot() *Snapshot {
	phases := make(map[string]domain.WorkoutPhase, len(s.program.Workouts)+len(s.deleted))
	for id := range s.deleted {
		phases[id] = domain.PhaseDeleted
	}
	for i := range s.program.Workouts {
		w := &s.program.Workouts[i]
		phases[w.ID] = w.Phase()
	}
	return &Snapshot{
		Program:   s.program,
		Selection: s.sel,
		Phases:    phases,
		Version:   s.version,
	}
}

// normalize applies the target and then drops every pointer that no longer
// resolves.
func (s *Session) normalize(t target) {
	p := s.program
	sel := s.sel
	switch {
	case t.circuitID != "":
		for _, w := range p.Workouts {
			for _, ex := range w.Exercises {
				if ex.IsCircuit && ex.CircuitID == t.circuitID {
					sel = Selection{WeekID: w.WeekID, WorkoutID: w.ID, ExerciseID: ex.ID}
				}
			}
		}
	case t.exerciseID != "":
		sel = Selection{ExerciseID: t.exerciseID}
	case t.workoutID != "":
		sel = Selection{WorkoutID: t.workoutID}
	case t.weekID != "":
		if w, ok := p.Workout(sel.WorkoutID); !ok || w.WeekID != t.weekID {
			sel = Selection{WeekID: t.weekID}
			if workouts := p.WorkoutsOfWeek(t.weekID); len(workouts) > 0 {
				sel.WorkoutID = workouts[0].ID
			}
		}
	}
	s.sel = resolve(p, sel)
}

// resolve walks the selection bottom up, so a selected exercise decides its
// workout and a selected workout decides its week.
func resolve(p *domain.WorkoutProgram, sel Selection) Selection {
	if sel.ExerciseID != "" {
		if _, w, ok := p.Exercise(sel.ExerciseID); ok {
			sel.WorkoutID = w.ID
		} else {
			sel.ExerciseID = ""
		}
	}
	if sel.WorkoutID != "" {
		if w, ok := p.Workout(sel.WorkoutID); ok {
			sel.WeekID = w.WeekID
		} else {
			sel = Selection{WeekID: sel.WeekID}
		}
	}
	if sel.WeekID != "" {
		if _, ok := p.Week(sel.WeekID); !ok {
			sel = Selection{}
		}
	}
	return sel
}

func (s *Session) touch() {
	s.lastUsed.Store(s.now().UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastUsed.Load()))
}

func (s *Session) requireWeek(id string) error {
	if _, ok := s.program.Week(id); !ok {
		return fmt.Errorf("week %s: %w", id, ErrUnknownEntity)
	}
	return nil
}

func (s *Session) requireWorkout(id string) error {
	if _, ok := s.program.Workout(id); !ok {
		return fmt.Errorf("workout %s: %w", id, ErrUnknownEntity)
	}
	return nil
}

func (s *Session) requireExercise(id string) error {
	if _, _, ok := s.program.Exercise(id); !ok {
		return fmt.Errorf("exercise %s: %w", id, ErrUnknownEntity)
	}
	return nil
}

func (s *Session) requireSet(id string) error {
	if _, _, ok := s.program.Set(id); !ok {
		return fmt.Errorf("set %s: %w", id, ErrUnknownEntity)
	}
	return nil
}

func (s *Session) requireCircuit(id string) error {
	if _, _, ok := s.program.Circuit(id); !ok {
		return fmt.Errorf("circuit %s: %w", id, ErrUnknownEntity)
	}
	return nil
}

// placementWeek is the week a workout lands in when the action names none:
// the selected week, or "" to let the service pick or create one.
func (s *Session) placementWeek(weekID string) (string, error) {
	if weekID != "" {
		return weekID, s.requireWeek(weekID)
	}
	return s.sel.WeekID, nil
}

func (s *Session) patchWorkout(ctx context.Context, workoutID string, patch domain.WorkoutPatch) error {
	if err := s.requireWorkout(workoutID); err != nil {
		return err
	}
	_, err := s.svc.Workouts.UpdateWorkout(ctx, s.userID, workoutID, patch)
	return err
}
