package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/mapper"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

// --- Programs ---

type programRepo struct{ s *Store }

func (s *Store) Programs() repository.ProgramRepository { return &programRepo{s} }

func (r *programRepo) Create(ctx context.Context, p *domain.WorkoutProgram) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("programs.create"); err != nil {
		return "", err
	}
	now := r.s.now()
	p.ID = newID()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Settings = p.Settings.Normalize()
	stored := *p
	stored.Weeks, stored.Workouts = nil, nil
	r.s.programs[p.ID] = stored
	return p.ID, nil
}

func (r *programRepo) GetByID(ctx context.Context, id string) (*domain.WorkoutProgram, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Weeks, p.Workouts = []domain.WorkoutWeek{}, []domain.Workout{}
	return &p, nil
}

func (r *programRepo) List(ctx context.Context, f repository.ProgramFilter) ([]domain.WorkoutProgram, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.WorkoutProgram{}
	for _, p := range r.s.programs {
		if f.CreatorID != "" && p.CreatorID != f.CreatorID {
			continue
		}
		if f.PublicOnly && !p.IsPublic {
			continue
		}
		if f.SavedOnly && !p.Saved {
			continue
		}
		if p.LibraryWrapper && !f.IncludeWrappers {
			continue
		}
		p.Weeks, p.Workouts = []domain.WorkoutWeek{}, []domain.Workout{}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.WorkoutProgram) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (r *programRepo) Update(ctx context.Context, id string, patch domain.ProgramPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.programs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.IsPublic != nil {
		p.IsPublic = *patch.IsPublic
	}
	if patch.IsPurchasable != nil {
		p.IsPurchasable = *patch.IsPurchasable
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Settings != nil {
		p.Settings = patch.Settings.Normalize()
	}
	if patch.Saved != nil {
		p.Saved = *patch.Saved
	}
	p.UpdatedAt = r.s.now()
	r.s.programs[id] = p
	return nil
}

func (r *programRepo) UpdatePricing(ctx context.Context, id string, pricing repository.Pricing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.programs[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Price, p.IsPurchasable = pricing.Price, pricing.IsPurchasable
	if pricing.Slug != "" {
		p.Slug = pricing.Slug
	}
	p.UpdatedAt = r.s.now()
	r.s.programs[id] = p
	return nil
}

func (r *programRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.programs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.programs, id)
	return nil
}

// --- Weeks ---

type weekRepo struct{ s *Store }

func (s *Store) Weeks() repository.WeekRepository { return &weekRepo{s} }

func (r *weekRepo) Create(ctx context.Context, w *domain.WorkoutWeek) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("weeks.create"); err != nil {
		return "", err
	}
	w.ID = newID()
	w.CreatedAt = r.s.now()
	stored := *w
	stored.Workouts = nil
	r.s.weeks[w.ID] = stored
	return w.ID, nil
}

func (r *weekRepo) GetByID(ctx context.Context, id string) (*domain.WorkoutWeek, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.weeks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	w.Workouts = []string{}
	return &w, nil
}

func (r *weekRepo) ListByProgram(ctx context.Context, programID string) ([]domain.WorkoutWeek, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.WorkoutWeek{}
	for _, w := range r.s.weeks {
		if w.ProgramID == programID {
			w.Workouts = []string{}
			out = append(out, w)
		}
	}
	slices.SortFunc(out, func(a, b domain.WorkoutWeek) int { return strings.Compare(a.ID, b.ID) })
	return mapper.SortWeeks(out), nil
}

func (r *weekRepo) Update(ctx context.Context, id string, patch domain.WeekPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("weeks.update"); err != nil {
		return err
	}
	w, ok := r.s.weeks[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Name != nil {
		w.Name = *patch.Name
	}
	if patch.OrderIndex != nil {
		w.OrderIndex = *patch.OrderIndex
	}
	if patch.Saved != nil {
		w.Saved = *patch.Saved
	}
	r.s.weeks[id] = w
	return nil
}

func (r *weekRepo) DeleteMany(ctx context.Context, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.weeks, id)
	}
	return nil
}

// --- Workouts ---

type workoutRepo struct{ s *Store }

func (s *Store) Workouts() repository.WorkoutRepository { return &workoutRepo{s} }

func (r *workoutRepo) Create(ctx context.Context, w *domain.Workout) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("workouts.create"); err != nil {
		return "", err
	}
	now := r.s.now()
	w.ID = newID()
	w.CreatedAt, w.UpdatedAt = now, now
	stored := *w
	stored.Exercises, stored.Circuits = nil, nil
	r.s.workouts[w.ID] = stored
	return w.ID, nil
}

func (r *workoutRepo) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return bareWorkout(w), nil
}

func (r *workoutRepo) GetBySlug(ctx context.Context, slug string) (*domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, w := range r.s.workouts {
		if slug != "" && w.Slug == slug {
			return bareWorkout(w), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *workoutRepo) ListByProgram(ctx context.Context, programID string) ([]domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Workout{}
	for _, w := range r.s.workouts {
		if w.ProgramID == programID {
			out = append(out, *bareWorkout(w))
		}
	}
	slices.SortFunc(out, func(a, b domain.Workout) int { return strings.Compare(a.ID, b.ID) })
	return mapper.SortWorkouts(out), nil
}

func (r *workoutRepo) Update(ctx context.Context, id string, patch domain.WorkoutPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.workouts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Name != nil {
		w.Name = *patch.Name
	}
	if patch.Day != nil {
		w.Day = *patch.Day
	}
	if patch.WeekID != nil {
		w.WeekID = *patch.WeekID
	}
	if patch.Saved != nil {
		w.Saved = *patch.Saved
	}
	w.UpdatedAt = r.s.now()
	r.s.workouts[id] = w
	return nil
}

func (r *workoutRepo) UpdatePricing(ctx context.Context, id string, pricing repository.Pricing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.workouts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if pricing.Slug != "" {
		for otherID, other := range r.s.workouts {
			if otherID != id && other.Slug == pricing.Slug {
				return repository.ErrDuplicate
			}
		}
		w.Slug = pricing.Slug
	}
	w.Price, w.IsPurchasable = pricing.Price, pricing.IsPurchasable
	w.UpdatedAt = r.s.now()
	r.s.workouts[id] = w
	return nil
}

func (r *workoutRepo) DeleteMany(ctx context.Context, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.workouts, id)
	}
	return nil
}

func bareWorkout(w domain.Workout) *domain.Workout {
	w.Exercises, w.Circuits = []domain.Exercise{}, []domain.Circuit{}
	return &w
}

// --- Exercises ---

type exerciseRepo struct{ s *Store }

func (s *Store) Exercises() repository.ExerciseRepository { return &exerciseRepo{s} }

func (r *exerciseRepo) Create(ctx context.Context, e *domain.Exercise) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("exercises.create"); err != nil {
		return "", err
	}
	e.ID = newID()
	stored := *e
	stored.Sets = nil
	// membership is never stored on the exercise
	stored.IsInCircuit, stored.CircuitOrder = false, 0
	if !stored.IsCircuit {
		stored.CircuitID = ""
	}
	r.s.exercises[e.ID] = stored
	return e.ID, nil
}

func (r *exerciseRepo) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e.Sets = []domain.Set{}
	return &e, nil
}

func (r *exerciseRepo) ListByWorkouts(ctx context.Context, workoutIDs []string) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	want := set(workoutIDs)
	out := []domain.Exercise{}
	for _, e := range r.s.exercises {
		if _, ok := want[e.WorkoutID]; ok {
			e.Sets = []domain.Set{}
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.Exercise) int { return strings.Compare(a.ID, b.ID) })
	return mapper.SortExercises(out), nil
}

func (r *exerciseRepo) Update(ctx context.Context, id string, patch domain.ExercisePatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Name != nil {
		e.Name = *patch.Name
	}
	if patch.Notes != nil {
		e.Notes = *patch.Notes
	}
	if patch.IsGroup != nil {
		e.IsGroup = *patch.IsGroup
	}
	if patch.GroupID != nil {
		e.GroupID = *patch.GroupID
	}
	if patch.MediaKey != nil {
		e.MediaKey = *patch.MediaKey
	}
	r.s.exercises[id] = e
	return nil
}

func (r *exerciseRepo) SetOrder(ctx context.Context, id string, orderIndex int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.OrderIndex = orderIndex
	r.s.exercises[id] = e
	return nil
}

func (r *exerciseRepo) ClearGroup(ctx context.Context, groupID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, e := range r.s.exercises {
		if e.GroupID == groupID {
			e.GroupID = ""
			r.s.exercises[id] = e
		}
	}
	return nil
}

func (r *exerciseRepo) DeleteMany(ctx context.Context, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.exercises, id)
	}
	return nil
}

// --- Sets ---

type setRepo struct{ s *Store }

func (s *Store) Sets() repository.SetRepository { return &setRepo{s} }

func (r *setRepo) Create(ctx context.Context, st *domain.Set) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("sets.create"); err != nil {
		return "", err
	}
	st.ID = newID()
	r.s.sets[st.ID] = *st
	return st.ID, nil
}

func (r *setRepo) GetByID(ctx context.Context, id string) (*domain.Set, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.sets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &st, nil
}

func (r *setRepo) ListByExercises(ctx context.Context, exerciseIDs []string) ([]domain.Set, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	want := set(exerciseIDs)
	out := []domain.Set{}
	for _, st := range r.s.sets {
		if _, ok := want[st.ExerciseID]; ok {
			out = append(out, st)
		}
	}
	slices.SortFunc(out, func(a, b domain.Set) int { return strings.Compare(a.ID, b.ID) })
	return mapper.SortSets(out), nil
}

func (r *setRepo) Update(ctx context.Context, id string, patch domain.SetPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.sets[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.s.sets[id] = patch.Apply(st)
	return nil
}

func (r *setRepo) DeleteMany(ctx context.Context, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.sets, id)
	}
	return nil
}

// --- Circuits ---

type circuitRepo struct{ s *Store }

func (s *Store) Circuits() repository.CircuitRepository { return &circuitRepo{s} }

func (r *circuitRepo) Create(ctx context.Context, c *domain.Circuit) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("circuits.create"); err != nil {
		return "", err
	}
	c.ID = newID()
	stored := *c
	stored.Exercises = nil
	r.s.circuits[c.ID] = stored
	return c.ID, nil
}

func (r *circuitRepo) GetByID(ctx context.Context, id string) (*domain.Circuit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.circuits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Exercises = []string{}
	return &c, nil
}

func (r *circuitRepo) ListByWorkouts(ctx context.Context, workoutIDs []string) ([]domain.Circuit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	want := set(workoutIDs)
	out := []domain.Circuit{}
	for _, c := range r.s.circuits {
		if _, ok := want[c.WorkoutID]; ok {
			c.Exercises = []string{}
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Circuit) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *circuitRepo) Update(ctx context.Context, id string, patch domain.CircuitPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.circuits[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Rounds != nil {
		c.Rounds = *patch.Rounds
	}
	if patch.RestBetweenExercises != nil {
		c.RestBetweenExercises = *patch.RestBetweenExercises
	}
	if patch.RestBetweenRounds != nil {
		c.RestBetweenRounds = *patch.RestBetweenRounds
	}
	r.s.circuits[id] = c
	return nil
}

func (r *circuitRepo) DeleteMany(ctx context.Context, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.circuits, id)
	}
	return nil
}

func (r *circuitRepo) AddMember(ctx context.Context, workoutID string, m domain.CircuitMembership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("circuits.add_member"); err != nil {
		return err
	}
	if _, ok := r.s.memberships[m.ExerciseID]; ok {
		return repository.ErrDuplicate
	}
	r.s.memberships[m.ExerciseID] = membershipRow{CircuitMembership: m, WorkoutID: workoutID}
	return nil
}

func (r *circuitRepo) ListMembers(ctx context.Context, circuitIDs []string) ([]domain.CircuitMembership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	want := set(circuitIDs)
	out := []domain.CircuitMembership{}
	for _, m := range r.s.memberships {
		if _, ok := want[m.CircuitID]; ok {
			out = append(out, m.CircuitMembership)
		}
	}
	slices.SortFunc(out, func(a, b domain.CircuitMembership) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.ExerciseID, b.ExerciseID)
	})
	return out, nil
}

func (r *circuitRepo) RemoveMembers(ctx context.Context, exerciseIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range exerciseIDs {
		delete(r.s.memberships, id)
	}
	return nil
}

func (r *circuitRepo) RemoveCircuitMembers(ctx context.Context, circuitIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := set(circuitIDs)
	for id, m := range r.s.memberships {
		if _, ok := want[m.CircuitID]; ok {
			delete(r.s.memberships, id)
		}
	}
	return nil
}
