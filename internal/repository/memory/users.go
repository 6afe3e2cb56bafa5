package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

// --- Profiles ---

type profileRepo struct{ s *Store }

func (s *Store) Profiles() repository.ProfileRepository { return &profileRepo{s} }

func (r *profileRepo) Create(ctx context.Context, p *domain.Profile) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.profiles {
		if strings.EqualFold(other.Email, p.Email) {
			return "", repository.ErrDuplicate
		}
		if p.Username != "" && other.Username == p.Username {
			return "", repository.ErrDuplicate
		}
	}
	now := r.s.now()
	p.ID = newID()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.profiles[p.ID] = *p
	return p.ID, nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.profiles {
		if strings.EqualFold(p.Email, email) {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *profileRepo) Update(ctx context.Context, id string, patch domain.ProfilePatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Username != nil && *patch.Username != p.Username {
		for otherID, other := range r.s.profiles {
			if otherID != id && other.Username == *patch.Username {
				return repository.ErrDuplicate
			}
		}
		p.Username = *patch.Username
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.AvatarURL != nil {
		p.AvatarURL = *patch.AvatarURL
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	p.UpdatedAt = r.s.now()
	r.s.profiles[id] = p
	return nil
}

// --- Purchases ---

type purchaseRepo struct{ s *Store }

func (s *Store) Purchases() repository.PurchaseRepository { return &purchaseRepo{s} }

func (r *purchaseRepo) Create(ctx context.Context, p *domain.Purchase) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.purchases {
		if other.UserID == p.UserID && other.ContentType == p.ContentType && other.ContentID == p.ContentID {
			return "", repository.ErrDuplicate
		}
	}
	p.ID = newID()
	p.CreatedAt = r.s.now()
	r.s.purchases[p.ID] = *p
	return p.ID, nil
}

func (r *purchaseRepo) Exists(ctx context.Context, userID string, contentType domain.ContentType, contentID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.purchases {
		if p.UserID == userID && p.ContentType == contentType && p.ContentID == contentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *purchaseRepo) ListByUser(ctx context.Context, userID string, contentType domain.ContentType) ([]domain.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Purchase{}
	for _, p := range r.s.purchases {
		if p.UserID == userID && (contentType == "" || p.ContentType == contentType) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Purchase) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// --- Workout logs ---

type workoutLogRepo struct{ s *Store }

func (s *Store) WorkoutLogs() repository.WorkoutLogRepository { return &workoutLogRepo{s} }

func (r *workoutLogRepo) Create(ctx context.Context, l *domain.WorkoutLog) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = newID()
	if l.CompletedAt.IsZero() {
		l.CompletedAt = r.s.now()
	}
	r.s.logs[l.ID] = *l
	return l.ID, nil
}

func (r *workoutLogRepo) ListByUser(ctx context.Context, userID string) ([]domain.WorkoutLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.WorkoutLog{}
	for _, l := range r.s.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b domain.WorkoutLog) int { return b.CompletedAt.Compare(a.CompletedAt) })
	return out, nil
}
