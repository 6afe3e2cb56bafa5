package memory

import (
	"context"
	"slices"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

// --- Clubs and members ---

type clubRepo struct{ s *Store }

func (s *Store) Clubs() repository.ClubRepository { return &clubRepo{s} }

func (r *clubRepo) Create(ctx context.Context, c *domain.Club, owner domain.ClubMember) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("clubs.create"); err != nil {
		return "", err
	}
	now := r.s.now()
	c.ID = newID()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.clubs[c.ID] = *c
	owner.ClubID = c.ID
	owner.JoinedAt = now
	r.s.members[memberKey{c.ID, owner.UserID}] = owner
	return c.ID, nil
}

func (r *clubRepo) GetByID(ctx context.Context, id string) (*domain.Club, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clubs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *clubRepo) List(ctx context.Context) ([]domain.Club, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Club{}
	for _, c := range r.s.clubs {
		out = append(out, c)
	}
	sortClubs(out)
	return out, nil
}

func (r *clubRepo) ListByMember(ctx context.Context, userID string) ([]domain.Club, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Club{}
	for k := range r.s.members {
		if k.UserID != userID {
			continue
		}
		if c, ok := r.s.clubs[k.ClubID]; ok {
			out = append(out, c)
		}
	}
	sortClubs(out)
	return out, nil
}

func sortClubs(clubs []domain.Club) {
	slices.SortFunc(clubs, func(a, b domain.Club) int { return b.CreatedAt.Compare(a.CreatedAt) })
}

func (r *clubRepo) Update(ctx context.Context, id string, patch domain.ClubPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clubs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.ClubType != nil {
		c.ClubType = *patch.ClubType
	}
	if patch.MembershipType != nil {
		c.MembershipType = *patch.MembershipType
	}
	if patch.PremiumPrice != nil {
		c.PremiumPrice = *patch.PremiumPrice
	}
	if patch.BannerURL != nil {
		c.BannerURL = *patch.BannerURL
	}
	c.UpdatedAt = r.s.now()
	r.s.clubs[id] = c
	return nil
}

// Delete removes the club and everything scoped to it.
func (r *clubRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clubs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.clubs, id)
	for k := range r.s.members {
		if k.ClubID == id {
			delete(r.s.members, k)
		}
	}
	for eid, e := range r.s.events {
		if e.ClubID == id {
			delete(r.s.events, eid)
			for k := range r.s.participants {
				if k.ClubID == eid {
					delete(r.s.participants, k)
				}
			}
		}
	}
	for pid, p := range r.s.posts {
		if p.ClubID == id {
			delete(r.s.posts, pid)
		}
	}
	for mid, m := range r.s.messages {
		if m.ClubID == id {
			delete(r.s.messages, mid)
		}
	}
	for pid, p := range r.s.products {
		if p.ClubID == id {
			delete(r.s.products, pid)
			for bid, b := range r.s.productBuys {
				if b.ProductID == pid {
					delete(r.s.productBuys, bid)
				}
			}
		}
	}
	for k := range r.s.subscriptions {
		if k.ClubID == id {
			delete(r.s.subscriptions, k)
		}
	}
	for k := range r.s.shares {
		if k.ClubID == id {
			delete(r.s.shares, k)
		}
	}
	return nil
}

func (r *clubRepo) AddMember(ctx context.Context, m domain.ClubMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := memberKey{m.ClubID, m.UserID}
	if _, ok := r.s.members[k]; ok {
		return repository.ErrDuplicate
	}
	if _, ok := r.s.clubs[m.ClubID]; !ok {
		return repository.ErrNotFound
	}
	m.JoinedAt = r.s.now()
	r.s.members[k] = m
	return nil
}

func (r *clubRepo) GetMember(ctx context.Context, clubID, userID string) (*domain.ClubMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.members[memberKey{clubID, userID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *clubRepo) ListMembers(ctx context.Context, clubID string) ([]domain.ClubMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ClubMember{}
	for k, m := range r.s.members {
		if k.ClubID == clubID {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b domain.ClubMember) int { return a.JoinedAt.Compare(b.JoinedAt) })
	return out, nil
}

func (r *clubRepo) UpdateMemberRole(ctx context.Context, clubID, userID string, role domain.ClubRole) error {
	return r.updateMember(clubID, userID, func(m *domain.ClubMember) { m.Role = role })
}

func (r *clubRepo) UpdateMemberStatus(ctx context.Context, clubID, userID string, status domain.MemberStatus) error {
	return r.updateMember(clubID, userID, func(m *domain.ClubMember) { m.Status = status })
}

func (r *clubRepo) updateMember(clubID, userID string, fn func(*domain.ClubMember)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := memberKey{clubID, userID}
	m, ok := r.s.members[k]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&m)
	r.s.members[k] = m
	return nil
}

func (r *clubRepo) RemoveMember(ctx context.Context, clubID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := memberKey{clubID, userID}
	if _, ok := r.s.members[k]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.members, k)
	return nil
}

// --- Events ---

type clubEventRepo struct{ s *Store }

func (s *Store) ClubEvents() repository.ClubEventRepository { return &clubEventRepo{s} }

func (r *clubEventRepo) Create(ctx context.Context, e *domain.ClubEvent) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = newID()
	e.CreatedAt = r.s.now()
	r.s.events[e.ID] = *e
	return e.ID, nil
}

func (r *clubEventRepo) GetByID(ctx context.Context, id string) (*domain.ClubEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *clubEventRepo) ListByClub(ctx context.Context, clubID string) ([]domain.ClubEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ClubEvent{}
	for _, e := range r.s.events {
		if e.ClubID == clubID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.ClubEvent) int { return a.StartTime.Compare(b.StartTime) })
	return out, nil
}

func (r *clubEventRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.events, id)
	for k := range r.s.participants {
		if k.ClubID == id {
			delete(r.s.participants, k)
		}
	}
	return nil
}

func (r *clubEventRepo) UpsertParticipant(ctx context.Context, p domain.EventParticipant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[p.EventID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = r.s.now()
	r.s.participants[memberKey{p.EventID, p.UserID}] = p
	return nil
}

func (r *clubEventRepo) ListParticipants(ctx context.Context, eventID string) ([]domain.EventParticipant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.EventParticipant{}
	for k, p := range r.s.participants {
		if k.ClubID == eventID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.EventParticipant) int { return a.UpdatedAt.Compare(b.UpdatedAt) })
	return out, nil
}

// --- Posts and messages ---

type clubContentRepo struct{ s *Store }

func (s *Store) ClubContent() repository.ClubContentRepository { return &clubContentRepo{s} }

func (r *clubContentRepo) CreatePost(ctx context.Context, p *domain.ClubPost) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = newID()
	p.CreatedAt = r.s.now()
	r.s.posts[p.ID] = *p
	return p.ID, nil
}

func (r *clubContentRepo) GetPost(ctx context.Context, id string) (*domain.ClubPost, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *clubContentRepo) ListPosts(ctx context.Context, clubID string) ([]domain.ClubPost, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ClubPost{}
	for _, p := range r.s.posts {
		if p.ClubID == clubID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.ClubPost) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *clubContentRepo) DeletePost(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r *clubContentRepo) CreateMessage(ctx context.Context, m *domain.ClubMessage) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = newID()
	m.CreatedAt = r.s.now()
	r.s.messages[m.ID] = *m
	return m.ID, nil
}

func (r *clubContentRepo) GetMessage(ctx context.Context, id string) (*domain.ClubMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *clubContentRepo) ListMessages(ctx context.Context, clubID string) ([]domain.ClubMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ClubMessage{}
	for _, m := range r.s.messages {
		if m.ClubID == clubID {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b domain.ClubMessage) int {
		if a.IsPinned != b.IsPinned {
			if a.IsPinned {
				return -1
			}
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (r *clubContentRepo) SetMessagePinned(ctx context.Context, id string, pinned bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.IsPinned = pinned
	r.s.messages[id] = m
	return nil
}

func (r *clubContentRepo) DeleteMessage(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.messages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.messages, id)
	return nil
}

// --- Products and subscriptions ---

type clubCommerceRepo struct{ s *Store }

func (s *Store) ClubCommerce() repository.ClubCommerceRepository { return &clubCommerceRepo{s} }

func (r *clubCommerceRepo) CreateProduct(ctx context.Context, p *domain.ClubProduct) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = newID()
	p.CreatedAt = r.s.now()
	r.s.products[p.ID] = *p
	return p.ID, nil
}

func (r *clubCommerceRepo) GetProduct(ctx context.Context, id string) (*domain.ClubProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *clubCommerceRepo) ListProducts(ctx context.Context, clubID string) ([]domain.ClubProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ClubProduct{}
	for _, p := range r.s.products {
		if p.ClubID == clubID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.ClubProduct) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (r *clubCommerceRepo) CreatePurchase(ctx context.Context, p *domain.ClubProductPurchase) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.productBuys {
		if other.ProductID == p.ProductID && other.UserID == p.UserID {
			return "", repository.ErrDuplicate
		}
	}
	p.ID = newID()
	p.CreatedAt = r.s.now()
	r.s.productBuys[p.ID] = *p
	return p.ID, nil
}

func (r *clubCommerceRepo) HasPurchased(ctx context.Context, productID, userID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.productBuys {
		if p.ProductID == productID && p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *clubCommerceRepo) UpsertSubscription(ctx context.Context, sub *domain.ClubSubscription) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := memberKey{sub.ClubID, sub.UserID}
	if existing, ok := r.s.subscriptions[k]; ok {
		sub.ID = existing.ID
	} else {
		sub.ID = newID()
	}
	if sub.StartedAt.IsZero() {
		sub.StartedAt = r.s.now()
	}
	r.s.subscriptions[k] = *sub
	return sub.ID, nil
}

func (r *clubCommerceRepo) GetSubscription(ctx context.Context, clubID, userID string) (*domain.ClubSubscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sub, ok := r.s.subscriptions[memberKey{clubID, userID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sub, nil
}

func (r *clubCommerceRepo) CancelSubscription(ctx context.Context, clubID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := memberKey{clubID, userID}
	sub, ok := r.s.subscriptions[k]
	if !ok || sub.Status != domain.SubscriptionActive {
		return repository.ErrNotFound
	}
	now := r.s.now()
	sub.Status = domain.SubscriptionCanceled
	sub.CanceledAt = &now
	r.s.subscriptions[k] = sub
	return nil
}

// --- Shares ---

type clubShareRepo struct{ s *Store }

func (s *Store) ClubShares() repository.ClubShareRepository { return &clubShareRepo{s} }

func (r *clubShareRepo) Share(ctx context.Context, share domain.ClubShare) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := shareKey{share.ClubID, share.ContentType, share.ContentID}
	if _, ok := r.s.shares[k]; ok {
		return repository.ErrDuplicate
	}
	if share.CreatedAt.IsZero() {
		share.CreatedAt = r.s.now()
	}
	r.s.shares[k] = share
	return nil
}

func (r *clubShareRepo) List(ctx context.Context, clubID string, contentType domain.ContentType) ([]domain.ClubShare, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ClubShare{}
	for k, sh := range r.s.shares {
		if k.ClubID == clubID && (contentType == "" || k.ContentType == contentType) {
			out = append(out, sh)
		}
	}
	slices.SortFunc(out, func(a, b domain.ClubShare) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *clubShareRepo) Unshare(ctx context.Context, clubID string, contentType domain.ContentType, contentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := shareKey{clubID, contentType, contentID}
	if _, ok := r.s.shares[k]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.shares, k)
	return nil
}

