package usecase

import (
	"context"
	"dreamsquare-service/internal/core/domain"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// memStore - хранилище в памяти, реализующее все порты репозиториев для тестов.
type memStore struct {
	mu         sync.Mutex
	seq        int
	users      map[string]domain.User
	properties map[string]domain.Property
	offers     map[string]domain.Offer
	payments   map[string]domain.Payment
	wishlist   []domain.WishlistItem
	reviews    map[string]domain.Review

	// failDeleteByAgent эмулирует сбой на шаге удаления объектов.
	failDeleteByAgent error
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]domain.User{},
		properties: map[string]domain.Property{},
		offers:     map[string]domain.Offer{},
		payments:   map[string]domain.Payment{},
		reviews:    map[string]domain.Review{},
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

type memUsers struct{ *memStore }
type memProperties struct{ *memStore }
type memOffers struct{ *memStore }
type memPayments struct{ *memStore }
type memWishlist struct{ *memStore }
type memReviews struct{ *memStore }

func (r memUsers) Create(_ context.Context, u *domain.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return false, nil
		}
	}
	u.ID = r.nextID("user")
	r.users[u.ID] = *u
	return true, nil
}

func (r memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r memUsers) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r memUsers) UpdateRole(_ context.Context, id string, role domain.Role) (domain.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.UpdateResult{}, nil
	}
	res := domain.UpdateResult{MatchedCount: 1}
	if u.Role != role {
		u.Role = role
		r.users[id] = u
		res.ModifiedCount = 1
	}
	return res, nil
}

func (r memUsers) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return 0, nil
	}
	delete(r.users, id)
	return 1, nil
}

func (r memProperties) Create(_ context.Context, p *domain.Property) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID("property")
	r.properties[p.ID] = *p
	return p.ID, nil
}

func (r memProperties) FindByID(_ context.Context, id string) (*domain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.properties[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r memProperties) FindByIDs(_ context.Context, ids []string) ([]domain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Property
	for _, id := range ids {
		if p, ok := r.properties[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProperties) List(_ context.Context, f domain.PropertyFilter) ([]domain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Property
	for _, p := range r.properties {
		if f.AgentEmail != "" && p.AgentEmail != f.AgentEmail {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.AdvertisedOnly && !p.Advertised {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memProperties) Update(_ context.Context, id string, u domain.PropertyUpdate) (domain.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[id]
	if !ok {
		return domain.UpdateResult{}, nil
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.MinPrice != nil {
		p.MinPrice = *u.MinPrice
	}
	if u.MaxPrice != nil {
		p.MaxPrice = *u.MaxPrice
	}
	if u.Geohash != nil {
		p.Geohash = *u.Geohash
	}
	r.properties[id] = p
	return domain.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (r memProperties) UpdateStatus(_ context.Context, id string, from, to domain.PropertyStatus) (domain.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[id]
	if !ok || p.Status != from {
		return domain.UpdateResult{}, nil
	}
	p.Status = to
	r.properties[id] = p
	return domain.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (r memProperties) SetAdvertised(_ context.Context, id string, advertised bool) (domain.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[id]
	if !ok {
		return domain.UpdateResult{}, nil
	}
	p.Advertised = advertised
	r.properties[id] = p
	return domain.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (r memProperties) AddReview(_ context.Context, id string, review domain.PropertyReview) (domain.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[id]
	if !ok {
		return domain.UpdateResult{}, nil
	}
	p.Reviews = append(p.Reviews, review)
	r.properties[id] = p
	return domain.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (r memProperties) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.properties[id]; !ok {
		return 0, nil
	}
	delete(r.properties, id)
	return 1, nil
}

func (r memProperties) DeleteByAgentEmail(_ context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDeleteByAgent != nil {
		return 0, r.failDeleteByAgent
	}
	var n int64
	for id, p := range r.properties {
		if p.AgentEmail == email {
			delete(r.properties, id)
			n++
		}
	}
	return n, nil
}

func (r memOffers) Create(_ context.Context, o *domain.Offer) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextID("offer")
	r.offers[o.ID] = *o
	return o.ID, nil
}

func (r memOffers) FindByID(_ context.Context, id string) (*domain.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.offers[id]; ok {
		return &o, nil
	}
	return nil, nil
}

func (r memOffers) list(match func(domain.Offer) bool) []domain.Offer {
	var out []domain.Offer
	for _, o := range r.offers {
		if match(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memOffers) ListByBuyer(_ context.Context, email string) ([]domain.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(o domain.Offer) bool { return o.BuyerEmail == email }), nil
}

func (r memOffers) ListByAgent(_ context.Context, email string) ([]domain.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(o domain.Offer) bool { return o.AgentEmail == email }), nil
}

// Accept выполняется под общим мьютексом, что эквивалентно транзакции.
func (r memOffers) Accept(_ context.Context, id string) (*domain.AcceptPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.offers[id]
	if !ok {
		return nil, domain.Errorf(domain.ErrNotFound, "Offer not found")
	}
	siblings := r.list(func(o domain.Offer) bool { return o.PropertyID == target.PropertyID })
	plan, err := domain.PlanAccept(&target, siblings)
	if err != nil {
		return nil, err
	}
	if plan.AcceptTarget {
		target.Status = domain.OfferAccepted
		r.offers[id] = target
	}
	for _, rid := range plan.RejectOfferIDs {
		o := r.offers[rid]
		o.Status = domain.OfferRejected
		r.offers[rid] = o
	}
	return plan, nil
}

func (r memOffers) TransitionStatus(_ context.Context, id string, from, to domain.OfferStatus, txID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offers[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	if txID != "" {
		o.TransactionID = txID
	}
	r.offers[id] = o
	return true, nil
}

func (r memPayments) Create(_ context.Context, p *domain.Payment) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payments {
		if existing.TransactionID == p.TransactionID {
			return "", domain.Errorf(domain.ErrAlreadyExists, "Payment already recorded")
		}
	}
	p.ID = r.nextID("payment")
	r.payments[p.ID] = *p
	return p.ID, nil
}

func (r memPayments) FindByID(_ context.Context, id string) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r memPayments) ListPaidByPropertyIDs(_ context.Context, ids []string) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Payment
	for _, p := range r.payments {
		if want[p.PropertyID] && p.Status == domain.PaymentStatusPaid {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memWishlist) Add(_ context.Context, item *domain.WishlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.wishlist {
		if it.UserEmail == item.UserEmail && it.PropertyID == item.PropertyID {
			return domain.ErrAlreadyExists
		}
	}
	item.ID = r.nextID("wish")
	r.wishlist = append(r.wishlist, *item)
	return nil
}

func (r memWishlist) ListByUser(_ context.Context, email string) ([]domain.WishlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WishlistItem
	for _, it := range r.wishlist {
		if it.UserEmail == email {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r memWishlist) Remove(_ context.Context, email, propertyID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.wishlist {
		if it.UserEmail == email && it.PropertyID == propertyID {
			r.wishlist = append(r.wishlist[:i], r.wishlist[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r memReviews) Create(_ context.Context, rv *domain.Review) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv.ID = r.nextID("review")
	r.reviews[rv.ID] = *rv
	return rv.ID, nil
}

func (r memReviews) List(_ context.Context) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Review
	for _, rv := range r.reviews {
		out = append(out, rv)
	}
	return out, nil
}

func (r memReviews) ListByUser(_ context.Context, userID string) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Review
	for _, rv := range r.reviews {
		if rv.UserID == userID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r memReviews) UpdateStatus(_ context.Context, id string, status domain.ReviewStatus) (domain.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[id]
	if !ok {
		return domain.UpdateResult{}, nil
	}
	rv.Status = status
	r.reviews[id] = rv
	return domain.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (r memReviews) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return 0, nil
	}
	delete(r.reviews, id)
	return 1, nil
}

// recordingEvents собирает опубликованные события.
type recordingEvents struct {
	mu         sync.Mutex
	published  []domain.MarketEvent
	notified   []domain.MarketEvent
	publishErr error
}

func (e *recordingEvents) Publish(_ context.Context, event domain.MarketEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.published = append(e.published, event)
	return e.publishErr
}

func (e *recordingEvents) Notify(_ context.Context, event domain.MarketEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notified = append(e.notified, event)
}

type fakePurgeQueue struct {
	commands []domain.PurgeAgentListingsCommand
	err      error
}

func (q *fakePurgeQueue) EnqueuePurge(_ context.Context, cmd domain.PurgeAgentListingsCommand) error {
	if q.err != nil {
		return q.err
	}
	q.commands = append(q.commands, cmd)
	return nil
}

var errStoreDown = errors.New("store unavailable")
