package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/infra/security"
	"github.com/arklim/tourism-api/internal/repository"
)

const testSecret = "usecase-test-secret-0123456789abcdef"

func newTestTokens(t *testing.T) *security.TokenManager {
	t.Helper()

	tokens, err := security.NewTokenManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	return tokens
}

func newTestHasher(t *testing.T) *security.PasswordHasher {
	t.Helper()

	hasher, err := security.NewPasswordHasher(security.Argon2Config{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewPasswordHasher returned error: %v", err)
	}
	return hasher
}

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]domain.User
	err    error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.User{}, r.err
	}
	if _, ok := r.users[user.Email]; ok {
		return domain.User{}, repository.ErrConflict
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.Email] = user
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	user, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.users[email]
	return ok, nil
}

func (r *memUserRepo) Update(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, existing := range r.users {
		if existing.ID == user.ID {
			delete(r.users, email)
			r.users[user.Email] = user
			return nil
		}
	}
	return repository.ErrNotFound
}

type memAttractionRepo struct {
	mu          sync.Mutex
	nextID      int64
	attractions map[int64]domain.Attraction
}

func newMemAttractionRepo(seed ...domain.Attraction) *memAttractionRepo {
	repo := &memAttractionRepo{attractions: make(map[int64]domain.Attraction)}
	for _, a := range seed {
		repo.attractions[a.ID] = a
		if a.ID > repo.nextID {
			repo.nextID = a.ID
		}
	}
	return repo
}

func (r *memAttractionRepo) Create(_ context.Context, a domain.Attraction) (domain.Attraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	a.TrafficCount = 0
	r.attractions[a.ID] = a
	return a, nil
}

func (r *memAttractionRepo) GetByID(_ context.Context, id int64) (*domain.Attraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attractions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *memAttractionRepo) List(_ context.Context) ([]domain.Attraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Attraction, 0, len(r.attractions))
	for _, a := range r.attractions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memAttractionRepo) Update(_ context.Context, a domain.Attraction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.attractions[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	a.TrafficCount = existing.TrafficCount
	r.attractions[a.ID] = a
	return nil
}

func (r *memAttractionRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attractions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.attractions, id)
	return nil
}

func (r *memAttractionRepo) IncrementTraffic(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attractions[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	a.TrafficCount++
	r.attractions[id] = a
	return a.TrafficCount, nil
}

func (r *memAttractionRepo) TopByTraffic(ctx context.Context, limit int) ([]domain.Attraction, error) {
	all, _ := r.List(ctx)
	out := make([]domain.Attraction, 0, len(all))
	for _, a := range all {
		if a.TrafficCount > 0 {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TrafficCount > out[j].TrafficCount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memAttractionRepo) TotalTraffic(ctx context.Context) (int64, error) {
	all, _ := r.List(ctx)
	var total int64
	for _, a := range all {
		total += a.TrafficCount
	}
	return total, nil
}

type memTripRepo struct {
	mu          sync.Mutex
	nextID      int64
	drafts      map[int64]domain.TripDraft
	attractions *memAttractionRepo
}

func newMemTripRepo(attractions *memAttractionRepo) *memTripRepo {
	return &memTripRepo{drafts: make(map[int64]domain.TripDraft), attractions: attractions}
}

func (r *memTripRepo) Create(_ context.Context, draft domain.TripDraft) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.drafts[r.nextID] = draft
	return r.nextID, nil
}

func (r *memTripRepo) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	r.mu.Lock()
	draft, ok := r.drafts[id]
	r.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	trip := domain.Trip{ID: id, Name: draft.Name, Days: draft.Days, Attractions: []domain.Attraction{}}
	for _, aid := range draft.AttractionIDs {
		a, err := r.attractions.GetByID(ctx, aid)
		if err != nil {
			return nil, err
		}
		trip.Attractions = append(trip.Attractions, *a)
	}
	return &trip, nil
}

func (r *memTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	r.mu.Lock()
	ids := make([]int64, 0, len(r.drafts))
	for id := range r.drafts {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	trips := make([]domain.Trip, 0, len(ids))
	for _, id := range ids {
		trip, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *trip)
	}
	return trips, nil
}

func (r *memTripRepo) Replace(_ context.Context, id int64, draft domain.TripDraft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drafts[id]; !ok {
		return repository.ErrNotFound
	}
	r.drafts[id] = draft
	return nil
}

func (r *memTripRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drafts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.drafts, id)
	return nil
}

type memReviewRepo struct {
	mu      sync.Mutex
	reviews []domain.Review
}

func (r *memReviewRepo) Create(_ context.Context, review domain.Review) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review.ID = int64(len(r.reviews) + 1)
	r.reviews = append(r.reviews, review)
	return review.ID, nil
}

func (r *memReviewRepo) ListByAttraction(_ context.Context, attractionID int64) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Review, 0)
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if r.reviews[i].AttractionID == attractionID {
			out = append(out, r.reviews[i])
		}
	}
	return out, nil
}

type memBlacklistRepo struct {
	mu        sync.Mutex
	entries   map[string]domain.BlacklistEntry
	findCalls int
	findErr   error
	deleteErr error
}

func newMemBlacklistRepo() *memBlacklistRepo {
	return &memBlacklistRepo{entries: make(map[string]domain.BlacklistEntry)}
}

func (r *memBlacklistRepo) FindByToken(_ context.Context, token string) (*domain.BlacklistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	if r.findErr != nil {
		return nil, r.findErr
	}
	entry, ok := r.entries[token]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (r *memBlacklistRepo) Create(_ context.Context, entry domain.BlacklistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[entry.Token]; ok {
		return nil
	}
	entry.ID = int64(len(r.entries) + 1)
	r.entries[entry.Token] = entry
	return nil
}

func (r *memBlacklistRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	var removed int64
	for token, entry := range r.entries {
		if entry.IsExpired(before) {
			delete(r.entries, token)
			removed++
		}
	}
	return removed, nil
}

type memBlacklistCache struct {
	mu      sync.Mutex
	entries map[string]time.Time
	err     error
}

func newMemBlacklistCache() *memBlacklistCache {
	return &memBlacklistCache{entries: make(map[string]time.Time)}
}

func (c *memBlacklistCache) Remember(_ context.Context, token string, expiresAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.entries[token] = expiresAt
	return nil
}

func (c *memBlacklistCache) Contains(_ context.Context, token string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	_, ok := c.entries[token]
	return ok, nil
}

type recordingPublisher struct {
	mu         sync.Mutex
	registered []domain.UserRegisteredEvent
	loggedOut  []domain.UserLoggedOutEvent
	visited    []domain.AttractionVisitedEvent
	err        error
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, event)
	return p.err
}

func (p *recordingPublisher) PublishUserLoggedOut(_ context.Context, event domain.UserLoggedOutEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loggedOut = append(p.loggedOut, event)
	return p.err
}

func (p *recordingPublisher) PublishAttractionVisited(_ context.Context, event domain.AttractionVisitedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visited = append(p.visited, event)
	return p.err
}

var errBoom = errors.New("boom")
