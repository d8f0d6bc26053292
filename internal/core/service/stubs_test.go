package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/freshproduce/marketplace/internal/core/domain"
	"github.com/freshproduce/marketplace/internal/core/ports"
	"github.com/freshproduce/marketplace/internal/pkg/validation"
)

// ---------------------------------------------------------------------------
// In-memory repositories mirroring the Mongo filters (active rows only,
// role-scoped users, conditional updates).
// ---------------------------------------------------------------------------

var errStoreDown = errors.New("store unavailable")

type memUserRepo struct {
	mu      sync.Mutex
	rows    map[string]*domain.User
	order   []string
	failAll error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{rows: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	for _, existing := range r.rows {
		if existing.Active() && existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	r.rows[u.ID] = cloneUser(u)
	r.order = append(r.order, u.ID)
	return nil
}

func (r *memUserRepo) active(role domain.Role, id string) (*domain.User, bool) {
	u, ok := r.rows[id]
	if !ok || !u.Active() || u.Role != role {
		return nil, false
	}
	return u, true
}

func (r *memUserRepo) FindByID(_ context.Context, role domain.Role, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	u, ok := r.active(role, id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, role domain.Role, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	for _, u := range r.rows {
		if u.Active() && u.Role == role && u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) List(_ context.Context, role domain.Role, page domain.Page) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, 0, r.failAll
	}
	var matched []*domain.User
	for _, id := range r.order {
		if u, ok := r.active(role, id); ok {
			matched = append(matched, cloneUser(u))
		}
	}
	return paginate(matched, page), int64(len(matched)), nil
}

func (r *memUserRepo) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	existing, ok := r.active(u.Role, u.ID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, other := range r.rows {
		if other.ID != u.ID && other.Active() && other.Email == u.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	existing.Name = u.Name
	existing.Email = u.Email
	existing.FarmName = u.FarmName
	existing.Location = u.Location
	existing.UpdatedAt = u.UpdatedAt
	if u.PasswordHash != "" {
		existing.PasswordHash = u.PasswordHash
	}
	if u.ProfileImage != "" {
		existing.ProfileImage = u.ProfileImage
	}
	return cloneUser(existing), nil
}

func (r *memUserRepo) SoftDelete(_ context.Context, role domain.Role, id string, at time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	u, ok := r.active(role, id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.DeletedAt = &at
	return cloneUser(u), nil
}

func (r *memUserRepo) HardDelete(_ context.Context, role domain.Role, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	u, ok := r.rows[id]
	if !ok || u.Role != role {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

type memProductRepo struct {
	mu      sync.Mutex
	rows    map[string]*domain.Product
	order   []string
	failAll error
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{rows: make(map[string]*domain.Product)}
}

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	return &c
}

func (r *memProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	r.rows[p.ID] = cloneProduct(p)
	r.order = append(r.order, p.ID)
	return nil
}

func (r *memProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	p, ok := r.rows[id]
	if !ok || p.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (r *memProductRepo) List(_ context.Context, f ports.ProductFilter) ([]*domain.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, 0, r.failAll
	}
	var matched []*domain.Product
	for _, id := range r.order {
		p, ok := r.rows[id]
		if !ok || p.DeletedAt != nil {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		matched = append(matched, cloneProduct(p))
	}
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (r *memProductRepo) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[p.ID]
	if !ok || existing.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	updated := cloneProduct(p)
	updated.CreatedAt = existing.CreatedAt
	r.rows[p.ID] = updated
	return cloneProduct(updated), nil
}

func (r *memProductRepo) SoftDelete(_ context.Context, id string, at time.Time) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok || p.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	p.DeletedAt = &at
	return cloneProduct(p), nil
}

func (r *memProductRepo) HardDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

type memOrderRepo struct {
	mu    sync.Mutex
	rows  map[string]*domain.Order
	order []string
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{rows: make(map[string]*domain.Order)}
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	return &c
}

func (r *memOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[o.ID] = cloneOrder(o)
	r.order = append(r.order, o.ID)
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[id]
	if !ok || o.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *memOrderRepo) List(_ context.Context, page domain.Page) ([]*domain.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Order
	for _, id := range r.order {
		if o, ok := r.rows[id]; ok && o.DeletedAt == nil {
			matched = append(matched, cloneOrder(o))
		}
	}
	return paginate(matched, page), int64(len(matched)), nil
}

func (r *memOrderRepo) Update(_ context.Context, o *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[o.ID]
	if !ok || existing.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	updated := cloneOrder(o)
	updated.CreatedAt = existing.CreatedAt
	r.rows[o.ID] = updated
	return cloneOrder(updated), nil
}

func (r *memOrderRepo) SoftDelete(_ context.Context, id string, at time.Time) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[id]
	if !ok || o.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	o.DeletedAt = &at
	return cloneOrder(o), nil
}

func (r *memOrderRepo) HardDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func paginate[T any](items []T, page domain.Page) []T {
	start := int(page.Offset())
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ---------------------------------------------------------------------------
// Idempotency and notifier stubs
// ---------------------------------------------------------------------------

// memIdempotency keeps reservations in a map. A key mapped to "" is
// reserved but not yet completed.
type memIdempotency struct {
	mu         sync.Mutex
	keys       map[string]string
	reserveErr error
	released   []string
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{keys: make(map[string]string)}
}

func (m *memIdempotency) Reserve(_ context.Context, key string) (bool, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reserveErr != nil {
		return false, "", m.reserveErr
	}
	if id, taken := m.keys[key]; taken {
		return false, id, nil
	}
	m.keys[key] = ""
	return true, "", nil
}

func (m *memIdempotency) Complete(_ context.Context, key, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = orderID
	return nil
}

func (m *memIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	m.released = append(m.released, key)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	orders []*domain.Order
}

func (n *recordingNotifier) OrderPlaced(order *domain.Order, _ *domain.Product) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testCredentials(t *testing.T) *CredentialService {
	t.Helper()
	creds, err := NewCredentialService("test-secret", time.Hour, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewCredentialService: %v", err)
	}
	return creds
}

func mustPage(t *testing.T, number, limit int) domain.Page {
	t.Helper()
	p, err := domain.NewPage(number, limit)
	if err != nil {
		t.Fatalf("NewPage(%d, %d): %v", number, limit, err)
	}
	return p
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func productIDs(items []*domain.Product) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	sort.Strings(out)
	return out
}

var discardLogger = zerolog.Nop()

var testValidator = validation.New()

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
