package api

import (
	"context"
	"sync"
	"time"

	"github.com/freshproduce/marketplace/internal/core/domain"
	"github.com/freshproduce/marketplace/internal/core/ports"
)

// table is an insertion-ordered in-memory collection with soft deletes.
type table[T any] struct {
	mu        sync.Mutex
	rows      map[string]*T
	order     []string
	deletedAt func(*T) **time.Time
}

func newTable[T any](deletedAt func(*T) **time.Time) *table[T] {
	return &table[T]{rows: make(map[string]*T), deletedAt: deletedAt}
}

func (t *table[T]) deleted(row *T) *time.Time {
	return *t.deletedAt(row)
}

func (t *table[T]) insert(id string, row T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[id] = &row
	t.order = append(t.order, id)
}

func (t *table[T]) get(id string, match func(*T) bool) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok || t.deleted(row) != nil || (match != nil && !match(row)) {
		return nil, domain.ErrNotFound
	}
	c := *row
	return &c, nil
}

func (t *table[T]) list(page domain.Page, match func(*T) bool) ([]*T, int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var all []*T
	for _, id := range t.order {
		row, ok := t.rows[id]
		if !ok || t.deleted(row) != nil || (match != nil && !match(row)) {
			continue
		}
		c := *row
		all = append(all, &c)
	}
	start := int(page.Offset())
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all))
}

func (t *table[T]) replace(id string, row T, match func(*T) bool) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	existing, ok := t.rows[id]
	if !ok || t.deleted(existing) != nil || (match != nil && !match(existing)) {
		return nil, domain.ErrNotFound
	}
	t.rows[id] = &row
	c := row
	return &c, nil
}

func (t *table[T]) softDelete(id string, at time.Time, match func(*T) bool) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok || t.deleted(row) != nil || (match != nil && !match(row)) {
		return nil, domain.ErrNotFound
	}
	*t.deletedAt(row) = &at
	c := *row
	return &c, nil
}

func (t *table[T]) remove(id string, match func(*T) bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok || (match != nil && !match(row)) {
		return domain.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

type memUsers struct{ t *table[domain.User] }

func newMemUsers() *memUsers {
	return &memUsers{t: newTable(func(u *domain.User) **time.Time { return &u.DeletedAt })}
}

func hasRole(role domain.Role) func(*domain.User) bool {
	return func(u *domain.User) bool { return u.Role == role }
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	if _, err := m.findEmail(u.Email, nil); err == nil {
		return domain.ErrDuplicateEmail
	}
	m.t.insert(u.ID, *u)
	return nil
}

func (m *memUsers) findEmail(email string, match func(*domain.User) bool) (*domain.User, error) {
	m.t.mu.Lock()
	defer m.t.mu.Unlock()
	for _, u := range m.t.rows {
		if u.DeletedAt == nil && u.Email == email && (match == nil || match(u)) {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, role domain.Role, id string) (*domain.User, error) {
	return m.t.get(id, hasRole(role))
}

func (m *memUsers) FindByEmail(_ context.Context, role domain.Role, email string) (*domain.User, error) {
	return m.findEmail(email, hasRole(role))
}

func (m *memUsers) List(_ context.Context, role domain.Role, page domain.Page) ([]*domain.User, int64, error) {
	users, total := m.t.list(page, hasRole(role))
	return users, total, nil
}

func (m *memUsers) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	if other, err := m.findEmail(u.Email, nil); err == nil && other.ID != u.ID {
		return nil, domain.ErrDuplicateEmail
	}
	current, err := m.t.get(u.ID, hasRole(u.Role))
	if err != nil {
		return nil, err
	}
	next := *u
	next.CreatedAt = current.CreatedAt
	if next.PasswordHash == "" {
		next.PasswordHash = current.PasswordHash
	}
	if next.ProfileImage == "" {
		next.ProfileImage = current.ProfileImage
	}
	return m.t.replace(u.ID, next, hasRole(u.Role))
}

func (m *memUsers) SoftDelete(_ context.Context, role domain.Role, id string, at time.Time) (*domain.User, error) {
	return m.t.softDelete(id, at, hasRole(role))
}

func (m *memUsers) HardDelete(_ context.Context, role domain.Role, id string) error {
	return m.t.remove(id, hasRole(role))
}

type memProducts struct{ t *table[domain.Product] }

func newMemProducts() *memProducts {
	return &memProducts{t: newTable(func(p *domain.Product) **time.Time { return &p.DeletedAt })}
}

func (m *memProducts) Create(_ context.Context, p *domain.Product) error {
	m.t.insert(p.ID, *p)
	return nil
}

func (m *memProducts) FindByID(_ context.Context, id string) (*domain.Product, error) {
	return m.t.get(id, nil)
}

func (m *memProducts) List(_ context.Context, f ports.ProductFilter) ([]*domain.Product, int64, error) {
	var match func(*domain.Product) bool
	if f.Category != "" {
		match = func(p *domain.Product) bool { return p.Category == f.Category }
	}
	products, total := m.t.list(f.Page, match)
	return products, total, nil
}

func (m *memProducts) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	current, err := m.t.get(p.ID, nil)
	if err != nil {
		return nil, err
	}
	next := *p
	next.CreatedAt = current.CreatedAt
	return m.t.replace(p.ID, next, nil)
}

func (m *memProducts) SoftDelete(_ context.Context, id string, at time.Time) (*domain.Product, error) {
	return m.t.softDelete(id, at, nil)
}

func (m *memProducts) HardDelete(_ context.Context, id string) error {
	return m.t.remove(id, nil)
}

type memOrders struct{ t *table[domain.Order] }

func newMemOrders() *memOrders {
	return &memOrders{t: newTable(func(o *domain.Order) **time.Time { return &o.DeletedAt })}
}

func (m *memOrders) Create(_ context.Context, o *domain.Order) error {
	m.t.insert(o.ID, *o)
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id string) (*domain.Order, error) {
	return m.t.get(id, nil)
}

func (m *memOrders) List(_ context.Context, page domain.Page) ([]*domain.Order, int64, error) {
	orders, total := m.t.list(page, nil)
	return orders, total, nil
}

func (m *memOrders) Update(_ context.Context, o *domain.Order) (*domain.Order, error) {
	current, err := m.t.get(o.ID, nil)
	if err != nil {
		return nil, err
	}
	next := *o
	next.CreatedAt = current.CreatedAt
	return m.t.replace(o.ID, next, nil)
}

func (m *memOrders) SoftDelete(_ context.Context, id string, at time.Time) (*domain.Order, error) {
	return m.t.softDelete(id, at, nil)
}

func (m *memOrders) HardDelete(_ context.Context, id string) error {
	return m.t.remove(id, nil)
}
