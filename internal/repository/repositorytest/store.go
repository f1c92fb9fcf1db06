// Package repositorytest provides in-memory repository implementations for
// tests. The store emulates the constraints the database enforces in
// production: unique emails, unique product serials, and cascade deletion of
// owned rows.
package repositorytest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/stockroom/catalog-service/internal/domain"
	"github.com/stockroom/catalog-service/internal/repository"
)

// Store backs fake user, product and key repositories with shared state.
type Store struct {
	mu       sync.Mutex
	users    map[int64]*domain.User
	products map[int64]*domain.Product
	keys     map[int64]*domain.APIKey
	nextID   int64

	// ForceUserCreateDuplicate makes the next user insert fail with
	// ErrDuplicate even when no matching email exists, simulating a
	// concurrent insert winning the race between pre-check and insert.
	ForceUserCreateDuplicate bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[int64]*domain.User),
		products: make(map[int64]*domain.Product),
		keys:     make(map[int64]*domain.APIKey),
	}
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Products returns the product repository view.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s} }

// Keys returns the key repository view.
func (s *Store) Keys() repository.KeyRepository { return &keyRepo{s} }

// RemoveUserRow deletes a user row directly, bypassing cascades. Useful for
// simulating a row disappearing underneath a cached profile.
func (s *Store) RemoveUserRow(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *Store) allocID() int64 {
	s.nextID++
	return s.nextID
}

type userRepo struct{ store *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ForceUserCreateDuplicate {
		s.ForceUserCreateDuplicate = false
		return fmt.Errorf("email %q: %w", user.Email, repository.ErrDuplicate)
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return fmt.Errorf("email %q: %w", user.Email, repository.ErrDuplicate)
		}
	}

	user.ID = s.allocID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	for _, existing := range s.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return fmt.Errorf("email %q: %w", user.Email, repository.ErrDuplicate)
		}
	}
	user.UpdatedAt = time.Now()
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (r *userRepo) Delete(_ context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.users, id)
	// cascade, as the schema's foreign keys would
	for kid, key := range s.keys {
		if key.UserID == id {
			delete(s.keys, kid)
		}
	}
	for pid, product := range s.products {
		if product.UserID == id {
			delete(s.products, pid)
		}
	}
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *userRepo) List(_ context.Context) ([]domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]domain.User, 0, len(s.users))
	for id := int64(1); id <= s.nextID; id++ {
		if user, ok := s.users[id]; ok {
			users = append(users, *user)
		}
	}
	return users, nil
}

type productRepo struct{ store *Store }

func (r *productRepo) Create(_ context.Context, product *domain.Product) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if existing.SSN == product.SSN {
			return fmt.Errorf("ssn %q: %w", product.SSN, repository.ErrDuplicate)
		}
	}

	product.ID = s.allocID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	clone := *product
	s.products[product.ID] = &clone
	return nil
}

func (r *productRepo) Update(_ context.Context, product *domain.Product) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	for _, existing := range s.products {
		if existing.ID != product.ID && existing.SSN == product.SSN {
			return fmt.Errorf("ssn %q: %w", product.SSN, repository.ErrDuplicate)
		}
	}
	product.UpdatedAt = time.Now()
	clone := *product
	s.products[product.ID] = &clone
	return nil
}

func (r *productRepo) Delete(_ context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.products, id)
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id int64) (*repository.ProductWithOwner, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s.productWithOwnerLocked(product), nil
}

func (r *productRepo) List(_ context.Context) ([]repository.ProductWithOwner, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]repository.ProductWithOwner, 0, len(s.products))
	for id := int64(1); id <= s.nextID; id++ {
		if product, ok := s.products[id]; ok {
			rows = append(rows, *s.productWithOwnerLocked(product))
		}
	}
	return rows, nil
}

func (r *productRepo) ListByUser(_ context.Context, userID int64) ([]repository.ProductSummary, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var summaries []repository.ProductSummary
	for id := int64(1); id <= s.nextID; id++ {
		if product, ok := s.products[id]; ok && product.UserID == userID {
			summaries = append(summaries, repository.ProductSummary{
				ID:   product.ID,
				Name: product.Name,
				Type: product.Type,
				SSN:  product.SSN,
			})
		}
	}
	return summaries, nil
}

func (s *Store) productWithOwnerLocked(product *domain.Product) *repository.ProductWithOwner {
	row := repository.ProductWithOwner{Product: *product}
	if owner, ok := s.users[product.UserID]; ok {
		row.Owner = repository.Owner{ID: owner.ID, Name: owner.Name}
	}
	return &row
}

type keyRepo struct{ store *Store }

func (r *keyRepo) Create(_ context.Context, key *domain.APIKey) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.keys {
		if existing.Data == key.Data {
			return fmt.Errorf("key material: %w", repository.ErrDuplicate)
		}
	}

	key.ID = s.allocID()
	key.Requests = 0
	key.CreatedAt = time.Now()
	key.UpdatedAt = key.CreatedAt
	clone := *key
	s.keys[key.ID] = &clone
	return nil
}

func (r *keyRepo) Delete(_ context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.keys, id)
	return nil
}

func (r *keyRepo) List(_ context.Context) ([]repository.KeyWithOwner, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]repository.KeyWithOwner, 0, len(s.keys))
	for id := int64(1); id <= s.nextID; id++ {
		if key, ok := s.keys[id]; ok {
			row := repository.KeyWithOwner{APIKey: *key}
			if owner, ok := s.users[key.UserID]; ok {
				row.Owner = repository.Owner{ID: owner.ID, Name: owner.Name}
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *keyRepo) ListByUser(_ context.Context, userID int64) ([]repository.KeySummary, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var summaries []repository.KeySummary
	for id := int64(1); id <= s.nextID; id++ {
		if key, ok := s.keys[id]; ok && key.UserID == userID {
			summaries = append(summaries, repository.KeySummary{
				ID:        key.ID,
				Requests:  key.Requests,
				CreatedAt: key.CreatedAt,
			})
		}
	}
	return summaries, nil
}
