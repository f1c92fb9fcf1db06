package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom/catalog-service/internal/domain"
)

// KeyWithOwner pairs an API key with its owner projection.
type KeyWithOwner struct {
	domain.APIKey
	Owner Owner
}

// KeySummary is the reduced projection embedded in user listings. The key
// material itself is never included; it is shown once at generation time.
type KeySummary struct {
	ID        int64
	Requests  int64
	CreatedAt time.Time
}

// KeyRepository encapsulates API key persistence.
type KeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]KeyWithOwner, error)
	ListByUser(ctx context.Context, userID int64) ([]KeySummary, error)
}

type keyRepository struct {
	pool *pgxpool.Pool
}

// NewKeyRepository instantiates repository.
func NewKeyRepository(pool *pgxpool.Pool) KeyRepository {
	return &keyRepository{pool: pool}
}

func (r *keyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	const query = `
        INSERT INTO keys (data, user_id)
        VALUES ($1, $2)
        RETURNING id, requests, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		key.Data,
		key.UserID,
	).Scan(&key.ID, &key.Requests, &key.CreatedAt, &key.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("key material: %w", ErrDuplicate)
	}
	return err
}

func (r *keyRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM keys WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *keyRepository) List(ctx context.Context) ([]KeyWithOwner, error) {
	const query = `
        SELECT k.id, k.data, k.requests, k.user_id, k.created_at, k.updated_at, u.id, u.name
        FROM keys k JOIN users u ON u.id = k.user_id
        ORDER BY k.id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []KeyWithOwner
	for rows.Next() {
		var row KeyWithOwner
		if err := rows.Scan(
			&row.ID,
			&row.Data,
			&row.Requests,
			&row.UserID,
			&row.CreatedAt,
			&row.UpdatedAt,
			&row.Owner.ID,
			&row.Owner.Name,
		); err != nil {
			return nil, err
		}
		keys = append(keys, row)
	}
	return keys, rows.Err()
}

func (r *keyRepository) ListByUser(ctx context.Context, userID int64) ([]KeySummary, error) {
	const query = `
        SELECT id, requests, created_at FROM keys WHERE user_id=$1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []KeySummary
	for rows.Next() {
		var s KeySummary
		if err := rows.Scan(&s.ID, &s.Requests, &s.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
