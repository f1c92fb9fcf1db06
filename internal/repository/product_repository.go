package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom/catalog-service/internal/domain"
)

// ProductWithOwner pairs a product with its owner projection.
type ProductWithOwner struct {
	domain.Product
	Owner Owner
}

// ProductSummary is the reduced projection embedded in user listings.
type ProductSummary struct {
	ID   int64
	Name string
	Type domain.ProductType
	SSN  string
}

// ProductRepository encapsulates product persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*ProductWithOwner, error)
	List(ctx context.Context) ([]ProductWithOwner, error)
	ListByUser(ctx context.Context, userID int64) ([]ProductSummary, error)
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (type, name, ssn, user_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		product.Type,
		product.Name,
		product.SSN,
		product.UserID,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("ssn %q: %w", product.SSN, ErrDuplicate)
	}
	return err
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products SET type=$1, name=$2, ssn=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		product.Type,
		product.Name,
		product.SSN,
		product.ID,
	).Scan(&product.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("ssn %q: %w", product.SSN, ErrDuplicate)
	}
	return err
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM products WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*ProductWithOwner, error) {
	const query = `
        SELECT p.id, p.type, p.name, p.ssn, p.user_id, p.created_at, p.updated_at, u.id, u.name
        FROM products p JOIN users u ON u.id = p.user_id
        WHERE p.id=$1`

	var row ProductWithOwner
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&row.ID,
		&row.Type,
		&row.Name,
		&row.SSN,
		&row.UserID,
		&row.CreatedAt,
		&row.UpdatedAt,
		&row.Owner.ID,
		&row.Owner.Name,
	); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *productRepository) List(ctx context.Context) ([]ProductWithOwner, error) {
	const query = `
        SELECT p.id, p.type, p.name, p.ssn, p.user_id, p.created_at, p.updated_at, u.id, u.name
        FROM products p JOIN users u ON u.id = p.user_id
        ORDER BY p.id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ProductWithOwner
	for rows.Next() {
		var row ProductWithOwner
		if err := rows.Scan(
			&row.ID,
			&row.Type,
			&row.Name,
			&row.SSN,
			&row.UserID,
			&row.CreatedAt,
			&row.UpdatedAt,
			&row.Owner.ID,
			&row.Owner.Name,
		); err != nil {
			return nil, err
		}
		products = append(products, row)
	}
	return products, rows.Err()
}

func (r *productRepository) ListByUser(ctx context.Context, userID int64) ([]ProductSummary, error) {
	const query = `
        SELECT id, name, type, ssn FROM products WHERE user_id=$1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []ProductSummary
	for rows.Next() {
		var s ProductSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Type, &s.SSN); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
