// Package postgres stores the catalog in a products table.
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/ribbonbot/internal/domain"
)

// Store persists catalog snapshots into Postgres. Save rewrites the whole
// table in one transaction: the catalog is small and the repository already
// serializes writers, so snapshot semantics beat row-level bookkeeping here.
type Store struct {
	db *sqlx.DB
}

// New creates a Store over an established sqlx connection.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type productRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	PhotoRef    string `db:"photo_ref"`
	Position    int    `db:"position"`
}

// Load selects all products ordered by display position.
func (s *Store) Load(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, name, description, photo_ref, position FROM products ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	products := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, domain.Product{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			PhotoRef:    r.PhotoRef,
		})
	}
	return products, nil
}

// Save replaces the stored snapshot with the given one.
func (s *Store) Save(ctx context.Context, products []domain.Product) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	for i, p := range products {
		row := productRow{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			PhotoRef:    p.PhotoRef,
			Position:    i,
		}
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO products (id, name, description, photo_ref, position)
			 VALUES (:id, :name, :description, :photo_ref, :position)`, row)
		if err != nil {
			return fmt.Errorf("insert product %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
