package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crewpay/crewpay/internal/vendorpkg"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id int64) (*vendor.Vendor, error) {
	query := `SELECT id, name, is_active FROM vendors WHERE id = $1`

	var v vendor.Vendor

	err := s.db.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Name, &v.IsActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, vendor.ErrNotFound
		}

		return nil, fmt.Errorf("getting vendor: %w", err)
	}

	return &v, nil
}
