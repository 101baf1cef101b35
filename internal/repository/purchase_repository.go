package repository

import (
	"context"
	"database/sql"
	"fmt"

	"mall-api/internal/domain"
)

// PurchaseRepository defines the interface for purchase record data access.
// Records are append-only: there is no update or delete path.
type PurchaseRepository interface {
	Create(ctx context.Context, record *domain.PurchaseRecord) error
	ListByUser(ctx context.Context, userName string) ([]*domain.PurchaseRecord, error)
}

type purchaseRepository struct {
	db *sql.DB
}

// NewPurchaseRepository creates a new instance of PurchaseRepository
func NewPurchaseRepository(db *sql.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

// Create appends a purchase record. Product and user names are stored by
// value; no existence check is made against either collection.
func (r *purchaseRepository) Create(ctx context.Context, record *domain.PurchaseRecord) error {
	query := `
		INSERT INTO purchase_records (id, product_name, user_name, purchase_time)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.ProductName,
		record.UserName,
		record.PurchaseTime,
	)

	if err != nil {
		return fmt.Errorf("failed to create purchase record: %w", err)
	}

	return nil
}

// ListByUser retrieves all purchase records for the given user name
func (r *purchaseRepository) ListByUser(ctx context.Context, userName string) ([]*domain.PurchaseRecord, error) {
	query := `
		SELECT id, product_name, user_name, purchase_time
		FROM purchase_records
		WHERE user_name = $1
		ORDER BY purchase_time ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userName)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase records: %w", err)
	}
	defer rows.Close()

	records := []*domain.PurchaseRecord{}
	for rows.Next() {
		record := &domain.PurchaseRecord{}
		err := rows.Scan(
			&record.ID,
			&record.ProductName,
			&record.UserName,
			&record.PurchaseTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase record: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase records: %w", err)
	}

	return records, nil
}
