package domain

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseRecord is an append-only log entry linking a product name and a
// user name at a point in time. Both references are by value: no foreign
// keys, records survive product deletion.
type PurchaseRecord struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ProductName  string    `json:"product_name" db:"product_name"`
	UserName     string    `json:"user_name" db:"user_name"`
	PurchaseTime time.Time `json:"purchase_time" db:"purchase_time"`
}
