package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a registered shopper or administrator.
// Username is the natural key; the UUID is internal only.
type Account struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	FullName     string    `json:"full_name" db:"full_name"`
	Address      string    `json:"address,omitempty" db:"address"`
	PaymentInfo  string    `json:"payment_info,omitempty" db:"payment_info"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RoleAdmin is the role granted to catalog managers.
const RoleAdmin = "admin"

// IsAdmin reports whether the account may manage the catalog.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Session represents a persisted refresh token for an account.
type Session struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
}
