// internal/domain/user.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a bot user. ID is the stable chat account id.
type User struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Balance   decimal.Decimal `db:"balance" json:"balance"` // NUMERIC(12, 2), never negative
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// NewUser creates a new User instance with a zero balance.
func NewUser(id int64, name string) *User {
	return &User{
		ID:        id,
		Name:      name,
		Balance:   decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}
}
