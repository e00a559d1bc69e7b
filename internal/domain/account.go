/**
 * @description
 * This file defines the core domain model for a bookkeeping Account. An account
 * belongs to exactly one user and carries a currency, an optional image and a
 * balance maintained by the transaction ledger.
 *
 * @notes
 * - `DeletedAt` implements the trash lifecycle: nil means active, non-nil means
 *   the account is soft-deleted and hidden from default listings.
 * - Ownership (`OwnerID`) is set at creation and never changes afterwards.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a user's monetary account (wallet, bank account, cash box).
type Account struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Name      string     `json:"name"`
	Currency  string     `json:"currency"`
	ImagePath *string    `json:"image_path,omitempty"`
	Balance   int64      `json:"balance"` // Stored in the currency's minor unit
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Trashed reports whether the account is soft-deleted.
func (a *Account) Trashed() bool {
	return a.DeletedAt != nil
}
