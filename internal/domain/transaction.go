/**
 * @description
 * This file defines the read model for ledger transactions as seen from the
 * account detail view. The account-service does not create or mutate
 * transactions; it only lists them per account with optional description
 * search and pagination.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is a single ledger entry recorded against an account.
type Transaction struct {
	ID          uuid.UUID  `json:"id"`
	AccountID   uuid.UUID  `json:"account_id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Amount      int64      `json:"amount"` // Signed, in the account currency's minor unit
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TransactionListOptions controls search and pagination for the account
// detail view. Search matches a case-insensitive substring of the
// transaction description. A Limit of zero or less is promoted to the
// store's default page size.
type TransactionListOptions struct {
	Search string
	Limit  int
	Offset int
}
