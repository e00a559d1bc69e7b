/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access operations required by the account-service. Keeping the interface
 * separate from the PostgreSQL implementation decouples the business logic
 * from the database and lets tests substitute lightweight stubs.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/duitku/account-service/internal/domain"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAccountNotFound = errors.New("account not found")
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Resolve the internal UUID from the identity provider's token subject.
	FindUserIDByAuthSubject(ctx context.Context, subject string) (string, error)

	// Account lifecycle. FindAccountByID returns trashed rows too so that
	// restore and permanent delete can authorize against them.
	CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	UpdateAccount(ctx context.Context, accountID uuid.UUID, params UpdateAccountParams) (*domain.Account, error)
	SoftDeleteAccount(ctx context.Context, accountID uuid.UUID) error
	RestoreAccount(ctx context.Context, accountID uuid.UUID) error
	HardDeleteAccount(ctx context.Context, accountID uuid.UUID) error
	ListAccountsByOwner(ctx context.Context, ownerID uuid.UUID, trashed bool) ([]domain.Account, error)

	// Account detail and category listing.
	ListTransactionsByAccount(ctx context.Context, accountID uuid.UUID, opts domain.TransactionListOptions) ([]domain.Transaction, error)
	ListCategoriesByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Category, error)
}

// UpdateAccountParams carries the mutable account fields. Nil pointers leave
// the stored value untouched.
type UpdateAccountParams struct {
	Name      *string
	Currency  *string
	ImagePath *string
}
