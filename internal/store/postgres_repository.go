/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains all the SQL needed for the account lifecycle
 * (create, update, trash, restore, permanent delete), owner-scoped listings
 * and the transaction/category read models.
 *
 * @dependencies
 * - context, fmt, strings: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duitku/account-service/internal/domain"
)

const accountColumns = `id, owner_id, name, currency, image_path, balance, deleted_at, created_at, updated_at`

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.OwnerID,
		&account.Name,
		&account.Currency,
		&account.ImagePath,
		&account.Balance,
		&account.DeletedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindUserIDByAuthSubject resolves the internal UUID from the identity
// provider's token subject. Users are provisioned by the onboarding flow;
// this service only reads them.
func (r *PostgresRepository) FindUserIDByAuthSubject(ctx context.Context, subject string) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, "SELECT id FROM users WHERE auth_subject = $1", subject).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return id, nil
}

// CreateAccount inserts a new account record and returns the stored row.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (id, owner_id, name, currency, image_path, balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + accountColumns
	return scanAccount(r.db.QueryRow(ctx, query,
		account.ID,
		account.OwnerID,
		account.Name,
		account.Currency,
		account.ImagePath,
		account.Balance,
	))
}

// FindAccountByID retrieves an account by id, including trashed rows. Callers
// decide whether a trashed row is acceptable for the operation at hand.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRow(ctx, query, accountID))
}

// UpdateAccount applies the non-nil fields of params to an active account.
func (r *PostgresRepository) UpdateAccount(ctx context.Context, accountID uuid.UUID, params UpdateAccountParams) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET
			name = COALESCE($1, name),
			currency = COALESCE($2, currency),
			image_path = COALESCE($3, image_path),
			updated_at = NOW()
		WHERE id = $4 AND deleted_at IS NULL
		RETURNING ` + accountColumns
	return scanAccount(r.db.QueryRow(ctx, query,
		params.Name,
		params.Currency,
		params.ImagePath,
		accountID,
	))
}

// SoftDeleteAccount stamps deleted_at, moving the account to the trash. A
// second call simply re-stamps the timestamp.
func (r *PostgresRepository) SoftDeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	query := `UPDATE accounts SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1`
	result, err := r.db.Exec(ctx, query, accountID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// RestoreAccount clears deleted_at, returning a trashed account to the
// active listing.
func (r *PostgresRepository) RestoreAccount(ctx context.Context, accountID uuid.UUID) error {
	query := `UPDATE accounts SET deleted_at = NULL, updated_at = NOW() WHERE id = $1`
	result, err := r.db.Exec(ctx, query, accountID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// HardDeleteAccount removes the record irreversibly. Transactions referencing
// the account are removed by the ON DELETE CASCADE constraint.
func (r *PostgresRepository) HardDeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	result, err := r.db.Exec(ctx, "DELETE FROM accounts WHERE id = $1", accountID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// accountListQuery builds the owner-scoped listing for either the active set
// or the trash. Ordered by creation time, id breaking ties, so the listing is
// stable and matches the order accounts were created in.
func accountListQuery(trashed bool) string {
	predicate := "deleted_at IS NULL"
	if trashed {
		predicate = "deleted_at IS NOT NULL"
	}
	return `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 AND ` + predicate + ` ORDER BY created_at ASC, id ASC`
}

// ListAccountsByOwner retrieves an owner's accounts, either the active set or
// the trash, in creation order.
func (r *PostgresRepository) ListAccountsByOwner(ctx context.Context, ownerID uuid.UUID, trashed bool) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, accountListQuery(trashed), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		err := rows.Scan(
			&account.ID,
			&account.OwnerID,
			&account.Name,
			&account.Currency,
			&account.ImagePath,
			&account.Balance,
			&account.DeletedAt,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// clampTransactionPage normalizes the requested page: a non-positive limit
// falls back to the default page size of 10, the limit is capped at 100, and
// negative offsets read from the start.
func clampTransactionPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListTransactionsByAccount retrieves a page of ledger entries for one
// account, newest first, optionally filtered by description substring.
func (r *PostgresRepository) ListTransactionsByAccount(ctx context.Context, accountID uuid.UUID, opts domain.TransactionListOptions) ([]domain.Transaction, error) {
	limit, offset := clampTransactionPage(opts.Limit, opts.Offset)

	query := `
		SELECT id, account_id, category_id, amount, COALESCE(description, '') AS description, created_at, updated_at
		FROM transactions
		WHERE account_id = $1
	`
	args := []interface{}{accountID}
	argPos := 2
	if search := strings.TrimSpace(opts.Search); search != "" {
		query += fmt.Sprintf(" AND description ILIKE '%%' || $%d || '%%'", argPos)
		args = append(args, search)
		argPos++
	}
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		var tx domain.Transaction
		err := rows.Scan(&tx.ID, &tx.AccountID, &tx.CategoryID, &tx.Amount, &tx.Description, &tx.CreatedAt, &tx.UpdatedAt)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// ListCategoriesByOwner retrieves all transaction categories for a user.
func (r *PostgresRepository) ListCategoriesByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Category, error) {
	query := `
		SELECT id, owner_id, name, created_at
		FROM transaction_categories
		WHERE owner_id = $1
		ORDER BY name ASC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.OwnerID, &category.Name, &category.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
