/**
 * @description
 * This file contains the core business logic for the account-service. The
 * `Service` struct orchestrates the account lifecycle, coordinating between
 * the database repository, the blob storage backend and the message broker.
 *
 * Key features:
 * - Enforces ownership on every operation that addresses a specific account:
 *   the account is looked up first (404 when absent) and the owner compared
 *   afterwards (403 on mismatch).
 * - Implements the trash lifecycle: soft delete, restore, permanent delete.
 * - Validates account fields against the configured currency set.
 * - Stores uploaded account images and removes superseded blobs best-effort.
 * - Publishes lifecycle events to RabbitMQ for asynchronous processing.
 *
 * @dependencies
 * - context, errors, fmt, io, log, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID generation.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/blobstore, pkg/rabbitmq: For external service communication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/duitku/account-service/internal/domain"
	"github.com/duitku/account-service/internal/store"
	"github.com/duitku/account-service/pkg/blobstore"
	"github.com/duitku/account-service/pkg/rabbitmq"
)

var (
	ErrAccountNameRequired  = errors.New("account name is required")
	ErrCurrencyNotSupported = errors.New("currency is not supported")
	ErrNotAccountOwner      = errors.New("account does not belong to the requesting user")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrUploadRateLimited    = errors.New("too many image uploads, try again later")
)

// UploadRateLimiter limits how often a user may upload account images.
type UploadRateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope string, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// Service provides the core business logic for the account lifecycle.
type Service struct {
	repo            store.Repository
	blobs           blobstore.Store
	eventProducer   rabbitmq.Publisher
	currencies      *CurrencyRegistry
	eventExchange   string
	imagePathPrefix string

	uploadLimiter        UploadRateLimiter
	uploadLimitPerMinute int
}

// NewService creates a new account service instance.
func NewService(
	repo store.Repository,
	blobs blobstore.Store,
	producer rabbitmq.Publisher,
	currencies *CurrencyRegistry,
	eventExchange string,
	imagePathPrefix string,
) *Service {
	return &Service{
		repo:            repo,
		blobs:           blobs,
		eventProducer:   producer,
		currencies:      currencies,
		eventExchange:   eventExchange,
		imagePathPrefix: strings.Trim(imagePathPrefix, "/"),
	}
}

// SetUploadRateLimiter enables distributed image upload rate limiting.
func (s *Service) SetUploadRateLimiter(limiter UploadRateLimiter, perMinute int) {
	s.uploadLimiter = limiter
	s.uploadLimitPerMinute = perMinute
}

// Currencies returns the configured currency set for the create/edit forms.
func (s *Service) Currencies() []Currency {
	return s.currencies.List()
}

// FormattedBalance renders an account's balance per its currency display rules.
func (s *Service) FormattedBalance(account *domain.Account) string {
	return s.currencies.FormatBalance(account.Balance, account.Currency)
}

// ResolveInternalUserID converts an identity provider subject (from a
// validated JWT) into the internal UUID used by our database.
func (s *Service) ResolveInternalUserID(ctx context.Context, subject string) (string, error) {
	return s.repo.FindUserIDByAuthSubject(ctx, subject)
}

// authorizeAccount looks the account up (including trashed rows) and then
// compares ownership. Absent rows yield store.ErrAccountNotFound; foreign
// rows yield ErrNotAccountOwner. Operations restricted to active accounts
// treat trashed rows as absent, before the ownership comparison, so the
// trash never changes what a foreign user can learn about an account id.
func (s *Service) authorizeAccount(ctx context.Context, ownerID, accountID uuid.UUID, includeTrashed bool) (*domain.Account, error) {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !includeTrashed && account.Trashed() {
		return nil, store.ErrAccountNotFound
	}
	if account.OwnerID != ownerID {
		return nil, ErrNotAccountOwner
	}
	return account, nil
}

// CreateAccountParams carries the validated field set for account creation.
type CreateAccountParams struct {
	Name      string
	Currency  string
	ImagePath *string
}

// CreateAccount validates the field set and persists a new active account
// owned by ownerID. The image, if any, has already been stored by the caller.
func (s *Service) CreateAccount(ctx context.Context, ownerID uuid.UUID, params CreateAccountParams) (*domain.Account, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrAccountNameRequired
	}
	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if !s.currencies.Supports(currency) {
		return nil, ErrCurrencyNotSupported
	}

	account, err := s.repo.CreateAccount(ctx, &domain.Account{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Currency:  currency,
		ImagePath: params.ImagePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.publishLifecycleEvent(ctx, account, domain.AccountCreated)
	return account, nil
}

// GetAccount retrieves one active account for its owner.
func (s *Service) GetAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.Account, error) {
	return s.authorizeAccount(ctx, ownerID, accountID, false)
}

// ListAccounts retrieves the owner's active accounts, or the trash when
// trashed is true.
func (s *Service) ListAccounts(ctx context.Context, ownerID uuid.UUID, trashed bool) ([]domain.Account, error) {
	return s.repo.ListAccountsByOwner(ctx, ownerID, trashed)
}

// AccountTransactions returns a page of ledger entries for one of the
// owner's active accounts, with optional description search.
func (s *Service) AccountTransactions(ctx context.Context, ownerID, accountID uuid.UUID, opts domain.TransactionListOptions) ([]domain.Transaction, error) {
	if _, err := s.authorizeAccount(ctx, ownerID, accountID, false); err != nil {
		return nil, err
	}
	return s.repo.ListTransactionsByAccount(ctx, accountID, opts)
}

// ListCategories returns the owner's transaction categories.
func (s *Service) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]domain.Category, error) {
	return s.repo.ListCategoriesByOwner(ctx, ownerID)
}

// UpdateAccountParams carries the mutable fields for an update. Nil pointers
// leave the stored value unchanged.
type UpdateAccountParams struct {
	Name     *string
	Currency *string
}

// UpdateAccount mutates name/currency/image of one of the owner's active
// accounts. When newImagePath replaces an existing image, the superseded blob
// is deleted best-effort after the row update succeeds; a blob-delete failure
// never fails the update.
func (s *Service) UpdateAccount(ctx context.Context, ownerID, accountID uuid.UUID, params UpdateAccountParams, newImagePath *string) (*domain.Account, error) {
	account, err := s.authorizeAccount(ctx, ownerID, accountID, false)
	if err != nil {
		return nil, err
	}

	storeParams := store.UpdateAccountParams{ImagePath: newImagePath}
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, ErrAccountNameRequired
		}
		storeParams.Name = &name
	}
	if params.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*params.Currency))
		if !s.currencies.Supports(currency) {
			return nil, ErrCurrencyNotSupported
		}
		storeParams.Currency = &currency
	}

	updated, err := s.repo.UpdateAccount(ctx, accountID, storeParams)
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	// The row update is authoritative; only now may the old blob go away.
	if newImagePath != nil && account.ImagePath != nil && *account.ImagePath != *newImagePath {
		s.deleteBlobBestEffort(ctx, *account.ImagePath)
	}

	s.publishLifecycleEvent(ctx, updated, domain.AccountUpdated)
	return updated, nil
}

// TrashAccount soft-deletes one of the owner's accounts. Trashing an already
// trashed account simply re-stamps the deletion timestamp.
func (s *Service) TrashAccount(ctx context.Context, ownerID, accountID uuid.UUID) error {
	account, err := s.authorizeAccount(ctx, ownerID, accountID, true)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDeleteAccount(ctx, accountID); err != nil {
		return fmt.Errorf("failed to trash account: %w", err)
	}

	s.publishLifecycleEvent(ctx, account, domain.AccountTrashed)
	return nil
}

// RestoreAccount clears the deletion marker on one of the owner's trashed
// accounts, returning it to the active listing.
func (s *Service) RestoreAccount(ctx context.Context, ownerID, accountID uuid.UUID) error {
	account, err := s.authorizeAccount(ctx, ownerID, accountID, true)
	if err != nil {
		return err
	}
	if err := s.repo.RestoreAccount(ctx, accountID); err != nil {
		return fmt.Errorf("failed to restore account: %w", err)
	}

	s.publishLifecycleEvent(ctx, account, domain.AccountRestored)
	return nil
}

// DeleteAccountPermanently removes the record irreversibly, along with its
// stored image blob. The blob removal is best-effort: the record deletion is
// authoritative and a blob-delete failure never surfaces to the caller.
func (s *Service) DeleteAccountPermanently(ctx context.Context, ownerID, accountID uuid.UUID) error {
	account, err := s.authorizeAccount(ctx, ownerID, accountID, true)
	if err != nil {
		return err
	}
	if err := s.repo.HardDeleteAccount(ctx, accountID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if account.ImagePath != nil {
		s.deleteBlobBestEffort(ctx, *account.ImagePath)
	}

	s.publishLifecycleEvent(ctx, account, domain.AccountDeleted)
	return nil
}

// StoreAccountImage persists an uploaded image and returns the blob
// reference to attach to the account. The stored name is derived from the
// owner and the upload time so concurrent uploads cannot collide across
// users; the original extension is preserved.
func (s *Service) StoreAccountImage(ctx context.Context, ownerID uuid.UUID, originalName string, content io.Reader) (string, error) {
	if !validImageExtension(originalName) {
		return "", ErrUnsupportedImageType
	}

	if s.uploadLimiter != nil && s.uploadLimitPerMinute > 0 {
		count, _, err := s.uploadLimiter.ConsumeRateLimit(ctx, "account_image_upload", ownerID.String(), s.uploadLimitPerMinute, time.Minute)
		if err != nil {
			// Fail open: a limiter outage must not block uploads.
			log.Printf("level=warn component=app msg=\"upload rate limiter unavailable\" owner_id=%s err=%v", ownerID, err)
		} else if count > s.uploadLimitPerMinute {
			return "", ErrUploadRateLimited
		}
	}

	fileName := deriveImageFileName(ownerID, time.Now(), originalName)
	reference, err := s.blobs.Save(ctx, path.Join(s.imagePathPrefix, fileName), content)
	if err != nil {
		return "", fmt.Errorf("failed to store account image: %w", err)
	}
	return reference, nil
}

// DiscardStoredImage removes a stored image blob that never got attached to
// an account, e.g. when the mutation it was uploaded for was rejected.
// Best-effort, like every blob deletion.
func (s *Service) DiscardStoredImage(ctx context.Context, reference string) {
	s.deleteBlobBestEffort(ctx, reference)
}

// deleteBlobBestEffort removes a blob and only logs on failure. The
// surrounding mutation has already succeeded and must not be failed.
func (s *Service) deleteBlobBestEffort(ctx context.Context, reference string) {
	if err := s.blobs.Delete(ctx, reference); err != nil {
		log.Printf("level=warn component=app msg=\"blob delete failed\" reference=%s err=%v", reference, err)
	}
}

// publishLifecycleEvent emits an account lifecycle event. Publishing is
// best-effort; the database write is authoritative.
func (s *Service) publishLifecycleEvent(ctx context.Context, account *domain.Account, action string) {
	if s.eventProducer == nil {
		return
	}
	event := domain.AccountLifecycleEvent{
		AccountID: account.ID,
		OwnerID:   account.OwnerID,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
	if err := s.eventProducer.Publish(ctx, s.eventExchange, "account."+action, event); err != nil {
		log.Printf("level=warn component=app msg=\"lifecycle event publish failed\" account_id=%s action=%s err=%v", account.ID, action, err)
	}
}
