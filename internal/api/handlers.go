/**
 * @description
 * This file contains the HTTP handlers for the account-service's API
 * endpoints. Handlers parse incoming requests (including multipart image
 * uploads), call the application service, and translate outcomes into HTTP
 * responses: success with data, 404 when the account does not exist, 403 when
 * it belongs to someone else, 400 for rejected input.
 *
 * @dependencies
 * - encoding/json, errors, log, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5, github.com/google/uuid: Routing and IDs.
 * - internal/app, internal/domain, internal/store: Service logic, models, errors.
 */

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/duitku/account-service/internal/app"
	"github.com/duitku/account-service/internal/domain"
	"github.com/duitku/account-service/internal/store"
)

// AccountHandlers holds the application service that handlers will use.
type AccountHandlers struct {
	service        *app.Service
	maxUploadBytes int64
}

// NewAccountHandlers creates a new instance of AccountHandlers.
func NewAccountHandlers(service *app.Service, maxUploadBytes int64) *AccountHandlers {
	return &AccountHandlers{service: service, maxUploadBytes: maxUploadBytes}
}

// accountResponse mirrors the account detail rows rendered by the web client:
// the raw balance plus its currency-formatted form.
type accountResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Currency         string    `json:"currency"`
	ImagePath        *string   `json:"image_path,omitempty"`
	Balance          int64     `json:"balance"`
	FormattedBalance string    `json:"formatted_balance"`
	Trashed          bool      `json:"trashed"`
	DeletedAt        *string   `json:"deleted_at,omitempty"`
	CreatedAt        string    `json:"created_at"`
	UpdatedAt        string    `json:"updated_at"`
}

type accountDetailResponse struct {
	Account      accountResponse      `json:"account"`
	Transactions []domain.Transaction `json:"transactions"`
}

func (h *AccountHandlers) buildAccountResponse(account *domain.Account) accountResponse {
	resp := accountResponse{
		ID:               account.ID,
		Name:             account.Name,
		Currency:         account.Currency,
		ImagePath:        account.ImagePath,
		Balance:          account.Balance,
		FormattedBalance: h.service.FormattedBalance(account),
		Trashed:          account.Trashed(),
		CreatedAt:        account.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:        account.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if account.DeletedAt != nil {
		deletedAt := account.DeletedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.DeletedAt = &deletedAt
	}
	return resp
}

// mapAccountError translates service errors into an HTTP status and message.
func mapAccountError(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrAccountNotFound):
		return http.StatusNotFound, "Account not found."
	case errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound, "User not found."
	case errors.Is(err, app.ErrNotAccountOwner):
		return http.StatusForbidden, "You do not own this account."
	case errors.Is(err, app.ErrAccountNameRequired),
		errors.Is(err, app.ErrCurrencyNotSupported),
		errors.Is(err, app.ErrUnsupportedImageType):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, app.ErrUploadRateLimited):
		return http.StatusTooManyRequests, err.Error()
	}
	return http.StatusInternalServerError, "Could not process account request."
}

// resolveAuthenticatedOwnerID maps the validated token subject on the request
// context to the internal user UUID. A non-zero status means the request has
// to be rejected with that status and message.
func (h *AccountHandlers) resolveAuthenticatedOwnerID(r *http.Request) (uuid.UUID, int, string) {
	subject, ok := GetAuthSubject(r.Context())
	if !ok {
		return uuid.Nil, http.StatusInternalServerError, "Could not get user from context"
	}

	internalID, err := h.service.ResolveInternalUserID(r.Context(), subject)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return uuid.Nil, http.StatusNotFound, "User not found"
		}
		log.Printf("level=error component=api msg=\"user resolution failed\" subject=%s err=%v", subject, err)
		return uuid.Nil, http.StatusInternalServerError, "Could not resolve user"
	}

	ownerID, err := uuid.Parse(internalID)
	if err != nil {
		log.Printf("level=error component=api msg=\"invalid internal user id\" internal_user_id=%s", internalID)
		return uuid.Nil, http.StatusInternalServerError, "Invalid user ID format"
	}
	return ownerID, 0, ""
}

func parseAccountID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "accountID"))
}

func parseOptionalPositiveInt(value string, fallback int) (int, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, errors.New("value must be a non-negative integer")
	}
	return parsed, nil
}

// parseAccountForm parses the request body, accepting both multipart (image
// uploads) and url-encoded forms.
func (h *AccountHandlers) parseAccountForm(r *http.Request) error {
	err := r.ParseMultipartForm(h.maxUploadBytes)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// storeUploadedImage stores the optional "image" form file and returns its
// blob reference, or nil when no file was uploaded. Url-encoded bodies carry
// no multipart section, so r.MultipartForm stays nil after parsing and there
// is no file to look for.
func (h *AccountHandlers) storeUploadedImage(r *http.Request, ownerID uuid.UUID) (*string, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	reference, err := h.service.StoreAccountImage(r.Context(), ownerID, header.Filename, file)
	if err != nil {
		return nil, err
	}
	return &reference, nil
}

// ListAccountsHandler returns the owner's active accounts, or the trash when
// ?show=trash is passed.
func (h *AccountHandlers) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, statusCode, message := h.resolveAuthenticatedOwnerID(r)
	if statusCode != 0 {
		h.writeError(w, statusCode, message)
		return
	}

	showTrash := r.URL.Query().Get("show") == "trash"
	accounts, err := h.service.ListAccounts(r.Context(), ownerID, showTrash)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_accounts outcome=failed owner_id=%s err=%v", ownerID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not retrieve accounts.")
		return
	}

	responses := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, h.buildAccountResponse(&accounts[i]))
	}
	h.writeJSON(w, http.StatusOK, responses)
}

// CreateAccountHandler creates a new account from a (possibly multipart) form
// with name, currency and an optional image file.
func (h *AccountHandlers) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, statusCode, message := h.resolveAuthenticatedOwnerID(r)
	if statusCode != 0 {
		h.writeError(w, statusCode, message)
		return
	}

	if err := h.parseAccountForm(r); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	imagePath, err := h.storeUploadedImage(r, ownerID)
	if err != nil {
		status, msg := mapAccountError(err)
		log.Printf("level=warn component=api endpoint=create_account outcome=reject reason=image_upload owner_id=%s err=%v", ownerID, err)
		h.writeError(w, status, msg)
		return
	}

	account, err := h.service.CreateAccount(r.Context(), ownerID, app.CreateAccountParams{
		Name:      r.FormValue("name"),
		Currency:  r.FormValue("currency"),
		ImagePath: imagePath,
	})
	if err != nil {
		// The rejected request must not leave its freshly stored image behind.
		if imagePath != nil {
			h.service.DiscardStoredImage(r.Context(), *imagePath)
		}
		status, msg := mapAccountError(err)
		log.Printf("level=warn component=api endpoint=create_account outcome=failed owner_id=%s err=%v", ownerID, err)
		h.writeError(w, status, msg)
		return
	}

	h.writeJSON(w, http.StatusCreated, h.buildAccountResponse(account))
}

// ShowAccountHandler returns one active account with a page of its
// transactions, optionally filtered by ?q= description search.
func (h *AccountHandlers) ShowAccountHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, statusCode, message := h.resolveAuthenticatedOwnerID(r)
	if statusCode != 0 {
		h.writeError(w, statusCode, message)
		return
	}

	accountID, err := parseAccountID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid account id")
		return
	}

	limit, err := parseOptionalPositiveInt(r.URL.Query().Get("limit"), 10)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, err := parseOptionalPositiveInt(r.URL.Query().Get("offset"), 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	account, err := h.service.GetAccount(r.Context(), ownerID, accountID)
	if err != nil {
		status, msg := mapAccountError(err)
		h.writeError(w, status, msg)
		return
	}

	transactions, err := h.service.AccountTransactions(r.Context(), ownerID, accountID, domain.TransactionListOptions{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		log.Printf("level=error component=api endpoint=show_account outcome=failed account_id=%s err=%v", accountID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not retrieve transactions.")
		return
	}

	h.writeJSON(w, http.StatusOK, accountDetailResponse{
		Account:      h.buildAccountResponse(account),
		Transactions: transactions,
	})
}

// UpdateAccountHandler mutates name/currency/image of an active account.
func (h *AccountHandlers) UpdateAccountHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, statusCode, message := h.resolveAuthenticatedOwnerID(r)
	if statusCode != 0 {
		h.writeError(w, statusCode, message)
		return
	}

	accountID, err := parseAccountID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid account id")
		return
	}

	if err := h.parseAccountForm(r); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	// Authorize before touching blob storage so a rejected update never
	// uploads (or later deletes) anything.
	if _, err := h.service.GetAccount(r.Context(), ownerID, accountID); err != nil {
		status, msg := mapAccountError(err)
		h.writeError(w, status, msg)
		return
	}

	newImagePath, err := h.storeUploadedImage(r, ownerID)
	if err != nil {
		status, msg := mapAccountError(err)
		log.Printf("level=warn component=api endpoint=update_account outcome=reject reason=image_upload owner_id=%s err=%v", ownerID, err)
		h.writeError(w, status, msg)
		return
	}

	var params app.UpdateAccountParams
	if r.Form.Has("name") {
		name := r.FormValue("name")
		params.Name = &name
	}
	if r.Form.Has("currency") {
		currency := r.FormValue("currency")
		params.Currency = &currency
	}

	account, err := h.service.UpdateAccount(r.Context(), ownerID, accountID, params, newImagePath)
	if err != nil {
		// The rejected request must not leave its freshly stored image behind.
		if newImagePath != nil {
			h.service.DiscardStoredImage(r.Context(), *newImagePath)
		}
		status, msg := mapAccountError(err)
		log.Printf("level=warn component=api endpoint=update_account outcome=failed account_id=%s err=%v", accountID, err)
		h.writeError(w, status, msg)
		return
	}

	h.writeJSON(w, http.StatusOK, h.buildAccountResponse(account))
}

// TrashAccountHandler soft-deletes an account.
func (h *AccountHandlers) TrashAccountHandler(w http.ResponseWriter, r *http.Request) {
	h.lifecycleMutation(w, r, "trash_account", h.service.TrashAccount)
}

// RestoreAccountHandler returns a trashed account to the active listing.
func (h *AccountHandlers) RestoreAccountHandler(w http.ResponseWriter, r *http.Request) {
	h.lifecycleMutation(w, r, "restore_account", h.service.RestoreAccount)
}

// DeletePermanentHandler removes an account and its image irreversibly.
func (h *AccountHandlers) DeletePermanentHandler(w http.ResponseWriter, r *http.Request) {
	h.lifecycleMutation(w, r, "delete_account_permanent", h.service.DeleteAccountPermanently)
}

// lifecycleMutation factors the shared shape of trash/restore/permanent
// delete: resolve the owner, parse the id, run the mutation, acknowledge.
func (h *AccountHandlers) lifecycleMutation(
	w http.ResponseWriter,
	r *http.Request,
	endpoint string,
	mutate func(ctx context.Context, ownerID, accountID uuid.UUID) error,
) {
	ownerID, statusCode, message := h.resolveAuthenticatedOwnerID(r)
	if statusCode != 0 {
		h.writeError(w, statusCode, message)
		return
	}

	accountID, err := parseAccountID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid account id")
		return
	}

	if err := mutate(r.Context(), ownerID, accountID); err != nil {
		status, msg := mapAccountError(err)
		log.Printf("level=warn component=api endpoint=%s outcome=failed account_id=%s err=%v", endpoint, accountID, err)
		h.writeError(w, status, msg)
		return
	}

	log.Printf("level=info component=api endpoint=%s outcome=ok account_id=%s owner_id=%s", endpoint, accountID, ownerID)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON is a helper for writing JSON responses.
func (h *AccountHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *AccountHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
