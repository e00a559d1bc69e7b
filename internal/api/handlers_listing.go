package api

import (
	"log"
	"net/http"
)

// ListCategoriesHandler returns the owner's transaction categories. Read-only:
// category management belongs to the ledger side of the system.
func (h *AccountHandlers) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, statusCode, message := h.resolveAuthenticatedOwnerID(r)
	if statusCode != 0 {
		h.writeError(w, statusCode, message)
		return
	}

	categories, err := h.service.ListCategories(r.Context(), ownerID)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_categories outcome=failed owner_id=%s err=%v", ownerID, err)
		h.writeError(w, http.StatusInternalServerError, "Could not retrieve categories.")
		return
	}

	h.writeJSON(w, http.StatusOK, categories)
}

// ListCurrenciesHandler returns the configured currency set, which the client
// renders in the account create/edit forms.
func (h *AccountHandlers) ListCurrenciesHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Currencies())
}
