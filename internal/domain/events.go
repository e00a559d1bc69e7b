/**
 * @description
 * This file defines the event payloads the account-service publishes to the
 * message broker when an account changes lifecycle state. Downstream
 * consumers (reporting, notification) react to these asynchronously.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account lifecycle actions carried in AccountLifecycleEvent.Action.
const (
	AccountCreated  = "created"
	AccountUpdated  = "updated"
	AccountTrashed  = "trashed"
	AccountRestored = "restored"
	AccountDeleted  = "deleted"
)

// AccountLifecycleEvent is published after a successful account mutation.
type AccountLifecycleEvent struct {
	AccountID uuid.UUID `json:"account_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}
