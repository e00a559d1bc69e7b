package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category is a user-defined label transactions can be grouped under.
// The account-service exposes a read-only, owner-scoped listing of them.
type Category struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
