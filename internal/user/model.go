package user

import (
	"time"

	"github.com/lendaround/item-share-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("user not found")
	ErrEmailAlreadyUsed = apperror.Conflict("email already used")
	ErrEmailRequired    = apperror.Validation("email is required")
	ErrNameRequired     = apperror.Validation("name is required")
)

// User represents a registered participant. The same entity acts as item
// owner and as booker; the roles are just labels on either side of a booking.
type User struct {
	ID        string // UUID
	Name      string
	Email     string
	CreatedAt time.Time
}
