package booking

import (
	"time"

	"github.com/lendaround/item-share-backend/internal/pkg/apperror"
)

var (
	ErrNotFound = apperror.NotFound("booking not found")

	// ErrItemNotFound covers both a genuinely absent item and an owner
	// trying to book their own item. Hiding the second case behind the
	// first avoids confirming that the item exists.
	ErrItemNotFound = apperror.NotFound("item not found")

	ErrItemUnavailable = apperror.Validation("item is not available for booking")
	ErrInvalidWindow   = apperror.Validation("booking window must lie in the future with start before end")
	ErrAlreadyDecided  = apperror.Validation("booking is not waiting for approval")
)

// Status is the booking lifecycle state. WAITING is the only initial value;
// APPROVED and REJECTED are terminal.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Booking is a time-bounded rental of an item. The item and booker fields
// are denormalized from their rows so read paths need no extra fetches.
type Booking struct {
	ID string // UUID

	ItemID          string
	ItemName        string
	ItemDescription string
	ItemAvailable   bool
	ItemRequestID   *string
	ItemOwnerID     string

	BookerID    string
	BookerName  string
	BookerEmail string

	Start  time.Time
	End    time.Time
	Status Status

	CreatedAt time.Time
}
