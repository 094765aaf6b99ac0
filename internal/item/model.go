package item

import (
	"context"
	"time"

	"github.com/lendaround/item-share-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.NotFound("item not found")
	ErrNameRequired      = apperror.Validation("name is required")
	ErrAvailableRequired = apperror.Validation("available flag is required")
	ErrCommentTarget     = apperror.Validation("cannot comment on unknown item")
	ErrCommentNotAllowed = apperror.Validation("commenting requires a finished approved booking of the item")
	ErrEmptyComment      = apperror.Validation("comment text cannot be empty")
)

// Item is a listed thing that other users can book. Availability is a
// listing-level gate checked at booking creation; it is never flipped by
// bookings themselves.
type Item struct {
	ID          string // UUID
	OwnerID     string
	Name        string
	Description string
	Available   bool
	RequestID   *string // set when the item answers a pre-listing request
	CreatedAt   time.Time
}

// Comment is feedback a renter leaves on an item after a finished rental.
type Comment struct {
	ID         string
	ItemID     string
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
}

// BookingBrief is the slice of a booking that item views need.
type BookingBrief struct {
	ID       string
	BookerID string
	Start    time.Time
	End      time.Time
}

// BookingLookup is implemented by the booking module. It keeps the
// dependency direction one-way: bookings know about items, item views only
// see this narrow surface.
type BookingLookup interface {
	// NextAndLast resolves, per item id, the earliest approved booking
	// starting at or after now and the latest approved booking starting at
	// or before now. Items without a qualifying booking are absent from the
	// returned maps.
	NextAndLast(ctx context.Context, itemIDs []string, now time.Time) (next, last map[string]BookingBrief, err error)

	// HasFinishedApproved reports whether the user has an approved booking
	// of the item whose end has already passed.
	HasFinishedApproved(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error)
}

// View is an item enriched for its owner: nearest bookings on either side
// of now plus the item's comments.
type View struct {
	Item     *Item
	Next     *BookingBrief
	Last     *BookingBrief
	Comments []Comment
}
