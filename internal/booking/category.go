package booking

import (
	"strings"
	"time"

	"github.com/lendaround/item-share-backend/internal/pkg/apperror"
)

// ErrUnknownCategory is returned for state filters outside the closed set.
var ErrUnknownCategory = apperror.Validation("unknown state filter")

// Category buckets a user's bookings relative to a reference instant.
// The time-based categories (PAST, FUTURE, CURRENT) partition any booking
// window; WAITING and REJECTED select on status alone, so a rejected
// booking whose window has passed shows up under REJECTED, not PAST. There
// is no category intersection.
type Category string

const (
	CategoryAll      Category = "ALL"
	CategoryCurrent  Category = "CURRENT"
	CategoryPast     Category = "PAST"
	CategoryFuture   Category = "FUTURE"
	CategoryWaiting  Category = "WAITING"
	CategoryRejected Category = "REJECTED"
)

// ParseCategory maps a state filter string onto the closed category set.
// An empty string means ALL.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryAll, nil
	}
	switch c := Category(strings.ToUpper(s)); c {
	case CategoryAll, CategoryCurrent, CategoryPast, CategoryFuture, CategoryWaiting, CategoryRejected:
		return c, nil
	default:
		return "", ErrUnknownCategory
	}
}

// Matches reports whether the booking falls into the category at the given
// instant. CURRENT is inclusive on both window ends; PAST and FUTURE are
// strict.
func (c Category) Matches(b *Booking, now time.Time) bool {
	switch c {
	case CategoryCurrent:
		return !b.Start.After(now) && !b.End.Before(now)
	case CategoryPast:
		return b.End.Before(now)
	case CategoryFuture:
		return b.Start.After(now)
	case CategoryWaiting:
		return b.Status == StatusWaiting
	case CategoryRejected:
		return b.Status == StatusRejected
	default:
		return true
	}
}
