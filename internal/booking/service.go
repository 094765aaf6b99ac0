package booking

import (
	"context"
	"time"

	"github.com/lendaround/item-share-backend/internal/item"
	"github.com/lendaround/item-share-backend/internal/user"
)

// ItemSource is the slice of the item module the booking service needs.
type ItemSource interface {
	GetByID(ctx context.Context, id string) (*item.Item, error)
}

// UserSource is the slice of the user module the booking service needs.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// CreateRequest carries the fields for requesting a booking.
type CreateRequest struct {
	BookerID string
	ItemID   string
	Start    time.Time
	End      time.Time
}

// Service owns the booking lifecycle: creation validation, the
// WAITING -> APPROVED|REJECTED state machine, category listings, and the
// per-item next/last resolution consumed by item views.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)

	// Transition applies the owner's decision to a WAITING booking.
	Transition(ctx context.Context, requesterID, bookingID string, approve bool) (*Booking, error)

	// GetByID returns a booking to its booker or the item's owner; anyone
	// else is told it does not exist.
	GetByID(ctx context.Context, requesterID, bookingID string) (*Booking, error)

	ListForBooker(ctx context.Context, bookerID string, c Category, limit, offset int) ([]*Booking, error)
	ListForOwner(ctx context.Context, ownerID string, c Category, limit, offset int) ([]*Booking, error)

	// NextAndLast and HasFinishedApproved implement item.BookingLookup.
	NextAndLast(ctx context.Context, itemIDs []string, now time.Time) (next, last map[string]item.BookingBrief, err error)
	HasFinishedApproved(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error)
}

type service struct {
	repo  Repository
	items ItemSource
	users UserSource

	now func() time.Time
}

// NewService creates a new booking Service.
func NewService(repo Repository, items ItemSource, users UserSource) Service {
	return &service{
		repo:  repo,
		items: items,
		users: users,
		now:   time.Now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	booker, err := s.users.GetByID(ctx, req.BookerID)
	if err != nil {
		return nil, err
	}

	itm, err := s.items.GetByID(ctx, req.ItemID)
	if err != nil {
		if err == item.ErrNotFound {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if !itm.Available {
		return nil, ErrItemUnavailable
	}
	if itm.OwnerID == req.BookerID {
		return nil, ErrItemNotFound
	}

	// Both window ends must be strictly in the future and the window
	// strictly ordered.
	now := s.now()
	if !req.Start.After(now) || !req.End.After(now) || !req.Start.Before(req.End) {
		return nil, ErrInvalidWindow
	}

	b := &Booking{
		ItemID:          itm.ID,
		ItemName:        itm.Name,
		ItemDescription: itm.Description,
		ItemAvailable:   itm.Available,
		ItemRequestID:   itm.RequestID,
		ItemOwnerID:     itm.OwnerID,
		BookerID:        booker.ID,
		BookerName:      booker.Name,
		BookerEmail:     booker.Email,
		Start:           req.Start,
		End:             req.End,
		Status:          StatusWaiting,
	}

	// The item's available flag stays untouched, so nothing here stops a
	// second overlapping booking of the same window.
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Transition(ctx context.Context, requesterID, bookingID string, approve bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusWaiting {
		return nil, ErrAlreadyDecided
	}
	// Ownership is verified before anything is written; a non-owner is
	// told the booking does not exist.
	if b.ItemOwnerID != requesterID {
		return nil, ErrNotFound
	}

	status := StatusRejected
	if approve {
		status = StatusApproved
	}

	if err := s.repo.UpdateStatus(ctx, bookingID, status); err != nil {
		return nil, err
	}
	b.Status = status
	return b, nil
}

func (s *service) GetByID(ctx context.Context, requesterID, bookingID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if requesterID != b.BookerID && requesterID != b.ItemOwnerID {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *service) ListForBooker(ctx context.Context, bookerID string, c Category, limit, offset int) ([]*Booking, error) {
	if _, err := s.users.GetByID(ctx, bookerID); err != nil {
		return nil, err
	}
	return s.repo.ListByBooker(ctx, bookerID, c, s.now(), limit, offset)
}

func (s *service) ListForOwner(ctx context.Context, ownerID string, c Category, limit, offset int) ([]*Booking, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, ownerID, c, s.now(), limit, offset)
}

func (s *service) NextAndLast(ctx context.Context, itemIDs []string, now time.Time) (map[string]item.BookingBrief, map[string]item.BookingBrief, error) {
	nextRaw, err := s.repo.NextPerItem(ctx, itemIDs, now)
	if err != nil {
		return nil, nil, err
	}
	lastRaw, err := s.repo.LastPerItem(ctx, itemIDs, now)
	if err != nil {
		return nil, nil, err
	}
	return toBriefs(nextRaw), toBriefs(lastRaw), nil
}

func (s *service) HasFinishedApproved(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error) {
	return s.repo.HasFinishedApproved(ctx, bookerID, itemID, now)
}

func toBriefs(m map[string]*Booking) map[string]item.BookingBrief {
	briefs := make(map[string]item.BookingBrief, len(m))
	for id, b := range m {
		briefs[id] = item.BookingBrief{
			ID:       b.ID,
			BookerID: b.BookerID,
			Start:    b.Start,
			End:      b.End,
		}
	}
	return briefs
}

var _ item.BookingLookup = (Service)(nil)
