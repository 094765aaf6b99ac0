package http

import (
	"github.com/lendaround/item-share-backend/internal/booking"
	"github.com/lendaround/item-share-backend/internal/pkg/localtime"
)

type CreateBookingBody struct {
	ItemID string         `json:"itemId" binding:"required,uuid"`
	Start  localtime.Time `json:"start" binding:"required"`
	End    localtime.Time `json:"end" binding:"required"`
}

// BookerTag identifies the requesting user on a booking.
type BookerTag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ItemTag carries the booked item's listing fields.
type ItemTag struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Available   bool    `json:"available"`
	RequestID   *string `json:"requestId"`
}

type BookingResponse struct {
	ID     string         `json:"id"`
	Start  localtime.Time `json:"start"`
	End    localtime.Time `json:"end"`
	Status string         `json:"status"`
	Booker BookerTag      `json:"booker"`
	Item   ItemTag        `json:"item"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:     b.ID,
		Start:  localtime.From(b.Start),
		End:    localtime.From(b.End),
		Status: string(b.Status),
		Booker: BookerTag{
			ID:    b.BookerID,
			Name:  b.BookerName,
			Email: b.BookerEmail,
		},
		Item: ItemTag{
			ID:          b.ItemID,
			Name:        b.ItemName,
			Description: b.ItemDescription,
			Available:   b.ItemAvailable,
			RequestID:   b.ItemRequestID,
		},
	}
}
