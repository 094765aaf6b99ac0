package http

import (
	"github.com/lendaround/item-share-backend/internal/item"
	"github.com/lendaround/item-share-backend/internal/pkg/localtime"
)

type CreateItemBody struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Available   *bool   `json:"available" binding:"required"`
	RequestID   *string `json:"requestId" binding:"omitempty,uuid"`
}

type UpdateItemBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type CreateCommentBody struct {
	Text string `json:"text" binding:"required"`
}

type ItemResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Available   bool    `json:"available"`
	RequestID   *string `json:"requestId"`
}

func NewItemResponse(i *item.Item) ItemResponse {
	return ItemResponse{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		RequestID:   i.RequestID,
	}
}

// BookingTag is the short booking reference attached to owner item views.
type BookingTag struct {
	ID       string         `json:"id"`
	BookerID string         `json:"bookerId"`
	Start    localtime.Time `json:"start"`
	End      localtime.Time `json:"end"`
}

type CommentResponse struct {
	ID         string         `json:"id"`
	Text       string         `json:"text"`
	AuthorName string         `json:"authorName"`
	Created    localtime.Time `json:"created"`
}

func NewCommentResponse(cm *item.Comment) CommentResponse {
	return CommentResponse{
		ID:         cm.ID,
		Text:       cm.Text,
		AuthorName: cm.AuthorName,
		Created:    localtime.From(cm.CreatedAt),
	}
}

type ItemViewResponse struct {
	ItemResponse
	LastBooking *BookingTag       `json:"lastBooking"`
	NextBooking *BookingTag       `json:"nextBooking"`
	Comments    []CommentResponse `json:"comments"`
}

func NewItemViewResponse(v *item.View) ItemViewResponse {
	resp := ItemViewResponse{
		ItemResponse: NewItemResponse(v.Item),
		LastBooking:  newBookingTag(v.Last),
		NextBooking:  newBookingTag(v.Next),
		Comments:     make([]CommentResponse, len(v.Comments)),
	}
	for i := range v.Comments {
		resp.Comments[i] = NewCommentResponse(&v.Comments[i])
	}
	return resp
}

func newBookingTag(b *item.BookingBrief) *BookingTag {
	if b == nil {
		return nil
	}
	return &BookingTag{
		ID:       b.ID,
		BookerID: b.BookerID,
		Start:    localtime.From(b.Start),
		End:      localtime.From(b.End),
	}
}
