package item

import (
	"context"
	"strings"
	"time"

	"github.com/lendaround/item-share-backend/internal/user"
)

// UserSource is the slice of the user module the item service needs.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// CreateRequest carries the fields for listing an item.
type CreateRequest struct {
	Name        string
	Description string
	Available   *bool
	RequestID   *string
}

// UpdateRequest carries a partial listing update. Nil fields are left as-is.
type UpdateRequest struct {
	Name        *string
	Description *string
	Available   *bool
}

// Service defines business logic related to items and their comments.
type Service interface {
	Create(ctx context.Context, ownerID string, req CreateRequest) (*Item, error)
	Update(ctx context.Context, requesterID, itemID string, req UpdateRequest) (*Item, error)

	// GetView returns the item with its comments. Next/last booking
	// enrichment is attached only when the requester owns the item.
	GetView(ctx context.Context, requesterID, itemID string) (*View, error)

	// ListViews returns the owner's items, each enriched with next/last
	// bookings and comments. The whole page costs three queries: two
	// booking scans and one comment scan, regardless of item count.
	ListViews(ctx context.Context, ownerID string, limit, offset int) ([]*View, error)

	Search(ctx context.Context, text string, limit, offset int) ([]*Item, error)

	// AddComment stores a comment if the author has a finished approved
	// booking of the item.
	AddComment(ctx context.Context, authorID, itemID, text string) (*Comment, error)
}

type service struct {
	repo     Repository
	users    UserSource
	bookings BookingLookup

	now func() time.Time
}

// NewService creates a new item Service.
func NewService(repo Repository, users UserSource, bookings BookingLookup) Service {
	return &service{
		repo:     repo,
		users:    users,
		bookings: bookings,
		now:      time.Now,
	}
}

func (s *service) Create(ctx context.Context, ownerID string, req CreateRequest) (*Item, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if req.Available == nil {
		return nil, ErrAvailableRequired
	}

	i := &Item{
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Available:   *req.Available,
		RequestID:   req.RequestID,
	}
	if err := s.repo.Create(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *service) Update(ctx context.Context, requesterID, itemID string, req UpdateRequest) (*Item, error) {
	i, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	// Non-owners are told the item does not exist rather than that it is
	// off limits, matching the rest of the ownership checks.
	if i.OwnerID != requesterID {
		return nil, ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		i.Name = name
	}
	if req.Description != nil {
		i.Description = strings.TrimSpace(*req.Description)
	}
	if req.Available != nil {
		i.Available = *req.Available
	}

	if err := s.repo.Update(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *service) GetView(ctx context.Context, requesterID, itemID string) (*View, error) {
	i, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.CommentsForItems(ctx, []string{i.ID})
	if err != nil {
		return nil, err
	}

	view := &View{Item: i, Comments: comments[i.ID]}

	if i.OwnerID == requesterID {
		next, last, err := s.bookings.NextAndLast(ctx, []string{i.ID}, s.now())
		if err != nil {
			return nil, err
		}
		view.Next = briefFor(next, i.ID)
		view.Last = briefFor(last, i.ID)
	}

	return view, nil
}

func (s *service) ListViews(ctx context.Context, ownerID string, limit, offset int) ([]*View, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	ids := make([]string, len(items))
	for idx, i := range items {
		ids[idx] = i.ID
	}

	next, last, err := s.bookings.NextAndLast(ctx, ids, s.now())
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.CommentsForItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*View, len(items))
	for idx, i := range items {
		views[idx] = &View{
			Item:     i,
			Next:     briefFor(next, i.ID),
			Last:     briefFor(last, i.ID),
			Comments: comments[i.ID],
		}
	}
	return views, nil
}

func (s *service) Search(ctx context.Context, text string, limit, offset int) ([]*Item, error) {
	// Blank search matches nothing, by contract.
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return s.repo.Search(ctx, text, limit, offset)
}

func (s *service) AddComment(ctx context.Context, authorID, itemID, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, itemID); err != nil {
		// A missing comment target is a validation failure, not a 404.
		if err == ErrNotFound {
			return nil, ErrCommentTarget
		}
		return nil, err
	}

	ok, err := s.bookings.HasFinishedApproved(ctx, authorID, itemID, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCommentNotAllowed
	}

	cm := &Comment{
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Text:       text,
	}
	if err := s.repo.CreateComment(ctx, cm); err != nil {
		return nil, err
	}
	return cm, nil
}

func briefFor(m map[string]BookingBrief, itemID string) *BookingBrief {
	if b, ok := m[itemID]; ok {
		return &b
	}
	return nil
}
