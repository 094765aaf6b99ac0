package booking

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendaround/item-share-backend/internal/item"
	"github.com/lendaround/item-share-backend/internal/user"
)

// memRepo mirrors the SQL semantics of the pgx repository in memory so the
// service logic can be exercised without a database.
type memRepo struct {
	bookings []*Booking
	seq      int
}

func (m *memRepo) Create(_ context.Context, b *Booking) error {
	m.seq++
	b.ID = fmt.Sprintf("b-%03d", m.seq)
	b.CreatedAt = time.Now()
	stored := *b
	m.bookings = append(m.bookings, &stored)
	return nil
}

func (m *memRepo) find(id string) *Booking {
	for _, b := range m.bookings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	if b := m.find(id); b != nil {
		copied := *b
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (m *memRepo) list(match func(*Booking) bool, c Category, now time.Time, limit, offset int) []*Booking {
	var result []*Booking
	for _, b := range m.bookings {
		if match(b) && c.Matches(b, now) {
			copied := *b
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Start.Equal(result[j].Start) {
			return result[i].Start.After(result[j].Start)
		}
		return result[i].ID < result[j].ID
	})
	if offset >= len(result) {
		return nil
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

func (m *memRepo) ListByBooker(_ context.Context, bookerID string, c Category, now time.Time, limit, offset int) ([]*Booking, error) {
	return m.list(func(b *Booking) bool { return b.BookerID == bookerID }, c, now, limit, offset), nil
}

func (m *memRepo) ListByOwner(_ context.Context, ownerID string, c Category, now time.Time, limit, offset int) ([]*Booking, error) {
	return m.list(func(b *Booking) bool { return b.ItemOwnerID == ownerID }, c, now, limit, offset), nil
}

func (m *memRepo) extremal(itemIDs []string, keep func(*Booking) bool, better func(candidate, current *Booking) bool) map[string]*Booking {
	inSet := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		inSet[id] = true
	}
	result := make(map[string]*Booking)
	for _, b := range m.bookings {
		if !inSet[b.ItemID] || b.Status != StatusApproved || !keep(b) {
			continue
		}
		current, ok := result[b.ItemID]
		if !ok || better(b, current) {
			copied := *b
			result[b.ItemID] = &copied
		}
	}
	return result
}

func (m *memRepo) NextPerItem(_ context.Context, itemIDs []string, now time.Time) (map[string]*Booking, error) {
	return m.extremal(itemIDs,
		func(b *Booking) bool { return !b.Start.Before(now) },
		func(candidate, current *Booking) bool {
			if !candidate.Start.Equal(current.Start) {
				return candidate.Start.Before(current.Start)
			}
			return candidate.ID < current.ID
		}), nil
}

func (m *memRepo) LastPerItem(_ context.Context, itemIDs []string, now time.Time) (map[string]*Booking, error) {
	return m.extremal(itemIDs,
		func(b *Booking) bool { return !b.Start.After(now) },
		func(candidate, current *Booking) bool {
			if !candidate.Start.Equal(current.Start) {
				return candidate.Start.After(current.Start)
			}
			return candidate.ID < current.ID
		}), nil
}

func (m *memRepo) HasFinishedApproved(_ context.Context, bookerID, itemID string, now time.Time) (bool, error) {
	for _, b := range m.bookings {
		if b.BookerID == bookerID && b.ItemID == itemID && b.Status == StatusApproved && b.End.Before(now) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	b := m.find(id)
	if b == nil || b.Status != StatusWaiting {
		return ErrAlreadyDecided
	}
	b.Status = status
	return nil
}

type memItems map[string]*item.Item

func (m memItems) GetByID(_ context.Context, id string) (*item.Item, error) {
	if i, ok := m[id]; ok {
		return i, nil
	}
	return nil, item.ErrNotFound
}

type memUsers map[string]*user.User

func (m memUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func newFixture() (*memRepo, Service) {
	repo := &memRepo{}
	items := memItems{
		"item-1": {ID: "item-1", OwnerID: "owner-1", Name: "Drill", Description: "Cordless drill", Available: true},
		"item-2": {ID: "item-2", OwnerID: "owner-1", Name: "Ladder", Available: false},
	}
	users := memUsers{
		"owner-1":  {ID: "owner-1", Name: "Olga", Email: "olga@example.com"},
		"booker-1": {ID: "booker-1", Name: "Boris", Email: "boris@example.com"},
		"booker-2": {ID: "booker-2", Name: "Clara", Email: "clara@example.com"},
	}
	svc := NewService(repo, items, users)
	svc.(*service).now = func() time.Time { return fixedNow }
	return repo, svc
}

func mustCreate(t *testing.T, svc Service, bookerID string, start, end time.Time) *Booking {
	t.Helper()
	b, err := svc.Create(context.Background(), CreateRequest{
		BookerID: bookerID,
		ItemID:   "item-1",
		Start:    start,
		End:      end,
	})
	require.NoError(t, err)
	return b
}

func TestCreateBooking(t *testing.T) {
	_, svc := newFixture()

	b := mustCreate(t, svc, "booker-1", fixedNow.Add(day), fixedNow.Add(2*day))

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, StatusWaiting, b.Status)
	assert.Equal(t, "item-1", b.ItemID)
	assert.Equal(t, "owner-1", b.ItemOwnerID)
	assert.Equal(t, "Boris", b.BookerName)
	assert.Equal(t, "boris@example.com", b.BookerEmail)
}

func TestCreateBookingFailures(t *testing.T) {
	_, svc := newFixture()
	ctx := context.Background()
	start, end := fixedNow.Add(day), fixedNow.Add(2*day)

	t.Run("unknown booker", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{BookerID: "ghost", ItemID: "item-1", Start: start, End: end})
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{BookerID: "booker-1", ItemID: "nope", Start: start, End: end})
		assert.ErrorIs(t, err, ErrItemNotFound)
	})

	t.Run("unavailable item", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{BookerID: "booker-1", ItemID: "item-2", Start: start, End: end})
		assert.ErrorIs(t, err, ErrItemUnavailable)
	})

	t.Run("owner booking own item reads as not found", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{BookerID: "owner-1", ItemID: "item-1", Start: start, End: end})
		assert.ErrorIs(t, err, ErrItemNotFound)
	})

	t.Run("window in the past", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{BookerID: "booker-1", ItemID: "item-1", Start: fixedNow.Add(-day), End: end})
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("start equals now", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{BookerID: "booker-1", ItemID: "item-1", Start: fixedNow, End: end})
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("end not after start", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{BookerID: "booker-1", ItemID: "item-1", Start: end, End: start})
		assert.ErrorIs(t, err, ErrInvalidWindow)

		_, err = svc.Create(ctx, CreateRequest{BookerID: "booker-1", ItemID: "item-1", Start: start, End: start})
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})
}

// Creating a booking never flips the item's available flag, so a second
// overlapping request for the same window succeeds. Known gap, asserted on
// purpose so a future overlap guard shows up as a deliberate change.
func TestOverlappingBookingsAreNotPrevented(t *testing.T) {
	_, svc := newFixture()

	first := mustCreate(t, svc, "booker-1", fixedNow.Add(day), fixedNow.Add(2*day))
	_, err := svc.Transition(context.Background(), "owner-1", first.ID, true)
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), CreateRequest{
		BookerID: "booker-2",
		ItemID:   "item-1",
		Start:    fixedNow.Add(day),
		End:      fixedNow.Add(2 * day),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, second.Status)
}

func TestTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("approve", func(t *testing.T) {
		_, svc := newFixture()
		b := mustCreate(t, svc, "booker-1", fixedNow.Add(day), fixedNow.Add(2*day))

		updated, err := svc.Transition(ctx, "owner-1", b.ID, true)
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, updated.Status)
	})

	t.Run("reject", func(t *testing.T) {
		_, svc := newFixture()
		b := mustCreate(t, svc, "booker-1", fixedNow.Add(day), fixedNow.Add(2*day))

		updated, err := svc.Transition(ctx, "owner-1", b.ID, false)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, updated.Status)
	})

	t.Run("second decision fails", func(t *testing.T) {
		_, svc := newFixture()
		b := mustCreate(t, svc, "booker-1", fixedNow.Add(day), fixedNow.Add(2*day))

		_, err := svc.Transition(ctx, "owner-1", b.ID, true)
		require.NoError(t, err)

		_, err = svc.Transition(ctx, "owner-1", b.ID, true)
		assert.ErrorIs(t, err, ErrAlreadyDecided)
		_, err = svc.Transition(ctx, "owner-1", b.ID, false)
		assert.ErrorIs(t, err, ErrAlreadyDecided)
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, svc := newFixture()
		_, err := svc.Transition(ctx, "owner-1", "missing", true)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non-owner reads as not found", func(t *testing.T) {
		_, svc := newFixture()
		b := mustCreate(t, svc, "booker-1", fixedNow.Add(day), fixedNow.Add(2*day))

		// Not even the booker may decide; only the item's owner.
		_, err := svc.Transition(ctx, "booker-1", b.ID, true)
		assert.ErrorIs(t, err, ErrNotFound)

		fetched, err := svc.GetByID(ctx, "owner-1", b.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusWaiting, fetched.Status)
	})

	t.Run("status checked before ownership", func(t *testing.T) {
		_, svc := newFixture()
		b := mustCreate(t, svc, "booker-1", fixedNow.Add(day), fixedNow.Add(2*day))
		_, err := svc.Transition(ctx, "owner-1", b.ID, true)
		require.NoError(t, err)

		// A stranger probing a decided booking sees the validation error,
		// matching the documented check order.
		_, err = svc.Transition(ctx, "booker-2", b.ID, true)
		assert.ErrorIs(t, err, ErrAlreadyDecided)
	})
}

func TestGetByID(t *testing.T) {
	_, svc := newFixture()
	ctx := context.Background()
	b := mustCreate(t, svc, "booker-1", fixedNow.Add(day), fixedNow.Add(2*day))

	fetched, err := svc.GetByID(ctx, "booker-1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, fetched.ID)

	_, err = svc.GetByID(ctx, "owner-1", b.ID)
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, "booker-2", b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetByID(ctx, "booker-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// seedHistory inserts approved/waiting/rejected bookings around fixedNow
// directly through the repo so windows in the past are possible.
func seedHistory(repo *memRepo) map[string]*Booking {
	ctx := context.Background()
	seeded := map[string]*Booking{}
	add := func(key string, start, end time.Time, status Status) {
		b := &Booking{
			ItemID:      "item-1",
			ItemOwnerID: "owner-1",
			BookerID:    "booker-1",
			Start:       start,
			End:         end,
			Status:      status,
		}
		_ = repo.Create(ctx, b)
		seeded[key] = b
	}

	add("past", fixedNow.Add(-3*day), fixedNow.Add(-2*day), StatusApproved)
	add("current", fixedNow.Add(-day), fixedNow.Add(day), StatusApproved)
	add("future", fixedNow.Add(day), fixedNow.Add(2*day), StatusApproved)
	add("waiting", fixedNow.Add(3*day), fixedNow.Add(4*day), StatusWaiting)
	add("rejected", fixedNow.Add(-5*day), fixedNow.Add(-4*day), StatusRejected)
	return seeded
}

func TestListForBooker(t *testing.T) {
	repo, svc := newFixture()
	ctx := context.Background()
	seeded := seedHistory(repo)

	ids := func(bookings []*Booking) []string {
		out := make([]string, len(bookings))
		for i, b := range bookings {
			out[i] = b.ID
		}
		return out
	}

	t.Run("all newest start first", func(t *testing.T) {
		all, err := svc.ListForBooker(ctx, "booker-1", CategoryAll, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{
			seeded["waiting"].ID,
			seeded["future"].ID,
			seeded["current"].ID,
			seeded["past"].ID,
			seeded["rejected"].ID,
		}, ids(all))
	})

	t.Run("time categories partition ALL", func(t *testing.T) {
		past, err := svc.ListForBooker(ctx, "booker-1", CategoryPast, 10, 0)
		require.NoError(t, err)
		current, err := svc.ListForBooker(ctx, "booker-1", CategoryCurrent, 10, 0)
		require.NoError(t, err)
		future, err := svc.ListForBooker(ctx, "booker-1", CategoryFuture, 10, 0)
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{seeded["past"].ID, seeded["rejected"].ID}, ids(past))
		assert.Equal(t, []string{seeded["current"].ID}, ids(current))
		assert.ElementsMatch(t, []string{seeded["future"].ID, seeded["waiting"].ID}, ids(future))
		assert.Len(t, append(append(past, current...), future...), 5)
	})

	t.Run("status categories", func(t *testing.T) {
		waiting, err := svc.ListForBooker(ctx, "booker-1", CategoryWaiting, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{seeded["waiting"].ID}, ids(waiting))

		rejected, err := svc.ListForBooker(ctx, "booker-1", CategoryRejected, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{seeded["rejected"].ID}, ids(rejected))
	})

	t.Run("pages are disjoint and cover ALL", func(t *testing.T) {
		firstPage, err := svc.ListForBooker(ctx, "booker-1", CategoryAll, 3, 0)
		require.NoError(t, err)
		secondPage, err := svc.ListForBooker(ctx, "booker-1", CategoryAll, 3, 3)
		require.NoError(t, err)

		assert.Len(t, firstPage, 3)
		assert.Len(t, secondPage, 2)
		assert.NotSubset(t, ids(firstPage), ids(secondPage))

		all, err := svc.ListForBooker(ctx, "booker-1", CategoryAll, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, ids(all), append(ids(firstPage), ids(secondPage)...))
	})

	t.Run("empty category is not an error", func(t *testing.T) {
		got, err := svc.ListForBooker(ctx, "booker-2", CategoryAll, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, err := svc.ListForBooker(ctx, "ghost", CategoryAll, 10, 0)
		assert.ErrorIs(t, err, user.ErrNotFound)
	})
}

func TestListForOwner(t *testing.T) {
	repo, svc := newFixture()
	ctx := context.Background()
	seeded := seedHistory(repo)

	all, err := svc.ListForOwner(ctx, "owner-1", CategoryAll, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, len(seeded))

	waiting, err := svc.ListForOwner(ctx, "owner-1", CategoryWaiting, 10, 0)
	require.NoError(t, err)
	require.Len(t, waiting, 1)
	assert.Equal(t, seeded["waiting"].ID, waiting[0].ID)

	none, err := svc.ListForOwner(ctx, "booker-2", CategoryAll, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNextAndLast(t *testing.T) {
	repo, svc := newFixture()
	ctx := context.Background()

	approve := func(start, end time.Time) *Booking {
		b := &Booking{ItemID: "item-1", ItemOwnerID: "owner-1", BookerID: "booker-1", Start: start, End: end, Status: StatusWaiting}
		require.NoError(t, repo.Create(ctx, b))
		require.NoError(t, repo.UpdateStatus(ctx, b.ID, StatusApproved))
		return b
	}

	// Approved bookings starting at now-2d, now-1d and now+1d: "last" is
	// the most recent started window, "next" the earliest upcoming one.
	approve(fixedNow.Add(-2*day), fixedNow.Add(-day))
	lastWant := approve(fixedNow.Add(-day), fixedNow.Add(12*time.Hour))
	nextWant := approve(fixedNow.Add(day), fixedNow.Add(2*day))
	approve(fixedNow.Add(2*day), fixedNow.Add(3*day))

	next, last, err := svc.NextAndLast(ctx, []string{"item-1", "item-no-bookings"}, fixedNow)
	require.NoError(t, err)

	require.Contains(t, next, "item-1")
	require.Contains(t, last, "item-1")
	assert.Equal(t, nextWant.ID, next["item-1"].ID)
	// Selection key is start, not end: the now-1d booking is still running
	// yet counts as "last" because its window has begun.
	assert.Equal(t, lastWant.ID, last["item-1"].ID)

	assert.NotContains(t, next, "item-no-bookings")
	assert.NotContains(t, last, "item-no-bookings")
}

func TestNextAndLastIgnoresUndecidedBookings(t *testing.T) {
	repo, svc := newFixture()
	ctx := context.Background()

	seed := func(start, end time.Time, status Status) {
		b := &Booking{ItemID: "item-1", ItemOwnerID: "owner-1", BookerID: "booker-1", Start: start, End: end, Status: StatusWaiting}
		require.NoError(t, repo.Create(ctx, b))
		require.NoError(t, repo.UpdateStatus(ctx, b.ID, status))
	}

	seed(fixedNow.Add(-day), fixedNow.Add(-12*time.Hour), StatusWaiting)
	seed(fixedNow.Add(day), fixedNow.Add(2*day), StatusRejected)

	next, last, err := svc.NextAndLast(ctx, []string{"item-1"}, fixedNow)
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Empty(t, last)
}

func TestNextAndLastTieBreaksByID(t *testing.T) {
	repo, svc := newFixture()
	ctx := context.Background()

	seed := func(start, end time.Time) *Booking {
		b := &Booking{ItemID: "item-1", ItemOwnerID: "owner-1", BookerID: "booker-1", Start: start, End: end, Status: StatusWaiting}
		require.NoError(t, repo.Create(ctx, b))
		require.NoError(t, repo.UpdateStatus(ctx, b.ID, StatusApproved))
		return b
	}

	first := seed(fixedNow.Add(day), fixedNow.Add(2*day))
	seed(fixedNow.Add(day), fixedNow.Add(3*day))

	next, _, err := svc.NextAndLast(ctx, []string{"item-1"}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, first.ID, next["item-1"].ID)
}

func TestHasFinishedApproved(t *testing.T) {
	repo, svc := newFixture()
	ctx := context.Background()

	b := &Booking{ItemID: "item-1", ItemOwnerID: "owner-1", BookerID: "booker-1", Start: fixedNow.Add(-2 * day), End: fixedNow.Add(-day), Status: StatusWaiting}
	require.NoError(t, repo.Create(ctx, b))

	// Still waiting: not eligible.
	ok, err := svc.HasFinishedApproved(ctx, "booker-1", "item-1", fixedNow)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.UpdateStatus(ctx, b.ID, StatusApproved))

	ok, err = svc.HasFinishedApproved(ctx, "booker-1", "item-1", fixedNow)
	require.NoError(t, err)
	assert.True(t, ok)

	// Before the window ends, the rental has not finished.
	ok, err = svc.HasFinishedApproved(ctx, "booker-1", "item-1", fixedNow.Add(-36*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	// Another user never becomes eligible through someone else's booking.
	ok, err = svc.HasFinishedApproved(ctx, "booker-2", "item-1", fixedNow)
	require.NoError(t, err)
	assert.False(t, ok)
}
