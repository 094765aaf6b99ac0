package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing booking data from storage.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)

	// ListByBooker returns the user's bookings in the category, newest
	// start first. limit/offset follow the page contract resolved by the
	// caller.
	ListByBooker(ctx context.Context, bookerID string, c Category, now time.Time, limit, offset int) ([]*Booking, error)
	// ListByOwner is symmetric over item ownership instead of booker identity.
	ListByOwner(ctx context.Context, ownerID string, c Category, now time.Time, limit, offset int) ([]*Booking, error)

	// NextPerItem resolves, for every item in the set, the approved booking
	// with the minimum start at or after now. One scan for the whole batch.
	NextPerItem(ctx context.Context, itemIDs []string, now time.Time) (map[string]*Booking, error)
	// LastPerItem resolves the approved booking with the maximum start at
	// or before now. The key is start, not end, so a booking that has begun
	// but not yet ended still counts as "last".
	LastPerItem(ctx context.Context, itemIDs []string, now time.Time) (map[string]*Booking, error)

	// HasFinishedApproved reports whether an approved booking of the item
	// by the user ended before now.
	HasFinishedApproved(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error)

	// UpdateStatus applies a decision to a booking that is still WAITING.
	// A concurrent decision that won the race surfaces as ErrAlreadyDecided.
	UpdateStatus(ctx context.Context, id string, status Status) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("item_id", "booker_id", "start_date", "end_date", "status").
		Values(b.ItemID, b.BookerID, b.Start, b.End, b.Status).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt)
}

func fullSelect() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(
		"b.id",
		"b.item_id", "i.name", "i.description", "i.available", "i.request_id", "i.owner_id",
		"b.booker_id", "u.name", "u.email",
		"b.start_date", "b.end_date", "b.status", "b.created_at",
	).
		From("public.bookings b").
		Join("public.items i ON b.item_id = i.id").
		Join("public.users u ON b.booker_id = u.id")
}

func scanFull(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID,
		&b.ItemID, &b.ItemName, &b.ItemDescription, &b.ItemAvailable, &b.ItemRequestID, &b.ItemOwnerID,
		&b.BookerID, &b.BookerName, &b.BookerEmail,
		&b.Start, &b.End, &b.Status, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := fullSelect().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanFull(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

// categoryPredicate re-expresses the classifier of Category.Matches as a
// SQL predicate. The two must agree; category_test.go pins the semantics.
func categoryPredicate(c Category, now time.Time) squirrel.Sqlizer {
	switch c {
	case CategoryCurrent:
		return squirrel.And{
			squirrel.LtOrEq{"b.start_date": now},
			squirrel.GtOrEq{"b.end_date": now},
		}
	case CategoryPast:
		return squirrel.Lt{"b.end_date": now}
	case CategoryFuture:
		return squirrel.Gt{"b.start_date": now}
	case CategoryWaiting:
		return squirrel.Eq{"b.status": StatusWaiting}
	case CategoryRejected:
		return squirrel.Eq{"b.status": StatusRejected}
	default:
		return nil
	}
}

func (r *pgxRepository) list(ctx context.Context, subject squirrel.Sqlizer, c Category, now time.Time, limit, offset int) ([]*Booking, error) {
	query := fullSelect().Where(subject)
	if pred := categoryPredicate(c, now); pred != nil {
		query = query.Where(pred)
	}
	query = query.
		OrderBy("b.start_date DESC", "b.id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanFull(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *pgxRepository) ListByBooker(ctx context.Context, bookerID string, c Category, now time.Time, limit, offset int) ([]*Booking, error) {
	return r.list(ctx, squirrel.Eq{"b.booker_id": bookerID}, c, now, limit, offset)
}

func (r *pgxRepository) ListByOwner(ctx context.Context, ownerID string, c Category, now time.Time, limit, offset int) ([]*Booking, error) {
	return r.list(ctx, squirrel.Eq{"i.owner_id": ownerID}, c, now, limit, offset)
}

// extremalPerItem implements both halves of the next/last resolution with
// DISTINCT ON: one pass over the candidate bookings per direction, never one
// query per item. Ties on the extremal start are broken by booking id
// ascending.
func (r *pgxRepository) extremalPerItem(ctx context.Context, itemIDs []string, startCond squirrel.Sqlizer, startOrder string) (map[string]*Booking, error) {
	if len(itemIDs) == 0 {
		return map[string]*Booking{}, nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"b.id", "b.item_id", "b.booker_id", "b.start_date", "b.end_date", "b.status",
	).
		Options("DISTINCT ON (b.item_id)").
		From("public.bookings b").
		Where(squirrel.Eq{"b.item_id": itemIDs}).
		Where(squirrel.Eq{"b.status": StatusApproved}).
		Where(startCond).
		OrderBy("b.item_id", "b.start_date "+startOrder, "b.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build per-item booking query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("per-item booking query failed: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*Booking)
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.ItemID, &b.BookerID, &b.Start, &b.End, &b.Status); err != nil {
			return nil, fmt.Errorf("scan per-item booking failed: %w", err)
		}
		result[b.ItemID] = &b
	}
	return result, rows.Err()
}

func (r *pgxRepository) NextPerItem(ctx context.Context, itemIDs []string, now time.Time) (map[string]*Booking, error) {
	return r.extremalPerItem(ctx, itemIDs, squirrel.GtOrEq{"b.start_date": now}, "ASC")
}

func (r *pgxRepository) LastPerItem(ctx context.Context, itemIDs []string, now time.Time) (map[string]*Booking, error) {
	return r.extremalPerItem(ctx, itemIDs, squirrel.LtOrEq{"b.start_date": now}, "DESC")
}

func (r *pgxRepository) HasFinishedApproved(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	subQuery := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"booker_id": bookerID}).
		Where(squirrel.Eq{"item_id": itemID}).
		Where(squirrel.Eq{"status": StatusApproved}).
		Where(squirrel.Lt{"end_date": now})

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build finished booking query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("finished booking query failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", status).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": StatusWaiting}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update status query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// Either the row is gone or another decision got there first; the
		// service has already confirmed existence, so report the latter.
		return ErrAlreadyDecided
	}
	return nil
}
