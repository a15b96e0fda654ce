package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/domain"
	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/query"
	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/store"
)

// DefaultExpiryWindowDays is the window used when a caller does not specify one.
const DefaultExpiryWindowDays = 30

// recordRepository is the subset of store.RecordStore that Tracker requires.
type recordRepository interface {
	Load(ctx context.Context) ([]domain.Medicine, error)
	Add(ctx context.Context, in store.AddInput) (domain.Medicine, error)
	Remove(ctx context.Context, name string) (int, error)
}

// Tracker exposes the medicine-tracking operation surface to front ends. All
// reporting goes through the pure query package; all mutation goes through
// the record store, which serializes it.
type Tracker struct {
	records recordRepository
	logger  *slog.Logger
	now     func() time.Time
}

func NewTracker(records recordRepository, logger *slog.Logger) *Tracker {
	return NewTrackerWithClock(records, logger, time.Now)
}

// NewTrackerWithClock is NewTracker with an injected clock, so tests can pin
// "today".
func NewTrackerWithClock(records recordRepository, logger *slog.Logger, now func() time.Time) *Tracker {
	return &Tracker{records: records, logger: logger, now: now}
}

// today is the current local calendar date at UTC midnight, comparable with
// parsed expiry dates.
func (t *Tracker) today() time.Time {
	y, m, d := t.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (t *Tracker) Add(ctx context.Context, in store.AddInput) (domain.Medicine, error) {
	return t.records.Add(ctx, in)
}

// List returns every record sorted by ascending expiry.
func (t *Tracker) List(ctx context.Context) ([]domain.Medicine, error) {
	col, err := t.records.Load(ctx)
	if err != nil {
		return nil, err
	}
	return query.SortedByExpiry(col), nil
}

// Expiring returns the records expiring within days of today, inclusive.
func (t *Tracker) Expiring(ctx context.Context, days int) ([]domain.Medicine, error) {
	if days < 0 {
		return nil, fmt.Errorf("expiry window must not be negative: %d", days)
	}
	col, err := t.records.Load(ctx)
	if err != nil {
		return nil, err
	}
	return query.ExpiringWithin(col, t.today(), days), nil
}

// Expired returns the records whose expiry is strictly before today.
func (t *Tracker) Expired(ctx context.Context) ([]domain.Medicine, error) {
	col, err := t.records.Load(ctx)
	if err != nil {
		return nil, err
	}
	return query.Expired(col, t.today()), nil
}

// Find returns records whose name contains q, case-insensitively, in
// alphabetic order.
func (t *Tracker) Find(ctx context.Context, q string) ([]domain.Medicine, error) {
	col, err := t.records.Load(ctx)
	if err != nil {
		return nil, err
	}
	return query.FindByName(col, q), nil
}

func (t *Tracker) Remove(ctx context.Context, name string) (int, error) {
	return t.records.Remove(ctx, name)
}

// ExportCSV writes the collection as CSV to w in insertion order and returns
// the number of exported records.
func (t *Tracker) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	col, err := t.records.Load(ctx)
	if err != nil {
		return 0, err
	}
	if err := query.WriteCSV(w, col); err != nil {
		return 0, err
	}
	t.logger.Info("collection exported", "records", len(col))
	return len(col), nil
}
