// Package store owns the durable medicine collection: whole-collection
// load and save through a pluggable Backend, plus the add/remove policies.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/domain"
)

// IdentityPolicy governs whether two records may share a name.
type IdentityPolicy string

const (
	// IdentityStrict rejects a second record whose name matches an
	// existing one, case-insensitively.
	IdentityStrict IdentityPolicy = "strict"
	// IdentityPermissive allows duplicate names.
	IdentityPermissive IdentityPolicy = "permissive"
)

// CorruptPolicy governs how an unparsable backing store is handled on load.
type CorruptPolicy string

const (
	// CorruptFail surfaces domain.ErrCorruptStore to the caller.
	CorruptFail CorruptPolicy = "fail"
	// CorruptRecover logs a warning and substitutes an empty collection.
	CorruptRecover CorruptPolicy = "recover"
)

// Policy bundles the configurable behaviors of a RecordStore.
type Policy struct {
	Identity IdentityPolicy
	Corrupt  CorruptPolicy
}

// DefaultPolicy rejects duplicates and fails loudly on a corrupt store.
func DefaultPolicy() Policy {
	return Policy{Identity: IdentityStrict, Corrupt: CorruptFail}
}

// Backend persists the full collection as one unit. Load returns an empty
// collection and nil error when no backing store exists yet; a store that
// exists but cannot be parsed is reported as a wrapped domain.ErrCorruptStore.
// Save overwrites the whole store and must leave the prior content intact on
// failure.
type Backend interface {
	Load(ctx context.Context) ([]domain.Medicine, error)
	Save(ctx context.Context, col []domain.Medicine) error
}

// Append returns col with rec appended. Under IdentityStrict it fails with
// domain.ErrDuplicate when a record with the same case-insensitive name
// already exists. col is not mutated.
func Append(col []domain.Medicine, rec domain.Medicine, policy IdentityPolicy) ([]domain.Medicine, error) {
	if policy == IdentityStrict {
		for _, m := range col {
			if m.SameName(rec.Name) {
				return nil, fmt.Errorf("%w: %q", domain.ErrDuplicate, m.Name)
			}
		}
	}
	out := make([]domain.Medicine, 0, len(col)+1)
	out = append(out, col...)
	return append(out, rec), nil
}

// RemoveByName returns col without any record whose name matches name
// case-insensitively, along with the number of records removed. All matches
// are removed, since names need not be unique under IdentityPermissive.
func RemoveByName(col []domain.Medicine, name string) ([]domain.Medicine, int) {
	out := make([]domain.Medicine, 0, len(col))
	removed := 0
	for _, m := range col {
		if m.SameName(name) {
			removed++
			continue
		}
		out = append(out, m)
	}
	return out, removed
}

// AddInput carries the caller-supplied fields of a new record. Expiry must be
// YYYY-MM-DD; everything except Name and Expiry is optional.
type AddInput struct {
	Name     string
	Strength string
	Form     string
	Batch    string
	Expiry   string
	Location string
}

// RecordStore binds a Backend to the configured policies. Every mutation is a
// load-modify-save serialized behind one mutex, so a long-running front end
// cannot interleave two mutations and lose an update.
type RecordStore struct {
	backend Backend
	policy  Policy
	logger  *slog.Logger
	now     func() time.Time

	mu sync.Mutex
}

func New(backend Backend, policy Policy, logger *slog.Logger) *RecordStore {
	return NewWithClock(backend, policy, logger, time.Now)
}

// NewWithClock is New with an injected clock for CreatedAt stamping.
func NewWithClock(backend Backend, policy Policy, logger *slog.Logger, now func() time.Time) *RecordStore {
	return &RecordStore{backend: backend, policy: policy, logger: logger, now: now}
}

// Load reads the full collection. A missing backing store yields an empty
// collection. A corrupt one either fails or recovers to empty, per policy.
func (s *RecordStore) Load(ctx context.Context) ([]domain.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *RecordStore) load(ctx context.Context) ([]domain.Medicine, error) {
	col, err := s.backend.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCorruptStore) && s.policy.Corrupt == CorruptRecover {
			s.logger.Warn("backing store is corrupted, starting with empty collection", "error", err)
			return nil, nil
		}
		return nil, err
	}
	return col, nil
}

// Save overwrites the backing store with col.
func (s *RecordStore) Save(ctx context.Context, col []domain.Medicine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Save(ctx, col)
}

// Add validates in, appends the new record under the identity policy, and
// persists the updated collection. On any error nothing is written.
func (s *RecordStore) Add(ctx context.Context, in AddInput) (domain.Medicine, error) {
	rec, err := domain.NewMedicine(in.Name, in.Strength, in.Form, in.Batch, in.Expiry, in.Location, s.now())
	if err != nil {
		return domain.Medicine{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(ctx)
	if err != nil {
		return domain.Medicine{}, err
	}
	col, err = Append(col, rec, s.policy.Identity)
	if err != nil {
		return domain.Medicine{}, err
	}
	if err := s.backend.Save(ctx, col); err != nil {
		return domain.Medicine{}, err
	}

	s.logger.Info("medicine added", "name", rec.Name, "expiry", rec.Expiry)
	return rec, nil
}

// Remove deletes every record matching name case-insensitively and persists
// the result. A zero count is not an error; the caller decides whether
// "not found" is user-visible.
func (s *RecordStore) Remove(ctx context.Context, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	col, removed := RemoveByName(col, name)
	if removed == 0 {
		return 0, nil
	}
	if err := s.backend.Save(ctx, col); err != nil {
		return 0, err
	}

	s.logger.Info("medicine removed", "name", name, "count", removed)
	return removed, nil
}
