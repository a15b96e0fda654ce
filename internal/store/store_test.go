package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/domain"
)

// memBackend is an in-memory Backend for tests. loadErr and saveErr, when
// set, are returned verbatim.
type memBackend struct {
	col     []domain.Medicine
	loadErr error
	saveErr error
	saves   int
}

func (b *memBackend) Load(ctx context.Context) ([]domain.Medicine, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	out := make([]domain.Medicine, len(b.col))
	copy(out, b.col)
	return out, nil
}

func (b *memBackend) Save(ctx context.Context, col []domain.Medicine) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	b.col = make([]domain.Medicine, len(col))
	copy(b.col, col)
	b.saves++
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time {
	return time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
}

func newTestStore(b Backend, policy Policy) *RecordStore {
	return NewWithClock(b, policy, testLogger(), fixedClock)
}

func TestAppend_Permissive(t *testing.T) {
	col := []domain.Medicine{{Name: "Aspirin", Expiry: "2025-01-01"}}

	out, err := Append(col, domain.Medicine{Name: "aspirin", Expiry: "2026-01-01"}, IdentityPermissive)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Len(t, col, 1)
}

func TestAppend_StrictRejectsCaseFoldedDuplicate(t *testing.T) {
	col := []domain.Medicine{{Name: "Paracetamol", Expiry: "2025-01-01"}}

	_, err := Append(col, domain.Medicine{Name: "paracetamol", Expiry: "2026-01-01"}, IdentityStrict)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRemoveByName_AllMatches(t *testing.T) {
	col := []domain.Medicine{
		{Name: "Aspirin"},
		{Name: "Ibuprofen"},
		{Name: "aspirin"},
	}

	out, removed := RemoveByName(col, "ASPIRIN")
	assert.Equal(t, 2, removed)
	require.Len(t, out, 1)
	assert.Equal(t, "Ibuprofen", out[0].Name)
}

func TestRemoveByName_NoMatch(t *testing.T) {
	col := []domain.Medicine{{Name: "Ibuprofen"}}

	out, removed := RemoveByName(col, "Aspirin")
	assert.Zero(t, removed)
	assert.Equal(t, col, out)
}

func TestRecordStoreAdd(t *testing.T) {
	b := &memBackend{}
	s := newTestStore(b, DefaultPolicy())

	rec, err := s.Add(context.Background(), AddInput{Name: "Amoxicillin", Strength: "500mg", Expiry: "2025-01-10"})
	require.NoError(t, err)
	assert.Equal(t, "Amoxicillin", rec.Name)
	assert.Equal(t, "2024-12-01 09:00:00", rec.CreatedAt)

	require.Len(t, b.col, 1)
	assert.Equal(t, rec, b.col[0])
}

func TestRecordStoreAdd_InvalidDateNoWrite(t *testing.T) {
	b := &memBackend{}
	s := newTestStore(b, DefaultPolicy())

	_, err := s.Add(context.Background(), AddInput{Name: "Aspirin", Expiry: "2024-13-40"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
	assert.Zero(t, b.saves, "rejected add must not touch the backing store")
}

func TestRecordStoreAdd_StrictDuplicate(t *testing.T) {
	b := &memBackend{}
	s := newTestStore(b, DefaultPolicy())
	ctx := context.Background()

	_, err := s.Add(ctx, AddInput{Name: "Paracetamol", Expiry: "2025-01-01"})
	require.NoError(t, err)

	_, err = s.Add(ctx, AddInput{Name: "paracetamol", Expiry: "2026-01-01"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Len(t, b.col, 1, "store must retain exactly one record")
}

func TestRecordStoreAdd_PermissiveDuplicate(t *testing.T) {
	b := &memBackend{}
	s := newTestStore(b, Policy{Identity: IdentityPermissive, Corrupt: CorruptFail})
	ctx := context.Background()

	_, err := s.Add(ctx, AddInput{Name: "Paracetamol", Expiry: "2025-01-01"})
	require.NoError(t, err)
	_, err = s.Add(ctx, AddInput{Name: "paracetamol", Expiry: "2026-01-01"})
	require.NoError(t, err)

	assert.Len(t, b.col, 2)
}

func TestRecordStoreAdd_SaveFailurePropagates(t *testing.T) {
	b := &memBackend{saveErr: fmt.Errorf("disk full")}
	s := newTestStore(b, DefaultPolicy())

	_, err := s.Add(context.Background(), AddInput{Name: "Aspirin", Expiry: "2025-01-01"})
	assert.ErrorContains(t, err, "disk full")
}

func TestRecordStoreRemove(t *testing.T) {
	b := &memBackend{col: []domain.Medicine{{Name: "Aspirin"}, {Name: "aspirin"}, {Name: "Ibuprofen"}}}
	s := newTestStore(b, DefaultPolicy())

	removed, err := s.Remove(context.Background(), "Aspirin")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Len(t, b.col, 1)
}

func TestRecordStoreRemove_NotFoundIsZeroEffect(t *testing.T) {
	b := &memBackend{col: []domain.Medicine{{Name: "Ibuprofen"}}}
	s := newTestStore(b, DefaultPolicy())

	removed, err := s.Remove(context.Background(), "Aspirin")
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Len(t, b.col, 1)
	assert.Zero(t, b.saves, "zero-match remove must not rewrite the store")
}

func TestRecordStoreLoad_CorruptFail(t *testing.T) {
	b := &memBackend{loadErr: fmt.Errorf("parse store: %w", domain.ErrCorruptStore)}
	s := newTestStore(b, Policy{Identity: IdentityStrict, Corrupt: CorruptFail})

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrCorruptStore)
}

func TestRecordStoreLoad_CorruptRecover(t *testing.T) {
	b := &memBackend{loadErr: fmt.Errorf("parse store: %w", domain.ErrCorruptStore)}
	s := newTestStore(b, Policy{Identity: IdentityStrict, Corrupt: CorruptRecover})

	col, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, col)
}

func TestRecordStoreLoad_OtherErrorsAlwaysPropagate(t *testing.T) {
	b := &memBackend{loadErr: fmt.Errorf("permission denied")}
	s := newTestStore(b, Policy{Identity: IdentityStrict, Corrupt: CorruptRecover})

	_, err := s.Load(context.Background())
	assert.ErrorContains(t, err, "permission denied")
}
