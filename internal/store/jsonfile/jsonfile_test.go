package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/domain"
)

func testPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "medicines.json")
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	b := New(testPath(t))

	col, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, col)
}

func TestLoad_CorruptFile(t *testing.T) {
	path := testPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := New(path).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrCorruptStore)
}

func TestLoad_WrongShapeIsCorrupt(t *testing.T) {
	path := testPath(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"not an array"}`), 0600))

	_, err := New(path).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrCorruptStore)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	b := New(testPath(t))
	ctx := context.Background()
	col := []domain.Medicine{
		{Name: "Amoxicillin", Strength: "500mg", Form: "capsule", Expiry: "2025-01-10", CreatedAt: "2024-12-01 09:00:00"},
		{Name: "Ibuprofen", Expiry: "2024-06-01", Location: "cabinet", CreatedAt: "2024-12-01 09:01:00"},
	}

	require.NoError(t, b.Save(ctx, col))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, col, got)
}

// Save of a freshly loaded valid store must not change its content.
func TestSaveLoad_Stable(t *testing.T) {
	path := testPath(t)
	b := New(path)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, []domain.Medicine{{Name: "Aspirin", Expiry: "2025-01-01"}}))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	col, err := b.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, b.Save(ctx, col))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSave_EmptyCollectionWritesArray(t *testing.T) {
	path := testPath(t)
	b := New(path)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestSave_EveryFieldPresent(t *testing.T) {
	path := testPath(t)
	b := New(path)

	require.NoError(t, b.Save(context.Background(), []domain.Medicine{{Name: "Aspirin", Expiry: "2025-01-01"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, field := range []string{"name", "strength", "form", "batch", "expiry", "location", "created_at"} {
		assert.Contains(t, string(data), `"`+field+`"`)
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b := New(filepath.Join(dir, "medicines.json"))

	require.NoError(t, b.Save(context.Background(), []domain.Medicine{{Name: "Aspirin", Expiry: "2025-01-01"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "medicines.json", entries[0].Name())
}

func TestSave_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "medicines.json")
	b := New(path)

	require.NoError(t, b.Save(context.Background(), nil))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
