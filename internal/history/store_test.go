// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/barcode-sheet/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(start time.Time, status types.RunStatus) types.RunRecord {
	return types.RunRecord{
		Source:     "labels.pdf",
		Renderer:   "native",
		Images:     9,
		Pages:      2,
		Output:     "barcodes2026.10.18_09.30.00.pdf",
		Status:     status,
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)

	var count int
	require.NoError(t, s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'runs'`,
	).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestNewStoreReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), sampleRun(time.Now(), types.RunSucceeded))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRecordAndList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	first := sampleRun(base, types.RunSucceeded)
	failed := sampleRun(base.Add(time.Minute), types.RunFailed)
	failed.Output = ""
	failed.Error = "rendering page 1 (1_sheet.docx -> 1_sheet.pdf): renderer produced no output"

	id1, err := s.Record(ctx, first)
	require.NoError(t, err)
	id2, err := s.Record(ctx, failed)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	runs, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, id2, runs[0].ID, "most recent first")
	assert.Equal(t, types.RunFailed, runs[0].Status)
	assert.Equal(t, failed.Error, runs[0].Error)
	assert.Empty(t, runs[0].Output)

	got := runs[1]
	assert.Equal(t, first.Source, got.Source)
	assert.Equal(t, first.Renderer, got.Renderer)
	assert.Equal(t, first.Images, got.Images)
	assert.Equal(t, first.Pages, got.Pages)
	assert.Equal(t, first.Output, got.Output)
	assert.True(t, first.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, 3*time.Second, got.Duration())
}

func TestListLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		_, err := s.Record(ctx, sampleRun(base.Add(time.Duration(i)*time.Hour), types.RunSucceeded))
		require.NoError(t, err)
	}

	tests := []struct {
		limit int
		want  int
	}{
		{limit: 5, want: 5},
		{limit: 0, want: defaultLimit},
		{limit: 100, want: 25},
	}
	for _, tt := range tests {
		runs, err := s.List(ctx, tt.limit)
		require.NoError(t, err)
		assert.Len(t, runs, tt.want, "limit %d", tt.limit)
	}
}

func TestListEmpty(t *testing.T) {
	runs, err := testStore(t).List(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
