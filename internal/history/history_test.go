package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	first := Run{
		ID: "run-a", StartedAt: base, InputPath: "co2.csv", Encoding: "utf-8", Threshold: 3,
		DedupeMode: "before_outliers", RawRows: 100, SkippedRows: 1, CleanRows: 100, DedupRows: 95,
		FilteredRows: 90, Duplicates: 8,
		Columns: []ColumnOutliers{
			{Column: "m (kg)", Mean: 1400, Std: 200, Considered: 95, Removed: 3, MaxAbsZ: 3.4},
			{Column: "Enedc (g/km)", Mean: 120, Std: 20, Considered: 92, Removed: 2, MaxAbsZ: 3.1},
		},
	}
	second := Run{ID: "run-b", StartedAt: base.Add(time.Hour), InputPath: "co2.csv", Encoding: "windows-1252",
		Threshold: 2.5, DedupeMode: "output_only", Warnings: 2}
	require.NoError(t, s.Record(ctx, first))
	require.NoError(t, s.Record(ctx, second))

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "run-b", runs[0].ID)
	require.Empty(t, runs[0].Columns)
	require.Equal(t, 2, runs[0].Warnings)

	got := runs[1]
	require.True(t, got.StartedAt.Equal(base), "started_at = %v", got.StartedAt)
	require.Equal(t, 90, got.FilteredRows)
	require.Len(t, got.Columns, 2)
	require.Equal(t, "m (kg)", got.Columns[0].Column)
	require.Equal(t, 1, got.Columns[1].Position)
	require.Equal(t, "run-a", got.Columns[1].RunID)
	require.InDelta(t, 3.1, got.Columns[1].MaxAbsZ, 1e-12)

	limited, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)

	require.Error(t, s.Record(ctx, first), "duplicate run id must fail")
	runs, err = s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Len(t, runs[1].Columns, 2)
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), Run{ID: "x", StartedAt: time.Now().UTC()}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}
