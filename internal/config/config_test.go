package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/eda-cli/internal/dataset"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 3.0, c.ZScoreThreshold)
	require.Equal(t, "before_outliers", c.DedupeMode)
	require.Equal(t, 30, c.HistogramBins)
	require.Equal(t, 5, c.SampleRows)
	require.Equal(t, dataset.DefaultDropColumns, c.DropColumns)
	require.Equal(t, []string{"Ft"}, c.NormalizeColumns)
	require.Empty(t, c.HistoryDB)
}

func TestSaveLoadRoundTripAndEnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("zscore_threshold", "2.5"))
	require.NoError(t, c.Set("drop_columns", "ID, r ,VFN"))
	require.NoError(t, c.Set("delimiter", ";"))
	require.NoError(t, Save(c, ""))
	_, err = os.Stat(filepath.Join(home, ".eda", "config.yaml"))
	require.NoError(t, err)

	got, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 2.5, got.ZScoreThreshold)
	require.Equal(t, []string{"ID", "r", "VFN"}, got.DropColumns)
	d, err := got.DelimiterRune()
	require.NoError(t, err)
	require.Equal(t, ';', d)

	t.Setenv("EDA_ZSCORE_THRESHOLD", "4")
	got, err = Load("")
	require.NoError(t, err)
	require.Equal(t, 4.0, got.ZScoreThreshold)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSetValidates(t *testing.T) {
	c := &Global{}
	require.Error(t, c.Set("zscore_threshold", "0"))
	require.Error(t, c.Set("zscore_threshold", "abc"))
	require.Error(t, c.Set("histogram_bins", "-1"))
	require.Error(t, c.Set("delimiter", ";;"))
	require.Error(t, c.Set("nope", "1"))
	require.NoError(t, c.Set("delimiter", "tab"))
	d, err := c.DelimiterRune()
	require.NoError(t, err)
	require.Equal(t, '\t', d)
}
