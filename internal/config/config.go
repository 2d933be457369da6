package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/eda-cli/internal/dataset"
)

// Global configuration structure.
type Global struct {
	InputPath string `mapstructure:"input_path" yaml:"input_path"`
	// Delimiter is empty for auto-detection; "tab" and "\t" both mean a tab.
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	// Encoding forces a character set instead of detecting it.
	Encoding         string   `mapstructure:"encoding" yaml:"encoding"`
	DropColumns      []string `mapstructure:"drop_columns" yaml:"drop_columns"`
	NormalizeColumns []string `mapstructure:"normalize_columns" yaml:"normalize_columns"`

	ZScoreThreshold float64 `mapstructure:"zscore_threshold" yaml:"zscore_threshold"`
	DedupeMode      string  `mapstructure:"dedupe_mode" yaml:"dedupe_mode"`

	// Outputs
	CleanOutput    string `mapstructure:"clean_output" yaml:"clean_output"`
	FilteredOutput string `mapstructure:"filtered_output" yaml:"filtered_output"`
	ReportDir      string `mapstructure:"report_dir" yaml:"report_dir"`
	DashboardTitle string `mapstructure:"dashboard_title" yaml:"dashboard_title"`
	HistogramBins  int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	SampleRows     int    `mapstructure:"sample_rows" yaml:"sample_rows"`

	// HistoryDB is the SQLite run history; empty disables it.
	HistoryDB string `mapstructure:"history_db" yaml:"history_db"`
}

// Dir returns ~/.eda.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".eda"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.eda/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("EDA")
	v.AutomaticEnv()

	v.SetDefault("input_path", "co2_emissions.csv")
	v.SetDefault("delimiter", "")
	v.SetDefault("encoding", "")
	v.SetDefault("drop_columns", dataset.DefaultDropColumns)
	v.SetDefault("normalize_columns", []string{"Ft"})
	v.SetDefault("zscore_threshold", 3.0)
	v.SetDefault("dedupe_mode", "before_outliers")
	v.SetDefault("clean_output", "co2_emissions_clean.csv")
	v.SetDefault("filtered_output", "co2_emissions_filtered.csv")
	v.SetDefault("report_dir", "report")
	v.SetDefault("dashboard_title", "Emisiones de CO2 de vehículos")
	v.SetDefault("histogram_bins", 30)
	v.SetDefault("sample_rows", 5)
	v.SetDefault("history_db", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// DelimiterRune resolves the delimiter setting; 0 means detect.
func (c *Global) DelimiterRune() (rune, error) {
	switch c.Delimiter {
	case "":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	r := []rune(c.Delimiter)
	if len(r) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q: want a single character", c.Delimiter)
	}
	return r[0], nil
}

// Keys lists the settable keys in sorted order.
func Keys() []string {
	keys := []string{
		"input_path", "delimiter", "encoding", "drop_columns", "normalize_columns",
		"zscore_threshold", "dedupe_mode", "clean_output", "filtered_output",
		"report_dir", "dashboard_title", "histogram_bins", "sample_rows", "history_db",
	}
	sort.Strings(keys)
	return keys
}

// Set assigns a single key from its string form. List keys take a
// comma-separated value.
func (c *Global) Set(key, val string) error {
	switch key {
	case "input_path":
		c.InputPath = val
	case "delimiter":
		old := c.Delimiter
		c.Delimiter = val
		if _, err := c.DelimiterRune(); err != nil {
			c.Delimiter = old
			return err
		}
	case "encoding":
		c.Encoding = val
	case "drop_columns":
		c.DropColumns = splitList(val)
	case "normalize_columns":
		c.NormalizeColumns = splitList(val)
	case "zscore_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || !(f > 0) {
			return fmt.Errorf("invalid float for zscore_threshold: %v (must be > 0)", val)
		}
		c.ZScoreThreshold = f
	case "dedupe_mode":
		c.DedupeMode = val
	case "clean_output":
		c.CleanOutput = val
	case "filtered_output":
		c.FilteredOutput = val
	case "report_dir":
		c.ReportDir = val
	case "dashboard_title":
		c.DashboardTitle = val
	case "histogram_bins":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for histogram_bins: %v", val)
		}
		c.HistogramBins = i
	case "sample_rows":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for sample_rows: %v", val)
		}
		c.SampleRows = i
	case "history_db":
		c.HistoryDB = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
