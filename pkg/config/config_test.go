package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/twealth/twealth/pkg/config"
	"github.com/twealth/twealth/pkg/rollup"
	"github.com/twealth/twealth/pkg/scoring"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := scoring.Defaults().CompositeWeights()
	if len(cfg.Scoring.Weights) != len(want) {
		t.Errorf("expected %d default weights, got %d", len(want), len(cfg.Scoring.Weights))
	}
	for key, w := range want {
		if cfg.Scoring.Weights[key] != w {
			t.Errorf("weight %s = %f, want %f", key, cfg.Scoring.Weights[key], w)
		}
	}
	if cfg.Classification.Version != 1 {
		t.Errorf("classification version = %d, want 1", cfg.Classification.Version)
	}
	if !cfg.Classification.Matches(rollup.TagFixed, "rent") {
		t.Error("default classification should tag rent as fixed")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
scoring:
  weights:
    cashflow: 0.40
    stability: 0.30
    growth: 0.20
    behavior: 0.10
classification:
  version: 2
  tags:
    fixed: ["hoa"]
    investment: ["brokerage"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Scoring.Weights["cashflow"] != 0.40 {
		t.Errorf("cashflow weight = %f, want 0.40", cfg.Scoring.Weights["cashflow"])
	}
	if cfg.Classification.Version != 2 {
		t.Errorf("classification version = %d, want 2", cfg.Classification.Version)
	}
	if cfg.Classification.Matches(rollup.TagFixed, "rent") {
		t.Error("custom table should not tag rent")
	}
	if !cfg.Classification.Matches(rollup.TagInvestment, "brokerage transfer") {
		t.Error("custom table should tag brokerage transfers")
	}

	// The overridden weights still pass engine validation.
	if _, err := scoring.NewEngine(scoring.DefaultPillars(), cfg.Scoring.Weights); err != nil {
		t.Errorf("NewEngine rejected loaded weights: %v", err)
	}
}

func TestLoadPartialFileBackfillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("scoring:\n  weights: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Scoring.Weights) == 0 {
		t.Error("empty weights should backfill to defaults")
	}
	if len(cfg.Classification.Tags) == 0 {
		t.Error("missing classification should backfill to defaults")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("scoring: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfgDir := filepath.Join(root, ".twealth")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(cfgDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := config.FindConfigFile(nested); got != cfgPath {
		t.Errorf("FindConfigFile = %q, want %q", got, cfgPath)
	}
	if got := config.FindConfigFile(t.TempDir()); got != "" {
		t.Errorf("FindConfigFile in empty tree = %q, want empty", got)
	}
}
