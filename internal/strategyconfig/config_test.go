package strategyconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if len(cfg.ETFs) != 3 {
		t.Fatalf("expected 3 tracked ETFs, got %d", len(cfg.ETFs))
	}
	if cfg.ETFs[0].Code != "0056" {
		t.Errorf("expected 0056 first, got %s", cfg.ETFs[0].Code)
	}

	profiles := cfg.Profiles()
	if profiles["00878"].Priority != 2 {
		t.Errorf("expected 00878 priority=2, got %d", profiles["00878"].Priority)
	}

	params := cfg.TechnicalParams()
	if params.RSIPeriod != 14 || params.MinBars != 30 {
		t.Errorf("unexpected technical params: %+v", params)
	}

	sizing := cfg.SizingTable()
	if sizing.MaxSingle != 0.30 {
		t.Errorf("expected max single 0.30, got %v", sizing.MaxSingle)
	}
}

func TestHashDeterministic(t *testing.T) {
	cfg := Default()

	hash1, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash1) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash1))
	}

	hash2, _ := Hash(cfg)
	if hash1 != hash2 {
		t.Error("hash not deterministic")
	}

	cfg.Windows.PostEventDays = 9
	hash3, _ := Hash(cfg)
	if hash1 == hash3 {
		t.Error("hash unchanged after config edit")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	yaml := `
meta:
  strategy_id: test
  version: v1
windows:
  post_event_days: 7
  pre_event_dayz: 3
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field pre_event_dayz")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Meta.StrategyID != "tw_etf_dividend_capture" {
		t.Errorf("unexpected strategy id %s", cfg.Meta.StrategyID)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing strategy id", func(c *Config) { c.Meta.StrategyID = "" }},
		{"bad timezone", func(c *Config) { c.Meta.Timezone = "Mars/Olympus" }},
		{"zero post window", func(c *Config) { c.Windows.PostEventDays = 0 }},
		{"high confidence beyond window", func(c *Config) { c.Windows.HighConfidenceDays = 8 }},
		{"inverted rsi bands", func(c *Config) { c.Technical.RSIOversold = 80 }},
		{"ma order violated", func(c *Config) { c.Technical.MAMedium = 3 }},
		{"min bars below ma long", func(c *Config) { c.Technical.MinBars = 10 }},
		{"risk weights off", func(c *Config) { c.Risk.MarketWeight = 0.5 }},
		{"sizing increases with risk", func(c *Config) { c.Sizing.HighPct = 0.5 }},
		{"no etfs", func(c *Config) { c.ETFs = nil }},
		{"duplicate code", func(c *Config) { c.ETFs[1].Code = "0056" }},
		{"zero beta", func(c *Config) { c.ETFs[0].Beta = 0 }},
		{"bad dividend month", func(c *Config) { c.ETFs[2].DividendMonths = []int{13} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWindowBounds(t *testing.T) {
	cfg := Default()
	cfg.Windows.PostEventDays = 9
	cfg.Windows.PreEventDays = 2
	cfg.Windows.HighConfidenceDays = 5

	b := cfg.WindowBounds()
	if b.PostEventDays != 9 || b.PreEventDays != 2 || b.HighConfidenceDays != 5 {
		t.Errorf("WindowBounds() = %+v", b)
	}
}
