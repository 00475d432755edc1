package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Harvest.RichPayload != 90 {
		t.Errorf("expected rich payload 90, got %d", cfg.Harvest.RichPayload)
	}
	if cfg.Formation.StageLength != 400 {
		t.Errorf("expected stage length 400, got %v", cfg.Formation.StageLength)
	}
	if len(cfg.Formation.DefenseOffsets) != 2 {
		t.Errorf("expected 2 defense offsets, got %d", len(cfg.Formation.DefenseOffsets))
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fleet.yaml")
	doc := `
roles:
  retreat_health: 0.5
  casualty_threshold: 4
harvest:
  sensor_range: 700
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Roles.RetreatHealth != 0.5 {
		t.Errorf("retreat health = %v, want 0.5", cfg.Roles.RetreatHealth)
	}
	if cfg.Roles.CasualtyThreshold != 4 {
		t.Errorf("casualty threshold = %d, want 4", cfg.Roles.CasualtyThreshold)
	}
	if cfg.Harvest.SensorRange != 700 {
		t.Errorf("sensor range = %v, want 700", cfg.Harvest.SensorRange)
	}
	// Untouched keys keep their defaults.
	if cfg.Roles.RecoverHealth != 0.8 {
		t.Errorf("recover health = %v, want default 0.8", cfg.Roles.RecoverHealth)
	}
}

func TestParseRejectsUnknownKey(t *testing.T) {
	_, err := Parse([]byte("roles:\n  retreat_helth: 0.3\n"))
	if err == nil {
		t.Fatal("expected schema error for misspelled key")
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseRejectsOutOfRangeFraction(t *testing.T) {
	if _, err := Parse([]byte("roles:\n  retreat_health: 1.5\n")); err == nil {
		t.Fatal("expected schema error for retreat_health > 1")
	}
}

func TestNormalizeRepairsDegenerateArena(t *testing.T) {
	cfg := Default()
	cfg.Arena.MaxX = cfg.Arena.MinX
	cfg.Roles.RecoverHealth = 0.1
	cfg.Normalize()
	if cfg.Arena.MaxX != 1200 {
		t.Errorf("expected arena reset to default, got max_x %v", cfg.Arena.MaxX)
	}
	if cfg.Roles.RecoverHealth < cfg.Roles.RetreatHealth {
		t.Errorf("recover health %v below retreat health %v", cfg.Roles.RecoverHealth, cfg.Roles.RetreatHealth)
	}
}
