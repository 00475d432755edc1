// Package config loads fleet tuning from YAML. Every numeric threshold the
// role rules, allocation protocol and formation planner use lives here.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var schemaJSON string

type Config struct {
	Arena     Arena     `yaml:"arena"`
	Harvest   Harvest   `yaml:"harvest"`
	Formation Formation `yaml:"formation"`
	Roles     Roles     `yaml:"roles"`
	Server    Server    `yaml:"server"`
}

type Arena struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
	// NearTolerance is how close counts as "at" a point or base.
	NearTolerance float64 `yaml:"near_tolerance"`
}

// Bound returns the arena rectangle.
func (a Arena) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{a.MinX, a.MinY}, Max: orb.Point{a.MaxX, a.MaxY}}
}

type Harvest struct {
	RichPayload int `yaml:"rich_payload"`
	// SensorRange limits candidate deposits; 0 means the whole arena.
	SensorRange float64 `yaml:"sensor_range"`
}

type Formation struct {
	StageLength    float64      `yaml:"stage_length"`
	WingLength     float64      `yaml:"wing_length"`
	RebaseFactor   float64      `yaml:"rebase_factor"`
	DefenseOffsets [][2]float64 `yaml:"defense_offsets"`
}

type Roles struct {
	RetreatHealth     float64 `yaml:"retreat_health"`
	RecoverHealth     float64 `yaml:"recover_health"`
	CasualtyThreshold int     `yaml:"casualty_threshold"`
	EnemyRatio        float64 `yaml:"enemy_ratio"`
	FireRange         float64 `yaml:"fire_range"`
}

type Server struct {
	SocketPath   string `yaml:"socket_path"`
	ObserverAddr string `yaml:"observer_addr"`
	JournalDir   string `yaml:"journal_dir"`
	StorePath    string `yaml:"store_path"`
}

// Default returns the tuning the fleet was developed against: a 1200x1200
// arena with 90-unit cargo holds.
func Default() Config {
	return Config{
		Arena: Arena{MinX: 0, MinY: 0, MaxX: 1200, MaxY: 1200, NearTolerance: 20},
		Harvest: Harvest{
			RichPayload: 90,
		},
		Formation: Formation{
			StageLength:    400,
			WingLength:     100,
			RebaseFactor:   5,
			DefenseOffsets: [][2]float64{{150, 50}, {50, 150}},
		},
		Roles: Roles{
			RetreatHealth:     0.4,
			RecoverHealth:     0.8,
			CasualtyThreshold: 3,
			EnemyRatio:        1.0,
			FireRange:         600,
		},
		Server: Server{
			SocketPath: "/tmp/wingman.sock",
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
// The document is checked against the embedded schema before decoding so a
// typo in a key fails loudly instead of silently keeping the default.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML document over the defaults.
func Parse(raw []byte) (Config, error) {
	cfg := Default()
	if err := Validate(raw); err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Validate checks a YAML document against the config schema.
func Validate(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if doc == nil {
		return nil
	}
	// The validator wants JSON-shaped values (float64 numbers, string keys).
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config to json: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("config to json: %w", err)
	}
	schema, err := jsonschema.CompileString("config.schema.json", schemaJSON)
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Normalize clamps fractions and repairs values that would break geometry.
func (c *Config) Normalize() {
	if c.Arena.MaxX <= c.Arena.MinX || c.Arena.MaxY <= c.Arena.MinY {
		d := Default().Arena
		c.Arena.MinX, c.Arena.MinY, c.Arena.MaxX, c.Arena.MaxY = d.MinX, d.MinY, d.MaxX, d.MaxY
	}
	if c.Arena.NearTolerance <= 0 {
		c.Arena.NearTolerance = Default().Arena.NearTolerance
	}
	if c.Formation.StageLength <= 0 {
		c.Formation.StageLength = Default().Formation.StageLength
	}
	if c.Formation.WingLength <= 0 {
		c.Formation.WingLength = Default().Formation.WingLength
	}
	if c.Formation.RebaseFactor <= 0 {
		c.Formation.RebaseFactor = Default().Formation.RebaseFactor
	}
	c.Roles.RetreatHealth = clamp(c.Roles.RetreatHealth, 0, 1)
	c.Roles.RecoverHealth = clamp(c.Roles.RecoverHealth, c.Roles.RetreatHealth, 1)
	c.Roles.CasualtyThreshold = max(c.Roles.CasualtyThreshold, 1)
	if c.Roles.EnemyRatio < 0 {
		c.Roles.EnemyRatio = 0
	}
	if c.Harvest.SensorRange < 0 {
		c.Harvest.SensorRange = 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
