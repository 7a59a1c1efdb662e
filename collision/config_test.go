package collision

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
max_projectiles: 128
backend: batch
workers: 2
tags: [player, enemy, graze]
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.MaxProjectiles != 128 || cfg.Backend != BackendBatch || cfg.Workers != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
	// Unset keys keep defaults
	if cfg.MaxReceivers != DefaultMaxReceivers {
		t.Errorf("max_receivers = %d, want default", cfg.MaxReceivers)
	}
	names := cfg.TagNames()
	if i, _ := names.Index("graze"); i != 2 {
		t.Errorf("graze index = %d", i)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	cases := []string{
		"max_projectiles: 0",
		"max_global_collisions_per_tick: -1",
		"backend: gpu",
		"workers: -2",
		"tags: [a, b, a]",
	}
	for _, c := range cases {
		if _, err := ParseConfig([]byte(c)); err == nil {
			t.Errorf("%q: expected error", c)
		}
	}
	_, err := ParseConfig([]byte("max_receivers: 0"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collision.yaml")
	if err := os.WriteFile(path, []byte("backend: sequential\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Backend != BackendSequential {
		t.Errorf("backend = %v", cfg.Backend)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestBackendModeText(t *testing.T) {
	for _, m := range []BackendMode{BackendAuto, BackendSequential, BackendBatch} {
		b, _ := m.MarshalText()
		var got BackendMode
		if err := got.UnmarshalText(b); err != nil || got != m {
			t.Errorf("%v: got %v, %v", m, got, err)
		}
	}
}
