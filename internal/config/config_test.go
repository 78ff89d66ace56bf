package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"grid-atlas/internal/catalog"
	"grid-atlas/internal/regions"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("missing secret must be rejected")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("ENTSOE_BRIDGE_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("addr = %q", cfg.HTTPAddr)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("ttl = %v", cfg.CacheTTL)
	}
	if cfg.TelemetryTimeout != 15*time.Second {
		t.Fatalf("timeout = %v", cfg.TelemetryTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("DATABASE_URL", "postgres://localhost/atlas")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Fatalf("ttl = %v", cfg.CacheTTL)
	}
	if cfg.DatabaseURL == "" {
		t.Fatal("database url lost")
	}
}

func TestLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	content := `
fallback_load_mw: 7500
regional_load_factors:
  Wien: 3.0
default_utilization:
  wind: 0.25
border_boxes:
  DE:
    min_lat: 47.5
    max_lat: 48.8
    min_lon: 9.5
    max_lon: 13.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	mc, err := LoadModel(path)
	if err != nil {
		t.Fatal(err)
	}
	if mc.FallbackLoadMW != 7500 {
		t.Fatalf("fallback = %v", mc.FallbackLoadMW)
	}
	if mc.DefaultUtilization[catalog.Wind] != 0.25 {
		t.Fatalf("wind default = %v", mc.DefaultUtilization[catalog.Wind])
	}

	// Wien overridden, everything else from the built-in table.
	if got := mc.LoadFactor(48.2, 16.4); got != 3.0 {
		t.Fatalf("Wien factor = %v, want override 3.0", got)
	}
	if got := mc.LoadFactor(47.85, 16.5); got != regions.LoadFactors[regions.Burgenland] {
		t.Fatalf("Burgenland factor = %v, want built-in", got)
	}

	boxes := mc.Boxes()
	if boxes["DE"].MaxLon != 13.0 {
		t.Fatalf("DE box = %+v", boxes["DE"])
	}
}

func TestLoadModelEmptyPath(t *testing.T) {
	mc, err := LoadModel("")
	if err != nil {
		t.Fatal(err)
	}
	if mc.Boxes() != nil {
		t.Fatal("empty override must yield nil boxes")
	}
	if got := mc.LoadFactor(48.2, 16.4); got != regions.LoadFactors[regions.Wien] {
		t.Fatalf("factor = %v, want built-in Wien", got)
	}
}

func TestLoadModelMissingFile(t *testing.T) {
	if _, err := LoadModel(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("named but missing file must error")
	}
}
