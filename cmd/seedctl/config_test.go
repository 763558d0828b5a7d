package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRuntimeConfigDefaults(t *testing.T) {
	cfg, err := loadRuntimeConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.CodeLength != 256 || cfg.Engine.FounderSlots != 16 {
		t.Fatalf("unexpected defaults: %+v", cfg.Engine)
	}
	if cfg.Authority != "authority" {
		t.Fatalf("authority = %q", cfg.Authority)
	}
}

func TestLoadRuntimeConfigOverlay(t *testing.T) {
	path := writeConfig(t, `
code_length = 8
founder_slots = 4
derive_fee = 5
release_hash_on_reconsolidate = true
authority = "alice"
generator = "digest/v1"
generator_delegate = "svc"
entropy = "deadbeef"

[owners]
"1" = "alice"
"7" = "bob"
`)
	cfg, err := loadRuntimeConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.CodeLength != 8 || cfg.Engine.FounderSlots != 4 || cfg.Engine.DeriveFee != 5 {
		t.Fatalf("engine overlay missed: %+v", cfg.Engine)
	}
	if !cfg.Engine.ReleaseHashOnReconsolidate {
		t.Fatalf("release flag not applied")
	}
	if cfg.Authority != "alice" || cfg.Generator != "digest/v1" || cfg.GeneratorDelegate != "svc" {
		t.Fatalf("identity overlay missed: %+v", cfg)
	}
	if len(cfg.Entropy) != 4 {
		t.Fatalf("entropy = %x", cfg.Entropy)
	}
	if cfg.Owners[1] != "alice" || cfg.Owners[7] != "bob" {
		t.Fatalf("owners = %+v", cfg.Owners)
	}
}

func TestLoadRuntimeConfigPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `authority = "carol"`)
	cfg, err := loadRuntimeConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Authority != "carol" {
		t.Fatalf("authority = %q", cfg.Authority)
	}
	if cfg.Engine.CodeLength != 256 || cfg.Engine.FounderSlots != 16 {
		t.Fatalf("unset keys must keep defaults: %+v", cfg.Engine)
	}
}

func TestLoadRuntimeConfigRejectsBadInput(t *testing.T) {
	for name, body := range map[string]string{
		"bad entropy":   `entropy = "zz"`,
		"bad owner key": "[owners]\n\"x\" = \"bob\"",
		"empty auth":    `authority = "  "`,
	} {
		path := writeConfig(t, body)
		if _, err := loadRuntimeConfig(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestGeneratorByName(t *testing.T) {
	gen, err := generatorByName("")
	if err != nil || gen != nil {
		t.Fatalf("empty name: %v %v", gen, err)
	}
	gen, err = generatorByName("digest/v1")
	if err != nil || gen == nil {
		t.Fatalf("digest generator: %v %v", gen, err)
	}
	if _, err := generatorByName("quantum/v9"); err == nil {
		t.Fatalf("expected error for unknown generator")
	}
}
