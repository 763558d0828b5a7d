package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"seedcore/internal/engine"
	"seedcore/pkg/registry"
)

// seedctl config.toml key mapping to registry runtime settings.
type fileConfig struct {
	CodeLength                 int               `toml:"code_length"`
	FounderSlots               int               `toml:"founder_slots"`
	DeriveFee                  uint64            `toml:"derive_fee"`
	ReleaseHashOnReconsolidate bool              `toml:"release_hash_on_reconsolidate"`
	Authority                  string            `toml:"authority"`
	Generator                  string            `toml:"generator"`
	GeneratorDelegate          string            `toml:"generator_delegate"`
	Entropy                    string            `toml:"entropy"`
	Owners                     map[string]string `toml:"owners"`
}

// runtimeConfig is the resolved CLI runtime: engine config plus the local
// ledger harness inputs.
type runtimeConfig struct {
	Engine            engine.Config
	Authority         registry.Account
	Generator         string
	GeneratorDelegate registry.Account
	Entropy           []byte
	Owners            map[uint64]registry.Account
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{
		Engine:    engine.DefaultConfig(),
		Authority: "authority",
		Owners:    map[uint64]registry.Account{},
	}
}

// seedctl loader for TOML config with default overlay.
func loadRuntimeConfig(path string) (runtimeConfig, error) {
	cfg := defaultRuntimeConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return runtimeConfig{}, fmt.Errorf("load seedctl config: %w", err)
	}

	if meta.IsDefined("code_length") {
		cfg.Engine.CodeLength = raw.CodeLength
	}
	if meta.IsDefined("founder_slots") {
		cfg.Engine.FounderSlots = raw.FounderSlots
	}
	if meta.IsDefined("derive_fee") {
		cfg.Engine.DeriveFee = raw.DeriveFee
	}
	if meta.IsDefined("release_hash_on_reconsolidate") {
		cfg.Engine.ReleaseHashOnReconsolidate = raw.ReleaseHashOnReconsolidate
	}
	if meta.IsDefined("authority") {
		cfg.Authority = registry.Account(strings.TrimSpace(raw.Authority))
	}
	if meta.IsDefined("generator") {
		cfg.Generator = strings.TrimSpace(raw.Generator)
	}
	if meta.IsDefined("generator_delegate") {
		cfg.GeneratorDelegate = registry.Account(strings.TrimSpace(raw.GeneratorDelegate))
	}
	if meta.IsDefined("entropy") {
		b, err := hex.DecodeString(strings.TrimSpace(raw.Entropy))
		if err != nil {
			return runtimeConfig{}, fmt.Errorf("load seedctl config: entropy: %w", err)
		}
		cfg.Entropy = b
	}
	for k, v := range raw.Owners {
		id, err := strconv.ParseUint(strings.TrimSpace(k), 10, 64)
		if err != nil {
			return runtimeConfig{}, fmt.Errorf("load seedctl config: owner key %q: %w", k, err)
		}
		cfg.Owners[id] = registry.Account(strings.TrimSpace(v))
	}

	if cfg.Authority == "" {
		return runtimeConfig{}, fmt.Errorf("load seedctl config: authority must not be empty")
	}
	return cfg, nil
}
