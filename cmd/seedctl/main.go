// seedctl is a local harness around the seed registry engine. State persists
// across invocations through the snapshot store selected by the
// SEEDCORE_STORAGE_* environment variables; ownership and value transfers run
// against an in-process static ledger configured from config.toml.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"seedcore/internal/engine"
	"seedcore/pkg/genome"
	"seedcore/pkg/registry"
)

var (
	configPath string
	callerName string
)

func main() {
	root := &cobra.Command{
		Use:           "seedctl",
		Short:         "Operate a local seed registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml")
	root.PersistentFlags().StringVar(&callerName, "as", "", "account the operation is signed by (default: the configured authority)")

	root.AddCommand(
		newInitCmd(),
		newStatusCmd(),
		newShowCmd(),
		newConsolidateCmd(),
		newDeriveCmd(),
		newMutateCmd(),
		newSetPriceCmd(),
		newSetUnsignedCmd(),
		newSetMintingCmd(),
		newRecordTransferCmd(),
		newGovCmd(),
		newArchiveCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// openService builds the engine service from the config file and the
// environment-selected snapshot store. The returned caller is the --as
// account, defaulting to the configured authority.
func openService() (*engine.Service, *registry.StaticLedger, registry.Account, error) {
	cfg, err := loadRuntimeConfig(configPath)
	if err != nil {
		return nil, nil, "", err
	}

	ledger := registry.NewStaticLedger()
	for id := uint64(1); id <= uint64(cfg.Engine.FounderSlots); id++ {
		ledger.SetOwner(id, cfg.Authority)
	}
	for id, owner := range cfg.Owners {
		ledger.SetOwner(id, owner)
	}
	if len(cfg.Entropy) > 0 {
		ledger.SetEntropy(cfg.Entropy)
	}

	gen, err := generatorByName(cfg.Generator)
	if err != nil {
		return nil, nil, "", err
	}

	store, err := engine.OpenSnapshotStore()
	if err != nil {
		return nil, nil, "", err
	}

	svc, err := engine.NewService(cfg.Engine, ledger, cfg.Authority, gen, cfg.GeneratorDelegate,
		engine.WithLogger(engine.NewZerologLogger(newLogger())),
		engine.WithSnapshotStore(store),
	)
	if err != nil {
		_ = store.Close()
		return nil, nil, "", err
	}

	caller := registry.Account(callerName)
	if caller == "" {
		caller = cfg.Authority
	}
	return svc, ledger, caller, nil
}

func generatorByName(name string) (genome.Generator, error) {
	switch name {
	case "":
		return nil, nil
	case genome.DigestGeneratorName:
		return genome.DigestGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown generator %q", name)
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
