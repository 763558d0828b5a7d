package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"seedcore/internal/archive"
	"seedcore/internal/blob"
	"seedcore/internal/engine"
	"seedcore/pkg/genome"
	"seedcore/pkg/registry"
)

func parseID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// withService runs fn against a freshly opened service and closes it after.
func withService(fn func(ctx context.Context, svc *engine.Service, caller registry.Account) error) error {
	svc, _, caller, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	return fn(context.Background(), svc, caller)
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the registry and persist the first snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, svc *engine.Service, caller registry.Account) error {
				// Any committed operation persists the snapshot; a minting
				// toggle to its current value is the cheapest no-op write.
				flags, _, err := svc.Registry().Status()
				if err != nil {
					return err
				}
				if err := svc.SetMintingOpen(ctx, caller, flags.MintingOpen); err != nil {
					return err
				}
				flags, succ, err := svc.Registry().Status()
				if err != nil {
					return err
				}
				return printJSON(map[string]any{"flags": flags, "succession": succ})
			})
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print registry flags and succession state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, svc *engine.Service, _ registry.Account) error {
				flags, succ, err := svc.Registry().Status()
				if err != nil {
					return err
				}
				return printJSON(map[string]any{"flags": flags, "succession": succ})
			})
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(func(ctx context.Context, svc *engine.Service, _ registry.Account) error {
				s, err := svc.Registry().GetSeed(id)
				if err != nil {
					return err
				}
				return printJSON(s)
			})
		},
	}
}

func newConsolidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consolidate <id> <code>",
		Short: "Write a founder slot's content (code is comma-separated decimals)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			code, err := genome.ParseCode(args[1])
			if err != nil {
				return err
			}
			return withService(func(ctx context.Context, svc *engine.Service, caller registry.Account) error {
				s, err := svc.Consolidate(ctx, caller, id, code)
				if err != nil {
					return err
				}
				return printJSON(s)
			})
		},
	}
}

func newDeriveCmd() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "derive <parentA> <parentB> [code]",
		Short: "Create a derived record from two founders",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentA, err := parseID(args[0])
			if err != nil {
				return err
			}
			parentB, err := parseID(args[1])
			if err != nil {
				return err
			}
			var code genome.Code
			if len(args) == 3 {
				code, err = genome.ParseCode(args[2])
				if err != nil {
					return err
				}
			}
			return withService(func(ctx context.Context, svc *engine.Service, caller registry.Account) error {
				s, err := svc.CreateDerived(ctx, caller, registry.Account(to), parentA, parentB, code)
				if err != nil {
					return err
				}
				return printJSON(s)
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient account (default: the caller)")
	return cmd
}

func newMutateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mutate <id> <mutator> [code]",
		Short: "Replace a derived record's code using a mutator record",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mutator, err := parseID(args[1])
			if err != nil {
				return err
			}
			var code genome.Code
			if len(args) == 3 {
				code, err = genome.ParseCode(args[2])
				if err != nil {
					return err
				}
			}
			return withService(func(ctx context.Context, svc *engine.Service, caller registry.Account) error {
				s, err := svc.Mutate(ctx, caller, id, mutator, code)
				if err != nil {
					return err
				}
				return printJSON(s)
			})
		},
	}
}

func newSetPriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-price <id> <price>",
		Short: "Set a record's third-party use fee (0 withdraws the offer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			price, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return err
			}
			return withService(func(ctx context.Context, svc *engine.Service, caller registry.Account) error {
				return svc.SetPrice(ctx, caller, id, price)
			})
		},
	}
}

func newSetUnsignedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-unsigned <id> <true|false>",
		Short: "Toggle a record's unsigned-mutation opt-in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			allow, err := strconv.ParseBool(args[1])
			if err != nil {
				return err
			}
			return withService(func(ctx context.Context, svc *engine.Service, caller registry.Account) error {
				return svc.SetUnsignedMutation(ctx, caller, id, allow)
			})
		},
	}
}

func newSetMintingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-minting <true|false>",
		Short: "Toggle derived creation (authority only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			open, err := strconv.ParseBool(args[0])
			if err != nil {
				return err
			}
			return withService(func(ctx context.Context, svc *engine.Service, caller registry.Account) error {
				return svc.SetMintingOpen(ctx, caller, open)
			})
		},
	}
}

func newRecordTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record-transfer <id>",
		Short: "Refresh a record's ownership mirror from the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(func(ctx context.Context, svc *engine.Service, _ registry.Account) error {
				return svc.RecordTransfer(ctx, id)
			})
		},
	}
}

func newGovCmd() *cobra.Command {
	gov := &cobra.Command{
		Use:   "gov",
		Short: "Registry control succession",
	}
	gov.AddCommand(
		&cobra.Command{
			Use:   "open-gate",
			Short: "Open the ownership gate (authority only, one-way)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withService(func(ctx context.Context, svc *engine.Service, caller registry.Account) error {
					return svc.OpenGate(ctx, caller)
				})
			},
		},
		&cobra.Command{
			Use:   "claim",
			Short: "Claim registry control by founder majority",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withService(func(ctx context.Context, svc *engine.Service, caller registry.Account) error {
					return svc.Claim(ctx, caller)
				})
			},
		},
		&cobra.Command{
			Use:   "confirm",
			Short: "Finalize a provisional claim",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withService(func(ctx context.Context, svc *engine.Service, caller registry.Account) error {
					return svc.Confirm(ctx, caller)
				})
			},
		},
		&cobra.Command{
			Use:   "rollback",
			Short: "Undo an unconfirmed claim",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withService(func(ctx context.Context, svc *engine.Service, caller registry.Account) error {
					return svc.Rollback(ctx, caller)
				})
			},
		},
	)
	return gov
}

func newArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Write the current snapshot to blob storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, err := blob.Open(ctx)
			if err != nil {
				return err
			}
			svc, _, _, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()
			snap, err := svc.Registry().Export()
			if err != nil {
				return err
			}
			key, err := archive.New(store).Archive(ctx, snap)
			if err != nil {
				return err
			}
			return printJSON(map[string]string{"key": key})
		},
	}
}
