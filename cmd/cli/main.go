// Package main implements the Songstack CLI for operating the song store from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dsjohal14/songstack/internal/libs/config"
	"github.com/dsjohal14/songstack/internal/libs/obs"
	"github.com/dsjohal14/songstack/internal/scope/db"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var timeout time.Duration

	root := &cobra.Command{
		Use:          "songstack",
		Short:        "Songstack CLI",
		SilenceUsage: true,
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "store operation timeout")

	root.AddCommand(
		newSeedCmd(&timeout),
		newCountCmd(&timeout),
		newPingCmd(&timeout),
		newGetCmd(&timeout),
	)
	return root
}

// withStore loads config, opens the store and runs fn against it
func withStore(cmd *cobra.Command, timeout time.Duration, fn func(ctx context.Context, store db.Storage) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	obs.InitLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	store, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	return fn(ctx, store)
}

func newSeedCmd(timeout *time.Duration) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Drop the song collection and reload it from a seed dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, *timeout, func(ctx context.Context, store db.Storage) error {
				n, err := db.Seed(ctx, store, file)
				if err != nil {
					return err
				}
				logger := obs.Logger("cli")
				logger.Info().Int("songs", n).Str("seed_file", file).Msg("collection reseeded")
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d songs\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed JSON file (bundled dataset when empty)")
	return cmd
}

func newCountCmd(timeout *time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored songs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, *timeout, func(ctx context.Context, store db.Storage) error {
				n, err := store.Count(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
}

func newPingCmd(timeout *time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Probe the store connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, *timeout, func(ctx context.Context, store db.Storage) error {
				if err := store.Ping(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "connected")
				return nil
			})
		},
	}
}

func newGetCmd(timeout *time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one song as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			return withStore(cmd, *timeout, func(ctx context.Context, store db.Storage) error {
				song, err := store.Get(ctx, id)
				if err != nil {
					return fmt.Errorf("song %d: %w", id, err)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(song)
			})
		},
	}
}
