package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "banktally",
		Short: "CLI tool for the banktally session ledger API",
		Long: `banktally is a CLI tool for tracking per-player net gain/loss in a
shared betting session.

It supports room lifecycle, per-participant ledger actions (base stake,
apply, undo, mass tie), catch-up proposals, and real-time SSE event
streaming. The device identity is minted on first use and kept in a
local state file, so repeated invocations act as the same participant.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Resolve identity from the state file unless overridden
			if err := cfg.LoadIdentity(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cfg.Identity)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: BANKTALLY_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Identity, "identity", cfg.Identity, "Device identity (env: BANKTALLY_IDENTITY)")
	rootCmd.PersistentFlags().StringVar(&cfg.StateFile, "state-file", cfg.StateFile, "Local state file path (env: BANKTALLY_STATE_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
