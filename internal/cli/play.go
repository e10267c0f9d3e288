package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Ledger commands for your seat in a room",
	}

	cmd.AddCommand(newPlayMeCmd())
	cmd.AddCommand(newPlayBaseCmd())
	cmd.AddCommand(newPlayActionCmd())
	cmd.AddCommand(newPlayUndoCmd())
	cmd.AddCommand(newPlayTieCmd())

	return cmd
}

func newPlayMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me <code>",
		Short: "Show your participant record in the room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result Participant

			if err := client.Get(fmt.Sprintf("/api/v1/rooms/%s/participants/me", code), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayBaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "base <code> <amount>",
		Short: "Set your base stake (e.g. 10 or 2.50)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			amount := args[1]

			req := map[string]string{"amount": amount}
			var result Participant

			if err := client.Put(fmt.Sprintf("/api/v1/rooms/%s/participants/me/base", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayActionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "action <code> <multiplier>",
		Short: "Record a round: base stake times the multiplier (negative for a loss)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			multiplier, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid multiplier: %w", err)
			}

			req := map[string]int{"multiplier": multiplier}
			var result Participant

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/participants/me/actions", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <code>",
		Short: "Undo your most recent round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result Participant

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/participants/me/undo", code), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayTieCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tie <code> <count>",
		Short: "Record zero-value tie rounds to catch up on round count",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			count, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid count: %w", err)
			}

			req := map[string]int{"count": count}
			var result Participant

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/participants/me/ties", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
