package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomEndCmd())
	cmd.AddCommand(newRoomCatchUpCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room (you become the banker)",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"display_name": displayName}
			var result Room

			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&displayName, "name", "n", "", "Display name to show other participants")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get room state: participants and the banker aggregate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result RoomState

			if err := client.Get(fmt.Sprintf("/api/v1/rooms/%s", code), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room as a player (or reconnect to an existing seat)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			req := map[string]string{"display_name": displayName}
			var result JoinResult

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/join", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&displayName, "name", "n", "", "Display name to show other participants")

	return cmd
}

func newRoomEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <code>",
		Short: "End the room (banker only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			if err := client.Delete(fmt.Sprintf("/api/v1/rooms/%s", code)); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Room ended")
			return nil
		},
	}
}

func newRoomCatchUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catchup <code> <identity> <missing>",
		Short: "Propose a catch-up to a player behind on rounds (banker only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			target := args[1]

			missing, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid missing count: %w", err)
			}

			req := map[string]any{
				"target_identity": target,
				"missing_count":   missing,
			}

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/catchup", code), req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Catch-up proposed to %s for %d rounds", target, missing))
			return nil
		},
	}
}
