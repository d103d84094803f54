package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/tictactoe-go/internal/model"
)

func newRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Inspect rooms on the server",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List rooms waiting for an opponent",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []model.RoomSummary
			if err := client.Get("/api/v1/rooms", &result); err != nil {
				return err
			}
			if result == nil {
				result = []model.RoomSummary{}
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show player and room counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Stats
			if err := client.Get("/api/v1/stats", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	})

	return cmd
}
