package cli

import (
	"errors"
	"net/url"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Game history commands",
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryUserCmd())
	cmd.AddCommand(newHistoryAddCmd())

	return cmd
}

func printHistory(path string) error {
	var result []HistoryRecord
	if err := client.Get(path, &result); err != nil {
		return err
	}
	if result == nil {
		result = []HistoryRecord{}
	}

	out := NewOutput(cfg.Output)
	out.Print(result)
	return nil
}

func newHistoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show your most recent games",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return errors.New("not logged in")
			}
			return printHistory("/api/v1/history")
		},
	}
}

func newHistoryUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <username>",
		Short: "Show the most recent games of a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printHistory("/api/v1/history/" + url.PathEscape(args[0]))
		},
	}
}

func newHistoryAddCmd() *cobra.Command {
	var req struct {
		GameType string `json:"gameType"`
		Result   string `json:"result"`
		Winner   string `json:"winner"`
		Opponent string `json:"opponent,omitempty"`
		GameMode string `json:"gameMode,omitempty"`
	}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a finished game",
		Long: `Record a finished game against your account.

Game types: computer, multiplayer, online
Results: win, loss, draw
Winner: X, O or draw`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return errors.New("not logged in")
			}

			var result HistoryRecord
			if err := client.Post("/api/v1/history", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.GameType, "type", "multiplayer", "Game type")
	cmd.Flags().StringVar(&req.Result, "result", "", "Game result")
	cmd.Flags().StringVar(&req.Winner, "winner", "", "Winning symbol or draw")
	cmd.Flags().StringVar(&req.Opponent, "opponent", "", "Opponent name")
	cmd.Flags().StringVar(&req.GameMode, "mode", "", "Game mode")
	_ = cmd.MarkFlagRequired("result")
	_ = cmd.MarkFlagRequired("winner")

	return cmd
}
