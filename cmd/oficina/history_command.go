package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"oficina/internal/console"
	"oficina/internal/journal"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent launcher sessions and connectivity changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}

			printer := console.New(cmd.OutOrStdout(), cfg.UI.Language)
			path := cfg.JournalPath()
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				printer.HistoryEmpty()
				return nil
			}

			store, err := journal.Open(path)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			sessions, err := store.RecentSessions(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read sessions: %w", err)
			}
			if len(sessions) == 0 {
				printer.HistoryEmpty()
				return nil
			}
			transitions, err := store.RecentTransitions(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read transitions: %w", err)
			}

			printer.SessionsSection()
			printer.Println(console.RenderTable(printer.SessionHeaders(), sessionRows(printer, sessions),
				[]console.Alignment{console.AlignLeft, console.AlignRight, console.AlignLeft, console.AlignLeft, console.AlignLeft, console.AlignLeft}))

			if len(transitions) > 0 {
				printer.Println("")
				printer.TransitionsSection()
				printer.Println(console.RenderTable(printer.TransitionHeaders(), transitionRows(printer, transitions), nil))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of entries to show")
	return cmd
}

func sessionRows(printer *console.Printer, sessions []journal.Session) [][]string {
	rows := make([][]string, 0, len(sessions))
	for _, session := range sessions {
		duration := "-"
		if d := session.Duration(); d > 0 {
			duration = d.Round(time.Second).String()
		}
		url := session.URL
		if url == "" {
			url = "-"
		}
		rows = append(rows, []string{
			session.StartedAt.Local().Format(historyTimeLayout),
			duration,
			session.Mode,
			url,
			printer.OnlineLabel(session.InitialOnline),
			session.Outcome,
		})
	}
	return rows
}

func transitionRows(printer *console.Printer, transitions []journal.TransitionRecord) [][]string {
	rows := make([][]string, 0, len(transitions))
	for _, transition := range transitions {
		rows = append(rows, []string{
			transition.At.Local().Format(historyTimeLayout),
			shortID(transition.SessionID),
			printer.OnlineLabel(transition.Online),
		})
	}
	return rows
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
