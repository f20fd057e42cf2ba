package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/duebot/plugin/ticktick"
	"github.com/hrygo/duebot/server/timezone"
	"github.com/hrygo/duebot/store"
)

func newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recent task creation attempts from the journal",
		Args:  cobra.NoArgs,
		RunE:  runJournal,
	}
	cmd.Flags().Int("limit", 20, "number of records to show")
	cmd.Flags().Int64("chat-id", 0, "only show records from this chat")
	cmd.Flags().Bool("failed", false, "only show failed attempts")
	return cmd
}

func runJournal(cmd *cobra.Command, _ []string) error {
	p, err := loadProfile(cmd)
	if err != nil {
		return err
	}
	if err := p.ValidateStorage(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	if !p.JournalEnabled() {
		return errors.New("journal is disabled (driver is none)")
	}

	ctx := cmd.Context()
	s, err := openJournal(ctx, p)
	if err != nil {
		return err
	}
	defer s.Close()

	find := &store.FindTaskRecord{}
	find.Limit, _ = cmd.Flags().GetInt("limit")
	if chatID, _ := cmd.Flags().GetInt64("chat-id"); chatID != 0 {
		find.ChatID = &chatID
	}
	if failed, _ := cmd.Flags().GetBool("failed"); failed {
		status := store.TaskStatusFailed
		find.Status = &status
	}

	records, err := s.ListTaskRecords(ctx, find)
	if err != nil {
		return errors.Wrap(err, "failed to list task records")
	}
	totals, err := s.Stats(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read journal stats")
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCHAT\tSTATUS\tDUE\tTITLE")
	for _, r := range records {
		status := string(r.Status)
		if r.ErrorCode != "" {
			status += " (" + r.ErrorCode + ")"
		}
		due := ticktick.DueLabel(timezone.FromUnix(r.DueTs, p.Location))
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", r.ID, r.ChatID, status, due, r.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\ncreated: %d, failed: %d\n", totals.Created, totals.Failed)
	return nil
}
