package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/duebot/plugin/duetime"
	"github.com/hrygo/duebot/plugin/ticktick"
	"github.com/hrygo/duebot/server/timezone"
)

func newInferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "infer <text>",
		Short: "Print the due date inferred for a message, without contacting any service",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInfer,
	}
	cmd.Flags().String("now", "", "reference time in RFC 3339 (default: current time)")
	cmd.Flags().Bool("json", false, "print the task payload that would be sent")
	return cmd
}

func runInfer(cmd *cobra.Command, args []string) error {
	p, err := loadProfile(cmd)
	if err != nil {
		return err
	}
	if err := p.ValidateSettings(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	now := timezone.Clock(p.Location)()
	if raw, _ := cmd.Flags().GetString("now"); raw != "" {
		now, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return errors.Wrapf(err, "invalid --now %q", raw)
		}
	}

	text := strings.Join(args, " ")
	due := duetime.NewResolver(duetime.NewWhenSearcher()).Infer(text, now, p.Location)

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		task := ticktick.NewTask(text, p.TickTick.ProjectID, due)
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(task)
	}

	fmt.Fprintf(out, "Срок: %s\n", ticktick.DueLabel(due))
	fmt.Fprintf(out, "dueDate: %s\n", ticktick.FormatDueDate(due))
	return nil
}
