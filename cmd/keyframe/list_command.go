package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"keyframe/internal/queue"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs in the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []queue.Status
			if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
				if !queue.IsValidStatus(trimmed) {
					return fmt.Errorf("unknown status %q (expected one of %s)", trimmed, statusNames())
				}
				statuses = append(statuses, queue.Status(trimmed))
			}

			_, store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			jobs, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}

			if jsonOutput {
				details := make([]map[string]any, 0, len(jobs))
				for _, job := range jobs {
					details = append(details, jobDetail(job))
				}
				return writeJSON(cmd, details)
			}

			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs found.")
				return nil
			}

			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				rows = append(rows, []string{
					job.PublicID,
					string(job.Status),
					truncate(job.Prompt, 48),
					job.Style,
					job.UpdatedAt.Local().Format(time.RFC3339),
				})
			}
			headers := []string{"Job", "Status", "Prompt", "Style", "Updated"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", fmt.Sprintf("Only show jobs with this status (%s)", statusNames()))
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable output")
	return cmd
}

func statusNames() string {
	names := make([]string, 0, 4)
	for _, status := range queue.AllStatuses() {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
