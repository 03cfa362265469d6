package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"keyframe/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the state of a queued job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			job, err := store.GetByPublicID(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if job == nil {
				return fmt.Errorf("no job with id %q", args[0])
			}

			if jsonOutput {
				return writeJSON(cmd, jobDetail(job))
			}

			rows := [][]string{
				{"Job", job.PublicID},
				{"Status", string(job.Status)},
				{"Prompt", job.Prompt},
				{"Style", job.Style},
			}
			if job.Title != "" {
				rows = append(rows, []string{"Title", job.Title})
			}
			if job.Voice != "" {
				rows = append(rows, []string{"Voice", job.Voice})
			}
			if job.ProgressStage != "" {
				rows = append(rows, []string{"Stage", job.ProgressStage})
			}
			if job.ProgressPercent > 0 {
				rows = append(rows, []string{"Progress", fmt.Sprintf("%.0f%%", job.ProgressPercent)})
			}
			if job.ProgressMessage != "" {
				rows = append(rows, []string{"Detail", job.ProgressMessage})
			}
			if job.VideoURL != "" {
				rows = append(rows, []string{"Video", job.VideoURL})
			}
			if job.ThumbnailURL != "" {
				rows = append(rows, []string{"Thumbnail", job.ThumbnailURL})
			}
			if job.ErrorKind != "" {
				rows = append(rows, []string{"Error kind", job.ErrorKind})
			}
			if job.ErrorMessage != "" {
				rows = append(rows, []string{"Error", job.ErrorMessage})
			}
			rows = append(rows,
				[]string{"Created", job.CreatedAt.Local().Format(time.RFC3339)},
				[]string{"Updated", job.UpdatedAt.Local().Format(time.RFC3339)},
			)

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable output")
	return cmd
}

func jobDetail(job *queue.Job) map[string]any {
	detail := map[string]any{
		"job_id":     job.PublicID,
		"status":     string(job.Status),
		"prompt":     job.Prompt,
		"style":      job.Style,
		"created_at": job.CreatedAt,
		"updated_at": job.UpdatedAt,
	}
	if job.Title != "" {
		detail["title"] = job.Title
	}
	if job.Voice != "" {
		detail["voice"] = job.Voice
	}
	if job.ProgressStage != "" {
		detail["progress_stage"] = job.ProgressStage
		detail["progress_percent"] = job.ProgressPercent
	}
	if job.ProgressMessage != "" {
		detail["progress_message"] = job.ProgressMessage
	}
	if job.VideoURL != "" {
		detail["video_url"] = job.VideoURL
		detail["thumbnail_url"] = job.ThumbnailURL
	}
	if job.ErrorKind != "" {
		detail["error_kind"] = job.ErrorKind
		detail["error_message"] = job.ErrorMessage
	}
	return detail
}
