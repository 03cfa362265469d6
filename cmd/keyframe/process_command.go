package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"keyframe/internal/logging"
	"keyframe/internal/notifications"
	"keyframe/internal/queue"
	"keyframe/internal/stageexec"
	"keyframe/internal/workflow"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <job-id>",
		Short: "Run the pipeline for one pending job without the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := ctx.openStore()
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
			if job.Status != queue.StatusPending {
				return fmt.Errorf("job %s is %s; only pending jobs can be processed", job.PublicID, job.Status)
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			stages, err := workflow.DefaultPipeline(cmd.Context(), cfg, store, logger)
			if err != nil {
				return err
			}

			if err := stageexec.Run(cmd.Context(), stageexec.Options{
				Logger:   logger,
				Store:    store,
				Notifier: notifications.NewService(cfg),
				Stages:   stages,
				Job:      job,
			}); err != nil {
				return err
			}

			refreshed, err := store.GetByPublicID(cmd.Context(), job.PublicID)
			if err != nil {
				return err
			}
			if refreshed == nil {
				return fmt.Errorf("job %s disappeared during processing", job.PublicID)
			}
			out := cmd.OutOrStdout()
			switch refreshed.Status {
			case queue.StatusCompleted:
				fmt.Fprintf(out, "Job %s completed: %s\n", refreshed.PublicID, refreshed.VideoURL)
			case queue.StatusFailed:
				return fmt.Errorf("job %s failed (%s): %s", refreshed.PublicID, refreshed.ErrorKind, refreshed.ErrorMessage)
			default:
				fmt.Fprintf(out, "Job %s finished in state %s\n", refreshed.PublicID, refreshed.Status)
			}
			return nil
		},
	}
	return cmd
}
