package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"keyframe/internal/notifications"
	"keyframe/internal/storyboard"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var style string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "submit <prompt>",
		Short: "Queue a video generation job",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			prompt := strings.TrimSpace(strings.Join(args, " "))
			job, err := store.NewJob(cmd.Context(), prompt, normalizeStyle(style))
			if err != nil {
				return err
			}

			notifier := notifications.NewService(cfg)
			if err := notifier.Publish(cmd.Context(), notifications.EventJobQueued, notifications.Payload{
				"prompt": job.Prompt,
				"style":  job.Style,
			}); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: queue notification failed: %v\n", err)
			}

			if jsonOutput {
				return writeJSON(cmd, map[string]string{
					"job_id": job.PublicID,
					"status": string(job.Status),
					"style":  job.Style,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Queued job %s (%s style)\n", job.PublicID, job.Style)
			fmt.Fprintf(out, "Watch it with: keyframe status %s\n", job.PublicID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&style, "style", "s", "", fmt.Sprintf("Video style (one of %s)", strings.Join(storyboard.StyleNames(), ", ")))
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable output")
	return cmd
}

// normalizeStyle title-cases user input so "educational" matches the
// Educational policy key.
func normalizeStyle(style string) string {
	style = strings.TrimSpace(style)
	if style == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(style))
}
