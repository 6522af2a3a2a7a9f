package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"clipforge/internal/pipeline"
	"clipforge/internal/twitch"
)

func newClipsCommand(ctx *commandContext) *cobra.Command {
	var mode string
	var count int

	cmd := &cobra.Command{
		Use:   "clips <channel>",
		Short: "List a channel's candidate clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if mode == "" {
				mode = cfg.Twitch.Mode
			}
			if count <= 0 {
				count = cfg.Twitch.ClipCount
			}

			client, err := pipeline.NewTwitchClient(cfg)
			if err != nil {
				return err
			}
			if err := client.Authenticate(cmd.Context()); err != nil {
				return err
			}
			id, err := client.BroadcasterID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			clips, err := client.Clips(cmd.Context(), id, twitch.ClipQuery{Mode: strings.ToLower(mode), First: count})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(clips) == 0 {
				fmt.Fprintln(out, "No clips found")
				return nil
			}
			fmt.Fprintln(out, renderClipTable(clips, time.Now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Clip window: recent or top")
	cmd.Flags().IntVar(&count, "count", 0, "Number of clips to list")
	return cmd
}

func renderClipTable(clips []twitch.Clip, now time.Time) string {
	rows := make([][]string, 0, len(clips))
	for i, clip := range clips {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			clip.ID,
			clip.Title,
			humanize.Comma(int64(clip.ViewCount)),
			fmt.Sprintf("%.0fs", clip.Duration),
			humanize.RelTime(clip.CreatedAt, now, "ago", "from now"),
		})
	}
	return renderTable(
		[]string{"#", "ID", "Title", "Views", "Length", "Created"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}
