package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/deps"
	"clipforge/internal/language"
	"clipforge/internal/preflight"
	"clipforge/internal/services"
)

// pipelineFilters are the ffmpeg filters composition and burn-in rely on.
var pipelineFilters = []string{"crop", "scale", "vstack"}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var online bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, external tools and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			printer := newStatusPrinter(cmd.OutOrStdout())
			failed := runDoctor(cmd.Context(), printer, ctx, cfg, online, services.CommandOutput)
			if failed > 0 {
				return fmt.Errorf("%d required check(s) failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&online, "online", false, "Also request a Twitch access token")
	return cmd
}

// runDoctor prints every check and returns the number of required failures.
func runDoctor(ctx context.Context, printer *statusPrinter, cc *commandContext, cfg *config.Config, online bool, run services.OutputRunner) int {
	failed := 0

	printer.section("Configuration")
	configDetail := cc.configPath
	if !cc.configSeen {
		configDetail = "not found, defaults in use (run `clipforge config init`)"
	}
	printer.line("Config file", passFail(cc.configSeen, true), configDetail)
	printer.line("Download method", statusInfo, cfg.Download.Method)
	captionDetail := "disabled"
	if cfg.Captions.Enabled {
		captionDetail = fmt.Sprintf("enabled (%s, %s)", cfg.Transcription.Engine, language.DisplayName(cfg.Transcription.Language))
	}
	printer.line("Captions", statusInfo, captionDetail)

	printer.section("Dependencies")
	statuses := preflight.CheckSystemDeps(cfg)
	failed += len(deps.MissingRequired(statuses))
	ffmpegFound := false
	for _, status := range statuses {
		detail := status.Path
		if !status.Available {
			detail = status.Detail
		}
		if status.Command == cfg.Tools.FFmpegBinary && status.Available {
			ffmpegFound = true
		}
		printer.line(status.Name, passFail(status.Available, status.Optional), detail)
	}
	if ffmpegFound {
		if version, err := deps.FFmpegVersion(ctx, cfg.Tools.FFmpegBinary, run); err == nil {
			printer.line("FFmpeg version", statusInfo, version)
		}
		filters := append([]string(nil), pipelineFilters...)
		if cfg.Captions.Enabled {
			filters = append(filters, "subtitles")
		}
		filterStatus := deps.CheckFFmpegFilters(ctx, cfg.Tools.FFmpegBinary, run, filters...)
		detail := filterStatus.Description
		if !filterStatus.Available {
			detail = filterStatus.Detail
			failed++
		}
		printer.line(filterStatus.Name, passFail(filterStatus.Available, false), detail)
	}

	printer.section("Preflight")
	results := preflight.RunAll(ctx, cfg)
	if online {
		results = append(results, preflight.CheckTwitchLogin(ctx, cfg))
	}
	for _, result := range results {
		if !result.Passed {
			failed++
		}
		printer.line(result.Name, passFail(result.Passed, false), result.Detail)
	}
	return failed
}
