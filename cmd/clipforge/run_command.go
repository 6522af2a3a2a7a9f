package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"clipforge/internal/history"
	"clipforge/internal/layout"
	"clipforge/internal/logging"
	"clipforge/internal/pipeline"
	"clipforge/internal/services"
)

type runOptions struct {
	mode       string
	count      int
	webcam     string
	gameplay   string
	picker     string
	noCaptions bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [channel]",
		Short: "Create a captioned vertical short from a channel's clips",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request()
			if err != nil {
				return err
			}
			// One buffered reader serves the channel and region prompts.
			stdin := bufio.NewReader(cmd.InOrStdin())
			if len(args) == 1 {
				req.Channel = args[0]
			} else {
				req.Channel, err = promptChannel(stdin, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg)
			if err != nil {
				store = nil
				logging.WarnWithContext(logger, "run history unavailable", "history_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "run is not recorded and processed clips are not skipped"),
				)
			} else {
				defer store.Close()
			}

			p, err := pipeline.NewFromConfig(cfg, logger, store, pipeline.WithTerminal(stdin, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			result, err := p.Run(cmd.Context(), req)
			if err != nil {
				if errors.Is(err, services.ErrAuthentication) {
					return fmt.Errorf("%w (check the Twitch client id and secret)", err)
				}
				return err
			}
			printRunResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.mode, "mode", "", "Clip window: recent (last 24 hours) or top (all time)")
	flags.IntVar(&opts.count, "count", 0, "Number of candidate clips to fetch")
	flags.StringVar(&opts.webcam, "webcam", "", "Webcam region as x,y,w,h (skips the prompt with --gameplay)")
	flags.StringVar(&opts.gameplay, "gameplay", "", "Gameplay region as x,y,w,h")
	flags.StringVar(&opts.picker, "picker", "", "External region picker command")
	flags.BoolVar(&opts.noCaptions, "no-captions", false, "Skip transcription and caption burn-in")
	return cmd
}

func (o runOptions) request() (pipeline.Request, error) {
	req := pipeline.Request{
		Mode:          strings.ToLower(strings.TrimSpace(o.mode)),
		Count:         o.count,
		PickerCommand: strings.TrimSpace(o.picker),
		NoCaptions:    o.noCaptions,
	}
	switch req.Mode {
	case "", "recent", "top":
	default:
		return req, fmt.Errorf("--mode must be recent or top, got %q", o.mode)
	}
	if o.count < 0 || o.count > 100 {
		return req, fmt.Errorf("--count must be between 1 and 100")
	}
	if (o.webcam == "") != (o.gameplay == "") {
		return req, errors.New("--webcam and --gameplay must be given together")
	}
	if o.webcam != "" {
		req.PresetRegions = true
		var err error
		if req.Webcam, err = layout.ParseRect(o.webcam); err != nil {
			return req, fmt.Errorf("--webcam: %w", err)
		}
		if req.Gameplay, err = layout.ParseRect(o.gameplay); err != nil {
			return req, fmt.Errorf("--gameplay: %w", err)
		}
	}
	return req, nil
}

func promptChannel(in *bufio.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Twitch channel: ")
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read channel: %w", err)
	}
	channel := strings.TrimSpace(line)
	if channel == "" {
		return "", errors.New("channel is required")
	}
	return channel, nil
}

func printRunResult(out io.Writer, result pipeline.Result) {
	printer := newStatusPrinter(out)
	switch result.Status {
	case pipeline.StatusNoClips:
		printer.line("Result", statusWarn, "no clips available for this channel and mode")
		return
	case pipeline.StatusCancelled:
		printer.line("Result", statusWarn, "region selection cancelled")
		return
	}

	printer.line("Result", statusOK, "short created")
	printer.line("Clip", statusInfo, fmt.Sprintf("%s (%s views)", result.Clip.Title, humanize.Comma(int64(result.Clip.ViewCount))))
	printer.line("Output", statusInfo, result.OutputPath)
	if result.Captioned {
		printer.line("Captions", statusOK, "burned in")
	} else {
		printer.line("Captions", statusWarn, "skipped: "+result.CaptionSkipReason)
	}
	printer.line("Run", statusInfo, fmt.Sprintf("%s in %s", result.RunID, result.Duration.Round(time.Second)))
}
