package main

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/winstack/internal/adapter/input"
	"github.com/jmylchreest/winstack/internal/adapter/output"
	"github.com/jmylchreest/winstack/internal/journal"
	"github.com/jmylchreest/winstack/internal/replay"
	"github.com/jmylchreest/winstack/internal/store"
)

var replayOpts struct {
	format    string
	template  string
	showPans  bool
	noFrames  bool
	noSummary bool
	last      bool
	settle    time.Duration
	journal   string
}

var replayCmd = &cobra.Command{
	Use:   "replay <script|->...",
	Short: "Run a scripted interaction and print the callbacks",
	Long: `Run a YAML or JSON script of stack operations and pointer gestures on a
virtual clock, then print every delegate callback it produced.

A script sets the screen size and lists steps. Each step is one of push, pop,
set_offset, wait, tap or gesture. Gestures use pointer actions (pointerMove,
pointerDown, pointerUp, pointerCancel, pause) with durations in milliseconds.

Example script:
  screen: {width: 390, height: 844}
  steps:
    - push: {title: Inbox, type: dismissable}
    - wait: 600ms
    - gesture:
        - {type: pointerMove, x: 200, y: 40}
        - {type: pointerDown}
        - {type: pointerMove, x: 200, y: 600, duration: 200}
        - {type: pointerUp}

Examples:
  # Print callbacks as plain lines
  winstack replay fling.yaml

  # Include every pan as JSON
  winstack replay fling.yaml --format json --show-pans

  # Read the script from stdin
  cat fling.yaml | winstack replay -

  # Run several scripts in parallel; output keeps argument order
  winstack replay fling.yaml offset.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayOpts.format, "format", "f", "plain",
		"Output format (plain, json, yaml, ids)")
	replayCmd.Flags().StringVar(&replayOpts.template, "template", "",
		"Custom Go template for plain output, executed per event")
	replayCmd.Flags().BoolVar(&replayOpts.showPans, "show-pans", false,
		"Include pan events (one per pointer move)")
	replayCmd.Flags().BoolVar(&replayOpts.noFrames, "no-frames", false,
		"Omit frames from plain output")
	replayCmd.Flags().BoolVar(&replayOpts.noSummary, "no-summary", false,
		"Omit the totals line from plain output")
	replayCmd.Flags().BoolVar(&replayOpts.last, "last", false,
		"Only print the final event")
	replayCmd.Flags().DurationVar(&replayOpts.settle, "settle", replay.DefaultSettleLimit,
		"Maximum virtual time to let animations finish after the last step")
	replayCmd.Flags().StringVar(&replayOpts.journal, "journal", "",
		"Append the run's events to this JSONL archive")
}

func runReplay(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(replayOpts.format)
	if err != nil {
		return err
	}

	scripts := make([]*input.Script, len(args))
	for i, arg := range args {
		if scripts[i], err = input.LoadScript(arg); err != nil {
			return err
		}
	}

	// Scripts run on independent virtual clocks, so they can run in parallel.
	results := make([]*replay.Result, len(scripts))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, script := range scripts {
		g.Go(func() error {
			runner := replay.New(script, replay.Options{
				Config:      getConfig(),
				Logger:      logger.With("script", script.Name),
				SettleLimit: replayOpts.settle,
			})
			result, err := runner.Run(ctx)
			if err != nil {
				return fmt.Errorf("replay %s: %w", script.Name, err)
			}
			logger.Info("replay finished",
				"script", script.Name,
				"steps", len(script.Steps),
				"events", humanize.Comma(int64(len(result.Events))),
				"windows", result.Windows,
				"elapsed", result.Elapsed)
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if replayOpts.journal != "" {
		var all []journal.Event
		for _, r := range results {
			all = append(all, r.Events...)
		}
		if err := archiveEvents(replayOpts.journal, all); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	for i, result := range results {
		if len(results) > 1 && format == output.FormatPlain {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "==> %s <==\n", scripts[i].Name)
		}
		if err := writeReplay(out, format, result.Events); err != nil {
			return err
		}
	}
	return nil
}

func writeReplay(w io.Writer, format output.FormatType, events []journal.Event) error {
	opts := output.FormatterOptions{
		Template:   replayOpts.template,
		ShowFrames: !replayOpts.noFrames,
		ShowPans:   replayOpts.showPans,
		Summary:    !replayOpts.noSummary,
	}

	if replayOpts.last {
		if len(events) == 0 {
			return nil
		}
		last := events[len(events)-1]
		if format == output.FormatJSON {
			return output.NewJSONFormatter(opts).FormatSingle(w, &last)
		}
		opts.ShowPans = true
		opts.Summary = false
		events = events[len(events)-1:]
	}

	return output.NewFormatter(format, opts).Format(w, events)
}

func archiveEvents(path string, events []journal.Event) error {
	archive, err := store.NewJSONLPersistence(path)
	if err != nil {
		return fmt.Errorf("failed to open journal archive: %w", err)
	}
	defer archive.Close()

	if err := archive.AppendBatch(events); err != nil {
		return fmt.Errorf("failed to archive events: %w", err)
	}
	logger.Debug("archived events", "path", path, "count", len(events))
	return nil
}
