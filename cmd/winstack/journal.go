package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/winstack/internal/adapter/output"
	"github.com/jmylchreest/winstack/internal/core"
	"github.com/jmylchreest/winstack/internal/journal"
	"github.com/jmylchreest/winstack/internal/store"
)

var journalOpts struct {
	format   string
	template string
	showPans bool
	kind     string
	window   string
	search   string
	since    string
	limit    int
	seq      int
	windows  bool
	clear    bool
}

var journalCmd = &cobra.Command{
	Use:   "journal <archive>",
	Short: "Print events from a JSONL archive",
	Long: `Print events archived by "winstack tui --journal" or
"winstack replay --journal".

Examples:
  # Removals only, as JSON
  winstack journal events.jsonl --kind did_remove --format json

  # The last 20 events for one window
  winstack journal events.jsonl --window 01J... -n 20

  # One line per window with its lifetime
  winstack journal events.jsonl --windows

  # Empty the archive
  winstack journal events.jsonl --clear`,
	Args: cobra.ExactArgs(1),
	RunE: runJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVarP(&journalOpts.format, "format", "f", "plain",
		"Output format (plain, json, yaml, ids)")
	journalCmd.Flags().StringVar(&journalOpts.template, "template", "",
		"Custom Go template for plain output, executed per event")
	journalCmd.Flags().BoolVar(&journalOpts.showPans, "show-pans", false,
		"Include pan events")
	journalCmd.Flags().StringVar(&journalOpts.kind, "kind", "",
		"Only events of this kind (pan, will_animate, did_animate, did_remove)")
	journalCmd.Flags().StringVar(&journalOpts.window, "window", "",
		"Only events for this window ID")
	journalCmd.Flags().StringVarP(&journalOpts.search, "search", "s", "",
		"Only events whose title contains this text")
	journalCmd.Flags().StringVar(&journalOpts.since, "since", "",
		"Only events from the last duration (e.g., 1h, 7d, 1w)")
	journalCmd.Flags().IntVarP(&journalOpts.limit, "limit", "n", 0,
		"Only the most recent n events (0=unlimited)")
	journalCmd.Flags().IntVar(&journalOpts.seq, "seq", 0,
		"Print the single event with this sequence number")
	journalCmd.Flags().BoolVar(&journalOpts.windows, "windows", false,
		"Print one line per window instead of events")
	journalCmd.Flags().BoolVar(&journalOpts.clear, "clear", false,
		"Remove every archived event instead of printing")
}

func runJournal(cmd *cobra.Command, args []string) error {
	if journalOpts.clear {
		archive, err := store.NewJSONLPersistence(args[0])
		if err != nil {
			return err
		}
		defer archive.Close()
		return archive.Clear()
	}

	format, err := output.ParseFormat(journalOpts.format)
	if err != nil {
		return err
	}
	kind, err := core.ParseKind(journalOpts.kind)
	if err != nil {
		return err
	}
	since, err := core.ParseDuration(journalOpts.since)
	if err != nil {
		return err
	}

	events, err := store.LoadFile(args[0])
	if err != nil {
		return err
	}

	if journalOpts.seq > 0 {
		e := core.LookupBySeq(events, journalOpts.seq)
		if e == nil {
			return fmt.Errorf("no event with seq %d in %s", journalOpts.seq, args[0])
		}
		events = []journal.Event{*e}
	}

	events = core.Filter(events, core.FilterOptions{
		Since:    since,
		Kind:     kind,
		WindowID: journalOpts.window,
		Search:   journalOpts.search,
		Limit:    journalOpts.limit,
	})

	w := cmd.OutOrStdout()
	if journalOpts.windows {
		return writeWindows(w, events)
	}

	f := output.NewFormatter(format, output.FormatterOptions{
		Template:   journalOpts.template,
		ShowFrames: true,
		ShowPans:   journalOpts.showPans || kind == journal.KindPan || journalOpts.seq > 0,
		Summary:    true,
	})
	return f.Format(w, events)
}

// writeWindows prints one line per window: ID, title, event count, lifetime
// and whether it was removed.
func writeWindows(w io.Writer, events []journal.Event) error {
	for _, id := range core.WindowIDs(events) {
		first, last := core.Lifetime(events, id)
		n := len(core.Filter(events, core.FilterOptions{WindowID: id}))
		removed := core.Filter(events, core.FilterOptions{WindowID: id, Kind: journal.KindDidRemove})

		state := "open"
		if len(removed) > 0 {
			state = "removed"
		}
		if _, err := fmt.Fprintf(w, "%s  %-20s  %s events  %s  %s\n",
			id, first.Title, humanize.Comma(int64(n)),
			humanize.RelTime(first.At, last.At, "", "later"), state); err != nil {
			return err
		}
	}
	return nil
}
