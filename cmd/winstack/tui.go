package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/winstack/internal/tui"
)

var tuiOpts struct {
	noWatch  bool
	journal  string
	dbus     bool
	feed     string
	feedPans bool
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive window stack",
	Long: `Launch the interactive terminal window stack.

Each terminal cell maps to tui.cell_width x tui.cell_height points, so mouse
drags behave like touch pans on a phone-sized screen.

Mouse:
  drag down from the top edge   pan the top window
  fast fling                    dismiss (dismissable) or lower (offsetable)
  click a lowered window        restore it

Key bindings:
  d / o / l   Push a dismissable, offsetable or locked window
  x / X       Pop the top window (animated / not animated)
  j / k       Lower or restore the top window
  s           Cycle transition style (spring, linear, none)
  c / C       Copy the event journal as JSON / clear it
  ?           Show help
  q           Quit

The config file is watched and reloaded while the TUI runs. With --dbus the
stack is exported on the session bus for "winstack remote". With --feed,
events are streamed as JSON to websocket clients of ADDR/events.`,
	Annotations: map[string]string{altScreen: "true"},
	RunE:        runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().BoolVar(&tuiOpts.noWatch, "no-watch", false,
		"Do not reload the config file when it changes")
	tuiCmd.Flags().StringVar(&tuiOpts.journal, "journal", "",
		"Append stack events to this JSONL archive")
	tuiCmd.Flags().BoolVar(&tuiOpts.dbus, "dbus", false,
		"Export the stack on the session bus")
	tuiCmd.Flags().StringVar(&tuiOpts.feed, "feed", "",
		"Serve a websocket event feed at ADDR/events (e.g. localhost:8787)")
	tuiCmd.Flags().BoolVar(&tuiOpts.feedPans, "feed-pans", false,
		"Include pan events in the feed")
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the TUI needs an interactive terminal; use \"winstack replay\" for scripts")
	}

	watchPath := configPath()
	if tuiOpts.noWatch {
		watchPath = ""
	}

	return tui.Run(cmd.Context(), tui.RunOptions{
		Config:      getConfig(),
		Logger:      logger,
		ConfigPath:  watchPath,
		JournalPath: tuiOpts.journal,
		DBus:        tuiOpts.dbus,
		FeedAddr:    tuiOpts.feed,
		FeedPans:    tuiOpts.feedPans,
	})
}
