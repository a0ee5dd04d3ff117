package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/winstack/internal/dbus"
)

var remoteOpts struct {
	body     string
	typ      string
	style    string
	locked   bool
	instant  bool
}

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Control a running TUI over D-Bus",
	Long: `Control a TUI started with --dbus.

Requests are queued into the TUI's update loop; errors such as popping an
empty stack are shown in its status line.`,
}

var remotePushCmd = &cobra.Command{
	Use:   "push <title>",
	Short: "Push a window and print its ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dbus.NewClient()
		if err != nil {
			return err
		}
		id, err := c.Push(cmd.Context(), args[0], remoteOpts.body, remoteOpts.typ, remoteOpts.style, remoteOpts.locked)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var remotePopCmd = &cobra.Command{
	Use:   "pop",
	Short: "Pop the top window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dbus.NewClient()
		if err != nil {
			return err
		}
		return c.Pop(cmd.Context(), !remoteOpts.instant)
	},
}

var remoteOffsetCmd = &cobra.Command{
	Use:   "offset <y>",
	Short: "Move the top window to y points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		y, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid offset %q: %w", args[0], err)
		}
		c, err := dbus.NewClient()
		if err != nil {
			return err
		}
		return c.SetOffset(cmd.Context(), y, remoteOpts.style)
	},
}

var remoteWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print windows as they are removed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dbus.NewClient()
		if err != nil {
			return err
		}
		err = c.WatchRemovals(cmd.Context(), func(r dbus.Removed) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.ID, r.WindowType, r.Title)
		})
		if cmd.Context().Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.AddCommand(remotePushCmd, remotePopCmd, remoteOffsetCmd, remoteWatchCmd)

	remotePushCmd.Flags().StringVar(&remoteOpts.body, "body", "", "Window body text")
	remotePushCmd.Flags().StringVarP(&remoteOpts.typ, "type", "t", "dismissable",
		"Window type: dismissable, offsetable")
	remotePushCmd.Flags().BoolVar(&remoteOpts.locked, "locked", false, "Refuse pans on the window")
	for _, c := range []*cobra.Command{remotePushCmd, remoteOffsetCmd} {
		c.Flags().StringVar(&remoteOpts.style, "style", "spring", "Transition style: spring, linear, none")
	}
	remotePopCmd.Flags().BoolVar(&remoteOpts.instant, "instant", false, "Pop without a spring")
}
