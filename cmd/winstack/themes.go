package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/winstack/internal/theme"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the palettes the TUI can use",
	Long: `List bundled palettes and those in the user themes directory.

The configured palette (tui.theme) is marked with *. A user file shadows a
bundled palette of the same name.`,
	Args: cobra.NoArgs,
	RunE: runThemesList,
}

var themesShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print a resolved palette as TOML",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runThemesShow,
}

func init() {
	rootCmd.AddCommand(themesCmd)
	themesCmd.AddCommand(themesShowCmd)
}

func runThemesList(cmd *cobra.Command, args []string) error {
	themes, err := theme.ListAvailableThemes()
	if err != nil {
		return fmt.Errorf("failed to list themes: %w", err)
	}

	current := getConfig().TUI.Theme
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, t := range themes {
		mark := " "
		if t.Name == current {
			mark = "*"
		}
		source := "bundled"
		if !t.IsBundled {
			source = t.Path
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\n", mark, t.Name, swatch(t.Name), source)
	}
	return tw.Flush()
}

// swatch renders one block per palette colour, or nothing if the theme fails
// to load.
func swatch(name string) string {
	t, err := theme.Load(name)
	if err != nil {
		logger.Warn("failed to load theme", "theme", name, "error", err)
		return "(invalid)"
	}
	p := t.Palette
	var s string
	for _, c := range []string{p.Accent, p.Offsetable, p.Dragging, p.Locked, p.Muted, p.Text, p.Error} {
		s += lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("■")
	}
	return s
}

func runThemesShow(cmd *cobra.Command, args []string) error {
	name := getConfig().TUI.Theme
	if len(args) == 1 {
		name = args[0]
	}
	t, err := theme.Load(name)
	if err != nil {
		return err
	}
	data, err := toml.Marshal(t.Palette)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
