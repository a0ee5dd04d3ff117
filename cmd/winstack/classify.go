package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/winstack/internal/geometry"
	"github.com/jmylchreest/winstack/internal/gesture"
)

var classifyOpts struct {
	windowType string
	offset     float64
	velocity   float64
	height     float64
	beginY     float64
	json       bool
}

// classification is the JSON shape printed by `winstack classify --json`.
type classification struct {
	Type       string  `json:"type"`
	CanBegin   bool    `json:"can_begin"`
	Resolution string  `json:"resolution"`
	VelocityY  float64 `json:"velocity_y"`
	TargetY    float64 `json:"target_y"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Show how a released pan would resolve",
	Long: `Classify a pan with the configured thresholds, without a stack.

Prints whether a pan starting at --begin-y with --velocity could begin, and
where the window would go if released at --offset with --velocity.

Examples:
  # A fast downward fling on a dismissable window
  winstack classify --type dismissable --offset 120 --velocity 900

  # A slow release past the midpoint of an offsetable window
  winstack classify --type offsetable --offset 500 --velocity 10 --json`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVarP(&classifyOpts.windowType, "type", "t", "dismissable",
		"Window type (dismissable, offsetable)")
	classifyCmd.Flags().Float64Var(&classifyOpts.offset, "offset", 0,
		"Vertical offset at release, in points")
	classifyCmd.Flags().Float64Var(&classifyOpts.velocity, "velocity", 0,
		"Vertical velocity at release, in points/sec (positive is down)")
	classifyCmd.Flags().Float64Var(&classifyOpts.height, "height", 844,
		"Screen height in points")
	classifyCmd.Flags().Float64Var(&classifyOpts.beginY, "begin-y", 0,
		"Pan start position in window coordinates, in points")
	classifyCmd.Flags().BoolVar(&classifyOpts.json, "json", false,
		"Output as JSON")
}

func runClassify(cmd *cobra.Command, args []string) error {
	t, err := gesture.ParseWindowType(classifyOpts.windowType)
	if err != nil {
		return err
	}
	if classifyOpts.height <= 0 {
		return fmt.Errorf("--height must be positive, got %v", classifyOpts.height)
	}

	g := getConfig().Gesture
	cl := gesture.Classifier{
		VelocityThreshold: g.VelocityThreshold,
		MaxBeginY:         g.MaxBeginYFraction * classifyOpts.height,
	}

	canBegin := cl.ShouldBegin(gesture.Candidate{Top: true, Type: t, OffsetY: classifyOpts.offset},
		gesture.Pan{Start: geometry.Point{Y: classifyOpts.beginY}, VelocityY: classifyOpts.velocity})
	out := cl.ClassifyPanEnd(t, classifyOpts.offset, classifyOpts.velocity, classifyOpts.height)

	c := classification{
		Type:       t.String(),
		CanBegin:   canBegin,
		Resolution: out.Resolution.String(),
		VelocityY:  out.VelocityY,
		TargetY:    targetY(out.Resolution, g.OffsetTargetFraction, classifyOpts.height),
	}

	w := cmd.OutOrStdout()
	if classifyOpts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}

	fmt.Fprintf(w, "type:       %s\n", c.Type)
	fmt.Fprintf(w, "can begin:  %t\n", c.CanBegin)
	fmt.Fprintf(w, "resolution: %s\n", c.Resolution)
	fmt.Fprintf(w, "velocity:   %.1f pt/s\n", c.VelocityY)
	fmt.Fprintf(w, "target y:   %.1f\n", c.TargetY)
	return nil
}

// targetY is where a surface settles for each resolution.
func targetY(r gesture.Resolution, offsetFraction, height float64) float64 {
	switch r {
	case gesture.ResolveDismiss:
		return height
	case gesture.ResolveToOffset:
		return offsetFraction * height
	default:
		return 0
	}
}
