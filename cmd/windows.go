package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pitchlab/go-match-highlights/internal/windower"
)

var windowsConfig string

var windowsCmd = &cobra.Command{
	Use:   "windows <segments.json>",
	Short: "Preview the analysis windows for a segment list, without model calls",
	Args:  cobra.ExactArgs(1),
	RunE:  runWindows,
}

func init() {
	windowsCmd.Flags().StringVar(&windowsConfig, "config", "", "path to YAML config")
}

func runWindows(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(windowsConfig)
	if err != nil {
		return err
	}
	segments, err := readSegments(args[0])
	if err != nil {
		return err
	}

	windows := windower.New(cfg.Windowing, newLogger()).Generate(segments)
	if len(windows) == 0 {
		fmt.Fprintln(os.Stdout, "No analyzable windows (only stoppages or empty segments).")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-12s  %9s  %9s  %5s  %6s  %6s\n",
		"WINDOW", "SEGMENT", "START", "END", "FPS", "OV_PRE", "OV_POST")
	for _, w := range windows {
		fmt.Fprintf(os.Stdout, "%-24s  %-12s  %8.1fs  %8.1fs  %5d  %5.1fs  %5.1fs\n",
			w.WindowID, string(w.Segment.Type), w.AbsoluteStart, w.AbsoluteEnd,
			w.TargetFps, w.Overlap.Before, w.Overlap.After)
	}
	fmt.Fprintf(os.Stdout, "\n%d windows over %d segments.\n", len(windows), len(segments))
	return nil
}
