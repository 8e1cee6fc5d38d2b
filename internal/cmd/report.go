package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/shipshape/internal/history"
	"github.com/harrison/shipshape/internal/report"
)

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a recorded scan as text, Markdown, JSON or HTML",
		Long: `Report re-renders a scan from the history database without
rescanning. By default it renders the most recent scan as text; --scan
selects an earlier one by ID or unique ID prefix. If the scan had an
apply run against it, the latest apply is included.`,
		Example: `  shipshape report
  shipshape report --format markdown --out report.md
  shipshape report --scan 3f2a --format html --out report.html`,
		Args: cobra.NoArgs,
		RunE: runReport,
	}

	cmd.Flags().String("scan", "last", "Scan to render: an ID, unique ID prefix, or 'last'")
	cmd.Flags().String("format", "text", "Output format: text, markdown, json or html")
	cmd.Flags().String("out", "", "Write the report to this file instead of stdout")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	formatStr, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	scanRef, _ := cmd.Flags().GetString("scan")
	outPath, _ := cmd.Flags().GetString("out")

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()

	var summary *report.Summary
	if scanRef == "last" || scanRef == "" {
		summary, err = store.LatestScan(ctx)
	} else {
		summary, err = store.GetScan(ctx, scanRef)
	}
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("%w (run 'shipshape scan' first, or check 'shipshape history list')", err)
		}
		return err
	}

	// A later apply supersedes whatever execution state the summary was
	// stored with.
	if exec, err := store.LatestApplyForScan(ctx, summary.ScanID); err == nil {
		summary.Execution = report.NewExecutionSummary(exec)
	} else if !errors.Is(err, history.ErrNotFound) {
		return err
	}

	if outPath != "" {
		if err := report.Export(outPath, summary, format); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", outPath)
		return nil
	}
	return report.Render(cmd.OutOrStdout(), summary, format, colorEnabled(cmd))
}
