package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/shipshape/internal/models"
	"github.com/harrison/shipshape/internal/planner"
)

// maxPreviewActions bounds the plan preview printed to stdout. The full
// plan is always available via --out.
const maxPreviewActions = 50

// NewPlanCommand creates the plan command.
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <root>",
		Short: "Build a fix plan without touching any file",
		Long: `Plan scans the root, runs the detectors and builds a deterministic
fix plan mapping every flagged file to a corrected path under the
target root. Nothing is written to the tree; the plan is previewed on
stdout or saved with --out for review and a later 'shipshape apply'.`,
		Example: `  shipshape plan /srv/share --target /srv/staging
  shipshape plan /srv/share --target /srv/staging --out fixes.yaml
  shipshape plan /srv/share --target /srv/staging --keep newest-created`,
		Args: cobra.ExactArgs(1),
		RunE: runPlan,
	}

	cmd.Flags().String("target", "", "Target root the fixed tree is laid out under (required)")
	cmd.Flags().String("out", "", "Write the plan to this YAML file instead of previewing")
	cmd.Flags().String("keep", "", "Duplicate keeper policy: earliest-created, newest-created, smallest-size or largest-size")
	cmd.MarkFlagRequired("target")

	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var keep *string
	if cmd.Flags().Changed("keep") {
		v, _ := cmd.Flags().GetString("keep")
		keep = &v
	}
	cfg.MergeWithFlags(nil, nil, keep, nil, nil, nil, nil)

	if err := cfg.Validate(); err != nil {
		return err
	}

	target, _ := cmd.Flags().GetString("target")
	outPath, _ := cmd.Flags().GetString("out")

	useColor := colorEnabled(cmd)
	log, closeLog := buildLogger(cfg, cmd.ErrOrStderr())
	defer closeLog()

	result, groups, err := scanAndDetect(cmd.Context(), cfg, args[0], log, useColor)
	if err != nil {
		// A partial scan must not produce a partial plan.
		return err
	}

	rs, err := cfg.Ruleset()
	if err != nil {
		return err
	}
	plan, err := planner.New(rs, log).BuildPlan(result, result.Issues, groups, target)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outPath != "" {
		if err := planner.SavePlan(plan, outPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Plan %s written to %s (%d actions)\n", plan.ID, outPath, len(plan.Actions))
		return nil
	}

	printPlanPreview(out, plan)
	return nil
}

func printPlanPreview(w io.Writer, plan *models.FixPlan) {
	if len(plan.Actions) == 0 {
		fmt.Fprintln(w, "Nothing to fix: every file already fits the destination rules.")
		return
	}

	renames := len(plan.ActionsOfKind(models.ActionRename))
	moves := len(plan.ActionsOfKind(models.ActionMove))
	skips := len(plan.ActionsOfKind(models.ActionSkipDuplicate))
	fmt.Fprintf(w, "Plan %s: %d actions (%d renames, %d moves, %d duplicate skips)\n", plan.ID, len(plan.Actions), renames, moves, skips)
	fmt.Fprintf(w, "Source: %s\nTarget: %s\n\n", plan.Root, plan.TargetRoot)

	for i, a := range plan.Actions {
		if i == maxPreviewActions {
			fmt.Fprintf(w, "  ... and %d more actions (use --out to save the full plan)\n", len(plan.Actions)-maxPreviewActions)
			break
		}
		switch a.Kind {
		case models.ActionSkipDuplicate:
			fmt.Fprintf(w, "  %-6s %s (keeper: %s)\n", a.Kind, a.Source, a.KeeperTarget)
		default:
			fmt.Fprintf(w, "  %-6s %s -> %s\n", a.Kind, a.Source, a.Target)
		}
	}

	fmt.Fprintf(w, "\nNothing has been changed. Apply with:\n  shipshape apply %s --target %s\n", plan.Root, plan.TargetRoot)
}
