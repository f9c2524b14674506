package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SrWildman/dfs/internal/category"
	"github.com/SrWildman/dfs/internal/history"
	"github.com/SrWildman/dfs/internal/notifications"
	"github.com/SrWildman/dfs/internal/organizer"
	"github.com/SrWildman/dfs/internal/services/tabstore"
	"github.com/SrWildman/dfs/internal/uploader"
	"github.com/SrWildman/dfs/internal/workflow"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var maxAge int

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Classify staged downloads into the category layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runPass(ctx, cmd, maxAge, workflow.PassOptions{
				Kind:     "organize",
				Organize: true,
			})
			if err != nil {
				return err
			}
			printOrganizeSummary(cmd, result)
			if !result.Success {
				return fmt.Errorf("organize pass completed with errors")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxAge, "max-age", 0, "Override the staged-file age cutoff in minutes")
	return cmd
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var categoryFlags []string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Sync latest files to the remote sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := parseCategories(categoryFlags)
			if err != nil {
				return err
			}
			result, err := runPass(ctx, cmd, 0, workflow.PassOptions{
				Kind:       "upload",
				Upload:     true,
				Categories: cats,
			})
			if err != nil {
				return err
			}
			printUploadSummary(cmd, result)
			if result.FatalErr != nil {
				return result.FatalErr
			}
			if !result.Success {
				return fmt.Errorf("upload pass completed with errors")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&categoryFlags, "category", nil, "Restrict sync to specific categories (repeatable)")
	return cmd
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var noUpload bool
	var newWeek bool
	var maxAge int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: organize then upload",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runPass(ctx, cmd, maxAge, workflow.PassOptions{
				Kind:     "run",
				Cleanup:  newWeek,
				Organize: true,
				Upload:   !noUpload,
			})
			if err != nil {
				return err
			}
			printOrganizeSummary(cmd, result)
			printUploadSummary(cmd, result)
			if result.FatalErr != nil {
				return result.FatalErr
			}
			if !result.Success {
				return fmt.Errorf("pipeline pass completed with errors")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noUpload, "no-upload", false, "Organize only; skip the remote sync")
	cmd.Flags().BoolVar(&newWeek, "new-week", false, "Clear organized CSVs before running (weekly reset)")
	// Wider window than plain organize; the scrapers usually finish well
	// before the full pipeline is kicked off.
	cmd.Flags().IntVar(&maxAge, "max-age", 60, "Staged-file age cutoff in minutes")
	return cmd
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			service := notifications.NewService(cfg)
			if err := service.TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}

func runPass(ctx *commandContext, cmd *cobra.Command, maxAgeMinutes int, opts workflow.PassOptions) (workflow.PassResult, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return workflow.PassResult{}, err
	}
	if maxAgeMinutes > 0 {
		scoped := *cfg
		scoped.Organize.MaxAgeMinutes = maxAgeMinutes
		cfg = &scoped
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return workflow.PassResult{}, err
	}

	store, err := history.Open(cfg)
	if err != nil {
		return workflow.PassResult{}, fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	w := workflow.New(cfg, logger, notifications.NewService(cfg), store, tabstore.NewHTTPClient(cfg))
	return w.Run(cmd.Context(), opts)
}

func parseCategories(values []string) ([]category.Category, error) {
	var cats []category.Category
	for _, value := range values {
		for _, piece := range strings.Split(value, ",") {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			cat, err := category.Parse(piece)
			if err != nil {
				return nil, err
			}
			cats = append(cats, cat)
		}
	}
	return cats, nil
}

func printOrganizeSummary(cmd *cobra.Command, result workflow.PassResult) {
	if result.Organize == nil {
		return
	}
	out := cmd.OutOrStdout()
	report := result.Organize

	if result.Cleanup != nil {
		fmt.Fprintf(out, "Cleanup: removed %d files\n", result.Cleanup.Removed)
	}
	if report.ScanError != nil {
		fmt.Fprintf(out, "Organize failed: %v\n", report.ScanError)
		return
	}

	rows := make([][]string, 0, len(report.Results))
	for _, cat := range sortedCategories(reportCategories(report)) {
		categoryResult := report.Results[cat]
		status := "moved"
		detail := categoryResult.LatestPath
		if categoryResult.Err != "" {
			status = "failed"
			detail = categoryResult.Err
		}
		rows = append(rows, []string{cat.DisplayName(), status, detail})
	}
	if len(rows) == 0 {
		fmt.Fprintf(out, "Organize: nothing to do (%d files scanned, %d unclassified)\n",
			report.Scanned, report.Unclassified)
		return
	}
	fmt.Fprintln(out, renderTable([]string{"Category", "Status", "Detail"}, rows, nil))
	if report.Unclassified > 0 {
		fmt.Fprintf(out, "%d unclassified files left in staging\n", report.Unclassified)
	}
}

func printUploadSummary(cmd *cobra.Command, result workflow.PassResult) {
	if result.Upload == nil {
		return
	}
	out := cmd.OutOrStdout()
	report := result.Upload

	rows := make([][]string, 0, len(report.Outcomes))
	for _, cat := range sortedCategories(outcomeCategories(report)) {
		outcome := report.Outcomes[cat]
		detail := outcome.Reason
		if outcome.Err != nil {
			detail = outcome.Err.Error()
		} else if outcome.Status == "success" {
			detail = fmt.Sprintf("%d rows", outcome.Rows)
		}
		rows = append(rows, []string{cat.DisplayName(), string(outcome.Status), outcome.Tab, detail})
	}
	fmt.Fprintln(out, renderTable([]string{"Category", "Status", "Tab", "Detail"}, rows, nil))

	succeeded, failed, skipped := report.Counts()
	fmt.Fprintf(out, "Upload: %d succeeded, %d failed, %d skipped\n", succeeded, failed, skipped)
}

func reportCategories(report *organizer.Report) []category.Category {
	cats := make([]category.Category, 0, len(report.Results))
	for cat := range report.Results {
		cats = append(cats, cat)
	}
	return cats
}

func outcomeCategories(report *uploader.Report) []category.Category {
	cats := make([]category.Category, 0, len(report.Outcomes))
	for cat := range report.Outcomes {
		cats = append(cats, cat)
	}
	return cats
}

func sortedCategories(cats []category.Category) []category.Category {
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}
