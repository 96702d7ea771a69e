package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"serieskeeper/internal/persist"
	"serieskeeper/internal/validate"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the saved series state against the entity schema",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	manager, err := persist.NewManager(persist.Options{
		Dir:       a.cfg.StateDir(),
		FileName:  a.cfg.State.File,
		Retention: a.cfg.State.BackupRetention,
		Schema:    a.schema,
		Logger:    a.logger,
		Metrics:   a.metrics,
	})
	if err != nil {
		return err
	}

	report, err := manager.Check()
	if err != nil {
		return err
	}

	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case validate.SeverityError:
			errorIssues = append(errorIssues, issue)
		case validate.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	out := cmd.OutOrStdout()
	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintf(out, "%s: no issues found.\n", manager.Path())
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(out, "Errors (%d):\n", len(errorIssues))
		printIssues(out, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(out, "")
		}
		fmt.Fprintf(out, "Warnings (%d):\n", len(warnIssues))
		printIssues(out, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(out io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		location := issue.Kind
		if issue.Entity != "" {
			location = fmt.Sprintf("%s %s", issue.Kind, issue.Entity)
		}
		if issue.Field != "" {
			location = fmt.Sprintf("%s.%s", location, issue.Field)
		}
		if location == "" {
			location = "document"
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
