package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vnforge/internal/validate"
)

var validateJSON bool

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run consistency checks against the story graph",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}
	cmd.Flags().BoolVar(&validateJSON, "json", false, "Print the report as JSON")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		report, err := validate.Run(w.project())
		if err != nil {
			return false, err
		}

		if validateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return false, err
			}
		} else {
			printReport(os.Stdout, report)
		}

		if report.HasErrors() {
			return false, fmt.Errorf("validation found %d errors", report.Count(validate.SeverityError))
		}
		return false, nil
	})
}

func printReport(out io.Writer, report *validate.Report) {
	if len(report.Issues) == 0 {
		fmt.Fprintln(out, "No issues found.")
		return
	}

	sections := []struct {
		severity validate.Severity
		heading  string
	}{
		{validate.SeverityError, "Errors"},
		{validate.SeverityWarn, "Warnings"},
	}
	printed := false
	for _, section := range sections {
		n := report.Count(section.severity)
		if n == 0 {
			continue
		}
		if printed {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%d):\n", section.heading, n)
		for _, issue := range report.Issues {
			if issue.Severity != section.severity {
				continue
			}
			location := issue.Route
			if issue.Scene != "" {
				location = fmt.Sprintf("%s [%s]", issue.Scene, issue.Route)
			}
			fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
		}
		printed = true
	}
}
