package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/clicktime-assistant/internal/poster"
)

var (
	runClient   string
	runNoteText string
	runFormat   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Request suggestions and post them to ClickTime",
	Long: `run asks the model for the day's entries and posts every suggestion for
the captured calendar date. Ingestion is disabled afterwards.
Use POST /run on a running "cta serve" to also reload the ClickTime page.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runClient, "client", "", "Select this client before running")
	runCmd.Flags().StringVar(&runNoteText, "note", "", "Set this note before running")
	runCmd.Flags().StringVar(&runFormat, "format", "table", "Output format: table, json, yaml")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r, err := env.runner(ctx, poster.NopRefresher{})
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("client") {
		if err := r.Select(ctx, runClient); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("note") {
		if err := r.SetNote(ctx, runNoteText); err != nil {
			return err
		}
	}

	res := r.Run(ctx)
	w := cmd.OutOrStdout()
	if runFormat != "table" {
		if err := writeValue(w, runFormat, res); err != nil {
			return err
		}
	} else {
		if err := writeGuesses(w, "table", res.Suggestions); err != nil {
			return err
		}
		printFailures(w, res.Report.Failures)
		fmt.Fprintln(w, res.Report.Summary())
	}

	if res.Report.Err != nil {
		return res.Report.Err
	}
	if res.Report.Failed > 0 {
		return fmt.Errorf("%d of %d entries were not posted", res.Report.Failed, res.Report.Failed+res.Report.Posted)
	}
	return nil
}
