package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/clicktime-assistant/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file|-]",
	Short: "Process captured page events from a file or stdin",
	Long: `ingest reads relay events (one JSON event, an array of events, or
newline-delimited events) and stores them as the relay server would.
Without an argument, or with "-", events are read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening events file: %w", err)
		}
		defer f.Close()
		r = f
	}

	events, err := ingest.DecodeEvents(r)
	if err != nil {
		return err
	}

	enabled, err := env.settings().Enabled(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		fmt.Fprintln(cmd.ErrOrStderr(), "Ingestion is disabled; events are skipped. Run `cta enable` first.")
	}

	env.dispatcher(ctx).DispatchAll(ctx, events)
	fmt.Fprintf(cmd.OutOrStdout(), "Processed %d events.\n", len(events))
	return nil
}
