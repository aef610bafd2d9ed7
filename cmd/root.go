package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	ephemeral  bool

	// env is built once per invocation before any command runs.
	env *app
)

var rootCmd = &cobra.Command{
	Use:   "cta",
	Short: "ClickTime assistant – suggest and post time entries from your calendar",
	Long: `cta collects the calendar, ticket and job data a browser relay captures
from ClickTime, asks a generative model how the day should be booked, and
posts the suggested time entries back to ClickTime.
Configuration lives in ~/.cta/config.json.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath, logLevel, ephemeral)
		if err != nil {
			return err
		}
		env = a
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if env != nil {
		if cerr := env.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.cta/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides log.level)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep all state in memory for this invocation")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resetCmd)
}
