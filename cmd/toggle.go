package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Start accepting captured page events",
	Args:  cobra.NoArgs,
	RunE:  func(cmd *cobra.Command, args []string) error { return setEnabled(cmd, true) },
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop accepting captured page events",
	Args:  cobra.NoArgs,
	RunE:  func(cmd *cobra.Command, args []string) error { return setEnabled(cmd, false) },
}

func setEnabled(cmd *cobra.Command, on bool) error {
	if err := env.settings().SetEnabled(cmd.Context(), on); err != nil {
		return err
	}
	state := "disabled"
	if on {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Ingestion %s.\n", state)
	return nil
}
