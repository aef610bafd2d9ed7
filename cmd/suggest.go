package cmd

import (
	"github.com/spf13/cobra"
)

var suggestFormat string

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Ask the model for suggestions without posting them",
	Args:  cobra.NoArgs,
	RunE:  runSuggest,
}

func init() {
	suggestCmd.Flags().StringVar(&suggestFormat, "format", "table", "Output format: table, json, yaml")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	rq, err := env.requester()
	if err != nil {
		return err
	}
	return writeGuesses(cmd.OutOrStdout(), suggestFormat, rq.Request(cmd.Context()))
}
