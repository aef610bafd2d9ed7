package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/clicktime-assistant/internal/poster"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List clients from captured job data and clear the current choice",
	Args:  cobra.NoArgs,
	RunE:  runClients,
}

var selectCmd = &cobra.Command{
	Use:   "select <clientID>",
	Short: "Limit suggestions to one client's jobs",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelect,
}

var noteCmd = &cobra.Command{
	Use:   "note <text>...",
	Short: "Set a free-text note passed to the model",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNote,
}

func runClients(cmd *cobra.Command, args []string) error {
	r, err := env.runner(cmd.Context(), poster.NopRefresher{})
	if err != nil {
		return err
	}
	clients, err := r.Prepare(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(clients) == 0 {
		fmt.Fprintln(w, "No clients captured yet.")
		return nil
	}
	for _, c := range clients {
		fmt.Fprintf(w, "%-28s%s\n", c.ID, c.ListDisplayText)
	}
	return nil
}

func runSelect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r, err := env.runner(ctx, poster.NopRefresher{})
	if err != nil {
		return err
	}
	clients, err := r.Clients(ctx)
	if err != nil {
		return err
	}
	known := len(clients) == 0
	for _, c := range clients {
		if c.ID == args[0] {
			known = true
		}
	}
	if !known {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s is not among the captured clients.\n", args[0])
	}
	if err := r.Select(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Selected client %s.\n", args[0])
	return nil
}

func runNote(cmd *cobra.Command, args []string) error {
	r, err := env.runner(cmd.Context(), poster.NopRefresher{})
	if err != nil {
		return err
	}
	return r.SetNote(cmd.Context(), strings.Join(args, " "))
}
