package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/clicktime-assistant/internal/model"
	"github.com/Tiliavir/clicktime-assistant/internal/storage"
	"github.com/Tiliavir/clicktime-assistant/internal/suggest"
	"github.com/Tiliavir/clicktime-assistant/internal/timecalc"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show captured data and whether a run can start",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "text", "Output format: text, json, yaml")
}

type statusView struct {
	Enabled        bool              `json:"enabled" yaml:"enabled"`
	Readiness      suggest.Readiness `json:"readiness" yaml:"readiness"`
	CalendarDate   string            `json:"calendarDate" yaml:"calendarDate"`
	SelectedClient string            `json:"selectedClient" yaml:"selectedClient"`
	ScheduledHours float64           `json:"scheduledHours" yaml:"scheduledHours"`
	Credentials    map[string]bool   `json:"credentials" yaml:"credentials"`
	Events         map[string]int    `json:"events" yaml:"events"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rq, err := env.requester()
	if err != nil {
		return err
	}
	rd, err := rq.Readiness(ctx)
	if err != nil {
		return err
	}
	enabled, err := env.settings().Enabled(ctx)
	if err != nil {
		return err
	}

	v := statusView{
		Enabled:   enabled,
		Readiness: rd,
		Credentials: map[string]bool{
			"clicktime": env.cfg.ClickTime.AuthToken != "",
			"llm":       env.cfg.LLM.APIKey != "",
		},
		Events: map[string]int{},
	}
	if v.CalendarDate, _, err = storage.GetString(ctx, env.store, storage.KeyCalendarDate); err != nil {
		return err
	}
	if v.SelectedClient, _, err = storage.GetString(ctx, env.store, storage.KeySelectedClient); err != nil {
		return err
	}
	for name, key := range map[string]string{"calendar": storage.KeyCalendar, "ntb": storage.KeyNTBEvent} {
		var recs []model.EventRecord
		if _, err := storage.GetJSON(ctx, env.store, key, &recs); err != nil {
			return err
		}
		v.Events[name] = len(recs)
		if name == "calendar" {
			v.ScheduledHours = timecalc.ScheduledHours(recs)
		}
	}

	if statusFormat != "text" {
		return writeValue(cmd.OutOrStdout(), statusFormat, v)
	}

	w := cmd.OutOrStdout()
	onOff := map[bool]string{true: "on", false: "off"}
	fmt.Fprintf(w, "Ingestion:  %s\n", onOff[v.Enabled])
	fmt.Fprintf(w, "Date:       %s\n", orDash(v.CalendarDate))
	fmt.Fprintf(w, "Client:     %s\n", orDash(v.SelectedClient))
	fmt.Fprintf(w, "Calendar:   %d events, %s scheduled\n", v.Events["calendar"], timecalc.FormatHours(v.ScheduledHours))
	fmt.Fprintf(w, "Tickets:    %d events\n", v.Events["ntb"])
	fmt.Fprintf(w, "ClickTime:  token %s\n", setOrMissing(v.Credentials["clicktime"]))
	fmt.Fprintf(w, "LLM:        %s, key %s\n", providerName(), setOrMissing(v.Credentials["llm"]))
	if rd.Ready {
		fmt.Fprintln(w, "Ready to run.")
		return nil
	}
	fmt.Fprintln(w, "Not ready, missing:")
	for _, m := range rd.Missing {
		fmt.Fprintf(w, "  - %s\n", m)
	}
	return nil
}

func providerName() string {
	if env.cfg.LLM.Provider == "" {
		return "gemini"
	}
	return env.cfg.LLM.Provider
}
