package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/clicktime-assistant/internal/model"
	"github.com/Tiliavir/clicktime-assistant/internal/poster"
	"github.com/Tiliavir/clicktime-assistant/internal/timecalc"
)

// writeValue prints v as indented JSON or YAML.
func writeValue(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// writeGuesses prints suggestions as a table, JSON or YAML. JSON keeps the
// jobID/taskID/hours field names.
func writeGuesses(w io.Writer, format string, guesses []model.TimeEntryGuess) error {
	if format != "table" {
		if guesses == nil {
			guesses = []model.TimeEntryGuess{}
		}
		return writeValue(w, format, guesses)
	}

	if len(guesses) == 0 {
		fmt.Fprintln(w, "No suggestions.")
		return nil
	}
	fmt.Fprintf(w, "%-28s%-28s%s\n", "Job", "Task", "Hours")
	fmt.Fprintln(w, "----------------------------------------------------------------")
	for _, g := range guesses {
		fmt.Fprintf(w, "%-28s%-28s%s\n", g.JobID, g.TaskID, timecalc.FormatHours(timecalc.RoundToNearestTenth(g.Hours)))
	}
	fmt.Fprintln(w, "----------------------------------------------------------------")
	fmt.Fprintf(w, "%-56s%s\n", "Total", timecalc.FormatHours(timecalc.TotalHours(guesses)))
	return nil
}

func printFailures(w io.Writer, failures []poster.Failure) {
	for _, f := range failures {
		if f.Status != 0 {
			fmt.Fprintf(w, "failed: %s/%s (%s): status %d\n", f.JobID, f.TaskID, timecalc.FormatHours(f.Hours), f.Status)
			continue
		}
		fmt.Fprintf(w, "failed: %s/%s (%s): %s\n", f.JobID, f.TaskID, timecalc.FormatHours(f.Hours), f.Error)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func setOrMissing(ok bool) string {
	if ok {
		return "set"
	}
	return "missing"
}
