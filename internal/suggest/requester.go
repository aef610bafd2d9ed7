// Package suggest asks a generative model for the day's time entries.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Tiliavir/clicktime-assistant/internal/config"
	"github.com/Tiliavir/clicktime-assistant/internal/llm"
	"github.com/Tiliavir/clicktime-assistant/internal/model"
	"github.com/Tiliavir/clicktime-assistant/internal/storage"
	"github.com/Tiliavir/clicktime-assistant/internal/timecalc"
)

// Input names reported by Readiness.
const (
	InputCatalog  = "job and task data"
	InputNTB      = "ntb events"
	InputCalendar = "calendar events"
	InputClient   = "selected client"
)

// Requester builds the prompt from stored state and returns the model's
// suggestions. A nil Completer means no API key is configured.
type Requester struct {
	store       storage.Store
	completer   llm.Completer
	temperature float64
	logger      *slog.Logger
}

// New returns a Requester. A temperature of zero or less selects the
// default.
func New(s storage.Store, c llm.Completer, temperature float64, logger *slog.Logger) *Requester {
	if temperature <= 0 {
		temperature = config.DefaultTemperature
	}
	return &Requester{store: s, completer: c, temperature: temperature, logger: logger}
}

// Readiness lists the inputs a suggestion needs. Ready is true when none is
// missing.
type Readiness struct {
	Ready   bool     `json:"ready" yaml:"ready"`
	Missing []string `json:"missing" yaml:"missing"`
}

type inputs struct {
	catalog  model.CombinedCatalog
	calendar []model.EventRecord
	ntb      []model.EventRecord
	client   string
	note     string
	missing  []string
}

func (r *Requester) gather(ctx context.Context) (inputs, error) {
	var in inputs

	found, err := storage.GetJSON(ctx, r.store, storage.KeyCombinedJobTask, &in.catalog)
	if err != nil {
		return in, err
	}
	if !found {
		in.missing = append(in.missing, InputCatalog)
	}
	if found, err = storage.GetJSON(ctx, r.store, storage.KeyNTBEvent, &in.ntb); err != nil {
		return in, err
	}
	if !found {
		in.missing = append(in.missing, InputNTB)
	}
	if found, err = storage.GetJSON(ctx, r.store, storage.KeyCalendar, &in.calendar); err != nil {
		return in, err
	}
	if !found {
		in.missing = append(in.missing, InputCalendar)
	}
	if in.client, _, err = storage.GetString(ctx, r.store, storage.KeySelectedClient); err != nil {
		return in, err
	}
	if in.client == "" {
		in.missing = append(in.missing, InputClient)
	}
	if in.note, _, err = storage.GetString(ctx, r.store, storage.KeyCustomMessage); err != nil {
		return in, err
	}
	return in, nil
}

// Readiness reports which inputs are still missing.
func (r *Requester) Readiness(ctx context.Context) (Readiness, error) {
	in, err := r.gather(ctx)
	if err != nil {
		return Readiness{}, fmt.Errorf("reading suggestion inputs: %w", err)
	}
	missing := in.missing
	if missing == nil {
		missing = []string{}
	}
	return Readiness{Ready: len(missing) == 0, Missing: missing}, nil
}

// Request returns the model's suggestions for the selected client. It never
// fails: every problem is logged and yields an empty list.
func (r *Requester) Request(ctx context.Context) []model.TimeEntryGuess {
	none := []model.TimeEntryGuess{}

	if r.completer == nil {
		r.logger.Error("cannot request suggestions", "error", llm.ErrNoAPIKey)
		return none
	}

	in, err := r.gather(ctx)
	if err != nil {
		r.logger.Error("reading suggestion inputs failed", "error", err)
		return none
	}
	if len(in.missing) > 0 {
		r.logger.Warn("data not ready, no suggestions requested", "missing", in.missing)
		return none
	}

	prompt, err := BuildPrompt(PromptData{
		Catalog:  FilterByClient(in.catalog, in.client),
		Calendar: in.calendar,
		NTB:      in.ntb,
		Note:     in.note,
	})
	if err != nil {
		r.logger.Error("building prompt failed", "error", err)
		return none
	}

	text, err := r.completer.Complete(ctx, prompt, r.temperature)
	if err != nil {
		var se *llm.StatusError
		if errors.As(err, &se) {
			r.logger.Error("suggestion request rejected", "status", se.Code, "body", se.Body)
		} else {
			r.logger.Error("suggestion request failed", "error", err)
		}
		return none
	}

	guesses, err := ParseGuesses(text)
	if err != nil {
		r.logger.Error("could not parse suggestions", "error", err, "reply", text)
		return none
	}
	r.logger.Info("received suggestions",
		"count", len(guesses), "total_hours", timecalc.FormatHours(timecalc.TotalHours(guesses)))
	return guesses
}
