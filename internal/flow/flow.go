// Package flow drives one suggestion run: pick a client, add a note, ask
// the model, post the result.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/Tiliavir/clicktime-assistant/internal/model"
	"github.com/Tiliavir/clicktime-assistant/internal/poster"
	"github.com/Tiliavir/clicktime-assistant/internal/storage"
)

// Suggester returns time entry suggestions.
type Suggester interface {
	Request(ctx context.Context) []model.TimeEntryGuess
}

// Submitter posts suggestions.
type Submitter interface {
	Post(ctx context.Context, guesses []model.TimeEntryGuess) poster.Report
}

// Result is the outcome of one Run.
type Result struct {
	RunID       string                 `json:"runID" yaml:"runID"`
	Suggestions []model.TimeEntryGuess `json:"suggestions" yaml:"suggestions"`
	Report      poster.Report          `json:"report" yaml:"report"`
}

// Runner coordinates the user-facing steps of a run.
type Runner struct {
	store     storage.Store
	suggester Suggester
	submitter Submitter
	logger    *slog.Logger
}

// New returns a Runner.
func New(s storage.Store, sg Suggester, sb Submitter, logger *slog.Logger) *Runner {
	return &Runner{store: s, suggester: sg, submitter: sb, logger: logger}
}

// Prepare forgets the previous client choice and lists the clients known
// from the captured job data, sorted by name. No job data yields no
// clients.
func (r *Runner) Prepare(ctx context.Context) ([]model.Client, error) {
	if err := r.store.Remove(ctx, storage.KeySelectedClient); err != nil {
		return nil, fmt.Errorf("clearing selected client: %w", err)
	}
	return r.Clients(ctx)
}

// Clients lists the clients from captured job data without side effects.
func (r *Runner) Clients(ctx context.Context) ([]model.Client, error) {
	var jobs model.JobCatalog
	found, err := storage.GetJSON(ctx, r.store, storage.KeyJob, &jobs)
	if err != nil {
		return nil, err
	}
	clients := []model.Client{}
	if !found {
		return clients, nil
	}
	for _, c := range jobs.Clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		if clients[i].ListDisplayText != clients[j].ListDisplayText {
			return clients[i].ListDisplayText < clients[j].ListDisplayText
		}
		return clients[i].ID < clients[j].ID
	})
	return clients, nil
}

// Select stores the client suggestions are limited to. An empty ID means
// none is selected.
func (r *Runner) Select(ctx context.Context, clientID string) error {
	if err := storage.SetJSON(ctx, r.store, storage.KeySelectedClient, clientID); err != nil {
		return fmt.Errorf("selecting client: %w", err)
	}
	r.logger.Info("selected client", "client_id", clientID)
	return nil
}

// SetNote stores free text passed along with the prompt.
func (r *Runner) SetNote(ctx context.Context, note string) error {
	if err := storage.SetJSON(ctx, r.store, storage.KeyCustomMessage, note); err != nil {
		return fmt.Errorf("saving note: %w", err)
	}
	return nil
}

// Run asks for suggestions and posts them. An empty suggestion list is
// still posted so the batch cleanup runs.
func (r *Runner) Run(ctx context.Context) Result {
	res := Result{RunID: uuid.NewString()}
	log := r.logger.With("run_id", res.RunID)

	log.Info("run started")
	res.Suggestions = r.suggester.Request(ctx)
	if len(res.Suggestions) == 0 {
		log.Warn("no suggestions returned")
	}
	res.Report = r.submitter.Post(ctx, res.Suggestions)
	log.Info("run finished", "posted", res.Report.Posted, "failed", res.Report.Failed)
	return res
}
