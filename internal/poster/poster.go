// Package poster submits suggested time entries to ClickTime.
package poster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Tiliavir/clicktime-assistant/internal/clicktime"
	"github.com/Tiliavir/clicktime-assistant/internal/model"
	"github.com/Tiliavir/clicktime-assistant/internal/storage"
	"github.com/Tiliavir/clicktime-assistant/internal/timecalc"
)

// ErrNoDate is reported when no calendar date has been captured yet.
var ErrNoDate = errors.New("poster: calendar date is not set")

// EntryCreator creates one time entry upstream.
type EntryCreator interface {
	CreateTimeEntry(ctx context.Context, entry model.TimeEntry) error
}

// Refresher tells the host view to reload after a batch.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// NopRefresher does nothing. Used when no relay is connected.
type NopRefresher struct{}

func (NopRefresher) Refresh(context.Context) error { return nil }

// Switch persists the ingestion enabled flag.
type Switch interface {
	SetEnabled(ctx context.Context, enabled bool) error
}

// Failure is one entry ClickTime did not accept.
type Failure struct {
	JobID  string  `json:"jobID" yaml:"jobID"`
	TaskID string  `json:"taskID" yaml:"taskID"`
	Hours  float64 `json:"hours" yaml:"hours"`
	Status int     `json:"status,omitempty" yaml:"status,omitempty"`
	Error  string  `json:"error" yaml:"error"`
}

// Report summarizes a Post call. Err is set when the batch was aborted
// before any submission.
type Report struct {
	Date     string    `json:"date" yaml:"date"`
	Posted   int       `json:"posted" yaml:"posted"`
	Failed   int       `json:"failed" yaml:"failed"`
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Err      error     `json:"-" yaml:"-"`
}

// Poster submits guesses one at a time. A nil creator means no ClickTime
// token is configured.
type Poster struct {
	store     storage.Store
	creator   EntryCreator
	sw        Switch
	refresher Refresher
	logger    *slog.Logger
}

// New returns a Poster. A nil refresher is replaced by NopRefresher.
func New(s storage.Store, creator EntryCreator, sw Switch, refresher Refresher, logger *slog.Logger) *Poster {
	if refresher == nil {
		refresher = NopRefresher{}
	}
	return &Poster{store: s, creator: creator, sw: sw, refresher: refresher, logger: logger}
}

// Post submits guesses in order for the captured calendar date. Individual
// failures are logged and skipped. Once the batch is done ingestion is
// disabled and the host view is refreshed.
func (p *Poster) Post(ctx context.Context, guesses []model.TimeEntryGuess) Report {
	date, found, err := storage.GetString(ctx, p.store, storage.KeyCalendarDate)
	if err != nil {
		p.logger.Error("reading calendar date failed", "error", err)
		return Report{Err: err}
	}
	if !found || date == "" {
		p.logger.Error("cannot post time entries", "error", ErrNoDate)
		return Report{Err: ErrNoDate}
	}
	if p.creator == nil {
		p.logger.Error("cannot post time entries", "error", clicktime.ErrNoToken)
		return Report{Date: date, Err: clicktime.ErrNoToken}
	}

	rep := Report{Date: date}
	p.logger.Info("posting time entries", "count", len(guesses), "date", date)

	for _, g := range guesses {
		entry := model.NewTimeEntry(date, g, timecalc.RoundToNearestTenth(g.Hours))
		err := p.creator.CreateTimeEntry(ctx, entry)
		if err == nil {
			rep.Posted++
			continue
		}

		f := Failure{JobID: g.JobID, TaskID: g.TaskID, Hours: entry.Hours, Error: err.Error()}
		var apiErr *clicktime.APIError
		if errors.As(err, &apiErr) {
			f.Status = apiErr.Status
			p.logger.Error("time entry rejected", "job_id", g.JobID, "status", apiErr.Status, "body", apiErr.Body)
		} else {
			p.logger.Error("time entry not sent", "job_id", g.JobID, "error", err)
		}
		rep.Failed++
		rep.Failures = append(rep.Failures, f)
	}

	p.logger.Info("finished posting time entries", "posted", rep.Posted, "failed", rep.Failed)
	p.finish(ctx)
	return rep
}

func (p *Poster) finish(ctx context.Context) {
	if err := p.sw.SetEnabled(ctx, false); err != nil {
		p.logger.Error("disabling ingestion failed", "error", err)
		return
	}
	p.logger.Info("ingestion disabled")
	if err := p.refresher.Refresh(ctx); err != nil {
		p.logger.Error("refreshing host view failed", "error", err)
		return
	}
	p.logger.Debug("host view refresh requested")
}

// Summary is a one-line description of r for terminal output.
func (r Report) Summary() string {
	if r.Err != nil {
		return fmt.Sprintf("nothing posted: %v", r.Err)
	}
	return fmt.Sprintf("%s: %d posted, %d failed", r.Date, r.Posted, r.Failed)
}
