// Package ingest stores the page responses relayed from ClickTime and keeps
// the combined catalog current.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Tiliavir/clicktime-assistant/internal/clicktime"
	"github.com/Tiliavir/clicktime-assistant/internal/model"
	"github.com/Tiliavir/clicktime-assistant/internal/storage"
)

// HandlerFunc processes the payload of one event kind.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// ControlFetcher lists task controls from ClickTime.
type ControlFetcher interface {
	TaskControls(ctx context.Context) ([]model.TaskControl, error)
}

// Merger rebuilds the combined catalog. Failures are its own to log.
type Merger interface {
	Trigger(ctx context.Context)
}

// Dispatcher routes events to handlers while ingestion is enabled.
type Dispatcher struct {
	store    storage.Store
	settings *Settings
	controls ControlFetcher
	merger   Merger
	logger   *slog.Logger
	handlers map[Kind]HandlerFunc
}

// NewDispatcher wires the handler table. controls may be nil when no
// ClickTime token is configured; task events then store tasks only.
func NewDispatcher(s storage.Store, settings *Settings, controls ControlFetcher, merger Merger, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		store:    s,
		settings: settings,
		controls: controls,
		merger:   merger,
		logger:   logger,
	}
	d.handlers = map[Kind]HandlerFunc{
		KindCalendar:     d.eventsHandler(storage.KeyCalendar),
		KindNTBEvent:     d.eventsHandler(storage.KeyNTBEvent),
		KindJob:          d.handleJobs,
		KindTask:         d.handleTasks,
		KindCalendarDate: d.handleCalendarDate,
	}
	return d
}

// Dispatch handles one event. Errors are logged, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	enabled, err := d.settings.Enabled(ctx)
	if err != nil {
		d.logger.Error("reading enabled flag failed", "error", err)
		return
	}
	if !enabled {
		d.logger.Info("ingestion disabled, skipping event", "type", ev.Type)
		return
	}

	h, ok := d.handlers[ev.Type]
	if !ok {
		d.logger.Warn("unhandled event type", "type", ev.Type)
		return
	}
	if err := h(ctx, ev.Payload); err != nil {
		d.logger.Error("handling event failed", "type", ev.Type, "error", err)
	}
}

// DispatchAll handles events in order.
func (d *Dispatcher) DispatchAll(ctx context.Context, events []Event) {
	for _, ev := range events {
		d.Dispatch(ctx, ev)
	}
}

// Reset removes all captured state, including the enabled flag.
func (d *Dispatcher) Reset(ctx context.Context) error {
	if err := d.store.Remove(ctx, storage.AllKeys()...); err != nil {
		return fmt.Errorf("clearing storage: %w", err)
	}
	d.logger.Info("cleared captured data")
	return nil
}

type dataPayload struct {
	Data json.RawMessage `json:"data"`
}

func decodeData(payload json.RawMessage, v any) (json.RawMessage, error) {
	var p dataPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	if len(p.Data) == 0 || string(p.Data) == "null" {
		return nil, fmt.Errorf("payload has no data")
	}
	if err := json.Unmarshal(p.Data, v); err != nil {
		return nil, fmt.Errorf("decoding payload data: %w", err)
	}
	return p.Data, nil
}

func (d *Dispatcher) eventsHandler(key string) HandlerFunc {
	return func(ctx context.Context, payload json.RawMessage) error {
		var events []model.RawEvent
		if _, err := decodeData(payload, &events); err != nil {
			return err
		}
		return d.put(ctx, key, model.Records(events), len(events))
	}
}

func (d *Dispatcher) handleJobs(ctx context.Context, payload json.RawMessage) error {
	var jobs model.JobCatalog
	raw, err := decodeData(payload, &jobs)
	if err != nil {
		return err
	}
	if err := d.putRaw(ctx, storage.KeyJob, raw, len(jobs.Jobs)); err != nil {
		return err
	}
	d.merger.Trigger(ctx)
	return nil
}

func (d *Dispatcher) handleTasks(ctx context.Context, payload json.RawMessage) error {
	var tasks model.TaskCatalog
	raw, err := decodeData(payload, &tasks)
	if err != nil {
		return err
	}

	d.fetchControls(ctx)

	if err := d.putRaw(ctx, storage.KeyTask, raw, len(tasks)); err != nil {
		return err
	}
	d.merger.Trigger(ctx)
	return nil
}

func (d *Dispatcher) fetchControls(ctx context.Context) {
	if d.controls == nil {
		d.logger.Error("cannot fetch task controls", "error", clicktime.ErrNoToken)
		return
	}
	controls, err := d.controls.TaskControls(ctx)
	if err != nil {
		d.logger.Error("fetching task controls failed", "error", err)
		return
	}
	if err := d.put(ctx, storage.KeyTaskControl, controls, len(controls)); err != nil {
		d.logger.Error("storing task controls failed", "error", err)
	}
}

func (d *Dispatcher) handleCalendarDate(ctx context.Context, payload json.RawMessage) error {
	var date string
	if err := json.Unmarshal(payload, &date); err != nil {
		return fmt.Errorf("decoding calendar date: %w", err)
	}
	if err := storage.SetJSON(ctx, d.store, storage.KeyCalendarDate, date); err != nil {
		return fmt.Errorf("storing %s: %w", storage.KeyCalendarDate, err)
	}
	d.logger.Info("stored calendar date", "date", date)
	return nil
}

func (d *Dispatcher) put(ctx context.Context, key string, v any, n int) error {
	if err := storage.SetJSON(ctx, d.store, key, v); err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	d.logger.Info("stored data", "key", key, "count", n)
	return nil
}

func (d *Dispatcher) putRaw(ctx context.Context, key string, raw json.RawMessage, n int) error {
	if err := d.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	d.logger.Info("stored data", "key", key, "count", n)
	return nil
}
