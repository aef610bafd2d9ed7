package flow_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/Tiliavir/clicktime-assistant/internal/flow"
	"github.com/Tiliavir/clicktime-assistant/internal/model"
	"github.com/Tiliavir/clicktime-assistant/internal/poster"
	"github.com/Tiliavir/clicktime-assistant/internal/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubSuggester struct{ out []model.TimeEntryGuess }

func (s stubSuggester) Request(context.Context) []model.TimeEntryGuess { return s.out }

type stubSubmitter struct {
	got   []model.TimeEntryGuess
	calls int
}

func (s *stubSubmitter) Post(_ context.Context, g []model.TimeEntryGuess) poster.Report {
	s.calls++
	s.got = g
	return poster.Report{Date: "2026-03-02", Posted: len(g)}
}

func TestRun(t *testing.T) {
	guesses := []model.TimeEntryGuess{{JobID: "J1", TaskID: "T1", Hours: 8}}
	sb := &stubSubmitter{}
	res := flow.New(storage.NewMemory(), stubSuggester{out: guesses}, sb, discard()).Run(context.Background())

	if res.RunID == "" {
		t.Error("missing run id")
	}
	if !reflect.DeepEqual(sb.got, guesses) || res.Report.Posted != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunEmptyStillPosts(t *testing.T) {
	sb := &stubSubmitter{}
	flow.New(storage.NewMemory(), stubSuggester{out: []model.TimeEntryGuess{}}, sb, discard()).Run(context.Background())
	if sb.calls != 1 {
		t.Fatalf("post calls = %d", sb.calls)
	}
}

func TestPrepareClearsSelectionAndListsClients(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory()
	r := flow.New(s, stubSuggester{}, &stubSubmitter{}, discard())

	clients, err := r.Prepare(ctx)
	if err != nil || clients == nil || len(clients) != 0 {
		t.Fatalf("no job data: %v, %v", clients, err)
	}

	jobs := model.JobCatalog{Clients: map[string]model.Client{
		"C2": {ID: "C2", ListDisplayText: "Globex"},
		"C1": {ID: "C1", ListDisplayText: "Acme"},
	}}
	if err := storage.SetJSON(ctx, s, storage.KeyJob, jobs); err != nil {
		t.Fatal(err)
	}
	if err := r.Select(ctx, "C2"); err != nil {
		t.Fatal(err)
	}

	clients, err = r.Prepare(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []model.Client{{ID: "C1", ListDisplayText: "Acme"}, {ID: "C2", ListDisplayText: "Globex"}}
	if !reflect.DeepEqual(clients, want) {
		t.Fatalf("clients = %+v", clients)
	}
	if _, err := s.Get(ctx, storage.KeySelectedClient); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("selection not cleared: %v", err)
	}
}

func TestSelectAndNote(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory()
	r := flow.New(s, stubSuggester{}, &stubSubmitter{}, discard())
	if err := r.Select(ctx, "C1"); err != nil {
		t.Fatal(err)
	}
	if err := r.SetNote(ctx, "on call"); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := storage.GetString(ctx, s, storage.KeySelectedClient); v != "C1" {
		t.Errorf("client = %q", v)
	}
	if v, _, _ := storage.GetString(ctx, s, storage.KeyCustomMessage); v != "on call" {
		t.Errorf("note = %q", v)
	}
}
