package poster_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Tiliavir/clicktime-assistant/internal/clicktime"
	"github.com/Tiliavir/clicktime-assistant/internal/model"
	"github.com/Tiliavir/clicktime-assistant/internal/poster"
	"github.com/Tiliavir/clicktime-assistant/internal/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSwitch struct {
	calls   int
	enabled *bool
	err     error
}

func (f *fakeSwitch) SetEnabled(_ context.Context, enabled bool) error {
	f.calls++
	f.enabled = &enabled
	return f.err
}

type fakeRefresher struct{ calls int }

func (f *fakeRefresher) Refresh(context.Context) error {
	f.calls++
	return nil
}

type recordingCreator struct {
	entries []model.TimeEntry
	fail    map[int]error
}

func (r *recordingCreator) CreateTimeEntry(_ context.Context, e model.TimeEntry) error {
	r.entries = append(r.entries, e)
	return r.fail[len(r.entries)]
}

func storeWithDate(t *testing.T, date string) storage.Store {
	t.Helper()
	s := storage.NewMemory()
	if err := storage.SetJSON(context.Background(), s, storage.KeyCalendarDate, date); err != nil {
		t.Fatal(err)
	}
	return s
}

var batch = []model.TimeEntryGuess{
	{JobID: "J1", TaskID: "T1", Hours: 3.14},
	{JobID: "J2", TaskID: "T2", Hours: 3.15},
	{JobID: "J3", TaskID: "T3", Hours: 2},
}

func TestPostContinuesPastFailures(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/Me/TimeEntries" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Token tok" {
			t.Errorf("Authorization = %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Error(err)
		}
		mu.Lock()
		bodies = append(bodies, body)
		n := len(bodies)
		mu.Unlock()
		if n == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"message":"boom"}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	client, err := clicktime.New(context.Background(), srv.URL, "tok", srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	sw := &fakeSwitch{}
	rf := &fakeRefresher{}
	p := poster.New(storeWithDate(t, "2026-03-02"), client, sw, rf, discard())

	rep := p.Post(context.Background(), batch)

	if rep.Posted != 2 || rep.Failed != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Failures[0].JobID != "J2" || rep.Failures[0].Status != http.StatusInternalServerError {
		t.Fatalf("failure = %+v", rep.Failures[0])
	}
	if len(bodies) != 3 {
		t.Fatalf("expected 3 submissions, got %d", len(bodies))
	}
	wantHours := []float64{3.1, 3.2, 2}
	for i, b := range bodies {
		if b["Date"] != "2026-03-02" || b["Hours"] != wantHours[i] {
			t.Errorf("body %d = %v", i, b)
		}
		if cf, ok := b["CustomFields"].(map[string]any); !ok || len(cf) != 0 {
			t.Errorf("body %d CustomFields = %v", i, b["CustomFields"])
		}
	}
	if sw.calls != 1 || *sw.enabled {
		t.Fatalf("expected ingestion disabled once, got %+v", sw)
	}
	if rf.calls != 1 {
		t.Fatalf("refresh calls = %d", rf.calls)
	}
}

func TestPostTransportErrorContinues(t *testing.T) {
	rc := &recordingCreator{fail: map[int]error{1: errors.New("connection reset")}}
	sw := &fakeSwitch{}
	rep := poster.New(storeWithDate(t, "2026-03-02"), rc, sw, nil, discard()).Post(context.Background(), batch)
	if len(rc.entries) != 3 || rep.Posted != 2 || rep.Failed != 1 {
		t.Fatalf("entries=%d report=%+v", len(rc.entries), rep)
	}
	if rep.Failures[0].Status != 0 {
		t.Errorf("transport failure should carry no status: %+v", rep.Failures[0])
	}
	if sw.calls != 1 {
		t.Fatal("cleanup skipped")
	}
}

func TestPostEmptyBatchStillCleansUp(t *testing.T) {
	rc := &recordingCreator{}
	sw := &fakeSwitch{}
	rf := &fakeRefresher{}
	rep := poster.New(storeWithDate(t, "2026-03-02"), rc, sw, rf, discard()).Post(context.Background(), nil)
	if rep.Err != nil || rep.Posted != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if sw.calls != 1 || rf.calls != 1 {
		t.Fatalf("switch=%d refresh=%d", sw.calls, rf.calls)
	}
}

func TestPostWithoutDate(t *testing.T) {
	rc := &recordingCreator{}
	sw := &fakeSwitch{}
	rep := poster.New(storage.NewMemory(), rc, sw, nil, discard()).Post(context.Background(), batch)
	if !errors.Is(rep.Err, poster.ErrNoDate) {
		t.Fatalf("err = %v", rep.Err)
	}
	if len(rc.entries) != 0 || sw.calls != 0 {
		t.Fatalf("expected no calls, got entries=%d switch=%d", len(rc.entries), sw.calls)
	}
}

func TestPostWithoutToken(t *testing.T) {
	sw := &fakeSwitch{}
	rep := poster.New(storeWithDate(t, "2026-03-02"), nil, sw, nil, discard()).Post(context.Background(), batch)
	if !errors.Is(rep.Err, clicktime.ErrNoToken) {
		t.Fatalf("err = %v", rep.Err)
	}
	if sw.calls != 0 {
		t.Fatal("switch should not be touched")
	}
}

func TestPostSwitchFailureSkipsRefresh(t *testing.T) {
	sw := &fakeSwitch{err: errors.New("disk full")}
	rf := &fakeRefresher{}
	poster.New(storeWithDate(t, "2026-03-02"), &recordingCreator{}, sw, rf, discard()).Post(context.Background(), batch)
	if rf.calls != 0 {
		t.Fatal("refresh should be skipped when disabling fails")
	}
}

func TestReportSummary(t *testing.T) {
	if got := (poster.Report{Date: "2026-03-02", Posted: 2, Failed: 1}).Summary(); got != "2026-03-02: 2 posted, 1 failed" {
		t.Errorf("got %q", got)
	}
	if got := (poster.Report{Err: poster.ErrNoDate}).Summary(); got != "nothing posted: "+poster.ErrNoDate.Error() {
		t.Errorf("got %q", got)
	}
}
