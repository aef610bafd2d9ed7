package model_test

import (
	"encoding/json"
	"testing"

	"github.com/Tiliavir/clicktime-assistant/internal/model"
)

func TestJobCatalogCloneIsDeep(t *testing.T) {
	start := "2026-01-01"
	src := model.JobCatalog{
		Clients: map[string]model.Client{"C1": {ID: "C1", ListDisplayText: "Acme"}},
		Jobs:    map[string]model.Job{"J1": {ID: "J1", ClientID: "C1", StartDate: &start}},
	}

	cp := src.Clone()
	*cp.Jobs["J1"].StartDate = "changed"
	cp.Clients["C2"] = model.Client{ID: "C2"}

	if *src.Jobs["J1"].StartDate != "2026-01-01" {
		t.Errorf("source StartDate = %q, want unchanged", *src.Jobs["J1"].StartDate)
	}
	if _, ok := src.Clients["C2"]; ok {
		t.Error("adding a client to the clone leaked into the source")
	}
}

func TestCombinedCatalogCloneIsDeep(t *testing.T) {
	src := model.CombinedCatalog{
		Clients: map[string]model.Client{},
		Jobs: map[string]model.CombinedJob{
			"J1": {Job: model.Job{ID: "J1"}, Tasks: []model.JobTask{{TaskID: "T1"}}},
		},
	}
	cp := src.Clone()
	cp.Jobs["J1"].Tasks[0].TaskID = "T9"

	if got := src.Jobs["J1"].Tasks[0].TaskID; got != "T1" {
		t.Errorf("source task = %q, want %q", got, "T1")
	}
}

func TestCombinedJobJSONFlattensJob(t *testing.T) {
	cj := model.CombinedJob{
		Job:   model.Job{ID: "J1", ClientID: "C1", ListDisplayText: "Build"},
		Tasks: []model.JobTask{{TaskID: "T1", ListDisplayText: "Design"}},
	}
	data, err := json.Marshal(cj)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"ClientID":"C1","EndDate":null,"ID":"J1","ListDisplayText":"Build","StartDate":null,"Tasks":[{"TaskID":"T1","ListDisplayText":"Design"}]}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestRecordsProjection(t *testing.T) {
	allDay := true
	raw := []model.RawEvent{{
		EventID:       "E1",
		Title:         "Standup",
		Description:   "daily",
		EventType:     "Meeting",
		IsAllDayEvent: &allDay,
		Start:         &model.EventTime{DateTime: "2026-02-27T09:00:00"},
	}}
	recs := model.Records(raw)
	if len(recs) != 1 {
		t.Fatalf("Records len = %d, want 1", len(recs))
	}
	if recs[0].Title != "Standup" || recs[0].EventType != "Meeting" {
		t.Errorf("Records[0] = %+v", recs[0])
	}
	data, err := json.Marshal(recs[0])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := fields["EventID"]; ok {
		t.Error("projected record still carries EventID")
	}

	if got := model.Records(nil); got == nil {
		t.Error("Records(nil) = nil, want empty slice")
	}
}
