package timecalc_test

import (
	"testing"

	"github.com/Tiliavir/clicktime-assistant/internal/model"
	"github.com/Tiliavir/clicktime-assistant/internal/timecalc"
)

func TestRoundToNearestTenth(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{3.14, 3.1},
		{3.15, 3.2},
		{2.25, 2.3},
		{1.04, 1},
		{7.96, 8},
		{0.05, 0.1},
		{4, 4},
	}
	for _, tt := range tests {
		got := timecalc.RoundToNearestTenth(tt.in)
		if got != tt.want {
			t.Errorf("RoundToNearestTenth(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTotalHours(t *testing.T) {
	guesses := []model.TimeEntryGuess{
		{JobID: "J1", TaskID: "T1", Hours: 3.5},
		{JobID: "J2", TaskID: "T2", Hours: 4.5},
	}
	if got := timecalc.TotalHours(guesses); got != 8 {
		t.Errorf("TotalHours = %v, want 8", got)
	}
	if got := timecalc.TotalHours(nil); got != 0 {
		t.Errorf("TotalHours(nil) = %v, want 0", got)
	}
}

func TestFormatHours(t *testing.T) {
	if got := timecalc.FormatHours(1.5); got != "1.5h" {
		t.Errorf("FormatHours(1.5) = %q, want %q", got, "1.5h")
	}
	if got := timecalc.FormatHours(8); got != "8.0h" {
		t.Errorf("FormatHours(8) = %q, want %q", got, "8.0h")
	}
}

func TestEventHours(t *testing.T) {
	tests := []struct {
		name    string
		rec     model.EventRecord
		want    float64
		wantErr bool
	}{
		{
			name: "local with zone",
			rec: model.EventRecord{
				Start: &model.EventTime{DateTime: "2026-02-27T09:00:00", TimeZone: "Europe/Berlin"},
				End:   &model.EventTime{DateTime: "2026-02-27T10:30:00", TimeZone: "Europe/Berlin"},
			},
			want: 1.5,
		},
		{
			name: "rfc3339",
			rec: model.EventRecord{
				Start: &model.EventTime{DateTime: "2026-02-27T09:00:00Z"},
				End:   &model.EventTime{DateTime: "2026-02-27T11:00:00+00:00"},
			},
			want: 2,
		},
		{
			name: "fractional seconds",
			rec: model.EventRecord{
				Start: &model.EventTime{DateTime: "2026-02-27T09:00:00.0000000"},
				End:   &model.EventTime{DateTime: "2026-02-27T09:15:00.0000000"},
			},
			want: 0.25,
		},
		{
			name:    "missing end",
			rec:     model.EventRecord{Start: &model.EventTime{DateTime: "2026-02-27T09:00:00"}},
			wantErr: true,
		},
		{
			name: "garbage",
			rec: model.EventRecord{
				Start: &model.EventTime{DateTime: "yesterday"},
				End:   &model.EventTime{DateTime: "2026-02-27T09:15:00"},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timecalc.EventHours(tt.rec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("EventHours: expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("EventHours: %v", err)
			}
			if got != tt.want {
				t.Errorf("EventHours = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScheduledHoursSkipsUnparseable(t *testing.T) {
	recs := []model.EventRecord{
		{
			Start: &model.EventTime{DateTime: "2026-02-27T09:00:00"},
			End:   &model.EventTime{DateTime: "2026-02-27T10:00:00"},
		},
		{Title: "no times"},
	}
	if got := timecalc.ScheduledHours(recs); got != 1 {
		t.Errorf("ScheduledHours = %v, want 1", got)
	}
}
