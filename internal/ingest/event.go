package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Kind identifies what an intercepted page response carries.
type Kind string

const (
	KindCalendar     Kind = "CALENDAR_DATA"
	KindNTBEvent     Kind = "NTB_EVENT_DATA"
	KindJob          Kind = "JOB_DATA"
	KindTask         Kind = "TASK_DATA"
	KindCalendarDate Kind = "CALENDAR_DATE"
)

// Event is one relayed page response. Batch kinds carry {"data": ...};
// CALENDAR_DATE carries a bare JSON string.
type Event struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeEvents reads a stream of events. Each top-level value may be a
// single event or an array of events, so NDJSON and plain arrays both work.
func DecodeEvents(r io.Reader) ([]Event, error) {
	dec := json.NewDecoder(r)
	var out []Event
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("decoding event %d: %w", len(out), err)
		}

		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '[' {
			var batch []Event
			if err := json.Unmarshal(raw, &batch); err != nil {
				return out, fmt.Errorf("decoding event batch: %w", err)
			}
			out = append(out, batch...)
			continue
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return out, fmt.Errorf("decoding event %d: %w", len(out), err)
		}
		out = append(out, ev)
	}
}

// OnHost reports whether rawURL points at the same host as baseURL.
// Navigating there clears captured state.
func OnHost(rawURL, baseURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	b, err := url.Parse(baseURL)
	if err != nil || b.Hostname() == "" {
		return false
	}
	return strings.EqualFold(u.Hostname(), b.Hostname())
}
