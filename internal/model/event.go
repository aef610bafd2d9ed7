package model

import "encoding/json"

// EventTime is the start or end of a calendar entry as reported by the
// ClickTime calendar endpoints.
type EventTime struct {
	Date     *string `json:"Date"`
	DateTime string  `json:"DateTime"`
	TimeZone string  `json:"TimeZone"`
}

// EventRecord is the stored projection of a calendar or non-time-bound
// event. It is what the suggestion prompt sees.
type EventRecord struct {
	Start       *EventTime `json:"Start"`
	End         *EventTime `json:"End"`
	Title       string     `json:"Title"`
	Description string     `json:"Description"`
	EventType   string     `json:"EventType"`
}

// RawEvent is a calendar or NTB event as delivered by the page.
type RawEvent struct {
	Description   string            `json:"Description"`
	End           *EventTime        `json:"End"`
	EventID       string            `json:"EventID,omitempty"`
	EventType     string            `json:"EventType"`
	IsAllDayEvent *bool             `json:"IsAllDayEvent,omitempty"`
	IsWorkRelated *bool             `json:"IsWorkRelated,omitempty"`
	Metadata      json.RawMessage   `json:"Metadata,omitempty"`
	Start         *EventTime        `json:"Start"`
	SuggestedJobs []json.RawMessage `json:"SuggestedJobs,omitempty"`
	TimeEntryID   *string           `json:"TimeEntryID,omitempty"`
	Title         string            `json:"Title"`
}

// Record drops everything the suggestion prompt does not need.
func (e RawEvent) Record() EventRecord {
	return EventRecord{
		Start:       e.Start,
		End:         e.End,
		Title:       e.Title,
		Description: e.Description,
		EventType:   e.EventType,
	}
}

// Records projects a batch of raw events. The result is never nil so an
// empty batch is still stored as present.
func Records(events []RawEvent) []EventRecord {
	out := make([]EventRecord, 0, len(events))
	for _, e := range events {
		out = append(out, e.Record())
	}
	return out
}
