package model

// TimeEntryGuess is a model-proposed time entry. The JSON field names are
// the suggestion response contract and must not change.
type TimeEntryGuess struct {
	JobID  string  `json:"jobID"`
	TaskID string  `json:"taskID"`
	Hours  float64 `json:"hours"`
}

// TimeEntry is the body of a ClickTime create-time-entry request.
type TimeEntry struct {
	Date         string         `json:"Date"`
	Hours        float64        `json:"Hours"`
	JobID        string         `json:"JobID"`
	TaskID       string         `json:"TaskID"`
	CustomFields map[string]any `json:"CustomFields"`
}

// NewTimeEntry builds a TimeEntry for date from g. Hours are taken as-is;
// callers round before submitting.
func NewTimeEntry(date string, g TimeEntryGuess, hours float64) TimeEntry {
	return TimeEntry{
		Date:         date,
		Hours:        hours,
		JobID:        g.JobID,
		TaskID:       g.TaskID,
		CustomFields: map[string]any{},
	}
}
