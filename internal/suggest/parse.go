package suggest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/Tiliavir/clicktime-assistant/internal/model"
)

// fence matches Markdown code fence markers with an optional language tag.
var fence = regexp.MustCompile("```[A-Za-z]*\\n?")

// StripFences removes code fence markers some providers wrap JSON in.
func StripFences(text string) string {
	return strings.TrimSpace(fence.ReplaceAllString(text, ""))
}

var guessFields = []string{"jobID", "taskID", "hours"}

// ParseGuesses decodes the model reply. The reply must be a JSON array whose
// elements carry exactly jobID (string), taskID (string) and hours (number);
// anything else is an error.
func ParseGuesses(text string) ([]model.TimeEntryGuess, error) {
	dec := json.NewDecoder(strings.NewReader(StripFences(text)))
	dec.UseNumber()

	var raw []map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding suggestions: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding suggestions: trailing data after array")
	}
	if raw == nil {
		return nil, fmt.Errorf("decoding suggestions: expected array, got null")
	}

	out := make([]model.TimeEntryGuess, 0, len(raw))
	for i, el := range raw {
		g, err := parseGuess(el)
		if err != nil {
			return nil, fmt.Errorf("suggestion %d: %w", i, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func parseGuess(el map[string]json.RawMessage) (model.TimeEntryGuess, error) {
	if el == nil {
		return model.TimeEntryGuess{}, fmt.Errorf("expected object, got null")
	}
	if len(el) != len(guessFields) {
		return model.TimeEntryGuess{}, fmt.Errorf("expected fields %v, got %d fields", guessFields, len(el))
	}
	for _, f := range guessFields {
		if _, ok := el[f]; !ok {
			return model.TimeEntryGuess{}, fmt.Errorf("missing field %q", f)
		}
	}

	var g model.TimeEntryGuess
	if err := decodeString(el["jobID"], &g.JobID); err != nil {
		return g, fmt.Errorf("jobID: %w", err)
	}
	if err := decodeString(el["taskID"], &g.TaskID); err != nil {
		return g, fmt.Errorf("taskID: %w", err)
	}
	hours := bytes.TrimSpace(el["hours"])
	if len(hours) == 0 || (hours[0] != '-' && (hours[0] < '0' || hours[0] > '9')) {
		return g, fmt.Errorf("hours: expected number, got %s", hours)
	}
	if err := json.Unmarshal(hours, &g.Hours); err != nil {
		return g, fmt.Errorf("hours: %w", err)
	}
	return g, nil
}

func decodeString(raw json.RawMessage, dst *string) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return fmt.Errorf("expected string, got %s", raw)
	}
	return json.Unmarshal(raw, dst)
}
