package suggest

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/Tiliavir/clicktime-assistant/internal/model"
)

// PromptData is everything the prompt embeds.
type PromptData struct {
	Catalog  model.CombinedCatalog
	Calendar []model.EventRecord
	NTB      []model.EventRecord
	Note     string
}

// Hour bounds the model is asked to respect: MinDayHours <= total < MaxDayHours.
const (
	MinDayHours = 8.0
	MaxDayHours = 9.5
)

var promptTemplate = template.Must(template.New("prompt").Parse(`You create time entries from a work day's calendar and ticket activity.
The job and task JSON below is the only valid source of job and task IDs. Never invent, alter or guess an ID.

<jobs_and_tasks_json>
{{.Catalog}}
</jobs_and_tasks_json>

<calendar_events_json>
{{.Calendar}}
</calendar_events_json>

<ntb_events_json>
{{.NTB}}
</ntb_events_json>

<user_notes_text>
{{.Note}}
</user_notes_text>

Work through it like this:
1. Read every calendar and non-time-bound event.
2. Pick the job each event belongs to.
3. Take the jobID from <jobs_and_tasks_json> and a taskID from that job's Tasks list, and nowhere else.
4. If an event has no valid jobID and taskID pairing, leave it out instead of guessing.
5. Propose the day's entries. The hours of all entries together MUST be at least {{.Min}} and less than {{.Max}}.
   No two entries may use the same jobID and taskID pair.

Reply with a JSON array and nothing else: no prose, no reasoning, no code fences.
Each element has exactly these fields:
- jobID: string, the chosen job's ID
- taskID: string, the ID of a task listed under that job
- hours: number, in steps of 0.1

Example:
[
  {"jobID": "4Kw7hWu-WJ3fPFqS31DLxHw2", "taskID": "4fQszY-Qu3cdRSLNl6p_rBw2", "hours": 3.5},
  {"jobID": "4RBbJYC0t_xMGdz1D64GPbw2", "taskID": "4i8OMI__4Yg4bFYAgEAAvSA2", "hours": 4.5}
]
`))

// BuildPrompt renders the single-turn suggestion prompt. Catalog and event
// data are embedded as indented JSON.
func BuildPrompt(d PromptData) (string, error) {
	catalog, err := indent(d.Catalog)
	if err != nil {
		return "", fmt.Errorf("encoding catalog: %w", err)
	}
	calendar, err := indent(d.Calendar)
	if err != nil {
		return "", fmt.Errorf("encoding calendar events: %w", err)
	}
	ntb, err := indent(d.NTB)
	if err != nil {
		return "", fmt.Errorf("encoding ntb events: %w", err)
	}

	var b strings.Builder
	err = promptTemplate.Execute(&b, map[string]any{
		"Catalog":  catalog,
		"Calendar": calendar,
		"NTB":      ntb,
		"Note":     d.Note,
		"Min":      MinDayHours,
		"Max":      MaxDayHours,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func indent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FilterByClient keeps only the jobs billed to clientID. Clients are passed
// through unchanged.
func FilterByClient(c model.CombinedCatalog, clientID string) model.CombinedCatalog {
	src := c.Clone()
	out := model.CombinedCatalog{
		Clients: src.Clients,
		Jobs:    make(map[string]model.CombinedJob),
	}
	for id, j := range src.Jobs {
		if j.ClientID == clientID {
			out.Jobs[id] = j
		}
	}
	return out
}
