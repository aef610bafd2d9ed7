// Package aggregate merges the job catalog, task catalog and task controls
// into the combined catalog the suggestion model works from.
package aggregate

import (
	"errors"

	"github.com/Tiliavir/clicktime-assistant/internal/model"
)

// ErrNotReady means at least one input has not arrived yet. It is an
// expected state, not a failure.
var ErrNotReady = errors.New("aggregate: job, task or task control data missing")

// Combine attaches to every job the tasks its controls allow. The result
// shares no memory with the inputs and each job's Tasks list is built from
// scratch, so calling Combine again on the same inputs yields identical
// output. Controls naming an unknown job or task are dropped, as are
// repeated controls for a pair already attached.
func Combine(jobs *model.JobCatalog, tasks model.TaskCatalog, controls []model.TaskControl) (model.CombinedCatalog, error) {
	if jobs == nil || tasks == nil || controls == nil {
		return model.CombinedCatalog{}, ErrNotReady
	}

	base := jobs.Clone()
	out := model.CombinedCatalog{
		Clients: base.Clients,
		Jobs:    make(map[string]model.CombinedJob, len(base.Jobs)),
	}
	for id, j := range base.Jobs {
		out.Jobs[id] = model.CombinedJob{Job: j}
	}

	seen := make(map[model.TaskControl]struct{}, len(controls))
	for _, tc := range controls {
		job, ok := out.Jobs[tc.JobID]
		if !ok {
			continue
		}
		task, ok := tasks[tc.TaskID]
		if !ok {
			continue
		}
		key := model.TaskControl{JobID: tc.JobID, TaskID: task.ID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		job.Tasks = append(job.Tasks, model.JobTask{
			TaskID:          task.ID,
			ListDisplayText: task.ListDisplayText,
		})
		out.Jobs[tc.JobID] = job
	}
	return out, nil
}
