package model

// Client is a billing client as listed in the job dropdown options.
type Client struct {
	ID              string `json:"ID"`
	ListDisplayText string `json:"ListDisplayText"`
}

// Job is a billable job.
type Job struct {
	ClientID        string  `json:"ClientID"`
	EndDate         *string `json:"EndDate"`
	ID              string  `json:"ID"`
	ListDisplayText string  `json:"ListDisplayText"`
	StartDate       *string `json:"StartDate"`
}

// JobCatalog is the JOB_DATA payload.
type JobCatalog struct {
	Clients map[string]Client `json:"Clients"`
	Jobs    map[string]Job    `json:"Jobs"`
}

// Task is a unit of work that can be assigned to jobs.
type Task struct {
	ID              string `json:"ID"`
	ListDisplayText string `json:"ListDisplayText"`
}

// TaskCatalog is the TASK_DATA payload, keyed by task ID.
type TaskCatalog map[string]Task

// TaskControl asserts that TaskID is eligible under JobID.
type TaskControl struct {
	JobID  string `json:"JobID"`
	TaskID string `json:"TaskID"`
}

// JobTask is one eligible task inside a CombinedJob.
type JobTask struct {
	TaskID          string `json:"TaskID"`
	ListDisplayText string `json:"ListDisplayText"`
}

// CombinedJob is a Job enriched with the tasks it accepts.
type CombinedJob struct {
	Job
	Tasks []JobTask `json:"Tasks,omitempty"`
}

// CombinedCatalog is the merged view handed to the suggestion model.
type CombinedCatalog struct {
	Clients map[string]Client      `json:"Clients"`
	Jobs    map[string]CombinedJob `json:"Jobs"`
}

// Clone returns a deep copy of c. Date pointers are duplicated so the copy
// shares no memory with c.
func (c JobCatalog) Clone() JobCatalog {
	out := JobCatalog{
		Clients: make(map[string]Client, len(c.Clients)),
		Jobs:    make(map[string]Job, len(c.Jobs)),
	}
	for id, cl := range c.Clients {
		out.Clients[id] = cl
	}
	for id, j := range c.Jobs {
		out.Jobs[id] = j.clone()
	}
	return out
}

func (j Job) clone() Job {
	j.StartDate = cloneString(j.StartDate)
	j.EndDate = cloneString(j.EndDate)
	return j
}

// Clone returns a deep copy of c.
func (c CombinedCatalog) Clone() CombinedCatalog {
	out := CombinedCatalog{
		Clients: make(map[string]Client, len(c.Clients)),
		Jobs:    make(map[string]CombinedJob, len(c.Jobs)),
	}
	for id, cl := range c.Clients {
		out.Clients[id] = cl
	}
	for id, j := range c.Jobs {
		cj := CombinedJob{Job: j.Job.clone()}
		if j.Tasks != nil {
			cj.Tasks = append([]JobTask(nil), j.Tasks...)
		}
		out.Jobs[id] = cj
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
