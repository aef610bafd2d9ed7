package storage

// Keys used by the pipeline. The string values match the ones the browser
// extension writes so that exported state stays interchangeable.
const (
	KeyCalendar        = "calendarData"
	KeyNTBEvent        = "ntbEventData"
	KeyJob             = "jobData"
	KeyTask            = "taskOptionsData"
	KeyTaskControl     = "taskControlsData"
	KeyCombinedJobTask = "combinedJobTaskData"
	KeySelectedClient  = "selectedClient"
	KeyCustomMessage   = "customMessage"
	KeyCalendarDate    = "calendarDate"
	KeyEnabled         = "enabled"

	// KeyCombinedSource holds the fingerprint of the inputs the current
	// combined catalog was built from.
	KeyCombinedSource = "combinedJobTaskSource"
)

// AllKeys returns every key cleared on navigation.
func AllKeys() []string {
	return []string{
		KeyCalendar,
		KeyNTBEvent,
		KeyJob,
		KeyTask,
		KeyTaskControl,
		KeyCombinedJobTask,
		KeySelectedClient,
		KeyCustomMessage,
		KeyCalendarDate,
		KeyEnabled,
		KeyCombinedSource,
	}
}
