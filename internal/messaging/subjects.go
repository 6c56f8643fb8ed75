package messaging

// Subject constants for the notify message bus.
// Follow the pattern: {domain}.{action}.{resource}
const (
	// SubjectWorkflowFailuresNotify carries FailureEvent payloads to be rendered and delivered.
	SubjectWorkflowFailuresNotify = "workflow.failures.notify"
)

// Queue group names for load-balanced consumers.
const (
	QueueNotifyWorkers = "notify-workers"
)
