package module

import "leadscout/internal/services/scheduler/domain"

// Ports defines scheduler module ports exposed via the registry
type Ports struct {
	Admin    domain.AdminPort
	Runner   domain.RunnerPort
	Inbox    domain.InboxPort
	Reporter domain.ReporterPort
}
