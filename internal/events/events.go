// Package events defines the notification sink the persistence layer
// publishes to. Publishing is best-effort: a nil or failing publisher
// never fails the operation that produced the event.
package events

import (
	"log"
	"time"
)

// Kind names a domain event.
type Kind string

const (
	ProjectCreated  Kind = "project.created"
	ProjectOpened   Kind = "project.opened"
	ProjectSaved    Kind = "project.saved"
	ProjectDeleted  Kind = "project.deleted"
	BackupCreated   Kind = "backup.created"
	BackupRestored  Kind = "backup.restored"
	VersionCreated  Kind = "version.created"
	VersionRestored Kind = "version.restored"
)

// Event is the payload delivered to a Publisher.
type Event struct {
	Kind       Kind
	ProjectID  string
	DocumentID string
	BackupID   string
	OccurredAt time.Time
	Detail     string
}

// Publisher receives domain events. Implementations must not block for
// long and must tolerate being called from any goroutine.
type Publisher interface {
	Publish(ev Event) error
}

// Publish sends an event through p, swallowing a nil publisher and any
// publish error. Callers fire and forget.
func Publish(p Publisher, logger *log.Logger, ev Event) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	if err := p.Publish(ev); err != nil && logger != nil {
		logger.Printf("event publish failed (%s): %v", ev.Kind, err)
	}
}

// LogPublisher writes each event as one log line. It is the default sink
// when no external bus is wired in.
type LogPublisher struct {
	Logger *log.Logger
}

// Publish writes the event to the logger. A nil logger drops the event.
func (p *LogPublisher) Publish(ev Event) error {
	if p.Logger == nil {
		return nil
	}
	switch {
	case ev.BackupID != "":
		p.Logger.Printf("%s project=%s backup=%s %s", ev.Kind, ev.ProjectID, ev.BackupID, ev.Detail)
	case ev.DocumentID != "":
		p.Logger.Printf("%s project=%s document=%s %s", ev.Kind, ev.ProjectID, ev.DocumentID, ev.Detail)
	default:
		p.Logger.Printf("%s project=%s %s", ev.Kind, ev.ProjectID, ev.Detail)
	}
	return nil
}
