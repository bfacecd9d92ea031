package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentHistory is a single change recorded against an incident.
type IncidentHistory struct {
	ID          uuid.UUID `db:"id"`
	IncidentID  uuid.UUID `db:"incident_id"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// IncidentWithHistory pairs an incident with its history in ascending
// creation order.
type IncidentWithHistory struct {
	Incident Incident
	History  []IncidentHistory
}
