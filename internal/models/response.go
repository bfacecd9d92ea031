package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentSummary is the minimal shape used for self-service listings.
type IncidentSummary struct {
	ID           uuid.UUID `json:"id"`
	Description  string    `json:"description"`
	State        State     `json:"state"`
	CreationDate time.Time `json:"creation_date"`
}

// UserIncident extends the summary with the fields a caller needs to
// tell their own incidents apart across companies.
type UserIncident struct {
	IncidentSummary
	Priority  Priority  `json:"priority"`
	CompanyID uuid.UUID `json:"company_id"`
}

// IncidentDetail is the shape used by manager and company views.
type IncidentDetail struct {
	IncidentSummary
	Channel   Channel    `json:"channel"`
	Priority  Priority   `json:"priority"`
	UserID    uuid.UUID  `json:"user_id"`
	CompanyID uuid.UUID  `json:"company_id"`
	ManagerID *uuid.UUID `json:"manager_id"`
}

// HistoryEntry is the response shape of an IncidentHistory row.
type HistoryEntry struct {
	ID          uuid.UUID `json:"id"`
	IncidentID  uuid.UUID `json:"incident_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// IncidentDetailWithHistory nests the ascending history inside the detail
// shape.
type IncidentDetailWithHistory struct {
	IncidentDetail
	History []HistoryEntry `json:"history"`
}

// NewIncidentSummary maps a persisted incident to its minimal shape.
func NewIncidentSummary(inc Incident) IncidentSummary {
	return IncidentSummary{
		ID:           inc.ID,
		Description:  inc.Description,
		State:        inc.State,
		CreationDate: inc.CreationDate,
	}
}

func NewUserIncident(inc Incident) UserIncident {
	return UserIncident{
		IncidentSummary: NewIncidentSummary(inc),
		Priority:        inc.Priority,
		CompanyID:       inc.CompanyID,
	}
}

// NewIncidentDetail maps a persisted incident to the detailed shape.
// A missing manager is rendered as null.
func NewIncidentDetail(inc Incident) IncidentDetail {
	d := IncidentDetail{
		IncidentSummary: NewIncidentSummary(inc),
		Channel:         inc.Channel,
		Priority:        inc.Priority,
		UserID:          inc.UserID,
		CompanyID:       inc.CompanyID,
	}
	if inc.ManagerID.Valid {
		id := inc.ManagerID.UUID
		d.ManagerID = &id
	}
	return d
}

func NewHistoryEntry(h IncidentHistory) HistoryEntry {
	return HistoryEntry{
		ID:          h.ID,
		IncidentID:  h.IncidentID,
		Description: h.Description,
		CreatedAt:   h.CreatedAt,
	}
}

// NewIncidentDetailWithHistory maps an incident and its history.
func NewIncidentDetailWithHistory(iwh IncidentWithHistory) IncidentDetailWithHistory {
	history := make([]HistoryEntry, 0, len(iwh.History))
	for _, h := range iwh.History {
		history = append(history, NewHistoryEntry(h))
	}
	return IncidentDetailWithHistory{
		IncidentDetail: NewIncidentDetail(iwh.Incident),
		History:        history,
	}
}

// The list mappers below always return a non-nil slice so empty results
// encode as [] rather than null.

func SummaryList(incidents []Incident) []IncidentSummary {
	out := make([]IncidentSummary, 0, len(incidents))
	for _, inc := range incidents {
		out = append(out, NewIncidentSummary(inc))
	}
	return out
}

func UserIncidentList(incidents []Incident) []UserIncident {
	out := make([]UserIncident, 0, len(incidents))
	for _, inc := range incidents {
		out = append(out, NewUserIncident(inc))
	}
	return out
}

func DetailList(incidents []Incident) []IncidentDetail {
	out := make([]IncidentDetail, 0, len(incidents))
	for _, inc := range incidents {
		out = append(out, NewIncidentDetail(inc))
	}
	return out
}

func DetailWithHistoryList(items []IncidentWithHistory) []IncidentDetailWithHistory {
	out := make([]IncidentDetailWithHistory, 0, len(items))
	for _, item := range items {
		out = append(out, NewIncidentDetailWithHistory(item))
	}
	return out
}
