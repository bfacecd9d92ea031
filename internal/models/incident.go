package models

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of an incident.
type State string

const (
	StateOpen       State = "open"
	StateInProgress State = "in_progress"
	StateClosed     State = "closed"
	StateEscalated  State = "escalated"
)

// Channel is the contact channel an incident was reported through.
type Channel string

const (
	ChannelPhone  Channel = "phone"
	ChannelEmail  Channel = "email"
	ChannelChat   Channel = "chat"
	ChannelMobile Channel = "mobile"
)

// Priority is the urgency assigned to an incident.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var (
	validStates     = []State{StateOpen, StateInProgress, StateClosed, StateEscalated}
	validChannels   = []Channel{ChannelPhone, ChannelEmail, ChannelChat, ChannelMobile}
	validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}
)

// ParseState returns the State named by s or an error if s is not one of
// the known states.
func ParseState(s string) (State, error) {
	for _, v := range validStates {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid incident state %q", s)
}

// ParseChannel returns the Channel named by s.
func ParseChannel(s string) (Channel, error) {
	for _, v := range validChannels {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid incident channel %q", s)
}

// ParsePriority returns the Priority named by s.
func ParsePriority(s string) (Priority, error) {
	for _, v := range validPriorities {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid incident priority %q", s)
}

// Scan implements sql.Scanner. Values outside the enumeration are rejected.
func (s *State) Scan(src any) error {
	raw, err := enumString(src)
	if err != nil {
		return fmt.Errorf("scan state: %w", err)
	}
	v, err := ParseState(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Value implements driver.Valuer.
func (s State) Value() (driver.Value, error) { return string(s), nil }

// Scan implements sql.Scanner.
func (c *Channel) Scan(src any) error {
	raw, err := enumString(src)
	if err != nil {
		return fmt.Errorf("scan channel: %w", err)
	}
	v, err := ParseChannel(raw)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Value implements driver.Valuer.
func (c Channel) Value() (driver.Value, error) { return string(c), nil }

// Scan implements sql.Scanner.
func (p *Priority) Scan(src any) error {
	raw, err := enumString(src)
	if err != nil {
		return fmt.Errorf("scan priority: %w", err)
	}
	v, err := ParsePriority(raw)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Value implements driver.Valuer.
func (p Priority) Value() (driver.Value, error) { return string(p), nil }

func enumString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("unexpected NULL")
	default:
		return "", fmt.Errorf("unsupported type %T", src)
	}
}

// Incident is a row of the incidents table.
// FileData and FileName are stored alongside the incident but are never
// selected by the query layer nor exposed in any response.
type Incident struct {
	ID           uuid.UUID      `db:"id"`
	Description  string         `db:"description"`
	State        State          `db:"state"`
	Channel      Channel        `db:"channel"`
	Priority     Priority       `db:"priority"`
	CreationDate time.Time      `db:"creation_date"`
	UserID       uuid.UUID      `db:"user_id"`
	CompanyID    uuid.UUID      `db:"company_id"`
	ManagerID    uuid.NullUUID  `db:"manager_id"`
	FileData     []byte         `db:"file_data"`
	FileName     sql.NullString `db:"file_name"`
}

// NewIncident builds an Incident from raw enum values, validating each of
// them. Test fixtures are built with it; rows read from the store are
// validated by the enum scanners instead.
func NewIncident(id uuid.UUID, description, state, channel, priority string,
	createdAt time.Time, userID, companyID uuid.UUID, managerID *uuid.UUID) (*Incident, error) {
	st, err := ParseState(state)
	if err != nil {
		return nil, err
	}
	ch, err := ParseChannel(channel)
	if err != nil {
		return nil, err
	}
	pr, err := ParsePriority(priority)
	if err != nil {
		return nil, err
	}
	inc := &Incident{
		ID:           id,
		Description:  description,
		State:        st,
		Channel:      ch,
		Priority:     pr,
		CreationDate: createdAt,
		UserID:       userID,
		CompanyID:    companyID,
	}
	if managerID != nil {
		inc.ManagerID = uuid.NullUUID{UUID: *managerID, Valid: true}
	}
	return inc, nil
}
