package core

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a single normalized security telemetry record.
// Events are immutable once created: the detection engine only reads them.
type Event struct {
	ID           string                 `json:"id"`
	Timestamp    time.Time              `json:"timestamp"`
	EventType    string                 `json:"event_type"`
	Severity     Severity               `json:"severity,omitempty"`
	SourceIP     string                 `json:"source_ip,omitempty"`
	SourcePort   int                    `json:"source_port,omitempty"`
	DestIP       string                 `json:"dest_ip,omitempty"`
	DestPort     int                    `json:"dest_port,omitempty"`
	Protocol     string                 `json:"protocol,omitempty"`
	Action       string                 `json:"action,omitempty"`
	UserAccount  string                 `json:"user_account,omitempty"`
	Hostname     string                 `json:"hostname,omitempty"`
	ProcessName  string                 `json:"process_name,omitempty"`
	CommandLine  string                 `json:"command_line,omitempty"`
	RawLog       string                 `json:"raw_log,omitempty"`
	Message      string                 `json:"message,omitempty"`
	SimulationID string                 `json:"simulation_id,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent creates a new Event with a generated UUID and current UTC timestamp
func NewEvent() *Event {
	return &Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
	}
}

// FieldValue returns the value of a named event attribute. Well-known
// attributes resolve to their struct fields; anything else is looked up in
// Metadata. The second return value reports whether the attribute is present
// and non-empty.
func (e *Event) FieldValue(name string) (interface{}, bool) {
	switch name {
	case "id":
		return e.ID, e.ID != ""
	case "timestamp":
		return e.Timestamp, !e.Timestamp.IsZero()
	case "event_type":
		return e.EventType, e.EventType != ""
	case "severity":
		return string(e.Severity), e.Severity != ""
	case "source_ip":
		return e.SourceIP, e.SourceIP != ""
	case "source_port":
		return e.SourcePort, e.SourcePort != 0
	case "dest_ip":
		return e.DestIP, e.DestIP != ""
	case "dest_port":
		return e.DestPort, e.DestPort != 0
	case "protocol":
		return e.Protocol, e.Protocol != ""
	case "action":
		return e.Action, e.Action != ""
	case "user_account":
		return e.UserAccount, e.UserAccount != ""
	case "hostname":
		return e.Hostname, e.Hostname != ""
	case "process_name":
		return e.ProcessName, e.ProcessName != ""
	case "command_line":
		return e.CommandLine, e.CommandLine != ""
	case "raw_log":
		return e.RawLog, e.RawLog != ""
	case "message":
		return e.Message, e.Message != ""
	}
	if e.Metadata != nil {
		if v, ok := e.Metadata[name]; ok {
			return v, true
		}
	}
	return nil, false
}
