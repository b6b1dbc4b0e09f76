package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	TypeExportRequest = "export_request"
	TypeRecordCreated = "record_created"
)

// Envelope wraps every queue message with a type tag so one queue can
// carry both export requests and record notifications.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ExportRequestMessage asks the worker to build a report and append it
// to the spreadsheet. Dates are YYYY-MM-DD; empty fields mean no filter.
type ExportRequestMessage struct {
	UserID    string    `json:"user_id"`
	Property  string    `json:"property,omitempty"`
	StartDate string    `json:"start_date,omitempty"`
	EndDate   string    `json:"end_date,omitempty"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordCreatedMessage is a lightweight notification. The worker fetches
// the full record from the database by id.
type RecordCreatedMessage struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func encodeEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func decodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("envelope missing type")
	}
	return &env, nil
}
