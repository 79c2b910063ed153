package amqp

import (
	"encoding/json"
	"time"
)

// ReportGeneratedMessage announces that a report snapshot has been archived.
// It carries only the snapshot id and scope; consumers fetch the full
// snapshot from the archive.
type ReportGeneratedMessage struct {
	SnapshotID int64     `json:"snapshotId"`
	Scope      string    `json:"scope"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewReportGeneratedMessage creates a message for a freshly archived snapshot.
func NewReportGeneratedMessage(snapshotID int64, scope string) *ReportGeneratedMessage {
	return &ReportGeneratedMessage{
		SnapshotID: snapshotID,
		Scope:      scope,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ReportGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportGeneratedMessageFromJSON creates a message from JSON bytes.
func ReportGeneratedMessageFromJSON(data []byte) (*ReportGeneratedMessage, error) {
	var msg ReportGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
