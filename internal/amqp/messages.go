package amqp

import (
	"encoding/json"
	"time"
)

// ReportGeneratedMessage announces a finished analysis run. Consumers that
// need more than the headline numbers can read the run archive by RunID.
type ReportGeneratedMessage struct {
	RunID      string          `json:"run_id"`
	InputPath  string          `json:"input_path"`
	Count      int             `json:"count"`
	Total      string          `json:"total"`
	Categories []CategoryTotal `json:"categories"`
	Artifacts  []string        `json:"artifacts,omitempty"`
	Failed     []string        `json:"failed,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// CategoryTotal is one category sum as an exact decimal string.
type CategoryTotal struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// NewReportGeneratedMessage creates a message stamped with the current time.
func NewReportGeneratedMessage(runID, inputPath string) *ReportGeneratedMessage {
	return &ReportGeneratedMessage{
		RunID:     runID,
		InputPath: inputPath,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportGeneratedMessageFromJSON decodes a message published by PublishReport.
func ReportGeneratedMessageFromJSON(data []byte) (*ReportGeneratedMessage, error) {
	var msg ReportGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
