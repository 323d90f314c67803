package amqp

import (
	"encoding/json"
	"time"
)

// ReportGeneratedMessage announces a persisted report. It carries only
// identifiers; consumers load the full record from the report store.
type ReportGeneratedMessage struct {
	ReportID   string    `json:"reportId"`
	UserID     string    `json:"userId"`
	ReportType string    `json:"reportType"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewReportGeneratedMessage(reportID, userID, reportType string) *ReportGeneratedMessage {
	return &ReportGeneratedMessage{
		ReportID:   reportID,
		UserID:     userID,
		ReportType: reportType,
		Timestamp:  time.Now(),
	}
}

func (m *ReportGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportGeneratedMessageFromJSON(data []byte) (*ReportGeneratedMessage, error) {
	var msg ReportGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
