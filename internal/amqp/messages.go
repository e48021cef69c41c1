package amqp

import (
	"encoding/json"
	"time"
)

// DatasetUpdatedMessage announces that a new CPI dataset was imported.
// Consumers reload their snapshot from the shared store; the message carries
// only metadata.
type DatasetUpdatedMessage struct {
	ImportID     int64     `json:"import_id"`
	Source       string    `json:"source"`
	Observations int       `json:"observations"`
	LatestDate   string    `json:"latest_date"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewDatasetUpdatedMessage(importID int64, source string, observations int, latest time.Time) *DatasetUpdatedMessage {
	return &DatasetUpdatedMessage{
		ImportID:     importID,
		Source:       source,
		Observations: observations,
		LatestDate:   latest.Format("2006-01-02"),
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DatasetUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetUpdatedMessageFromJSON creates a message from JSON bytes
func DatasetUpdatedMessageFromJSON(data []byte) (*DatasetUpdatedMessage, error) {
	var msg DatasetUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
