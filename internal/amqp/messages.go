package amqp

import (
	"encoding/json"
	"time"
)

// BillSyncMessage is the lightweight notification that a bill was saved and
// should be mirrored to the spreadsheet. It carries only the identifier and
// version; the worker fetches the full document from the store.
type BillSyncMessage struct {
	BillID    int       `json:"billId"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBillSyncMessage creates a new sync message with just ID and version
func NewBillSyncMessage(billID int, version int64) *BillSyncMessage {
	return &BillSyncMessage{
		BillID:    billID,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BillSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BillSyncMessageFromJSON creates a message from JSON bytes
func BillSyncMessageFromJSON(data []byte) (*BillSyncMessage, error) {
	var msg BillSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
