package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action tells the worker what to do with the referenced invoice.
type Action string

const (
	ActionUpsert Action = "upsert"
	ActionDelete Action = "delete"
)

// InvoiceSyncMessage references an invoice by id; the worker fetches the full
// record from the store, so the queue never carries stale field values.
type InvoiceSyncMessage struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewInvoiceSyncMessage creates a sync message for the given invoice id.
func NewInvoiceSyncMessage(id string, action Action) *InvoiceSyncMessage {
	return &InvoiceSyncMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *InvoiceSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InvoiceSyncMessageFromJSON creates a message from JSON bytes
func InvoiceSyncMessageFromJSON(data []byte) (*InvoiceSyncMessage, error) {
	var msg InvoiceSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal sync message: %w", err)
	}
	switch msg.Action {
	case ActionUpsert, ActionDelete:
	default:
		return nil, fmt.Errorf("unknown sync action: %q", msg.Action)
	}
	return &msg, nil
}
