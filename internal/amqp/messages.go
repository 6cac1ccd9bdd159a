package amqp

import (
	"encoding/json"
	"time"

	"pocketbook/internal/store"
)

// ChangeMessage announces a store mutation. Consumers fetch the data they
// need from the service; the message only identifies what changed.
type ChangeMessage struct {
	Kind          string    `json:"kind"`
	Count         int       `json:"count"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	CategoryKey   string    `json:"category_key,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewChangeMessage summarizes change. Count is the list size after it.
func NewChangeMessage(change store.Change) *ChangeMessage {
	msg := &ChangeMessage{
		Kind:      string(change.Kind),
		Count:     len(change.Transactions),
		Timestamp: time.Now(),
	}
	if tx := change.Added; tx != nil {
		msg.TransactionID = tx.ID.String()
		msg.Amount = tx.Amount.String()
		msg.CategoryKey = tx.CategoryKey
	}
	return msg
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
