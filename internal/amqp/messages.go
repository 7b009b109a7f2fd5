package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseSyncMessage asks the worker to mirror one committed expense to the
// backup sheet. It carries only the row ID; the worker refetches the full
// expense so the ledger stays the single source of truth.
type ExpenseSyncMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseSyncMessage(id int64) *ExpenseSyncMessage {
	return &ExpenseSyncMessage{ID: id, Timestamp: time.Now()}
}

func (m *ExpenseSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseSyncMessageFromJSON(data []byte) (*ExpenseSyncMessage, error) {
	var msg ExpenseSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
