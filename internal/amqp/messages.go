package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Event kinds published after a successful ledger write.
const (
	KindCategoryCreated = "category.created"
	KindIncomeUpdated   = "income.updated"
)

// LedgerEvent tells consumers that the ledger changed. It carries only the
// entity id; consumers refetch what they need.
type LedgerEvent struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(kind, id string) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes an event. Events without a kind are rejected.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" {
		return nil, errors.New("ledger event without kind")
	}
	return &msg, nil
}
