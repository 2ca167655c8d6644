package notify

import (
	"encoding/json"
	"time"
)

// Event kinds published on the events exchange.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
	EventAnomalyDetected    = "anomaly.detected"
)

// Event is the JSON payload of every published message. Transaction events
// carry the transaction id and date; anomaly events carry the category id
// and the month-over-month percentage change.
type Event struct {
	Kind          string    `json:"kind"`
	TransactionID string    `json:"transactionId,omitempty"`
	Date          string    `json:"date,omitempty"`
	CategoryID    string    `json:"categoryId,omitempty"`
	PercentChange float64   `json:"percentageChange,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionEvent builds a created/deleted transaction event.
func NewTransactionEvent(kind, id, date string) *Event {
	return &Event{Kind: kind, TransactionID: id, Date: date, Timestamp: time.Now()}
}

// NewAnomalyEvent builds an anomaly alert event.
func NewAnomalyEvent(categoryID string, percentChange float64) *Event {
	return &Event{Kind: EventAnomalyDetected, CategoryID: categoryID, PercentChange: percentChange, Timestamp: time.Now()}
}

// ToJSON converts the event to JSON bytes.
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON parses an event from JSON bytes.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
