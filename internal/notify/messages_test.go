package notify

import (
	"testing"
)

func TestTransactionEventRoundTrip(t *testing.T) {
	e := NewTransactionEvent(EventTransactionCreated, "tx-1", "2024-01-05")

	data, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := EventFromJSON(data)
	if err != nil {
		t.Fatalf("EventFromJSON: %v", err)
	}
	if got.Kind != EventTransactionCreated {
		t.Errorf("kind = %q, want %q", got.Kind, EventTransactionCreated)
	}
	if got.TransactionID != "tx-1" {
		t.Errorf("transactionId = %q, want tx-1", got.TransactionID)
	}
	if got.Date != "2024-01-05" {
		t.Errorf("date = %q, want 2024-01-05", got.Date)
	}
}

func TestAnomalyEventRoundTrip(t *testing.T) {
	e := NewAnomalyEvent("food", 62.5)

	data, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := EventFromJSON(data)
	if err != nil {
		t.Fatalf("EventFromJSON: %v", err)
	}
	if got.Kind != EventAnomalyDetected {
		t.Errorf("kind = %q, want %q", got.Kind, EventAnomalyDetected)
	}
	if got.CategoryID != "food" {
		t.Errorf("categoryId = %q, want food", got.CategoryID)
	}
	if got.PercentChange != 62.5 {
		t.Errorf("percentageChange = %v, want 62.5", got.PercentChange)
	}
	if got.Timestamp.IsZero() {
		t.Errorf("timestamp lost in round trip")
	}
}

func TestEventFromJSONRejectsMalformed(t *testing.T) {
	if _, err := EventFromJSON([]byte(`{not json`)); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
