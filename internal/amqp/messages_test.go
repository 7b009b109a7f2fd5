package amqp

import "testing"

func TestExpenseSyncMessageRoundtrip(t *testing.T) {
	msg := NewExpenseSyncMessage(42)
	if msg.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := ExpenseSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 42 {
		t.Fatalf("id = %d", got.ID)
	}
}

func TestExpenseSyncMessageFromInvalidJSON(t *testing.T) {
	if _, err := ExpenseSyncMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected error")
	}
}
