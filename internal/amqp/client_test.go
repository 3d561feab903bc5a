package amqp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	err      error
	closed   bool
	deadline bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	_, f.deadline = ctx.Deadline()
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestClient_PublishExpenseEvent(t *testing.T) {
	ch := &fakeChannel{}
	client := newClient(ch, "expenses", "expense.changed", nil)

	event := ExpenseEvent{Action: ActionUpdated, ID: 7, Timestamp: time.Date(2017, 11, 1, 0, 0, 0, 0, time.UTC)}
	if err := client.PublishExpenseEvent(context.Background(), event); err != nil {
		t.Fatalf("PublishExpenseEvent() error = %v", err)
	}

	if ch.exchange != "expenses" || ch.key != "expense.changed" {
		t.Errorf("published to %s/%s, want expenses/expense.changed", ch.exchange, ch.key)
	}
	if ch.msg.DeliveryMode != amqp091.Persistent {
		t.Errorf("DeliveryMode = %v, want persistent", ch.msg.DeliveryMode)
	}
	if ch.msg.ContentType != "application/json" {
		t.Errorf("ContentType = %q", ch.msg.ContentType)
	}
	if ch.msg.Type != "updated" {
		t.Errorf("Type = %q, want updated", ch.msg.Type)
	}
	if !ch.deadline {
		t.Error("publish context should carry a deadline")
	}

	got, err := ExpenseEventFromJSON(ch.msg.Body)
	if err != nil {
		t.Fatalf("ExpenseEventFromJSON() error = %v", err)
	}
	if got.Action != event.Action || got.ID != event.ID || !got.Timestamp.Equal(event.Timestamp) {
		t.Errorf("body = %+v, want %+v", got, event)
	}
}

func TestClient_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel/connection is not open")}
	client := newClient(ch, "expenses", "expense.changed", nil)

	err := client.PublishExpenseEvent(context.Background(), NewExpenseEvent(ActionDeleted, 1))
	if err == nil {
		t.Fatal("PublishExpenseEvent() should fail when the channel fails")
	}
	if !errors.Is(err, ch.err) {
		t.Errorf("error should wrap the channel error, got %v", err)
	}
}

func TestClient_Close(t *testing.T) {
	ch := &fakeChannel{}
	client := newClient(ch, "expenses", "expense.changed", nil)

	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !ch.closed {
		t.Error("Close() should close the channel")
	}
}

func TestExpenseEvent_JSON(t *testing.T) {
	event := ExpenseEvent{
		Action:    ActionCreated,
		ID:        12345,
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	want := `{"action":"created","id":12345,"timestamp":"2024-01-01T12:00:00Z"}`
	if string(body) != want {
		t.Errorf("ToJSON() = %s, want %s", body, want)
	}
}

func TestNewExpenseEvent(t *testing.T) {
	event := NewExpenseEvent(ActionCreated, 3)

	if event.ID != 3 || event.Action != ActionCreated {
		t.Errorf("NewExpenseEvent() = %+v", event)
	}
	if time.Since(event.Timestamp) > time.Second {
		t.Error("NewExpenseEvent() Timestamp should be recent")
	}
}

func TestExpenseEventFromJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "bad id", data: `{"action":"created","id":"x"}`},
		{name: "unknown action", data: `{"action":"archived","id":1}`},
		{name: "not json", data: `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExpenseEventFromJSON([]byte(tt.data)); err == nil {
				t.Error("ExpenseEventFromJSON() should fail")
			}
		})
	}
}
