package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action names the mutation an event reports.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ExpenseEvent is published after a create, update or delete commits.
// Consumers fetch the current record by ID.
type ExpenseEvent struct {
	Action    Action    `json:"action"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEvent creates an event stamped with the current UTC time.
func NewExpenseEvent(action Action, id int64) ExpenseEvent {
	return ExpenseEvent{
		Action:    action,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON decodes an event and checks its action.
func ExpenseEventFromJSON(data []byte) (ExpenseEvent, error) {
	var e ExpenseEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return ExpenseEvent{}, err
	}
	switch e.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return ExpenseEvent{}, fmt.Errorf("unknown action %q", e.Action)
	}
	return e, nil
}
