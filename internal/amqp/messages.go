package amqp

import (
	"encoding/json"
	"time"
)

// Goal event kinds carried on the queue.
const (
	EventGoalCompleted = "goal_completed"
)

// GoalEvent is the message published when a goal crosses its target. The
// worker turns it into the one-time celebratory chat notification; it fires
// on the not-completed to completed transition only.
type GoalEvent struct {
	Kind         string    `json:"kind"`
	GoalID       string    `json:"goal_id"`
	Title        string    `json:"title"`
	Icon         string    `json:"icon"`
	BalanceCents int64     `json:"balance_cents"`
	TargetCents  int64     `json:"target_cents"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewGoalCompletedEvent builds a completion event for the given goal state.
func NewGoalCompletedEvent(goalID, title, icon string, balanceCents, targetCents int64) *GoalEvent {
	return &GoalEvent{
		Kind:         EventGoalCompleted,
		GoalID:       goalID,
		Title:        title,
		Icon:         icon,
		BalanceCents: balanceCents,
		TargetCents:  targetCents,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *GoalEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// GoalEventFromJSON creates an event from JSON bytes
func GoalEventFromJSON(data []byte) (*GoalEvent, error) {
	var ev GoalEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
