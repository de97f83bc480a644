package records

import (
	"encoding/json"
	"time"
)

// Trace describes one recorded unit of activity from the tracing
// backend, attributed to a user and timestamped. Traces are immutable
// once fetched. Cost, Model, Input, Output and SessionID may be empty
// depending on what the backend recorded.
type Trace struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Cost      float64   `json:"cost,omitempty"`
	Model     string    `json:"model,omitempty"`
	Input     string    `json:"input,omitempty"`
	Output    string    `json:"output,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
}

// TraceFromJSON converts a JSON representation of a Trace to
// a Trace object.
func TraceFromJSON(jsonData []byte) (*Trace, error) {
	trace := &Trace{}
	err := json.Unmarshal(jsonData, trace)
	if err != nil {
		return nil, err
	}
	return trace, nil
}

// ToJSON converts a Trace to its JSON representation.
func (trace *Trace) ToJSON() ([]byte, error) {
	return json.Marshal(trace)
}

// DisplayName returns the trace name, or "Unnamed" when the backend
// recorded no name.
func (trace *Trace) DisplayName() string {
	if trace.Name == "" {
		return "Unnamed"
	}
	return trace.Name
}
