package model

import (
	"encoding/json"
	"time"
)

// Transaction is the normalized representation of a ledger transaction.
type Transaction struct {
	Version   uint64           `json:"version"`
	Hash      string           `json:"hash"`
	Sender    string           `json:"sender,omitempty"`
	Timestamp uint64           `json:"timestamp"`
	Success   bool             `json:"success"`
	Payload   *FunctionPayload `json:"payload,omitempty"`
	Events    []Event          `json:"events,omitempty"`
}

// FunctionPayload is an entry function invocation.
type FunctionPayload struct {
	Function      string            `json:"function"`
	TypeArguments []string          `json:"type_arguments,omitempty"`
	Arguments     []json.RawMessage `json:"arguments,omitempty"`
}

// Event is an emitted event with its type tag and raw payload.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Time converts the ledger timestamp (microseconds) to wall-clock time.
func (t Transaction) Time() time.Time {
	return time.UnixMicro(int64(t.Timestamp)).UTC()
}

// FunctionName returns the invoked entry function, or "" when there is none.
func (t Transaction) FunctionName() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload.Function
}
