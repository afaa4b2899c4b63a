package chain

import (
	"encoding/json"
	"fmt"
	"strconv"

	"curveScope/internal/model"
)

// wireTransaction mirrors the node's JSON; u64 fields arrive as strings.
type wireTransaction struct {
	Type      string       `json:"type"`
	Version   string       `json:"version"`
	Hash      string       `json:"hash"`
	Sender    string       `json:"sender"`
	Timestamp string       `json:"timestamp"`
	Success   bool         `json:"success"`
	Payload   *wirePayload `json:"payload"`
	Events    []wireEvent  `json:"events"`
}

type wirePayload struct {
	Type          string            `json:"type"`
	Function      string            `json:"function"`
	TypeArguments []string          `json:"type_arguments"`
	Arguments     []json.RawMessage `json:"arguments"`
}

type wireEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (w wireTransaction) toModel() (model.Transaction, error) {
	version, err := parseU64(w.Version)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s version: %w", w.Hash, err)
	}
	timestamp, err := parseU64(w.Timestamp)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s timestamp: %w", w.Hash, err)
	}

	tx := model.Transaction{
		Version:   version,
		Hash:      w.Hash,
		Sender:    w.Sender,
		Timestamp: timestamp,
		Success:   w.Success,
	}
	if w.Payload != nil && w.Payload.Function != "" {
		tx.Payload = &model.FunctionPayload{
			Function:      w.Payload.Function,
			TypeArguments: w.Payload.TypeArguments,
			Arguments:     w.Payload.Arguments,
		}
	}
	if len(w.Events) > 0 {
		tx.Events = make([]model.Event, 0, len(w.Events))
		for _, ev := range w.Events {
			tx.Events = append(tx.Events, model.Event{Type: ev.Type, Data: ev.Data})
		}
	}
	return tx, nil
}

// parseU64 treats a missing field as zero; genesis and pending records omit some.
func parseU64(value string) (uint64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseUint(value, 10, 64)
}
