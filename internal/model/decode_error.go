package model

// DecodeError records an event that could not be decoded.
type DecodeError struct {
	Version    uint64 `json:"version"`
	TxHash     string `json:"tx_hash"`
	EventIndex int    `json:"event_index"`
	EventType  string `json:"event_type"`
	Error      string `json:"error"`
}
