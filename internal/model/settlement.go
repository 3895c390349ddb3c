package model

// Attempt status values.
const (
	StatusSettled = "settled"
	StatusAborted = "aborted"
)

// SettlementRecord is one settlement attempt for storage. Amounts are
// decimal strings in the asset's smallest unit.
type SettlementRecord struct {
	Pair       string `json:"pair"`
	Initiator  string `json:"initiator"`
	Direction  string `json:"direction"`
	Borrowed   string `json:"borrowed"`
	Received   string `json:"received,omitempty"`
	Required   string `json:"required,omitempty"`
	Surplus    string `json:"surplus,omitempty"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	ObservedAt string `json:"observed_at"`
}
