package model

// Opportunity is one watch-mode evaluation of a hypothetical borrow: the
// probe amount borrowed from the primary pair, sold on the secondary pair,
// priced against the primary pair's repayment requirement. Amounts are
// decimal strings.
type Opportunity struct {
	ChainID       uint64 `json:"chain_id"`
	BlockNumber   uint64 `json:"block_number"`
	PrimaryPair   string `json:"primary_pair"`
	SecondaryPair string `json:"secondary_pair"`
	ProbeAmount   string `json:"probe_amount"`
	Received      string `json:"received"`
	Required      string `json:"required"`
	Surplus       string `json:"surplus"`
	Profitable    bool   `json:"profitable"`
	ObservedAt    string `json:"observed_at"`
}
