package storage

import "flashArb/internal/model"

// OpportunitySink consumes watch-mode opportunity evaluations.
type OpportunitySink interface {
	PutOpportunityBatch(opps []model.Opportunity) error
}

// SettlementSink consumes settlement attempt records.
type SettlementSink interface {
	PutSettlement(rec model.SettlementRecord) error
}
