package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionProcessed is emitted once for every record applied by the engine,
// whether its effect was applied or skipped.
type TransactionProcessed struct {
	RunID         string          `json:"run_id"`
	ClientID      uint16          `json:"client_id"`
	TransactionID uint32          `json:"transaction_id"`
	Type          string          `json:"type"`
	Outcome       string          `json:"outcome"`
	Status        string          `json:"status"`
	Available     decimal.Decimal `json:"available"`
	Held          decimal.Decimal `json:"held"`
	Locked        bool            `json:"locked"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
