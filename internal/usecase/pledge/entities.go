package pledge

import (
	"time"

	domain "autoempeno-backend/internal/domain/pledge"

	"github.com/shopspring/decimal"
)

type CreatePledgeInput struct {
	AssetID     string
	Principal   decimal.Decimal
	MonthlyRate decimal.Decimal
	Client      domain.Client
	LocationID  uint64 // defaults to the asset's location
	Notes       string
}

type PledgeDTO struct {
	PledgeID             string           `json:"pledge_id"`
	AssetID              string           `json:"asset_id"`
	AssetKind            domain.AssetKind `json:"asset_kind"`
	Principal            decimal.Decimal  `json:"principal"`
	OutstandingPrincipal decimal.Decimal  `json:"outstanding_principal"`
	MonthlyRate          decimal.Decimal  `json:"monthly_rate"`
	PledgeDate           time.Time        `json:"pledge_date"`
	Client               domain.Client    `json:"client"`
	LocationID           uint64           `json:"location_id"`
	State                domain.State     `json:"state"`
	TotalPaid            decimal.Decimal  `json:"total_paid"`
	LastPaymentAt        *time.Time       `json:"last_payment_at,omitempty"`
	ClosedAt             *time.Time       `json:"closed_at,omitempty"`
	CreatedBy            string           `json:"created_by"`
	CreatedAt            time.Time        `json:"created_at"`
}

type ApplyPaymentInput struct {
	PledgeID string
	Amount   decimal.Decimal
	AsOf     *time.Time // defaults to now
	Notes    string
}

type PaymentResult struct {
	PledgeID        string          `json:"pledge_id"`
	TransactionID   string          `json:"transaction_id"`
	AsOf            time.Time       `json:"as_of"`
	Amount          decimal.Decimal `json:"amount"`
	AccruedInterest decimal.Decimal `json:"accrued_interest"`
	PayoffBefore    decimal.Decimal `json:"payoff_before"`
	NewOutstanding  decimal.Decimal `json:"new_outstanding"`
	Overpayment     decimal.Decimal `json:"overpayment"`
	NewState        domain.State    `json:"new_state"`
	Recovered       bool            `json:"recovered"`
	Message         string          `json:"message"`
}

const (
	MessageRecovered = "fully recovered"
	MessagePartial   = "partial payment applied"
)

type SnapshotDTO struct {
	PledgeID             string          `json:"pledge_id"`
	State                domain.State    `json:"state"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	MonthlyRate          decimal.Decimal `json:"monthly_rate"`
	PledgeDate           time.Time       `json:"pledge_date"`
	AsOf                 time.Time       `json:"as_of"`
	domain.Accrual
}

// ActivePledge is a pledge with its payoff evaluated at the time of listing.
type ActivePledge struct {
	PledgeDTO
	domain.Accrual
}
