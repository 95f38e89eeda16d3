package transaction

import (
	"time"

	"autoempeno-backend/internal/domain/pledge"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypePledge   Type = "pledge"
	TypePayment  Type = "payment"
	TypeRecovery Type = "recovery"
	TypeSale     Type = "sale"
	TypeWriteOff Type = "write_off"
)

func (t Type) Valid() bool {
	switch t {
	case TypePledge, TypePayment, TypeRecovery, TypeSale, TypeWriteOff:
		return true
	}
	return false
}

// Transaction is an append-only trail entry. Rows are never updated.
type Transaction struct {
	ID            uint64           `gorm:"primaryKey;column:id" json:"-"`
	TransactionID string           `gorm:"column:transaction_id;type:char(32);uniqueIndex;not null" json:"transaction_id"`
	Type          Type             `gorm:"column:type;size:16;index;not null" json:"type"`
	AssetID       string           `gorm:"column:asset_id;type:char(32);index;not null" json:"asset_id"`
	AssetKind     pledge.AssetKind `gorm:"column:asset_kind;size:16;not null" json:"asset_kind"`
	PledgeID      string           `gorm:"column:pledge_id;size:32;index" json:"pledge_id,omitempty"`
	Amount        decimal.Decimal  `gorm:"column:amount;type:decimal(15,2);not null" json:"amount"`
	Interest      decimal.Decimal  `gorm:"column:interest;type:decimal(15,2);not null" json:"interest"`
	Outstanding   decimal.Decimal  `gorm:"column:outstanding_after;type:decimal(15,2);not null" json:"outstanding_after"`
	Overpayment   decimal.Decimal  `gorm:"column:overpayment;type:decimal(15,2);not null" json:"overpayment"`
	Profit        decimal.Decimal  `gorm:"column:profit;type:decimal(15,2);not null" json:"profit"`
	Client        pledge.Client    `gorm:"embedded" json:"client"`
	UserID        string           `gorm:"column:user_id;size:64;not null" json:"user_id"`
	LocationID    uint64           `gorm:"column:location_id;index" json:"location_id"`
	Notes         string           `gorm:"column:notes;size:500" json:"notes,omitempty"`
	OccurredAt    time.Time        `gorm:"column:occurred_at;index;not null" json:"occurred_at"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }

// Filter narrows List. From and To bound OccurredAt inclusively.
type Filter struct {
	Types    []Type
	AssetID  string
	PledgeID string
	From     *time.Time
	To       *time.Time
	Limit    int
}

// Stat aggregates one transaction type.
type Stat struct {
	Type   Type            `json:"type"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
	Profit decimal.Decimal `json:"profit"`
}
