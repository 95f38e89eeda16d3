package pledge

import (
	"time"

	"github.com/shopspring/decimal"
)

// State is shared by assets and pledges. A pledge only ever holds
// pawned, recovered or sold.
type State string

const (
	StateAvailable  State = "available"
	StatePawned     State = "pawned"
	StateSold       State = "sold"
	StateRecovered  State = "recovered"
	StateWrittenOff State = "written_off"
)

func (s State) Valid() bool {
	switch s {
	case StateAvailable, StatePawned, StateSold, StateRecovered, StateWrittenOff:
		return true
	}
	return false
}

type AssetKind string

const (
	KindVehicle AssetKind = "vehicle"
	KindArticle AssetKind = "article"
)

func (k AssetKind) Valid() bool { return k == KindVehicle || k == KindArticle }

// Client is the person the money was advanced to.
type Client struct {
	Name     string `gorm:"column:client_name;size:100;not null" json:"name"`
	Phone    string `gorm:"column:client_phone;size:20" json:"phone"`
	Document string `gorm:"column:client_document;size:20" json:"document"`
}

// Pledge is one loan against one asset. A closed pledge is never reopened;
// pledging the asset again creates a new row.
//
// PledgeDate is the accrual base. It is moved to the payment date on every
// partial payment, so interest only ever accrues on the current balance.
type Pledge struct {
	ID                   uint64          `gorm:"primaryKey;column:id" json:"-"`
	PledgeID             string          `gorm:"column:pledge_id;type:char(32);uniqueIndex;not null" json:"pledge_id"`
	AssetID              string          `gorm:"column:asset_id;type:char(32);index;not null" json:"asset_id"`
	AssetKind            AssetKind       `gorm:"column:asset_kind;size:16;not null" json:"asset_kind"`
	Principal            decimal.Decimal `gorm:"column:principal;type:decimal(15,2);not null" json:"principal"`
	OutstandingPrincipal decimal.Decimal `gorm:"column:outstanding_principal;type:decimal(15,2);not null" json:"outstanding_principal"`
	MonthlyRate          decimal.Decimal `gorm:"column:monthly_rate;type:decimal(5,2);not null" json:"monthly_rate"`
	PledgeDate           time.Time       `gorm:"column:pledge_date;not null" json:"pledge_date"`
	Client               Client          `gorm:"embedded" json:"client"`
	LocationID           uint64          `gorm:"column:location_id;index" json:"location_id"`
	State                State           `gorm:"column:state;size:16;index;not null" json:"state"`
	TotalPaid            decimal.Decimal `gorm:"column:total_paid;type:decimal(15,2);not null" json:"total_paid"`
	LastPaymentAt        *time.Time      `gorm:"column:last_payment_at" json:"last_payment_at,omitempty"`
	ClosedAt             *time.Time      `gorm:"column:closed_at" json:"closed_at,omitempty"`
	CreatedBy            string          `gorm:"column:created_by;size:64" json:"created_by"`
	Version              int64           `gorm:"column:version;not null" json:"-"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Pledge) TableName() string { return "pledges" }

func (p *Pledge) Active() bool { return p.State == StatePawned }

// Accrual evaluates the pledge's current balance as of asOf.
func (p *Pledge) Accrual(asOf time.Time) (Accrual, error) {
	return ComputeAccrual(p.OutstandingPrincipal, p.MonthlyRate, p.PledgeDate, asOf)
}
