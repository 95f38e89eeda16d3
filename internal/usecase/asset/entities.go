package asset

import (
	"time"

	"autoempeno-backend/internal/domain/pledge"

	"github.com/shopspring/decimal"
)

type RegisterAssetInput struct {
	Kind          pledge.AssetKind
	Description   string
	Brand         string
	Model         string
	Year          int
	Plate         string
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	LocationID    uint64
}

type SellInput struct {
	AssetID string
	Price   decimal.Decimal
	Client  pledge.Client
	Notes   string
}

type AssetDTO struct {
	AssetID       string           `json:"asset_id"`
	Kind          pledge.AssetKind `json:"kind"`
	Description   string           `json:"description"`
	Brand         string           `json:"brand,omitempty"`
	Model         string           `json:"model,omitempty"`
	Year          int              `json:"year,omitempty"`
	Plate         string           `json:"plate,omitempty"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	SalePrice     decimal.Decimal  `json:"sale_price"`
	LocationID    uint64           `json:"location_id"`
	State         pledge.State     `json:"state"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type SaleResult struct {
	AssetID        string          `json:"asset_id"`
	TransactionID  string          `json:"transaction_id"`
	Price          decimal.Decimal `json:"price"`
	Profit         decimal.Decimal `json:"profit"`
	ClosedPledgeID string          `json:"closed_pledge_id,omitempty"`
	SoldAt         time.Time       `json:"sold_at"`
}
