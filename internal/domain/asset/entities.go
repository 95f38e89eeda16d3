package asset

import (
	"time"

	"autoempeno-backend/internal/domain/pledge"

	"github.com/shopspring/decimal"
)

// Asset is a vehicle or article held by the dealership.
type Asset struct {
	ID            uint64           `gorm:"primaryKey;column:id" json:"-"`
	AssetID       string           `gorm:"column:asset_id;type:char(32);uniqueIndex;not null" json:"asset_id"`
	Kind          pledge.AssetKind `gorm:"column:kind;size:16;index;not null" json:"kind"`
	Description   string           `gorm:"column:description;size:255;not null" json:"description"`
	Brand         string           `gorm:"column:brand;size:50" json:"brand,omitempty"`
	Model         string           `gorm:"column:model;size:50" json:"model,omitempty"`
	Year          int              `gorm:"column:year" json:"year,omitempty"`
	Plate         *string          `gorm:"column:plate;size:20;uniqueIndex" json:"plate,omitempty"`
	PurchasePrice decimal.Decimal  `gorm:"column:purchase_price;type:decimal(15,2);not null" json:"purchase_price"`
	SalePrice     decimal.Decimal  `gorm:"column:sale_price;type:decimal(15,2);not null" json:"sale_price"`
	LocationID    uint64           `gorm:"column:location_id;index" json:"location_id"`
	State         pledge.State     `gorm:"column:state;size:16;index;not null" json:"state"`
	Version       int64            `gorm:"column:version;not null" json:"-"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Asset) TableName() string { return "assets" }

// Filter narrows List; zero fields match everything.
type Filter struct {
	Kind       pledge.AssetKind
	State      pledge.State
	LocationID uint64
}
