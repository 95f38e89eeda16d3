package mysql

import (
	"testing"
	"time"

	"autoempeno-backend/internal/domain/asset"
	"autoempeno-backend/internal/domain/pledge"
	"autoempeno-backend/internal/domain/transaction"
	"autoempeno-backend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB creates an in-memory sqlite DB. The domain models avoid ENUM
// columns so they migrate on sqlite as-is.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&asset.Asset{}, &pledge.Pledge{}, &transaction.Transaction{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func makeAsset(state pledge.State) *asset.Asset {
	return &asset.Asset{
		AssetID:       id.NewID32(),
		Kind:          pledge.KindVehicle,
		Description:   "Nissan Versa 2019",
		Brand:         "Nissan",
		Model:         "Versa",
		Year:          2019,
		PurchasePrice: dec("150000"),
		SalePrice:     dec("185000"),
		LocationID:    1,
		State:         state,
	}
}

func makePledge(assetID string, pledgedAt time.Time) *pledge.Pledge {
	return &pledge.Pledge{
		PledgeID:             id.NewID32(),
		AssetID:              assetID,
		AssetKind:            pledge.KindVehicle,
		Principal:            dec("1000000"),
		OutstandingPrincipal: dec("1000000"),
		MonthlyRate:          dec("3"),
		PledgeDate:           pledgedAt.UTC(),
		Client:               pledge.Client{Name: "Juan Perez", Phone: "5551234567"},
		LocationID:           1,
		State:                pledge.StatePawned,
		TotalPaid:            decimal.Zero,
		CreatedBy:            "u-1",
	}
}
