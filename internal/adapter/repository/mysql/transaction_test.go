package mysql

import (
	"context"
	"testing"
	"time"

	"autoempeno-backend/internal/domain/pledge"
	"autoempeno-backend/internal/domain/transaction"
	"autoempeno-backend/pkg/id"

	"github.com/shopspring/decimal"
)

func makeTx(typ transaction.Type, pledgeID, amount, profit string, at time.Time) *transaction.Transaction {
	return &transaction.Transaction{
		TransactionID: id.NewID32(),
		Type:          typ,
		AssetID:       id.NewID32(),
		AssetKind:     pledge.KindVehicle,
		PledgeID:      pledgeID,
		Amount:        dec(amount),
		Interest:      decimal.Zero,
		Outstanding:   decimal.Zero,
		Overpayment:   decimal.Zero,
		Profit:        dec(profit),
		UserID:        "u-1",
		OccurredAt:    at.UTC(),
	}
}

func TestTransactionRepository_ListFilters(t *testing.T) {
	db := openTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	rows := []*transaction.Transaction{
		makeTx(transaction.TypePledge, "P1", "1000000", "0", base),
		makeTx(transaction.TypePayment, "P1", "500000", "0", base.AddDate(0, 0, 40)),
		makeTx(transaction.TypeRecovery, "P1", "530000", "0", base.AddDate(0, 0, 50)),
		makeTx(transaction.TypeSale, "", "185000", "35000", base.AddDate(0, 0, 60)),
	}
	for _, r := range rows {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	payments, err := repo.List(ctx, transaction.Filter{
		PledgeID: "P1",
		Types:    []transaction.Type{transaction.TypePayment, transaction.TypeRecovery},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(payments) != 2 || payments[0].Type != transaction.TypeRecovery {
		t.Fatalf("expected newest-first payment trail, got %+v", payments)
	}

	from := base.AddDate(0, 0, 45)
	recent, _ := repo.List(ctx, transaction.Filter{From: &from})
	if len(recent) != 2 {
		t.Fatalf("expected 2 rows after %v, got %d", from, len(recent))
	}

	limited, _ := repo.List(ctx, transaction.Filter{Limit: 1})
	if len(limited) != 1 || limited[0].Type != transaction.TypeSale {
		t.Fatalf("limit not applied: %+v", limited)
	}
}

func TestTransactionRepository_Stats(t *testing.T) {
	db := openTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, r := range []*transaction.Transaction{
		makeTx(transaction.TypeSale, "", "185000", "35000", now),
		makeTx(transaction.TypeSale, "", "100000", "-5000", now),
		makeTx(transaction.TypePayment, "P1", "500000", "0", now),
	} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	stats, err := repo.Stats(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	byType := map[transaction.Type]transaction.Stat{}
	for _, s := range stats {
		byType[s.Type] = s
	}
	sale := byType[transaction.TypeSale]
	if sale.Count != 2 || !sale.Amount.Equal(dec("285000")) || !sale.Profit.Equal(dec("30000")) {
		t.Fatalf("unexpected sale stat: %+v", sale)
	}
	if byType[transaction.TypePayment].Count != 1 {
		t.Fatalf("unexpected payment stat: %+v", byType[transaction.TypePayment])
	}
}
