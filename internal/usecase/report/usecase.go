package report

import (
	"context"
	"time"

	"autoempeno-backend/internal/domain/transaction"

	"github.com/shopspring/decimal"
)

// Stats summarises the transaction trail over a window.
type Stats struct {
	From        *time.Time         `json:"from,omitempty"`
	To          *time.Time         `json:"to,omitempty"`
	ByType      []transaction.Stat `json:"by_type"`
	Count       int64              `json:"count"`
	PledgedOut  decimal.Decimal    `json:"pledged_out"`
	CollectedIn decimal.Decimal    `json:"collected_in"`
	SalesIn     decimal.Decimal    `json:"sales_in"`
	Profit      decimal.Decimal    `json:"profit"`
}

const defaultLimit = 100

type Usecase struct{ txs transaction.Repository }

func NewUsecase(txs transaction.Repository) *Usecase { return &Usecase{txs: txs} }

func (u *Usecase) List(ctx context.Context, f transaction.Filter) ([]transaction.Transaction, error) {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	return u.txs.List(ctx, f)
}

func (u *Usecase) Stats(ctx context.Context, from, to *time.Time) (*Stats, error) {
	rows, err := u.txs.Stats(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := &Stats{
		From: from, To: to, ByType: rows,
		PledgedOut: decimal.Zero, CollectedIn: decimal.Zero, SalesIn: decimal.Zero, Profit: decimal.Zero,
	}
	for _, r := range rows {
		out.Count += r.Count
		out.Profit = out.Profit.Add(r.Profit)
		switch r.Type {
		case transaction.TypePledge:
			out.PledgedOut = out.PledgedOut.Add(r.Amount)
		case transaction.TypePayment, transaction.TypeRecovery:
			out.CollectedIn = out.CollectedIn.Add(r.Amount)
		case transaction.TypeSale:
			out.SalesIn = out.SalesIn.Add(r.Amount)
		}
	}
	return out, nil
}
