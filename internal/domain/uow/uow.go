package uow

import (
	"autoempeno-backend/internal/domain/asset"
	"autoempeno-backend/internal/domain/pledge"
	"autoempeno-backend/internal/domain/transaction"
	"context"
)

// domain/uow/uow.go
type Repos struct {
	Assets       asset.Repository
	Pledges      pledge.Repository
	Transactions transaction.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the pledge row first, then pass it in
	WithinPledgeTx(ctx context.Context, pledgeID string, fn func(r Repos, p *pledge.Pledge) error) error
	// lock the asset row first, then pass it in
	WithinAssetTx(ctx context.Context, assetID string, fn func(r Repos, a *asset.Asset) error) error
}
