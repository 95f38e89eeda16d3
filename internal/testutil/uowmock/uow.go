package uowmock

import (
	"context"
	"errors"

	"autoempeno-backend/internal/domain/asset"
	"autoempeno-backend/internal/domain/pledge"
	"autoempeno-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn       func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinPledgeTxFn func(ctx context.Context, pledgeID string, fn func(r uow.Repos, p *pledge.Pledge) error) error
	WithinAssetTxFn  func(ctx context.Context, assetID string, fn func(r uow.Repos, a *asset.Asset) error) error
}

func New() *UoW { return &UoW{} }

// Passthrough returns a UoW that runs every callback directly against repos,
// loading the locked row through them first.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) },
		WithinPledgeTxFn: func(ctx context.Context, pledgeID string, fn func(uow.Repos, *pledge.Pledge) error) error {
			p, err := repos.Pledges.GetByPledgeIDForUpdate(ctx, pledgeID)
			if err != nil {
				return err
			}
			return fn(repos, p)
		},
		WithinAssetTxFn: func(ctx context.Context, assetID string, fn func(uow.Repos, *asset.Asset) error) error {
			a, err := repos.Assets.GetByAssetIDForUpdate(ctx, assetID)
			if err != nil {
				return err
			}
			return fn(repos, a)
		},
	}
}

func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinPledgeTx(ctx context.Context, pledgeID string, fn func(r uow.Repos, p *pledge.Pledge) error) error {
	if m.WithinPledgeTxFn != nil {
		return m.WithinPledgeTxFn(ctx, pledgeID, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinAssetTx(ctx context.Context, assetID string, fn func(r uow.Repos, a *asset.Asset) error) error {
	if m.WithinAssetTxFn != nil {
		return m.WithinAssetTxFn(ctx, assetID, fn)
	}
	return errUnimplemented
}
