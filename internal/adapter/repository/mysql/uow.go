package mysql

import (
	"autoempeno-backend/internal/domain/asset"
	"autoempeno-backend/internal/domain/pledge"
	"autoempeno-backend/internal/domain/uow"
	"context"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Assets:       &AssetRepository{db: tx},
		Pledges:      &PledgeRepository{db: tx},
		Transactions: &TransactionRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinPledgeTx(ctx context.Context, pledgeID string, fn func(r uow.Repos, p *pledge.Pledge) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the pledge row up-front to prevent races
		p, err := r.Pledges.GetByPledgeIDForUpdate(ctx, pledgeID)
		if err != nil {
			return err
		}
		return fn(r, p)
	})
}

func (u *GormUoW) WithinAssetTx(ctx context.Context, assetID string, fn func(r uow.Repos, a *asset.Asset) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		a, err := r.Assets.GetByAssetIDForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}
