package mysql

import (
	pledgeDomain "autoempeno-backend/internal/domain/pledge"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PledgeRepository struct{ db *gorm.DB }

func NewPledgeRepository(db *gorm.DB) *PledgeRepository { return &PledgeRepository{db: db} }

func (r *PledgeRepository) Create(ctx context.Context, p *pledgeDomain.Pledge) error {
	if p.Version == 0 {
		p.Version = 1
	}
	return r.db.WithContext(ctx).Create(p).Error
}

// Save writes every column, guarded by the version the caller loaded.
func (r *PledgeRepository) Save(ctx context.Context, p *pledgeDomain.Pledge) error {
	loaded := p.Version
	p.Version = loaded + 1
	res := r.db.WithContext(ctx).
		Model(p).
		Where("version = ?", loaded).
		Select("*").Omit("ID", "CreatedAt").
		Updates(p)
	if res.Error != nil {
		p.Version = loaded
		return res.Error
	}
	if res.RowsAffected == 0 {
		p.Version = loaded
		return pledgeDomain.ErrConcurrentModification
	}
	return nil
}

func (r *PledgeRepository) GetByPledgeID(ctx context.Context, pledgeID string) (*pledgeDomain.Pledge, error) {
	return r.first(r.db.WithContext(ctx).Where("pledge_id = ?", pledgeID))
}

func (r *PledgeRepository) GetByPledgeIDForUpdate(ctx context.Context, pledgeID string) (*pledgeDomain.Pledge, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pledge_id = ?", pledgeID))
}

func (r *PledgeRepository) GetActiveByAssetID(ctx context.Context, assetID string) (*pledgeDomain.Pledge, error) {
	return r.first(r.db.WithContext(ctx).
		Where("asset_id = ? AND state = ?", assetID, pledgeDomain.StatePawned).
		Order("id DESC"))
}

func (r *PledgeRepository) ListByState(ctx context.Context, state pledgeDomain.State, kind pledgeDomain.AssetKind) ([]pledgeDomain.Pledge, error) {
	q := r.db.WithContext(ctx).Where("state = ?", state)
	if kind != "" {
		q = q.Where("asset_kind = ?", kind)
	}
	var out []pledgeDomain.Pledge
	err := q.Order("pledge_date ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *PledgeRepository) first(q *gorm.DB) (*pledgeDomain.Pledge, error) {
	var out pledgeDomain.Pledge
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pledgeDomain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}
