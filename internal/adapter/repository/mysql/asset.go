package mysql

import (
	assetDomain "autoempeno-backend/internal/domain/asset"
	"autoempeno-backend/internal/domain/pledge"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssetRepository struct{ db *gorm.DB }

func NewAssetRepository(db *gorm.DB) *AssetRepository { return &AssetRepository{db: db} }

func (r *AssetRepository) Create(ctx context.Context, a *assetDomain.Asset) error {
	if a.Version == 0 {
		a.Version = 1
	}
	err := r.db.WithContext(ctx).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return assetDomain.ErrDuplicate
	}
	return err
}

func (r *AssetRepository) Save(ctx context.Context, a *assetDomain.Asset) error {
	loaded := a.Version
	a.Version = loaded + 1
	res := r.db.WithContext(ctx).
		Model(a).
		Where("version = ?", loaded).
		Select("*").Omit("ID", "CreatedAt").
		Updates(a)
	if res.Error != nil {
		a.Version = loaded
		return res.Error
	}
	if res.RowsAffected == 0 {
		a.Version = loaded
		return pledge.ErrConcurrentModification
	}
	return nil
}

func (r *AssetRepository) GetByAssetID(ctx context.Context, assetID string) (*assetDomain.Asset, error) {
	return r.first(r.db.WithContext(ctx).Where("asset_id = ?", assetID))
}

func (r *AssetRepository) GetByAssetIDForUpdate(ctx context.Context, assetID string) (*assetDomain.Asset, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("asset_id = ?", assetID))
}

func (r *AssetRepository) List(ctx context.Context, f assetDomain.Filter) ([]assetDomain.Asset, error) {
	q := r.db.WithContext(ctx)
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.LocationID != 0 {
		q = q.Where("location_id = ?", f.LocationID)
	}
	var out []assetDomain.Asset
	err := q.Order("id ASC").Find(&out).Error
	return out, err
}

func (r *AssetRepository) first(q *gorm.DB) (*assetDomain.Asset, error) {
	var out assetDomain.Asset
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, assetDomain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}
