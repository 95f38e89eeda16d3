package pledgemock

import (
	domain "autoempeno-backend/internal/domain/pledge"
	"context"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                 func(ctx context.Context, p *domain.Pledge) error
	GetByPledgeIDFn          func(ctx context.Context, pledgeID string) (*domain.Pledge, error)
	GetByPledgeIDForUpdateFn func(ctx context.Context, pledgeID string) (*domain.Pledge, error)
	GetActiveByAssetIDFn     func(ctx context.Context, assetID string) (*domain.Pledge, error)
	ListByStateFn            func(ctx context.Context, state domain.State, kind domain.AssetKind) ([]domain.Pledge, error)
	SaveFn                   func(ctx context.Context, p *domain.Pledge) error
}

func (m *Repo) Create(ctx context.Context, p *domain.Pledge) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByPledgeID(ctx context.Context, pledgeID string) (*domain.Pledge, error) {
	if m.GetByPledgeIDFn != nil {
		return m.GetByPledgeIDFn(ctx, pledgeID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByPledgeIDForUpdate(ctx context.Context, pledgeID string) (*domain.Pledge, error) {
	if m.GetByPledgeIDForUpdateFn != nil {
		return m.GetByPledgeIDForUpdateFn(ctx, pledgeID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetActiveByAssetID(ctx context.Context, assetID string) (*domain.Pledge, error) {
	if m.GetActiveByAssetIDFn != nil {
		return m.GetActiveByAssetIDFn(ctx, assetID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByState(ctx context.Context, state domain.State, kind domain.AssetKind) ([]domain.Pledge, error) {
	if m.ListByStateFn != nil {
		return m.ListByStateFn(ctx, state, kind)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, p *domain.Pledge) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}
