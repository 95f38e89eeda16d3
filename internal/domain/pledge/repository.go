package pledge

import "context"

type Repository interface {
	Create(ctx context.Context, p *Pledge) error
	GetByPledgeID(ctx context.Context, pledgeID string) (*Pledge, error)
	// GetByPledgeIDForUpdate locks the row until the surrounding transaction ends.
	GetByPledgeIDForUpdate(ctx context.Context, pledgeID string) (*Pledge, error)
	GetActiveByAssetID(ctx context.Context, assetID string) (*Pledge, error)
	// ListByState filters by kind unless kind is empty.
	ListByState(ctx context.Context, state State, kind AssetKind) ([]Pledge, error)
	// Save is a compare-and-swap on Version; a stale copy yields ErrConcurrentModification.
	Save(ctx context.Context, p *Pledge) error
}
