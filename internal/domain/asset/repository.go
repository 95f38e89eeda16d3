package asset

import "context"

type Repository interface {
	Create(ctx context.Context, a *Asset) error
	GetByAssetID(ctx context.Context, assetID string) (*Asset, error)
	GetByAssetIDForUpdate(ctx context.Context, assetID string) (*Asset, error)
	List(ctx context.Context, f Filter) ([]Asset, error)
	// Save is a compare-and-swap on Version.
	Save(ctx context.Context, a *Asset) error
}
