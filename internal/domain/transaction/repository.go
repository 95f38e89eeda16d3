package transaction

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	List(ctx context.Context, f Filter) ([]Transaction, error)
	Stats(ctx context.Context, from, to *time.Time) ([]Stat, error)
}
