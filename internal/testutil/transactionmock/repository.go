package transactionmock

import (
	domain "autoempeno-backend/internal/domain/transaction"
	"context"
	"time"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// With CreateFn unset, created rows are kept in Created.
type Repo struct {
	CreateFn func(ctx context.Context, t *domain.Transaction) error
	ListFn   func(ctx context.Context, f domain.Filter) ([]domain.Transaction, error)
	StatsFn  func(ctx context.Context, from, to *time.Time) ([]domain.Stat, error)

	Created []domain.Transaction
}

func (m *Repo) Create(ctx context.Context, t *domain.Transaction) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	m.Created = append(m.Created, *t)
	return nil
}

func (m *Repo) List(ctx context.Context, f domain.Filter) ([]domain.Transaction, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) Stats(ctx context.Context, from, to *time.Time) ([]domain.Stat, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, from, to)
	}
	return nil, nil
}
