package mysql

import (
	txDomain "autoempeno-backend/internal/domain/transaction"
	"context"
	"time"

	"gorm.io/gorm"
)

type TransactionRepository struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *txDomain.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) List(ctx context.Context, f txDomain.Filter) ([]txDomain.Transaction, error) {
	q := r.db.WithContext(ctx)
	if len(f.Types) > 0 {
		q = q.Where("type IN ?", f.Types)
	}
	if f.AssetID != "" {
		q = q.Where("asset_id = ?", f.AssetID)
	}
	if f.PledgeID != "" {
		q = q.Where("pledge_id = ?", f.PledgeID)
	}
	q = between(q, f.From, f.To)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []txDomain.Transaction
	err := q.Order("occurred_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *TransactionRepository) Stats(ctx context.Context, from, to *time.Time) ([]txDomain.Stat, error) {
	var out []txDomain.Stat
	err := between(r.db.WithContext(ctx).Model(&txDomain.Transaction{}), from, to).
		Select("type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount, COALESCE(SUM(profit), 0) AS profit").
		Group("type").
		Order("type").
		Scan(&out).Error
	return out, err
}

func between(q *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		q = q.Where("occurred_at >= ?", from.UTC())
	}
	if to != nil {
		q = q.Where("occurred_at <= ?", to.UTC())
	}
	return q
}
