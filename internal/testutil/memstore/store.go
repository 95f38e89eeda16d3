// Package memstore is an in-memory implementation of the repositories and
// the unit of work. A unit of work holds the store lock for its whole run
// and works on a copy that is swapped in on success, so a failed callback
// leaves nothing behind.
package memstore

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"autoempeno-backend/internal/domain/asset"
	"autoempeno-backend/internal/domain/pledge"
	"autoempeno-backend/internal/domain/transaction"
	"autoempeno-backend/internal/domain/uow"

	"github.com/shopspring/decimal"
)

var _ uow.UnitOfWork = (*Store)(nil)

type state struct {
	assets  map[string]asset.Asset
	pledges map[string]pledge.Pledge
	txs     []transaction.Transaction
}

func (s *state) clone() *state {
	out := &state{
		assets:  make(map[string]asset.Asset, len(s.assets)),
		pledges: make(map[string]pledge.Pledge, len(s.pledges)),
		txs:     append([]transaction.Transaction(nil), s.txs...),
	}
	for k, v := range s.assets {
		out.assets[k] = v
	}
	for k, v := range s.pledges {
		out.pledges[k] = v
	}
	return out
}

type Store struct {
	mu   sync.Mutex
	data *state
	seq  atomic.Uint64
}

func New() *Store {
	return &Store{data: &state{
		assets:  map[string]asset.Asset{},
		pledges: map[string]pledge.Pledge{},
	}}
}

// Repos returns repositories that lock the store per call.
func (s *Store) Repos() uow.Repos { return s.bind(nil) }

func (s *Store) bind(work *state) uow.Repos {
	v := view{s: s, work: work}
	return uow.Repos{
		Assets:       assetRepo{v},
		Pledges:      pledgeRepo{v},
		Transactions: txRepo{v},
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(s.bind(work)); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) WithinPledgeTx(ctx context.Context, pledgeID string, fn func(r uow.Repos, p *pledge.Pledge) error) error {
	return s.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Pledges.GetByPledgeIDForUpdate(ctx, pledgeID)
		if err != nil {
			return err
		}
		return fn(r, p)
	})
}

func (s *Store) WithinAssetTx(ctx context.Context, assetID string, fn func(r uow.Repos, a *asset.Asset) error) error {
	return s.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Assets.GetByAssetIDForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}

type view struct {
	s    *Store
	work *state // nil outside a unit of work
}

func (v view) do(fn func(st *state) error) error {
	if v.work != nil {
		return fn(v.work)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.data)
}

// ---- assets ----

type assetRepo struct{ view }

func (r assetRepo) Create(_ context.Context, a *asset.Asset) error {
	return r.do(func(st *state) error {
		if _, ok := st.assets[a.AssetID]; ok {
			return asset.ErrDuplicate
		}
		if a.Plate != nil {
			for _, other := range st.assets {
				if other.Plate != nil && *other.Plate == *a.Plate {
					return asset.ErrDuplicate
				}
			}
		}
		now := time.Now().UTC()
		a.ID = r.s.seq.Add(1)
		if a.Version == 0 {
			a.Version = 1
		}
		a.CreatedAt, a.UpdatedAt = now, now
		st.assets[a.AssetID] = *a
		return nil
	})
}

func (r assetRepo) GetByAssetID(_ context.Context, assetID string) (*asset.Asset, error) {
	var out *asset.Asset
	err := r.do(func(st *state) error {
		a, ok := st.assets[assetID]
		if !ok {
			return asset.ErrNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r assetRepo) GetByAssetIDForUpdate(ctx context.Context, assetID string) (*asset.Asset, error) {
	return r.GetByAssetID(ctx, assetID)
}

func (r assetRepo) List(_ context.Context, f asset.Filter) ([]asset.Asset, error) {
	var out []asset.Asset
	err := r.do(func(st *state) error {
		for _, a := range st.assets {
			if (f.Kind == "" || a.Kind == f.Kind) &&
				(f.State == "" || a.State == f.State) &&
				(f.LocationID == 0 || a.LocationID == f.LocationID) {
				out = append(out, a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r assetRepo) Save(_ context.Context, a *asset.Asset) error {
	return r.do(func(st *state) error {
		cur, ok := st.assets[a.AssetID]
		if !ok {
			return asset.ErrNotFound
		}
		if cur.Version != a.Version {
			return pledge.ErrConcurrentModification
		}
		a.Version++
		a.UpdatedAt = time.Now().UTC()
		st.assets[a.AssetID] = *a
		return nil
	})
}

// ---- pledges ----

type pledgeRepo struct{ view }

func (r pledgeRepo) Create(_ context.Context, p *pledge.Pledge) error {
	return r.do(func(st *state) error {
		now := time.Now().UTC()
		p.ID = r.s.seq.Add(1)
		if p.Version == 0 {
			p.Version = 1
		}
		p.CreatedAt, p.UpdatedAt = now, now
		st.pledges[p.PledgeID] = *p
		return nil
	})
}

func (r pledgeRepo) GetByPledgeID(_ context.Context, pledgeID string) (*pledge.Pledge, error) {
	var out *pledge.Pledge
	err := r.do(func(st *state) error {
		p, ok := st.pledges[pledgeID]
		if !ok {
			return pledge.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r pledgeRepo) GetByPledgeIDForUpdate(ctx context.Context, pledgeID string) (*pledge.Pledge, error) {
	return r.GetByPledgeID(ctx, pledgeID)
}

func (r pledgeRepo) GetActiveByAssetID(_ context.Context, assetID string) (*pledge.Pledge, error) {
	var out *pledge.Pledge
	err := r.do(func(st *state) error {
		for _, p := range st.pledges {
			if p.AssetID == assetID && p.State == pledge.StatePawned {
				out = &p
				return nil
			}
		}
		return pledge.ErrNotFound
	})
	return out, err
}

func (r pledgeRepo) ListByState(_ context.Context, s pledge.State, kind pledge.AssetKind) ([]pledge.Pledge, error) {
	var out []pledge.Pledge
	err := r.do(func(st *state) error {
		for _, p := range st.pledges {
			if p.State == s && (kind == "" || p.AssetKind == kind) {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PledgeDate.Equal(out[j].PledgeDate) {
			return out[i].PledgeDate.Before(out[j].PledgeDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r pledgeRepo) Save(_ context.Context, p *pledge.Pledge) error {
	return r.do(func(st *state) error {
		cur, ok := st.pledges[p.PledgeID]
		if !ok {
			return pledge.ErrNotFound
		}
		if cur.Version != p.Version {
			return pledge.ErrConcurrentModification
		}
		p.Version++
		p.UpdatedAt = time.Now().UTC()
		st.pledges[p.PledgeID] = *p
		return nil
	})
}

// ---- transactions ----

type txRepo struct{ view }

func (r txRepo) Create(_ context.Context, t *transaction.Transaction) error {
	return r.do(func(st *state) error {
		t.ID = r.s.seq.Add(1)
		t.CreatedAt = time.Now().UTC()
		st.txs = append(st.txs, *t)
		return nil
	})
}

func (r txRepo) List(_ context.Context, f transaction.Filter) ([]transaction.Transaction, error) {
	var out []transaction.Transaction
	err := r.do(func(st *state) error {
		for _, t := range st.txs {
			if matches(t, f) {
				out = append(out, t)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, err
}

func (r txRepo) Stats(_ context.Context, from, to *time.Time) ([]transaction.Stat, error) {
	byType := map[transaction.Type]*transaction.Stat{}
	err := r.do(func(st *state) error {
		for _, t := range st.txs {
			if !matches(t, transaction.Filter{From: from, To: to}) {
				continue
			}
			s, ok := byType[t.Type]
			if !ok {
				s = &transaction.Stat{Type: t.Type, Amount: decimal.Zero, Profit: decimal.Zero}
				byType[t.Type] = s
			}
			s.Count++
			s.Amount = s.Amount.Add(t.Amount)
			s.Profit = s.Profit.Add(t.Profit)
		}
		return nil
	})
	out := make([]transaction.Stat, 0, len(byType))
	for _, s := range byType {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, err
}

func matches(t transaction.Transaction, f transaction.Filter) bool {
	if len(f.Types) > 0 {
		found := false
		for _, typ := range f.Types {
			if t.Type == typ {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.AssetID != "" && t.AssetID != f.AssetID {
		return false
	}
	if f.PledgeID != "" && t.PledgeID != f.PledgeID {
		return false
	}
	if f.From != nil && t.OccurredAt.Before(*f.From) {
		return false
	}
	if f.To != nil && t.OccurredAt.After(*f.To) {
		return false
	}
	return true
}
