package asset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "autoempeno-backend/internal/domain/asset"
	"autoempeno-backend/internal/domain/pledge"
	"autoempeno-backend/internal/domain/session"
	"autoempeno-backend/internal/domain/transaction"
	"autoempeno-backend/internal/domain/uow"
	"autoempeno-backend/pkg/clock"
	"autoempeno-backend/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Usecase struct {
	assets    domain.Repository
	uow       uow.UnitOfWork
	clock     clock.Clock
	lifecycle pledge.Lifecycle
	log       *zap.Logger
}

func NewUsecase(assets domain.Repository, tx uow.UnitOfWork, clk clock.Clock, lc pledge.Lifecycle, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{assets: assets, uow: tx, clock: clk, lifecycle: lc, log: log}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// nonNegativeCents reports whether d fits a money column.
func nonNegativeCents(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(pledge.CurrencyPlaces)) && d.LessThanOrEqual(pledge.MaxAmount)
}

func (u *Usecase) Register(ctx context.Context, actor session.Session, in RegisterAssetInput) (*AssetDTO, error) {
	switch {
	case !in.Kind.Valid():
		return nil, invalid("unknown asset kind %q", in.Kind)
	case strings.TrimSpace(in.Description) == "":
		return nil, invalid("description is required")
	case !nonNegativeCents(in.PurchasePrice):
		return nil, invalid("purchase price must be a non-negative amount up to %s", pledge.MaxAmount)
	case !nonNegativeCents(in.SalePrice):
		return nil, invalid("sale price must be a non-negative amount up to %s", pledge.MaxAmount)
	}

	a := &domain.Asset{
		AssetID:       id.NewID32(),
		Kind:          in.Kind,
		Description:   strings.TrimSpace(in.Description),
		Brand:         strings.TrimSpace(in.Brand),
		Model:         strings.TrimSpace(in.Model),
		Year:          in.Year,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		LocationID:    in.LocationID,
		State:         pledge.StateAvailable,
		Version:       1,
	}
	if plate := strings.ToUpper(strings.TrimSpace(in.Plate)); plate != "" {
		a.Plate = &plate
	}
	if err := u.assets.Create(ctx, a); err != nil {
		return nil, err
	}
	u.log.Info("asset registered",
		zap.String("asset_id", a.AssetID),
		zap.String("kind", string(a.Kind)),
		zap.String("user_id", actor.UserID))
	return toDTO(a), nil
}

func (u *Usecase) Get(ctx context.Context, assetID string) (*AssetDTO, error) {
	a, err := u.assets.GetByAssetID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

func (u *Usecase) List(ctx context.Context, f domain.Filter) ([]AssetDTO, error) {
	as, err := u.assets.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]AssetDTO, 0, len(as))
	for i := range as {
		out = append(out, *toDTO(&as[i]))
	}
	return out, nil
}

// Sell moves an asset to sold. A pawned asset can be sold only when the
// lifecycle allows it, and the active pledge is then closed as sold.
func (u *Usecase) Sell(ctx context.Context, actor session.Session, in SellInput) (*SaleResult, error) {
	if !in.Price.IsPositive() || !nonNegativeCents(in.Price) {
		return nil, invalid("sale price must be greater than zero and at most %s", pledge.MaxAmount)
	}
	now := u.clock.Now().UTC()

	var res *SaleResult
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		// pledge before asset, the same lock order as payments
		var active *pledge.Pledge
		if u.lifecycle.AllowSaleWhilePawned {
			p, err := r.Pledges.GetActiveByAssetID(ctx, in.AssetID)
			switch {
			case err == nil:
				if active, err = r.Pledges.GetByPledgeIDForUpdate(ctx, p.PledgeID); err != nil {
					return err
				}
			case !errors.Is(err, pledge.ErrNotFound):
				return err
			}
		}

		a, err := r.Assets.GetByAssetIDForUpdate(ctx, in.AssetID)
		if err != nil {
			return err
		}
		if err := u.lifecycle.Asset(a.State, pledge.StateSold); err != nil {
			return err
		}

		res = &SaleResult{AssetID: a.AssetID, Price: in.Price, SoldAt: now}
		if a.State == pledge.StatePawned {
			if active == nil || !active.Active() {
				return &pledge.IllegalStateTransitionError{Subject: "asset", From: a.State, To: pledge.StateSold}
			}
			if err := u.lifecycle.Pledge(active.State, pledge.StateSold); err != nil {
				return err
			}
			active.State = pledge.StateSold
			active.ClosedAt = &now
			if err := r.Pledges.Save(ctx, active); err != nil {
				return err
			}
			res.ClosedPledgeID = active.PledgeID
		}

		a.State = pledge.StateSold
		a.SalePrice = in.Price
		if err := r.Assets.Save(ctx, a); err != nil {
			return err
		}

		res.Profit = in.Price.Sub(a.PurchasePrice)
		t := &transaction.Transaction{
			TransactionID: id.NewID32(),
			Type:          transaction.TypeSale,
			AssetID:       a.AssetID,
			AssetKind:     a.Kind,
			PledgeID:      res.ClosedPledgeID,
			Amount:        in.Price,
			Interest:      decimal.Zero,
			Outstanding:   decimal.Zero,
			Overpayment:   decimal.Zero,
			Profit:        res.Profit,
			Client:        in.Client,
			UserID:        actor.UserID,
			LocationID:    a.LocationID,
			Notes:         in.Notes,
			OccurredAt:    now,
		}
		if err := r.Transactions.Create(ctx, t); err != nil {
			return err
		}
		res.TransactionID = t.TransactionID
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("asset sold",
		zap.String("asset_id", res.AssetID),
		zap.String("price", res.Price.StringFixed(pledge.CurrencyPlaces)),
		zap.String("closed_pledge_id", res.ClosedPledgeID),
		zap.String("user_id", actor.UserID))
	return res, nil
}

// WriteOff retires an available asset and records it on the trail.
func (u *Usecase) WriteOff(ctx context.Context, actor session.Session, assetID, notes string) (*AssetDTO, error) {
	now := u.clock.Now().UTC()
	var out *AssetDTO
	err := u.uow.WithinAssetTx(ctx, assetID, func(r uow.Repos, a *domain.Asset) error {
		if err := u.lifecycle.Asset(a.State, pledge.StateWrittenOff); err != nil {
			return err
		}
		a.State = pledge.StateWrittenOff
		if err := r.Assets.Save(ctx, a); err != nil {
			return err
		}
		if err := r.Transactions.Create(ctx, &transaction.Transaction{
			TransactionID: id.NewID32(),
			Type:          transaction.TypeWriteOff,
			AssetID:       a.AssetID,
			AssetKind:     a.Kind,
			Amount:        decimal.Zero,
			Interest:      decimal.Zero,
			Outstanding:   decimal.Zero,
			Overpayment:   decimal.Zero,
			Profit:        a.PurchasePrice.Neg(),
			UserID:        actor.UserID,
			LocationID:    a.LocationID,
			Notes:         notes,
			OccurredAt:    now,
		}); err != nil {
			return err
		}
		out = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("asset written off", zap.String("asset_id", assetID), zap.String("user_id", actor.UserID))
	return out, nil
}

// Reinstate returns a recovered asset to stock so it can be pledged or sold again.
func (u *Usecase) Reinstate(ctx context.Context, actor session.Session, assetID string) (*AssetDTO, error) {
	var out *AssetDTO
	err := u.uow.WithinAssetTx(ctx, assetID, func(r uow.Repos, a *domain.Asset) error {
		if err := u.lifecycle.Asset(a.State, pledge.StateAvailable); err != nil {
			return err
		}
		a.State = pledge.StateAvailable
		if err := r.Assets.Save(ctx, a); err != nil {
			return err
		}
		out = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("asset reinstated", zap.String("asset_id", assetID), zap.String("user_id", actor.UserID))
	return out, nil
}

func toDTO(a *domain.Asset) *AssetDTO {
	dto := &AssetDTO{
		AssetID:       a.AssetID,
		Kind:          a.Kind,
		Description:   a.Description,
		Brand:         a.Brand,
		Model:         a.Model,
		Year:          a.Year,
		PurchasePrice: a.PurchasePrice,
		SalePrice:     a.SalePrice,
		LocationID:    a.LocationID,
		State:         a.State,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if a.Plate != nil {
		dto.Plate = *a.Plate
	}
	return dto
}
