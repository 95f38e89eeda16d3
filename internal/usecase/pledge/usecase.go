package pledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"autoempeno-backend/internal/domain/asset"
	domain "autoempeno-backend/internal/domain/pledge"
	"autoempeno-backend/internal/domain/session"
	"autoempeno-backend/internal/domain/transaction"
	"autoempeno-backend/internal/domain/uow"
	"autoempeno-backend/pkg/clock"
	"autoempeno-backend/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Usecase struct {
	pledges   domain.Repository
	txs       transaction.Repository
	uow       uow.UnitOfWork
	clock     clock.Clock
	lifecycle domain.Lifecycle
	log       *zap.Logger
}

func NewUsecase(pledges domain.Repository, txs transaction.Repository, tx uow.UnitOfWork, clk clock.Clock, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{pledges: pledges, txs: txs, uow: tx, clock: clk, log: log}
}

func validateTerms(in CreatePledgeInput) error {
	switch {
	case strings.TrimSpace(in.AssetID) == "":
		return fmt.Errorf("%w: asset id is required", domain.ErrInvalidTerms)
	case !in.Principal.IsPositive():
		return fmt.Errorf("%w: principal must be greater than zero", domain.ErrInvalidTerms)
	case !isCents(in.Principal):
		return fmt.Errorf("%w: principal has more than %d decimals", domain.ErrInvalidTerms, domain.CurrencyPlaces)
	case in.Principal.GreaterThan(domain.MaxAmount):
		return fmt.Errorf("%w: principal exceeds %s", domain.ErrInvalidTerms, domain.MaxAmount)
	case strings.TrimSpace(in.Client.Name) == "":
		return fmt.Errorf("%w: client name is required", domain.ErrInvalidTerms)
	}
	return domain.ValidateRate(in.MonthlyRate)
}

func isCents(d decimal.Decimal) bool { return d.Equal(d.Round(domain.CurrencyPlaces)) }

func validateAmount(amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return fmt.Errorf("%w: amount must be greater than zero", domain.ErrInvalidPayment)
	case !isCents(amount):
		return fmt.Errorf("%w: amount has more than %d decimals", domain.ErrInvalidPayment, domain.CurrencyPlaces)
	case amount.GreaterThan(domain.MaxAmount):
		return fmt.Errorf("%w: amount exceeds %s", domain.ErrInvalidPayment, domain.MaxAmount)
	}
	return nil
}

// Create opens a pledge against an available asset and moves the asset to pawned.
// The asset row stays locked until the pledge and its trail entry are written.
func (u *Usecase) Create(ctx context.Context, actor session.Session, in CreatePledgeInput) (*PledgeDTO, error) {
	if err := validateTerms(in); err != nil {
		return nil, err
	}
	now := u.clock.Now().UTC()

	var out *PledgeDTO
	err := u.uow.WithinAssetTx(ctx, in.AssetID, func(r uow.Repos, a *asset.Asset) error {
		if a.State != domain.StateAvailable {
			return &domain.AssetNotAvailableError{AssetID: a.AssetID, State: a.State}
		}
		switch existing, err := r.Pledges.GetActiveByAssetID(ctx, a.AssetID); {
		case err == nil:
			u.log.Warn("available asset has an active pledge",
				zap.String("asset_id", a.AssetID), zap.String("pledge_id", existing.PledgeID))
			return &domain.AssetNotAvailableError{AssetID: a.AssetID, State: domain.StatePawned}
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		if err := u.lifecycle.Asset(a.State, domain.StatePawned); err != nil {
			return err
		}

		location := in.LocationID
		if location == 0 {
			location = a.LocationID
		}
		p := &domain.Pledge{
			PledgeID:             id.NewID32(),
			AssetID:              a.AssetID,
			AssetKind:            a.Kind,
			Principal:            in.Principal,
			OutstandingPrincipal: in.Principal,
			MonthlyRate:          in.MonthlyRate,
			PledgeDate:           now,
			Client:               trimClient(in.Client),
			LocationID:           location,
			State:                domain.StatePawned,
			TotalPaid:            decimal.Zero,
			CreatedBy:            actor.UserID,
			Version:              1,
		}
		if err := r.Pledges.Create(ctx, p); err != nil {
			return err
		}

		a.State = domain.StatePawned
		if err := r.Assets.Save(ctx, a); err != nil {
			return err
		}

		if err := r.Transactions.Create(ctx, &transaction.Transaction{
			TransactionID: id.NewID32(),
			Type:          transaction.TypePledge,
			AssetID:       p.AssetID,
			AssetKind:     p.AssetKind,
			PledgeID:      p.PledgeID,
			Amount:        p.Principal,
			Interest:      decimal.Zero,
			Outstanding:   p.OutstandingPrincipal,
			Overpayment:   decimal.Zero,
			Profit:        decimal.Zero,
			Client:        p.Client,
			UserID:        actor.UserID,
			LocationID:    p.LocationID,
			Notes:         in.Notes,
			OccurredAt:    now,
		}); err != nil {
			return err
		}

		out = toDTO(p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("pledge created",
		zap.String("pledge_id", out.PledgeID),
		zap.String("asset_id", out.AssetID),
		zap.String("principal", out.Principal.StringFixed(domain.CurrencyPlaces)),
		zap.String("user_id", actor.UserID))
	return out, nil
}

// ApplyPayment settles the pledge when amount covers the payoff, otherwise it
// re-bases the pledge: the new outstanding principal is payoff minus amount
// and accrual restarts from the payment date.
// Checks run in order: pledge exists, pledge is active, amount, payment date.
func (u *Usecase) ApplyPayment(ctx context.Context, actor session.Session, in ApplyPaymentInput) (*PaymentResult, error) {
	now := u.clock.Now().UTC()
	asOf := now
	if in.AsOf != nil {
		asOf = in.AsOf.UTC()
	}

	var res *PaymentResult
	err := u.uow.WithinPledgeTx(ctx, in.PledgeID, func(r uow.Repos, p *domain.Pledge) error {
		if !p.Active() {
			return fmt.Errorf("%w: pledge %s is %s", domain.ErrNotActive, p.PledgeID, p.State)
		}
		if err := validateAmount(in.Amount); err != nil {
			return err
		}
		if asOf.After(now) {
			return &domain.InvalidDateError{PledgeDate: p.PledgeDate, AsOf: asOf, Reason: "payment date is in the future"}
		}
		// accrual base only moves forward
		if asOf.Before(p.PledgeDate) {
			return &domain.InvalidDateError{PledgeDate: p.PledgeDate, AsOf: asOf, Reason: "payment date is before the current accrual date"}
		}
		acc, err := p.Accrual(asOf)
		if err != nil {
			return err
		}

		t := &transaction.Transaction{
			TransactionID: id.NewID32(),
			AssetID:       p.AssetID,
			AssetKind:     p.AssetKind,
			PledgeID:      p.PledgeID,
			Amount:        in.Amount,
			Interest:      acc.AccruedInterest,
			Overpayment:   decimal.Zero,
			Profit:        decimal.Zero,
			Client:        p.Client,
			UserID:        actor.UserID,
			LocationID:    p.LocationID,
			Notes:         in.Notes,
			OccurredAt:    asOf,
		}
		res = &PaymentResult{
			PledgeID:        p.PledgeID,
			TransactionID:   t.TransactionID,
			AsOf:            asOf,
			Amount:          in.Amount,
			AccruedInterest: acc.AccruedInterest,
			PayoffBefore:    acc.PayoffValue,
			Overpayment:     decimal.Zero,
		}

		applied := in.Amount
		if in.Amount.GreaterThanOrEqual(acc.PayoffValue) {
			if err := u.lifecycle.Pledge(p.State, domain.StateRecovered); err != nil {
				return err
			}
			a, err := r.Assets.GetByAssetIDForUpdate(ctx, p.AssetID)
			if err != nil {
				return err
			}
			if err := u.lifecycle.Asset(a.State, domain.StateRecovered); err != nil {
				return err
			}

			applied = acc.PayoffValue
			res.Overpayment = in.Amount.Sub(acc.PayoffValue)
			res.Recovered = true
			res.Message = MessageRecovered

			p.OutstandingPrincipal = decimal.Zero
			p.State = domain.StateRecovered
			p.ClosedAt = &asOf
			a.State = domain.StateRecovered
			if err := r.Assets.Save(ctx, a); err != nil {
				return err
			}
			t.Type = transaction.TypeRecovery
		} else {
			res.Message = MessagePartial
			p.OutstandingPrincipal = acc.PayoffValue.Sub(in.Amount)
			p.PledgeDate = asOf
			t.Type = transaction.TypePayment
		}
		p.TotalPaid = p.TotalPaid.Add(applied)
		p.LastPaymentAt = &asOf

		if err := r.Pledges.Save(ctx, p); err != nil {
			return err
		}
		t.Outstanding = p.OutstandingPrincipal
		t.Overpayment = res.Overpayment
		if err := r.Transactions.Create(ctx, t); err != nil {
			return err
		}

		res.NewOutstanding = p.OutstandingPrincipal
		res.NewState = p.State
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("payment applied",
		zap.String("pledge_id", res.PledgeID),
		zap.String("amount", res.Amount.StringFixed(domain.CurrencyPlaces)),
		zap.String("new_outstanding", res.NewOutstanding.StringFixed(domain.CurrencyPlaces)),
		zap.Bool("recovered", res.Recovered),
		zap.String("user_id", actor.UserID))
	return res, nil
}

// Snapshot evaluates the pledge as of asOf (now when nil) without changing it.
func (u *Usecase) Snapshot(ctx context.Context, pledgeID string, asOf *time.Time) (*SnapshotDTO, error) {
	p, err := u.pledges.GetByPledgeID(ctx, pledgeID)
	if err != nil {
		return nil, err
	}
	at := u.clock.Now().UTC()
	if asOf != nil {
		at = asOf.UTC()
	}
	acc, err := p.Accrual(at)
	if err != nil {
		return nil, err
	}
	return &SnapshotDTO{
		PledgeID:             p.PledgeID,
		State:                p.State,
		OutstandingPrincipal: p.OutstandingPrincipal,
		MonthlyRate:          p.MonthlyRate,
		PledgeDate:           p.PledgeDate,
		AsOf:                 at,
		Accrual:              acc,
	}, nil
}

func (u *Usecase) Get(ctx context.Context, pledgeID string) (*PledgeDTO, error) {
	p, err := u.pledges.GetByPledgeID(ctx, pledgeID)
	if err != nil {
		return nil, err
	}
	return toDTO(p), nil
}

// ListActive returns pawned pledges, oldest first, each with its payoff as of now.
func (u *Usecase) ListActive(ctx context.Context, kind domain.AssetKind) ([]ActivePledge, error) {
	ps, err := u.pledges.ListByState(ctx, domain.StatePawned, kind)
	if err != nil {
		return nil, err
	}
	now := u.clock.Now().UTC()
	out := make([]ActivePledge, 0, len(ps))
	for i := range ps {
		acc, err := ps[i].Accrual(now)
		if err != nil {
			return nil, fmt.Errorf("pledge %s: %w", ps[i].PledgeID, err)
		}
		out = append(out, ActivePledge{PledgeDTO: *toDTO(&ps[i]), Accrual: acc})
	}
	return out, nil
}

// GetActiveByAsset returns the pawned pledge held against an asset with its
// payoff as of now.
func (u *Usecase) GetActiveByAsset(ctx context.Context, assetID string) (*ActivePledge, error) {
	p, err := u.pledges.GetActiveByAssetID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	acc, err := p.Accrual(u.clock.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &ActivePledge{PledgeDTO: *toDTO(p), Accrual: acc}, nil
}

// ListPayments returns the payment trail of one pledge, newest first.
func (u *Usecase) ListPayments(ctx context.Context, pledgeID string) ([]transaction.Transaction, error) {
	if _, err := u.pledges.GetByPledgeID(ctx, pledgeID); err != nil {
		return nil, err
	}
	return u.txs.List(ctx, transaction.Filter{
		PledgeID: pledgeID,
		Types:    []transaction.Type{transaction.TypePayment, transaction.TypeRecovery},
	})
}

func trimClient(c domain.Client) domain.Client {
	return domain.Client{
		Name:     strings.TrimSpace(c.Name),
		Phone:    strings.TrimSpace(c.Phone),
		Document: strings.TrimSpace(c.Document),
	}
}

func toDTO(p *domain.Pledge) *PledgeDTO {
	return &PledgeDTO{
		PledgeID:             p.PledgeID,
		AssetID:              p.AssetID,
		AssetKind:            p.AssetKind,
		Principal:            p.Principal,
		OutstandingPrincipal: p.OutstandingPrincipal,
		MonthlyRate:          p.MonthlyRate,
		PledgeDate:           p.PledgeDate,
		Client:               p.Client,
		LocationID:           p.LocationID,
		State:                p.State,
		TotalPaid:            p.TotalPaid,
		LastPaymentAt:        p.LastPaymentAt,
		ClosedAt:             p.ClosedAt,
		CreatedBy:            p.CreatedBy,
		CreatedAt:            p.CreatedAt,
	}
}
