package pledge

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// PeriodDays is the length of one interest period. It is a fixed span,
	// not a calendar month.
	PeriodDays = 32
	// CurrencyPlaces is the precision money is rounded to.
	CurrencyPlaces = 2
)

var (
	hundred = decimal.NewFromInt(100)
	maxRate = hundred
)

// MaxAmount is the largest money value a decimal(15,2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999999.99")

// Accrual is the payoff picture of a balance at one evaluation date.
type Accrual struct {
	ElapsedDays     int             `json:"elapsed_days"`
	ElapsedPeriods  int             `json:"elapsed_periods"`
	AccruedInterest decimal.Decimal `json:"accrued_interest"`
	PayoffValue     decimal.Decimal `json:"payoff_value"`
}

// ComputeAccrual charges monthlyRatePercent of outstanding once per whole
// PeriodDays elapsed between pledgeDate and asOf. Partial periods accrue
// nothing. It has no side effects.
func ComputeAccrual(outstanding, monthlyRatePercent decimal.Decimal, pledgeDate, asOf time.Time) (Accrual, error) {
	if outstanding.IsNegative() {
		return Accrual{}, fmt.Errorf("%w: outstanding principal %s is negative", ErrInvalidTerms, outstanding)
	}
	if err := ValidateRate(monthlyRatePercent); err != nil {
		return Accrual{}, err
	}
	days, err := ElapsedDays(pledgeDate, asOf)
	if err != nil {
		return Accrual{}, err
	}

	periods := days / PeriodDays
	interest := decimal.Zero
	if periods > 0 && !monthlyRatePercent.IsZero() {
		interest = outstanding.
			Mul(monthlyRatePercent).
			Mul(decimal.NewFromInt(int64(periods))).
			Div(hundred).
			Round(CurrencyPlaces)
	}

	return Accrual{
		ElapsedDays:     days,
		ElapsedPeriods:  periods,
		AccruedInterest: interest,
		PayoffValue:     outstanding.Add(interest),
	}, nil
}

// ValidateRate accepts percentages in [0, 100].
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(maxRate) {
		return fmt.Errorf("%w: monthly rate %s%% outside [0, 100]", ErrInvalidTerms, rate)
	}
	return nil
}

// ElapsedDays counts civil days between the UTC calendar dates of from and to.
func ElapsedDays(from, to time.Time) (int, error) {
	f, t := civilDay(from), civilDay(to)
	if t.Before(f) {
		return 0, &InvalidDateError{PledgeDate: from, AsOf: to, Reason: "evaluation date precedes pledge date"}
	}
	return int(t.Sub(f).Hours() / 24), nil
}

func civilDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
