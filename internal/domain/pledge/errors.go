package pledge

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors, one per caller-visible failure kind. Use errors.Is.
var (
	ErrAssetNotAvailable      = errors.New("asset not available for pledge")
	ErrInvalidTerms           = errors.New("invalid pledge terms")
	ErrNotFound               = errors.New("pledge not found")
	ErrNotActive              = errors.New("pledge not active")
	ErrInvalidPayment         = errors.New("invalid payment")
	ErrInvalidDate            = errors.New("invalid date")
	ErrIllegalTransition      = errors.New("illegal state transition")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// AssetNotAvailableError reports the state that blocked a new pledge.
type AssetNotAvailableError struct {
	AssetID string
	State   State
}

func (e *AssetNotAvailableError) Error() string {
	return fmt.Sprintf("asset %s is not available for pledge (state: %s)", e.AssetID, e.State)
}

func (e *AssetNotAvailableError) Unwrap() error { return ErrAssetNotAvailable }

// IllegalStateTransitionError carries both ends of the rejected transition.
type IllegalStateTransitionError struct {
	Subject string // "asset" or "pledge"
	From    State
	To      State
}

func (e *IllegalStateTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Subject, e.From, e.To)
}

func (e *IllegalStateTransitionError) Unwrap() error { return ErrIllegalTransition }

// InvalidDateError is returned when the evaluation date precedes the pledge date,
// or a payment is dated in the future.
type InvalidDateError struct {
	PledgeDate time.Time
	AsOf       time.Time
	Reason     string
}

func (e *InvalidDateError) Error() string {
	if e.PledgeDate.IsZero() {
		return fmt.Sprintf("invalid date %s: %s", e.AsOf.Format(time.DateOnly), e.Reason)
	}
	return fmt.Sprintf("invalid date %s (pledge date %s): %s",
		e.AsOf.Format(time.DateOnly), e.PledgeDate.Format(time.DateOnly), e.Reason)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

// Code returns the stable kind of err, or "" when err is not one of ours.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrAssetNotAvailable):
		return "asset_not_available"
	case errors.Is(err, ErrInvalidTerms):
		return "invalid_pledge_terms"
	case errors.Is(err, ErrNotFound):
		return "pledge_not_found"
	case errors.Is(err, ErrNotActive):
		return "pledge_not_active"
	case errors.Is(err, ErrInvalidPayment):
		return "invalid_payment"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrIllegalTransition):
		return "illegal_state_transition"
	case errors.Is(err, ErrConcurrentModification):
		return "concurrent_modification"
	}
	return ""
}

// IsClientError reports business-rule violations caused by the request itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTerms) ||
		errors.Is(err, ErrInvalidPayment) ||
		errors.Is(err, ErrInvalidDate)
}

// IsConflict reports failures caused by the current state of the records.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAssetNotAvailable) ||
		errors.Is(err, ErrNotActive) ||
		errors.Is(err, ErrIllegalTransition) ||
		errors.Is(err, ErrConcurrentModification)
}
