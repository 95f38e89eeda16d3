package pledge

import "slices"

// Lifecycle is the state machine for assets and the pledges that encumber them.
//
//	asset:  available -> pawned -> recovered -> available
//	        available -> sold
//	        available -> written_off
//	pledge: pawned -> recovered
//
// AllowSaleWhilePawned adds pawned -> sold to both; the sale then closes the
// active pledge as sold.
type Lifecycle struct {
	AllowSaleWhilePawned bool
}

var assetTransitions = map[State][]State{
	StateAvailable: {StatePawned, StateSold, StateWrittenOff},
	StatePawned:    {StateRecovered},
	StateRecovered: {StateAvailable},
}

var pledgeTransitions = map[State][]State{
	StatePawned: {StateRecovered},
}

// Asset validates an asset state change.
func (l Lifecycle) Asset(from, to State) error {
	return l.check("asset", assetTransitions, from, to)
}

// Pledge validates a pledge state change.
func (l Lifecycle) Pledge(from, to State) error {
	return l.check("pledge", pledgeTransitions, from, to)
}

func (l Lifecycle) check(subject string, table map[State][]State, from, to State) error {
	if slices.Contains(table[from], to) {
		return nil
	}
	if l.AllowSaleWhilePawned && from == StatePawned && to == StateSold {
		return nil
	}
	return &IllegalStateTransitionError{Subject: subject, From: from, To: to}
}

// Terminal reports whether a pledge in state s can no longer change.
func Terminal(s State) bool { return s == StateRecovered || s == StateSold }
