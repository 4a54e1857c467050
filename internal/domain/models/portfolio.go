package models

import "time"

// Position is one open holding. Mutated only by accepted actions applied
// by the external executor; the engine reads it as part of a snapshot.
type Position struct {
	Symbol          string
	Quantity        float64
	EntryPrice      float64
	StopLossPrice   float64
	TakeProfitPrice float64
	HighWaterMark   float64 // highest close since entry, drives the trailing stop
	OpenedAt        time.Time
}

// PortfolioState is the snapshot taken at run start. Positions are unique
// by symbol. The engine never mutates it; sizing decisions read it only.
type PortfolioState struct {
	Positions map[string]Position
	Equity    float64
	Cash      float64
	Prices    map[string]float64 // current price per symbol; absent means data gap
}

// PositionFor returns the open position for symbol, if any.
func (p PortfolioState) PositionFor(symbol string) (Position, bool) {
	pos, ok := p.Positions[symbol]
	return pos, ok
}

// PriceFor returns the current price for symbol, if known.
func (p PortfolioState) PriceFor(symbol string) (float64, bool) {
	v, ok := p.Prices[symbol]
	return v, ok
}

// ActionKind classifies what the executor should do with a position.
type ActionKind string

const (
	ActionKindOpen   ActionKind = "OPEN"
	ActionKindClose  ActionKind = "CLOSE"
	ActionKindResize ActionKind = "RESIZE"
	ActionKindNone   ActionKind = "NONE"
)

// ActionReason is the machine-checkable cause attached to every action.
type ActionReason string

const (
	ReasonNewPosition      ActionReason = "NEW_POSITION"
	ReasonSignalChange     ActionReason = "SIGNAL_CHANGE"
	ReasonStopLoss         ActionReason = "STOP_LOSS"
	ReasonTakeProfit       ActionReason = "TAKE_PROFIT"
	ReasonTrailingStopLoss ActionReason = "TRAILING_STOP_LOSS"
	ReasonManual           ActionReason = "MANUAL"
)

// Action is the sole artifact handed to the execution collaborator.
type Action struct {
	Symbol          string
	Kind            ActionKind
	QuantityDelta   float64 // positive opens/adds, negative closes/reduces
	Price           float64 // reference price the decision was made at
	StopLossPrice   float64
	TakeProfitPrice float64
	Reason          ActionReason
}

// IsTrade reports whether the action changes a position.
func (a Action) IsTrade() bool { return a.Kind != ActionKindNone }
