package usecase

import (
	"fmt"
	"math"

	"StockPilot/internal/domain/models"
)

// RiskParams is the position-sizing and exit configuration surface. All
// percent fields are fractions (0.08 = 8%).
type RiskParams struct {
	PositionSizePercent  float64 // hard cap on any single position as a fraction of equity
	MaxConvictionPercent float64 // ceiling the confidence scaling reaches at confidence 1
	MaxPositions         int
	StopLossPercent      float64
	TakeProfitPercent    float64
	MinimumProfitPercent float64
	TrailingStopPercent  float64 // 0 disables the trailing stop
}

// RiskEngine converts a recommendation plus portfolio state into a sized,
// risk-bounded action. It never mutates the snapshot; it only proposes.
type RiskEngine struct {
	params RiskParams
}

func NewRiskEngine(params RiskParams) *RiskEngine {
	return &RiskEngine{params: params}
}

// Params returns the configured risk parameters.
func (e *RiskEngine) Params() RiskParams { return e.params }

// Size decides the action for one symbol.
//
// Risk exits on an open position take precedence over the recommendation,
// in loss-containment order: STOP_LOSS > TRAILING_STOP_LOSS > TAKE_PROFIT
// > SIGNAL_CHANGE. A BUY against an already-open position or a full
// portfolio is a deliberate no-op, not an error. A missing current price
// degrades to NONE with ErrMissingPrice so the caller can report the data
// gap instead of sizing against a stale quote.
func (e *RiskEngine) Size(rec models.Recommendation, state models.PortfolioState, currentPrice float64) (models.Action, error) {
	none := models.Action{Symbol: rec.Symbol, Kind: models.ActionKindNone, Price: currentPrice}

	if currentPrice <= 0 || math.IsNaN(currentPrice) {
		return models.Action{Symbol: rec.Symbol, Kind: models.ActionKindNone},
			fmt.Errorf("%s: %w", rec.Symbol, models.ErrMissingPrice)
	}

	if pos, held := state.PositionFor(rec.Symbol); held {
		if reason, exit := e.riskExit(pos, currentPrice); exit {
			return e.closeAction(pos, currentPrice, reason), nil
		}
		if rec.Action == models.ActionSell {
			return e.closeAction(pos, currentPrice, models.ReasonSignalChange), nil
		}
		// BUY on a held symbol stays a no-op; adding to winners is not modeled.
		return none, nil
	}

	if rec.Action != models.ActionBuy {
		return none, nil
	}
	if len(state.Positions) >= e.params.MaxPositions {
		return none, nil
	}

	fraction := math.Min(e.params.PositionSizePercent, e.params.MaxConvictionPercent*rec.Confidence)
	quantity := fraction * state.Equity / currentPrice
	if quantity <= 0 {
		return none, nil
	}

	return models.Action{
		Symbol:          rec.Symbol,
		Kind:            models.ActionKindOpen,
		QuantityDelta:   quantity,
		Price:           currentPrice,
		StopLossPrice:   currentPrice * (1 - e.params.StopLossPercent),
		TakeProfitPrice: currentPrice * (1 + e.params.TakeProfitPercent),
		Reason:          models.ReasonNewPosition,
	}, nil
}

// riskExit checks exits in precedence order, independent of signal state.
func (e *RiskEngine) riskExit(pos models.Position, currentPrice float64) (models.ActionReason, bool) {
	if pos.StopLossPrice > 0 && currentPrice <= pos.StopLossPrice {
		return models.ReasonStopLoss, true
	}
	if e.params.TrailingStopPercent > 0 &&
		pos.HighWaterMark > pos.EntryPrice &&
		currentPrice < pos.HighWaterMark*(1-e.params.TrailingStopPercent) {
		return models.ReasonTrailingStopLoss, true
	}
	if pos.TakeProfitPrice > 0 && currentPrice >= pos.TakeProfitPrice {
		gain := (currentPrice - pos.EntryPrice) / pos.EntryPrice
		if gain >= e.params.MinimumProfitPercent {
			return models.ReasonTakeProfit, true
		}
	}
	return "", false
}

func (e *RiskEngine) closeAction(pos models.Position, currentPrice float64, reason models.ActionReason) models.Action {
	return models.Action{
		Symbol:        pos.Symbol,
		Kind:          models.ActionKindClose,
		QuantityDelta: -pos.Quantity,
		Price:         currentPrice,
		Reason:        reason,
	}
}
