package usecase

import (
	"errors"
	"math"
	"testing"

	"StockPilot/internal/domain/models"
)

func testRiskParams() RiskParams {
	return RiskParams{
		PositionSizePercent:  0.02,
		MaxConvictionPercent: 0.05,
		MaxPositions:         10,
		StopLossPercent:      0.08,
		TakeProfitPercent:    0.15,
		MinimumProfitPercent: 0.05,
		TrailingStopPercent:  0.05,
	}
}

func heldState(pos models.Position) models.PortfolioState {
	return models.PortfolioState{
		Positions: map[string]models.Position{pos.Symbol: pos},
		Equity:    100000,
		Cash:      50000,
	}
}

func emptyState() models.PortfolioState {
	return models.PortfolioState{
		Positions: map[string]models.Position{},
		Equity:    100000,
		Cash:      100000,
	}
}

func holdRec(symbol string) models.Recommendation {
	return models.Recommendation{Symbol: symbol, Action: models.ActionHold}
}

func TestSizeStopLossBeatsTrailingStop(t *testing.T) {
	eng := NewRiskEngine(testRiskParams())
	pos := models.Position{
		Symbol:        "AAPL",
		Quantity:      10,
		EntryPrice:    100,
		StopLossPrice: 92,
		HighWaterMark: 110, // trailing trigger at 104.5 also breached
	}

	action, err := eng.Size(holdRec("AAPL"), heldState(pos), 91.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Kind != models.ActionKindClose || action.Reason != models.ReasonStopLoss {
		t.Fatalf("got %s/%s, want CLOSE/STOP_LOSS", action.Kind, action.Reason)
	}
	if action.QuantityDelta != -10 {
		t.Errorf("quantity delta = %v, want -10", action.QuantityDelta)
	}
}

func TestSizeStopLossBeatsTakeProfit(t *testing.T) {
	params := testRiskParams()
	params.TrailingStopPercent = 0
	eng := NewRiskEngine(params)
	// A stop ratcheted above the take-profit target means one price
	// satisfies both exits; loss containment must win.
	pos := models.Position{
		Symbol:          "AAPL",
		Quantity:        10,
		EntryPrice:      100,
		StopLossPrice:   112,
		TakeProfitPrice: 110,
		HighWaterMark:   115,
	}

	action, err := eng.Size(holdRec("AAPL"), heldState(pos), 111)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Kind != models.ActionKindClose || action.Reason != models.ReasonStopLoss {
		t.Fatalf("got %s/%s, want CLOSE/STOP_LOSS", action.Kind, action.Reason)
	}
}

func TestSizeTrailingStop(t *testing.T) {
	eng := NewRiskEngine(testRiskParams())
	pos := models.Position{
		Symbol:        "AAPL",
		Quantity:      10,
		EntryPrice:    100,
		StopLossPrice: 92,
		HighWaterMark: 110,
	}

	// 104 is above the fixed stop but below 110 * 0.95 = 104.5.
	action, err := eng.Size(holdRec("AAPL"), heldState(pos), 104)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Reason != models.ReasonTrailingStopLoss {
		t.Fatalf("reason = %s, want TRAILING_STOP_LOSS", action.Reason)
	}
}

func TestSizeTrailingStopNeedsProfit(t *testing.T) {
	eng := NewRiskEngine(testRiskParams())
	pos := models.Position{
		Symbol:        "AAPL",
		Quantity:      10,
		EntryPrice:    100,
		StopLossPrice: 92,
		HighWaterMark: 99, // never above entry, trailing stays armed off
	}

	action, err := eng.Size(holdRec("AAPL"), heldState(pos), 93)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Kind != models.ActionKindNone {
		t.Fatalf("kind = %s, want NONE", action.Kind)
	}
}

func TestSizeTakeProfit(t *testing.T) {
	eng := NewRiskEngine(testRiskParams())
	pos := models.Position{
		Symbol:          "AAPL",
		Quantity:        10,
		EntryPrice:      100,
		StopLossPrice:   92,
		TakeProfitPrice: 115,
		HighWaterMark:   116,
	}

	action, err := eng.Size(holdRec("AAPL"), heldState(pos), 116)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Reason != models.ReasonTakeProfit {
		t.Fatalf("reason = %s, want TAKE_PROFIT", action.Reason)
	}
}

func TestSizeTakeProfitMinimumGate(t *testing.T) {
	params := testRiskParams()
	params.MinimumProfitPercent = 0.2
	params.TrailingStopPercent = 0 // isolate the take-profit path
	eng := NewRiskEngine(params)
	pos := models.Position{
		Symbol:          "AAPL",
		Quantity:        10,
		EntryPrice:      100,
		TakeProfitPrice: 115,
		HighWaterMark:   116,
	}

	// 16% gain hits the target price but not the 20% minimum.
	action, err := eng.Size(holdRec("AAPL"), heldState(pos), 116)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Kind != models.ActionKindNone {
		t.Fatalf("kind = %s, want NONE below minimum profit", action.Kind)
	}
}

func TestSizeSellClosesOnSignalChange(t *testing.T) {
	eng := NewRiskEngine(testRiskParams())
	pos := models.Position{Symbol: "AAPL", Quantity: 10, EntryPrice: 100, StopLossPrice: 92, HighWaterMark: 100}

	rec := models.Recommendation{Symbol: "AAPL", Action: models.ActionSell}
	action, err := eng.Size(rec, heldState(pos), 101)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Kind != models.ActionKindClose || action.Reason != models.ReasonSignalChange {
		t.Fatalf("got %s/%s, want CLOSE/SIGNAL_CHANGE", action.Kind, action.Reason)
	}
}

func TestSizeBuyOnHeldIsNoop(t *testing.T) {
	eng := NewRiskEngine(testRiskParams())
	pos := models.Position{Symbol: "AAPL", Quantity: 10, EntryPrice: 100, StopLossPrice: 92, HighWaterMark: 100}

	rec := models.Recommendation{Symbol: "AAPL", Action: models.ActionBuy, Confidence: 1}
	action, err := eng.Size(rec, heldState(pos), 101)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Kind != models.ActionKindNone {
		t.Fatalf("kind = %s, want NONE for BUY on a held symbol", action.Kind)
	}
}

func TestSizeOpensConvictionScaled(t *testing.T) {
	eng := NewRiskEngine(testRiskParams())

	rec := models.Recommendation{Symbol: "MSFT", Action: models.ActionBuy, Confidence: 0.2}
	action, err := eng.Size(rec, emptyState(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Kind != models.ActionKindOpen || action.Reason != models.ReasonNewPosition {
		t.Fatalf("got %s/%s, want OPEN/NEW_POSITION", action.Kind, action.Reason)
	}
	// min(0.02, 0.05 * 0.2) = 0.01 of 100k equity at price 100.
	if math.Abs(action.QuantityDelta-10) > 1e-9 {
		t.Errorf("quantity = %v, want 10", action.QuantityDelta)
	}
	if math.Abs(action.StopLossPrice-92) > 1e-9 {
		t.Errorf("stop loss = %v, want 92", action.StopLossPrice)
	}
	if math.Abs(action.TakeProfitPrice-115) > 1e-9 {
		t.Errorf("take profit = %v, want 115", action.TakeProfitPrice)
	}
}

func TestSizeOpenCappedByPositionSize(t *testing.T) {
	eng := NewRiskEngine(testRiskParams())

	// Full conviction would allow 5%, but the per-position cap is 2%.
	rec := models.Recommendation{Symbol: "MSFT", Action: models.ActionBuy, Confidence: 1}
	action, err := eng.Size(rec, emptyState(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(action.QuantityDelta-20) > 1e-9 {
		t.Errorf("quantity = %v, want 20 (2%% of equity)", action.QuantityDelta)
	}
}

func TestSizeMaxPositions(t *testing.T) {
	params := testRiskParams()
	params.MaxPositions = 1
	eng := NewRiskEngine(params)

	state := heldState(models.Position{Symbol: "AAPL", Quantity: 10, EntryPrice: 100})
	rec := models.Recommendation{Symbol: "MSFT", Action: models.ActionBuy, Confidence: 1}
	action, err := eng.Size(rec, state, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Kind != models.ActionKindNone {
		t.Fatalf("kind = %s, want NONE with the portfolio full", action.Kind)
	}
}

func TestSizeMissingPrice(t *testing.T) {
	eng := NewRiskEngine(testRiskParams())

	rec := models.Recommendation{Symbol: "MSFT", Action: models.ActionBuy, Confidence: 1}
	action, err := eng.Size(rec, emptyState(), 0)
	if !errors.Is(err, models.ErrMissingPrice) {
		t.Fatalf("err = %v, want ErrMissingPrice", err)
	}
	if action.Kind != models.ActionKindNone {
		t.Fatalf("kind = %s, want NONE on a data gap", action.Kind)
	}
}

func TestSizeZeroConfidenceBuy(t *testing.T) {
	eng := NewRiskEngine(testRiskParams())

	rec := models.Recommendation{Symbol: "MSFT", Action: models.ActionBuy, Confidence: 0}
	action, err := eng.Size(rec, emptyState(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Kind != models.ActionKindNone {
		t.Fatalf("kind = %s, want NONE when conviction sizes to zero", action.Kind)
	}
}
