package models

import "time"

// RecommendationAction is the classified trade direction.
type RecommendationAction string

const (
	ActionBuy  RecommendationAction = "BUY"
	ActionSell RecommendationAction = "SELL"
	ActionHold RecommendationAction = "HOLD"
)

// Recommendation is the durable per-(symbol, evaluation day) decision.
// Immutable once cached for a day unless a run forces recomputation.
type Recommendation struct {
	Symbol         string
	EvaluationDate string // YYYY-MM-DD
	Action         RecommendationAction
	Score          AggregatedScore
	Confidence     float64
	Regime         Regime
	CurrentPrice   float64
	Rationale      string
	CreatedAt      time.Time
}
