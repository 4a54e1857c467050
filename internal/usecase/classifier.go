package usecase

import (
	"fmt"

	"StockPilot/internal/domain/models"
)

// Thresholds is the recognized classification configuration surface.
type Thresholds struct {
	Buy               float64
	Sell              float64
	MinAgreeingLayers int
}

// Classify turns an aggregated score into a trade direction.
//
// Entries are gated: BUY needs the combined score at or above the buy
// threshold and at least MinAgreeingLayers layers individually bullish.
// Exits are deliberately more permissive: the combined score crossing the
// sell threshold, or any single layer crossing it on its own, triggers
// SELL with no agreement requirement. Everything else is HOLD.
func Classify(score models.AggregatedScore, th Thresholds) (models.RecommendationAction, string) {
	if score.Combined <= th.Sell {
		return models.ActionSell, fmt.Sprintf("combined %.3f <= sell threshold %.3f", score.Combined, th.Sell)
	}
	for _, layer := range orderedLayers(score) {
		if ls := score.LayerScores[layer]; ls <= th.Sell {
			return models.ActionSell, fmt.Sprintf("%s layer %.3f <= sell threshold %.3f", layer, ls, th.Sell)
		}
	}

	if score.Combined >= th.Buy {
		bullish := 0
		for _, ls := range score.LayerScores {
			if ls > 0 {
				bullish++
			}
		}
		if bullish >= th.MinAgreeingLayers {
			return models.ActionBuy, fmt.Sprintf("combined %.3f >= buy threshold %.3f with %d bullish layers", score.Combined, th.Buy, bullish)
		}
		return models.ActionHold, fmt.Sprintf("combined %.3f above buy threshold but only %d of %d required layers bullish", score.Combined, bullish, th.MinAgreeingLayers)
	}

	return models.ActionHold, fmt.Sprintf("combined %.3f inside hold band", score.Combined)
}

func orderedLayers(score models.AggregatedScore) []models.Layer {
	out := make([]models.Layer, 0, len(score.LayerScores))
	for _, l := range []models.Layer{models.LayerFundamental, models.LayerSentiment, models.LayerTechnical} {
		if _, ok := score.LayerScores[l]; ok {
			out = append(out, l)
		}
	}
	return out
}
