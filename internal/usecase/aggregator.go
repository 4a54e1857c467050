package usecase

import (
	"fmt"
	"sort"

	"StockPilot/internal/domain/models"
	"StockPilot/internal/services/regime"
)

// SignalAggregator combines normalized signal readings into a single
// confidence-scored aggregate under the regime-selected weighting.
type SignalAggregator struct {
	resolver *regime.Resolver
}

func NewSignalAggregator(resolver *regime.Resolver) *SignalAggregator {
	return &SignalAggregator{resolver: resolver}
}

// Aggregate blends readings into per-layer scores and a combined score.
//
// Within a layer, configured weights are renormalized over the signals
// actually present, so a missing indicator redistributes its weight
// instead of dragging the layer toward zero. Across layers the
// regime-selected weights are applied exactly as configured, never
// renormalized, so an absent layer simply contributes nothing.
//
// Confidence is directional consensus: the fraction of contributing
// signals whose sign matches the combined score's sign, and 0 when the
// combined score is 0.
func (a *SignalAggregator) Aggregate(readings []models.SignalReading, reg models.Regime) (models.AggregatedScore, error) {
	cross, err := a.resolver.CrossWeights(reg)
	if err != nil {
		return models.AggregatedScore{}, err
	}

	byLayer := make(map[models.Layer][]models.SignalReading)
	for _, r := range readings {
		byLayer[r.Layer] = append(byLayer[r.Layer], r)
	}

	score := models.AggregatedScore{
		LayerScores:  make(map[models.Layer]float64, len(byLayer)),
		Contributing: make([]models.SignalReading, 0, len(readings)),
	}

	layers := make([]models.Layer, 0, len(byLayer))
	for layer := range byLayer {
		layers = append(layers, layer)
	}
	sort.Slice(layers, func(i, j int) bool { return layers[i] < layers[j] })

	for _, layer := range layers {
		group := byLayer[layer]
		layerScore, err := a.layerScore(layer, group, reg)
		if err != nil {
			return models.AggregatedScore{}, err
		}
		score.LayerScores[layer] = layerScore
		score.Combined += cross[layer] * layerScore
		score.Contributing = append(score.Contributing, group...)
	}

	if score.Combined != 0 {
		agreeing := 0
		for _, r := range score.Contributing {
			if (r.Normalized > 0) == (score.Combined > 0) && r.Normalized != 0 {
				agreeing++
			}
		}
		score.Confidence = float64(agreeing) / float64(len(score.Contributing))
	}
	return score, nil
}

// layerScore computes the weighted blend for one layer, renormalizing the
// configured weights over the signals present. Layers without configured
// weights (the fundamental/sentiment extension points) weight readings
// equally.
func (a *SignalAggregator) layerScore(layer models.Layer, group []models.SignalReading, reg models.Regime) (float64, error) {
	if layer != models.LayerTechnical {
		sum := 0.0
		for _, r := range group {
			sum += r.Normalized * r.Strength
		}
		return sum / float64(len(group)), nil
	}

	profile, err := a.resolver.SignalProfile(reg)
	if err != nil {
		return 0, err
	}

	totalWeight := 0.0
	for _, r := range group {
		w, ok := profile.Weights[r.Name]
		if !ok {
			return 0, fmt.Errorf("no weight configured for signal %q in regime %s", r.Name, reg)
		}
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0, nil
	}

	score := 0.0
	for _, r := range group {
		score += profile.Weights[r.Name] / totalWeight * r.Normalized * r.Strength
	}
	return score, nil
}
