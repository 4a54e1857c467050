package regime

import (
	"fmt"

	"StockPilot/internal/domain/models"
)

// Resolver maps a regime to its weighting profiles: the technical-layer
// signal weights and the cross-layer blend. Both tables are validated
// exhaustively at construction, so Resolve can only fail on a label
// outside the classifier's domain, which is a configuration defect.
type Resolver struct {
	signal map[models.Regime]models.WeightProfile
	cross  map[models.Regime]models.CrossLayerWeights
}

// NewResolver validates every profile's sum invariant and asserts closure:
// each regime the classifier can emit must have both tables.
func NewResolver(
	signalWeights map[models.Regime]map[string]float64,
	crossWeights map[models.Regime]map[models.Layer]float64,
) (*Resolver, error) {
	r := &Resolver{
		signal: make(map[models.Regime]models.WeightProfile, len(signalWeights)),
		cross:  make(map[models.Regime]models.CrossLayerWeights, len(crossWeights)),
	}

	for reg, weights := range signalWeights {
		profile, err := models.NewWeightProfile(models.LayerTechnical, weights)
		if err != nil {
			return nil, fmt.Errorf("regime %s: %w", reg, err)
		}
		r.signal[reg] = profile
	}
	for reg, weights := range crossWeights {
		cw := models.CrossLayerWeights(weights)
		if err := cw.Validate(); err != nil {
			return nil, fmt.Errorf("regime %s: %w", reg, err)
		}
		r.cross[reg] = cw
	}

	for _, reg := range models.AllRegimes() {
		if _, ok := r.signal[reg]; !ok {
			return nil, fmt.Errorf("%w: no signal weights for %s", models.ErrUnknownRegime, reg)
		}
		if _, ok := r.cross[reg]; !ok {
			return nil, fmt.Errorf("%w: no cross-layer weights for %s", models.ErrUnknownRegime, reg)
		}
	}
	return r, nil
}

// SignalProfile returns the technical-layer weight profile for a regime.
func (r *Resolver) SignalProfile(reg models.Regime) (models.WeightProfile, error) {
	p, ok := r.signal[reg]
	if !ok {
		return models.WeightProfile{}, fmt.Errorf("%w: %s", models.ErrUnknownRegime, reg)
	}
	return p, nil
}

// CrossWeights returns the cross-layer blend for a regime.
func (r *Resolver) CrossWeights(reg models.Regime) (models.CrossLayerWeights, error) {
	w, ok := r.cross[reg]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownRegime, reg)
	}
	return w, nil
}
