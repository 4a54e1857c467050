package models

import "errors"

var (
	// ErrInsufficientHistory marks a series too short for an indicator's
	// lookback. Per-symbol, non-fatal: the reading is excluded from
	// aggregation and the remaining weights renormalized.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrUnknownRegime marks a regime label the weight resolver has no
	// profile for. Configuration defect, fatal to the run.
	ErrUnknownRegime = errors.New("unknown regime")

	// ErrMissingPrice marks a symbol the risk engine cannot size because
	// no current price is available. Degrades to a NONE action.
	ErrMissingPrice = errors.New("missing current price")

	// ErrInvalidWeightProfile marks weights that violate the sum-to-one
	// invariant. Fatal at configuration load.
	ErrInvalidWeightProfile = errors.New("invalid weight profile")
)
