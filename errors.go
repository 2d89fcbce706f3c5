package hdc

import "errors"

// Sentinel errors every encoder in this module surfaces. Wrap with
// fmt.Errorf("...: %w", ErrX) for call-site context; test with
// errors.Is(err, hdc.ErrX).
var (
	// ErrPopulationTooSmall is returned when a caller-supplied population
	// has fewer than max_nbits usable bits.
	ErrPopulationTooSmall = errors.New("hdc: population too small")

	// ErrPopulationExhausted is returned when, during numeric codebook
	// extension, no bit remains in pool \ current codeword.
	ErrPopulationExhausted = errors.New("hdc: population exhausted")

	// ErrInvalidParameter is returned for a non-positive dimension, a
	// sparsity outside (0, 1], a non-positive q_step, or a learn rate
	// outside [0, 1].
	ErrInvalidParameter = errors.New("hdc: invalid parameter")

	// ErrSerialization is the sentinel for persistence failures. The persist
	// package does not wrap it: its codec and MemStore errors wrap the
	// underlying I/O error or carry a plain message instead.
	ErrSerialization = errors.New("hdc: serialization error")
)
