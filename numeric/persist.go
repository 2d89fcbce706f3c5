package numeric

import (
	"sort"

	"github.com/samdb/go-hdc/persist"
)

// Serialize captures the encoder's full state — deterministic parameters
// plus every quantized level installed so far — as a persist.NumericState,
// ready for persist.EncodeNumericState.
func (e *Encoder) Serialize() persist.NumericState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idxs := make([]int64, 0, len(e.qValue))
	for idx := range e.qValue {
		idxs = append(idxs, idx)
	}
	sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })

	levels := make([]int64, len(idxs))
	codewords := make([][]int, len(idxs))
	for i, idx := range idxs {
		levels[i] = idx
		codewords[i] = append([]int(nil), e.qValue[idx]...)
	}

	return persist.NumericState{
		Dimension:     e.dimension,
		MaxNBits:      e.maxNbits,
		Sparsity:      float64(e.maxNbits) / float64(e.dimension),
		QStep:         e.qStep,
		Seed:          e.seed,
		HaveRange:     e.haveRange,
		LowerIdx:      e.lowerIdx,
		UpperIdx:      e.upperIdx,
		LowerBitIndex: e.lowerBitIndex,
		UpperBitIndex: e.upperBitIndex,
		Levels:        levels,
		Codewords:     codewords,
	}
}

// Restore rebuilds an Encoder from a previously captured persist.NumericState.
// The rebuilt encoder's PRNG is re-seeded from the saved seed but its
// position is not replayed — any subsequent codebook extension samples
// fresh randomness rather than reproducing the exact draw sequence the
// original encoder would have made next. This matches the codebook state
// itself being the thing worth persisting, not bit-for-bit replay of an
// encoder's future extensions.
func Restore(s persist.NumericState) (*Encoder, error) {
	e, err := New(s.Dimension, s.Sparsity, s.QStep, s.Seed)
	if err != nil {
		return nil, err
	}
	e.maxNbits = s.MaxNBits
	e.haveRange = s.HaveRange
	e.lowerIdx = s.LowerIdx
	e.upperIdx = s.UpperIdx
	e.lowerBitIndex = s.LowerBitIndex
	e.upperBitIndex = s.UpperBitIndex

	for i, level := range s.Levels {
		codeword := append([]int(nil), s.Codewords[i]...)
		e.qValue[level] = codeword
		e.appendReverse(level, codeword)
	}

	return e, nil
}
