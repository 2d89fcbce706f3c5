// Package numeric implements NumericEncoder: an on-demand algorithm that
// lazily extends an ordered codebook of quantized levels so that
// numerically close values share a controlled fraction of bits, while
// distant values share effectively none, under a strict sparsity budget.
//
// This is the central algorithm of the module. See the package-level
// invariants in the project's SPEC_FULL.md §4.C for the exact extension
// rules; this file implements them verbatim, including the corrected
// reverse-index update (the newly created level, not the requesting value).
package numeric

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/samdb/go-hdc"
)

// Encoder incrementally extends an ordered codebook of quantized levels.
// Safe for concurrent use: reads of already-covered levels take a read
// lock, any codebook extension takes the full write lock.
type Encoder struct {
	mu sync.RWMutex

	dimension int
	maxNbits  int
	qStep     float64
	seed      int64
	rng       *rand.Rand

	qValue map[int64][]int   // level index -> ordered codeword
	bits   map[int][]int64   // bit -> level indices containing it

	haveRange     bool
	lowerIdx      int64
	upperIdx      int64
	lowerBitIndex int
	upperBitIndex int
}

// New constructs a NumericEncoder. dimension must be positive, sparsity
// must be in (0, 1], and qStep must be positive; otherwise it returns
// ErrInvalidParameter.
func New(dimension int, sparsity float64, qStep float64, seed int64) (*Encoder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("numeric.New: dimension must be positive: %w", hdc.ErrInvalidParameter)
	}
	if sparsity <= 0 || sparsity > 1 {
		return nil, fmt.Errorf("numeric.New: sparsity must be in (0,1]: %w", hdc.ErrInvalidParameter)
	}
	if qStep <= 0 {
		return nil, fmt.Errorf("numeric.New: q_step must be positive: %w", hdc.ErrInvalidParameter)
	}
	maxNbits := int(sparsity * float64(dimension))
	if maxNbits < 1 {
		maxNbits = 1
	}
	return &Encoder{
		dimension:     dimension,
		maxNbits:      maxNbits,
		qStep:         qStep,
		seed:          seed,
		rng:           rand.New(rand.NewSource(seed)),
		qValue:        make(map[int64][]int),
		bits:          make(map[int][]int64),
		upperBitIndex: 0,
		lowerBitIndex: maxNbits - 1,
	}, nil
}

// Dimension returns the encoder's bit population size.
func (e *Encoder) Dimension() int { return e.dimension }

// MaxNBits returns the active-bit budget per quantized level.
func (e *Encoder) MaxNBits() int { return e.maxNbits }

// QStep returns the quantization granularity.
func (e *Encoder) QStep() float64 { return e.qStep }

func (e *Encoder) quantize(x float64) int64 {
	return int64(math.Floor(x / e.qStep))
}

func (e *Encoder) levelValue(idx int64) float64 {
	return float64(idx) * e.qStep
}

// Encode quantizes numeric and returns its codeword, extending the
// codebook as needed so that every level within (maxNbits-1) steps of the
// quantized value is already present. If population is non-nil its key set
// (raw bit positions) replaces the default [0, dimension) pool for any
// extension this call triggers.
func (e *Encoder) Encode(numeric float64, population *hdc.BitPattern) (hdc.BitPattern, error) {
	idx := e.quantize(numeric)
	windowSteps := int64(e.maxNbits - 1)

	e.mu.RLock()
	if e.covers(idx, windowSteps) {
		p := patternFromCodeword(e.qValue[idx])
		e.mu.RUnlock()
		return p, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Re-check: another writer may have covered idx while we waited.
	if e.covers(idx, windowSteps) {
		return patternFromCodeword(e.qValue[idx]), nil
	}

	pool := e.pool(population)

	if !e.haveRange {
		if len(pool) < e.maxNbits {
			return hdc.BitPattern{}, fmt.Errorf("numeric.Encode: pool has %d bits, need %d: %w", len(pool), e.maxNbits, hdc.ErrPopulationTooSmall)
		}
		start := idx - windowSteps
		codeword := hdc.SampleDistinct(e.rng, pool, e.maxNbits)

		upSteps, newUpperIdx, newUpperBitIndex, err := e.planUpward(start, codeword, e.upperBitIndex, idx+windowSteps, pool)
		if err != nil {
			return hdc.BitPattern{}, err
		}

		// Commit: install start's own codeword, then every planned step.
		e.qValue[start] = codeword
		e.appendReverse(start, codeword)
		for _, step := range upSteps {
			e.qValue[step.level] = step.codeword
			e.appendReverse(step.level, step.codeword)
		}
		e.haveRange = true
		e.lowerIdx = start
		if len(upSteps) > 0 {
			e.upperIdx = newUpperIdx
			e.upperBitIndex = newUpperBitIndex
		} else {
			e.upperIdx = start
		}
		return patternFromCodeword(e.qValue[idx]), nil
	}

	var upSteps, downSteps []codebookStep
	newUpperIdx, newLowerIdx := e.upperIdx, e.lowerIdx
	newUpperBitIndex, newLowerBitIndex := e.upperBitIndex, e.lowerBitIndex

	if target := idx + windowSteps; target > e.upperIdx {
		steps, nu, nbi, err := e.planUpward(e.upperIdx, e.qValue[e.upperIdx], e.upperBitIndex, target, pool)
		if err != nil {
			return hdc.BitPattern{}, err
		}
		upSteps, newUpperIdx, newUpperBitIndex = steps, nu, nbi
	}
	if target := idx - windowSteps; target < e.lowerIdx {
		steps, nl, nbi, err := e.planDownward(e.lowerIdx, e.qValue[e.lowerIdx], e.lowerBitIndex, target, pool)
		if err != nil {
			return hdc.BitPattern{}, err
		}
		downSteps, newLowerIdx, newLowerBitIndex = steps, nl, nbi
	}

	for _, step := range upSteps {
		e.qValue[step.level] = step.codeword
		e.appendReverse(step.level, step.codeword)
	}
	for _, step := range downSteps {
		e.qValue[step.level] = step.codeword
		e.appendReverse(step.level, step.codeword)
	}
	if len(upSteps) > 0 {
		e.upperIdx, e.upperBitIndex = newUpperIdx, newUpperBitIndex
	}
	if len(downSteps) > 0 {
		e.lowerIdx, e.lowerBitIndex = newLowerIdx, newLowerBitIndex
	}

	return patternFromCodeword(e.qValue[idx]), nil
}

type codebookStep struct {
	level    int64
	codeword []int
}

// planUpward computes, without mutating encoder state, the sequence of
// codewords needed to extend the codebook from fromLevel (whose codeword is
// fromCodeword) up to target, rotating the replaced bit position starting
// at bitIndex. It returns the steps in level order, the final upper level
// reached, and the bit index to resume rotation from on the next call.
func (e *Encoder) planUpward(fromLevel int64, fromCodeword []int, bitIndex int, target int64, pool []int) ([]codebookStep, int64, int, error) {
	var steps []codebookStep
	cur := append([]int(nil), fromCodeword...)
	curLevel := fromLevel
	for curLevel < target {
		next := append([]int(nil), cur...)
		exclude := toSet(next)
		chosen, ok := hdc.ChooseExcluding(e.rng, pool, exclude)
		if !ok {
			return nil, 0, 0, fmt.Errorf("numeric.Encode: no bit available to extend upward: %w", hdc.ErrPopulationExhausted)
		}
		next[bitIndex] = chosen
		bitIndex = (bitIndex + 1) % e.maxNbits
		curLevel++
		steps = append(steps, codebookStep{level: curLevel, codeword: next})
		cur = next
	}
	return steps, curLevel, bitIndex, nil
}

// planDownward is the mirror of planUpward: bitIndex rotates downward,
// wrapping from 0 to maxNbits-1.
func (e *Encoder) planDownward(fromLevel int64, fromCodeword []int, bitIndex int, target int64, pool []int) ([]codebookStep, int64, int, error) {
	var steps []codebookStep
	cur := append([]int(nil), fromCodeword...)
	curLevel := fromLevel
	for curLevel > target {
		next := append([]int(nil), cur...)
		exclude := toSet(next)
		chosen, ok := hdc.ChooseExcluding(e.rng, pool, exclude)
		if !ok {
			return nil, 0, 0, fmt.Errorf("numeric.Encode: no bit available to extend downward: %w", hdc.ErrPopulationExhausted)
		}
		next[bitIndex] = chosen
		bitIndex--
		if bitIndex < 0 {
			bitIndex = e.maxNbits - 1
		}
		curLevel--
		steps = append(steps, codebookStep{level: curLevel, codeword: next})
		cur = next
	}
	return steps, curLevel, bitIndex, nil
}

func toSet(bits []int) map[int]bool {
	set := make(map[int]bool, len(bits))
	for _, b := range bits {
		set[b] = true
	}
	return set
}

func (e *Encoder) appendReverse(level int64, codeword []int) {
	for _, b := range codeword {
		e.bits[b] = append(e.bits[b], level)
	}
}

// covers reports whether the codebook already contains both idx+window and
// idx-window, which (by construction, the codebook is contiguous) implies
// idx itself is already covered.
func (e *Encoder) covers(idx, window int64) bool {
	if !e.haveRange {
		return false
	}
	_, hasUpper := e.qValue[idx+window]
	_, hasLower := e.qValue[idx-window]
	return hasUpper && hasLower
}

func (e *Encoder) pool(population *hdc.BitPattern) []int {
	if population == nil {
		return hdc.SortedKeys(e.dimension)
	}
	keys := population.Keys()
	pool := make([]int, 0, len(keys))
	for _, k := range keys {
		pool = append(pool, k.Bit)
	}
	return pool
}

func patternFromCodeword(codeword []int) hdc.BitPattern {
	p := hdc.NewBitPattern()
	for _, b := range codeword {
		p.Set(hdc.RawKey(b), 1.0)
	}
	return p
}

// Decode accumulates, for every bit in pattern, the weight of that bit
// into every quantized level that bit belongs to, and returns the level
// with the highest accumulated weight (ties go to whichever level first
// reaches the maximum as bits are processed in ascending bit order — a
// deterministic stand-in for the reference's dict-insertion-order
// tie-break, since this port's BitPattern has no ordering of its own),
// its weight, and the full distribution sorted ascending by level.
func (e *Encoder) Decode(pattern hdc.BitPattern) (bestValue float64, bestWeight float64, distribution []LevelWeight) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys := pattern.Keys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].Bit < keys[j].Bit })

	weight := make(map[int64]float64)
	var bestLevel int64
	haveBest := false
	for _, k := range keys {
		if k.Label != "" {
			continue
		}
		levels, ok := e.bits[k.Bit]
		if !ok {
			continue
		}
		w := pattern.Get(k)
		for _, lvl := range levels {
			weight[lvl] += w
			if !haveBest || weight[lvl] > bestWeight {
				bestWeight = weight[lvl]
				bestLevel = lvl
				haveBest = true
			}
		}
	}

	if !haveBest {
		return 0, 0, nil
	}

	levels := make([]int64, 0, len(weight))
	for lvl := range weight {
		levels = append(levels, lvl)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	distribution = make([]LevelWeight, len(levels))
	for i, lvl := range levels {
		distribution[i] = LevelWeight{Value: e.levelValue(lvl), Weight: weight[lvl]}
	}

	return e.levelValue(bestLevel), bestWeight, distribution
}

// LevelWeight is one entry of a Decode distribution: a quantized value and
// its accumulated weight.
type LevelWeight struct {
	Value  float64
	Weight float64
}

// QuantisedValues returns every quantized level known to this encoder, in
// ascending numeric order.
func (e *Encoder) QuantisedValues() []float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idxs := make([]int64, 0, len(e.qValue))
	for idx := range e.qValue {
		idxs = append(idxs, idx)
	}
	sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })

	out := make([]float64, len(idxs))
	for i, idx := range idxs {
		out[i] = e.levelValue(idx)
	}
	return out
}
