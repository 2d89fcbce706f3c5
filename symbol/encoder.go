// Package symbol implements SymbolEncoder: it assigns each distinct symbol
// a stable, randomly chosen k-of-N bit pattern and decodes a noisy pattern
// back to a ranked list of symbols by weight accumulation.
package symbol

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/samdb/go-hdc"
)

// Encoder assigns symbols stable, randomly distributed bit patterns.
// Safe for concurrent use: reads of already-known symbols take a read
// lock, any new assignment takes the full write lock, mirroring the
// teacher's own lazy double-checked-lock symbol table.
type Encoder struct {
	mu sync.RWMutex

	dimension int
	maxNbits  int
	seed      int64
	rng       *rand.Rand
	normalize bool

	symbols map[hdc.Symbol][]int        // symbol -> its max_nbits bits
	bits    map[int]map[hdc.Symbol]bool // bit -> symbols using it
	order   []hdc.Symbol                // insertion order, for Symbols() and decode tie-breaks
	rank    map[hdc.Symbol]int          // symbol -> index in order
}

// Option configures an Encoder at construction time.
type Option func(*Encoder)

// WithUnicodeNormalization runs NFC Unicode normalization on string symbols
// before they are used as map keys, so that two symbols that are visually
// identical but encoded with different Unicode normalization forms collide
// instead of silently aliasing to distinct codewords. Off by default: the
// reference implementation keys on the exact string, and leaving this off
// reproduces that behavior bit-for-bit.
func WithUnicodeNormalization() Option {
	return func(e *Encoder) { e.normalize = true }
}

// New constructs a SymbolEncoder. dimension must be positive and sparsity
// must be in (0, 1]; otherwise it returns ErrInvalidParameter.
func New(dimension int, sparsity float64, seed int64, opts ...Option) (*Encoder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("symbol.New: dimension must be positive: %w", hdc.ErrInvalidParameter)
	}
	if sparsity <= 0 || sparsity > 1 {
		return nil, fmt.Errorf("symbol.New: sparsity must be in (0,1]: %w", hdc.ErrInvalidParameter)
	}
	maxNbits := int(sparsity * float64(dimension))
	if maxNbits < 1 {
		maxNbits = 1
	}
	e := &Encoder{
		dimension: dimension,
		maxNbits:  maxNbits,
		seed:      seed,
		rng:       rand.New(rand.NewSource(seed)),
		symbols:   make(map[hdc.Symbol][]int),
		bits:      make(map[int]map[hdc.Symbol]bool),
		rank:      make(map[hdc.Symbol]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Dimension returns the encoder's bit population size.
func (e *Encoder) Dimension() int { return e.dimension }

// MaxNBits returns the active-bit budget per symbol.
func (e *Encoder) MaxNBits() int { return e.maxNbits }

func (e *Encoder) normalizeSymbol(s hdc.Symbol) hdc.Symbol {
	if e.normalize && !s.IsInt() {
		return hdc.Str(norm.NFC.String(s.String()))
	}
	return s
}

// Encode returns symbol's bit pattern, assigning one on first use. If
// population is non-nil its key set (raw bit positions) replaces the
// default [0, dimension) pool for a first-use draw; ErrPopulationTooSmall
// is returned if the pool has fewer than MaxNBits usable bits.
func (e *Encoder) Encode(sym hdc.Symbol, population *hdc.BitPattern) (hdc.BitPattern, error) {
	sym = e.normalizeSymbol(sym)

	e.mu.RLock()
	if bits, ok := e.symbols[sym]; ok {
		p := patternFromBits(bits)
		e.mu.RUnlock()
		return p, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Re-check: another writer may have assigned sym while we waited for
	// the write lock.
	if bits, ok := e.symbols[sym]; ok {
		return patternFromBits(bits), nil
	}

	pool := e.pool(population)
	if len(pool) < e.maxNbits {
		return hdc.BitPattern{}, fmt.Errorf("symbol.Encode: pool has %d bits, need %d: %w", len(pool), e.maxNbits, hdc.ErrPopulationTooSmall)
	}

	bits := hdc.SampleDistinct(e.rng, pool, e.maxNbits)
	e.symbols[sym] = bits
	e.rank[sym] = len(e.order)
	e.order = append(e.order, sym)
	for _, b := range bits {
		if e.bits[b] == nil {
			e.bits[b] = make(map[hdc.Symbol]bool)
		}
		e.bits[b][sym] = true
	}

	return patternFromBits(bits), nil
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

func patternFromBits(bits []int) hdc.BitPattern {
	p := hdc.NewBitPattern()
	for _, b := range bits {
		p.Set(hdc.RawKey(b), 1.0)
	}
	return p
}

// SymbolWeight is one entry of a Decode result: a symbol and its
// accumulated weight.
type SymbolWeight struct {
	Symbol hdc.Symbol
	Weight float64
}

// Decode accumulates, for every bit in pattern, the weight of that bit into
// every symbol that bit belongs to, and returns the symbols ranked by
// descending weight. Ties break by first-seen (insertion) order. Bits never
// observed by this encoder are silently ignored.
func (e *Encoder) Decode(pattern hdc.BitPattern) []SymbolWeight {
	e.mu.RLock()
	defer e.mu.RUnlock()

	weight := make(map[hdc.Symbol]float64)
	for _, k := range pattern.Keys() {
		if k.Label != "" {
			continue
		}
		syms, ok := e.bits[k.Bit]
		if !ok {
			continue
		}
		w := pattern.Get(k)
		for sym := range syms {
			weight[sym] += w
		}
	}

	out := make([]SymbolWeight, 0, len(weight))
	for sym, w := range weight {
		out = append(out, SymbolWeight{Symbol: sym, Weight: w})
	}
	sortByWeightDesc(out, e.rank)
	return out
}

// sortByWeightDesc sorts by descending weight; ties break by first-seen
// (insertion) order, matching the reference's stable sort on (weight, -seen).
func sortByWeightDesc(out []SymbolWeight, rank map[hdc.Symbol]int) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return rank[out[i].Symbol] < rank[out[j].Symbol]
	})
}

// Symbols returns every symbol known to this encoder, in the order each
// was first encoded.
func (e *Encoder) Symbols() []hdc.Symbol {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]hdc.Symbol, len(e.order))
	copy(out, e.order)
	return out
}
