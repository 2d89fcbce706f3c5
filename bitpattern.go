// Package hdc implements the core Hyperdimensional Computing primitives:
// a weighted sparse bit pattern (BitPattern), the tagged bit/symbol key
// types subpackages build on, the shared deterministic sampling helper, and
// the sentinel errors every encoder surfaces.
//
// The heavier machinery — SymbolEncoder, NumericEncoder, ESDR and the
// persistence port — live in the symbol, numeric, esdr and persist
// subpackages so that each concern stays independently testable.
package hdc

// BitPattern is a finite mapping from a bit identifier to a non-negative,
// finite real weight. Bits absent from the mapping are implicitly weight 0.
// The zero value is an empty pattern; Set allocates its map on first use.
type BitPattern struct {
	weights map[BitKey]float64
}

// NewBitPattern returns an empty BitPattern.
func NewBitPattern() BitPattern {
	return BitPattern{weights: make(map[BitKey]float64)}
}

// NewBitPatternFromBits returns a BitPattern with every bit in bits set to
// weight 1.0, matching the reference's default-weight construction.
func NewBitPatternFromBits(bits []BitKey) BitPattern {
	p := BitPattern{weights: make(map[BitKey]float64, len(bits))}
	for _, b := range bits {
		p.weights[b] = 1.0
	}
	return p
}

// Get returns the weight stored under k, or 0 if k is absent.
func (p BitPattern) Get(k BitKey) float64 {
	return p.weights[k]
}

// Has reports whether k has an explicit (possibly zero) weight in p.
func (p BitPattern) Has(k BitKey) bool {
	_, ok := p.weights[k]
	return ok
}

// Set stores weight w under k, overwriting any existing weight.
func (p *BitPattern) Set(k BitKey, w float64) {
	if p.weights == nil {
		p.weights = make(map[BitKey]float64)
	}
	p.weights[k] = w
}

// Delete removes k from the pattern, if present.
func (p *BitPattern) Delete(k BitKey) {
	delete(p.weights, k)
}

// Len returns the number of bits stored in the pattern, including any whose
// weight was explicitly set to 0.
func (p BitPattern) Len() int {
	return len(p.weights)
}

// Keys returns the pattern's bit keys. Order is unspecified.
func (p BitPattern) Keys() []BitKey {
	keys := make([]BitKey, 0, len(p.weights))
	for k := range p.weights {
		keys = append(keys, k)
	}
	return keys
}

// SumOfWeights returns the sum of all weights in the pattern.
func (p BitPattern) SumOfWeights() float64 {
	var sum float64
	for _, w := range p.weights {
		sum += w
	}
	return sum
}

// Clone returns an independent deep copy of p.
func (p BitPattern) Clone() BitPattern {
	out := make(map[BitKey]float64, len(p.weights))
	for k, w := range p.weights {
		out[k] = w
	}
	return BitPattern{weights: out}
}

// WeightedIntersection returns the sum, over bits present in both a and b,
// of the smaller of the two weights: Σ_{k∈keys(a)∩keys(b)} min(a[k], b[k]).
func WeightedIntersection(a, b BitPattern) float64 {
	// Iterate the smaller map for efficiency; result is symmetric.
	small, large := a, b
	if len(b.weights) < len(a.weights) {
		small, large = b, a
	}
	var sum float64
	for k, w := range small.weights {
		if lw, ok := large.weights[k]; ok {
			if w < lw {
				sum += w
			} else {
				sum += lw
			}
		}
	}
	return sum
}
