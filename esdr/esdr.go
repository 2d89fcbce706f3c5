// Package esdr implements the Extended SDR (ESDR): a weighted
// high-dimensional memory that composes, compares and generalizes bit
// patterns produced by the symbol and numeric encoders.
package esdr

import (
	"fmt"

	"github.com/samdb/go-hdc"
)

// ESDR is a BitPattern plus its cached sum of weights. It is a generalized
// memory of a data concept: a randomly distributed weighted sparse
// high-dimensional bit pattern. Similar data concepts share a proportion of
// the same bits; dissimilar concepts share few or none.
type ESDR struct {
	bits    hdc.BitPattern
	sumBits float64
}

// New returns an empty ESDR.
func New() *ESDR {
	return &ESDR{bits: hdc.NewBitPattern()}
}

// NewFromBits returns an ESDR whose bits all start at weight 1.0, matching
// the reference's construction from a raw iterable of bits.
func NewFromBits(bits []hdc.BitKey) *ESDR {
	e := &ESDR{bits: hdc.NewBitPatternFromBits(bits)}
	e.sumBits = e.bits.SumOfWeights()
	return e
}

// Copy returns an independent deep copy of other.
func Copy(other *ESDR) *ESDR {
	return &ESDR{bits: other.bits.Clone(), sumBits: other.sumBits}
}

// Bits returns the ESDR's current bit pattern.
func (e *ESDR) Bits() hdc.BitPattern { return e.bits }

// SumBits returns the cached sum of all weights in the pattern.
func (e *ESDR) SumBits() float64 { return e.sumBits }

// Overlap returns the weighted intersection of e's bits with other's:
// Σ_{k∈keys(e)∩keys(other)} min(e[k], other[k]). O(size of the smaller
// pattern).
func (e *ESDR) Overlap(other *ESDR) float64 {
	return hdc.WeightedIntersection(e.bits, other.bits)
}

// Similarity returns Overlap(other)/SumBits(), or 0 if SumBits is 0. This is
// asymmetric by design: a.Similarity(b) need not equal b.Similarity(a).
func (e *ESDR) Similarity(other *ESDR) float64 {
	if e.sumBits <= 0 {
		return 0
	}
	return e.Overlap(other) / e.sumBits
}

// Learn performs an online weighted moving average of e toward other, over
// the union of their bits: for a bit in both, self = (1-rate)*self +
// rate*other; for a bit only in self, self = (1-rate)*self; for a bit only
// in other, self = rate*other. rate must be in [0, 1]; at rate=0 e is
// unchanged, at rate=1 e becomes a weight-wise copy of other. Generalization
// (retaining features common to many learned patterns) requires rate < 1.
func (e *ESDR) Learn(other *ESDR, rate float64) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("esdr.Learn: rate must be in [0,1]: %w", hdc.ErrInvalidParameter)
	}
	invRate := 1 - rate

	seen := make(map[hdc.BitKey]bool)
	for _, k := range e.bits.Keys() {
		seen[k] = true
	}
	for _, k := range other.bits.Keys() {
		seen[k] = true
	}

	next := hdc.NewBitPattern()
	var sum float64
	for k := range seen {
		inSelf := e.bits.Has(k)
		inOther := other.bits.Has(k)

		var w float64
		switch {
		case inSelf && inOther:
			w = e.bits.Get(k)*invRate + rate*other.bits.Get(k)
		case inSelf:
			w = e.bits.Get(k) * invRate
		default:
			w = rate * other.bits.Get(k)
		}
		if w == 0 {
			// absent bits already read as weight 0; storing them would make
			// rate=0 adopt other's keys and rate=1 keep self-only keys.
			continue
		}
		next.Set(k, w)
		sum += w
	}

	e.bits = next
	e.sumBits = sum
	return nil
}

// Bundle merges other's bits into e. If label is non-empty, the merged keys
// are tagged (label, bit) so bundled fields remain distinguishable from
// e's existing bits; otherwise other's raw keys are merged directly, which
// silently overwrites any of e's bits at the same key. This overwrite-on-
// collision behavior is intentional: it matches the reference
// implementation, which never guards an unlabeled Bundle against collision.
func (e *ESDR) Bundle(other *ESDR, label string) {
	for _, k := range other.bits.Keys() {
		w := other.bits.Get(k)
		if label != "" {
			e.bits.Set(hdc.LabeledKey(label, k.Bit), w)
		} else {
			e.bits.Set(k, w)
		}
	}
	e.sumBits = e.bits.SumOfWeights()
}
