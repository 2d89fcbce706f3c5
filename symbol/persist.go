package symbol

import (
	"github.com/samdb/go-hdc"
	"github.com/samdb/go-hdc/persist"
)

// Serialize captures the encoder's full state — deterministic parameters
// plus every symbol assignment made so far, in assignment order — as a
// persist.SymbolState, ready for persist.EncodeSymbolState.
func (e *Encoder) Serialize() persist.SymbolState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	symbols := make([]persist.SymbolKey, len(e.order))
	codewords := make([][]int, len(e.order))
	for i, sym := range e.order {
		symbols[i] = toSymbolKey(sym)
		codewords[i] = append([]int(nil), e.symbols[sym]...)
	}

	return persist.SymbolState{
		Dimension: e.dimension,
		MaxNBits:  e.maxNbits,
		Sparsity:  float64(e.maxNbits) / float64(e.dimension),
		Seed:      e.seed,
		Symbols:   symbols,
		Codewords: codewords,
	}
}

// Restore rebuilds an Encoder from a previously captured persist.SymbolState.
// As with numeric.Restore, the rebuilt PRNG starts fresh from the saved seed
// rather than replaying the exact draw sequence already consumed by the
// assignments being restored; only the codebook itself is reproduced
// exactly.
func Restore(s persist.SymbolState, opts ...Option) (*Encoder, error) {
	e, err := New(s.Dimension, s.Sparsity, s.Seed, opts...)
	if err != nil {
		return nil, err
	}
	e.maxNbits = s.MaxNBits

	for i, key := range s.Symbols {
		sym := fromSymbolKey(key)
		codeword := append([]int(nil), s.Codewords[i]...)
		e.symbols[sym] = codeword
		e.rank[sym] = len(e.order)
		e.order = append(e.order, sym)
		for _, b := range codeword {
			if e.bits[b] == nil {
				e.bits[b] = make(map[hdc.Symbol]bool)
			}
			e.bits[b][sym] = true
		}
	}

	return e, nil
}

func toSymbolKey(sym hdc.Symbol) persist.SymbolKey {
	if sym.IsInt() {
		return persist.SymbolKey{Num: sym.Int64(), IsInt: true}
	}
	return persist.SymbolKey{Text: sym.String()}
}

func fromSymbolKey(k persist.SymbolKey) hdc.Symbol {
	if k.IsInt {
		return hdc.Int(k.Num)
	}
	return hdc.Str(k.Text)
}
