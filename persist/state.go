// Package persist defines the persistence port: a storage-agnostic contract
// for saving and restoring encoder codebooks, plus a binary codec for
// serializing that state to a byte stream. It deliberately stops at the
// wire contract — a schema, connection pool, bulk loader or query builder
// for any specific database is out of scope; Store is implemented here only
// by an in-memory reference adapter.
package persist

// SymbolState is the serializable form of a symbol.Encoder's codebook: the
// deterministic parameters plus every symbol-to-codeword assignment made so
// far, in first-assigned order so Restore can replay assignment history
// identically.
type SymbolState struct {
	Dimension int
	MaxNBits  int
	Sparsity  float64
	Seed      int64

	// Symbols and Codewords are parallel slices, in assignment order:
	// Codewords[i] is the bit index list assigned to Symbols[i], in the
	// order the bits were drawn.
	Symbols   []SymbolKey
	Codewords [][]int
}

// SymbolKey is the serializable form of a hdc.Symbol: exactly one of Text or
// (Num, IsInt) is meaningful, selected by IsInt.
type SymbolKey struct {
	Text  string
	Num   int64
	IsInt bool
}

// NumericState is the serializable form of a numeric.Encoder's codebook: the
// deterministic parameters plus the full extended range of quantized levels
// and their codewords, plus the sliding-window extension cursors needed to
// resume extending the codebook exactly where it left off.
type NumericState struct {
	Dimension int
	MaxNBits  int
	Sparsity  float64
	QStep     float64
	Seed      int64

	HaveRange bool
	LowerIdx  int64
	UpperIdx  int64

	LowerBitIndex int
	UpperBitIndex int

	// Levels and Codewords are parallel slices covering [LowerIdx, UpperIdx]
	// in ascending level order.
	Levels    []int64
	Codewords [][]int
}
