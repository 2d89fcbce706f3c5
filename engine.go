package hdc

import (
	"fmt"

	"github.com/samdb/go-hdc/esdr"
	"github.com/samdb/go-hdc/numeric"
	"github.com/samdb/go-hdc/symbol"
)

// Engine bundles the three encoders a typical application needs together —
// one to turn field names into per-field bit populations, one for string
// values, one for numeric values — plus a bounded recall bank, all sharing
// a single dimension and sparsity budget. It is a convenience: every piece
// it wires together is independently usable through the symbol, numeric
// and esdr packages directly.
type Engine struct {
	fieldEncoder  *symbol.Encoder
	symbolEncoder *symbol.Encoder
	numericEncoder *numeric.Encoder
	bank          *esdr.Bank
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*engineOptions)

type engineOptions struct {
	dims           int
	sparsity       float64
	qStep          float64
	fieldSeed      int64
	symbolSeed     int64
	numericSeed    int64
	bankCapacity   int
	bankThreshold  float64
	normalizeSyms  bool
}

func defaultEngineOptions() engineOptions {
	return engineOptions{
		dims:          2048,
		sparsity:      0.02,
		qStep:         1.0,
		fieldSeed:     1,
		symbolSeed:    2,
		numericSeed:   3,
		bankCapacity:  1024,
		bankThreshold: 0.82,
	}
}

// WithDimension sets the shared bit population size for all three encoders
// (default 2048).
func WithDimension(n int) EngineOption { return func(o *engineOptions) { o.dims = n } }

// WithSparsity sets the active-bit fraction per symbol/level (default 0.02).
func WithSparsity(s float64) EngineOption { return func(o *engineOptions) { o.sparsity = s } }

// WithQuantizationStep sets the numeric encoder's level granularity
// (default 1.0).
func WithQuantizationStep(step float64) EngineOption {
	return func(o *engineOptions) { o.qStep = step }
}

// WithSeeds sets the three encoders' independent PRNG seeds (defaults
// 1, 2, 3). Engines built with different seeds produce incompatible bit
// patterns even over the same dimension and sparsity.
func WithSeeds(field, symbolSeed, numericSeed int64) EngineOption {
	return func(o *engineOptions) {
		o.fieldSeed = field
		o.symbolSeed = symbolSeed
		o.numericSeed = numericSeed
	}
}

// WithRecallBank sets the bank's capacity and similarity threshold (default
// 1024 entries, threshold 0.82).
func WithRecallBank(capacity int, threshold float64) EngineOption {
	return func(o *engineOptions) {
		o.bankCapacity = capacity
		o.bankThreshold = threshold
	}
}

// WithSymbolNormalization enables Unicode NFC normalization on the string
// (symbol-value) encoder. Off by default.
func WithSymbolNormalization() EngineOption {
	return func(o *engineOptions) { o.normalizeSyms = true }
}

// NewEngine constructs an Engine. Returns ErrInvalidParameter if dimension,
// sparsity or qStep are out of range.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}

	fieldEncoder, err := symbol.New(o.dims, o.sparsity, o.fieldSeed)
	if err != nil {
		return nil, fmt.Errorf("hdc.NewEngine: field encoder: %w", err)
	}

	var symOpts []symbol.Option
	if o.normalizeSyms {
		symOpts = append(symOpts, symbol.WithUnicodeNormalization())
	}
	symbolEncoder, err := symbol.New(o.dims, o.sparsity, o.symbolSeed, symOpts...)
	if err != nil {
		return nil, fmt.Errorf("hdc.NewEngine: symbol encoder: %w", err)
	}

	numericEncoder, err := numeric.New(o.dims, o.sparsity, o.qStep, o.numericSeed)
	if err != nil {
		return nil, fmt.Errorf("hdc.NewEngine: numeric encoder: %w", err)
	}

	return &Engine{
		fieldEncoder:   fieldEncoder,
		symbolEncoder:  symbolEncoder,
		numericEncoder: numericEncoder,
		bank:           esdr.NewBank(o.bankCapacity, o.bankThreshold),
	}, nil
}

// FieldEncoder returns the encoder used to derive per-field bit populations.
func (eng *Engine) FieldEncoder() *symbol.Encoder { return eng.fieldEncoder }

// SymbolEncoder returns the encoder used for string field values.
func (eng *Engine) SymbolEncoder() *symbol.Encoder { return eng.symbolEncoder }

// NumericEncoder returns the encoder used for numeric field values.
func (eng *Engine) NumericEncoder() *numeric.Encoder { return eng.numericEncoder }

// Bank returns the engine's bounded recall bank.
func (eng *Engine) Bank() *esdr.Bank { return eng.bank }

// Remember composes record into a new ESDR via esdr.SetValue, stores it in
// the recall bank under name, and returns the memory plus the field-kind
// map SetValue reports.
func (eng *Engine) Remember(name string, record esdr.Record) (*esdr.ESDR, map[string]esdr.FieldKind, error) {
	mem := esdr.New()
	fields, err := mem.SetValue(record, eng.fieldEncoder, eng.symbolEncoder, eng.numericEncoder)
	if err != nil {
		return nil, nil, fmt.Errorf("hdc.Engine.Remember: %w", err)
	}
	eng.bank.Put(name, mem)
	return mem, fields, nil
}

// Recall composes record into a probe ESDR the same way Remember does, then
// looks up the most similar remembered memory via the recall bank.
func (eng *Engine) Recall(record esdr.Record) (name string, mem *esdr.ESDR, sim float64, ok bool, err error) {
	probe := esdr.New()
	if _, err := probe.SetValue(record, eng.fieldEncoder, eng.symbolEncoder, eng.numericEncoder); err != nil {
		return "", nil, 0, false, fmt.Errorf("hdc.Engine.Recall: %w", err)
	}
	name, mem, sim, ok = eng.bank.Recall(probe)
	return name, mem, sim, ok, nil
}
