package symbol_test

import (
	"testing"

	"github.com/samdb/go-hdc"
	"github.com/samdb/go-hdc/symbol"
)

func TestEncoder_New_RejectsInvalidParameters(t *testing.T) {
	if _, err := symbol.New(0, 0.1, 1); err == nil {
		t.Fatal("expected error for non-positive dimension")
	}
	if _, err := symbol.New(100, 0, 1); err == nil {
		t.Fatal("expected error for zero sparsity")
	}
	if _, err := symbol.New(100, 1.5, 1); err == nil {
		t.Fatal("expected error for sparsity > 1")
	}
}

func TestEncoder_Encode_SameSymbolIsStable(t *testing.T) {
	e, err := symbol.New(1000, 0.05, 7)
	if err != nil {
		t.Fatal(err)
	}

	a, err := e.Encode(hdc.Str("apple"), nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Encode(hdc.Str("apple"), nil)
	if err != nil {
		t.Fatal(err)
	}

	if a.Len() != e.MaxNBits() {
		t.Fatalf("want %d active bits, got %d", e.MaxNBits(), a.Len())
	}
	for _, k := range a.Keys() {
		if !b.Has(k) {
			t.Fatalf("repeated encode of the same symbol must return the same bits: missing %v", k)
		}
	}
}

func TestEncoder_Encode_DistinctSymbolsDiffer(t *testing.T) {
	e, err := symbol.New(2000, 0.05, 7)
	if err != nil {
		t.Fatal(err)
	}

	apple, err := e.Encode(hdc.Str("apple"), nil)
	if err != nil {
		t.Fatal(err)
	}
	orange, err := e.Encode(hdc.Str("orange"), nil)
	if err != nil {
		t.Fatal(err)
	}

	if hdc.WeightedIntersection(apple, orange) == apple.SumOfWeights() {
		t.Fatal("two independently drawn symbols should not be identical")
	}
}

func TestEncoder_Encode_PoolTooSmall(t *testing.T) {
	e, err := symbol.New(10, 1.0, 7)
	if err != nil {
		t.Fatal(err)
	}
	tiny := hdc.NewBitPatternFromBits([]hdc.BitKey{hdc.RawKey(0), hdc.RawKey(1)})
	_, err = e.Encode(hdc.Str("x"), &tiny)
	if err == nil {
		t.Fatal("expected ErrPopulationTooSmall")
	}
}

func TestEncoder_Decode_RanksByWeight(t *testing.T) {
	e, err := symbol.New(500, 0.05, 3)
	if err != nil {
		t.Fatal(err)
	}

	apple, err := e.Encode(hdc.Str("apple"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Encode(hdc.Str("banana"), nil); err != nil {
		t.Fatal(err)
	}

	ranked := e.Decode(apple)
	if len(ranked) == 0 {
		t.Fatal("expected at least one candidate")
	}
	if ranked[0].Symbol != hdc.Str("apple") {
		t.Fatalf("want apple to rank first by weight, got %v", ranked[0].Symbol)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Weight > ranked[i-1].Weight {
			t.Fatal("Decode result must be sorted by descending weight")
		}
	}
}

func TestEncoder_Decode_IgnoresLabeledBits(t *testing.T) {
	e, err := symbol.New(200, 0.1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Encode(hdc.Str("a"), nil); err != nil {
		t.Fatal(err)
	}

	p := hdc.NewBitPattern()
	p.Set(hdc.LabeledKey("field", 0), 1.0)
	if got := e.Decode(p); len(got) != 0 {
		t.Fatalf("labeled bits must not resolve to raw symbol assignments, got %v", got)
	}
}

func TestEncoder_Symbols_PreservesAssignmentOrder(t *testing.T) {
	e, err := symbol.New(200, 0.1, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []hdc.Symbol{hdc.Str("a"), hdc.Str("b"), hdc.Str("c")}
	for _, s := range want {
		if _, err := e.Encode(s, nil); err != nil {
			t.Fatal(err)
		}
	}
	got := e.Symbols()
	if len(got) != len(want) {
		t.Fatalf("want %d symbols, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("at %d: want %v, got %v", i, want[i], got[i])
		}
	}
}

func TestEncoder_IntAndStringSymbolsAreDistinct(t *testing.T) {
	e, err := symbol.New(200, 0.1, 1)
	if err != nil {
		t.Fatal(err)
	}
	strPattern, err := e.Encode(hdc.Str("1"), nil)
	if err != nil {
		t.Fatal(err)
	}
	intPattern, err := e.Encode(hdc.Int(1), nil)
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for _, k := range strPattern.Keys() {
		if !intPattern.Has(k) {
			same = false
		}
	}
	if same {
		t.Fatal("Str(\"1\") and Int(1) must be encoded as distinct symbols")
	}
}
