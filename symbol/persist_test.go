package symbol_test

import (
	"testing"

	"github.com/samdb/go-hdc"
	"github.com/samdb/go-hdc/persist"
	"github.com/samdb/go-hdc/symbol"
)

func TestSerializeRestore_PreservesAssignments(t *testing.T) {
	e, err := symbol.New(1000, 0.02, 5)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []hdc.Symbol{hdc.Str("apple"), hdc.Str("banana"), hdc.Int(7)} {
		if _, err := e.Encode(s, nil); err != nil {
			t.Fatal(err)
		}
	}

	state := e.Serialize()
	restored, err := symbol.Restore(state)
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range []hdc.Symbol{hdc.Str("apple"), hdc.Str("banana"), hdc.Int(7)} {
		want, err := e.Encode(s, nil)
		if err != nil {
			t.Fatal(err)
		}
		got, err := restored.Encode(s, nil)
		if err != nil {
			t.Fatal(err)
		}
		for _, k := range want.Keys() {
			if !got.Has(k) {
				t.Fatalf("restored encoder must reproduce %v's exact codeword", s)
			}
		}
	}

	if len(restored.Symbols()) != 3 {
		t.Fatalf("want 3 restored symbols, got %d", len(restored.Symbols()))
	}
}

func TestEncodeDecodeSymbolState_RoundTripsThroughBytes(t *testing.T) {
	e, err := symbol.New(500, 0.02, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Encode(hdc.Str("x"), nil); err != nil {
		t.Fatal(err)
	}

	state := e.Serialize()
	if len(state.Symbols) != 1 {
		t.Fatalf("want 1 symbol in serialized state, got %d", len(state.Symbols))
	}

	blob, err := persist.EncodeSymbolState(state)
	if err != nil {
		t.Fatal(err)
	}
	roundTripped, err := persist.DecodeSymbolState(blob)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := symbol.Restore(roundTripped)
	if err != nil {
		t.Fatal(err)
	}
	got, err := restored.Encode(hdc.Str("x"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != e.MaxNBits() {
		t.Fatalf("want %d active bits, got %d", e.MaxNBits(), got.Len())
	}
}
