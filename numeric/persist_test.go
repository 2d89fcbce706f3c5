package numeric_test

import (
	"testing"

	"github.com/samdb/go-hdc/numeric"
	"github.com/samdb/go-hdc/persist"
)

func TestSerializeRestore_PreservesCodebook(t *testing.T) {
	e, err := numeric.New(500, 0.02, 1.0, 9)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Encode(10.0, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Encode(11.0, nil); err != nil {
		t.Fatal(err)
	}

	state := e.Serialize()
	restored, err := numeric.Restore(state)
	if err != nil {
		t.Fatal(err)
	}

	if len(restored.QuantisedValues()) != len(e.QuantisedValues()) {
		t.Fatalf("want %d levels restored, got %d", len(e.QuantisedValues()), len(restored.QuantisedValues()))
	}

	want, err := e.Encode(10.0, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := restored.Encode(10.0, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range want.Keys() {
		if !got.Has(k) {
			t.Fatal("restored encoder must reproduce the exact codeword for an already-covered level")
		}
	}
}

func TestEncodeDecodeNumericState_RoundTripsThroughBytes(t *testing.T) {
	e, err := numeric.New(500, 0.02, 1.0, 9)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Encode(10.0, nil); err != nil {
		t.Fatal(err)
	}

	state := e.Serialize()
	blob, err := persist.EncodeNumericState(state)
	if err != nil {
		t.Fatal(err)
	}
	roundTripped, err := persist.DecodeNumericState(blob)
	if err != nil {
		t.Fatal(err)
	}

	restored, err := numeric.Restore(roundTripped)
	if err != nil {
		t.Fatal(err)
	}

	got, err := restored.Encode(10.0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != e.MaxNBits() {
		t.Fatalf("want %d active bits, got %d", e.MaxNBits(), got.Len())
	}
}
