package persist_test

import (
	"testing"

	"github.com/samdb/go-hdc/persist"
)

func TestSymbolState_RoundTrip(t *testing.T) {
	want := persist.SymbolState{
		Dimension: 1000,
		MaxNBits:  20,
		Sparsity:  0.02,
		Seed:      7,
		Symbols: []persist.SymbolKey{
			{Text: "apple"},
			{Num: 42, IsInt: true},
		},
		Codewords: [][]int{
			{1, 5, 9, 100},
			{2, 6, 10, 101},
		},
	}

	blob, err := persist.EncodeSymbolState(want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := persist.DecodeSymbolState(blob)
	if err != nil {
		t.Fatal(err)
	}

	if got.Dimension != want.Dimension || got.MaxNBits != want.MaxNBits || got.Seed != want.Seed {
		t.Fatalf("header mismatch: got %+v", got)
	}
	if len(got.Symbols) != len(want.Symbols) {
		t.Fatalf("want %d symbols, got %d", len(want.Symbols), len(got.Symbols))
	}
	for i := range want.Symbols {
		if got.Symbols[i] != want.Symbols[i] {
			t.Fatalf("symbol %d mismatch: want %+v, got %+v", i, want.Symbols[i], got.Symbols[i])
		}
		if len(got.Codewords[i]) != len(want.Codewords[i]) {
			t.Fatalf("codeword %d length mismatch", i)
		}
		for j := range want.Codewords[i] {
			if got.Codewords[i][j] != want.Codewords[i][j] {
				t.Fatalf("codeword %d bit %d mismatch: want %d, got %d", i, j, want.Codewords[i][j], got.Codewords[i][j])
			}
		}
	}
}

func TestDecodeSymbolState_RejectsForeignBlob(t *testing.T) {
	numericBlob, err := persist.EncodeNumericState(persist.NumericState{Dimension: 10, MaxNBits: 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := persist.DecodeSymbolState(numericBlob); err == nil {
		t.Fatal("expected an error decoding a numeric blob as a symbol state")
	}
}

func TestNumericState_RoundTrip(t *testing.T) {
	want := persist.NumericState{
		Dimension:     500,
		MaxNBits:      10,
		Sparsity:      0.02,
		QStep:         0.5,
		Seed:          99,
		HaveRange:     true,
		LowerIdx:      -3,
		UpperIdx:      3,
		LowerBitIndex: 4,
		UpperBitIndex: 1,
		Levels:        []int64{-3, -2, -1, 0, 1, 2, 3},
		Codewords: [][]int{
			{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			{2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
			{3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
			{4, 5, 6, 7, 8, 9, 10, 11, 12, 13},
			{5, 6, 7, 8, 9, 10, 11, 12, 13, 14},
			{6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
			{7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		},
	}

	blob, err := persist.EncodeNumericState(want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := persist.DecodeNumericState(blob)
	if err != nil {
		t.Fatal(err)
	}

	if got.LowerIdx != want.LowerIdx || got.UpperIdx != want.UpperIdx {
		t.Fatalf("range mismatch: got lower=%d upper=%d", got.LowerIdx, got.UpperIdx)
	}
	if got.HaveRange != want.HaveRange {
		t.Fatal("HaveRange must round-trip")
	}
	if len(got.Levels) != len(want.Levels) {
		t.Fatalf("want %d levels, got %d", len(want.Levels), len(got.Levels))
	}
	for i := range want.Levels {
		if got.Levels[i] != want.Levels[i] {
			t.Fatalf("level %d mismatch: want %d, got %d", i, want.Levels[i], got.Levels[i])
		}
		for j := range want.Codewords[i] {
			if got.Codewords[i][j] != want.Codewords[i][j] {
				t.Fatalf("codeword %d bit %d mismatch", i, j)
			}
		}
	}
}

func TestMemStore_SaveLoadDelete(t *testing.T) {
	s := persist.NewMemStore()

	if _, ok, err := s.Load("missing"); ok || err != nil {
		t.Fatalf("want miss with no error, got ok=%v err=%v", ok, err)
	}

	if err := s.Save("x", []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	blob, ok, err := s.Load("x")
	if err != nil || !ok {
		t.Fatalf("want hit, got ok=%v err=%v", ok, err)
	}
	if len(blob) != 3 || blob[0] != 1 {
		t.Fatalf("unexpected blob %v", blob)
	}

	if err := s.Delete("x"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Load("x"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestMemStore_Load_ReturnsIndependentCopy(t *testing.T) {
	s := persist.NewMemStore()
	if err := s.Save("x", []byte{9}); err != nil {
		t.Fatal(err)
	}
	blob, _, err := s.Load("x")
	if err != nil {
		t.Fatal(err)
	}
	blob[0] = 0

	blob2, _, err := s.Load("x")
	if err != nil {
		t.Fatal(err)
	}
	if blob2[0] != 9 {
		t.Fatal("mutating a loaded blob must not affect the stored copy")
	}
}
