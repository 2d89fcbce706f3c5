package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/icza/bitio"
)

// magic tags the start of every blob this codec produces, so
// DecodeSymbolState and DecodeNumericState can fail fast on a foreign or
// corrupt byte stream instead of misreading it.
const (
	symbolMagic  uint32 = 0x48445353 // "HDSS"
	numericMagic uint32 = 0x48444e53 // "HDNS"
)

// bitsNeeded returns the number of bits required to represent any value in
// [0, n), i.e. ceil(log2(n)), with a floor of 1 so a zero-width field is
// never requested.
func bitsNeeded(n int) byte {
	if n <= 1 {
		return 1
	}
	w := bits.Len(uint(n - 1))
	if w == 0 {
		w = 1
	}
	return byte(w)
}

// EncodeSymbolState serializes a symbol codebook to a compact byte stream.
// Bit indices are packed to the minimum width their dimension requires.
func EncodeSymbolState(s SymbolState) ([]byte, error) {
	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)

	if err := binary.Write(buf, binary.BigEndian, symbolMagic); err != nil {
		return nil, fmt.Errorf("persist.EncodeSymbolState: %w", err)
	}
	if err := writeHeaderInts(bw, s.Dimension, s.MaxNBits); err != nil {
		return nil, fmt.Errorf("persist.EncodeSymbolState: %w", err)
	}
	if err := bw.WriteBits(math.Float64bits(s.Sparsity), 64); err != nil {
		return nil, fmt.Errorf("persist.EncodeSymbolState: %w", err)
	}
	if err := bw.WriteBits(uint64(s.Seed), 64); err != nil {
		return nil, fmt.Errorf("persist.EncodeSymbolState: %w", err)
	}
	if err := bw.WriteBits(uint64(len(s.Symbols)), 32); err != nil {
		return nil, fmt.Errorf("persist.EncodeSymbolState: %w", err)
	}

	bitWidth := bitsNeeded(s.Dimension)
	for i, sym := range s.Symbols {
		if err := writeSymbolKey(bw, sym); err != nil {
			return nil, fmt.Errorf("persist.EncodeSymbolState: %w", err)
		}
		codeword := s.Codewords[i]
		if err := bw.WriteBits(uint64(len(codeword)), 16); err != nil {
			return nil, fmt.Errorf("persist.EncodeSymbolState: %w", err)
		}
		for _, bit := range codeword {
			if err := bw.WriteBits(uint64(bit), bitWidth); err != nil {
				return nil, fmt.Errorf("persist.EncodeSymbolState: %w", err)
			}
		}
	}

	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("persist.EncodeSymbolState: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSymbolState is the inverse of EncodeSymbolState.
func DecodeSymbolState(blob []byte) (SymbolState, error) {
	var s SymbolState
	r := bytes.NewReader(blob)

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return s, fmt.Errorf("persist.DecodeSymbolState: %w", err)
	}
	if magic != symbolMagic {
		return s, fmt.Errorf("persist.DecodeSymbolState: not a symbol state blob")
	}

	br := bitio.NewReader(r)

	dim, maxNbits, err := readHeaderInts(br)
	if err != nil {
		return s, fmt.Errorf("persist.DecodeSymbolState: %w", err)
	}
	s.Dimension, s.MaxNBits = dim, maxNbits

	sparsityBits, err := br.ReadBits(64)
	if err != nil {
		return s, fmt.Errorf("persist.DecodeSymbolState: %w", err)
	}
	s.Sparsity = math.Float64frombits(sparsityBits)

	seed, err := br.ReadBits(64)
	if err != nil {
		return s, fmt.Errorf("persist.DecodeSymbolState: %w", err)
	}
	s.Seed = int64(seed)

	count, err := br.ReadBits(32)
	if err != nil {
		return s, fmt.Errorf("persist.DecodeSymbolState: %w", err)
	}

	bitWidth := bitsNeeded(s.Dimension)
	s.Symbols = make([]SymbolKey, 0, count)
	s.Codewords = make([][]int, 0, count)
	for i := uint64(0); i < count; i++ {
		sym, err := readSymbolKey(br)
		if err != nil {
			return s, fmt.Errorf("persist.DecodeSymbolState: %w", err)
		}
		nbits, err := br.ReadBits(16)
		if err != nil {
			return s, fmt.Errorf("persist.DecodeSymbolState: %w", err)
		}
		codeword := make([]int, nbits)
		for j := range codeword {
			bit, err := br.ReadBits(bitWidth)
			if err != nil {
				return s, fmt.Errorf("persist.DecodeSymbolState: %w", err)
			}
			codeword[j] = int(bit)
		}
		s.Symbols = append(s.Symbols, sym)
		s.Codewords = append(s.Codewords, codeword)
	}

	return s, nil
}

// EncodeNumericState serializes a numeric codebook to a compact byte stream.
func EncodeNumericState(s NumericState) ([]byte, error) {
	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)

	if err := binary.Write(buf, binary.BigEndian, numericMagic); err != nil {
		return nil, fmt.Errorf("persist.EncodeNumericState: %w", err)
	}
	if err := writeHeaderInts(bw, s.Dimension, s.MaxNBits); err != nil {
		return nil, fmt.Errorf("persist.EncodeNumericState: %w", err)
	}
	for _, f := range []float64{s.Sparsity, s.QStep} {
		if err := bw.WriteBits(math.Float64bits(f), 64); err != nil {
			return nil, fmt.Errorf("persist.EncodeNumericState: %w", err)
		}
	}
	var haveRange uint64
	if s.HaveRange {
		haveRange = 1
	}
	if err := bw.WriteBits(haveRange, 1); err != nil {
		return nil, fmt.Errorf("persist.EncodeNumericState: %w", err)
	}
	for _, v := range []int64{s.Seed, s.LowerIdx, s.UpperIdx} {
		if err := bw.WriteBits(uint64(v), 64); err != nil {
			return nil, fmt.Errorf("persist.EncodeNumericState: %w", err)
		}
	}
	for _, v := range []int{s.LowerBitIndex, s.UpperBitIndex} {
		if err := bw.WriteBits(uint64(v), 32); err != nil {
			return nil, fmt.Errorf("persist.EncodeNumericState: %w", err)
		}
	}
	if err := bw.WriteBits(uint64(len(s.Levels)), 32); err != nil {
		return nil, fmt.Errorf("persist.EncodeNumericState: %w", err)
	}

	bitWidth := bitsNeeded(s.Dimension)
	for i, level := range s.Levels {
		if err := bw.WriteBits(uint64(level), 64); err != nil {
			return nil, fmt.Errorf("persist.EncodeNumericState: %w", err)
		}
		codeword := s.Codewords[i]
		if err := bw.WriteBits(uint64(len(codeword)), 16); err != nil {
			return nil, fmt.Errorf("persist.EncodeNumericState: %w", err)
		}
		for _, bit := range codeword {
			if err := bw.WriteBits(uint64(bit), bitWidth); err != nil {
				return nil, fmt.Errorf("persist.EncodeNumericState: %w", err)
			}
		}
	}

	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("persist.EncodeNumericState: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeNumericState is the inverse of EncodeNumericState.
func DecodeNumericState(blob []byte) (NumericState, error) {
	var s NumericState
	r := bytes.NewReader(blob)

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return s, fmt.Errorf("persist.DecodeNumericState: %w", err)
	}
	if magic != numericMagic {
		return s, fmt.Errorf("persist.DecodeNumericState: not a numeric state blob")
	}

	br := bitio.NewReader(r)

	dim, maxNbits, err := readHeaderInts(br)
	if err != nil {
		return s, fmt.Errorf("persist.DecodeNumericState: %w", err)
	}
	s.Dimension, s.MaxNBits = dim, maxNbits

	sparsityBits, err := br.ReadBits(64)
	if err != nil {
		return s, fmt.Errorf("persist.DecodeNumericState: %w", err)
	}
	s.Sparsity = math.Float64frombits(sparsityBits)

	qStepBits, err := br.ReadBits(64)
	if err != nil {
		return s, fmt.Errorf("persist.DecodeNumericState: %w", err)
	}
	s.QStep = math.Float64frombits(qStepBits)

	haveRange, err := br.ReadBits(1)
	if err != nil {
		return s, fmt.Errorf("persist.DecodeNumericState: %w", err)
	}
	s.HaveRange = haveRange == 1

	seed, err := br.ReadBits(64)
	if err != nil {
		return s, fmt.Errorf("persist.DecodeNumericState: %w", err)
	}
	s.Seed = int64(seed)

	lowerIdx, err := br.ReadBits(64)
	if err != nil {
		return s, fmt.Errorf("persist.DecodeNumericState: %w", err)
	}
	s.LowerIdx = int64(lowerIdx)

	upperIdx, err := br.ReadBits(64)
	if err != nil {
		return s, fmt.Errorf("persist.DecodeNumericState: %w", err)
	}
	s.UpperIdx = int64(upperIdx)

	lowerBitIndex, err := br.ReadBits(32)
	if err != nil {
		return s, fmt.Errorf("persist.DecodeNumericState: %w", err)
	}
	s.LowerBitIndex = int(lowerBitIndex)

	upperBitIndex, err := br.ReadBits(32)
	if err != nil {
		return s, fmt.Errorf("persist.DecodeNumericState: %w", err)
	}
	s.UpperBitIndex = int(upperBitIndex)

	count, err := br.ReadBits(32)
	if err != nil {
		return s, fmt.Errorf("persist.DecodeNumericState: %w", err)
	}

	bitWidth := bitsNeeded(s.Dimension)
	s.Levels = make([]int64, 0, count)
	s.Codewords = make([][]int, 0, count)
	for i := uint64(0); i < count; i++ {
		level, err := br.ReadBits(64)
		if err != nil {
			return s, fmt.Errorf("persist.DecodeNumericState: %w", err)
		}
		nbits, err := br.ReadBits(16)
		if err != nil {
			return s, fmt.Errorf("persist.DecodeNumericState: %w", err)
		}
		codeword := make([]int, nbits)
		for j := range codeword {
			bit, err := br.ReadBits(bitWidth)
			if err != nil {
				return s, fmt.Errorf("persist.DecodeNumericState: %w", err)
			}
			codeword[j] = int(bit)
		}
		s.Levels = append(s.Levels, int64(level))
		s.Codewords = append(s.Codewords, codeword)
	}

	return s, nil
}

func writeHeaderInts(bw *bitio.Writer, dimension, maxNbits int) error {
	if err := bw.WriteBits(uint64(dimension), 32); err != nil {
		return err
	}
	return bw.WriteBits(uint64(maxNbits), 16)
}

func readHeaderInts(br *bitio.Reader) (dimension, maxNbits int, err error) {
	d, err := br.ReadBits(32)
	if err != nil {
		return 0, 0, err
	}
	m, err := br.ReadBits(16)
	if err != nil {
		return 0, 0, err
	}
	return int(d), int(m), nil
}

func writeSymbolKey(bw *bitio.Writer, k SymbolKey) error {
	var isInt uint64
	if k.IsInt {
		isInt = 1
	}
	if err := bw.WriteBits(isInt, 1); err != nil {
		return err
	}
	if k.IsInt {
		return bw.WriteBits(uint64(k.Num), 64)
	}
	data := []byte(k.Text)
	if err := bw.WriteBits(uint64(len(data)), 32); err != nil {
		return err
	}
	for _, b := range data {
		if err := bw.WriteBits(uint64(b), 8); err != nil {
			return err
		}
	}
	return nil
}

func readSymbolKey(br *bitio.Reader) (SymbolKey, error) {
	isInt, err := br.ReadBits(1)
	if err != nil {
		return SymbolKey{}, err
	}
	if isInt == 1 {
		n, err := br.ReadBits(64)
		if err != nil {
			return SymbolKey{}, err
		}
		return SymbolKey{Num: int64(n), IsInt: true}, nil
	}
	n, err := br.ReadBits(32)
	if err != nil {
		return SymbolKey{}, err
	}
	data := make([]byte, n)
	for i := range data {
		b, err := br.ReadBits(8)
		if err != nil {
			return SymbolKey{}, err
		}
		data[i] = byte(b)
	}
	return SymbolKey{Text: string(data)}, nil
}
