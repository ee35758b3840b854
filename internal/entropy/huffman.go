package entropy

import (
	"github.com/jxl-go/jxl/internal/bitio"
	"github.com/jxl-go/jxl/internal/xlerr"
)

// huffmanRootBits is the size (in bits) of the first-level lookup
// table: codes up to this length decode in a single table probe,
// longer codes indirect through a per-prefix overflow sub-table.
const huffmanRootBits = 8

// HuffmanCode is one two-level table slot: either a terminal symbol
// (Bits <= huffmanRootBits) or a pointer to an overflow sub-table
// (Bits > huffmanRootBits, Value holds the sub-table's offset).
type HuffmanCode struct {
	Bits  uint8
	Value uint16
}

// HuffmanTable is the flattened root+overflow two-level table.
type HuffmanTable struct {
	root     []HuffmanCode
	overflow []HuffmanCode
}

// BuildHuffmanTable builds a canonical Huffman decode table from a list
// of per-symbol code lengths (0 = symbol unused): codes are assigned in
// increasing length order, short codes are replicated across the root
// table, and long codes indirect into per-prefix overflow tables.
func BuildHuffmanTable(codeLengths []int) (*HuffmanTable, error) {
	maxBits := 0
	var count [huffmanMaxBits + 1]int
	numSymbols := 0
	for _, l := range codeLengths {
		if l == 0 {
			continue
		}
		if l > huffmanMaxBits {
			return nil, xlerr.New(xlerr.AlphabetTooLargeHuff, "code length %d exceeds max %d", l, huffmanMaxBits)
		}
		count[l]++
		numSymbols++
		if l > maxBits {
			maxBits = l
		}
	}
	if numSymbols == 0 {
		return nil, xlerr.New(xlerr.InvalidHuffman, "no symbols with nonzero code length")
	}
	if numSymbols == 1 {
		// Degenerate single-symbol code: always decodes with zero bits
		// consumed. Represented as a root table full of the one symbol.
		var sym uint16
		for s, l := range codeLengths {
			if l != 0 {
				sym = uint16(s)
			}
		}
		root := make([]HuffmanCode, 1<<huffmanRootBits)
		for i := range root {
			root[i] = HuffmanCode{Bits: 0, Value: sym}
		}
		return &HuffmanTable{root: root}, nil
	}

	// Assign canonical codes: lowest length gets the lowest codes, in
	// symbol order within each length (RFC1951-style canonical code).
	var nextCode [huffmanMaxBits + 1]int
	code := 0
	for l := 1; l <= maxBits; l++ {
		code = (code + count[l-1]) << 1
		nextCode[l] = code
	}

	type entry struct {
		symbol int
		length int
		code   int
	}
	entries := make([]entry, 0, numSymbols)
	for s, l := range codeLengths {
		if l == 0 {
			continue
		}
		entries = append(entries, entry{symbol: s, length: l, code: nextCode[l]})
		nextCode[l]++
	}

	rootSize := 1 << huffmanRootBits
	t := &HuffmanTable{root: make([]HuffmanCode, rootSize)}
	// Track, per root prefix, whether an overflow sub-table has already
	// been allocated for codes longer than huffmanRootBits.
	subTableOffset := map[int]int{}

	for _, e := range entries {
		reversed := reverseBits(e.code, e.length)
		if e.length <= huffmanRootBits {
			step := 1 << e.length
			for idx := reversed; idx < rootSize; idx += step {
				t.root[idx] = HuffmanCode{Bits: uint8(e.length), Value: uint16(e.symbol)}
			}
			continue
		}
		prefix := reversed & (rootSize - 1)
		subBits := e.length - huffmanRootBits
		off, ok := subTableOffset[prefix]
		if !ok {
			off = len(t.overflow)
			subSize := 1 << subBits
			t.overflow = append(t.overflow, make([]HuffmanCode, subSize)...)
			subTableOffset[prefix] = off
			t.root[prefix] = HuffmanCode{Bits: uint8(huffmanRootBits + 1), Value: uint16(off)}
		}
		subIdx := reversed >> huffmanRootBits
		subSize := 1 << subBits
		// Replicate within the overflow sub-table the same way the root
		// table replicates short codes.
		stepSub := 1 << (e.length - huffmanRootBits)
		for idx := subIdx; idx < subSize; idx += stepSub {
			t.overflow[off+idx] = HuffmanCode{Bits: uint8(e.length - huffmanRootBits), Value: uint16(e.symbol)}
		}
	}

	return t, nil
}

const huffmanMaxBits = 15

// reverseBits reverses the low n bits of v (canonical Huffman codes are
// assigned MSB-first but the bitstream is read LSB-first).
func reverseBits(v, n int) int {
	r := 0
	for i := 0; i < n; i++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}
	return r
}

// ReadSymbol decodes one symbol from br using t: peek the root bits,
// then follow the overflow indirection if the code is longer.
func ReadSymbol(br *bitio.Reader, t *HuffmanTable) (uint32, error) {
	peek, err := br.Peek(huffmanRootBits)
	if err != nil {
		// Near EOF, fewer than huffmanRootBits bits may remain but
		// still be enough for a short code; retry with what's left.
		avail := br.BitsAvailable()
		if avail == 0 {
			return 0, err
		}
		peek, err = br.Peek(int(avail))
		if err != nil {
			return 0, err
		}
	}
	entry := t.root[peek&((1<<huffmanRootBits)-1)]
	if entry.Bits <= huffmanRootBits {
		if entry.Bits == 0 && len(t.root) > 0 && t.root[0].Bits == 0 {
			// Degenerate single-symbol table: zero bits consumed.
			return uint32(entry.Value), nil
		}
		if err := br.Consume(int(entry.Bits)); err != nil {
			return 0, err
		}
		return uint32(entry.Value), nil
	}
	if err := br.Consume(huffmanRootBits); err != nil {
		return 0, err
	}
	subOffset := int(entry.Value)
	subPeek, err := br.Peek(huffmanMaxBits - huffmanRootBits)
	if err != nil {
		avail := br.BitsAvailable()
		subPeek, err = br.Peek(int(avail))
		if err != nil {
			return 0, err
		}
	}
	sub := t.overflow[subOffset+int(subPeek)%len(t.overflow[subOffset:])]
	if err := br.Consume(int(sub.Bits)); err != nil {
		return 0, err
	}
	return uint32(sub.Value), nil
}

// ReadSimpleOrCanonicalTable decodes a Huffman table header in either
// of the two spec-defined forms (spec §4.3):
//   - "simple": 1..=4 symbols with fixed length patterns.
//   - canonical: code lengths are themselves Huffman-coded by a fixed
//     18-symbol meta-code.
func ReadSimpleOrCanonicalTable(br *bitio.Reader, alphabetSize int) (*HuffmanTable, error) {
	isSimple, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	if isSimple == 1 {
		return readSimpleTable(br, alphabetSize)
	}
	return readCanonicalTable(br, alphabetSize)
}

func readSimpleTable(br *bitio.Reader, alphabetSize int) (*HuffmanTable, error) {
	numSymbolsMinusOne, err := br.Read(2)
	if err != nil {
		return nil, err
	}
	numSymbols := int(numSymbolsMinusOne) + 1
	symBits := bitsFor(alphabetSize - 1)
	symbols := make([]int, numSymbols)
	for i := range symbols {
		v, err := br.Read(symBits)
		if err != nil {
			return nil, err
		}
		if int(v) >= alphabetSize {
			return nil, xlerr.New(xlerr.InvalidHuffman, "simple-code symbol %d out of range", v)
		}
		symbols[i] = int(v)
	}
	lengths := make([]int, alphabetSize)
	switch numSymbols {
	case 1:
		lengths[symbols[0]] = 0
		// Single symbol: handled specially below via degenerate table.
	case 2:
		lengths[symbols[0]] = 1
		lengths[symbols[1]] = 1
	case 3:
		lengths[symbols[0]] = 1
		lengths[symbols[1]] = 2
		lengths[symbols[2]] = 2
	case 4:
		treeSelect, err := br.Read(1)
		if err != nil {
			return nil, err
		}
		if treeSelect == 0 {
			lengths[symbols[0]] = 2
			lengths[symbols[1]] = 2
			lengths[symbols[2]] = 2
			lengths[symbols[3]] = 2
		} else {
			lengths[symbols[0]] = 1
			lengths[symbols[1]] = 2
			lengths[symbols[2]] = 3
			lengths[symbols[3]] = 3
		}
	}
	if numSymbols == 1 {
		root := make([]HuffmanCode, 1<<huffmanRootBits)
		for i := range root {
			root[i] = HuffmanCode{Bits: 0, Value: uint16(symbols[0])}
		}
		return &HuffmanTable{root: root}, nil
	}
	return BuildHuffmanTable(lengths)
}

// codeLengthOrder is the fixed permutation JPEG XL (and, originally,
// DEFLATE) applies to the 18-symbol meta-code used to Huffman-code the
// code-length alphabet itself.
var codeLengthOrder = [18]int{1, 2, 3, 4, 0, 5, 17, 6, 16, 7, 8, 9, 10, 11, 12, 13, 14, 15}

func readCanonicalTable(br *bitio.Reader, alphabetSize int) (*HuffmanTable, error) {
	hskip, err := br.Read(2)
	if err != nil {
		return nil, err
	}
	var metaLengths [18]int
	numCodeLengths := 4 + int(hskip)
	if numCodeLengths > 18 {
		numCodeLengths = 18
	}
	for i := int(hskip); i < numCodeLengths; i++ {
		v, err := br.Read(3)
		if err != nil {
			return nil, err
		}
		metaLengths[codeLengthOrder[i]] = int(v)
	}
	metaTable, err := BuildHuffmanTable(metaLengths[:])
	if err != nil {
		return nil, err
	}

	lengths := make([]int, alphabetSize)
	i := 0
	prevLen := 8
	for i < alphabetSize {
		sym, err := ReadSymbol(br, metaTable)
		if err != nil {
			return nil, err
		}
		switch {
		case sym < 16:
			lengths[i] = int(sym)
			if sym != 0 {
				prevLen = int(sym)
			}
			i++
		case sym == 16: // repeat previous length 3-6 times
			extra, err := br.Read(2)
			if err != nil {
				return nil, err
			}
			repeat := 3 + int(extra)
			for r := 0; r < repeat && i < alphabetSize; r++ {
				lengths[i] = prevLen
				i++
			}
		default: // 17: repeat zero 3-10 times
			extra, err := br.Read(3)
			if err != nil {
				return nil, err
			}
			repeat := 3 + int(extra)
			for r := 0; r < repeat && i < alphabetSize; r++ {
				lengths[i] = 0
				i++
			}
		}
	}
	return BuildHuffmanTable(lengths)
}
