// Package dictcompress implements the three alternative on-disk term-
// dictionary encodings from spec.md §4.6: a concatenated-string-with-
// offsets form, fixed-size blocking with front-coded suffixes, and global
// front-coding. All three sort their input before building and expose a
// uniform build/lookup/save/load contract; persistence is JSON, matching
// original_source/ir_system/core/compression.py's save_to_file/load_from_file
// (json.dump/json.load).
package dictcompress

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// commonPrefixLen returns the length of the longest common prefix of a and
// b, used by both front-coding variants.
func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func sortedCopy(terms []string) []string {
	out := make([]string, len(terms))
	copy(out, terms)
	sort.Strings(out)
	return out
}

// --- Dictionary-as-a-string -------------------------------------------------

// StringCompressor concatenates all terms into one string and records each
// term's (offset, length) within it.
type StringCompressor struct {
	Dictionary string           `json:"dictionary_string"`
	Offsets    map[string][]int `json:"term_offsets"` // term -> [offset, length]
}

// Build sorts terms and constructs the concatenated dictionary string.
func (c *StringCompressor) Build(terms []string) {
	sorted := sortedCopy(terms)
	var sb []byte
	offsets := make(map[string][]int, len(sorted))
	offset := 0
	for _, t := range sorted {
		offsets[t] = []int{offset, len(t)}
		sb = append(sb, t...)
		offset += len(t)
	}
	c.Dictionary = string(sb)
	c.Offsets = offsets
}

// Lookup returns term unchanged if it was built into the dictionary, else
// ("", false). Per spec.md §9's flagged open question, this decodes using
// the query term's own length rather than the stored length — sound only
// because this is an exact-membership check, not a general index-by-position
// decode primitive; Build stores the length anyway so a future positional
// decoder (Decode(offset, length)) can be added without changing the format.
func (c *StringCompressor) Lookup(term string) (string, bool) {
	pos, ok := c.Offsets[term]
	if !ok {
		return "", false
	}
	offset := pos[0]
	end := offset + len(term)
	if end > len(c.Dictionary) {
		return "", false
	}
	return c.Dictionary[offset:end], true
}

// Save writes the compressor state to path as JSON.
func (c *StringCompressor) Save(path string) error {
	return saveJSON(path, c)
}

// Load reads the compressor state from path.
func (c *StringCompressor) Load(path string) error {
	return loadJSON(path, c)
}

// --- Blocking ----------------------------------------------------------------

// blockEntry is one term's encoding within a block: the first entry of a
// block stores Suffix as the full verbatim term and PrefixLen 0.
type blockEntry struct {
	PrefixLen int    `json:"p"`
	Suffix    string `json:"s"`
}

type blockPosition struct {
	Block int `json:"block"`
	Pos   int `json:"pos"`
}

// BlockingCompressor partitions sorted terms into fixed-size blocks; within
// a block every term after the first is stored as (prefixLenWithPrevious,
// suffix).
type BlockingCompressor struct {
	BlockSize int                      `json:"block_size"`
	Blocks    [][]blockEntry           `json:"blocks"`
	TermIndex map[string]blockPosition `json:"term_index"`
}

const defaultBlockSize = 8

// NewBlockingCompressor creates a compressor with the given block size
// (spec.md default 8 when size <= 0).
func NewBlockingCompressor(blockSize int) *BlockingCompressor {
	if blockSize <= 0 {
		blockSize = defaultBlockSize
	}
	return &BlockingCompressor{BlockSize: blockSize}
}

// Build sorts terms and partitions them into fixed-size, front-coded blocks.
func (c *BlockingCompressor) Build(terms []string) {
	sorted := sortedCopy(terms)
	c.Blocks = nil
	c.TermIndex = make(map[string]blockPosition, len(sorted))

	for i := 0; i < len(sorted); i += c.BlockSize {
		end := i + c.BlockSize
		if end > len(sorted) {
			end = len(sorted)
		}
		chunk := sorted[i:end]

		block := make([]blockEntry, len(chunk))
		block[0] = blockEntry{PrefixLen: 0, Suffix: chunk[0]}
		for j := 1; j < len(chunk); j++ {
			prefixLen := commonPrefixLen(chunk[j-1], chunk[j])
			block[j] = blockEntry{PrefixLen: prefixLen, Suffix: chunk[j][prefixLen:]}
		}

		blockIdx := len(c.Blocks)
		c.Blocks = append(c.Blocks, block)
		for pos, term := range chunk {
			c.TermIndex[term] = blockPosition{Block: blockIdx, Pos: pos}
		}
	}
}

// decompressBlock iteratively reconstructs every term in a block from its
// verbatim head, the re-architected version of spec.md §9's recursive
// decompress(block_idx, term_idx) — anchored explicitly at the block head
// rather than relying on recursion bottoming out at position 0.
func decompressBlock(block []blockEntry) []string {
	terms := make([]string, len(block))
	if len(block) == 0 {
		return terms
	}
	terms[0] = block[0].Suffix
	for i := 1; i < len(block); i++ {
		prev := terms[i-1]
		e := block[i]
		terms[i] = prev[:e.PrefixLen] + e.Suffix
	}
	return terms
}

// Lookup reconstructs term if it was built into the dictionary.
func (c *BlockingCompressor) Lookup(term string) (string, bool) {
	pos, ok := c.TermIndex[term]
	if !ok {
		return "", false
	}
	terms := decompressBlock(c.Blocks[pos.Block])
	if pos.Pos >= len(terms) {
		return "", false
	}
	return terms[pos.Pos], true
}

// Save writes the compressor state to path as JSON.
func (c *BlockingCompressor) Save(path string) error {
	return saveJSON(path, c)
}

// Load reads the compressor state from path.
func (c *BlockingCompressor) Load(path string) error {
	return loadJSON(path, c)
}

// --- Global front-coding -----------------------------------------------------

// FrontCodingCompressor front-codes the entire sorted term list as one
// sequence: each term after the first stores (prefixLenWithPrevious,
// suffix).
type FrontCodingCompressor struct {
	Entries   []blockEntry   `json:"entries"`
	TermIndex map[string]int `json:"term_index"`
}

// Build sorts terms and front-codes the full list.
func (c *FrontCodingCompressor) Build(terms []string) {
	sorted := sortedCopy(terms)
	c.Entries = make([]blockEntry, len(sorted))
	c.TermIndex = make(map[string]int, len(sorted))
	if len(sorted) == 0 {
		return
	}
	c.Entries[0] = blockEntry{PrefixLen: 0, Suffix: sorted[0]}
	c.TermIndex[sorted[0]] = 0
	for i := 1; i < len(sorted); i++ {
		prefixLen := commonPrefixLen(sorted[i-1], sorted[i])
		c.Entries[i] = blockEntry{PrefixLen: prefixLen, Suffix: sorted[i][prefixLen:]}
		c.TermIndex[sorted[i]] = i
	}
}

// decompressFrom iteratively reconstructs term i by walking forward from
// index 0 — the re-architected, non-recursive version of spec.md §9's
// decompress(index) that recursed into decompress(index-1).
func (c *FrontCodingCompressor) decompressFrom(index int) string {
	current := c.Entries[0].Suffix
	for i := 1; i <= index; i++ {
		e := c.Entries[i]
		current = current[:e.PrefixLen] + e.Suffix
	}
	return current
}

// Lookup reconstructs term if it was built into the dictionary.
func (c *FrontCodingCompressor) Lookup(term string) (string, bool) {
	idx, ok := c.TermIndex[term]
	if !ok {
		return "", false
	}
	return c.decompressFrom(idx), true
}

// DecompressAll reconstructs every term in ascending order in a single
// linear pass, for callers (tests, dumps) that want the full roundtrip
// rather than one lookup at a time.
func (c *FrontCodingCompressor) DecompressAll() []string {
	if len(c.Entries) == 0 {
		return nil
	}
	out := make([]string, len(c.Entries))
	out[0] = c.Entries[0].Suffix
	for i := 1; i < len(c.Entries); i++ {
		e := c.Entries[i]
		out[i] = out[i-1][:e.PrefixLen] + e.Suffix
	}
	return out
}

// Save writes the compressor state to path as JSON.
func (c *FrontCodingCompressor) Save(path string) error {
	return saveJSON(path, c)
}

// Load reads the compressor state from path.
func (c *FrontCodingCompressor) Load(path string) error {
	return loadJSON(path, c)
}

// --- shared persistence helpers ---------------------------------------------

func saveJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("dictcompress: marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("dictcompress: writing %s: %w", path, err)
	}
	return nil
}

func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("dictcompress: reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("dictcompress: unmarshaling %s: %w", path, err)
	}
	return nil
}
