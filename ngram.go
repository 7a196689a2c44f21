package pinyinime

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"syscall"
)

const (
	ngramIndexMagic   = "#pyim.ngi1"
	ngramUnigramMagic = "#pyim.ngu1"
)

// defaultMaxN is the n-gram order; a context is the last up to
// defaultMaxN-1 committed characters (default: 2 characters for a 3-gram
// model, per spec.md §3).
const defaultMaxN = 3

// NgramModel is a profile's static n-gram layer: the immutable,
// memory-mapped unigram and context-transition tables compiled for one
// profile's dictionary. Per spec.md §4.8, each profile owns its own
// NgramModel, but all profiles share one UserAdapter. Grounded on
// original_source/src/ngram.rs (get_score arithmetic) and kho/fslm's
// model.go/hashed.go (mmap'd binary layout).
type NgramModel struct {
	maxN int

	staticIndex   *sortedIndex // context string -> offset into staticData
	staticData    []byte
	staticUnigram *sortedIndex // token -> unigram score
	idxFile, dataFile, uniFile *os.File
	idxMap, dataMap, uniMap    []byte
}

// NewNgramModel returns a model with no static layer loaded; Score then
// degrades its static contribution to 0, per spec.md §7.
func NewNgramModel() *NgramModel {
	return &NgramModel{maxN: defaultMaxN}
}

// LoadStaticNgram memory-maps the three-file compiled n-gram format
// (basePath+".index", ".data", ".unigram") into m. A missing static
// layer is not fatal: the caller degrades to score=0 contribution for
// that layer, per spec.md §7.
func (m *NgramModel) LoadStaticNgram(basePath string) error {
	idxF, idxMap, err := mmapFile(basePath + ".index")
	if err != nil {
		return fmt.Errorf("ngram index %s: %w", basePath, err)
	}
	dataF, dataMap, err := mmapFile(basePath + ".data")
	if err != nil {
		idxF.Close()
		syscall.Munmap(idxMap)
		return fmt.Errorf("ngram data %s: %w", basePath, err)
	}
	uniF, uniMap, err := mmapFile(basePath + ".unigram")
	if err != nil {
		idxF.Close()
		dataF.Close()
		syscall.Munmap(idxMap)
		syscall.Munmap(dataMap)
		return fmt.Errorf("ngram unigram %s: %w", basePath, err)
	}
	index, err := parseSortedIndex(ngramIndexMagic, idxMap)
	if err != nil {
		return failLoad(idxF, dataF, uniF, idxMap, dataMap, uniMap, err)
	}
	unigram, err := parseSortedIndex(ngramUnigramMagic, uniMap)
	if err != nil {
		return failLoad(idxF, dataF, uniF, idxMap, dataMap, uniMap, err)
	}

	m.idxFile, m.dataFile, m.uniFile = idxF, dataF, uniF
	m.idxMap, m.dataMap, m.uniMap = idxMap, dataMap, uniMap
	m.staticIndex, m.staticData, m.staticUnigram = index, dataMap, unigram
	return nil
}

func failLoad(idxF, dataF, uniF *os.File, idxMap, dataMap, uniMap []byte, err error) error {
	idxF.Close()
	dataF.Close()
	uniF.Close()
	syscall.Munmap(idxMap)
	syscall.Munmap(dataMap)
	syscall.Munmap(uniMap)
	return err
}

// Close releases the static layer's memory maps, if loaded.
func (m *NgramModel) Close() error {
	if m.staticIndex == nil {
		return nil
	}
	syscall.Munmap(m.idxMap)
	syscall.Munmap(m.dataMap)
	syscall.Munmap(m.uniMap)
	m.idxFile.Close()
	m.dataFile.Close()
	return m.uniFile.Close()
}

// Score computes the combined static+user score for token following
// contextChars, per spec.md §4.4: unigram layers sum unconditionally;
// then the longest matching context length wins (first length, scanning
// from maxN-1 down to 1, at which either layer has a hit).
func (m *NgramModel) Score(contextChars []rune, token string, adapter *UserAdapter) uint32 {
	var total uint32
	if m.staticUnigram != nil {
		if score, ok := m.staticUnigram.get(token); ok {
			total += uint32(score)
		}
	}
	total += adapter.unigramCount(token)

	maxLen := len(contextChars)
	if maxLen > m.maxN-1 {
		maxLen = m.maxN - 1
	}
	for l := maxLen; l >= 1; l-- {
		ctx := string(contextChars[len(contextChars)-l:])
		found := false

		if m.staticIndex != nil {
			if offset, ok := m.staticIndex.get(ctx); ok {
				if score := scanScoreInBlock(m.staticData, offset, token); score > 0 {
					total += score * 10 * uint32(l)
					found = true
				}
			}
		}
		if score, ok := adapter.transitionCount(ctx, token); ok {
			total += score * 100 * uint32(l)
			found = true
		}
		if found {
			break
		}
	}
	return total
}

// scanScoreInBlock walks the memory-mapped ngram.data block at offset
// directly, without allocating an intermediate map, per spec.md §4.4 and
// §9's "avoiding allocation on the hot path" design note.
func scanScoreInBlock(data []byte, offset uint64, token string) uint32 {
	target := []byte(token)
	cursor := offset
	if cursor+4 > uint64(len(data)) {
		return 0
	}
	count := binary.LittleEndian.Uint32(data[cursor:])
	cursor += 4
	for i := uint32(0); i < count; i++ {
		if cursor+2 > uint64(len(data)) {
			return 0
		}
		l := uint64(binary.LittleEndian.Uint16(data[cursor:]))
		cursor += 2
		if cursor+l+4 > uint64(len(data)) {
			return 0
		}
		word := data[cursor : cursor+l]
		cursor += l
		if bytes.Equal(word, target) {
			return binary.LittleEndian.Uint32(data[cursor:])
		}
		cursor += 4
	}
	return 0
}

// BuildStaticNgram writes the §6 compiled three-file n-gram format from
// in-memory context -> token -> score tables and a unigram table. Like
// BuildStore, this is test-fixture tooling standing in for the
// out-of-scope production compiler.
func BuildStaticNgram(basePath string, transitions map[string]map[string]uint32, unigrams map[string]uint32) error {
	contexts := make([]string, 0, len(transitions))
	for ctx := range transitions {
		contexts = append(contexts, ctx)
	}
	sort.Strings(contexts)

	var data bytes.Buffer
	offsets := make(map[string]uint64, len(contexts))
	for _, ctx := range contexts {
		tokens := make([]string, 0, len(transitions[ctx]))
		for tok := range transitions[ctx] {
			tokens = append(tokens, tok)
		}
		sort.Strings(tokens)

		offsets[ctx] = uint64(data.Len())
		var countBuf [4]byte
		binary.LittleEndian.PutUint32(countBuf[:], uint32(len(tokens)))
		data.Write(countBuf[:])
		for _, tok := range tokens {
			var l [2]byte
			binary.LittleEndian.PutUint16(l[:], uint16(len(tok)))
			data.Write(l[:])
			data.WriteString(tok)
			var s [4]byte
			binary.LittleEndian.PutUint32(s[:], transitions[ctx][tok])
			data.Write(s[:])
		}
	}
	if err := os.WriteFile(basePath+".data", data.Bytes(), 0o644); err != nil {
		return err
	}
	if err := writeIndexFile(basePath+".index", ngramIndexMagic, offsets); err != nil {
		return err
	}

	uniEntries := make(map[string]uint64, len(unigrams))
	for tok, score := range unigrams {
		uniEntries[tok] = uint64(score)
	}
	return writeIndexFile(basePath+".unigram", ngramUnigramMagic, uniEntries)
}
