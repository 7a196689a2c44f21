package pinyinime

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"sort"
)

// sortedIndex is the hand-rolled stand-in for a finite-state transducer
// used by both the dictionary and the static n-gram model: a sorted array
// of (key, value) pairs, binary-searched for exact and prefix queries. See
// DESIGN.md for why no borrowed FST library is used here.
type sortedIndex struct {
	records []indexRecord
}

func parseSortedIndex(magic string, raw []byte) (*sortedIndex, error) {
	if len(raw) < len(magic)+4 || string(raw[:len(magic)]) != magic {
		return nil, errors.New("bad index magic")
	}
	cursor := len(magic)
	count := binary.LittleEndian.Uint32(raw[cursor:])
	cursor += 4
	records := make([]indexRecord, 0, count)
	for i := uint32(0); i < count; i++ {
		if cursor+2 > len(raw) {
			return nil, errors.New("truncated index")
		}
		keyLen := int(binary.LittleEndian.Uint16(raw[cursor:]))
		cursor += 2
		if cursor+keyLen+8 > len(raw) {
			return nil, errors.New("truncated index entry")
		}
		key := raw[cursor : cursor+keyLen]
		cursor += keyLen
		value := binary.LittleEndian.Uint64(raw[cursor:])
		cursor += 8
		records = append(records, indexRecord{key, value})
	}
	return &sortedIndex{records: records}, nil
}

// buildSortedIndex serialises keys (sorted ascending) with their uint64
// values into the on-disk layout parseSortedIndex expects.
func buildSortedIndex(magic string, entries map[string]uint64) []byte {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString(magic)
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(keys)))
	buf.Write(countBuf[:])
	for _, k := range keys {
		var kl [2]byte
		binary.LittleEndian.PutUint16(kl[:], uint16(len(k)))
		buf.Write(kl[:])
		buf.WriteString(k)
		var v [8]byte
		binary.LittleEndian.PutUint64(v[:], entries[k])
		buf.Write(v[:])
	}
	return buf.Bytes()
}

func (s *sortedIndex) find(key string) int {
	kb := []byte(key)
	i := sort.Search(len(s.records), func(i int) bool {
		return bytes.Compare(s.records[i].key, kb) >= 0
	})
	if i < len(s.records) && bytes.Equal(s.records[i].key, kb) {
		return i
	}
	return -1
}

// get returns the value stored at key and whether it was present.
func (s *sortedIndex) get(key string) (uint64, bool) {
	i := s.find(key)
	if i < 0 {
		return 0, false
	}
	return s.records[i].offset, true
}

// prefixBounds returns the half-open range [lo, hi) of s.records whose
// key starts with prefix.
func (s *sortedIndex) prefixBounds(prefix string) (lo, hi int) {
	pb := []byte(prefix)
	lo = sort.Search(len(s.records), func(i int) bool {
		return bytes.Compare(s.records[i].key, pb) >= 0
	})
	upper := append(append([]byte{}, pb...), 0xFF)
	hi = sort.Search(len(s.records), func(i int) bool {
		return bytes.Compare(s.records[i].key, upper) > 0
	})
	return lo, hi
}

func writeIndexFile(path, magic string, entries map[string]uint64) error {
	return os.WriteFile(path, buildSortedIndex(magic, entries), 0o644)
}
