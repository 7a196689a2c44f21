package pinyinime

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"syscall"

	"github.com/golang/glog"
	"github.com/kho/word"
)

// dictIndexMagic tags a compiled dictionary .index file.
const dictIndexMagic = "#pyim.idx1"

// indexRecord is one parsed entry of a sortedIndex: key is the lowercase
// tone-stripped romanisation (or n-gram context string), offset/value is
// the associated uint64 payload (a byte offset, or — for the n-gram
// unigram table — a score).
type indexRecord struct {
	key    []byte
	offset uint64
}

// DictionaryStore is an immutable, memory-mapped mapping from
// romanisation key to a list of (word, hint) entries. It is constructed
// once from a compiled (.index, .data) pair whose mapped bytes are never
// mutated; lookups do add the words they read to vocab, and the store
// does no locking of its own.
type DictionaryStore struct {
	idxFile, dataFile *os.File
	idxMap, dataMap   []byte
	index             *sortedIndex

	// vocab interns word strings returned from lookups so that repeated
	// beam-search paths over the same dictionary words compare small
	// integer ids instead of re-hashing byte strings.
	vocab *word.Vocab
}

// LoadDictionaryStore memory-maps path+".index" and path+".data" and
// parses the index into a sorted in-memory table. It fails loudly
// (returns an error) if either file cannot be opened or mapped or the
// index is malformed, per the "malformed input data is fatal at load
// time" rule in spec.md §7. Records in the data file are checked only as
// they are read; a truncated record is logged and cut short.
func LoadDictionaryStore(path string) (*DictionaryStore, error) {
	idxF, idxMap, err := mmapFile(path + ".index")
	if err != nil {
		return nil, fmt.Errorf("dictionary index %s: %w", path, err)
	}
	dataF, dataMap, err := mmapFile(path + ".data")
	if err != nil {
		idxF.Close()
		syscall.Munmap(idxMap)
		return nil, fmt.Errorf("dictionary data %s: %w", path, err)
	}
	index, err := parseSortedIndex(dictIndexMagic, idxMap)
	if err != nil {
		idxF.Close()
		dataF.Close()
		syscall.Munmap(idxMap)
		syscall.Munmap(dataMap)
		return nil, fmt.Errorf("dictionary index %s: %w", path, err)
	}
	return &DictionaryStore{
		idxFile: idxF, dataFile: dataF,
		idxMap: idxMap, dataMap: dataMap,
		index: index,
		vocab: word.NewVocab("<unk>", "<s>", "</s>"),
	}, nil
}

// Close releases the memory maps. The store must not be used afterwards.
func (d *DictionaryStore) Close() error {
	err1 := syscall.Munmap(d.idxMap)
	var err2 error
	if len(d.dataMap) > 0 {
		err2 = syscall.Munmap(d.dataMap)
	}
	err3 := d.idxFile.Close()
	err4 := d.dataFile.Close()
	for _, e := range []error{err1, err2, err3, err4} {
		if e != nil {
			return e
		}
	}
	return nil
}

func mmapFile(path string) (*os.File, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if stat.Size() == 0 {
		// A zero-length file (e.g. the data blob of a store compiled from
		// no entries) cannot be mapped; it is returned as a nil slice.
		return f, nil, nil
	}
	data, err := syscall.Mmap(int(f.Fd()), 0, int(stat.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, data, nil
}

// Contains reports whether key has at least one entry.
func (d *DictionaryStore) Contains(key string) bool {
	_, ok := d.index.get(key)
	return ok
}

// internWord returns s's id in d's vocabulary, assigning one if s has
// never been seen (e.g. a multi-segment phrase built by concatenating
// entries during beam search, rather than a dictionary-compiled word).
func (d *DictionaryStore) internWord(s string) word.Id {
	return d.vocab.IdOrAdd(s)
}

// wordString resolves an id returned by internWord or an Entry.ID back
// to its string.
func (d *DictionaryStore) wordString(id word.Id) string {
	return d.vocab.StringOf(id)
}

// GetAllExact returns every entry at key, in compiled order, or nil if
// key has no entries.
func (d *DictionaryStore) GetAllExact(key string) []Entry {
	offset, ok := d.index.get(key)
	if !ok {
		return nil
	}
	return d.readRecord(offset)
}

func (d *DictionaryStore) readRecord(offset uint64) []Entry {
	raw := d.dataMap
	cursor := offset
	if cursor+4 > uint64(len(raw)) {
		glog.Errorf("dictionary record at offset %d: truncated count", offset)
		return nil
	}
	count := binary.LittleEndian.Uint32(raw[cursor:])
	cursor += 4
	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		if cursor+2 > uint64(len(raw)) {
			glog.Errorf("dictionary record at offset %d: truncated word length", offset)
			break
		}
		wl := uint64(binary.LittleEndian.Uint16(raw[cursor:]))
		cursor += 2
		if cursor+wl > uint64(len(raw)) {
			glog.Errorf("dictionary record at offset %d: truncated word", offset)
			break
		}
		wordBytes := raw[cursor : cursor+wl]
		cursor += wl
		if cursor+2 > uint64(len(raw)) {
			glog.Errorf("dictionary record at offset %d: truncated hint length", offset)
			break
		}
		hl := uint64(binary.LittleEndian.Uint16(raw[cursor:]))
		cursor += 2
		if cursor+hl > uint64(len(raw)) {
			glog.Errorf("dictionary record at offset %d: truncated hint", offset)
			break
		}
		hintBytes := raw[cursor : cursor+hl]
		cursor += hl

		w := string(wordBytes)
		entries = append(entries, Entry{Word: w, Hint: string(hintBytes), ID: d.vocab.IdOrAdd(w)})
	}
	return entries
}

// PrefixSearch enumerates words under every key starting with prefix,
// ordered by (key length, key) ascending and by record order within a
// key, deduplicated by word, bounded by limit.
func (d *DictionaryStore) PrefixSearch(prefix string, limit int) []Entry {
	lo, hi := d.index.prefixBounds(prefix)
	matches := make([]indexRecord, 0, hi-lo)
	pb := []byte(prefix)
	for i := lo; i < hi; i++ {
		if bytes.HasPrefix(d.index.records[i].key, pb) {
			matches = append(matches, d.index.records[i])
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if len(matches[i].key) != len(matches[j].key) {
			return len(matches[i].key) < len(matches[j].key)
		}
		return bytes.Compare(matches[i].key, matches[j].key) < 0
	})

	seen := make(map[string]bool)
	var out []Entry
	for _, m := range matches {
		for _, e := range d.readRecord(m.offset) {
			if seen[e.Word] {
				continue
			}
			seen[e.Word] = true
			out = append(out, e)
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}

// RandomEntry returns a uniform-ish sample (key, word) pair, used by the
// external learning UI. It returns false if the store is empty.
func (d *DictionaryStore) RandomEntry(seed uint64) (key, wordOut string, ok bool) {
	records := d.index.records
	if len(records) == 0 {
		return "", "", false
	}
	i := int(seed % uint64(len(records)))
	rec := records[i]
	entries := d.readRecord(rec.offset)
	if len(entries) == 0 {
		return "", "", false
	}
	j := int(seed>>32) % len(entries)
	return string(rec.key), entries[j].Word, true
}

// BuildStore writes the §6 compiled dictionary format (path+".index",
// path+".data") from in-memory entries. This is test-fixture tooling
// standing in for the out-of-scope production dictionary compiler; order
// within a key is preserved, duplicate words within a key are dropped.
func BuildStore(path string, byKey map[string][]Entry) error {
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data bytes.Buffer
	offsets := make(map[string]uint64, len(keys))

	for _, k := range keys {
		entries := dedupByWord(byKey[k])
		offsets[k] = uint64(data.Len())

		var countBuf [4]byte
		binary.LittleEndian.PutUint32(countBuf[:], uint32(len(entries)))
		data.Write(countBuf[:])
		for _, e := range entries {
			writeLenPrefixed(&data, e.Word)
			writeLenPrefixed(&data, e.Hint)
		}
	}

	if err := os.WriteFile(path+".data", data.Bytes(), 0o644); err != nil {
		return err
	}
	return writeIndexFile(path+".index", dictIndexMagic, offsets)
}

func dedupByWord(entries []Entry) []Entry {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if seen[e.Word] {
			continue
		}
		seen[e.Word] = true
		out = append(out, e)
	}
	return out
}

func writeLenPrefixed(buf *bytes.Buffer, s string) {
	var l [2]byte
	binary.LittleEndian.PutUint16(l[:], uint16(len(s)))
	buf.Write(l[:])
	buf.WriteString(s)
}
