package pinyinime

import "os"

// buildTempStore compiles byKey into a DictionaryStore backed by files in
// a fresh temp directory, for use across this package's tests.
func buildTempStore(byKey map[string][]Entry) (*DictionaryStore, error) {
	dir, err := os.MkdirTemp("", "pyim-dict-*")
	if err != nil {
		return nil, err
	}
	base := dir + "/test"
	if err := BuildStore(base, byKey); err != nil {
		return nil, err
	}
	return LoadDictionaryStore(base)
}

// buildTempNgram compiles transitions/unigrams into an NgramModel backed
// by files in a fresh temp directory.
func buildTempNgram(transitions map[string]map[string]uint32, unigrams map[string]uint32) (*NgramModel, error) {
	dir, err := os.MkdirTemp("", "pyim-ngram-*")
	if err != nil {
		return nil, err
	}
	base := dir + "/test"
	if err := BuildStaticNgram(base, transitions, unigrams); err != nil {
		return nil, err
	}
	m := NewNgramModel()
	if err := m.LoadStaticNgram(base); err != nil {
		return nil, err
	}
	return m, nil
}
