package pinyinime

import (
	"bufio"
	"os"
	"strings"
)

// SyllableSet is the static set of legal pinyin syllables, loaded once
// from a text file with one syllable per line. Syllable lengths are
// 1-6 ASCII bytes.
type SyllableSet struct {
	set map[string]bool
}

// NewSyllableSet builds a SyllableSet from an explicit list, useful for
// tests and embedding small fixture sets.
func NewSyllableSet(syllables []string) *SyllableSet {
	s := &SyllableSet{set: make(map[string]bool, len(syllables))}
	for _, syl := range syllables {
		s.set[syl] = true
	}
	return s
}

// LoadSyllableSet reads a syllable list file, one syllable per line,
// blank lines ignored.
func LoadSyllableSet(path string) (*SyllableSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s := &SyllableSet{set: make(map[string]bool)}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.set[line] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// Contains reports whether s is a legal syllable.
func (s *SyllableSet) Contains(syl string) bool {
	return s.set[syl]
}
