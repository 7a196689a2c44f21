// Package pinyinime implements a pinyin input method conversion engine:
// dictionary lookup over a sorted on-disk index, syllable
// segmentation, n-gram-augmented ranking, and the composition state
// machine that turns keystrokes into commit/consume/pass-through
// decisions.
package pinyinime

import (
	"fmt"

	"github.com/kho/word"
)

// Entry is the (word, hint) part of one (key, word, hint) triple in a
// DictionaryStore; the key (the lowercase, tone-stripped romanisation)
// is not stored in it. Word is the target-language string; Hint is an
// optional English gloss or numeric weight. ID is the
// word's id in the owning DictionaryStore's vocabulary, interned once at
// read time; the beam search in rank.go compares and keys candidates by
// ID rather than by the string itself.
type Entry struct {
	Word string
	Hint string
	ID   word.Id
}

func (e Entry) String() string {
	return fmt.Sprintf("%s(%s)", e.Word, e.Hint)
}
