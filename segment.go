package pinyinime

// maxTilings bounds how many complete segmentations segment_all will
// collect before giving up; see spec.md §4.3.
const maxTilings = 15

// maxSyllableLen is the longest a single pinyin syllable may be.
const maxSyllableLen = 6

// Segmenter enumerates syllable tilings of a pinyin string, longest-first,
// bounded to maxTilings complete results. Grounded on
// original_source/src/engine/segmenter.rs.
type Segmenter struct {
	syllables *SyllableSet
}

// NewSegmenter constructs a Segmenter over the given syllable set.
func NewSegmenter(syllables *SyllableSet) *Segmenter {
	return &Segmenter{syllables: syllables}
}

// IsSyllable reports whether s is a member of the segmenter's static
// syllable set (as opposed to a single-letter abbreviation segment or a
// dictionary-only match).
func (seg *Segmenter) IsSyllable(s string) bool {
	return seg.syllables.Contains(s)
}

// SegmentAll enumerates syllable tilings of s. If the divider `'` or
// backtick appears, it is consumed and forces the following syllable to
// start there without crossing the divider. If no tiling results from the
// backtracking search, the single SegmentGreedy tiling is returned
// instead so the caller always has something to rank.
func (seg *Segmenter) SegmentAll(s string, dict *DictionaryStore) [][]string {
	var results [][]string
	var current []string
	seg.segmentRecursive(s, dict, &current, &results)
	if len(results) == 0 {
		results = append(results, seg.SegmentGreedy(s, dict))
	}
	return results
}

func (seg *Segmenter) segmentRecursive(remaining string, dict *DictionaryStore, current *[]string, results *[][]string) {
	if len(*results) >= maxTilings {
		return
	}
	if remaining == "" {
		tiling := make([]string, len(*current))
		copy(tiling, *current)
		*results = append(*results, tiling)
		return
	}

	if remaining[0] == '`' || remaining[0] == '\'' {
		actual := remaining[1:]
		maxLen := maxSyllableLen
		if len(actual) < maxLen {
			maxLen = len(actual)
		}
		for l := maxLen; l >= 1; l-- {
			sub := actual[:l]
			if seg.syllables.Contains(sub) || dict.Contains(sub) {
				*current = append(*current, sub)
				seg.segmentRecursive(actual[l:], dict, current, results)
				*current = (*current)[:len(*current)-1]
				if len(*results) >= maxTilings {
					return
				}
			}
		}
		return
	}

	maxLen := maxSyllableLen
	if len(remaining) < maxLen {
		maxLen = len(remaining)
	}
	matched := false
	for l := maxLen; l >= 2; l-- {
		sub := remaining[:l]
		if seg.syllables.Contains(sub) || dict.Contains(sub) {
			matched = true
			*current = append(*current, sub)
			seg.segmentRecursive(remaining[l:], dict, current, results)
			*current = (*current)[:len(*current)-1]
			if len(*results) >= maxTilings {
				return
			}
		}
	}
	if matched {
		return
	}
	// No multi-byte syllable matched: fall back to a single-letter segment
	// (abbreviation / initials mode).
	sub := remaining[:1]
	*current = append(*current, sub)
	seg.segmentRecursive(remaining[1:], dict, current, results)
	*current = (*current)[:len(*current)-1]
}

// SegmentGreedy is the leftmost-longest-match fallback tiling, used when
// SegmentAll's backtracking search yields nothing.
func (seg *Segmenter) SegmentGreedy(s string, dict *DictionaryStore) []string {
	var segments []string
	offset := 0
	for offset < len(s) {
		cur := s[offset:]
		if cur[0] == '`' || cur[0] == '\'' {
			offset++
			continue
		}
		maxLen := maxSyllableLen
		if len(cur) < maxLen {
			maxLen = len(cur)
		}
		foundLen := 0
		for l := maxLen; l >= 1; l-- {
			sub := cur[:l]
			if seg.syllables.Contains(sub) || dict.Contains(sub) {
				foundLen = l
				break
			}
		}
		if foundLen == 0 {
			foundLen = 1
		}
		segments = append(segments, cur[:foundLen])
		offset += foundLen
	}
	return segments
}
