package pinyinime

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kho/word"
)

const (
	scoreFullSyllableCube   = 1000
	scoreFewerSegmentsBonus = 2_000_000
	scorePartialSyllablePenaltyDiv = 5
	scoreNonMinSegmentsPenaltyDiv  = 10
	scorePhraseMatchBonus   = 1_000_000
	scoreExactMatchBase     = 50_000_000
	scoreExactMatchPosStep  = 100
	scorePhraseLengthBonus  = 10_000

	beamWidth        = 5
	maxSegmentations = 5
	prefixSearchLimit = 10
)

// lookupResult is what the ranker hands back to the composition state
// machine: the ranked candidate words, their parallel hints, and the
// segmentation that produced the top candidate (for preedit rendering).
type lookupResult struct {
	candidates []string
	hints      []string
	bestSeg    []string
}

type candidateState struct {
	score uint32
	seg   []string
}

// pathState is one partial beam-search path: id is the interned id of the
// phrase built so far (via DictionaryStore.internWord), not the string
// itself, so comparing and deduplicating paths during the beam's inner
// loops is an integer comparison rather than a string compare.
type pathState struct {
	id    word.Id
	score uint32
}

// Lookup is the ranker described in spec.md §4.6: it splits buffer into a
// pinyin search string and an optional uppercase filter suffix, enumerates
// segmentations, beam-searches dictionary entries per segmentation with
// n-gram score fusion, merges in an exact-full-pinyin boost, and returns
// the sorted candidate list. Grounded on
// original_source/src/engine/processor.rs::lookup.
func Lookup(buffer string, dict *DictionaryStore, seg *Segmenter, ngram *NgramModel, adapter *UserAdapter) lookupResult {
	pinyinSearch, filterString := splitFilter(buffer)
	pinyinStripped := strings.ToLower(StripTones(pinyinSearch))

	allSegmentations := seg.SegmentAll(pinyinStripped, dict)
	minSegments := -1
	for _, s := range allSegmentations {
		if minSegments == -1 || len(s) < minSegments {
			minSegments = len(s)
		}
	}

	candidateMap := make(map[word.Id]candidateState)
	wordToHint := make(map[word.Id]string)

	limit := len(allSegmentations)
	if limit > maxSegmentations {
		limit = maxSegmentations
	}
	for _, segments := range allSegmentations[:limit] {
		if len(segments) == 0 {
			continue
		}
		pathScore := segmentationBaseScore(segments, minSegments, seg)
		finalPaths := beamSearch(segments, pathScore, dict, ngram, adapter, wordToHint)
		for _, p := range finalPaths {
			cur, exists := candidateMap[p.id]
			if !exists || p.score > cur.score {
				candidateMap[p.id] = candidateState{score: p.score, seg: segments}
			}
		}
	}

	for pos, e := range dict.GetAllExact(pinyinStripped) {
		wordToHint[e.ID] = e.Hint
		cur, exists := candidateMap[e.ID]
		if !exists {
			cur = candidateState{seg: []string{pinyinStripped}}
		}
		cur.score += scoreExactMatchBase - uint32(pos*scoreExactMatchPosStep)
		candidateMap[e.ID] = cur
	}

	type scored struct {
		id    word.Id
		word  string
		score uint32
		seg   []string
	}
	finalList := make([]scored, 0, len(candidateMap))
	for id, cs := range candidateMap {
		w := dict.wordString(id)
		score := cs.score
		if utf8.RuneCountInString(w) >= 2 {
			score += scorePhraseLengthBonus
		}
		if hint, ok := wordToHint[id]; ok {
			if n, err := strconv.ParseUint(hint, 10, 32); err == nil {
				score += uint32(n)
			}
		}
		finalList = append(finalList, scored{id, w, score, cs.seg})
	}

	if filterString != "" {
		filtered := finalList[:0]
		for _, c := range finalList {
			if hintMatchesFilter(dict, c.id, c.word, wordToHint, filterString) {
				filtered = append(filtered, c)
			}
		}
		finalList = filtered
	}

	sort.SliceStable(finalList, func(i, j int) bool {
		if finalList[i].score != finalList[j].score {
			return finalList[i].score > finalList[j].score
		}
		li, lj := utf8.RuneCountInString(finalList[i].word), utf8.RuneCountInString(finalList[j].word)
		if li != lj {
			return li > lj
		}
		return finalList[i].word < finalList[j].word
	})

	var result lookupResult
	if len(finalList) == 0 {
		result.candidates = []string{buffer}
		result.hints = []string{""}
		return result
	}
	result.bestSeg = finalList[0].seg
	result.candidates = make([]string, len(finalList))
	result.hints = make([]string, len(finalList))
	for i, c := range finalList {
		result.candidates[i] = c.word
		result.hints[i] = wordToHint[c.id]
	}
	return result
}

// splitFilter splits buffer at the first uppercase letter at rune index
// >= 1 into (pinyinSearch, lowercased filterString).
func splitFilter(buffer string) (pinyinSearch, filterString string) {
	runes := []rune(buffer)
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) {
			return string(runes[:i]), strings.ToLower(string(runes[i:]))
		}
	}
	return buffer, ""
}

func segmentationBaseScore(segments []string, minSegments int, seg *Segmenter) uint32 {
	var pathScore uint32
	validCount := 0
	for _, s := range segments {
		if seg.IsSyllable(s) {
			pathScore += uint32(len(s)) * uint32(len(s)) * uint32(len(s)) * scoreFullSyllableCube
			validCount++
		}
	}
	if len(segments) == minSegments {
		pathScore += scoreFewerSegmentsBonus
	} else {
		pathScore /= scoreNonMinSegmentsPenaltyDiv
	}
	if validCount < len(segments) {
		pathScore /= scorePartialSyllablePenaltyDiv
	}
	return pathScore
}

// beamSearch walks segments left to right, keeping the top beamWidth
// partial words at each position, scored by the running path score plus
// n-gram fusion and an exact-phrase-match bonus. Partial paths are
// compared and deduplicated by their interned word.Id, not by string.
func beamSearch(segments []string, pathScore uint32, dict *DictionaryStore, ngram *NgramModel, adapter *UserAdapter, wordToHint map[word.Id]string) []pathState {
	first := charsAt(segments[0], dict)
	current := make([]pathState, 0, len(first))
	for _, e := range first {
		current = append(current, pathState{id: e.ID, score: pathScore})
		if _, ok := wordToHint[e.ID]; !ok {
			wordToHint[e.ID] = e.Hint
		}
	}

	for i := 1; i < len(segments); i++ {
		nextEntries := charsAt(segments[i], dict)
		combined := strings.Join(segments[:i+1], "")
		exactIds := make(map[word.Id]bool)
		for _, e := range dict.GetAllExact(combined) {
			exactIds[e.ID] = true
		}

		next := make([]pathState, 0, len(current)*len(nextEntries))
		for _, prev := range current {
			prevWord := dict.wordString(prev.id)
			prevContext := []rune(prevWord)
			for _, e := range nextEntries {
				if _, ok := wordToHint[e.ID]; !ok {
					wordToHint[e.ID] = e.Hint
				}
				newId := dict.internWord(prevWord + e.Word)
				newScore := prev.score
				if exactIds[newId] {
					newScore += scorePhraseMatchBonus
				}
				newScore += ngram.Score(prevContext, e.Word, adapter)
				next = append(next, pathState{id: newId, score: newScore})
			}
		}
		sort.SliceStable(next, func(a, b int) bool { return next[a].score > next[b].score })
		if len(next) > beamWidth {
			next = next[:beamWidth]
		}
		current = next
	}
	return current
}

// charsAt returns the dictionary candidates at one segment: a bounded
// prefix search for single-letter (abbreviation) segments, or the exact
// entries for a full syllable/phrase segment.
func charsAt(segment string, dict *DictionaryStore) []Entry {
	if utf8.RuneCountInString(segment) == 1 {
		return dict.PrefixSearch(segment, prefixSearchLimit)
	}
	return dict.GetAllExact(segment)
}

func hintMatchesFilter(dict *DictionaryStore, id word.Id, text string, wordToHint map[word.Id]string, filterString string) bool {
	if hint, ok := wordToHint[id]; ok && strings.HasPrefix(strings.ToLower(hint), filterString) {
		return true
	}
	firstChar, _ := utf8.DecodeRuneInString(text)
	if firstChar == utf8.RuneError {
		return false
	}
	if hint, ok := wordToHint[dict.internWord(string(firstChar))]; ok {
		return strings.HasPrefix(strings.ToLower(hint), filterString)
	}
	return false
}
