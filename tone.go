package pinyinime

// vowelTable describes one pinyin vowel letter ('v' stands for the
// untypeable ü): its plain lower/upper forms and its four toned
// lower/upper forms (macron, acute, caron, grave).
type vowelTable struct {
	lower, upper       rune
	toneLower, toneUpper [4]rune
}

var vowels = []vowelTable{
	{'a', 'A', [4]rune{'ā', 'á', 'ǎ', 'à'}, [4]rune{'Ā', 'Á', 'Ǎ', 'À'}},
	{'e', 'E', [4]rune{'ē', 'é', 'ě', 'è'}, [4]rune{'Ē', 'É', 'Ě', 'È'}},
	{'i', 'I', [4]rune{'ī', 'í', 'ǐ', 'ì'}, [4]rune{'Ī', 'Í', 'Ǐ', 'Ì'}},
	{'o', 'O', [4]rune{'ō', 'ó', 'ǒ', 'ò'}, [4]rune{'Ō', 'Ó', 'Ǒ', 'Ò'}},
	{'u', 'U', [4]rune{'ū', 'ú', 'ǔ', 'ù'}, [4]rune{'Ū', 'Ú', 'Ǔ', 'Ù'}},
	{'v', 'V', [4]rune{'ǖ', 'ǘ', 'ǚ', 'ǜ'}, [4]rune{'Ǖ', 'Ǘ', 'Ǚ', 'Ǜ'}},
}

// vowelRune classifies r as a vowel occurrence (plain or toned): it
// returns the owning vowelTable, whether r was uppercase, and whether r
// was already toned (and if so, which tone 1-4).
func vowelRune(r rune) (v vowelTable, upper bool, tone int, ok bool) {
	for _, v := range vowels {
		switch r {
		case v.lower:
			return v, false, 0, true
		case v.upper:
			return v, true, 0, true
		}
		for i, t := range v.toneLower {
			if r == t {
				return v, false, i + 1, true
			}
		}
		for i, t := range v.toneUpper {
			if r == t {
				return v, true, i + 1, true
			}
		}
	}
	return vowelTable{}, false, 0, false
}

// StripTones removes tone diacritics from s, mapping each toned vowel
// back to its plain base letter ('v' for ü). Grounded on
// original_source/src/engine/processor.rs::strip_tones.
func StripTones(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		v, upper, tone, ok := vowelRune(r)
		if !ok || tone == 0 {
			continue
		}
		if upper {
			runes[i] = v.upper
		} else {
			runes[i] = v.lower
		}
	}
	return string(runes)
}

// ApplyTone replaces the last vowel in buffer with its tone-marked form
// for the given tone (1-4), per spec.md §4.5 (digits 7,8,9,0 -> tones
// 1,2,3,4). If buffer has no vowel, it is returned unchanged.
func ApplyTone(buffer string, tone int) string {
	if tone < 1 || tone > 4 {
		return buffer
	}
	runes := []rune(buffer)
	for i := len(runes) - 1; i >= 0; i-- {
		v, upper, _, ok := vowelRune(runes[i])
		if !ok {
			continue
		}
		if upper {
			runes[i] = v.toneUpper[tone-1]
		} else {
			runes[i] = v.toneLower[tone-1]
		}
		return string(runes)
	}
	return buffer
}
