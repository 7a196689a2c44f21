package pinyinime

import "testing"

func TestLookupExactMatchWins(t *testing.T) {
	syl := NewSyllableSet([]string{"ni", "hao"})
	dict, err := buildTempStore(map[string][]Entry{
		"ni":    {{Word: "你", Hint: "you"}},
		"hao":   {{Word: "好", Hint: "good"}},
		"nihao": {{Word: "你好", Hint: "hello"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer dict.Close()
	seg := NewSegmenter(syl)
	ngram := NewNgramModel()
	adapter := NewUserAdapter()

	result := Lookup("nihao", dict, seg, ngram, adapter)
	if len(result.candidates) == 0 || result.candidates[0] != "你好" {
		t.Errorf("Lookup(nihao) top candidate = %v, want 你好 first", result.candidates)
	}
}

func TestLookupFallsBackToVerbatimBuffer(t *testing.T) {
	syl := NewSyllableSet([]string{"xx"})
	dict, err := buildTempStore(map[string][]Entry{})
	if err != nil {
		t.Fatal(err)
	}
	defer dict.Close()
	seg := NewSegmenter(syl)
	ngram := NewNgramModel()
	adapter := NewUserAdapter()

	result := Lookup("xx", dict, seg, ngram, adapter)
	if len(result.candidates) != 1 || result.candidates[0] != "xx" {
		t.Errorf("Lookup(xx) with no matches = %v, want [xx]", result.candidates)
	}
}

func TestLookupNeverEmpty(t *testing.T) {
	syl := NewSyllableSet(nil)
	dict, err := buildTempStore(map[string][]Entry{})
	if err != nil {
		t.Fatal(err)
	}
	defer dict.Close()
	seg := NewSegmenter(syl)
	ngram := NewNgramModel()
	adapter := NewUserAdapter()

	for _, buf := range []string{"a", "zzzz", "qwerty"} {
		result := Lookup(buf, dict, seg, ngram, adapter)
		if len(result.candidates) == 0 {
			t.Errorf("Lookup(%q) returned no candidates", buf)
		}
	}
}

func TestLookupUppercaseFilterNarrowsCandidates(t *testing.T) {
	syl := NewSyllableSet([]string{"ni"})
	dict, err := buildTempStore(map[string][]Entry{
		"ni": {{Word: "你", Hint: "you"}, {Word: "尼", Hint: "monk"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer dict.Close()
	seg := NewSegmenter(syl)
	ngram := NewNgramModel()
	adapter := NewUserAdapter()

	result := Lookup("niM", dict, seg, ngram, adapter)
	for _, c := range result.candidates {
		if c != "尼" {
			t.Errorf("filter 'M' should only retain the monk hint, got %v", result.candidates)
		}
	}
	if len(result.candidates) != 1 {
		t.Errorf("expected exactly one filtered candidate, got %v", result.candidates)
	}
}

func TestSplitFilter(t *testing.T) {
	cases := []struct {
		in, wantPinyin, wantFilter string
	}{
		{"nihao", "nihao", ""},
		{"nihaoM", "nihao", "m"},
		{"Nihao", "Nihao", ""}, // uppercase at index 0 does not split
	}
	for _, c := range cases {
		p, f := splitFilter(c.in)
		if p != c.wantPinyin || f != c.wantFilter {
			t.Errorf("splitFilter(%q) = (%q,%q), want (%q,%q)", c.in, p, f, c.wantPinyin, c.wantFilter)
		}
	}
}
