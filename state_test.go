package pinyinime

import "testing"

func newTestProcessor(t *testing.T, byKey map[string][]Entry) *Processor {
	t.Helper()
	syl := NewSyllableSet([]string{"ni", "hao", "xi", "an", "xian"})
	dict, err := buildTempStore(byKey)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dict.Close() })

	seg := NewSegmenter(syl)
	ngram := NewNgramModel()
	t.Cleanup(func() { ngram.Close() })
	adapter := NewUserAdapter()

	proc := NewProcessor(seg, adapter)
	proc.AddProfile("chinese", dict, ngram)
	return proc
}

func typeRunes(p *Processor, s string) Action {
	var last Action
	for _, r := range s {
		last = p.HandleRune(r)
	}
	return last
}

// Scenario 1: n,i,h,a,o,Space with ni->你, hao->好, nihao->你好 commits 你好.
func TestScenarioExactPhraseCommit(t *testing.T) {
	p := newTestProcessor(t, map[string][]Entry{
		"ni":    {{Word: "你", Hint: "you"}},
		"hao":   {{Word: "好", Hint: "good"}},
		"nihao": {{Word: "你好", Hint: "hello"}},
	})
	typeRunes(p, "nihao")
	action := p.HandleKey(KeySpace, true, false)
	if action.Kind != ActionEmit || action.Text != "你好" {
		t.Errorf("space commit = %+v, want Emit(你好)", action)
	}
	if p.State() != Direct || p.Buffer() != "" {
		t.Errorf("after commit: state=%v buffer=%q, want Direct/empty", p.State(), p.Buffer())
	}
}

// Scenario 4: n,i,Tab,Tab,Space with three candidates 你,尼,妮 commits 妮.
func TestScenarioTabNavigation(t *testing.T) {
	p := newTestProcessor(t, map[string][]Entry{
		"ni": {
			{Word: "你", Hint: "100"},
			{Word: "尼", Hint: "50"},
			{Word: "妮", Hint: "10"},
		},
	})
	typeRunes(p, "ni")
	if len(p.Candidates()) < 3 {
		t.Fatalf("expected >= 3 candidates, got %v", p.Candidates())
	}
	p.HandleKey(KeyTab, true, false)
	p.HandleKey(KeyTab, true, false)
	if p.Selected() != 2 {
		t.Fatalf("selected = %d, want 2 after two Tabs", p.Selected())
	}
	action := p.HandleKey(KeySpace, true, false)
	if action.Kind != ActionEmit || action.Text != "妮" {
		t.Errorf("space commit after tab-tab = %+v, want Emit(妮)", action)
	}
}

// Scenario 5: x,x,Space with no dictionary match commits the verbatim buffer.
func TestScenarioNoMatchCommitsVerbatim(t *testing.T) {
	p := newTestProcessor(t, map[string][]Entry{})
	typeRunes(p, "xx")
	action := p.HandleKey(KeySpace, true, false)
	if action.Kind != ActionEmit || action.Text != "xx" {
		t.Errorf("space commit with no match = %+v, want Emit(xx)", action)
	}
}

// Scenario 7: n,i,Backspace,Backspace returns to Direct with an empty buffer.
func TestScenarioBackspaceToEmpty(t *testing.T) {
	p := newTestProcessor(t, map[string][]Entry{
		"ni": {{Word: "你", Hint: "you"}},
	})
	typeRunes(p, "ni")
	p.HandleKey(KeyBackspace, true, false)
	p.HandleKey(KeyBackspace, true, false)
	if p.State() != Direct || p.Buffer() != "" {
		t.Errorf("after deleting whole buffer: state=%v buffer=%q, want Direct/empty", p.State(), p.Buffer())
	}
}

func TestReleaseWithEmptyBufferPassesThrough(t *testing.T) {
	p := newTestProcessor(t, map[string][]Entry{})
	action := p.HandleKey(KeyN, false, false)
	if action.Kind != ActionPassThrough {
		t.Errorf("release with empty buffer = %+v, want PassThrough", action)
	}
}

func TestEscapeResets(t *testing.T) {
	p := newTestProcessor(t, map[string][]Entry{
		"ni": {{Word: "你", Hint: "you"}},
	})
	typeRunes(p, "ni")
	p.HandleKey(KeyEsc, true, false)
	if p.State() != Direct || p.Buffer() != "" || len(p.Candidates()) != 0 {
		t.Errorf("after escape: state=%v buffer=%q candidates=%v, want reset", p.State(), p.Buffer(), p.Candidates())
	}
}

func TestDigitSixReservedConsumesWithoutCommit(t *testing.T) {
	p := newTestProcessor(t, map[string][]Entry{
		"ni": {{Word: "你", Hint: "you"}},
	})
	typeRunes(p, "ni")
	action := p.HandleKey(Key6, true, false)
	if action.Kind != ActionConsume {
		t.Errorf("digit 6 = %+v, want Consume", action)
	}
	if p.Buffer() != "ni" {
		t.Errorf("digit 6 should not mutate buffer, got %q", p.Buffer())
	}
}

// Scenario 6: n,i,M auto-commits once the uppercase hint filter narrows
// candidates to exactly one (spec.md §8 invariant 9).
func TestScenarioUppercaseFilterAutoCommits(t *testing.T) {
	p := newTestProcessor(t, map[string][]Entry{
		"ni": {
			{Word: "你", Hint: "you"},
			{Word: "尼", Hint: "monk"},
		},
	})
	typeRunes(p, "ni")
	if len(p.Candidates()) < 2 {
		t.Fatalf("expected >= 2 candidates before filtering, got %v", p.Candidates())
	}
	action := p.HandleRune('M')
	if action.Kind != ActionEmit || action.Text != "尼" {
		t.Errorf("uppercase filter commit = %+v, want Emit(尼)", action)
	}
	if p.State() != Direct || p.Buffer() != "" {
		t.Errorf("after auto-commit: state=%v buffer=%q, want Direct/empty", p.State(), p.Buffer())
	}
}

func TestNextProfileCyclesAndResets(t *testing.T) {
	syl := NewSyllableSet([]string{"ni"})
	dictA, _ := buildTempStore(map[string][]Entry{"ni": {{Word: "你", Hint: ""}}})
	dictB, _ := buildTempStore(map[string][]Entry{"ni": {{Word: "尼", Hint: ""}}})
	defer dictA.Close()
	defer dictB.Close()

	seg := NewSegmenter(syl)
	adapter := NewUserAdapter()
	proc := NewProcessor(seg, adapter)
	proc.AddProfile("chinese", dictA, NewNgramModel())
	proc.AddProfile("alt", dictB, NewNgramModel())

	typeRunes(proc, "ni")
	next := proc.NextProfile()
	if next != "chinese" && next != "alt" {
		t.Fatalf("unexpected profile name %q", next)
	}
	if proc.Buffer() != "" || proc.State() != Direct {
		t.Errorf("NextProfile must reset composition, got buffer=%q state=%v", proc.Buffer(), proc.State())
	}
}
