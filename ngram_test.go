package pinyinime

import "testing"

func TestNgramModelStaticScore(t *testing.T) {
	m, err := buildTempNgram(
		map[string]map[string]uint32{"你": {"好": 7}},
		map[string]uint32{"好": 3},
	)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()
	adapter := NewUserAdapter()

	got := m.Score([]rune("你"), "好", adapter)
	// unigram(好)=3, context "你" length 1 hit: 7*10*1=70. total=73.
	want := uint32(3 + 70)
	if got != want {
		t.Errorf("Score = %d, want %d", got, want)
	}
}

func TestNgramModelUpdateIncreasesScore(t *testing.T) {
	m, err := buildTempNgram(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()
	adapter := NewUserAdapter()

	context := []rune("你")
	before := m.Score(context, "好", adapter)
	adapter.Update(context, "好", defaultMaxN)
	after := m.Score(context, "好", adapter)

	if after <= before {
		t.Errorf("score after update (%d) should exceed score before (%d)", after, before)
	}
}

func TestNgramModelLongestContextWins(t *testing.T) {
	m, err := buildTempNgram(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()
	adapter := NewUserAdapter()

	// Record the same token under both a 1-char and a 2-char context.
	adapter.Update([]rune("你"), "好", defaultMaxN)     // records context "你"
	adapter.Update([]rune("你们"), "好", defaultMaxN)   // records contexts "们" and "你们" (maxN-1 = 2)

	longScore := m.Score([]rune("你们"), "好", adapter)
	shortScore := m.Score([]rune("们"), "好", adapter)
	if longScore == 0 || shortScore == 0 {
		t.Fatalf("expected nonzero scores, got long=%d short=%d", longScore, shortScore)
	}
	// unigram(好)=2; the 2-char context "你们" hits (1*100*2=200) and stops
	// the scan, so the 1-char "们" hit is not added: 2+200=202.
	if want := uint32(2 + 200); longScore != want {
		t.Errorf("Score(你们, 好) = %d, want %d (longest context only)", longScore, want)
	}
}

func TestNgramModelMissingStaticLayerDegradesToZero(t *testing.T) {
	m := NewNgramModel() // no LoadStaticNgram call
	adapter := NewUserAdapter()

	got := m.Score([]rune("你"), "好", adapter)
	if got != 0 {
		t.Errorf("Score with no static layer and empty adapter = %d, want 0", got)
	}
}
