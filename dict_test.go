package pinyinime

import "testing"

func TestDictionaryStoreExactLookup(t *testing.T) {
	dict, err := buildTempStore(map[string][]Entry{
		"ni":  {{Word: "你", Hint: "you"}, {Word: "尼", Hint: "nun"}},
		"hao": {{Word: "好", Hint: "good"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer dict.Close()

	if !dict.Contains("ni") {
		t.Error("expected dictionary to contain 'ni'")
	}
	if dict.Contains("missing") {
		t.Error("did not expect dictionary to contain 'missing'")
	}

	entries := dict.GetAllExact("ni")
	if len(entries) != 2 || entries[0].Word != "你" || entries[1].Word != "尼" {
		t.Errorf("GetAllExact(ni) = %v, want [你(you) 尼(nun)] in order", entries)
	}

	if got := dict.GetAllExact("absent"); got != nil {
		t.Errorf("GetAllExact(absent) = %v, want nil", got)
	}
}

func TestDictionaryStoreDedupesByWord(t *testing.T) {
	dict, err := buildTempStore(map[string][]Entry{
		"ni": {{Word: "你", Hint: "a"}, {Word: "你", Hint: "b"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer dict.Close()

	entries := dict.GetAllExact("ni")
	if len(entries) != 1 {
		t.Errorf("expected duplicate word to be dropped, got %v", entries)
	}
}

func TestDictionaryStorePrefixSearch(t *testing.T) {
	dict, err := buildTempStore(map[string][]Entry{
		"n":   {{Word: "嗯", Hint: "initial n"}},
		"ni":  {{Word: "你", Hint: "you"}},
		"nin": {{Word: "您", Hint: "you (polite)"}},
		"na":  {{Word: "那", Hint: "that"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer dict.Close()

	got := dict.PrefixSearch("n", 10)
	if len(got) != 4 {
		t.Fatalf("PrefixSearch(n) returned %d entries, want 4: %v", len(got), got)
	}
	// shortest key ("n") must sort first.
	if got[0].Word != "嗯" {
		t.Errorf("PrefixSearch(n)[0] = %v, want shortest key first", got[0])
	}
}

func TestDictionaryStorePrefixSearchRespectsLimit(t *testing.T) {
	byKey := map[string][]Entry{}
	for _, w := range []string{"一", "二", "三", "四", "五"} {
		byKey["yi"] = append(byKey["yi"], Entry{Word: w, Hint: ""})
	}
	dict, err := buildTempStore(byKey)
	if err != nil {
		t.Fatal(err)
	}
	defer dict.Close()

	got := dict.PrefixSearch("yi", 2)
	if len(got) != 2 {
		t.Errorf("PrefixSearch with limit 2 returned %d entries", len(got))
	}
}

func TestDictionaryStoreRandomEntry(t *testing.T) {
	dict, err := buildTempStore(map[string][]Entry{
		"ni": {{Word: "你", Hint: "you"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer dict.Close()

	key, word, ok := dict.RandomEntry(42)
	if !ok || key != "ni" || word != "你" {
		t.Errorf("RandomEntry = (%q, %q, %v), want (ni, 你, true)", key, word, ok)
	}
}

func TestDictionaryStoreRandomEntryEmpty(t *testing.T) {
	dict, err := buildTempStore(map[string][]Entry{})
	if err != nil {
		t.Fatal(err)
	}
	defer dict.Close()

	if _, _, ok := dict.RandomEntry(1); ok {
		t.Error("expected RandomEntry on empty store to report ok=false")
	}
}
