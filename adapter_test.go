package pinyinime

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUserAdapterSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adapter.json")

	a := NewUserAdapter()
	a.Update([]rune("你"), "好", defaultMaxN)
	a.Update([]rune("你"), "好", defaultMaxN)
	a.Update(nil, "你", defaultMaxN)

	if err := a.SaveUserAdapter(path); err != nil {
		t.Fatal(err)
	}

	b := NewUserAdapter()
	b.LoadUserAdapter(path)

	if got, want := b.unigramCount("好"), a.unigramCount("好"); got != want {
		t.Errorf("unigramCount(好) after round trip = %d, want %d", got, want)
	}
	gotScore, gotOK := b.transitionCount("你", "好")
	wantScore, wantOK := a.transitionCount("你", "好")
	if gotOK != wantOK || gotScore != wantScore {
		t.Errorf("transitionCount(你,好) after round trip = (%d,%v), want (%d,%v)", gotScore, gotOK, wantScore, wantOK)
	}
}

func TestUserAdapterLoadMissingFileStartsEmpty(t *testing.T) {
	a := NewUserAdapter()
	a.LoadUserAdapter(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if a.unigramCount("anything") != 0 {
		t.Error("expected empty adapter after loading a missing file")
	}
}

func TestUserAdapterLoadMalformedFileDiscardedNotFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := NewUserAdapter()
	a.Update(nil, "preexisting", defaultMaxN)
	a.LoadUserAdapter(path) // must not panic or overwrite existing state

	if a.unigramCount("preexisting") == 0 {
		t.Error("malformed adapter file should be discarded, not clobber in-memory state")
	}
}

func TestAdapterFlusherPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flushed.json")

	a := NewUserAdapter()
	a.Update(nil, "好", defaultMaxN)

	f := NewAdapterFlusher()
	f.Flush(a, path)
	f.Close() // Close drains the queue, guaranteeing the flush above landed.

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected flushed file to exist: %v", err)
	}

	b := NewUserAdapter()
	b.LoadUserAdapter(path)
	if b.unigramCount("好") == 0 {
		t.Error("flushed adapter did not round-trip the recorded unigram")
	}
}
