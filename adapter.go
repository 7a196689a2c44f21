package pinyinime

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/glog"
)

// UserAdapter is the single, profile-independent habit store described in
// spec.md §4.8: every profile's NgramModel consults the same UserAdapter
// for its user-layer score contribution, and every commit updates it
// regardless of which profile is active. Grounded on
// original_source/src/ngram.rs's mutable side and kho/fslm's model.go
// (counts keyed by context, in-memory rather than mmap'd here since this
// layer is written, not just read).
type UserAdapter struct {
	mu           sync.Mutex
	transitions  map[string]map[string]uint32
	unigrams     map[string]uint32
}

// NewUserAdapter returns an empty adapter; learning starts from scratch.
func NewUserAdapter() *UserAdapter {
	return &UserAdapter{
		transitions: make(map[string]map[string]uint32),
		unigrams:    make(map[string]uint32),
	}
}

// Update records one commit of token following contextChars: the unigram
// count and every context-suffix length from 1 up to maxN-1 are
// incremented, per spec.md §4.4's online-learning description.
func (a *UserAdapter) Update(contextChars []rune, token string, maxN int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.unigrams[token]++

	maxLen := len(contextChars)
	if maxLen > maxN-1 {
		maxLen = maxN - 1
	}
	for l := 1; l <= maxLen; l++ {
		ctx := string(contextChars[len(contextChars)-l:])
		byToken, ok := a.transitions[ctx]
		if !ok {
			byToken = make(map[string]uint32)
			a.transitions[ctx] = byToken
		}
		byToken[token]++
	}
}

func (a *UserAdapter) unigramCount(token string) uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.unigrams[token]
}

func (a *UserAdapter) transitionCount(ctx, token string) (uint32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	byToken, ok := a.transitions[ctx]
	if !ok {
		return 0, false
	}
	score, ok := byToken[token]
	return score, ok
}

// userAdapterDoc is the §6 on-disk JSON wire format for a UserAdapter.
type userAdapterDoc struct {
	Transitions map[string]map[string]uint32 `json:"transitions"`
	Unigrams    map[string]uint32            `json:"unigrams"`
}

func (a *UserAdapter) snapshot() userAdapterDoc {
	a.mu.Lock()
	defer a.mu.Unlock()
	doc := userAdapterDoc{
		Transitions: make(map[string]map[string]uint32, len(a.transitions)),
		Unigrams:    make(map[string]uint32, len(a.unigrams)),
	}
	for ctx, byToken := range a.transitions {
		cp := make(map[string]uint32, len(byToken))
		for tok, score := range byToken {
			cp[tok] = score
		}
		doc.Transitions[ctx] = cp
	}
	for tok, score := range a.unigrams {
		doc.Unigrams[tok] = score
	}
	return doc
}

func (a *UserAdapter) restore(doc userAdapterDoc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if doc.Transitions != nil {
		a.transitions = doc.Transitions
	}
	if doc.Unigrams != nil {
		a.unigrams = doc.Unigrams
	}
}

// LoadUserAdapter reads the §6 JSON user-adapter document at path into a.
// A missing, unreadable or malformed file is not an error to the caller:
// a missing file is skipped silently, and per spec.md §7 ("user adapter
// corruption: logged and discarded") an unreadable or malformed one is
// logged and discarded. In those cases a keeps its current contents.
func (a *UserAdapter) LoadUserAdapter(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			glog.Warningf("user adapter %s: %v; starting from empty", path, err)
		}
		return
	}
	var doc userAdapterDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		glog.Warningf("user adapter %s: malformed JSON: %v; discarding", path, err)
		return
	}
	a.restore(doc)
	glog.Infof("user adapter %s loaded", path)
}

// SaveUserAdapter writes a's current state to path atomically: it
// serialises to a temporary file in the same directory, then renames over
// the destination, so concurrent readers never observe a partial file
// (spec.md §4.7).
func (a *UserAdapter) SaveUserAdapter(path string) error {
	return saveUserAdapterDoc(path, a.snapshot())
}

func saveUserAdapterDoc(path string, doc userAdapterDoc) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// flushRequest carries an independent snapshot of the user adapter to the
// background flush worker; the worker never touches the live adapter.
type flushRequest struct {
	path string
	doc  userAdapterDoc
}

// AdapterFlusher periodically persists UserAdapter snapshots on a
// background goroutine, per spec.md §4.7/§9: the engine clones the
// mutable state and hands the clone off, so a slow disk never blocks a
// keystroke.
type AdapterFlusher struct {
	requests chan flushRequest
	done     chan struct{}
}

// NewAdapterFlusher starts the background worker. Close must be called to
// stop it once the engine shuts down.
func NewAdapterFlusher() *AdapterFlusher {
	f := &AdapterFlusher{
		requests: make(chan flushRequest, 1),
		done:     make(chan struct{}),
	}
	go f.run()
	return f
}

func (f *AdapterFlusher) run() {
	for req := range f.requests {
		if err := saveUserAdapterDoc(req.path, req.doc); err != nil {
			glog.Errorf("user adapter flush to %s failed: %v", req.path, err)
		}
	}
	close(f.done)
}

// Flush enqueues a snapshot of a for persistence at path. It never blocks
// on I/O: if a flush is already in flight the request replaces whatever
// is queued behind it, since only the latest state matters.
func (f *AdapterFlusher) Flush(a *UserAdapter, path string) {
	req := flushRequest{path: path, doc: a.snapshot()}
	select {
	case f.requests <- req:
	default:
		select {
		case <-f.requests:
		default:
		}
		select {
		case f.requests <- req:
		default:
		}
	}
}

// Close stops accepting new flush requests and waits for the worker to
// drain and exit.
func (f *AdapterFlusher) Close() {
	close(f.requests)
	<-f.done
}
