package pinyinime

import (
	"sort"
	"strings"
	"unicode"
)

// State is the composition state, per spec.md §4.5.
type State int

const (
	Direct State = iota
	Composing
	NoMatch
	Single
	Multi
)

func (s State) String() string {
	switch s {
	case Direct:
		return "Direct"
	case Composing:
		return "Composing"
	case NoMatch:
		return "NoMatch"
	case Single:
		return "Single"
	case Multi:
		return "Multi"
	default:
		return "Unknown"
	}
}

// ActionKind tags the variant of Action.
type ActionKind int

const (
	ActionEmit ActionKind = iota
	ActionDeleteAndEmit
	ActionConsume
	ActionPassThrough
)

// Action is what HandleKey returns to the host: what to do with the key
// event and, for Emit/DeleteAndEmit, what text to send to the focused
// application. Grounded on processor.rs's Action enum.
type Action struct {
	Kind   ActionKind
	Text   string // Emit: text to send. DeleteAndEmit: text to insert.
	Delete int    // DeleteAndEmit: characters to backspace first.
}

func emit(text string) Action           { return Action{Kind: ActionEmit, Text: text} }
func deleteAndEmit(del int, ins string) Action {
	return Action{Kind: ActionDeleteAndEmit, Delete: del, Text: ins}
}
func consume() Action     { return Action{Kind: ActionConsume} }
func passThrough() Action { return Action{Kind: ActionPassThrough} }

const adapterFlushInterval = 10

// profileEntry bundles the per-profile static resources: its own
// dictionary and its own static n-gram (spec.md §4.8).
type profileEntry struct {
	dict  *DictionaryStore
	ngram *NgramModel
}

// Processor is the facade wiring dictionary, segmenter, ranker, n-gram
// and user adapter into the HandleKey state machine, per spec.md §3/§4.5.
// Grounded on original_source/src/engine/processor.rs::Processor.
type Processor struct {
	state  State
	buffer string

	profiles       map[string]*profileEntry // keyed by lowercase profile name
	currentProfile string

	punctuation map[string]string

	candidates       []string
	candidateHints   []string
	selected         int
	page             int
	bestSegmentation []string

	chineseEnabled bool
	segmenter      *Segmenter
	adapter        *UserAdapter
	context        []rune
	commitCount    int
	flusher        *AdapterFlusher
	adapterPath    string

	showCandidates     bool
	showNotifications  bool
	previewMode        string
}

// NewProcessor constructs a processor with no profiles registered yet;
// call AddProfile for each one. adapter is the single, profile-shared
// user habit store (spec.md §4.8).
func NewProcessor(seg *Segmenter, adapter *UserAdapter) *Processor {
	return &Processor{
		state:              Direct,
		profiles:           make(map[string]*profileEntry),
		punctuation:        make(map[string]string),
		segmenter:          seg,
		adapter:            adapter,
		showCandidates:     true,
		showNotifications:  true,
		previewMode:        "pinyin",
	}
}

// AddProfile registers a (dictionary, static n-gram) pair under name,
// lower-cased for lookup. The first profile added becomes current.
func (p *Processor) AddProfile(name string, dict *DictionaryStore, ngram *NgramModel) {
	key := strings.ToLower(name)
	p.profiles[key] = &profileEntry{dict: dict, ngram: ngram}
	if p.currentProfile == "" {
		p.currentProfile = key
	}
}

// SetPunctuation installs the punc->zh replacement table (spec.md §6).
func (p *Processor) SetPunctuation(m map[string]string) {
	p.punctuation = m
}

// SetAdapterFlusher installs the background flush worker and the path
// its snapshots are written to; without this, commits still update the
// adapter in memory but nothing is ever persisted.
func (p *Processor) SetAdapterFlusher(f *AdapterFlusher, path string) {
	p.flusher = f
	p.adapterPath = path
}

// ApplyConfig mirrors the appearance/input sections of a parsed Config
// onto the processor's flags, per spec.md §6. Grounded on
// processor.rs::apply_config.
func (p *Processor) ApplyConfig(cfg *Config) {
	p.showCandidates = cfg.Appearance.ShowCandidates
	p.showNotifications = cfg.Appearance.ShowNotifications
	p.previewMode = cfg.Appearance.PreviewMode
	if cfg.Input.DefaultProfile != "" {
		p.currentProfile = strings.ToLower(cfg.Input.DefaultProfile)
	}
}

// Toggle flips chinese_enabled (the keyboard-grab host's IME on/off
// hotkey lands here) and resets composition.
func (p *Processor) Toggle() bool {
	p.chineseEnabled = !p.chineseEnabled
	p.Reset()
	return p.chineseEnabled
}

// Reset clears the composition buffer and candidate state, per spec.md
// §8 invariant 3.
func (p *Processor) Reset() {
	p.buffer = ""
	p.candidates = nil
	p.candidateHints = nil
	p.bestSegmentation = nil
	p.selected = 0
	p.page = 0
	p.state = Direct
}

// HandleKey is the state machine entry point, per spec.md §4.5.
func (p *Processor) HandleKey(key Key, isPress bool, shift bool) Action {
	if !isPress {
		if p.buffer == "" {
			return passThrough()
		}
		if isLetter(key) || isDigit(key) || key == KeyBackspace || key == KeySpace ||
			key == KeyEnter || key == KeyTab || key == KeyEsc || key == KeyMinus || key == KeyEqual {
			return consume()
		}
		return passThrough()
	}

	if p.buffer != "" {
		return p.handleComposing(key, shift)
	}
	if p.state == Direct {
		return p.handleDirect(key, shift)
	}
	return p.handleComposing(key, shift)
}

func (p *Processor) handleDirect(key Key, shift bool) Action {
	if c, ok := keyToChar(key, shift); ok {
		p.buffer += string(c)
		p.state = Composing
		p.lookup()
		return consume()
	}
	if puncKey, ok := getPunctuationKey(key, shift); ok {
		if zh, ok := p.punctuation[puncKey]; ok {
			return emit(zh)
		}
		return passThrough()
	}
	return passThrough()
}

func (p *Processor) handleComposing(key Key, shift bool) Action {
	switch key {
	case KeyBackspace:
		runes := []rune(p.buffer)
		if len(runes) > 0 {
			runes = runes[:len(runes)-1]
		}
		p.buffer = string(runes)
		if p.buffer == "" {
			p.Reset()
		} else {
			p.lookup()
		}
		return consume()

	case KeyTab:
		if len(p.candidates) > 0 {
			if shift {
				if p.selected > 0 {
					p.selected--
					p.page = (p.selected / 5) * 5
				}
			} else if p.selected+1 < len(p.candidates) {
				p.selected++
				p.page = (p.selected / 5) * 5
			}
		}
		return consume()

	case KeyMinus:
		p.page -= 5
		if p.page < 0 {
			p.page = 0
		}
		p.selected = p.page
		return consume()

	case KeyEqual:
		if p.page+5 < len(p.candidates) {
			p.page += 5
			p.selected = p.page
		}
		return consume()

	case KeySpace:
		if p.selected < len(p.candidates) {
			out := p.candidates[p.selected]
			p.commit(out)
			return emit(out)
		}
		if p.buffer != "" {
			out := p.buffer
			p.commit(out)
			return emit(out)
		}
		return consume()

	case KeyEnter:
		out := p.buffer
		p.commit(out)
		return emit(out)

	case KeyEsc:
		p.Reset()
		return consume()

	default:
		if isDigit(key) {
			digit, _ := keyToDigit(key)
			switch {
			case digit >= 1 && digit <= 5:
				idx := p.page + (digit - 1)
				if idx < len(p.candidates) {
					out := p.candidates[idx]
					p.commit(out)
					return emit(out)
				}
				return consume()
			case digit == 7 || digit == 8 || digit == 9 || digit == 0:
				tone := map[int]int{7: 1, 8: 2, 9: 3, 0: 4}[digit]
				p.buffer = ApplyTone(p.buffer, tone)
				p.lookup()
				return consume()
			default: // digit 6: reserved, per spec.md §9 open question
				return consume()
			}
		}
		if isLetter(key) {
			if c, ok := keyToChar(key, shift); ok {
				p.buffer += string(c)
				p.lookup()
				if hasFilterSuffix(p.buffer) && len(p.candidates) == 1 {
					out := p.candidates[0]
					p.commit(out)
					return emit(out)
				}
			}
			return consume()
		}
		return passThrough()
	}
}

// hasFilterSuffix reports whether buffer contains an uppercase letter at
// rune index >= 1 (spec.md §4.5's auto-commit trigger).
func hasFilterSuffix(buffer string) bool {
	runes := []rune(buffer)
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) {
			return true
		}
	}
	return false
}

// lookup re-ranks candidates for the current buffer against the current
// profile's dictionary and n-gram, per spec.md §4.6.
func (p *Processor) lookup() {
	if p.buffer == "" {
		p.Reset()
		return
	}
	prof, ok := p.profiles[p.currentProfile]
	if !ok {
		return
	}
	result := Lookup(p.buffer, prof.dict, p.segmenter, prof.ngram, p.adapter)
	p.candidates = result.candidates
	p.candidateHints = result.hints
	p.bestSegmentation = result.bestSeg
	p.selected = 0
	p.page = 0
	p.updateState()
}

func (p *Processor) updateState() {
	if p.buffer == "" {
		if len(p.candidates) == 0 {
			p.state = Direct
		} else {
			p.state = Multi
		}
		return
	}
	switch len(p.candidates) {
	case 0:
		p.state = NoMatch
	case 1:
		p.state = Single
	default:
		p.state = Multi
	}
}

// commit finalises word: updates the shared user adapter, advances the
// rolling context, flushes every adapterFlushInterval commits, and
// resets composition. Grounded on processor.rs's inline commit handling
// plus spec.md §4.5/§4.7.
func (p *Processor) commit(word string) {
	contextChars := append([]rune(nil), p.context...)
	p.adapter.Update(contextChars, word, defaultMaxN)

	wordChars := []rune(word)
	for i := range wordChars {
		ctxForChar := append([]rune(nil), p.context...)
		ctxForChar = append(ctxForChar, wordChars[:i]...)
		p.adapter.Update(ctxForChar, string(wordChars[i]), defaultMaxN)
	}

	p.context = append(p.context, wordChars...)
	if maxLen := defaultMaxN - 1; len(p.context) > maxLen {
		p.context = p.context[len(p.context)-maxLen:]
	}

	p.commitCount++
	if p.commitCount%adapterFlushInterval == 0 && p.flusher != nil && p.adapterPath != "" {
		p.flusher.Flush(p.adapter, p.adapterPath)
	}
	p.Reset()
}

// NextProfile advances to the next profile in sorted name order and
// resets composition, per spec.md §4.8.
func (p *Processor) NextProfile() string {
	if len(p.profiles) == 0 {
		return p.currentProfile
	}
	names := make([]string, 0, len(p.profiles))
	for name := range p.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	idx := 0
	for i, name := range names {
		if name == p.currentProfile {
			idx = i
			break
		}
	}
	p.currentProfile = names[(idx+1)%len(names)]
	p.Reset()
	return p.currentProfile
}

// CommitCandidate commits candidates[idx] as if the user had selected
// and confirmed it; a convenience entry point for hosts (and the replay
// harness) that address candidates directly rather than through
// page/selected key sequences.
func (p *Processor) CommitCandidate(idx int) Action {
	if idx < 0 || idx >= len(p.candidates) {
		return consume()
	}
	out := p.candidates[idx]
	p.commit(out)
	return emit(out)
}

// HandleRune feeds a single typed rune through the state machine without
// requiring the caller to construct a Key: lowercase ASCII letters compose
// normally, uppercase letters compose with the shift flag set (triggering
// the uppercase hint filter), and any other rune is ignored. Intended for
// test harnesses driving the engine from plain text rather than raw key
// codes.
func (p *Processor) HandleRune(r rune) Action {
	if r > unicode.MaxASCII {
		return passThrough()
	}
	lower := unicode.ToLower(r)
	key, ok := runeToLetterKey(byte(lower))
	if !ok {
		return passThrough()
	}
	return p.HandleKey(key, true, unicode.IsUpper(r))
}

func runeToLetterKey(c byte) (Key, bool) {
	for k, letter := range letterKeys {
		if letter == c && k != KeyApostrophe {
			return k, true
		}
	}
	return 0, false
}

func (p *Processor) Buffer() string               { return p.buffer }
func (p *Processor) State() State                 { return p.state }
func (p *Processor) Candidates() []string         { return p.candidates }
func (p *Processor) CandidateHints() []string     { return p.candidateHints }
func (p *Processor) Selected() int                { return p.selected }
func (p *Processor) Page() int                    { return p.page }
func (p *Processor) BestSegmentation() []string   { return p.bestSegmentation }
func (p *Processor) CurrentProfile() string       { return p.currentProfile }
func (p *Processor) Adapter() *UserAdapter         { return p.adapter }
