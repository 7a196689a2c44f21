package pinyinime

// Key is a portable key code for the composition state machine. The
// production host (a keyboard-grab daemon, out of scope per spec.md §1)
// is expected to translate its own platform key codes (e.g. evdev) into
// this set before calling HandleKey; grounded on
// original_source/src/engine/processor.rs's evdev::Key usage, but kept
// free of any OS/input-library dependency since that translation layer
// is external.
type Key int

const (
	KeyQ Key = iota
	KeyW
	KeyE
	KeyR
	KeyT
	KeyY
	KeyU
	KeyI
	KeyO
	KeyP
	KeyA
	KeyS
	KeyD
	KeyF
	KeyG
	KeyH
	KeyJ
	KeyK
	KeyL
	KeyZ
	KeyX
	KeyC
	KeyV
	KeyB
	KeyN
	KeyM
	KeyApostrophe

	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9

	KeyBackspace
	KeyTab
	KeyMinus
	KeyEqual
	KeySpace
	KeyEnter
	KeyEsc
	KeyGrave
	KeyLeftBrace
	KeyRightBrace
	KeyBackslash
	KeySemicolon
	KeyComma
	KeyDot
	KeySlash

	KeyOther // any key with no pinyin/punctuation meaning; always PassThrough
)

var letterKeys = map[Key]byte{
	KeyQ: 'q', KeyW: 'w', KeyE: 'e', KeyR: 'r', KeyT: 't', KeyY: 'y',
	KeyU: 'u', KeyI: 'i', KeyO: 'o', KeyP: 'p',
	KeyA: 'a', KeyS: 's', KeyD: 'd', KeyF: 'f', KeyG: 'g', KeyH: 'h',
	KeyJ: 'j', KeyK: 'k', KeyL: 'l',
	KeyZ: 'z', KeyX: 'x', KeyC: 'c', KeyV: 'v', KeyB: 'b', KeyN: 'n', KeyM: 'm',
	KeyApostrophe: 'a',
}

var digitKeys = map[Key]int{
	Key1: 1, Key2: 2, Key3: 3, Key4: 4, Key5: 5,
	Key6: 6, Key7: 7, Key8: 8, Key9: 9, Key0: 0,
}

// isLetter reports whether key maps to a pinyin letter via keyToChar.
func isLetter(key Key) bool {
	_, ok := letterKeys[key]
	return ok
}

// isDigit reports whether key is one of the top-row digit keys.
func isDigit(key Key) bool {
	_, ok := digitKeys[key]
	return ok
}

// keyToChar returns the ASCII letter key produces, upper-cased if shift
// is held. Grounded on processor.rs::key_to_char.
func keyToChar(key Key, shift bool) (rune, bool) {
	c, ok := letterKeys[key]
	if !ok {
		return 0, false
	}
	r := rune(c)
	if shift {
		r = r - 'a' + 'A'
	}
	return r, true
}

// keyToDigit returns the digit 0-9 key produces, if any.
func keyToDigit(key Key) (int, bool) {
	d, ok := digitKeys[key]
	return d, ok
}

// punctuationKeyMap associates (key, shift) with the lookup key used
// against the configured punc->zh replacement map. Grounded on
// processor.rs::get_punctuation_key.
var punctuationKeyMap = map[Key][2]string{
	KeyGrave:      {"`", "~"},
	KeyMinus:      {"-", "_"},
	KeyEqual:      {"=", "+"},
	KeyLeftBrace:  {"[", "{"},
	KeyRightBrace: {"]", "}"},
	KeyBackslash:  {"\\", "|"},
	KeySemicolon:  {";", ":"},
	KeyApostrophe: {"'", "\""},
	KeyComma:      {",", "<"},
	KeyDot:        {".", ">"},
	KeySlash:      {"/", "?"},
	Key1:          {"", "!"},
	Key2:          {"", "@"},
	Key3:          {"", "#"},
	Key4:          {"", "$"},
	Key5:          {"", "%"},
	Key6:          {"", "^"},
	Key7:          {"", "&"},
	Key8:          {"", "*"},
	Key9:          {"", "("},
	Key0:          {"", ")"},
}

func getPunctuationKey(key Key, shift bool) (string, bool) {
	pair, ok := punctuationKeyMap[key]
	if !ok {
		return "", false
	}
	idx := 0
	if shift {
		idx = 1
	}
	if pair[idx] == "" {
		return "", false
	}
	return pair[idx], true
}
