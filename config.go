package pinyinime

import (
	"encoding/json"
	"os"

	"github.com/golang/glog"
)

// Config mirrors the recognised JSON configuration described in
// spec.md §6: appearance, input behaviour, hotkeys, and profile
// registrations. Grounded on original_source/src/config.rs's Config
// struct; field defaults match its Default impls.
type Config struct {
	Appearance Appearance `json:"appearance"`
	Input      Input      `json:"input"`
	Hotkeys    Hotkeys    `json:"hotkeys"`
	Files      Files      `json:"files"`
}

type Appearance struct {
	ShowCandidates     bool   `json:"show_candidates"`
	ShowNotifications  bool   `json:"show_notifications"`
	PreviewMode        string `json:"preview_mode"` // none, pinyin, hanzi
}

type Input struct {
	EnableFuzzyPinyin bool   `json:"enable_fuzzy_pinyin"`
	DefaultProfile    string `json:"default_profile"`
	PasteMethod       string `json:"paste_method"` // ctrl_v, ctrl_shift_v, shift_insert
}

// Shortcut is one hotkeys.* entry: a `+`-joined combo string plus a
// human-readable description shown in the configuration UI.
type Shortcut struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

type Hotkeys struct {
	SwitchLanguage      Shortcut `json:"switch_language"`
	SwitchLanguageAlt    Shortcut `json:"switch_language_alt"`
	ConvertSelection    Shortcut `json:"convert_selection"`
	CyclePreviewMode    Shortcut `json:"cycle_preview_mode"`
	ToggleNotifications Shortcut `json:"toggle_notifications"`
	ToggleFuzzyPinyin   Shortcut `json:"toggle_fuzzy_pinyin"`
	SwitchDictionary    Shortcut `json:"switch_dictionary"`
	CyclePasteMethod    Shortcut `json:"cycle_paste_method"`
}

// Profile is one files.profiles[] entry: a named dictionary registration.
type Profile struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Dicts       []string `json:"dicts"`
}

type Files struct {
	Profiles        []Profile `json:"profiles"`
	PunctuationFile string    `json:"punctuation_file"`
}

// DefaultConfig returns the built-in configuration used when no file is
// present or the file fails to parse (spec.md §7: "Configuration parse
// failure: fall back to built-in defaults; never crash").
func DefaultConfig() *Config {
	return &Config{
		Appearance: Appearance{
			ShowCandidates:    true,
			ShowNotifications: true,
			PreviewMode:       "none",
		},
		Input: Input{
			EnableFuzzyPinyin: false,
			DefaultProfile:    "Chinese",
			PasteMethod:       "ctrl_v",
		},
		Hotkeys: Hotkeys{
			SwitchLanguage:      Shortcut{Key: "caps_lock", Description: "toggle Chinese/English mode"},
			SwitchLanguageAlt:    Shortcut{Key: "ctrl+space", Description: "toggle Chinese/English mode (alternate)"},
			ConvertSelection:    Shortcut{Key: "ctrl+r", Description: "convert selected pinyin to characters"},
			CyclePreviewMode:    Shortcut{Key: "ctrl+alt+p", Description: "cycle preview mode (none -> pinyin -> hanzi)"},
			ToggleNotifications: Shortcut{Key: "ctrl+alt+n", Description: "toggle candidate notifications"},
			ToggleFuzzyPinyin:   Shortcut{Key: "ctrl+alt+f", Description: "toggle fuzzy pinyin (z=zh, c=ch, ...)"},
			SwitchDictionary:    Shortcut{Key: "ctrl+alt+s", Description: "switch profile"},
			CyclePasteMethod:    Shortcut{Key: "ctrl+alt+v", Description: "cycle paste method"},
		},
		Files: Files{
			Profiles: []Profile{
				{Name: "Chinese", Description: "default Chinese input", Dicts: []string{"dicts/basic_words", "dicts/chars"}},
			},
			PunctuationFile: "dicts/punctuation.json",
		},
	}
}

// LoadConfig reads and parses the JSON configuration at path. On any
// error — missing file, malformed JSON — DefaultConfig is returned
// instead, per spec.md §7; every error except a missing file is logged.
func LoadConfig(path string) *Config {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			glog.Warningf("config %s: %v; using built-in defaults", path, err)
		}
		return DefaultConfig()
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(raw, cfg); err != nil {
		glog.Warningf("config %s: malformed JSON: %v; using built-in defaults", path, err)
		return DefaultConfig()
	}
	return cfg
}

// LoadPunctuationMap reads the §6 punc->zh JSON replacement table at
// path. A missing or malformed file degrades to an empty map (punctuation
// keys simply pass through), consistent with §7's missing-resource
// handling.
func LoadPunctuationMap(path string) map[string]string {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			glog.Warningf("punctuation map %s: %v; punctuation keys will pass through", path, err)
		}
		return map[string]string{}
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		glog.Warningf("punctuation map %s: malformed JSON: %v; punctuation keys will pass through", path, err)
		return map[string]string{}
	}
	return m
}
