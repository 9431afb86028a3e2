package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed locales/*.json
var localesFS embed.FS

// DefaultLanguage is used when a requested language is not supported.
const DefaultLanguage = "ru"

var supported = []string{"ru", "en", "uz"}

// Bundle resolves localized display strings by dotted key and language.
type Bundle struct {
	messages map[string]map[string]string
	fallback string
}

// Load parses the embedded locale files into a Bundle.
func Load() (*Bundle, error) {
	b := &Bundle{messages: make(map[string]map[string]string), fallback: DefaultLanguage}
	for _, lang := range supported {
		raw, err := localesFS.ReadFile("locales/" + lang + ".json")
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", lang, err)
		}
		var nested map[string]any
		if err := json.Unmarshal(raw, &nested); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", lang, err)
		}
		flat := make(map[string]string)
		flatten("", nested, flat)
		b.messages[lang] = flat
	}
	return b, nil
}

// T returns the localized string for key, falling back to the default
// language and finally to the key itself.
func (b *Bundle) T(lang, key string) string {
	if b == nil {
		return key
	}
	lang = Normalize(lang)
	if msgs, ok := b.messages[lang]; ok {
		if v, ok := msgs[key]; ok {
			return v
		}
	}
	if msgs, ok := b.messages[b.fallback]; ok {
		if v, ok := msgs[key]; ok {
			return v
		}
	}
	return key
}

// Has reports whether the key exists for the given language without fallback.
func (b *Bundle) Has(lang, key string) bool {
	if b == nil {
		return false
	}
	msgs, ok := b.messages[Normalize(lang)]
	if !ok {
		return false
	}
	_, ok = msgs[key]
	return ok
}

// Prefixed returns all entries under a dotted prefix for a language, keyed by
// the remainder of the key. Used by search to enumerate product names.
func (b *Bundle) Prefixed(lang, prefix string) map[string]string {
	out := make(map[string]string)
	if b == nil {
		return out
	}
	msgs, ok := b.messages[Normalize(lang)]
	if !ok {
		return out
	}
	full := prefix + "."
	for k, v := range msgs {
		if strings.HasPrefix(k, full) {
			out[strings.TrimPrefix(k, full)] = v
		}
	}
	return out
}

// Supported returns the supported language codes in stable order.
func Supported() []string {
	out := make([]string, len(supported))
	copy(out, supported)
	sort.Strings(out)
	return out
}

// IsSupported reports whether lang is one of the bundled languages.
func IsSupported(lang string) bool {
	for _, l := range supported {
		if l == lang {
			return true
		}
	}
	return false
}

// Normalize maps unknown or empty language codes to the default language.
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if IsSupported(lang) {
		return lang
	}
	return DefaultLanguage
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]any:
			flatten(key, val, out)
		}
	}
}
