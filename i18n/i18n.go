// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package i18n

import (
	"bytes"
	"embed"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

//go:embed locales/*.yaml
var locales embed.FS

// Languages are the catalogues shipped with the server.
var Languages = []string{"en", "fi", "it", "ru"}

const DefaultLanguage = "en"

// Localizer looks up dotted keys in per-language catalogues.
type Localizer struct {
	catalogues map[string]*viper.Viper
}

func New() (*Localizer, error) {
	l := &Localizer{catalogues: make(map[string]*viper.Viper, len(Languages))}
	for _, lang := range Languages {
		data, err := locales.ReadFile("locales/" + lang + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("read %s catalogue: %w", lang, err)
		}
		v := viper.New()
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("parse %s catalogue: %w", lang, err)
		}
		l.catalogues[lang] = v
	}
	return l, nil
}

// Lookup returns the string for key in lang, then in the default language,
// and finally the key itself.
func (l *Localizer) Lookup(lang, key string) string {
	for _, candidate := range []string{lang, DefaultLanguage} {
		v, ok := l.catalogues[candidate]
		if !ok || !v.IsSet(key) {
			continue
		}
		if s := v.GetString(key); s != "" {
			return s
		}
	}
	return key
}

// Negotiate picks a supported language from ?lang= or Accept-Language.
func Negotiate(r *http.Request) string {
	if lang := normalize(r.URL.Query().Get("lang")); slices.Contains(Languages, lang) {
		return lang
	}
	for _, part := range strings.Split(r.Header.Get("Accept-Language"), ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if lang := normalize(tag); slices.Contains(Languages, lang) {
			return lang
		}
	}
	return DefaultLanguage
}

func normalize(tag string) string {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(tag)), "-")
	return base
}
