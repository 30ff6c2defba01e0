// Package i18n provides the EN and DE message catalogs and the persisted
// language preference.
package i18n

import (
	"bytes"
	"embed"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Supported locale codes.
const (
	EN = "EN"
	DE = "DE"
)

// DefaultLocale is used when no preference has been stored.
const DefaultLocale = EN

//go:embed locales/*.json
var locales embed.FS

var tags = map[string]language.Tag{
	EN: language.English,
	DE: language.German,
}

// Locales returns the supported locale codes.
func Locales() []string {
	return []string{EN, DE}
}

// Normalize upper-cases a locale code and reports whether it is supported.
func Normalize(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	_, ok := tags[code]
	return code, ok
}

// Tag returns the language tag used for collation in the given locale.
func Tag(code string) language.Tag {
	if tag, ok := tags[code]; ok {
		return tag
	}
	return tags[DefaultLocale]
}

// Bundle holds the message catalog of every supported locale.
type Bundle struct {
	catalogs map[string]*viper.Viper
}

// Load reads the embedded catalogs.
func Load() (*Bundle, error) {
	b := &Bundle{catalogs: make(map[string]*viper.Viper, len(tags))}
	for code := range tags {
		data, err := locales.ReadFile("locales/" + strings.ToLower(code) + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read %s catalog: %w", code, err)
		}
		v := viper.New()
		v.SetConfigType("json")
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to parse %s catalog: %w", code, err)
		}
		b.catalogs[code] = v
	}
	return b, nil
}

// For returns a Translator for the locale, falling back to the default
// locale when the code is unknown.
func (b *Bundle) For(code string) Translator {
	if _, ok := b.catalogs[code]; !ok {
		code = DefaultLocale
	}
	return Translator{locale: code, catalog: b.catalogs[code]}
}

// Translator looks up messages of one locale.
type Translator struct {
	locale    string
	catalog   *viper.Viper
	namespace string
}

// Locale returns the locale code of the translator.
func (t Translator) Locale() string {
	return t.locale
}

// T returns the message at a dotted path such as "cart.empty". A path that
// does not name a message is returned unchanged.
func (t Translator) T(path string) string {
	full := path
	if t.namespace != "" {
		full = t.namespace + "." + path
	}
	if t.catalog == nil {
		return full
	}
	if msg := t.catalog.GetString(full); msg != "" {
		return msg
	}
	return full
}

// Tf formats the message at path with args.
func (t Translator) Tf(path string, args ...any) string {
	return fmt.Sprintf(t.T(path), args...)
}

// Scope returns a translator that prefixes every path with namespace.
func (t Translator) Scope(namespace string) Translator {
	if t.namespace != "" {
		namespace = t.namespace + "." + namespace
	}
	t.namespace = namespace
	return t
}
