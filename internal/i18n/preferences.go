package i18n

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// LocaleKey is the preference key holding the chosen locale.
const LocaleKey = "app_lang"

// Preferences is the YAML file holding user preferences.
type Preferences struct {
	mu   sync.Mutex
	path string
	v    *viper.Viper
}

// OpenPreferences reads the preference file at path. A missing file is not an
// error; it is created on the first write.
func OpenPreferences(path string) (*Preferences, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault(LocaleKey, DefaultLocale)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read preferences %s: %w", path, err)
		}
	}
	return &Preferences{path: path, v: v}, nil
}

// Locale returns the stored locale, or DefaultLocale when none is stored or
// the stored value is not supported.
func (p *Preferences) Locale() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	code, ok := Normalize(p.v.GetString(LocaleKey))
	if !ok {
		return DefaultLocale
	}
	return code
}

// SetLocale stores the locale and writes the file.
func (p *Preferences) SetLocale(code string) error {
	code, ok := Normalize(code)
	if !ok {
		return fmt.Errorf("unsupported locale %q (available: %s)", code, strings.Join(Locales(), ", "))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.v.Set(LocaleKey, code)

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	if err := p.v.WriteConfigAs(p.path); err != nil {
		return fmt.Errorf("failed to write preferences %s: %w", p.path, err)
	}
	return nil
}
