package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"

	"gopkg.in/yaml.v3"
)

const DefaultLocale = "en"

type Translations map[string]string

//go:embed locales/*/notifications.yaml
var builtin embed.FS

var (
	locales = make(map[string]Translations)
	mu      sync.RWMutex
)

func init() {
	if err := load(builtin, "locales"); err != nil {
		panic(fmt.Sprintf("i18n: embedded locales: %v", err))
	}
}

// LoadTranslations merges locale directories found under localePath over the built-in
// catalog. Each locale lives in <localePath>/<locale>/notifications.yaml.
func LoadTranslations(localePath string) error {
	return load(os.DirFS(localePath), ".")
}

func load(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale := entry.Name()
		filePath := path.Join(root, locale, "notifications.yaml")

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			continue
		}

		var catalog struct {
			Notifications Translations `yaml:"NOTIFICATIONS"`
		}
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filePath, err)
		}

		if locales[locale] == nil {
			locales[locale] = make(Translations)
		}
		for k, v := range catalog.Notifications {
			locales[locale][k] = v
		}
	}

	return nil
}

func Translate(locale, key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if trans, ok := locales[locale]; ok {
		if val, ok := trans[key]; ok {
			return val
		}
	}

	if locale != DefaultLocale {
		if trans, ok := locales[DefaultLocale]; ok {
			if val, ok := trans[key]; ok {
				return val
			}
		}
	}

	return key
}

// Format translates key and applies args as fmt verbs.
func Format(locale, key string, args ...interface{}) string {
	if len(args) == 0 {
		return Translate(locale, key)
	}
	return fmt.Sprintf(Translate(locale, key), args...)
}
