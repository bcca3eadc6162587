// Package catalog loads the embedded locale message catalogs and registers
// them with golang.org/x/text/message.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

const (
	// BaseLocale is the locale every other catalog is checked against and
	// the fallback for unknown locales.
	BaseLocale = "en-US"
	// ErrorsNamespace holds user messages keyed by error code.
	ErrorsNamespace = "errors"
	// CommunityNamespace holds labels for community views, such as the
	// time-ago buckets.
	CommunityNamespace = "community"
)

// catalogFile is one locales/<locale>/<namespace>.yaml document.
type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

type localeMessages struct {
	byNamespace map[string]map[string]string
	all         map[string]string
}

// Bundle holds the messages of every loaded locale.
type Bundle struct {
	locales map[string]*localeMessages
}

//go:embed locales/*/*.yaml
var embeddedCatalogFS embed.FS

var defaultBundle = mustLoadAndRegisterEmbedded()

// Default returns the embedded bundle. Its messages are registered with
// x/text/message at init.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads the catalogs compiled into this package.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedCatalogFS)
}

// LoadFromFS loads every locales/<locale>/<namespace>.yaml file in catalogFS.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	slices.Sort(paths)

	bundle := &Bundle{locales: map[string]*localeMessages{}}
	for _, p := range paths {
		data, err := fs.ReadFile(catalogFS, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		locale, namespace, err := checkHeader(p, file)
		if err != nil {
			return nil, err
		}
		if err := bundle.add(p, locale, namespace, file.Messages); err != nil {
			return nil, err
		}
	}
	if !bundle.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return bundle, nil
}

// checkHeader verifies that the declared locale and namespace agree with
// the file path.
func checkHeader(p string, file catalogFile) (string, string, error) {
	wantLocale := path.Base(path.Dir(p))
	wantNamespace := strings.TrimSuffix(path.Base(p), path.Ext(p))

	locale := strings.TrimSpace(file.Locale)
	switch {
	case locale == "":
		return "", "", fmt.Errorf("catalog %s: locale is required", p)
	case locale != wantLocale:
		return "", "", fmt.Errorf("catalog %s: locale %q must match path locale %q", p, locale, wantLocale)
	}
	if _, err := language.Parse(locale); err != nil {
		return "", "", fmt.Errorf("catalog %s: invalid locale %q: %w", p, locale, err)
	}

	namespace := strings.TrimSpace(file.Namespace)
	switch {
	case namespace == "":
		return "", "", fmt.Errorf("catalog %s: namespace is required", p)
	case namespace != wantNamespace:
		return "", "", fmt.Errorf("catalog %s: namespace %q must match filename namespace %q", p, namespace, wantNamespace)
	case len(file.Messages) == 0:
		return "", "", fmt.Errorf("catalog %s: messages map is required", p)
	}
	return locale, namespace, nil
}

func (b *Bundle) add(p, locale, namespace string, messages map[string]string) error {
	lm := b.locales[locale]
	if lm == nil {
		lm = &localeMessages{byNamespace: map[string]map[string]string{}, all: map[string]string{}}
		b.locales[locale] = lm
	}
	if _, exists := lm.byNamespace[namespace]; exists {
		return fmt.Errorf("catalog %s: namespace %q already defined for locale %q", p, namespace, locale)
	}

	ns := make(map[string]string, len(messages))
	for key, value := range messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", p)
		}
		// Error codes are bare; other namespaces prefix their keys.
		if namespace != ErrorsNamespace && !strings.HasPrefix(key, namespace+".") {
			return fmt.Errorf("catalog %s: key %q must start with %q", p, key, namespace+".")
		}
		if _, exists := lm.all[key]; exists {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", p, key, locale)
		}
		lm.all[key] = value
		ns[key] = value
	}
	lm.byNamespace[namespace] = ns
	return nil
}

// Register installs every message with x/text/message under the locale tag
// and, when different, its bare language tag ("zh-CN" and "zh").
func (b *Bundle) Register() error {
	if b == nil {
		return nil
	}
	for _, locale := range b.Locales() {
		tags, err := registerTags(locale)
		if err != nil {
			return err
		}
		all := b.locales[locale].all
		for _, key := range slices.Sorted(maps.Keys(all)) {
			for _, tag := range tags {
				if err := message.SetString(tag, key, all[key]); err != nil {
					return fmt.Errorf("register %s/%s: %w", locale, key, err)
				}
			}
		}
	}
	return nil
}

func registerTags(locale string) ([]language.Tag, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale tag %q: %w", locale, err)
	}
	tags := []language.Tag{tag}
	base, _ := tag.Base()
	if s := base.String(); s != "" && s != "und" {
		if bare, err := language.Parse(s); err == nil && bare != tag {
			tags = append(tags, bare)
		}
	}
	return tags, nil
}

// Printer returns a printer for locale, or for BaseLocale when the locale is
// not loaded.
func (b *Bundle) Printer(locale string) *message.Printer {
	locale = strings.TrimSpace(locale)
	if !b.HasLocale(locale) {
		locale = BaseLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return message.NewPrinter(tag)
}

func (b *Bundle) get(locale string) *localeMessages {
	if b == nil {
		return nil
	}
	return b.locales[strings.TrimSpace(locale)]
}

// HasLocale reports whether locale was loaded.
func (b *Bundle) HasLocale(locale string) bool {
	return b.get(locale) != nil
}

// Locales returns the loaded locales, sorted.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.locales))
}

// LocaleMessages returns a copy of every message of locale.
func (b *Bundle) LocaleMessages(locale string) map[string]string {
	lm := b.get(locale)
	if lm == nil {
		return map[string]string{}
	}
	return maps.Clone(lm.all)
}

// Message looks key up in locale, then in BaseLocale.
func (b *Bundle) Message(locale string, key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	for _, l := range []string{locale, BaseLocale} {
		if lm := b.get(l); lm != nil {
			if value, ok := lm.all[key]; ok {
				return value, true
			}
		}
	}
	return "", false
}

// NamespaceMessages returns a copy of one namespace of locale, without
// fallback.
func (b *Bundle) NamespaceMessages(locale string, namespace string) map[string]string {
	lm := b.get(locale)
	if lm == nil {
		return map[string]string{}
	}
	ns, ok := lm.byNamespace[strings.TrimSpace(namespace)]
	if !ok {
		return map[string]string{}
	}
	return maps.Clone(ns)
}

// NamespaceMessagesWithFallback returns the namespace for locale, or for
// BaseLocale when locale has none, along with the locale actually used.
func (b *Bundle) NamespaceMessagesWithFallback(locale string, namespace string) (string, map[string]string) {
	locale = strings.TrimSpace(locale)
	if messages := b.NamespaceMessages(locale, namespace); len(messages) > 0 {
		return locale, messages
	}
	return BaseLocale, b.NamespaceMessages(BaseLocale, namespace)
}

func mustLoadAndRegisterEmbedded() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := bundle.Register(); err != nil {
		panic(err)
	}
	return bundle
}
