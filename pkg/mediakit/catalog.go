package mediakit

// Catalog is the immutable table of selectable display languages. It fixes
// the display order: AvailableLanguages returns languages in catalog order,
// not in the order locales were encountered. Build one with NewCatalog (or
// DefaultCatalog) and inject it; it is never mutated after construction.
type Catalog struct {
	langs []Language
	index map[string]int
}

// NewCatalog builds a catalog from the given languages, preserving their
// order as the display order. Duplicate codes keep the first occurrence.
func NewCatalog(langs ...Language) *Catalog {
	c := &Catalog{
		langs: make([]Language, 0, len(langs)),
		index: make(map[string]int, len(langs)),
	}
	for _, l := range langs {
		if _, exists := c.index[l.Code]; exists {
			continue
		}
		c.index[l.Code] = len(c.langs)
		c.langs = append(c.langs, l)
	}
	return c
}

// Languages returns the catalog's languages in display order.
func (c *Catalog) Languages() []Language {
	out := make([]Language, len(c.langs))
	copy(out, c.langs)
	return out
}

// Lookup returns the language for a locale code.
func (c *Catalog) Lookup(code string) (Language, bool) {
	i, ok := c.index[code]
	if !ok {
		return Language{}, false
	}
	return c.langs[i], true
}

// Contains reports whether the catalog knows the locale code.
func (c *Catalog) Contains(code string) bool {
	_, ok := c.index[code]
	return ok
}

// Len returns the number of languages in the catalog.
func (c *Catalog) Len() int {
	return len(c.langs)
}

// DefaultCatalog returns the stock language table of the IPTV dashboard.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Language{Code: "en", Name: "English", Flag: "🇬🇧"},
		Language{Code: "en-US", Name: "English (US)", Flag: "🇺🇸"},
		Language{Code: "es", Name: "Español", Flag: "🇪🇸"},
		Language{Code: "es-MX", Name: "Español (México)", Flag: "🇲🇽"},
		Language{Code: "fr", Name: "Français", Flag: "🇫🇷"},
		Language{Code: "de", Name: "Deutsch", Flag: "🇩🇪"},
		Language{Code: "it", Name: "Italiano", Flag: "🇮🇹"},
		Language{Code: "nl", Name: "Nederlands", Flag: "🇳🇱"},
		Language{Code: "pt", Name: "Português", Flag: "🇵🇹"},
		Language{Code: "pt-BR", Name: "Português (Brasil)", Flag: "🇧🇷"},
		Language{Code: "ru", Name: "Русский", Flag: "🇷🇺"},
		Language{Code: "ar", Name: "العربية", Flag: "🇸🇦"},
		Language{Code: "zh", Name: "中文", Flag: "🇨🇳"},
		Language{Code: "ja", Name: "日本語", Flag: "🇯🇵"},
	)
}
