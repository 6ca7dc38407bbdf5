package mediakit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iptvkit/mediakit/pkg/mediakit"
)

func TestResolve(t *testing.T) {
	entries := []mediakit.LocalizedEntry{
		{Locale: "en", Text: "Hi"},
		{Locale: "fr", Text: "Salut"},
		{Locale: "es-MX", Text: "Hola"},
	}

	tests := []struct {
		name      string
		entries   []mediakit.LocalizedEntry
		requested string
		opts      []mediakit.ResolveOption
		wantText  string
		wantNil   bool
	}{
		{
			name:      "exact match wins",
			entries:   entries,
			requested: "fr",
			wantText:  "Salut",
		},
		{
			name:      "region variant falls back to base language",
			entries:   entries,
			requested: "fr-FR",
			wantText:  "Salut",
		},
		{
			name:      "exact region match preferred over base",
			entries:   entries,
			requested: "es-MX",
			wantText:  "Hola",
		},
		{
			name:      "unknown locale falls back to fallback language",
			entries:   entries,
			requested: "de",
			wantText:  "Hi",
		},
		{
			name:      "fallback matches by prefix",
			entries:   []mediakit.LocalizedEntry{{Locale: "en-US", Text: "Howdy"}},
			requested: "de",
			wantText:  "Howdy",
		},
		{
			name:      "no match at all returns first entry",
			entries:   []mediakit.LocalizedEntry{{Locale: "de", Text: "Hallo"}},
			requested: "es",
			wantText:  "Hallo",
		},
		{
			name:      "custom fallback",
			entries:   entries,
			requested: "de",
			opts:      []mediakit.ResolveOption{mediakit.WithFallback("fr")},
			wantText:  "Salut",
		},
		{
			name:      "empty collection returns nil",
			entries:   nil,
			requested: "en",
			wantNil:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mediakit.Resolve(tt.entries, tt.requested, tt.opts...)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantText, got.Text)
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	entries := []mediakit.LocalizedEntry{
		{Locale: "en", Text: "Hi"},
		{Locale: "fr", Text: "Salut"},
	}
	snapshot := make([]mediakit.LocalizedEntry, len(entries))
	copy(snapshot, entries)

	first := mediakit.Resolve(entries, "fr-FR")
	second := mediakit.Resolve(entries, "fr-FR")
	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, entries)
}

func TestResolve_SourceTypeFilter(t *testing.T) {
	entries := []mediakit.LocalizedEntry{
		{Locale: "en", Text: "Short synopsis", SourceType: "Default"},
		{Locale: "en", Text: "Long synopsis", SourceType: "TabletSynopsis"},
		{Locale: "fr", Text: "Résumé court", SourceType: "Default"},
	}

	t.Run("filters within a locale step", func(t *testing.T) {
		got := mediakit.Resolve(entries, "en", mediakit.WithSourceType("TabletSynopsis"))
		require.NotNil(t, got)
		assert.Equal(t, "Long synopsis", got.Text)
	})

	t.Run("a step without a pair match is skipped, not unfiltered", func(t *testing.T) {
		// fr has no TabletSynopsis variant; the exact step must not degrade
		// to the Default entry. The fallback (en) step still applies the
		// filter and finds the tablet variant there.
		got := mediakit.Resolve(entries, "fr", mediakit.WithSourceType("TabletSynopsis"))
		require.NotNil(t, got)
		assert.Equal(t, "Long synopsis", got.Text)
	})

	t.Run("filtered resolution with no pair match anywhere returns nil", func(t *testing.T) {
		got := mediakit.Resolve(entries, "fr", mediakit.WithSourceType("Banner"))
		assert.Nil(t, got)
	})
}

func TestResolveAny(t *testing.T) {
	entries := []mediakit.LocalizedEntry{
		{Locale: "en", Text: "Short synopsis", SourceType: "Default"},
	}

	// TabletSynopsis yields nothing, Default matches on retry.
	got := mediakit.ResolveAny(entries, "en", []string{"TabletSynopsis", "Default"})
	require.NotNil(t, got)
	assert.Equal(t, "Short synopsis", got.Text)

	// No source type matches at all: the unfiltered pass takes over.
	got = mediakit.ResolveAny(entries, "de", []string{"Banner"})
	require.NotNil(t, got)
	assert.Equal(t, "Short synopsis", got.Text)

	assert.Nil(t, mediakit.ResolveAny(nil, "en", []string{"Default"}))
}

func TestAvailableLanguages(t *testing.T) {
	catalog := mediakit.DefaultCatalog()

	t.Run("returned in catalog order", func(t *testing.T) {
		titles := []mediakit.LocalizedEntry{
			{Locale: "ru", Text: "Название"},
			{Locale: "fr", Text: "Titre"},
		}
		synopses := []mediakit.LocalizedEntry{
			{Locale: "en", Text: "Synopsis"},
		}

		langs := mediakit.AvailableLanguages(catalog, titles, synopses)
		require.Len(t, langs, 3)
		// Catalog order, not encounter order.
		assert.Equal(t, "en", langs[0].Code)
		assert.Equal(t, "fr", langs[1].Code)
		assert.Equal(t, "ru", langs[2].Code)
	})

	t.Run("unknown locales are dropped", func(t *testing.T) {
		langs := mediakit.AvailableLanguages(catalog, []mediakit.LocalizedEntry{{Locale: "xx-YY", Text: "?"}})
		assert.Empty(t, langs)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		langs := mediakit.AvailableLanguages(catalog,
			[]mediakit.LocalizedEntry{{Locale: "en", Text: "a"}, {Locale: "en", Text: "b"}},
		)
		require.Len(t, langs, 1)
		assert.Equal(t, "en", langs[0].Code)
	})
}

func TestDedupe(t *testing.T) {
	entries := []mediakit.LocalizedEntry{
		{Locale: "en", Text: "Drama"},
		{Locale: "en", Text: "Comedy"},
		{Locale: "en", Text: "Drama"},
		{Locale: "fr", Text: "Drama"},
	}
	snapshot := make([]mediakit.LocalizedEntry, len(entries))
	copy(snapshot, entries)

	out := mediakit.Dedupe(entries)
	require.Len(t, out, 3)
	assert.Equal(t, "Drama", out[0].Text)
	assert.Equal(t, "Comedy", out[1].Text)
	// Same text under a different locale is not a duplicate.
	assert.Equal(t, "fr", out[2].Locale)

	assert.Equal(t, snapshot, entries)
}

func TestCatalog(t *testing.T) {
	catalog := mediakit.NewCatalog(
		mediakit.Language{Code: "en", Name: "English"},
		mediakit.Language{Code: "fr", Name: "Français"},
		mediakit.Language{Code: "en", Name: "English again"},
	)

	assert.Equal(t, 2, catalog.Len())

	lang, ok := catalog.Lookup("en")
	require.True(t, ok)
	// First occurrence wins.
	assert.Equal(t, "English", lang.Name)

	_, ok = catalog.Lookup("de")
	assert.False(t, ok)

	// Languages returns a copy; mutating it does not touch the catalog.
	langs := catalog.Languages()
	langs[0].Name = "mutated"
	lang, _ = catalog.Lookup("en")
	assert.Equal(t, "English", lang.Name)
}

func TestDefaultCatalog(t *testing.T) {
	catalog := mediakit.DefaultCatalog()
	assert.Equal(t, 14, catalog.Len())
	assert.True(t, catalog.Contains("en-US"))
	assert.True(t, catalog.Contains("es-MX"))
}
