package storage

import "testing"

func TestNormalize(t *testing.T) {
	entry, err := Normalize(CatalogEntry{ID: " pack-1 ", Name: " Starter Pack ", Kind: "Bundle", Currency: "eur"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if entry.ID != "pack-1" || entry.Name != "Starter Pack" {
		t.Fatalf("expected trimmed id and name, got %+v", entry)
	}
	if entry.Kind != "bundle" {
		t.Fatalf("kind = %q, want bundle", entry.Kind)
	}
	if entry.Currency != "EUR" {
		t.Fatalf("currency = %q, want EUR", entry.Currency)
	}

	entry, err = Normalize(CatalogEntry{ID: "x", Name: "X"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if entry.Currency != DefaultCurrency {
		t.Fatalf("currency = %q, want %q", entry.Currency, DefaultCurrency)
	}
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name  string
		entry CatalogEntry
	}{
		{name: "missing id", entry: CatalogEntry{Name: "X"}},
		{name: "missing name", entry: CatalogEntry{ID: "x", Name: "  "}},
		{name: "negative price", entry: CatalogEntry{ID: "x", Name: "X", PriceCents: -1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Normalize(tc.entry); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
