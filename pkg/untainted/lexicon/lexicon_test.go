package lexicon

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func allergens() *Lexicon {
	return FromGroups([]Group{
		{Canonical: "dairy", Variants: []string{"milk", "Butter", "cheese", "whey", "milk"}},
		{Canonical: "Soy", Variants: []string{"soya", "soy bean"}},
	})
}

func TestNormalize(t *testing.T) {
	lex := allergens()
	tests := []struct {
		input string
		want  string
	}{
		{"Milk", "dairy"},
		{"whey", "dairy"},
		{"dairy", "dairy"},
		{"Soy  Bean", "soy"},
		{"Kiwi", "kiwi"},
	}
	for _, tt := range tests {
		if got := lex.Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestVariants(t *testing.T) {
	lex := allergens()
	want := []string{"dairy", "milk", "butter", "cheese", "whey"}
	if got := lex.Variants("dairy"); !reflect.DeepEqual(got, want) {
		t.Errorf("Variants(dairy) = %v, want %v", got, want)
	}
	if got := lex.Variants("Cheese"); !reflect.DeepEqual(got, want) {
		t.Errorf("Variants(Cheese) = %v, want %v", got, want)
	}
	if got := lex.Variants("Kiwi"); !reflect.DeepEqual(got, []string{"kiwi"}) {
		t.Errorf("Variants(Kiwi) = %v, want [kiwi]", got)
	}
	if got := lex.Variants("  "); got != nil {
		t.Errorf("Variants(blank) = %v, want nil", got)
	}
}

func TestAddSynonymGroupReplaces(t *testing.T) {
	lex := allergens()
	lex.AddSynonymGroup("dairy", []string{"paneer"})
	if lex.HasSynonyms("milk") {
		t.Error("old variant still indexed after group replacement")
	}
	if got := lex.Normalize("paneer"); got != "dairy" {
		t.Errorf("Normalize(paneer) = %q, want dairy", got)
	}
	if stats := lex.Stats(); stats.SynonymGroups != 2 || stats.TotalVariants != 5 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allergens.yaml")
	content := `synonyms:
  - canonical: sesame
    variants: [sesame seed, tahini, benne]
  - canonical: eggs
    variants: [egg, albumen]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	lex, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}
	if got := lex.Normalize("Tahini"); got != "sesame" {
		t.Errorf("Normalize(Tahini) = %q, want sesame", got)
	}
	if got := lex.Canonicals(); !reflect.DeepEqual(got, []string{"eggs", "sesame"}) {
		t.Errorf("Canonicals() = %v", got)
	}

	if _, err := LoadFromYAML(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("synonyms: [unclosed"), 0o644)
	if _, err := LoadFromYAML(bad); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
