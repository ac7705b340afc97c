package taxonomy

import (
	"reflect"
	"testing"

	"github.com/amantheshaikh/untainted/internal/testfixture"
	"github.com/amantheshaikh/untainted/pkg/untainted/locale"
)

func fixtureIndex(t *testing.T, langs locale.Languages) *Index {
	t.Helper()
	return NewIndex(mustParse(t, testfixture.Ingredients), langs, SourceIngredients)
}

func TestIndexLookup(t *testing.T) {
	idx := fixtureIndex(t, locale.New("en", nil))

	tests := []struct {
		token string
		want  string
	}{
		{"apple", "en:apple"},
		{"apples", "en:apple"},
		{"wheat-flour", "en:wheat-flour"},
		{"wheat flour", "en:wheat-flour"},
		{"maida", "en:wheat-flour"},
		{"cow milk", "en:milk"},
		{"en:palm-oil", "en:palm-oil"},
		{"root vegetables", "en:root-vegetables"},
	}
	for _, tt := range tests {
		n, ok := idx.Lookup(tt.token)
		if !ok {
			t.Errorf("Lookup(%q) missed, want %s", tt.token, tt.want)
			continue
		}
		if n.ID != tt.want {
			t.Errorf("Lookup(%q) = %s, want %s", tt.token, n.ID, tt.want)
		}
	}

	if _, ok := idx.Lookup("unobtainium"); ok {
		t.Error("Lookup(unobtainium) should miss")
	}
}

func TestIndexLanguages(t *testing.T) {
	if _, ok := fixtureIndex(t, locale.New("en", nil)).Lookup("poulet"); ok {
		t.Error("inactive, non-preferred language should not resolve")
	}
	if n, ok := fixtureIndex(t, locale.New("en", []string{"fr"})).Lookup("poulet"); !ok || n.ID != "en:chicken" {
		t.Error("taxonomy language should resolve via fr: prefix")
	}
	idx := fixtureIndex(t, locale.New("fr", nil))
	if n, ok := idx.Lookup("poulet"); !ok || n.ID != "en:chicken" {
		t.Error("active default language should resolve directly")
	}
	if got := idx.DisplayName(mustNode(t, idx, "en:chicken")); got != "Chicken" {
		t.Errorf("DisplayName = %q, want Chicken (en first)", got)
	}
}

func TestIndexRegistrationPriority(t *testing.T) {
	text := `# ingredient/corn-syrup
en: Corn syrup
synonyms: en: glucose

# ingredient/glucose
en: Dextrose

# ingredient/sucrose
en: Sucrose

# ingredient/table-sugar
en: Table sugar
synonyms: en: sucrose
`
	idx := NewIndex(mustParse(t, text), locale.New("en", nil), SourceIngredients)

	if n, _ := idx.Lookup("glucose"); n == nil || n.ID != "en:glucose" {
		t.Errorf("later slug should take the key from an earlier synonym, got %v", n)
	}
	if n, _ := idx.Lookup("sucrose"); n == nil || n.ID != "en:sucrose" {
		t.Errorf("later synonym should not steal an existing slug, got %v", n)
	}
	if n, _ := idx.Lookup("dextrose"); n == nil || n.ID != "en:glucose" {
		t.Errorf("primary name should resolve, got %v", n)
	}
}

func TestIndexDescribe(t *testing.T) {
	idx := fixtureIndex(t, locale.New("en", nil))

	whey := idx.Describe(mustNode(t, idx, "en:whey"))
	if whey.Name != "Whey" || whey.Source != SourceIngredients {
		t.Errorf("Describe(whey) = %+v", whey)
	}
	if want := []string{"Milk", "Dairy"}; !reflect.DeepEqual(whey.Parents, want) {
		t.Errorf("Parents = %v, want %v", whey.Parents, want)
	}
	if want := []string{"en:milk", "en:dairy"}; !reflect.DeepEqual(whey.ParentIDs, want) {
		t.Errorf("ParentIDs = %v, want %v", whey.ParentIDs, want)
	}

	milk := idx.Describe(mustNode(t, idx, "en:milk"))
	if want := []string{"whole milk", "cow milk"}; !reflect.DeepEqual(milk.Synonyms, want) {
		t.Errorf("Synonyms = %v, want %v", milk.Synonyms, want)
	}
}

func TestDescribeLimitsSynonyms(t *testing.T) {
	text := "# ingredient/chilli\nen: Chilli, CHILLI, a, b, c, d, e, f, g, h, i\n"
	idx := NewIndex(mustParse(t, text), locale.New("en", nil), SourceIngredients)
	d := idx.Describe(mustNode(t, idx, "en:chilli"))
	if len(d.Synonyms) != 8 {
		t.Fatalf("Synonyms = %v, want 8 entries", d.Synonyms)
	}
	if d.Synonyms[0] != "a" {
		t.Errorf("display-equal synonym not excluded: %v", d.Synonyms)
	}
}

func TestDescribeSynonymsCompareNormalized(t *testing.T) {
	text := "# ingredient/wheat-flour\nen: Wheat flour, Wheat-flour, wheat  flour, WHEAT_FLOUR, maida, Maida\n"
	idx := NewIndex(mustParse(t, text), locale.New("en", nil), SourceIngredients)
	d := idx.Describe(mustNode(t, idx, "en:wheat-flour"))
	if want := []string{"maida"}; !reflect.DeepEqual(d.Synonyms, want) {
		t.Errorf("Synonyms = %v, want %v", d.Synonyms, want)
	}
}

func TestFuzzyLookup(t *testing.T) {
	idx := fixtureIndex(t, locale.New("en", nil))

	tests := []struct {
		query string
		want  string
	}{
		{"bananna", "en:banana"},
		{"tomatoe", "en:tomato"},
		{"chiken", "en:chicken"},
		{"suger", "en:sugar"},
	}
	for _, tt := range tests {
		n, _, ok := idx.FuzzyLookup(tt.query)
		if !ok {
			t.Errorf("FuzzyLookup(%q) missed, want %s", tt.query, tt.want)
			continue
		}
		if n.ID != tt.want {
			t.Errorf("FuzzyLookup(%q) = %s, want %s", tt.query, n.ID, tt.want)
		}
	}

	if _, _, ok := idx.FuzzyLookup("slt"); ok {
		t.Error("short query below the 0.90 cutoff should miss")
	}
}

func mustNode(t *testing.T, idx *Index, id string) *Node {
	t.Helper()
	n, ok := idx.Taxonomy().Node(id)
	if !ok {
		t.Fatalf("node %s not found", id)
	}
	return n
}
