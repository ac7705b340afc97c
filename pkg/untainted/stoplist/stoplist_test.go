package stoplist

import (
	"reflect"
	"strings"
	"testing"

	"github.com/amantheshaikh/untainted/pkg/untainted/locale"
)

func trimmed(parts []string) []string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func TestSplit(t *testing.T) {
	m := NewManager(locale.New("en", nil))

	tests := []struct {
		input string
		want  []string
	}{
		{"wheat flour and salt", []string{"wheat flour", "salt"}},
		{"Milk With Added Vitamins", []string{"Milk", "Added Vitamins"}},
		{"may contain nuts", []string{"nuts"}},
		{"May   Contain peanuts", []string{"peanuts"}},
		{"sandwich", []string{"sandwich"}},
		{"pepper", []string{"pepper"}},
		{"other ingredients: water", []string{": water"}},
	}
	for _, tt := range tests {
		if got := trimmed(m.Split(tt.input)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsStop(t *testing.T) {
	m := NewManager(locale.New("en", nil))
	for _, tok := range []string{"and", "may contain", "traces"} {
		if !m.IsStop(tok) {
			t.Errorf("IsStop(%q) = false, want true", tok)
		}
	}
	if m.IsStop("sugar") {
		t.Error("IsStop(sugar) = true")
	}
	if got := trimmed(m.Split("pepper per kg")); !reflect.DeepEqual(got, []string{"pepper", "kg"}) {
		t.Errorf("Split(pepper per kg) = %q", got)
	}
}

func TestMergeActiveLanguagesOnly(t *testing.T) {
	m := NewManager(locale.New("fr", nil))
	m.MergeAll(map[string][]string{
		"fr": {"et", "avec"},
		"de": {"und"},
	})
	if !m.IsStop("et") {
		t.Error("active language stopword missing")
	}
	if m.IsStop("und") {
		t.Error("inactive language stopword merged")
	}
	if got := trimmed(m.Split("sucre et sel")); !reflect.DeepEqual(got, []string{"sucre", "sel"}) {
		t.Errorf("Split = %q", got)
	}
}

func TestExempt(t *testing.T) {
	m := NewManager(locale.New("en", nil))
	for _, p := range []string{"mono and diglycerides", "Mono- and Diglycerides", "mono-and-diglycerides"} {
		if !m.IsExempt(p) {
			t.Errorf("IsExempt(%q) = false", p)
		}
	}
	got := trimmed(m.Split("Mono and Diglycerides of fatty acids and salt"))
	if want := []string{"Mono and Diglycerides of fatty acids", "salt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Split kept = %q, want %q", got, want)
	}
	if m.IsExempt("salt and pepper") {
		t.Error("IsExempt(salt and pepper) = true")
	}
}

func TestAllLongestFirst(t *testing.T) {
	m := NewManager(locale.New("en", nil))
	all := m.All()
	for i := 1; i < len(all); i++ {
		if len(all[i]) > len(all[i-1]) {
			t.Fatalf("All() not ordered by length: %q before %q", all[i-1], all[i])
		}
	}
	if all[0] != "other ingredients" {
		t.Errorf("All()[0] = %q, want other ingredients", all[0])
	}
}
