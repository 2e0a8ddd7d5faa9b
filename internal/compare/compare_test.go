package compare

import (
	"errors"
	"testing"
)

func TestNormalizeBasic(t *testing.T) {
	input := "  Apa  Khabar?\r\n"
	expected := "apakhabar"
	normalized := NormalizeBasic(input)

	if normalized != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, normalized)
	}
}

func TestCompare(t *testing.T) {
	testCases := []struct {
		name     string
		answer   string
		target   string
		expected bool
	}{
		{name: "surrounding space and punctuation", answer: "  Hai!  ", target: "hai", expected: true},
		{name: "inner whitespace ignored", answer: "selamat pagi", target: "Selamat  Pagi!", expected: true},
		{name: "ascii symbols ignored", answer: "a-b$c~", target: "abc", expected: true},
		{name: "non-latin letters kept", answer: "Ça va", target: "ça va?", expected: true},
		{name: "different words", answer: "terima", target: "kasih", expected: false},
		{name: "absent answer", answer: "", target: "x", expected: false},
		{name: "absent target", answer: "x", target: "", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Compare(tc.answer, tc.target, Basic)
			if err != nil {
				t.Fatalf("Compare() returned an unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected Compare(%q, %q) to be %v, but got %v", tc.answer, tc.target, tc.expected, got)
			}
		})
	}

	t.Run("is deterministic", func(t *testing.T) {
		first, _ := Compare("Terima kasih.", "terima kasih", Basic)
		second, _ := Compare("Terima kasih.", "terima kasih", Basic)
		if first != second {
			t.Error("Expected identical inputs to give identical results")
		}
	})

	t.Run("unknown strategy fails", func(t *testing.T) {
		_, err := Compare("hai", "hai", Strategy("fuzzy"))
		if !errors.Is(err, ErrUnknownStrategy) {
			t.Errorf("Expected ErrUnknownStrategy, but got %v", err)
		}
	})

	t.Run("unknown strategy fails even for absent input", func(t *testing.T) {
		if _, err := Compare("", "hai", Strategy("")); !errors.Is(err, ErrUnknownStrategy) {
			t.Errorf("Expected ErrUnknownStrategy, but got %v", err)
		}
	})
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy("basic"); err != nil || s != Basic {
		t.Errorf("Expected basic strategy, but got %q (err %v)", s, err)
	}
	if _, err := ParseStrategy("exact"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("Expected ErrUnknownStrategy, but got %v", err)
	}
}

func TestHint(t *testing.T) {
	testCases := map[string]string{
		"Hai!":          "H***",
		"selamat pagi":  "s****** ****",
		"k":             "k",
		"":              "",
		"ça va":         "ç* **",
	}
	for input, expected := range testCases {
		if got := Hint(input); got != expected {
			t.Errorf("Expected Hint(%q) to be %q, but got %q", input, expected, got)
		}
	}
}
