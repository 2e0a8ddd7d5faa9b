package compare

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Strategy selects how an answer is normalized before comparison.
type Strategy string

const (
	// Basic ignores case, punctuation and whitespace.
	Basic Strategy = "basic"
)

// ErrUnknownStrategy is returned for a strategy this package does not implement.
var ErrUnknownStrategy = errors.New("compare: unknown strategy")

// ParseStrategy validates a strategy name read from settings.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(name); s {
	case Basic:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// NormalizeBasic lowercases s and drops every punctuation and whitespace rune.
// ASCII symbols such as '$' or '~' count as punctuation.
func NormalizeBasic(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsPunct(r) || (unicode.IsSymbol(r) && r <= unicode.MaxASCII) || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Compare reports whether answer matches target under the given strategy.
// An empty answer or target never matches.
func Compare(answer, target string, strategy Strategy) (bool, error) {
	var normalize func(string) string
	switch strategy {
	case Basic:
		normalize = NormalizeBasic
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	if answer == "" || target == "" {
		return false, nil
	}
	return normalize(answer) == normalize(target), nil
}

// Hint masks every non-space character of target except the first.
func Hint(target string) string {
	runes := []rune(target)
	for i := 1; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) {
			runes[i] = '*'
		}
	}
	return string(runes)
}
