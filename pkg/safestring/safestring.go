// Package safestring canonicalises operator-entered names, e-mails and audit
// messages before they reach the database.
package safestring

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultMaxLen     = 250
	MessageMaxLen     = 250
	defaultNoMessage  = "Sin descripción"
	enieUpperSentinel = '\uE000'
	enieLowerSentinel = '\uE001'
)

// Options controls String.
type Options struct {
	MaxLen      int
	KeepAccents bool
	KeepEnie    bool
	KeepCase    bool
}

// Name canonicalises module and role names: accents folded, Ñ preserved,
// upper case, single spaces.
func Name(input string) string {
	return String(input, Options{KeepEnie: true})
}

// Label keeps the operator's casing and accents; used for short names.
func Label(input string) string {
	return String(input, Options{KeepAccents: true, KeepEnie: true, KeepCase: true})
}

// String removes every character outside letters, digits and . ( ) / -,
// then collapses whitespace.
func String(input string, opts Options) string {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	out := input
	if !opts.KeepAccents {
		out = fold(out, opts.KeepEnie)
	}

	var b strings.Builder
	for _, r := range out {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case strings.ContainsRune(".()/-", r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	out = strings.Join(strings.Fields(b.String()), " ")
	if !opts.KeepCase {
		out = strings.ToUpper(out)
	}
	return truncate(out, maxLen)
}

// Email lower-cases and validates an address. An empty input returns "".
func Email(input string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return "", nil
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", fmt.Errorf("correo electrónico inválido: %q", input)
	}
	return trimmed, nil
}

// Message trims an audit description to the column size.
func Message(input string) string {
	out := strings.Join(strings.Fields(input), " ")
	if out == "" {
		return defaultNoMessage
	}
	return truncate(out, MessageMaxLen)
}

func fold(input string, keepEnie bool) string {
	if keepEnie {
		input = strings.NewReplacer("Ñ", string(enieUpperSentinel), "ñ", string(enieLowerSentinel)).Replace(input)
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, input)
	if err != nil {
		folded = input
	}

	if keepEnie {
		folded = strings.NewReplacer(string(enieUpperSentinel), "Ñ", string(enieLowerSentinel), "ñ").Replace(folded)
	}
	return folded
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
