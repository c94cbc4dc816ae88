package services

import (
	"strings"
	"unicode"
)

const (
	teamNameMinLen     = 3
	teamNameMaxLen     = 50
	teamNameMinLetters = 2
)

// reservedTeamNames are well-known organization names; a proposed team name
// must not match one exactly nor contain an entry's full word set. Entries
// are case-folded single words or phrases.
var reservedTeamNames = []string{
	"liquid",
	"navi",
	"natus vincere",
	"fnatic",
	"astralis",
	"cloud9",
	"faze",
	"vitality",
	"g2",
	"t1",
	"og",
	"secret",
	"virtus pro",
	"gambit",
	"spirit",
	"nip",
	"ninjas in pyjamas",
	"mouz",
	"heroic",
	"furia",
}

// ValidateTeamName applies the registration name rules in order and returns
// nil when the name is acceptable. The reserved check runs before the length
// checks so short reserved names are blocked uniformly.
func ValidateTeamName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return newValidationError(ValidationEmptyName, "")
	}

	if reserved := matchReservedName(name); reserved != "" {
		return newValidationError(ValidationReservedName, reserved)
	}

	runes := []rune(name)
	if len(runes) < teamNameMinLen {
		return newValidationError(ValidationNameTooShort, name)
	}
	if len(runes) > teamNameMaxLen {
		return newValidationError(ValidationNameTooLong, name)
	}

	if bad := invalidNameChars(runes); bad != "" {
		return newValidationError(ValidationInvalidChars, bad)
	}

	letters := 0
	for _, r := range runes {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < teamNameMinLetters {
		return newValidationError(ValidationInsufficientLetters, name)
	}

	return nil
}

// matchReservedName returns the reserved entry the name collides with, or "".
// A collision is an exact case-folded match or the entry's word set being a
// subset of the name's word set, so "Pro Liquid Gaming" is blocked by
// "liquid" in any word order.
func matchReservedName(name string) string {
	folded := strings.ToLower(strings.TrimSpace(name))
	words := splitWords(folded)

	for _, entry := range reservedTeamNames {
		if folded == entry {
			return entry
		}
		entryWords := splitWords(entry)
		if len(entryWords) == 0 {
			continue
		}
		contained := true
		for w := range entryWords {
			if !words[w] {
				contained = false
				break
			}
		}
		if contained {
			return entry
		}
	}
	return ""
}

func splitWords(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}
	return words
}

// invalidNameChars collects every character outside the allowed set: ASCII
// letters, Cyrillic letters, digits, space, '-', '_', '.'.
func invalidNameChars(runes []rune) string {
	var bad []rune
	seen := make(map[rune]bool)
	for _, r := range runes {
		if allowedNameChar(r) || seen[r] {
			continue
		}
		seen[r] = true
		bad = append(bad, r)
	}
	return string(bad)
}

func allowedNameChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == ' ' || r == '-' || r == '_' || r == '.':
		return true
	case unicode.Is(unicode.Cyrillic, r):
		return true
	}
	return false
}
