// Package placeholder finds game placeholder tokens inside localization
// values. Tokens are only reported; shaping treats them as ordinary text.
package placeholder

import (
	"regexp"
)

// Token is a placeholder found in a value.
type Token struct {
	Start int
	End   int
	Value string
}

// patterns to detect placeholders in game strings.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\$[A-Za-z0-9_.|]+\$`),                  // $VAR$, $VAR|V$
	regexp.MustCompile(`\[[^\[\]"]+\]`),                        // [Concept.GetName]
	regexp.MustCompile(`£[A-Za-z0-9_]+£`),                      // £gold£
	regexp.MustCompile(`@[A-Za-z0-9_]+!`),                      // @icon!
	regexp.MustCompile(`#[A-Za-z_]+|#!`),                       // #bold ... #!
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`),         // ${value}
	regexp.MustCompile(`\{[0-9]+\}`),                           // {0}, {1}
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[dsfieEgGxXoubcpq]`), // %d, %s, %2d
}

// Find returns all non-overlapping placeholders in text ordered by position.
// When two matches start at the same offset the longer one wins.
func Find(text string) []Token {
	var all []Token
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			all = append(all, Token{
				Start: loc[0],
				End:   loc[1],
				Value: text[loc[0]:loc[1]],
			})
		}
	}

	if len(all) == 0 {
		return nil
	}

	sortTokens(all)

	var filtered []Token
	lastEnd := -1
	for _, t := range all {
		if t.Start >= lastEnd {
			filtered = append(filtered, t)
			lastEnd = t.End
		}
	}

	return filtered
}

// Contains reports whether text holds at least one placeholder.
func Contains(text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// sortTokens sorts by start position, then by length (descending) for overlaps.
func sortTokens(tokens []Token) {
	for i := 1; i < len(tokens); i++ {
		key := tokens[i]
		j := i - 1
		for j >= 0 && (tokens[j].Start > key.Start ||
			(tokens[j].Start == key.Start && (tokens[j].End-tokens[j].Start) < (key.End-key.Start))) {
			tokens[j+1] = tokens[j]
			j--
		}
		tokens[j+1] = key
	}
}
