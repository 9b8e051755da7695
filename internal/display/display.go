// Package display reorders shaped text from logical order into the
// left-to-right visual order a renderer without bidi support must draw.
//
// It resolves a single paragraph with the implicit rules of the Unicode
// Bidirectional Algorithm (UAX #9): paragraph level (P2, P3), weak types
// (W1-W7), neutrals (N1, N2), implicit levels (I1, I2), whitespace reset
// (L1), reversal (L2) and mirroring (L4). Explicit embeddings, overrides and
// isolates are not honoured; their control characters are kept in place and
// resolved as neutrals.
package display

import (
	"golang.org/x/text/unicode/bidi"
)

// Visual returns text in visual order. Text without right-to-left
// characters is returned unchanged.
func Visual(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return text
	}

	original := make([]bidi.Class, len(runes))
	rtl := false
	for i, r := range runes {
		p, _ := bidi.LookupRune(r)
		original[i] = p.Class()
		switch original[i] {
		case bidi.R, bidi.AL, bidi.AN:
			rtl = true
		}
	}
	if !rtl {
		return text
	}

	base := paragraphLevel(original)
	types := resolveWeak(original, base)
	resolveNeutral(types, base)
	levels := resolveImplicit(types, base)
	resetWhitespace(original, levels, base)

	reorder(runes, levels)
	return string(runes)
}

// paragraphLevel applies P2 and P3: the first strong character decides.
func paragraphLevel(classes []bidi.Class) int {
	for _, c := range classes {
		switch c {
		case bidi.L:
			return 0
		case bidi.R, bidi.AL:
			return 1
		}
	}
	return 0
}

// direction returns the strong type for an embedding level.
func direction(level int) bidi.Class {
	if level%2 == 0 {
		return bidi.L
	}
	return bidi.R
}

// resolveWeak returns a copy of classes with W1-W7 applied over one level
// run spanning the whole paragraph.
func resolveWeak(classes []bidi.Class, base int) []bidi.Class {
	n := len(classes)
	sos := direction(base)

	types := make([]bidi.Class, n)
	for i, c := range classes {
		switch c {
		case bidi.BN, bidi.Control,
			bidi.LRE, bidi.RLE, bidi.LRO, bidi.RLO, bidi.PDF,
			bidi.LRI, bidi.RLI, bidi.FSI, bidi.PDI:
			types[i] = bidi.ON
		default:
			types[i] = c
		}
	}

	// W1
	for i := range types {
		if types[i] != bidi.NSM {
			continue
		}
		if i == 0 {
			types[i] = sos
		} else {
			types[i] = types[i-1]
		}
	}

	// W2
	last := sos
	for i, t := range types {
		switch t {
		case bidi.L, bidi.R, bidi.AL:
			last = t
		case bidi.EN:
			if last == bidi.AL {
				types[i] = bidi.AN
			}
		}
	}

	// W3
	for i, t := range types {
		if t == bidi.AL {
			types[i] = bidi.R
		}
	}

	// W4
	for i := 1; i < n-1; i++ {
		prev, next := types[i-1], types[i+1]
		switch types[i] {
		case bidi.ES:
			if prev == bidi.EN && next == bidi.EN {
				types[i] = bidi.EN
			}
		case bidi.CS:
			if prev == next && (prev == bidi.EN || prev == bidi.AN) {
				types[i] = prev
			}
		}
	}

	// W5
	for i := 0; i < n; {
		if types[i] != bidi.ET {
			i++
			continue
		}
		j := i
		for j < n && types[j] == bidi.ET {
			j++
		}
		if (i > 0 && types[i-1] == bidi.EN) || (j < n && types[j] == bidi.EN) {
			for k := i; k < j; k++ {
				types[k] = bidi.EN
			}
		}
		i = j
	}

	// W6
	for i, t := range types {
		switch t {
		case bidi.ES, bidi.ET, bidi.CS:
			types[i] = bidi.ON
		}
	}

	// W7
	last = sos
	for i, t := range types {
		switch t {
		case bidi.L, bidi.R:
			last = t
		case bidi.EN:
			if last == bidi.L {
				types[i] = bidi.L
			}
		}
	}

	return types
}

func isNeutral(c bidi.Class) bool {
	switch c {
	case bidi.B, bidi.S, bidi.WS, bidi.ON:
		return true
	}
	return false
}

// strongOf maps a resolved type to the strong direction N1 compares.
func strongOf(c bidi.Class) bidi.Class {
	if c == bidi.L {
		return bidi.L
	}
	return bidi.R
}

// resolveNeutral applies N1 and N2 in place.
func resolveNeutral(types []bidi.Class, base int) {
	n := len(types)
	embedding := direction(base)

	for i := 0; i < n; {
		if !isNeutral(types[i]) {
			i++
			continue
		}
		j := i
		for j < n && isNeutral(types[j]) {
			j++
		}

		leading, trailing := embedding, embedding
		if i > 0 {
			leading = strongOf(types[i-1])
		}
		if j < n {
			trailing = strongOf(types[j])
		}

		resolved := embedding
		if leading == trailing {
			resolved = leading
		}
		for k := i; k < j; k++ {
			types[k] = resolved
		}
		i = j
	}
}

// resolveImplicit applies I1 and I2.
func resolveImplicit(types []bidi.Class, base int) []int {
	levels := make([]int, len(types))
	for i, t := range types {
		level := base
		if base%2 == 0 {
			switch t {
			case bidi.R:
				level++
			case bidi.AN, bidi.EN:
				level += 2
			}
		} else {
			switch t {
			case bidi.L, bidi.EN, bidi.AN:
				level++
			}
		}
		levels[i] = level
	}
	return levels
}

func isTrailingSpace(c bidi.Class) bool {
	switch c {
	case bidi.WS, bidi.BN, bidi.LRI, bidi.RLI, bidi.FSI, bidi.PDI,
		bidi.LRE, bidi.RLE, bidi.LRO, bidi.RLO, bidi.PDF:
		return true
	}
	return false
}

// resetWhitespace applies L1 using the original character types.
func resetWhitespace(classes []bidi.Class, levels []int, base int) {
	trailing := true
	for i := len(classes) - 1; i >= 0; i-- {
		switch c := classes[i]; {
		case c == bidi.S || c == bidi.B:
			levels[i] = base
			trailing = true
		case isTrailingSpace(c):
			if trailing {
				levels[i] = base
			}
		default:
			trailing = false
		}
	}
}

// reorder applies L2 and L4 in place.
func reorder(runes []rune, levels []int) {
	highest, lowestOdd := 0, -1
	for _, l := range levels {
		if l > highest {
			highest = l
		}
		if l%2 == 1 && (lowestOdd < 0 || l < lowestOdd) {
			lowestOdd = l
		}
	}

	for i, l := range levels {
		if l%2 == 1 {
			if m, ok := mirrors[runes[i]]; ok {
				runes[i] = m
			}
		}
	}

	if lowestOdd < 0 {
		return
	}

	for level := highest; level >= lowestOdd; level-- {
		for i := 0; i < len(runes); {
			if levels[i] < level {
				i++
				continue
			}
			j := i
			for j < len(runes) && levels[j] >= level {
				j++
			}
			reverse(runes[i:j], levels[i:j])
			i = j
		}
	}
}

func reverse(runes []rune, levels []int) {
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
		levels[i], levels[j] = levels[j], levels[i]
	}
}
