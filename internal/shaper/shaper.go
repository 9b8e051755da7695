// Package shaper converts Arabic-script text into its joined presentation
// forms, for renderers that draw each code point as a standalone glyph.
package shaper

import (
	"strings"
	"unicode"
)

// Options controls optional shaping behaviour.
type Options struct {
	// DeleteHarakat drops diacritic marks instead of passing them through.
	DeleteHarakat bool
	// Ligatures merges lam followed by an alef into a single glyph.
	Ligatures bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{DeleteHarakat: true, Ligatures: true}
}

// Shaper replaces Arabic letters by their contextual presentation forms.
type Shaper struct {
	opts Options
}

// New creates a Shaper.
func New(opts Options) *Shaper {
	return &Shaper{opts: opts}
}

// unit is one output position: a letter (possibly a ligature), a joiner,
// a transparent mark, or any other rune.
type unit struct {
	r      rune
	forms  forms
	letter bool
	joiner bool
	mark   bool
}

func (u unit) joinsNext() bool {
	return u.joiner || (u.letter && u.forms[Initial] != 0)
}

func (u unit) joinsPrev() bool {
	return u.joiner || (u.letter && u.forms[Final] != 0)
}

// Shape returns text with every Arabic letter replaced by the glyph matching
// its position in the word. Text without Arabic letters is returned as is.
func (s *Shaper) Shape(text string) string {
	units := s.units(text)
	if units == nil {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))

	for i, u := range units {
		if !u.letter {
			sb.WriteRune(u.r)
			continue
		}

		prev := neighbour(units, i, -1)
		next := neighbour(units, i, 1)

		connectPrev := prev >= 0 && units[prev].joinsNext() && u.joinsPrev()
		connectNext := next >= 0 && units[next].joinsPrev() && u.joinsNext()

		form := Isolated
		switch {
		case connectPrev && connectNext:
			form = Medial
		case connectPrev:
			form = Final
		case connectNext:
			form = Initial
		}

		glyph := u.forms[form]
		if glyph == 0 {
			glyph = u.forms[Isolated]
		}
		if glyph == 0 {
			glyph = u.r
		}
		sb.WriteRune(glyph)
	}

	return sb.String()
}

// units splits text into shaping units. It returns nil when text holds no
// letter that needs shaping.
func (s *Shaper) units(text string) []unit {
	runes := []rune(text)

	found := false
	for _, r := range runes {
		if _, ok := letters[r]; ok {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	units := make([]unit, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if isHaraka(r) {
			if !s.opts.DeleteHarakat {
				units = append(units, unit{r: r, mark: true})
			}
			continue
		}

		if r == tatweel || r == zwj {
			units = append(units, unit{r: r, joiner: true})
			continue
		}

		f, ok := letters[r]
		if !ok {
			units = append(units, unit{r: r})
			continue
		}

		if s.opts.Ligatures && r == lam {
			if j := s.nextLetter(runes, i); j >= 0 {
				if lig, ok := lamAlef[runes[j]]; ok {
					units = append(units, unit{r: r, forms: lig, letter: true})
					i = j
					continue
				}
			}
		}

		units = append(units, unit{r: r, forms: f, letter: true})
	}

	return units
}

// nextLetter returns the index of the rune following runes[i], skipping
// harakat only when they are being removed, or -1.
func (s *Shaper) nextLetter(runes []rune, i int) int {
	for j := i + 1; j < len(runes); j++ {
		if s.opts.DeleteHarakat && isHaraka(runes[j]) {
			continue
		}
		return j
	}
	return -1
}

// neighbour finds the closest non-mark unit from i in direction step.
func neighbour(units []unit, i, step int) int {
	for j := i + step; j >= 0 && j < len(units); j += step {
		if !units[j].mark {
			return j
		}
	}
	return -1
}

// harakat lists the Arabic combining marks. Most of them carry the
// Inherited script property, so unicode.Arabic alone does not cover them.
var harakat = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0610, Hi: 0x061A, Stride: 1},
		{Lo: 0x064B, Hi: 0x065F, Stride: 1},
		{Lo: 0x0670, Hi: 0x0670, Stride: 1},
		{Lo: 0x06D6, Hi: 0x06DC, Stride: 1},
		{Lo: 0x06DF, Hi: 0x06E4, Stride: 1},
		{Lo: 0x06E7, Hi: 0x06E8, Stride: 1},
		{Lo: 0x06EA, Hi: 0x06ED, Stride: 1},
	},
}

func isHaraka(r rune) bool {
	return unicode.Is(harakat, r)
}
