// Package transform rewrites the quoted value of a `key: "value"` line into
// shaped, visually ordered text.
//
// The rewrite is single-pass only: running it over its own output reorders
// the text again instead of leaving it stable.
package transform

import (
	"fmt"
	"strings"
	"unicode"

	"rtl-reshaper/internal/cache"
	"rtl-reshaper/internal/display"
	"rtl-reshaper/internal/shaper"
	"rtl-reshaper/internal/textutil"
)

// QuoteMode selects how the quoted value is located after the colon.
type QuoteMode string

const (
	// Strict requires the whole trimmed value to be wrapped in double quotes.
	Strict QuoteMode = "strict"
	// Span takes the text between the first and last double quote after the
	// colon and keeps everything around them, such as `key:0 "x" # note`.
	Span QuoteMode = "span"
)

// ParseQuoteMode validates a configured quote mode name.
func ParseQuoteMode(s string) (QuoteMode, error) {
	switch m := QuoteMode(strings.ToLower(strings.TrimSpace(s))); m {
	case Strict, Span:
		return m, nil
	case "":
		return Strict, nil
	default:
		return "", fmt.Errorf("unknown quote mode %q (want %q or %q)", s, Strict, Span)
	}
}

// record is a line split around the value text.
type record struct {
	prefix string
	text   string
	suffix string
}

// Transformer rewrites lines. It is safe for concurrent use.
type Transformer struct {
	mode   QuoteMode
	shaper *shaper.Shaper
	cache  *cache.ShapeCache // optional
}

// New creates a Transformer. c may be nil to disable memoisation.
func New(mode QuoteMode, s *shaper.Shaper, c *cache.ShapeCache) *Transformer {
	if mode == "" {
		mode = Strict
	}
	return &Transformer{mode: mode, shaper: s, cache: c}
}

// Mode returns the quote mode in use.
func (t *Transformer) Mode() QuoteMode {
	return t.mode
}

// Transform returns line with its quoted value replaced by display text.
// Lines without a rewritable value are returned unchanged.
func (t *Transformer) Transform(line string) string {
	rec, ok := t.split(line)
	if !ok {
		return line
	}
	return rec.prefix + t.Render(rec.text) + rec.suffix
}

// Extract returns the value text Transform would rewrite.
func (t *Transformer) Extract(line string) (string, bool) {
	rec, ok := t.split(line)
	if !ok {
		return "", false
	}
	return rec.text, true
}

// Render shapes text and puts it in visual order.
func (t *Transformer) Render(text string) string {
	if t.cache != nil {
		return t.cache.GetOrCompute(text, t.render)
	}
	return t.render(text)
}

func (t *Transformer) render(text string) string {
	return display.Visual(t.shaper.Shape(text))
}

func (t *Transformer) split(line string) (record, bool) {
	if !strings.Contains(line, ":") || !strings.Contains(line, `"`) {
		return record{}, false
	}

	key, rest, _ := strings.Cut(line, ":")

	var rec record
	switch t.mode {
	case Span:
		first := strings.IndexByte(rest, '"')
		last := strings.LastIndexByte(rest, '"')
		if first < 0 || last <= first {
			return record{}, false
		}
		rec = record{
			prefix: key + ":" + rest[:first+1],
			text:   rest[first+1 : last],
			suffix: rest[last:],
		}
	default:
		value := strings.TrimSpace(rest)
		if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
			return record{}, false
		}
		trailing := rest[len(strings.TrimRightFunc(rest, unicode.IsSpace)):]
		rec = record{
			prefix: key + `: "`,
			text:   value[1 : len(value)-1],
			suffix: `"` + trailing,
		}
	}

	if textutil.IsBlank(rec.text) {
		return record{}, false
	}
	return rec, true
}
