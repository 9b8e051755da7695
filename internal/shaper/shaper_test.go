package shaper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShape(t *testing.T) {
	s := New(DefaultOptions())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"latin untouched", "Hello", "Hello"},
		{"empty", "", ""},
		{"single letter isolated", "ب", "ﺏ"},
		{"two joined letters", "بب", "ﺑﺐ"},
		{"three letters", "ببب", "ﺑﺒﺐ"},
		{"persian word", "کتاب", "ﮐﺘﺎﺏ"},
		{"right-joining breaks the word", "درس", "ﺩﺭﺱ"},
		{"lam alef ligature", "سلام", "ﺳﻼﻡ"},
		{"isolated lam alef", "لا", "ﻻ"},
		{"space separates words", "بب بب", "ﺑﺐ ﺑﺐ"},
		{"zwnj breaks joining", "ب\u200cب", "ﺏ\u200cﺏ"},
		{"tatweel joins both sides", "بـب", "ﺑـﺐ"},
		{"harakat removed", "بَب", "ﺑﺐ"},
		{"farsi yeh and gaf", "گی", "ﮔﯽ"},
		{"placeholder kept", "$NAME$ ب", "$NAME$ ﺏ"},
		{"hamza never joins", "بءب", "ﺏﺀﺏ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Shape(tt.in))
		})
	}
}

func TestShape_KeepHarakat(t *testing.T) {
	s := New(Options{DeleteHarakat: false, Ligatures: true})

	// The mark is transparent: both behs still join around it.
	assert.Equal(t, "ﺑَﺐ", s.Shape("بَب"))
}

func TestShape_NoLigatures(t *testing.T) {
	s := New(Options{DeleteHarakat: true, Ligatures: false})

	assert.Equal(t, "ﺳﻠﺎﻡ", s.Shape("سلام"))
}
