package shaper

// Form indexes into a letter's presentation forms.
type Form int

const (
	Isolated Form = iota
	Initial
	Medial
	Final
)

// forms holds the presentation glyph for each Form; zero means the letter
// has no such form.
type forms [4]rune

// dual builds the forms of a dual-joining letter whose presentation glyphs
// are laid out isolated, final, initial, medial starting at iso.
func dual(iso rune) forms {
	return forms{Isolated: iso, Initial: iso + 2, Medial: iso + 3, Final: iso + 1}
}

// right builds the forms of a right-joining letter: isolated then final.
func right(iso rune) forms {
	return forms{Isolated: iso, Final: iso + 1}
}

const (
	tatweel = '\u0640'
	zwj     = '\u200d'
	lam     = 'ل'
)

var letters = map[rune]forms{
	'ء': {Isolated: 0xFE80}, // hamza
	'آ': right(0xFE81),      // alef with madda above
	'أ': right(0xFE83),      // alef with hamza above
	'ؤ': right(0xFE85),      // waw with hamza above
	'إ': right(0xFE87),      // alef with hamza below
	'ئ': dual(0xFE89),       // yeh with hamza above
	'ا': right(0xFE8D),      // alef
	'ب': dual(0xFE8F),       // beh
	'ة': right(0xFE93),      // teh marbuta
	'ت': dual(0xFE95),       // teh
	'ث': dual(0xFE99),       // theh
	'ج': dual(0xFE9D),       // jeem
	'ح': dual(0xFEA1),       // hah
	'خ': dual(0xFEA5),       // khah
	'د': right(0xFEA9),      // dal
	'ذ': right(0xFEAB),      // thal
	'ر': right(0xFEAD),      // reh
	'ز': right(0xFEAF),      // zain
	'س': dual(0xFEB1),       // seen
	'ش': dual(0xFEB5),       // sheen
	'ص': dual(0xFEB9),       // sad
	'ض': dual(0xFEBD),       // dad
	'ط': dual(0xFEC1),       // tah
	'ظ': dual(0xFEC5),       // zah
	'ع': dual(0xFEC9),       // ain
	'غ': dual(0xFECD),       // ghain
	'ف': dual(0xFED1),       // feh
	'ق': dual(0xFED5),       // qaf
	'ك': dual(0xFED9),       // kaf
	'ل': dual(0xFEDD),       // lam
	'م': dual(0xFEE1),       // meem
	'ن': dual(0xFEE5),       // noon
	'ه': dual(0xFEE9),       // heh
	'و': right(0xFEED),      // waw
	'ى': right(0xFEEF),      // alef maksura
	'ي': dual(0xFEF1),       // yeh

	// Persian and Urdu letters live in Presentation Forms-A.
	'ٱ': right(0xFB50), // alef wasla
	'ٹ': dual(0xFB66),  // tteh
	'پ': dual(0xFB56),  // peh
	'چ': dual(0xFB7A),  // tcheh
	'ڈ': right(0xFB88), // ddal
	'ڑ': right(0xFB8C), // rreh
	'ژ': right(0xFB8A), // jeh
	'ڤ': dual(0xFB6A),  // veh
	'ک': dual(0xFB8E),  // keheh
	'گ': dual(0xFB92),  // gaf
	'ھ': dual(0xFBAA),  // heh doachashmee
	'ۀ': right(0xFBA4), // heh with yeh above
	'ی': dual(0xFBFC),  // farsi yeh
	'ے': right(0xFBAE), // yeh barree
}

// lamAlef maps the alef that follows a lam to the ligature replacing both.
var lamAlef = map[rune]forms{
	'آ': right(0xFEF5),
	'أ': right(0xFEF7),
	'إ': right(0xFEF9),
	'ا': right(0xFEFB),
}
