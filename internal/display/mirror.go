package display

// mirrors pairs the punctuation that flips when drawn right-to-left.
var mirrors = map[rune]rune{
	'(': ')', ')': '(',
	'[': ']', ']': '[',
	'{': '}', '}': '{',
	'<': '>', '>': '<',
	'«': '»', '»': '«',
	'‹': '›', '›': '‹',
	'⁅': '⁆', '⁆': '⁅',
	'⁽': '⁾', '⁾': '⁽',
	'₍': '₎', '₎': '₍',
	'≤': '≥', '≥': '≤',
	'〈': '〉', '〉': '〈',
	'《': '》', '》': '《',
	'「': '」', '」': '「',
	'『': '』', '』': '『',
	'【': '】', '】': '【',
	'﴾': '﴿', '﴿': '﴾',
}
