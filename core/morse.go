package core

// morsePatterns maps characters to their ITU dot/dash patterns. Letters are
// keyed by their upper-case form.
var morsePatterns = map[byte]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".",
	'F': "..-.", 'G': "--.", 'H': "....", 'I': "..", 'J': ".---",
	'K': "-.-", 'L': ".-..", 'M': "--", 'N': "-.", 'O': "---",
	'P': ".--.", 'Q': "--.-", 'R': ".-.", 'S': "...", 'T': "-",
	'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-", 'Y': "-.--",
	'Z': "--..",

	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",

	'.': ".-.-.-", ',': "--..--", '?': "..--..", '\'': ".----.",
	'!': "-.-.--", '-': "-....-", '/': "-..-.", '=': "-...-",
	'+': ".-.-.", '"': ".-..-.", '_': "..--.-",
}

// AppendElements appends the Morse elements for c to dst and reports whether
// c is encodable. A space becomes a word space; any other character becomes
// its dot/dash pattern followed by a letter space. Inter-element spaces are
// not emitted: the keyer inserts those between consecutive keyed elements.
func AppendElements(dst []Element, c byte) ([]Element, bool) {
	if c == ' ' {
		return append(dst, ElementWordSpace), true
	}
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	pattern, ok := morsePatterns[c]
	if !ok {
		return dst, false
	}
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '.' {
			dst = append(dst, ElementDot)
		} else {
			dst = append(dst, ElementDash)
		}
	}
	return append(dst, ElementLetterSpace), true
}
