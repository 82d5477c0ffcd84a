package extract

// NotFound is returned by MatchBracket when the closing bracket is never
// reached. Callers treat it as "skip this candidate", never as fatal.
const NotFound = -1

// bracket pairs understood by MatchBracket.
var closerFor = map[byte]byte{
	'{': '}',
	'(': ')',
	'[': ']',
}

// MatchBracket returns the index of the bracket matching the opening
// bracket at src[open], tracking nesting depth. Bracket characters inside
// single-quoted, double-quoted, or backtick strings are ignored, and a
// backslash escapes the next character so an escaped quote does not
// terminate the string early. Returns NotFound when the source ends
// before the bracket closes (truncated or malformed input).
func MatchBracket(src []byte, open int) int {
	if open < 0 || open >= len(src) {
		return NotFound
	}
	opener := src[open]
	closer, ok := closerFor[opener]
	if !ok {
		return NotFound
	}

	depth := 0
	var quote byte // 0 when outside any string
	escaped := false

	for i := open; i < len(src); i++ {
		ch := src[i]

		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == quote:
				quote = 0
			}
			continue
		}

		switch ch {
		case '\'', '"', '`':
			quote = ch
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return NotFound
}

// lineAt returns the 1-based line number of byte offset idx in src.
func lineAt(src []byte, idx int) int {
	if idx > len(src) {
		idx = len(src)
	}
	line := 1
	for i := 0; i < idx; i++ {
		if src[i] == '\n' {
			line++
		}
	}
	return line
}
