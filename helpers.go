package libinjection

import (
	"strings"
	"unsafe"
)

// strlencspn returns the length of the leading run of s that contains no
// byte from unaccepted.
func strlencspn(s string, unaccepted string) int {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(unaccepted, s[i]) != -1 {
			return i
		}
	}
	return len(s)
}

// strlenspn returns the length of the leading run of s made only of bytes
// from accept.
func strlenspn(s string, accept string) int {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(accept, s[i]) == -1 {
			return i
		}
	}
	return len(s)
}

func flag2delim(flag Flag) byte {
	if flag&FLAG_QUOTE_SINGLE != 0 {
		return CHAR_SINGLE
	} else if flag&FLAG_QUOTE_DOUBLE != 0 {
		return CHAR_DOUBLE
	}
	return CHAR_NULL
}

func isDoubleDelimEscaped(s string, cur int) bool {
	return cur+1 < len(s) && s[cur+1] == s[cur]
}

/*
 * "  \"   " one backslash = escaped! " \\"   " two backslash = not escaped!
 * "\\\"   " three backslash = escaped!
 *
 * end is the index of the byte right before the quote, start the first
 * index that may hold a backslash.
 */
func isBackslashEscaped(s string, end int, start int) bool {
	i := end
	for i >= start {
		if s[i] != '\\' {
			break
		}
		i--
	}
	return (end-i)&1 == 1
}

/*
 * This detects MySQL comments, comments that start with /x! We just ban
 * these now but previously we attempted to parse the inside
 *
 * For reference: the form of /x![anything]x/ or /x!12345[anything] x/
 *
 * Mysql 3 (maybe 4), allowed this: /x!0selectx/ 1; where 0 could be any
 * number.
 */
func isMySQLComment(s string, pos int) bool {
	// so far... s[pos] == '/' && s[pos+1] == '*'
	if pos+2 >= len(s) {
		return false
	}
	return s[pos+2] == '!'
}

func charIsWhite(ch byte) bool {
	/*
	 * ' ' space is 0x20 '\t 0x09 \011 horizontal tab '\n' 0x0a \012 new
	 * line '\v' 0x0b \013 vertical tab '\f' 0x0c \014 new page '\r' 0x0d
	 * \015 carriage return 0x00 \000 null (oracle) 0xa0 \240 is Latin-1
	 */
	switch ch {
	case 0x20, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x00, 0xa0:
		return true
	default:
		return false
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// upper folds ASCII letters in place.
func upper(b []byte) {
	for i, ch := range b {
		if ch >= 'a' && ch <= 'z' {
			b[i] = ch - 0x20
		}
	}
}

// indexPair finds the two byte sequence a b in s.
func indexPair(s string, a byte, b byte) int {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == a && s[i+1] == b {
			return i
		}
	}
	return -1
}

// bytesView reads b as a string without copying it. The string must not
// outlive the call that received b.
func bytesView(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}
