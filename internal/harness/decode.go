package harness

// unhex returns the value of a hex digit, or 256 when ch is not one.
func unhex(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	}
	return 256
}

// URLDecode decodes '+' and %XX escapes. Escapes that are malformed or cut
// short by the end of the input are kept literally.
func URLDecode(s []byte) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '+':
			out = append(out, ' ')
		case '%':
			if i+2 < len(s) {
				if d := unhex(s[i+1])<<4 | unhex(s[i+2]); d < 256 {
					out = append(out, byte(d))
					i += 2
					continue
				}
			}
			out = append(out, '%')
		default:
			out = append(out, s[i])
		}
	}
	return out
}

// ToPrint returns a copy of s with every byte outside printable ASCII
// replaced by '?'.
func ToPrint(s []byte) string {
	out := make([]byte, len(s))
	for i, ch := range s {
		if ch < 32 || ch > 126 {
			ch = '?'
		}
		out[i] = ch
	}
	return string(out)
}

// RTrim drops trailing spaces, tabs and line endings.
func RTrim(s []byte) []byte {
	for len(s) > 0 {
		switch s[len(s)-1] {
		case ' ', '\n', '\t', '\r':
			s = s[:len(s)-1]
		default:
			return s
		}
	}
	return s
}
