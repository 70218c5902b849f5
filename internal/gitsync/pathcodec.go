package gitsync

import (
	"strings"
)

// Paths with special characters appear in the tool's textual output
// quote-wrapped, with each special byte printed as a three-digit octal
// escape (`\NNN`). Multi-byte UTF-8 characters arrive as runs of
// consecutive escapes that only form valid text once the whole run is
// collected into raw bytes.

// placeholderName is the hidden sentinel file that makes an otherwise
// empty directory representable in history.
const placeholderName = ".empty"

// DecodePath reverses the tool's quote-and-octal-escape encoding.
// Undecodable escapes are copied through literally rather than
// aborting the parse.
func DecodePath(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			i++
			continue
		}

		// Collect the full run of consecutive octal escapes into one
		// raw byte buffer, so a multi-byte character split across
		// escapes decodes as a unit.
		if raw, n := octalRun(s[i:]); n > 0 {
			b.Write(raw)
			i += n
			continue
		}

		if i+1 < len(s) {
			switch s[i+1] {
			case '"', '\\':
				b.WriteByte(s[i+1])
				i += 2
				continue
			case 't':
				b.WriteByte('\t')
				i += 2
				continue
			case 'n':
				b.WriteByte('\n')
				i += 2
				continue
			}
		}

		// lone backslash, keep it
		b.WriteByte('\\')
		i++
	}
	return b.String()
}

// EncodePath applies the same quoting the tool uses: bytes outside
// printable ASCII become `\NNN` escapes and the whole path is wrapped
// in quotes when any escaping happened.
func EncodePath(s string) string {
	var b strings.Builder
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
			escaped = true
		case c == '\\':
			b.WriteString(`\\`)
			escaped = true
		case c < 0x20 || c >= 0x80:
			b.WriteByte('\\')
			b.WriteByte('0' + (c >> 6))
			b.WriteByte('0' + ((c >> 3) & 7))
			b.WriteByte('0' + (c & 7))
			escaped = true
		default:
			b.WriteByte(c)
		}
	}
	if !escaped {
		return s
	}
	return `"` + b.String() + `"`
}

// octalRun decodes the leading run of `\NNN` escapes in s. It returns
// the raw bytes and how much input the run consumed; n is 0 when s
// does not start with a well-formed octal escape.
func octalRun(s string) (raw []byte, n int) {
	for n+4 <= len(s) && s[n] == '\\' && isOctal(s[n+1]) && isOctal(s[n+2]) && isOctal(s[n+3]) {
		v := (s[n+1]-'0')<<6 | (s[n+2]-'0')<<3 | (s[n+3] - '0')
		raw = append(raw, v)
		n += 4
	}
	return raw, n
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}

// trimPlaceholder strips a trailing directory-placeholder entry from a
// decoded path. The second result reports whether the path represented
// a directory rather than a file.
func trimPlaceholder(path string) (string, bool) {
	switch {
	case path == placeholderName:
		return "", true
	case strings.HasSuffix(path, "/"+placeholderName):
		return strings.TrimSuffix(path, "/"+placeholderName), true
	default:
		return path, false
	}
}

// isPlaceholderPath reports whether path names a placeholder sentinel
// itself.
func isPlaceholderPath(path string) bool {
	return path == placeholderName || strings.HasSuffix(path, "/"+placeholderName)
}
