// Package disposition reads and writes filenames in Content-Disposition headers.
//
// ParseFilename prefers the RFC 5987 extended parameter (filename*=) over the
// plain one (filename=). Only UTF-8 is accepted as the extended charset; any
// other declared charset yields no filename rather than a wrongly decoded one.
package disposition

import (
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	extendedParam = regexp.MustCompile(`(?i)filename\*=([^;]+)`)
	plainParam    = regexp.MustCompile(`(?i)filename="?([^";]+)"?`)
)

// ExportPrefix starts every generated export filename.
const ExportPrefix = "tasklr-export-"

// ParseFilename extracts a filename from a Content-Disposition header value.
// The second return value is false when no usable filename was found.
func ParseFilename(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	if m := extendedParam.FindStringSubmatch(header); m != nil {
		return decodeExtended(strings.TrimSpace(m[1]))
	}

	if m := plainParam.FindStringSubmatch(header); m != nil && m[1] != "" {
		return m[1], true
	}
	return "", false
}

// decodeExtended decodes charset'lang'percent-encoded values.
func decodeExtended(val string) (string, bool) {
	first := strings.IndexByte(val, '\'')
	if first < 0 {
		return percentDecode(val)
	}
	second := strings.IndexByte(val[first+1:], '\'')
	if second < 0 {
		return percentDecode(val)
	}
	charset := val[:first]
	if !strings.EqualFold(charset, "utf-8") {
		return "", false
	}
	return percentDecode(val[first+1+second+1:])
}

func percentDecode(s string) (string, bool) {
	out, err := url.PathUnescape(s)
	if err != nil || out == "" || !utf8.ValidString(out) {
		return "", false
	}
	return out, true
}

// Attachment builds an attachment Content-Disposition value for filename.
// Names that are not plain printable ASCII also get a filename* parameter.
func Attachment(filename string) string {
	fallback, plain := asciiFallback(filename)
	if plain {
		return `attachment; filename="` + filename + `"`
	}
	return `attachment; filename="` + fallback + `"; filename*=UTF-8''` + percentEncode(filename)
}

// ExportFilename returns the download name for an export taken at t.
func ExportFilename(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return ExportPrefix + ts + ".json"
}

func asciiFallback(s string) (string, bool) {
	var b strings.Builder
	plain := true
	for _, r := range s {
		switch {
		case r == '"' || r == '\\' || r == ';':
			b.WriteByte('_')
			plain = false
		case r < 0x20 || r > 0x7e:
			b.WriteByte('_')
			plain = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), plain
}

// percentEncode escapes every byte outside the RFC 5987 attr-char set.
func percentEncode(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
