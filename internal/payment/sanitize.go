package payment

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	scriptPattern  = regexp.MustCompile(`(?is)<(script|style)\b[^>]*>.*?</(script|style)\s*>`)
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	octetPattern   = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	spacesPattern  = regexp.MustCompile(`\s+`)
	emailLocalSafe = "!#$%&'*+/=?^_`{|}~.-"
)

// sanitizeText strips markup, percent-encoded octets, control characters and
// runs of whitespace from a single-line field. Script and style elements are
// dropped with their contents.
func sanitizeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = scriptPattern.ReplaceAllString(s, "")
	s = tagPattern.ReplaceAllString(s, "")
	s = octetPattern.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	s = spacesPattern.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// sanitizeEmail keeps only characters valid in an address and returns "" when
// what is left cannot be an address.
func sanitizeEmail(s string) string {
	s = strings.TrimSpace(s)

	at := strings.LastIndex(s, "@")
	if at < 1 || at == len(s)-1 {
		return ""
	}

	local := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(emailLocalSafe, r)) {
			return r
		}
		return -1
	}, s[:at])

	domain := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.') {
			return unicode.ToLower(r)
		}
		return -1
	}, s[at+1:])

	domain = strings.Trim(domain, ".-")

	if local == "" || !strings.Contains(domain, ".") {
		return ""
	}

	return local + "@" + domain
}
