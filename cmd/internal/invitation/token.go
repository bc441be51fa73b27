package invitation

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	verifyPrefix   = "/verify/"
	maxTokenLength = 128

	// DefaultShareBase is the WhatsApp deep-link endpoint.
	DefaultShareBase = "https://wa.me/"
)

// NewToken returns a fresh random qr_code_value.
func NewToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// VerificationURL is the public link embedded in the QR glyph: {base}/verify/{token}.
func VerificationURL(base, token string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + verifyPrefix + url.PathEscape(token)
}

// ParseToken extracts a token from scanned text: either a bare token or any
// URL whose path ends in /verify/{token}.
func ParseToken(scanned string) (string, bool) {
	s := strings.TrimSpace(scanned)
	if s == "" {
		return "", false
	}

	if strings.Contains(s, "/") {
		path := s
		if u, err := url.Parse(s); err == nil {
			path = u.EscapedPath()
		}
		i := strings.LastIndex(path, verifyPrefix)
		if i < 0 {
			return "", false
		}
		raw := strings.TrimSuffix(path[i+len(verifyPrefix):], "/")
		tok, err := url.PathUnescape(raw)
		if err != nil {
			return "", false
		}
		s = tok
	}

	if !validToken(s) {
		return "", false
	}
	return s, true
}

func validToken(s string) bool {
	if s == "" || len(s) > maxTokenLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == '~':
		default:
			return false
		}
	}
	return true
}

// ShareMessage is the text prefilled in the share deep link.
func ShareMessage(guestName, campusName string) string {
	return "Hi " + strings.TrimSpace(guestName) + ", I'd love to invite you to church at " + strings.TrimSpace(campusName) + "!"
}

// ShareURL builds the share deep link. An empty base uses DefaultShareBase.
func ShareURL(base, guestName, campusName string) string {
	if strings.TrimSpace(base) == "" {
		base = DefaultShareBase
	}
	text := strings.ReplaceAll(url.QueryEscape(ShareMessage(guestName, campusName)), "+", "%20")
	return base + "?text=" + text
}

// FlyerFileName is the download name for a guest's flyer, e.g. invite-ada-lovelace.png.
func FlyerFileName(guestName string) string {
	return "invite-" + slug(guestName) + ".png"
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func slug(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "guest"
	}
	if len(out) > 64 {
		out = strings.TrimSuffix(out[:64], "-")
	}
	return out
}
