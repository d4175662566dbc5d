package urlkey

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"
)

// maxHost bounds the readable host fragment so hostile inputs cannot inflate keys.
const maxHost = 48

// Key derives the storage key for a URL: namespace, a sanitized host fragment
// for debuggability, and the first 16 hex chars of sha256(url) for uniqueness.
// Total and deterministic for any input string; the output only contains
// characters safe for shared key-value namespaces.
func Key(namespace, raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return namespace + ":" + hostPart(raw) + ":" + fmt.Sprintf("%x", sum[:8])
}

func hostPart(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "-"
	}
	h := strings.ToLower(u.Hostname())
	if h == "" {
		return "-"
	}
	var b strings.Builder
	b.Grow(len(h))
	for i := 0; i < len(h) && b.Len() < maxHost; i++ {
		ch := h[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9', ch == '.', ch == '-':
			b.WriteByte(ch)
		default:
			// non-ASCII (IDN) and reserved bytes collapse to '-'
			b.WriteByte('-')
		}
	}
	return b.String()
}
