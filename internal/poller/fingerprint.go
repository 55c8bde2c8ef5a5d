package poller

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const minContentLen = 10

// Fingerprint is a short stable hash of the trimmed content.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(content)))
	return hex.EncodeToString(sum[:])[:16]
}

// complete reports whether content looks like a finished meeting rather
// than an in-progress fragment.
func complete(content string, markers []string) (bool, string) {
	if len([]rune(strings.TrimSpace(content))) < minContentLen {
		return false, "content too short"
	}
	for _, m := range markers {
		if m != "" && strings.Contains(content, m) {
			return true, ""
		}
	}
	return false, "no completion marker"
}
