package gocas

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintDomain versions the fingerprint algorithm.
const fingerprintDomain = "gocas/expr/v1"

// Fingerprint returns a stable content address for x: the hex SHA-256 of
// the domain string, a zero byte and the structural rendering of x. Equal
// expressions have equal fingerprints across engines and processes.
func (e *Engine) Fingerprint(x Expr) string {
	h := sha256.New()
	h.Write([]byte(fingerprintDomain))
	h.Write([]byte{0x00})
	h.Write([]byte(e.Srepr(x)))
	return hex.EncodeToString(h.Sum(nil))
}
