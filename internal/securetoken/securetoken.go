// Package securetoken generates single-use confirmation and reset tokens.
//
// Only the HMAC digest of a token is persisted; the raw value is mailed to
// the user and digested again on redemption.
package securetoken

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const tokenBytes = 20

// Generator produces tokens and their digests under a fixed key.
type Generator struct {
	key []byte
}

// NewGenerator creates a Generator keyed by secret.
func NewGenerator(secret string) *Generator {
	return &Generator{key: []byte(secret)}
}

// Generate returns a fresh raw token and its digest.
func (g *Generator) Generate() (raw string, digest string, err error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	raw = base64.RawURLEncoding.EncodeToString(buf)
	return raw, g.Digest(raw), nil
}

// Digest returns the hex HMAC-SHA256 of raw.
func (g *Generator) Digest(raw string) string {
	mac := hmac.New(sha256.New, g.key)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
