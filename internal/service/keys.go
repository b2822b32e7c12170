package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	tokenBytes = 16 // 128 bits of entropy
	keyHexLen  = 32
)

// GenerateToken returns a random URL-safe token. Tokens are identifiers,
// not secrets; the derived key is the secret half of a capability link.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	_, err := rand.Read(buf)
	if err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// DeriveKey computes the proof key for a token/file pair:
// hex(HMAC-SHA256(secret, token||file_id)) truncated to 32 characters.
// The key is never persisted; it is recomputed here on every verification.
func DeriveKey(token, fileID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token))
	mac.Write([]byte(fileID))
	return hex.EncodeToString(mac.Sum(nil))[:keyHexLen]
}

// VerifyKey reports whether candidate matches the expected key for the
// token/file pair. The comparison is constant time.
func VerifyKey(token, fileID, secret, candidate string) bool {
	expected := DeriveKey(token, fileID, secret)
	return hmac.Equal([]byte(expected), []byte(candidate))
}
