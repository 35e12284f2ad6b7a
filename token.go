package quotemill

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidToken is returned for malformed, forged, or expired API tokens.
var ErrInvalidToken = errors.New("invalid token")

// tokenClaims is the signed payload of an API bearer token.
type tokenClaims struct {
	ID      string `json:"id"`
	Subject string `json:"sub"`
	Expires int64  `json:"exp"`
}

// MintToken creates a signed bearer token for the given subject, valid for
// ttl. Tokens are HMAC-SHA256 signed; there is no server-side token state.
func MintToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("token secret is required")
	}
	if subject == "" {
		return "", errors.New("token subject is required")
	}
	claims := tokenClaims{
		ID:      uuid.NewString(),
		Subject: subject,
		Expires: time.Now().Add(ttl).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + signToken(secret, encoded), nil
}

// VerifyToken checks a token's signature and expiry and returns its subject.
func VerifyToken(secret, token string) (string, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", ErrInvalidToken
	}
	expected := signToken(secret, encoded)
	if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) != 1 {
		return "", ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidToken
	}
	var claims tokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	if time.Now().Unix() >= claims.Expires {
		return "", fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	return claims.Subject, nil
}

func signToken(secret, encoded string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
