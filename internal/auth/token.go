package auth

import (
	"encoding/json"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// IsExpired reports whether a bearer token should be treated as
// expired. A missing token, a token that fails to decode, or a token
// without an exp claim all count as expired. The signature is NOT
// verified here; the backend rejects forged tokens, the client only
// needs the expiry claim to decide whether to bother calling it.
func IsExpired(token string) bool {
	return isExpiredAt(token, time.Now())
}

// isExpiredAt is IsExpired with an injectable clock.
func isExpiredAt(token string, now time.Time) bool {
	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	parser := jwt.Parser{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, ok := expiryClaim(claims)
	if !ok {
		return true
	}

	return exp < float64(now.Unix())
}

// expiryClaim extracts exp as seconds since epoch. JSON numbers decode
// as float64 by default, but honor json.Number too.
func expiryClaim(claims jwt.MapClaims) (float64, bool) {
	raw, ok := claims["exp"]
	if !ok {
		return 0, false
	}

	switch v := raw.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
