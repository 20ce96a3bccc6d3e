package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const linkTokenTTL = 10 * time.Minute

// LinkClaims ties a link token to the redis session it was minted for, so a
// token cannot be replayed after the session is consumed.
type LinkClaims struct {
	SessionID     string
	DiscordUserID string
}

// IssueLinkToken mints the short-lived token embedded in the /link URL.
func IssueLinkToken(claims LinkClaims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": claims.SessionID,
		"did": claims.DiscordUserID,
		"exp": time.Now().Add(linkTokenTTL).Unix(),
	})
	return token.SignedString(secret)
}

// ParseLinkToken validates the token signature and expiry and extracts the
// claims.
func ParseLinkToken(raw string, secret []byte) (LinkClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return LinkClaims{}, fmt.Errorf("invalid link token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return LinkClaims{}, fmt.Errorf("invalid link token claims")
	}
	sid, _ := mapClaims["sid"].(string)
	did, _ := mapClaims["did"].(string)
	if sid == "" || did == "" {
		return LinkClaims{}, fmt.Errorf("invalid link token claims")
	}
	return LinkClaims{SessionID: sid, DiscordUserID: did}, nil
}
