package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AmanShaikh33/HUDDLENEW/internal/model"
)

// CookieName is the cookie carrying the signed session credential.
const CookieName = "token"

const tokenTTL = 15 * 24 * time.Hour

type sessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies the session credential. Issuing belongs
// to the account service; Issue exists for tests and local tooling.
type TokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	return &TokenManager{secret: []byte(secret)}, nil
}

// Issue creates a signed HS256 token bound to userID.
func (tm *TokenManager) Issue(userID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// Verify checks signature and expiry and returns the bound user id.
func (tm *TokenManager) Verify(token string) (string, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: invalid token: %v", model.ErrUnauthorized, err)
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: token carries no user id", model.ErrUnauthorized)
	}
	return claims.UserID, nil
}

// FromRequest extracts the credential cookie and verifies it.
func (tm *TokenManager) FromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", fmt.Errorf("%w: missing credential cookie", model.ErrUnauthorized)
	}
	return tm.Verify(cookie.Value)
}
