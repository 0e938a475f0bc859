package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookieName = "session"
	sessionTTL        = 24 * time.Hour
)

// SessionUser is the authenticated identity carried through the request
// context and echoed by /api/me.
type SessionUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type sessionClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// sessionManager signs and verifies the HS256 session cookie.
type sessionManager struct {
	secret []byte
}

func newSessionManager(secret string) *sessionManager {
	return &sessionManager{secret: []byte(secret)}
}

func (m *sessionManager) issue(w http.ResponseWriter, user SessionUser) error {
	now := time.Now()
	claims := sessionClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *sessionManager) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *sessionManager) userFromRequest(r *http.Request) (SessionUser, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return SessionUser{}, errors.New("missing session cookie")
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return SessionUser{}, errors.New("invalid session token")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return SessionUser{}, errors.New("invalid session subject")
	}

	return SessionUser{ID: id, Username: claims.Username, Role: claims.Role}, nil
}

type sessionUserKey struct{}

func withSessionUser(ctx context.Context, user SessionUser) context.Context {
	return context.WithValue(ctx, sessionUserKey{}, user)
}

func sessionUserFrom(ctx context.Context) (SessionUser, bool) {
	user, ok := ctx.Value(sessionUserKey{}).(SessionUser)
	return user, ok
}
