package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// sessionClaims is the payload of a board session token. The account and
// user live under "dat".
type sessionClaims struct {
	jwt.RegisteredClaims
	Data struct {
		AccountID json.Number `json:"account_id"`
		UserID    json.Number `json:"user_id"`
	} `json:"dat"`
}

// VerifySession requires every non-OPTIONS request to carry a session token
// signed with signingSecret in the Authorization header, either raw or with a
// Bearer scheme. The account and user are stored in the request context.
func VerifySession(signingSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			tok := sessionToken(r)
			if tok == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			sess, err := parseSession(tok, signingSecret)
			if err != nil {
				log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("session: rejected token")
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

func sessionToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return auth
}

func parseSession(tokenStr, secret string) (Session, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Session{}, err
	}
	if claims.Data.AccountID == "" {
		return Session{}, jwt.ErrTokenInvalidClaims
	}

	return Session{
		AccountID: claims.Data.AccountID.String(),
		UserID:    claims.Data.UserID.String(),
	}, nil
}
