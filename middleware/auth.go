package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Nikman800/GambaGame/logger"
	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// JWT claim names. Login issues userId; user_id is accepted for older tokens.
const (
	jwtClaimUserID       = "userId"
	jwtClaimUserIDLegacy = "user_id"
)

// TokenVerifier turns a bearer credential into a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// JWTVerifier verifies HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return userIDFromClaims(claims)
}

// Issue signs a token for userID. Used by tooling and tests; login itself lives elsewhere.
func (v *JWTVerifier) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		jwtClaimUserID: userID,
		"iat":          now.Unix(),
		"exp":          now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func userIDFromClaims(claims jwt.MapClaims) (string, error) {
	raw, ok := claims[jwtClaimUserID]
	if !ok {
		raw, ok = claims[jwtClaimUserIDLegacy]
	}
	if !ok {
		return "", fmt.Errorf("%w: missing '%s' claim", ErrInvalidToken, jwtClaimUserID)
	}

	switch id := raw.(type) {
	case string:
		if id == "" {
			return "", fmt.Errorf("%w: empty '%s' claim", ErrInvalidToken, jwtClaimUserID)
		}
		return id, nil
	case float64:
		if id != float64(int64(id)) || id <= 0 {
			return "", fmt.Errorf("%w: invalid '%s' claim %v", ErrInvalidToken, jwtClaimUserID, id)
		}
		return strconv.FormatInt(int64(id), 10), nil
	default:
		return "", fmt.Errorf("%w: unexpected type %T for '%s' claim", ErrInvalidToken, raw, jwtClaimUserID)
	}
}

// Authenticate requires a valid bearer token and stores the user id in the request context.
// The token may also come from the "token" query parameter, which browsers need for websockets.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, ErrMissingToken)
				return
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				logger.FromContext(r.Context()).Debug("token rejected", slog.Any("error", err))
				unauthorized(w, ErrInvalidToken)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// OptionalAuthenticate attaches the user id when a valid token is present and
// lets anonymous requests through untouched.
func OptionalAuthenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if userID, err := verifier.Verify(token); err == nil {
					r = r.WithContext(WithUserID(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
