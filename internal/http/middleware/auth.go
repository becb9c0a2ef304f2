package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/problem"
)

// Session cookies set by the auth handlers.
const (
	AccessCookie  = "tenx-access-token"
	RefreshCookie = "tenx-refresh-token"
)

// SessionAudience is the audience the hosted auth service puts in tokens of
// signed-in users.
const SessionAudience = "authenticated"

const (
	ctxKeyUserID      = "userID"
	ctxKeyUserEmail   = "userEmail"
	ctxKeyAccessToken = "accessToken"
)

// SessionClaims are the claims read from a hosted-auth access token.
type SessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// SessionVerifier validates HS256 access tokens with the project's JWT secret.
type SessionVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewSessionVerifier returns a verifier for tokens signed with secret.
func NewSessionVerifier(secret string) *SessionVerifier {
	return &SessionVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithAudience(SessionAudience),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify parses token and returns its claims. Failures are auth/unauthorized,
// with the jwt error kept as cause.
func (v *SessionVerifier) Verify(token string) (*SessionClaims, error) {
	if len(v.secret) == 0 {
		return nil, apperr.AuthUnauthorized.New("Sessions are not configured.")
	}
	var claims SessionClaims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		detail := "Invalid session."
		if errors.Is(err, jwt.ErrTokenExpired) {
			detail = "Your session has expired. Please sign in again."
		}
		return nil, apperr.AuthUnauthorized.New(detail, problem.WithCause(err))
	}
	if claims.Subject == "" {
		return nil, apperr.AuthUnauthorized.New("Invalid session.")
	}
	return &claims, nil
}

// RequireSession admits requests that carry a valid access token, either as a
// Bearer header or in the AccessCookie. The user id, e-mail and raw token
// are stored in the context (see UserID, UserEmail, AccessToken).
func RequireSession(v *SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			WriteProblem(c, apperr.AuthUnauthorized.New("You need to sign in to continue."))
			return
		}
		claims, err := v.Verify(token)
		if err != nil {
			WriteProblem(c, err)
			return
		}
		c.Set(ctxKeyUserID, claims.Subject)
		c.Set(ctxKeyUserEmail, claims.Email)
		c.Set(ctxKeyAccessToken, token)
		c.Next()
	}
}

// BearerToken returns the access token from the Authorization header or,
// failing that, the session cookie. It does not validate it.
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	if ck, err := c.Cookie(AccessCookie); err == nil {
		return ck
	}
	return ""
}

// UserID returns the authenticated user id, or "".
func UserID(c *gin.Context) string {
	v, _ := c.Get(ctxKeyUserID)
	return asString(v)
}

// UserEmail returns the authenticated user's e-mail, or "".
func UserEmail(c *gin.Context) string {
	v, _ := c.Get(ctxKeyUserEmail)
	return asString(v)
}

// AccessToken returns the verified access token, or "".
func AccessToken(c *gin.Context) string {
	v, _ := c.Get(ctxKeyAccessToken)
	return asString(v)
}
