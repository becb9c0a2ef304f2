package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"

	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/gotrue"
	"github.com/tbourn/tenx-cards/internal/problem"
)

// PasswordMin is the minimum password length accepted on registration and
// password change.
const PasswordMin = 8

// newVerifier is swapped in tests.
var newVerifier = gotrue.NewVerifier

// AuthProvider is the hosted auth API. *gotrue.Client implements it.
type AuthProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*gotrue.Session, error)
	SignUp(ctx context.Context, p gotrue.SignUpParams) (*gotrue.User, error)
	SignOut(ctx context.Context, accessToken string) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo, codeChallenge string) error
	UpdatePassword(ctx context.Context, accessToken, password string) (*gotrue.User, error)
	ResendVerification(ctx context.Context, email, redirectTo string) error
	ExchangeCodeForSession(ctx context.Context, authCode, codeVerifier string) (*gotrue.Session, error)
	GetUser(ctx context.Context, accessToken string) (*gotrue.User, error)
}

// AuthService delegates account flows to the hosted auth API and maps its
// failures to auth/* problems. E-mail confirmation and password recovery
// links use PKCE: the caller keeps the returned verifier (in a cookie) until
// the callback exchanges the code.
type AuthService struct {
	Provider    AuthProvider
	RedirectURL string
}

// NormalizeEmail trims and case-folds an address; rate-limit keys use it too.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// Login signs the user in.
func (s *AuthService) Login(ctx context.Context, email, password string) (*gotrue.Session, error) {
	ctx, span := s.span(ctx, "Login")
	defer span.End()

	email = NormalizeEmail(email)
	var fe apperr.FieldErrors
	if email == "" {
		fe.Add("email", "is required")
	}
	if password == "" {
		fe.Add("password", "is required")
	}
	if !fe.Empty() {
		return nil, apperr.Invalid(apperr.AuthValidationFailed, fe)
	}

	sess, err := s.Provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, apperr.FromAuthError(err)
	}
	return sess, nil
}

// Register creates an account. It returns the user and the PKCE verifier
// that the confirmation callback needs.
func (s *AuthService) Register(ctx context.Context, email, password, confirm string) (*gotrue.User, string, error) {
	ctx, span := s.span(ctx, "Register")
	defer span.End()

	email = NormalizeEmail(email)
	var fe apperr.FieldErrors
	if email == "" {
		fe.Add("email", "is required")
	}
	checkPassword(&fe, password, confirm)
	if !fe.Empty() {
		return nil, "", apperr.Invalid(apperr.AuthValidationFailed, fe)
	}

	verifier, err := newVerifier()
	if err != nil {
		return nil, "", apperr.SystemUnexpected.New("Could not start sign-up.", problem.WithCause(err))
	}
	u, err := s.Provider.SignUp(ctx, gotrue.SignUpParams{
		Email:         email,
		Password:      password,
		RedirectTo:    s.RedirectURL,
		CodeChallenge: gotrue.Challenge(verifier),
	})
	if err != nil {
		return nil, "", apperr.FromAuthError(err)
	}
	return u, verifier, nil
}

// Logout revokes the session. A missing token is a no-op.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	ctx, span := s.span(ctx, "Logout")
	defer span.End()
	if err := s.Provider.SignOut(ctx, accessToken); err != nil {
		return apperr.FromAuthError(err)
	}
	return nil
}

// ResetPassword sends a recovery e-mail and returns the PKCE verifier for
// the callback. The provider does not reveal whether the address exists.
func (s *AuthService) ResetPassword(ctx context.Context, email string) (string, error) {
	ctx, span := s.span(ctx, "ResetPassword")
	defer span.End()

	email = NormalizeEmail(email)
	if email == "" {
		return "", apperr.FieldError(apperr.AuthValidationFailed, "email", "is required")
	}
	verifier, err := newVerifier()
	if err != nil {
		return "", apperr.SystemUnexpected.New("Could not start password reset.", problem.WithCause(err))
	}
	if err := s.Provider.ResetPasswordForEmail(ctx, email, s.RedirectURL, gotrue.Challenge(verifier)); err != nil {
		return "", apperr.FromAuthError(err)
	}
	return verifier, nil
}

// UpdatePassword changes the password of the signed-in user.
func (s *AuthService) UpdatePassword(ctx context.Context, accessToken, password, confirm string) error {
	ctx, span := s.span(ctx, "UpdatePassword")
	defer span.End()

	var fe apperr.FieldErrors
	checkPassword(&fe, password, confirm)
	if !fe.Empty() {
		return apperr.Invalid(apperr.AuthValidationFailed, fe)
	}
	if accessToken == "" {
		return apperr.AuthUnauthorized.New("You need to sign in to continue.")
	}
	if _, err := s.Provider.UpdatePassword(ctx, accessToken, password); err != nil {
		return apperr.FromAuthError(err)
	}
	return nil
}

// ResendVerification re-sends the confirmation e-mail.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	ctx, span := s.span(ctx, "ResendVerification")
	defer span.End()

	email = NormalizeEmail(email)
	if email == "" {
		return apperr.FieldError(apperr.AuthValidationFailed, "email", "is required")
	}
	if err := s.Provider.ResendVerification(ctx, email, s.RedirectURL); err != nil {
		return apperr.FromAuthError(err)
	}
	return nil
}

// Callback exchanges an e-mail link code for a session. A missing code or
// verifier means the link can no longer be used.
func (s *AuthService) Callback(ctx context.Context, code, verifier string) (*gotrue.Session, error) {
	ctx, span := s.span(ctx, "Callback")
	defer span.End()

	if strings.TrimSpace(code) == "" || verifier == "" {
		return nil, apperr.AuthTokenExpired.New("The link has expired. Please request a new one.")
	}
	sess, err := s.Provider.ExchangeCodeForSession(ctx, code, verifier)
	if err != nil {
		return nil, apperr.FromAuthError(err)
	}
	return sess, nil
}

// Me returns the user behind accessToken.
func (s *AuthService) Me(ctx context.Context, accessToken string) (*gotrue.User, error) {
	ctx, span := s.span(ctx, "Me")
	defer span.End()

	if accessToken == "" {
		return nil, apperr.AuthUnauthorized.New("You need to sign in to continue.")
	}
	u, err := s.Provider.GetUser(ctx, accessToken)
	if err != nil {
		return nil, apperr.FromAuthError(err)
	}
	return u, nil
}

func (s *AuthService) span(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer("services/AuthService").Start(ctx, name,
		trace.WithAttributes(attribute.String("auth.flow", name)))
}

func checkPassword(fe *apperr.FieldErrors, password, confirm string) {
	if len([]rune(password)) < PasswordMin {
		fe.Add("password", "must be at least 8 characters")
	}
	if password != confirm {
		fe.Add("confirmPassword", "passwords do not match")
	}
}
