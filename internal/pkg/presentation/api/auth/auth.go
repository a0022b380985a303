package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"go.opentelemetry.io/otel"

	"github.com/team3/iot-shop/internal/pkg/infrastructure/logging"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/tracing"
	"github.com/team3/iot-shop/pkg/types"
)

var tracer = otel.Tracer("iot-shop/auth")

const TokenLifetime = time.Hour

var ErrInvalidClaims = errors.New("invalid token claims")

// Claims is the typed content of a session token.
type Claims struct {
	SubjectID string
	Role      types.Role
	Expiry    time.Time
}

type Authenticator struct {
	ja  *jwtauth.JWTAuth
	now func() time.Time
}

func New(secret string) *Authenticator {
	return &Authenticator{
		ja:  jwtauth.New("HS256", []byte(secret), nil),
		now: time.Now,
	}
}

// Issue signs an HS256 token for the subject that expires after TokenLifetime.
func (a *Authenticator) Issue(subjectID string, role types.Role) (string, error) {
	now := a.now()

	claims := map[string]any{
		"sub":  subjectID,
		"role": string(role),
	}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, now.Add(TokenLifetime))

	_, token, err := a.ja.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return token, nil
}

// RequireAuthentication verifies the bearer token of every request and
// rejects requests without a valid one.
func (a *Authenticator) RequireAuthentication() func(http.Handler) http.Handler {
	verifier := jwtauth.Verify(a.ja, jwtauth.TokenFromHeader)

	return func(next http.Handler) http.Handler {
		return verifier(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var err error

			ctx, span := tracer.Start(r.Context(), "check-auth")
			defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

			logger := logging.GetLoggerFromContext(ctx)

			_, _, err = jwtauth.FromContext(ctx)
			if err != nil {
				logger.Info().Err(err).Msg("request not authenticated")
				unauthorized(w, messageFor(err))
				return
			}

			claims, err := ClaimsFromContext(ctx)
			if err != nil {
				logger.Info().Err(err).Msg("request not authenticated")
				unauthorized(w, "Invalid token")
				return
			}

			logger = logger.With().Str("subject", claims.SubjectID).Str("role", string(claims.Role)).Logger()
			ctx = logging.NewContextWithLogger(ctx, logger)

			next.ServeHTTP(w, r.WithContext(ctx))
		}))
	}
}

// ClaimsFromContext decodes the claims of a verified token. The role must
// be one of the known roles.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, m, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, err
	}

	sub, _ := m["sub"].(string)
	role, _ := m["role"].(string)

	if sub == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}

	c := Claims{SubjectID: sub}

	switch types.Role(role) {
	case types.RoleCustomer:
		c.Role = types.RoleCustomer
	case types.RoleAdministrator:
		c.Role = types.RoleAdministrator
	default:
		return Claims{}, fmt.Errorf("%w: unknown role %q", ErrInvalidClaims, role)
	}

	switch exp := m["exp"].(type) {
	case time.Time:
		c.Expiry = exp
	case float64:
		c.Expiry = time.Unix(int64(exp), 0)
	}

	return c, nil
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, jwtauth.ErrNoTokenFound):
		return "Missing Authorization Header"
	case errors.Is(err, jwtauth.ErrExpired):
		return "Token has expired"
	default:
		return "Invalid token"
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	b, _ := json.Marshal(types.Envelope{Message: msg, Status: types.StatusFailure})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write(b)
}
