package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"marketapi/internal/model"
)

const (
	// UserIDLocalKey holds the token subject.
	UserIDLocalKey = "user_id"
	// EmailLocalKey holds the token email claim.
	EmailLocalKey = "email"
	// RoleLocalKey holds the marketplace role read from the caller's profile.
	RoleLocalKey = "role"
)

var (
	errMissingToken    = errors.New("missing bearer token")
	errUnauthenticated = errors.New("unauthenticated")
)

// ProfileEnsurer creates the caller's profile on first sight and returns it.
type ProfileEnsurer interface {
	Ensure(ctx context.Context, userID, email string) (*model.Profile, error)
}

// Claims are the token fields the marketplace reads. The provider's role claim is
// ignored; roles live on the profile.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens issued by the auth provider.
type Authenticator struct {
	secret   []byte
	audience string
	profiles ProfileEnsurer
	log      zerolog.Logger
}

// NewAuthenticator builds an Authenticator. An empty audience skips the aud check.
func NewAuthenticator(secret, audience string, profiles ProfileEnsurer, log zerolog.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), audience: audience, profiles: profiles, log: log}
}

// Parse verifies a raw token and returns its claims.
func (a *Authenticator) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

func bearer(c *fiber.Ctx) (string, error) {
	h := c.Get(fiber.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", errMissingToken
	}
	return strings.TrimSpace(token), nil
}

// authenticate stores the caller in locals. The profile row is created lazily on the
// first authenticated request.
func (a *Authenticator) authenticate(c *fiber.Ctx) error {
	raw, err := bearer(c)
	if err != nil {
		return err
	}
	claims, err := a.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", errUnauthenticated, err)
	}
	p, err := a.profiles.Ensure(c.UserContext(), claims.Subject, claims.Email)
	if err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}
	c.Locals(UserIDLocalKey, claims.Subject)
	c.Locals(EmailLocalKey, claims.Email)
	c.Locals(RoleLocalKey, p.Role)
	return nil
}

// Required rejects requests without a valid token with 401.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.authenticate(c); err != nil {
			if errors.Is(err, errMissingToken) || errors.Is(err, errUnauthenticated) {
				a.log.Debug().Err(err).Str("event", "auth_rejected").Str("path", c.Path()).Msg("unauthenticated request")
				return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
			}
			a.log.Error().Err(err).Str("event", "auth_profile_failed").Msg("could not load caller profile")
			return err
		}
		return c.Next()
	}
}

// Optional identifies the caller when a valid token is present and lets anonymous requests through.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.authenticate(c); err != nil && !errors.Is(err, errMissingToken) {
			// Handlers treat the request as anonymous.
			a.log.Debug().Err(err).Str("event", "auth_ignored").Str("path", c.Path()).Msg("ignoring invalid token on public route")
		}
		return c.Next()
	}
}

// RequireRole returns 403 unless the caller's profile role is one of roles. Admins always pass.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		if role == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if role == model.RoleAdmin {
			return c.Next()
		}
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient role")
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	s, _ := c.Locals(UserIDLocalKey).(string)
	return s
}

// Role returns the authenticated user's marketplace role.
func Role(c *fiber.Ctx) model.Role {
	r, _ := c.Locals(RoleLocalKey).(model.Role)
	return r
}
