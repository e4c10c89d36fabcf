package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/Douglas360/auction-intel-estate-sub000/pkg/errors"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthUser represents an authenticated user from JWT
type AuthUser struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

// contextKey is used for storing user in context
type contextKey string

const (
	userContextKey contextKey = "authenticated_user"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// JWTConfig holds the configuration for JWT middleware. Secret verifies
// HS256 tokens; JWKSURL verifies asymmetric tokens. At least one is needed.
type JWTConfig struct {
	Secret    string
	JWKSURL   string
	Issuer    string
	AdminRole string
	Logger    *zap.Logger
}

// Authenticator validates identity-provider JWTs and exposes them to
// handlers as AuthUser.
type Authenticator struct {
	secret    []byte
	jwks      keyfunc.Keyfunc
	options   []jwt.ParserOption
	adminRole string
	logger    *zap.Logger
}

// NewAuthenticator fetches the JWKS once when a URL is configured and keeps
// it refreshed in the background.
func NewAuthenticator(cfg JWTConfig) (*Authenticator, error) {
	if cfg.Secret == "" && cfg.JWKSURL == "" {
		return nil, fmt.Errorf("jwt secret or jwks url is required")
	}

	a := &Authenticator{
		adminRole: cfg.AdminRole,
		logger:    cfg.Logger,
		options: []jwt.ParserOption{
			jwt.WithValidMethods([]string{"HS256", "RS256", "ES256"}),
			jwt.WithExpirationRequired(),
		},
	}
	if cfg.Issuer != "" {
		a.options = append(a.options, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Secret != "" {
		a.secret = []byte(cfg.Secret)
	}
	if cfg.JWKSURL != "" {
		jwks, err := keyfunc.NewDefault([]string{cfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("fetch JWKS from %s: %w", cfg.JWKSURL, err)
		}
		a.jwks = jwks
	}
	return a, nil
}

// Authenticate parses an Authorization header value.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*AuthUser, error) {
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.Parse(strings.TrimSpace(tokenString), a.keyFor(ctx), a.options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	email, _ := claims["email"].(string)
	return &AuthUser{
		UserID: userID,
		Email:  email,
		Role:   roleFromClaims(claims),
	}, nil
}

func (a *Authenticator) keyFor(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
			if a.secret == nil {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.secret, nil
		}
		if a.jwks == nil {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwks.KeyfuncCtx(ctx)(token)
	}
}

// roleFromClaims prefers app_metadata.role, which only the backend can set,
// over the top-level role claim.
func roleFromClaims(claims jwt.MapClaims) string {
	if meta, ok := claims["app_metadata"].(map[string]interface{}); ok {
		if role, ok := meta["role"].(string); ok && role != "" {
			return role
		}
	}
	role, _ := claims["role"].(string)
	return role
}

// OptionalAuth attaches the user when the request carries a valid token and
// lets every request through.
func (a *Authenticator) OptionalAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}
			user, err := a.Authenticate(c.Request().Context(), header)
			if err != nil {
				a.logger.Debug("Ignoring invalid credential on optional route",
					zap.String("path", c.Path()),
					zap.Error(err))
				return next(c)
			}
			setUser(c, user)
			return next(c)
		}
	}
}

// RequireAuth rejects requests without a valid token with 401.
func (a *Authenticator) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := a.Authenticate(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				a.logger.Warn("JWT validation failed",
					zap.String("path", c.Path()),
					zap.String("method", c.Request().Method),
					zap.Error(err))
				if errors.Is(err, ErrMissingToken) {
					return errors.NewAppError(errors.ErrUnauthenticated, "Authorization header required", err)
				}
				return errors.NewAppError(errors.ErrUnauthenticated, "Invalid or expired token", err)
			}
			setUser(c, user)
			return next(c)
		}
	}
}

// RequireAdmin must run after RequireAuth.
func (a *Authenticator) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := GetUserFromContext(c)
			if err != nil {
				return errors.NewAppError(errors.ErrUnauthenticated, "Authentication required", err)
			}
			if a.adminRole == "" || user.Role != a.adminRole {
				a.logger.Warn("Admin route denied",
					zap.String("user_id", user.UserID.String()),
					zap.String("role", user.Role),
					zap.String("path", c.Path()))
				return errors.NewAppError(errors.ErrUnauthorized, "Admin role required", nil)
			}
			return next(c)
		}
	}
}

func setUser(c echo.Context, user *AuthUser) {
	c.SetRequest(c.Request().WithContext(ContextWithUser(c.Request().Context(), user)))
	c.Set("user_id", user.UserID.String())
}

// ContextWithUser stores user for GetUserFromContext.
func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext extracts the authenticated user from the request context
func GetUserFromContext(c echo.Context) (*AuthUser, error) {
	user, ok := c.Request().Context().Value(userContextKey).(*AuthUser)
	if !ok || user == nil {
		return nil, fmt.Errorf("no authenticated user found in context")
	}
	return user, nil
}

// UserIDFromContext returns nil for anonymous requests.
func UserIDFromContext(c echo.Context) *uuid.UUID {
	user, err := GetUserFromContext(c)
	if err != nil {
		return nil
	}
	id := user.UserID
	return &id
}
