package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/gagesampsonn/barbershop/internal/config"
)

// ContextAdminEmail is the gin context key holding the authenticated admin.
const ContextAdminEmail = "adminEmail"

// AdminClaims is the subset of a Supabase access token we rely on.
type AdminClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies Supabase access tokens against an email allowlist.
type Authenticator struct {
	secret    []byte
	allowlist map[string]struct{}
	logger    *zap.Logger
}

// NewAuthenticator builds an Authenticator. Without a secret every admin
// request is answered with 503.
func NewAuthenticator(cfg config.AuthConfig, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	allow := make(map[string]struct{}, len(cfg.AdminAllowlist))
	for _, email := range cfg.AdminAllowlist {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			allow[email] = struct{}{}
		}
	}
	return &Authenticator{secret: []byte(cfg.JWTSecret), allowlist: allow, logger: logger}
}

var errMissingEmail = errors.New("token has no email claim")

// Verify parses and validates a raw token.
func (a *Authenticator) Verify(raw string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, errMissingEmail
	}
	return claims, nil
}

// Allowed reports whether email may use the admin surface. Comparison is case-insensitive.
func (a *Authenticator) Allowed(email string) bool {
	_, ok := a.allowlist[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// RequireAdmin guards admin routes.
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(a.secret) == 0 {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "feature unavailable"})
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header must start with Bearer"})
			return
		}

		claims, err := a.Verify(tokenString)
		if err != nil {
			a.logger.Debug("rejected admin token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		if !a.Allowed(claims.Email) {
			a.logger.Warn("admin access denied", zap.String("email", claims.Email))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ContextAdminEmail, strings.ToLower(claims.Email))
		c.Next()
	}
}
